package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/chazu/zzed/editor"
	"github.com/chazu/zzed/gamedata"
	"github.com/chazu/zzed/storage"
)

// ---------------------------------------------------------------------------
// Direct handler calls
// ---------------------------------------------------------------------------

func TestScriptService_Compile(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.Service.Compile(bg(), connectReq(&CompileRequest{
		Source: "ifIsWizform 17 // fairyId\n    say 4F1A2B06 0\nendIf",
	}))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !resp.Msg.Success {
		t.Fatalf("Compile failed: %+v", resp.Msg.Diagnostics)
	}
	if resp.Msg.Packed != "D.17\n!.4F1A2B06.0\n7\n" {
		t.Errorf("Packed = %q", resp.Msg.Packed)
	}
}

func TestScriptService_CompileDiagnostics(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.Service.Compile(bg(), connectReq(&CompileRequest{Source: "exit\nfoo\nsay 1"}))
	if err != nil {
		t.Fatalf("compile errors should not fail the call: %v", err)
	}
	if resp.Msg.Success || resp.Msg.Packed != "" {
		t.Errorf("response = %+v, want failure without output", resp.Msg)
	}
	want := []Diagnostic{
		{Line: 2, Kind: "unknown command", Message: "Unknown command: foo"},
		{Line: 3, Kind: "arity mismatch", Message: "Command say takes exactly 2 arguments: dialogUid, silent"},
	}
	if len(resp.Msg.Diagnostics) != len(want) {
		t.Fatalf("diagnostics = %+v", resp.Msg.Diagnostics)
	}
	for i, d := range want {
		if resp.Msg.Diagnostics[i] != d {
			t.Errorf("diagnostic %d = %+v, want %+v", i, resp.Msg.Diagnostics[i], d)
		}
	}
}

func TestScriptService_Decompile(t *testing.T) {
	env := newTestEnv(t)

	plain, err := env.Service.Decompile(bg(), connectReq(&DecompileRequest{Packed: "D.17\n%"}))
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	if plain.Msg.Source != "ifIsWizform 17\n    exit\n" {
		t.Errorf("Source = %q", plain.Msg.Source)
	}

	annotated, err := env.Service.Decompile(bg(), connectReq(&DecompileRequest{Packed: "D.17", Annotate: true}))
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	if annotated.Msg.Source != "ifIsWizform 17 // fairyId; Sillia\n" {
		t.Errorf("annotated Source = %q", annotated.Msg.Source)
	}
}

func TestScriptService_Validate(t *testing.T) {
	env := newTestEnv(t)

	ok, err := env.Service.Validate(bg(), connectReq(&ValidateRequest{Packed: "D.17\n%\n"}))
	if err != nil || !ok.Msg.Valid {
		t.Errorf("Validate(valid) = %+v, %v", ok, err)
	}

	bad, err := env.Service.Validate(bg(), connectReq(&ValidateRequest{Packed: "D.17\nzz.3"}))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if bad.Msg.Valid || len(bad.Msg.Diagnostics) != 1 || bad.Msg.Diagnostics[0].Line != 2 {
		t.Errorf("Validate(invalid) = %+v", bad.Msg)
	}
	if bad.Msg.Diagnostics[0].Kind != "unknown opcode" {
		t.Errorf("kind = %q", bad.Msg.Diagnostics[0].Kind)
	}
}

func TestScriptService_Enumeration(t *testing.T) {
	env := newTestEnv(t)

	names, err := env.Service.Enumeration(bg(), connectReq(&EnumerationRequest{}))
	if err != nil {
		t.Fatalf("Enumeration: %v", err)
	}
	if len(names.Msg.Entries) != len(gamedata.Tables()) {
		t.Errorf("got %d table names, want %d", len(names.Msg.Entries), len(gamedata.Tables()))
	}

	table := gamedata.Tables()[0]
	resp, err := env.Service.Enumeration(bg(), connectReq(&EnumerationRequest{Name: table.Name}))
	if err != nil {
		t.Fatalf("Enumeration(%s): %v", table.Name, err)
	}
	if resp.Msg.Name != table.Name || len(resp.Msg.Entries) != table.Len() {
		t.Errorf("Enumeration(%s) = %s with %d entries", table.Name, resp.Msg.Name, len(resp.Msg.Entries))
	}

	_, err = env.Service.Enumeration(bg(), connectReq(&EnumerationRequest{Name: "nope"}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("unknown table code = %v, want NotFound", connect.CodeOf(err))
	}
}

func TestScriptService_LoadNPC(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.Service.LoadNPC(bg(), connectReq(&LoadNPCRequest{UID: "N0000014"}))
	if err != nil {
		t.Fatalf("LoadNPC: %v", err)
	}
	npc := resp.Msg
	if npc.UID != "N0000014" || npc.NameUID != "A0000041" {
		t.Errorf("npc = %+v", npc)
	}
	if len(npc.Scripts) != int(storage.SlotCount) {
		t.Fatalf("got %d scripts, want %d", len(npc.Scripts), storage.SlotCount)
	}
	initScript := npc.Scripts[storage.SlotInit.String()]
	if !strings.Contains(initScript, "    say 4F1A2B06 0 // dialogUid, silent; Hello Amy!\n") {
		t.Errorf("init script = %q", initScript)
	}
	if npc.Scripts[storage.SlotTrigger.String()] != "exit\n\n" {
		t.Errorf("trigger script = %q", npc.Scripts[storage.SlotTrigger.String()])
	}
}

func TestScriptService_LoadNPCErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Service.LoadNPC(bg(), connectReq(&LoadNPCRequest{}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("empty uid code = %v, want InvalidArgument", connect.CodeOf(err))
	}

	_, err = env.Service.LoadNPC(bg(), connectReq(&LoadNPCRequest{UID: "N9999999"}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("missing npc code = %v, want NotFound", connect.CodeOf(err))
	}
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want to wrap storage.ErrNotFound", err)
	}
}

func fullScripts(script string) map[string]string {
	scripts := make(map[string]string)
	for _, slot := range storage.Slots() {
		scripts[slot.String()] = script
	}
	return scripts
}

func TestScriptService_SaveNPC(t *testing.T) {
	env := newTestEnv(t)

	scripts := fullScripts("exit")
	scripts[storage.SlotUpdate.String()] = "label 1 // id\ngoto 1"
	resp, err := env.Service.SaveNPC(bg(), connectReq(&NPCScripts{UID: "N0000014", Scripts: scripts}))
	if err != nil {
		t.Fatalf("SaveNPC: %v", err)
	}
	if !resp.Msg.Saved {
		t.Fatalf("not saved: %+v", resp.Msg.Diagnostics)
	}
	if resp.Msg.NPC.NameUID != "A0000041" {
		t.Errorf("empty name uid should keep the name, got %q", resp.Msg.NPC.NameUID)
	}

	stored := env.Store.npcs["N0000014"]
	if stored.Scripts[storage.SlotUpdate] != "$.1\nK.1\n" {
		t.Errorf("stored update script = %q", stored.Scripts[storage.SlotUpdate])
	}
	if stored.NameSuffix != "12" {
		t.Errorf("name suffix = %q, want it preserved", stored.NameSuffix)
	}
}

func TestScriptService_SaveNPCScriptErrors(t *testing.T) {
	env := newTestEnv(t)
	before := env.Store.npcs["N0000014"]

	scripts := fullScripts("exit")
	scripts[storage.SlotDefeated.String()] = "exit\nbogus"
	resp, err := env.Service.SaveNPC(bg(), connectReq(&NPCScripts{UID: "N0000014", Scripts: scripts}))
	if err != nil {
		t.Fatalf("script errors should not fail the call: %v", err)
	}
	if resp.Msg.Saved {
		t.Error("Saved = true, want false")
	}
	want := Diagnostic{Script: "Defeated", Line: 2, Kind: "unknown command", Message: "Unknown command: bogus"}
	if len(resp.Msg.Diagnostics) != 1 || resp.Msg.Diagnostics[0] != want {
		t.Errorf("diagnostics = %+v, want [%+v]", resp.Msg.Diagnostics, want)
	}
	if env.Store.npcs["N0000014"] != before {
		t.Error("a failed save must not write")
	}
}

func TestScriptService_SaveNPCRejectsPartialRequest(t *testing.T) {
	env := newTestEnv(t)

	scripts := fullScripts("exit")
	delete(scripts, storage.SlotVictorious.String())
	_, err := env.Service.SaveNPC(bg(), connectReq(&NPCScripts{UID: "N0000014", Scripts: scripts}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("missing slot code = %v, want InvalidArgument", connect.CodeOf(err))
	}

	scripts = fullScripts("exit")
	scripts["Sleep"] = "exit"
	_, err = env.Service.SaveNPC(bg(), connectReq(&NPCScripts{UID: "N0000014", Scripts: scripts}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("unknown slot code = %v, want InvalidArgument", connect.CodeOf(err))
	}
}

func TestScriptService_Items(t *testing.T) {
	env := newTestEnv(t)

	loaded, err := env.Service.LoadItem(bg(), connectReq(&LoadItemRequest{EntityID: "3"}))
	if err != nil {
		t.Fatalf("LoadItem: %v", err)
	}
	if loaded.Msg.UID != "I0000013" || loaded.Msg.Source != "label 1 // id\n\n" {
		t.Errorf("item = %+v", loaded.Msg)
	}

	saved, err := env.Service.SaveItem(bg(), connectReq(&ItemScript{EntityID: "3", Source: "exit"}))
	if err != nil {
		t.Fatalf("SaveItem: %v", err)
	}
	if !saved.Msg.Saved || saved.Msg.Item.Source != "exit\n\n" {
		t.Errorf("save = %+v", saved.Msg)
	}
	if env.Store.items["3"].Script != "%\n" {
		t.Errorf("stored = %q", env.Store.items["3"].Script)
	}

	failed, err := env.Service.SaveItem(bg(), connectReq(&ItemScript{EntityID: "3", Source: "exit 1"}))
	if err != nil {
		t.Fatalf("SaveItem: %v", err)
	}
	if failed.Msg.Saved || len(failed.Msg.Diagnostics) != 1 || failed.Msg.Diagnostics[0].Script != "Item" {
		t.Errorf("failed save = %+v", failed.Msg)
	}

	_, err = env.Service.LoadItem(bg(), connectReq(&LoadItemRequest{EntityID: "999"}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("missing item code = %v, want NotFound", connect.CodeOf(err))
	}
}

func TestScriptService_WithoutDatabase(t *testing.T) {
	svc := NewScriptService(nil, nil)

	_, err := svc.LoadNPC(bg(), connectReq(&LoadNPCRequest{UID: "N0000014"}))
	if connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Errorf("code = %v, want FailedPrecondition", connect.CodeOf(err))
	}

	// Annotation without an annotator leaves lines bare.
	resp, err := svc.Decompile(bg(), connectReq(&DecompileRequest{Packed: "%", Annotate: true}))
	if err != nil || resp.Msg.Source != "exit\n" {
		t.Errorf("Decompile = %+v, %v", resp, err)
	}
}

// ---------------------------------------------------------------------------
// Over HTTP through ScriptClient
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, opts ...ServerOption) *ScriptClient {
	t.Helper()
	srv := New(opts...)
	t.Cleanup(srv.Stop)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return NewScriptClient(ts.Client(), ts.URL, connect.WithInterceptors(NewRequestIDInterceptor()))
}

func TestScriptClient_RoundTrip(t *testing.T) {
	engine := newTestEngine()
	client := newTestClient(t,
		WithSession(editor.NewSession(newMemStore(), engine)),
		WithAnnotator(engine))
	ctx := context.Background()

	compiled, err := client.Compile(ctx, &CompileRequest{Source: "talk 4F1A2B16\nexit"})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if compiled.Packed != "J.4F1A2B16\n%\n" {
		t.Errorf("Packed = %q", compiled.Packed)
	}

	decompiled, err := client.Decompile(ctx, &DecompileRequest{Packed: compiled.Packed})
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	if decompiled.Source != "talk 4F1A2B16\nexit\n\n" {
		t.Errorf("Source = %q", decompiled.Source)
	}

	npc, err := client.LoadNPC(ctx, &LoadNPCRequest{UID: "N0000014"})
	if err != nil {
		t.Fatalf("LoadNPC: %v", err)
	}
	saved, err := client.SaveNPC(ctx, npc)
	if err != nil {
		t.Fatalf("SaveNPC: %v", err)
	}
	if !saved.Saved {
		t.Fatalf("resaving loaded scripts failed: %+v", saved.Diagnostics)
	}
	// Decompiled scripts of stored text compile back to the same text.
	for _, slot := range []storage.Slot{storage.SlotInit, storage.SlotTrigger} {
		name := slot.String()
		if saved.NPC.Scripts[name] != npc.Scripts[name] {
			t.Errorf("%s script = %q, want %q", name, saved.NPC.Scripts[name], npc.Scripts[name])
		}
	}
}

func TestScriptClient_Errors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.LoadNPC(ctx, &LoadNPCRequest{UID: "N0000014"})
	if connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Errorf("code = %v, want FailedPrecondition", connect.CodeOf(err))
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) || connectErr.Meta().Get(RequestIDHeader) == "" {
		t.Error("error metadata should carry the request id")
	}

	_, err = client.Enumeration(ctx, &EnumerationRequest{Name: "nope"})
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("code = %v, want NotFound", connect.CodeOf(err))
	}
}

func TestRequestIDInterceptor(t *testing.T) {
	srv := New()
	defer srv.Stop()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := connect.NewClient[CompileRequest, CompileResponse](
		ts.Client(), ts.URL+CompileProcedure, connect.WithCodec(jsonCodec{}))

	req := connect.NewRequest(&CompileRequest{Source: "exit"})
	req.Header().Set(RequestIDHeader, "req-1")
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		t.Fatalf("CallUnary: %v", err)
	}
	if got := resp.Header().Get(RequestIDHeader); got != "req-1" {
		t.Errorf("response request id = %q, want req-1", got)
	}

	resp, err = client.CallUnary(context.Background(), connect.NewRequest(&CompileRequest{Source: "exit"}))
	if err != nil {
		t.Fatalf("CallUnary: %v", err)
	}
	if resp.Header().Get(RequestIDHeader) == "" {
		t.Error("server should assign a request id")
	}
}

func TestUnknownProcedure(t *testing.T) {
	srv := New()
	defer srv.Stop()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/"+ScriptServiceName+"/Nope", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRequestIDInHandlerContext(t *testing.T) {
	var seen string
	next := connect.UnaryFunc(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen = RequestID(ctx)
		return connect.NewResponse(&CompileResponse{}), nil
	})
	handler := NewRequestIDInterceptor()(next)

	req := connect.NewRequest(&CompileRequest{Source: "exit"})
	req.Header().Set(RequestIDHeader, "req-7")
	resp, err := handler(bg(), req)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if seen != "req-7" {
		t.Errorf("RequestID in handler = %q, want req-7", seen)
	}
	if got := resp.Header().Get(RequestIDHeader); got != "req-7" {
		t.Errorf("response request id = %q, want req-7", got)
	}
	if got := RequestID(bg()); got != "" {
		t.Errorf("RequestID outside a call = %q, want empty", got)
	}
}
