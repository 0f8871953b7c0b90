package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/tliron/commonlog"

	"github.com/chazu/zzed/compiler"
	"github.com/chazu/zzed/editor"
	"github.com/chazu/zzed/gamedata"
	"github.com/chazu/zzed/storage"
)

const logName = "zzed.server"

// ScriptServiceName is the fully-qualified name of the ScriptService.
const ScriptServiceName = "zzed.v1.ScriptService"

// Procedure paths of the ScriptService.
const (
	CompileProcedure     = "/" + ScriptServiceName + "/Compile"
	DecompileProcedure   = "/" + ScriptServiceName + "/Decompile"
	ValidateProcedure    = "/" + ScriptServiceName + "/Validate"
	EnumerationProcedure = "/" + ScriptServiceName + "/Enumeration"
	LoadNPCProcedure     = "/" + ScriptServiceName + "/LoadNPC"
	SaveNPCProcedure     = "/" + ScriptServiceName + "/SaveNPC"
	LoadItemProcedure    = "/" + ScriptServiceName + "/LoadItem"
	SaveItemProcedure    = "/" + ScriptServiceName + "/SaveItem"
)

var errNoDatabase = errors.New("no game database configured")

// ScriptService implements the ScriptService Connect handler.
type ScriptService struct {
	worker    *EditWorker // nil when serving without a database
	annotator compiler.Annotator
}

// NewScriptService creates a ScriptService. Without a worker the load and
// save procedures fail with CodeFailedPrecondition.
func NewScriptService(worker *EditWorker, annotator compiler.Annotator) *ScriptService {
	return &ScriptService{worker: worker, annotator: annotator}
}

// NewScriptServiceHandler builds an HTTP handler serving every procedure
// of svc, and returns the path on which to mount it.
func NewScriptServiceHandler(svc *ScriptService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	handlers := map[string]http.Handler{
		CompileProcedure:     connect.NewUnaryHandler(CompileProcedure, svc.Compile, opts...),
		DecompileProcedure:   connect.NewUnaryHandler(DecompileProcedure, svc.Decompile, opts...),
		ValidateProcedure:    connect.NewUnaryHandler(ValidateProcedure, svc.Validate, opts...),
		EnumerationProcedure: connect.NewUnaryHandler(EnumerationProcedure, svc.Enumeration, opts...),
		LoadNPCProcedure:     connect.NewUnaryHandler(LoadNPCProcedure, svc.LoadNPC, opts...),
		SaveNPCProcedure:     connect.NewUnaryHandler(SaveNPCProcedure, svc.SaveNPC, opts...),
		LoadItemProcedure:    connect.NewUnaryHandler(LoadItemProcedure, svc.LoadItem, opts...),
		SaveItemProcedure:    connect.NewUnaryHandler(SaveItemProcedure, svc.SaveItem, opts...),
	}

	return "/" + ScriptServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// Compile packs a mnemonic script. Compile errors are reported as
// diagnostics, not as a failed call.
func (s *ScriptService) Compile(
	ctx context.Context,
	req *connect.Request[CompileRequest],
) (*connect.Response[CompileResponse], error) {
	packed, err := compiler.Compile(req.Msg.Source)
	if err != nil {
		return connect.NewResponse(&CompileResponse{
			Success:     false,
			Diagnostics: diagnostics("", err),
		}), nil
	}
	return connect.NewResponse(&CompileResponse{Success: true, Packed: packed}), nil
}

// Decompile expands packed script text, optionally annotated.
func (s *ScriptService) Decompile(
	ctx context.Context,
	req *connect.Request[DecompileRequest],
) (*connect.Response[DecompileResponse], error) {
	var a compiler.Annotator
	if req.Msg.Annotate {
		a = s.annotator
	}
	return connect.NewResponse(&DecompileResponse{
		Source: compiler.Decompile(ctx, req.Msg.Packed, a),
	}), nil
}

// Validate checks packed script text.
func (s *ScriptService) Validate(
	ctx context.Context,
	req *connect.Request[ValidateRequest],
) (*connect.Response[ValidateResponse], error) {
	if err := compiler.Validate(req.Msg.Packed); err != nil {
		return connect.NewResponse(&ValidateResponse{Valid: false, Diagnostics: diagnostics("", err)}), nil
	}
	return connect.NewResponse(&ValidateResponse{Valid: true}), nil
}

// Enumeration returns the entries of a static game table, or the table
// names when no name is given.
func (s *ScriptService) Enumeration(
	ctx context.Context,
	req *connect.Request[EnumerationRequest],
) (*connect.Response[EnumerationResponse], error) {
	if req.Msg.Name == "" {
		var names []string
		for _, t := range gamedata.Tables() {
			names = append(names, t.Name)
		}
		return connect.NewResponse(&EnumerationResponse{Entries: names}), nil
	}

	table, ok := gamedata.TableByName(req.Msg.Name)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("enumeration %q not found", req.Msg.Name))
	}
	entries := make([]string, len(table.Entries))
	copy(entries, table.Entries)
	return connect.NewResponse(&EnumerationResponse{Name: table.Name, Entries: entries}), nil
}

// LoadNPC returns the decompiled scripts of an NPC.
func (s *ScriptService) LoadNPC(
	ctx context.Context,
	req *connect.Request[LoadNPCRequest],
) (*connect.Response[NPCScripts], error) {
	if req.Msg.UID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("uid is required"))
	}

	value, err := s.edit(func(sess *editor.Session) (any, error) {
		return sess.LoadNPC(ctx, req.Msg.UID)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(npcScripts(value.(editor.NPCSource))), nil
}

// SaveNPC compiles and stores all five scripts of an NPC. When any script
// fails to compile nothing is stored and the response carries the
// diagnostics.
func (s *ScriptService) SaveNPC(
	ctx context.Context,
	req *connect.Request[NPCScripts],
) (*connect.Response[SaveNPCResponse], error) {
	src, err := npcSource(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	value, err := s.edit(func(sess *editor.Session) (any, error) {
		return sess.SaveNPC(ctx, src)
	})
	var scriptErrs editor.ScriptErrors
	if errors.As(err, &scriptErrs) {
		return connect.NewResponse(&SaveNPCResponse{Saved: false, Diagnostics: diagnostics("", scriptErrs)}), nil
	}
	if err != nil {
		return nil, err
	}
	commonlog.GetLogger(logName).Infof("[%s] saved npc %s", RequestID(ctx), src.UID)
	return connect.NewResponse(&SaveNPCResponse{Saved: true, NPC: npcScripts(value.(editor.NPCSource))}), nil
}

// LoadItem returns the decompiled script of an item.
func (s *ScriptService) LoadItem(
	ctx context.Context,
	req *connect.Request[LoadItemRequest],
) (*connect.Response[ItemScript], error) {
	if req.Msg.EntityID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("entity id is required"))
	}

	value, err := s.edit(func(sess *editor.Session) (any, error) {
		return sess.LoadItem(ctx, req.Msg.EntityID)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(itemScript(value.(editor.ItemSource))), nil
}

// SaveItem compiles and stores the script of an item.
func (s *ScriptService) SaveItem(
	ctx context.Context,
	req *connect.Request[ItemScript],
) (*connect.Response[SaveItemResponse], error) {
	if req.Msg.EntityID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("entity id is required"))
	}

	value, err := s.edit(func(sess *editor.Session) (any, error) {
		return sess.SaveItem(ctx, req.Msg.EntityID, req.Msg.Source)
	})
	var scriptErrs editor.ScriptErrors
	if errors.As(err, &scriptErrs) {
		return connect.NewResponse(&SaveItemResponse{Saved: false, Diagnostics: diagnostics("", scriptErrs)}), nil
	}
	if err != nil {
		return nil, err
	}
	commonlog.GetLogger(logName).Infof("[%s] saved item %s", RequestID(ctx), req.Msg.EntityID)
	return connect.NewResponse(&SaveItemResponse{Saved: true, Item: itemScript(value.(editor.ItemSource))}), nil
}

type editOutcome struct {
	value any
	err   error
}

// edit runs fn on the edit worker and maps storage errors to Connect codes.
// Script errors are passed through for the caller to report.
func (s *ScriptService) edit(fn func(*editor.Session) (any, error)) (any, error) {
	if s.worker == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errNoDatabase)
	}
	result, err := s.worker.Do(func(sess *editor.Session) interface{} {
		value, err := fn(sess)
		return editOutcome{value: value, err: err}
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := result.(editOutcome)
	var scriptErrs editor.ScriptErrors
	switch {
	case out.err == nil:
		return out.value, nil
	case errors.As(out.err, &scriptErrs):
		return nil, out.err
	case errors.Is(out.err, storage.ErrNotFound):
		return nil, connect.NewError(connect.CodeNotFound, out.err)
	case errors.Is(out.err, context.Canceled), errors.Is(out.err, context.DeadlineExceeded):
		return nil, connect.NewError(connect.CodeCanceled, out.err)
	default:
		return nil, connect.NewError(connect.CodeInternal, out.err)
	}
}

// diagnostics flattens compile errors, including those of every script of
// an editor.ScriptErrors.
func diagnostics(script string, err error) []Diagnostic {
	var scriptErrs editor.ScriptErrors
	if errors.As(err, &scriptErrs) {
		var out []Diagnostic
		for _, se := range scriptErrs {
			out = append(out, diagnostics(se.Script, se.Err)...)
		}
		return out
	}

	var out []Diagnostic
	for _, e := range compiler.Errors(err) {
		out = append(out, Diagnostic{
			Script:  script,
			Line:    e.Line,
			Kind:    e.Kind.String(),
			Message: e.Message,
		})
	}
	return out
}

func npcScripts(src editor.NPCSource) *NPCScripts {
	out := &NPCScripts{UID: src.UID, NameUID: src.NameUID, Scripts: make(map[string]string)}
	for _, slot := range storage.Slots() {
		out.Scripts[slot.String()] = src.Scripts[slot]
	}
	return out
}

// npcSource converts a request into editor input. Every slot must be
// present, so a partial request cannot wipe scripts.
func npcSource(msg *NPCScripts) (editor.NPCSource, error) {
	if msg.UID == "" {
		return editor.NPCSource{}, fmt.Errorf("uid is required")
	}
	src := editor.NPCSource{UID: msg.UID, NameUID: msg.NameUID}
	seen := make(map[storage.Slot]bool)
	for name, script := range msg.Scripts {
		slot, ok := storage.ParseSlot(name)
		if !ok {
			return editor.NPCSource{}, fmt.Errorf("unknown script slot %q", name)
		}
		if seen[slot] {
			return editor.NPCSource{}, fmt.Errorf("duplicate script slot %q", name)
		}
		seen[slot] = true
		src.Scripts[slot] = script
	}
	for _, slot := range storage.Slots() {
		if !seen[slot] {
			return editor.NPCSource{}, fmt.Errorf("missing %s script", slot)
		}
	}
	return src, nil
}

func itemScript(src editor.ItemSource) *ItemScript {
	return &ItemScript{UID: src.UID, EntityID: src.EntityID, Source: src.Script}
}
