package server

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/zzed/annotate"
	"github.com/chazu/zzed/compiler"
	"github.com/chazu/zzed/opcode"
)

const lspName = "zzed-lsp"

// labelParams lists, per command, the argument positions holding a label id
// defined elsewhere in the script by `label <id>`.
var labelParams = map[opcode.Command][]int{
	opcode.Goto:            {0},
	opcode.GotoRandomLabel: {0, 1},
	opcode.Choice:          {0},
	opcode.SetTalkLabels:   {0, 1},
	opcode.SubGame:         {2},
}

// LspServer provides editor support for mnemonic script files: compile
// diagnostics while typing, hover with parameter names and resolved
// references, mnemonic completion and label navigation.
type LspServer struct {
	engine *annotate.Engine

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server. Hover descriptions are resolved through
// engine; a nil engine resolves nothing.
func NewLSP(engine *annotate.Engine) *LspServer {
	if engine == nil {
		engine = annotate.New(nil)
	}
	s := &LspServer{
		engine:  engine,
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
		TextDocumentReferences: s.textDocumentReferences,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "zzed LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.ReferencesProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			text := whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	pos := params.Position
	line := lineAt(text, pos.Line)
	col := clampColumn(line, pos.Character)

	// Only the command position completes; arguments are free-form.
	prefix := extractPrefix(text, pos)
	if strings.TrimSpace(line[:col-len(prefix)]) != "" {
		return nil, nil
	}
	return completeMnemonic(prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return s.hover(context.Background(), text, params.Position), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	labelID, ok := labelReferenceAt(text, params.Position)
	if !ok {
		return nil, nil
	}
	locations := labelDefinitions(params.TextDocument.URI, text, labelID)
	if len(locations) == 0 {
		return nil, nil
	}
	return locations, nil
}

func (s *LspServer) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	labelID, ok := labelDefinitionAt(text, params.Position)
	if !ok {
		// References from a reference: find the label's other uses.
		labelID, ok = labelReferenceAt(text, params.Position)
	}
	if !ok {
		return nil, nil
	}

	locations := labelReferences(params.TextDocument.URI, text, labelID)
	if params.Context.IncludeDeclaration {
		locations = append(labelDefinitions(params.TextDocument.URI, text, labelID), locations...)
	}
	return locations, nil
}

// --- Script logic ---

func completeMnemonic(prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	lowerPrefix := strings.ToLower(prefix)

	for _, cmd := range opcode.All() {
		name := cmd.Mnemonic()
		if !strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
			continue
		}
		kind := protocol.CompletionItemKindFunction
		detail := signature(cmd)
		nameCopy := name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &nameCopy,
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

func signature(cmd opcode.Command) string {
	if !cmd.HasParams() {
		return cmd.Mnemonic()
	}
	return cmd.Mnemonic() + " " + strings.Join(cmd.Params(), " ")
}

func (s *LspServer) hover(ctx context.Context, text string, pos protocol.Position) *protocol.Hover {
	tokens := lineTokens(lineAt(text, pos.Line))
	idx := tokenIndexAt(tokens, int(pos.Character))
	if idx < 0 || len(tokens) == 0 {
		return nil
	}
	cmd, ok := opcode.Lookup(tokens[0].text)
	if !ok {
		return nil
	}
	args := tokenTexts(tokens[1:])

	var b strings.Builder
	if idx == 0 {
		fmt.Fprintf(&b, "**%s**", cmd.Mnemonic())
		if cmd.HasParams() {
			fmt.Fprintf(&b, " `%s`", strings.Join(cmd.Params(), " "))
		}
		fmt.Fprintf(&b, "\n\nopcode `%c`", cmd.Opcode())
	} else {
		params := cmd.Params()
		if idx > len(params) {
			return nil
		}
		fmt.Fprintf(&b, "`%s` of **%s**", params[idx-1], cmd.Mnemonic())
	}
	if desc, ok := s.engine.Describe(ctx, cmd, args); ok {
		b.WriteString("\n\n---\n\n")
		b.WriteString(desc)
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
		Range: &protocol.Range{
			Start: protocol.Position{Line: pos.Line, Character: protocol.UInteger(tokens[idx].start)},
			End:   protocol.Position{Line: pos.Line, Character: protocol.UInteger(tokens[idx].end)},
		},
	}
}

// labelReferenceAt returns the label id under the cursor when the cursor
// is on a label argument of a jumping command.
func labelReferenceAt(text string, pos protocol.Position) (string, bool) {
	tokens := lineTokens(lineAt(text, pos.Line))
	idx := tokenIndexAt(tokens, int(pos.Character))
	if idx <= 0 {
		return "", false
	}
	cmd, ok := opcode.Lookup(tokens[0].text)
	if !ok {
		return "", false
	}
	for _, p := range labelParams[cmd] {
		if p == idx-1 {
			return tokens[idx].text, true
		}
	}
	return "", false
}

// labelDefinitionAt returns the id of the `label` command under the cursor.
func labelDefinitionAt(text string, pos protocol.Position) (string, bool) {
	tokens := lineTokens(lineAt(text, pos.Line))
	if len(tokens) != 2 || tokens[0].text != opcode.Label.Mnemonic() {
		return "", false
	}
	if tokenIndexAt(tokens, int(pos.Character)) < 0 {
		return "", false
	}
	return tokens[1].text, true
}

func labelDefinitions(uri protocol.DocumentUri, text, labelID string) []protocol.Location {
	var locations []protocol.Location
	for i, line := range strings.Split(text, "\n") {
		tokens := lineTokens(line)
		if len(tokens) == 2 && tokens[0].text == opcode.Label.Mnemonic() && tokens[1].text == labelID {
			locations = append(locations, tokenLocation(uri, i, tokens[0], tokens[1]))
		}
	}
	return locations
}

func labelReferences(uri protocol.DocumentUri, text, labelID string) []protocol.Location {
	var locations []protocol.Location
	for i, line := range strings.Split(text, "\n") {
		tokens := lineTokens(line)
		if len(tokens) == 0 {
			continue
		}
		cmd, ok := opcode.Lookup(tokens[0].text)
		if !ok {
			continue
		}
		for _, p := range labelParams[cmd] {
			if p+1 < len(tokens) && tokens[p+1].text == labelID {
				locations = append(locations, tokenLocation(uri, i, tokens[p+1], tokens[p+1]))
			}
		}
	}
	return locations
}

func tokenLocation(uri protocol.DocumentUri, line int, from, to token) protocol.Location {
	return protocol.Location{
		URI: uri,
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(from.start)},
			End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(to.end)},
		},
	}
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := scriptDiagnostics(text)
	commonlog.GetLogger(logName).Debugf("%s: %d diagnostics", uri, len(diagnostics))

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// scriptDiagnostics compiles text and reports each failing line, spanning
// the command and its arguments.
func scriptDiagnostics(text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	_, err := compiler.Compile(text)
	errs := compiler.Errors(err)
	if len(errs) == 0 {
		return diagnostics
	}

	lines := strings.Split(text, "\n")
	severity := protocol.DiagnosticSeverityError
	source := lspName
	for _, e := range errs {
		lineNo := e.Line - 1
		var start, end int
		if lineNo < len(lines) {
			if tokens := lineTokens(lines[lineNo]); len(tokens) > 0 {
				start, end = tokens[0].start, tokens[len(tokens)-1].end
			}
		}
		code := protocol.IntegerOrString{Value: e.Kind.String()}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(lineNo), Character: protocol.UInteger(start)},
				End:   protocol.Position{Line: protocol.UInteger(lineNo), Character: protocol.UInteger(end)},
			},
			Severity: &severity,
			Code:     &code,
			Source:   &source,
			Message:  e.Message,
		})
	}
	return diagnostics
}

// --- Text extraction helpers ---

// token is a whitespace-delimited word of a script line, with its byte
// columns.
type token struct {
	text       string
	start, end int
}

// lineTokens splits the code part of a line (before any comment) the way
// the compiler does, keeping positions.
func lineTokens(line string) []token {
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = line[:idx]
	}
	var tokens []token
	start := -1
	for i, ch := range line {
		if unicode.IsSpace(ch) {
			if start >= 0 {
				tokens = append(tokens, token{line[start:i], start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{line[start:], start, len(line)})
	}
	return tokens
}

// tokenIndexAt returns the index of the token containing col, or touching
// it from the left, or -1.
func tokenIndexAt(tokens []token, col int) int {
	for i, t := range tokens {
		if col >= t.start && col <= t.end {
			return i
		}
	}
	return -1
}

func tokenTexts(tokens []token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.text
	}
	return out
}

func lineAt(text string, line protocol.UInteger) string {
	lines := strings.Split(text, "\n")
	if int(line) >= len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line], "\r")
}

func clampColumn(line string, character protocol.UInteger) int {
	col := int(character)
	if col > len(line) {
		col = len(line)
	}
	return col
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	line := lineAt(text, pos.Line)
	col := clampColumn(line, pos.Character)

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 {
		ch := rune(line[start-1])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			start--
		} else {
			break
		}
	}

	return line[start:col]
}

func boolPtr(b bool) *bool {
	return &b
}
