package server

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf16"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/sol25/compiler"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "sol25-lsp"

// LspServer bridges LSP editor features to the SOL25 front end. Every
// document is checked in full on open and on change.
type LspServer struct {
	opts compiler.Options

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server checking documents with opts.
func NewLSP(opts compiler.Options) *LspServer {
	s := &LspServer{
		opts:    opts,
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
	commonlog.NewInfoMessage(0, "SOL25 LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{" ", ":"},
	}

	capabilities.HoverProvider = true

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

// document returns the stored text for uri.
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

	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}

	return complete(text, prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}

	return hover(text, word), nil
}

// outline builds the class table of text without semantic analysis, so
// completion and hover keep working while the program is still missing its
// entry point. It returns nil when text does not parse.
func outline(text string) (*compiler.Program, *compiler.ClassTable) {
	tree, err := compiler.Parse(text)
	if err != nil {
		return nil, nil
	}
	prog, err := compiler.Build(tree)
	if err != nil {
		return nil, nil
	}
	return prog, compiler.NewClassTable(prog)
}

func complete(text, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	_, table := outline(text)

	if unicode.IsUpper(rune(prefix[0])) {
		seen := make(map[string]bool)
		var names []string
		if table != nil {
			names = append(names, table.Names()...)
		}
		names = append(names,
			compiler.ClassObject, compiler.ClassInteger, compiler.ClassString,
			compiler.ClassNil, compiler.ClassBlock, compiler.ClassTrue, compiler.ClassFalse,
		)
		for _, name := range names {
			if seen[name] || !strings.HasPrefix(name, prefix) {
				continue
			}
			seen[name] = true
			kind := protocol.CompletionItemKindClass
			detail := "class"
			if compiler.IsBuiltinClass(name) {
				detail = "built-in class"
			}
			nameCopy := name
			items = append(items, protocol.CompletionItem{
				Label:      name,
				Kind:       &kind,
				Detail:     &detail,
				InsertText: &nameCopy,
			})
		}
		return items
	}

	if table == nil {
		return nil
	}

	// Selectors declared anywhere in the document
	owners := make(map[string][]string)
	for _, class := range table.Names() {
		for _, sel := range table.Selectors(class) {
			owners[sel] = append(owners[sel], class)
		}
	}
	selectors := make([]string, 0, len(owners))
	for sel := range owners {
		if strings.HasPrefix(sel, prefix) {
			selectors = append(selectors, sel)
		}
	}
	sort.Strings(selectors)

	for _, sel := range selectors {
		kind := protocol.CompletionItemKindMethod
		detail := "selector of " + strings.Join(owners[sel], ", ")
		selCopy := sel
		items = append(items, protocol.CompletionItem{
			Label:      sel,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &selCopy,
		})
	}

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	return items
}

func hover(text, word string) *protocol.Hover {
	if !unicode.IsUpper(rune(word[0])) {
		return nil
	}

	prog, table := outline(text)
	if table == nil || !table.Has(word) {
		return nil
	}

	parent := compiler.ClassObject
	for _, class := range prog.Classes {
		if class.Name == word {
			parent = class.Parent
			break
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** < %s\n\n", word, parent)

	sels := table.Selectors(word)
	if len(sels) == 0 {
		b.WriteString("No methods")
	} else {
		fmt.Fprintf(&b, "%d methods:\n", len(sels))
		for _, sel := range sels {
			fmt.Fprintf(&b, "- `%s`\n", sel)
		}
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := diagnose(text, s.opts)

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnose checks text and converts every classified failure into an LSP
// diagnostic whose code is the exit status the command line would return.
func diagnose(text string, opts compiler.Options) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	_, err := compiler.Check(text, opts)
	for _, e := range compiler.Diagnostics(err) {
		severity := protocol.DiagnosticSeverityError
		source := lspName
		pos := lspPosition(text, e.Pos)
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: pos,
				End:   pos,
			},
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: protocol.Integer(e.Code)},
			Source:   &source,
			Message:  e.Msg,
		})
	}

	return diagnostics
}

// lspPosition converts a source position in text into a 0-based LSP one.
// LSP characters count UTF-16 code units, so the column is recomputed from
// the line text. Errors without a location are reported at the start of the
// document.
func lspPosition(text string, pos compiler.Position) protocol.Position {
	if pos.Line == 0 {
		return protocol.Position{}
	}
	offset := min(pos.Offset, len(text))
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	return protocol.Position{
		Line:      protocol.UInteger(pos.Line - 1),
		Character: protocol.UInteger(utf16Len(text[lineStart:offset])),
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// byteColumn converts an LSP character offset into a byte index in line.
func byteColumn(line string, character protocol.UInteger) int {
	units := 0
	for i, r := range line {
		if units >= int(character) {
			return i
		}
		units += utf16.RuneLen(r)
	}
	return len(line)
}

// isNameByte reports whether b can be part of a SOL25 name. Names are
// ASCII, so bytes of multi-byte runes never match.
func isNameByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

// --- Text extraction helpers ---

// cursorLine returns the line under pos and the cursor's byte index in it.
func cursorLine(text string, pos protocol.Position) (string, int, bool) {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return "", 0, false
	}
	line := lines[pos.Line]
	return line, byteColumn(line, pos.Character), true
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	line, col, ok := cursorLine(text, pos)
	if !ok {
		return ""
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 && (isNameByte(line[start-1]) || line[start-1] == ':') {
		start--
	}

	return line[start:col]
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	line, col, ok := cursorLine(text, pos)
	if !ok {
		return ""
	}

	start := col
	for start > 0 && isNameByte(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isNameByte(line[end]) {
		end++
	}

	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}
