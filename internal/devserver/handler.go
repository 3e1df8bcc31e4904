// Package devserver implements the diagnostics-only language server
// cmd/snakec-lsp exposes over stdio: didOpen/didChange re-parse and
// re-resolve the document through internal/surface and publish whatever
// []cerr.CompilerError comes back as LSP diagnostics.
//
// Grounded on the teacher's internal/lsp.KansoHandler — same
// mutex-guarded per-path content map, same Initialize/Initialized/
// Shutdown/didOpen/didChange/didClose shape — trimmed of semantic tokens
// and completion, since internal/surface's minimal notation has no
// lexical categories worth tokenizing (SPEC_FULL.md's surface package is
// explicitly not the real surface grammar).
package devserver

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"snakec/internal/cerr"
	"snakec/internal/surface"
)

// Handler implements the subset of protocol.Handler this server needs.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

// NewHandler creates an empty Handler.
func NewHandler() *Handler {
	return &Handler{content: make(map[string]string)}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.check(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// TextDocumentSyncKindFull: the last change event carries the whole
	// document text.
	change := params.ContentChanges[len(params.ContentChanges)-1]
	full, ok := change.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return fmt.Errorf("devserver: unexpected incremental change event")
	}
	return h.check(ctx, params.TextDocument.URI, full.Text)
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, path)
	return nil
}

func (h *Handler) check(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.content[path] = text
	h.mu.Unlock()

	_, errs := surface.Parse(path, text)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toDiagnostics(errs),
	})
	return nil
}

// toDiagnostics converts resolver errors into LSP diagnostics. Positions
// come from internal/surface's participle grammar (Pos fields populated
// during parse) via cerr.CompilerError.Position, 1-indexed per spec.md
// §7; LSP ranges are 0-indexed, so both line and column are shifted down
// by one. A zero-valued Position (e.g. a raw parse error that never
// reached the resolver) falls back to the document's first character.
func toDiagnostics(errs []cerr.CompilerError) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(errs))
	for _, e := range errs {
		line, col := 0, 0
		if e.Position.Line >= 1 {
			line = e.Position.Line - 1
			col = e.Position.Column - 1
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(line), Character: uint32(col)},
				End:   protocol.Position{Line: uint32(line), Character: uint32(col + 1)},
			},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("snakec"),
			Message:  e.Error(),
		})
	}
	return diagnostics
}

func uriToPath(rawURI protocol.DocumentUri) (string, error) {
	u, err := url.Parse(string(rawURI))
	if err != nil {
		return "", fmt.Errorf("devserver: invalid URI %s: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return path, nil
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
