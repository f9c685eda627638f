package main

import (
	"log"
	"sync"

	"japl/lang"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const (
	lsName      = "japl-ls"
	CIKKeyword  = protocol.CompletionItemKindKeyword
	CIKVariable = protocol.CompletionItemKindVariable
	CIKFunction = protocol.CompletionItemKindFunction
)

var (
	version string = "0.1.0"
	handler protocol.Handler

	documentsMutex sync.RWMutex
	documents      = make(map[string]string)
)

func main() {
	commonlog.Configure(1, nil)

	handler = protocol.Handler{
		Initialize:             initialize,
		Initialized:            initialized,
		Shutdown:               shutdown,
		SetTrace:               setTrace,
		TextDocumentDidOpen:    textDocumentDidOpen,
		TextDocumentDidChange:  textDocumentDidChange,
		TextDocumentDidClose:   textDocumentDidClose,
		TextDocumentDidSave:    textDocumentDidSave,
		TextDocumentCompletion: textDocumentCompletion,
	}

	s := server.NewServer(&handler, lsName, false)
	s.RunStdio()
}

func initialize(context *glsp.Context, params *protocol.InitializeParams) (interface{}, error) {
	capabilities := handler.CreateServerCapabilities()
	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &[]bool{true}[0],
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: &[]bool{false}[0]},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func initialized(context *glsp.Context, params *protocol.InitializedParams) error { return nil }
func shutdown(context *glsp.Context) error                                        { return nil }

func setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func textDocumentDidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	documentsMutex.Lock()
	documents[params.TextDocument.URI] = params.TextDocument.Text
	documentsMutex.Unlock()
	go publishDiagnostics(context, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func textDocumentDidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	content := params.ContentChanges[0].(protocol.TextDocumentContentChangeEventWhole).Text

	documentsMutex.Lock()
	documents[params.TextDocument.URI] = content
	documentsMutex.Unlock()

	go publishDiagnostics(context, params.TextDocument.URI, content)
	return nil
}

func textDocumentDidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	documentsMutex.Lock()
	delete(documents, params.TextDocument.URI)
	documentsMutex.Unlock()
	return nil
}

func textDocumentDidSave(context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	return nil
}

// textDocumentCompletion offers the reserved-word table plus every
// identifier that follows `var` or `fun` in the document's token stream.
// JAPL has no attribute access and no standard library, so there is no
// builtin-function surface to offer the way the teacher's server did.
func textDocumentCompletion(context *glsp.Context, params *protocol.CompletionParams) (interface{}, error) {
	documentsMutex.RLock()
	content, ok := documents[params.TextDocument.URI]
	documentsMutex.RUnlock()

	items := []protocol.CompletionItem{}
	if !ok {
		return protocol.CompletionList{IsIncomplete: false, Items: items}, nil
	}

	seen := make(map[string]bool)
	kindKeyword := CIKKeyword
	detailKeyword := "keyword"
	for _, kw := range lang.GetAllKeywords() {
		items = append(items, protocol.CompletionItem{Label: kw, Kind: &kindKeyword, Detail: &detailKeyword})
		seen[kw] = true
	}

	lexer := lang.NewLexer(params.TextDocument.URI, []byte(content))
	tokens := lexer.Tokenize()
	for i, tok := range tokens {
		if tok.Kind != lang.TokenIdent || i+1 >= len(tokens) {
			continue
		}
		prevIsBinder := i > 0 && (tokens[i-1].IsKeyword("var") || tokens[i-1].IsKeyword("fun"))
		if !prevIsBinder || seen[tok.Lexeme] {
			continue
		}
		kind := CIKVariable
		detail := "variable"
		if tokens[i-1].IsKeyword("fun") {
			kind = CIKFunction
			detail = "function"
		}
		items = append(items, protocol.CompletionItem{Label: tok.Lexeme, Kind: &kind, Detail: &detail})
		seen[tok.Lexeme] = true
	}

	return protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

// publishDiagnostics lexes and compiles the document and publishes one
// diagnostic per recorded error: every lex error, or, when lexing succeeded,
// every error the panic-mode compiler collected.
func publishDiagnostics(context *glsp.Context, uri string, content string) {
	diagnostics := []protocol.Diagnostic{}
	severity := protocol.DiagnosticSeverityError

	lexer := lang.NewLexer(uri, []byte(content))
	tokens := lexer.Tokenize()

	if lexer.Errored() {
		for _, e := range lexer.Errors() {
			source := "japl-ls (lexer)"
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    lspRangeFromLoc(e.GetLocation()),
				Severity: &severity,
				Source:   &source,
				Message:  e.Error(),
			})
		}
	} else {
		compiler := lang.NewCompiler(uri, tokens)
		if _, ok := compiler.Compile(); !ok {
			for _, e := range compiler.Errors() {
				source := "japl-ls (compiler)"
				diagnostics = append(diagnostics, protocol.Diagnostic{
					Range:    lspRangeFromLoc(e.GetLocation()),
					Severity: &severity,
					Source:   &source,
					Message:  e.Error(),
				})
			}
		}
	}

	log.Printf("published %d diagnostic(s) for %s", len(diagnostics), uri)

	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func lspRangeFromLoc(loc lang.Loc) protocol.Range {
	startChar := loc.ColStart
	if startChar < 0 {
		startChar = 0
	}
	endChar := loc.ColEnd
	if endChar <= startChar {
		endChar = startChar + 1
	}

	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(loc.Line - 1), Character: protocol.UInteger(startChar)},
		End:   protocol.Position{Line: protocol.UInteger(loc.Line - 1), Character: protocol.UInteger(endChar)},
	}
}
