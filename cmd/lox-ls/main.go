package main

import (
	"sync"

	"loxvm/lox"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "lox-ls"

var (
	version string = "0.1.0"
	handler protocol.Handler
	log     = commonlog.GetLogger(lsName)

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
		TextDocumentCompletion: textDocumentCompletion,
	}

	s := server.NewServer(&handler, lsName, false)
	s.RunStdio()
}

func initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initializing")

	capabilities := handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &[]bool{true}[0],
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func shutdown(context *glsp.Context) error {
	return nil
}

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

	// Full sync: the last change carries the whole document.
	whole, ok := params.ContentChanges[len(params.ContentChanges)-1].(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}

	documentsMutex.Lock()
	documents[params.TextDocument.URI] = whole.Text
	documentsMutex.Unlock()

	go publishDiagnostics(context, params.TextDocument.URI, whole.Text)
	return nil
}

func textDocumentDidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	documentsMutex.Lock()
	delete(documents, params.TextDocument.URI)
	documentsMutex.Unlock()
	return nil
}

func textDocumentCompletion(context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	kind := protocol.CompletionItemKindKeyword
	detail := "keyword"

	items := []protocol.CompletionItem{}
	for _, keyword := range lox.GetAllKeywords() {
		items = append(items, protocol.CompletionItem{
			Label:  keyword,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

func publishDiagnostics(context *glsp.Context, uri string, content string) {
	diagnostics := []protocol.Diagnostic{}
	severity := protocol.DiagnosticSeverityError
	source := lsName + " (scanner)"

	for _, tok := range lox.ScanErrors(uri, content) {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    lspRangeFromLoc(tok.Loc),
			Severity: &severity,
			Source:   &source,
			Message:  tok.Lexeme,
		})
	}
	log.Debugf("%s: %d diagnostics", uri, len(diagnostics))

	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func lspRangeFromLoc(loc lox.Loc) protocol.Range {
	startChar := loc.ColStart - 1
	if startChar < 0 {
		startChar = 0
	}
	endChar := startChar + 1
	if loc.ColEnd > loc.ColStart {
		endChar = loc.ColEnd
	}
	line := loc.Line - 1
	if line < 0 {
		line = 0
	}

	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(startChar)},
		End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(endChar)},
	}
}
