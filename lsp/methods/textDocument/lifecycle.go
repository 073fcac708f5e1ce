// Package textDocument implements the document synchronization
// notifications. Every change recompiles the document and pushes its
// diagnostics.
package textDocument

import (
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidOpen handles the textDocument/didOpen notification
func DidOpen(req *types.RequestContext, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	log.Info("Document opened: %s (language: %s, version: %d)", doc.URI, doc.LanguageID, doc.Version)

	if err := req.Server.DocumentManager().DidOpen(doc.URI, doc.LanguageID, int(doc.Version), doc.Text); err != nil {
		return err
	}
	publish(req, doc.URI)
	return nil
}

// DidChange handles the textDocument/didChange notification
func DidChange(req *types.RequestContext, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	log.Debug("Document changed: %s (version: %d, changes: %d)", uri, params.TextDocument.Version, len(params.ContentChanges))

	changes := make([]protocol.TextDocumentContentChangeEvent, 0, len(params.ContentChanges))
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, c)
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, protocol.TextDocumentContentChangeEvent{Text: c.Text})
		}
	}

	if err := req.Server.DocumentManager().DidChange(uri, int(params.TextDocument.Version), changes); err != nil {
		return err
	}
	publish(req, uri)
	return nil
}

// DidSave handles the textDocument/didSave notification. Saving a file can
// fix or break other open documents that import it, so all are recompiled.
func DidSave(req *types.RequestContext, params *protocol.DidSaveTextDocumentParams) error {
	log.Debug("Document saved: %s", params.TextDocument.URI)
	for _, doc := range req.Server.DocumentManager().GetAll() {
		publish(req, doc.URI())
	}
	return nil
}

// DidClose handles the textDocument/didClose notification
func DidClose(req *types.RequestContext, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	log.Info("Document closed: %s", uri)

	if err := req.Server.DocumentManager().DidClose(uri); err != nil {
		return err
	}
	req.Server.ClearDiagnostics(connection(req), uri)
	return nil
}

func publish(req *types.RequestContext, uri string) {
	if err := req.Server.PublishDiagnostics(connection(req), uri); err != nil {
		req.AddWarning(err)
	}
}

// connection prefers the request's connection over the stored one
func connection(req *types.RequestContext) *glsp.Context {
	if req.GLSP != nil {
		return req.GLSP
	}
	return req.Server.GLSPContext()
}
