package workspace

import (
	"path/filepath"
	"slices"

	"bennypowers.dev/chtl/internal/config"
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/internal/uriutil"
	"bennypowers.dev/chtl/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeWatchedFiles reloads the configuration when a config file
// changes and recompiles every open document, since any changed file may
// be one of their imports.
func DidChangeWatchedFiles(req *types.RequestContext, params *protocol.DidChangeWatchedFilesParams) error {
	if len(params.Changes) == 0 {
		return nil
	}
	log.Info("Watched files changed: %d files", len(params.Changes))

	for _, change := range params.Changes {
		name := filepath.Base(uriutil.URIToPath(change.URI))
		if slices.Contains(config.FileNames, name) {
			log.Info("Reloading configuration after change to %s", name)
			if err := req.Server.LoadConfig(); err != nil {
				req.AddWarning(err)
			}
			break
		}
	}

	ctx := req.GLSP
	if ctx == nil {
		ctx = req.Server.GLSPContext()
	}
	for _, doc := range req.Server.DocumentManager().GetAll() {
		if err := req.Server.PublishDiagnostics(ctx, doc.URI()); err != nil {
			req.AddWarning(err)
		}
	}
	return nil
}
