package lifecycle

import (
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/lsp/types"
)

// Shutdown handles the shutdown request
func Shutdown(req *types.RequestContext) error {
	log.Info("Server shutting down")
	req.Server.SetGLSPContext(nil)
	return nil
}
