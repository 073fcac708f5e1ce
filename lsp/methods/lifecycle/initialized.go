package lifecycle

import (
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Initialized stores the client connection for later diagnostics and
// registers file watchers.
func Initialized(req *types.RequestContext, params *protocol.InitializedParams) error {
	log.Info("Server initialized")
	req.Server.SetGLSPContext(req.GLSP)
	if err := req.Server.RegisterFileWatchers(req.GLSP); err != nil {
		req.AddWarning(err)
	}
	return nil
}
