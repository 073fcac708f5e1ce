package lifecycle

import (
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SetTrace maps the client's trace value onto the log level
func SetTrace(req *types.RequestContext, params *protocol.SetTraceParams) error {
	log.Info("Trace level set to: %s", params.Value)
	if params.Value == protocol.TraceValueVerbose {
		log.SetLevel(log.LevelDebug)
	} else {
		log.SetLevel(log.LevelInfo)
	}
	return nil
}
