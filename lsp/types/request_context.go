package types

import (
	"github.com/tliron/glsp"
)

// RequestContext carries the server and the client connection for one
// request, plus any non-fatal warnings the handler collected.
type RequestContext struct {
	Server   ServerContext
	GLSP     *glsp.Context
	warnings []error
}

// NewRequestContext creates a request context
func NewRequestContext(server ServerContext, ctx *glsp.Context) *RequestContext {
	return &RequestContext{
		Server: server,
		GLSP:   ctx,
	}
}

// AddWarning records a non-fatal problem. The middleware logs warnings
// after the handler returns.
func (r *RequestContext) AddWarning(err error) {
	if err != nil {
		r.warnings = append(r.warnings, err)
	}
}

// Warnings returns the collected warnings
func (r *RequestContext) Warnings() []error {
	return r.warnings
}
