// Package types holds the contracts shared by the language server and its
// method handlers.
package types

import (
	"bennypowers.dev/chtl/internal/config"
	"bennypowers.dev/chtl/internal/documents"
	"github.com/tliron/glsp"
)

// ServerContext provides everything LSP handlers need. Tests substitute a
// mock.
type ServerContext interface {
	// Documents
	Document(uri string) *documents.Document
	DocumentManager() *documents.Manager

	// Workspace
	RootURI() string
	RootPath() string
	SetRootURI(uri string)
	SetRootPath(path string)

	// Configuration from chtl.yaml / chtl.json in the workspace root
	Config() *config.Config
	SetConfig(cfg *config.Config)
	LoadConfig() error
	RegisterFileWatchers(ctx *glsp.Context) error

	// Client connection
	GLSPContext() *glsp.Context
	SetGLSPContext(ctx *glsp.Context)

	// Diagnostics
	PublishDiagnostics(ctx *glsp.Context, uri string) error
	ClearDiagnostics(ctx *glsp.Context, uri string)
}
