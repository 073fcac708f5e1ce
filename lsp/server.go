// Package lsp is the CHTL language server. It compiles open documents and
// pushes their compile errors as diagnostics.
package lsp

import (
	"errors"
	"fmt"
	"sync"

	"bennypowers.dev/chtl/internal/config"
	"bennypowers.dev/chtl/internal/documents"
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/lsp/methods/lifecycle"
	"bennypowers.dev/chtl/lsp/methods/textDocument"
	"bennypowers.dev/chtl/lsp/methods/textDocument/diagnostic"
	"bennypowers.dev/chtl/lsp/methods/workspace"
	"bennypowers.dev/chtl/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

var _ types.ServerContext = (*Server)(nil)

// Server is the CHTL language server
type Server struct {
	documents  *documents.Manager
	glspServer *server.Server
	handler    protocol.Handler

	mu       sync.RWMutex // guards the fields below
	context  *glsp.Context
	rootURI  string
	rootPath string
	config   *config.Config
}

// NewServer creates a server with the default configuration
func NewServer() (*Server, error) {
	s := &Server{
		documents: documents.NewManager(),
		config:    config.Default(),
	}

	s.handler = protocol.Handler{
		Initialize:                     method(s, "initialize", lifecycle.Initialize),
		Initialized:                    notify(s, "initialized", lifecycle.Initialized),
		Shutdown:                       noParam(s, "shutdown", lifecycle.Shutdown),
		SetTrace:                       notify(s, "$/setTrace", lifecycle.SetTrace),
		WorkspaceDidChangeWatchedFiles: notify(s, "workspace/didChangeWatchedFiles", workspace.DidChangeWatchedFiles),
		TextDocumentDidOpen:            notify(s, "textDocument/didOpen", textDocument.DidOpen),
		TextDocumentDidChange:          notify(s, "textDocument/didChange", textDocument.DidChange),
		TextDocumentDidSave:            notify(s, "textDocument/didSave", textDocument.DidSave),
		TextDocumentDidClose:           notify(s, "textDocument/didClose", textDocument.DidClose),
	}
	s.glspServer = server.NewServer(&s.handler, lifecycle.ServerName, false)
	return s, nil
}

// RunStdio serves LSP over stdin/stdout until the client exits
func (s *Server) RunStdio() error {
	return s.glspServer.RunStdio()
}

// Handler exposes the protocol handler, mainly for tests
func (s *Server) Handler() *protocol.Handler {
	return &s.handler
}

// Document returns the open document for uri
func (s *Server) Document(uri string) *documents.Document {
	return s.documents.Get(uri)
}

// DocumentManager returns the open-document store
func (s *Server) DocumentManager() *documents.Manager {
	return s.documents
}

// RootURI returns the workspace root URI
func (s *Server) RootURI() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootURI
}

// RootPath returns the workspace root path
func (s *Server) RootPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootPath
}

// SetRootURI sets the workspace root URI
func (s *Server) SetRootURI(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootURI = uri
}

// SetRootPath sets the workspace root path
func (s *Server) SetRootPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootPath = path
}

// Config returns the active configuration
func (s *Server) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetConfig replaces the active configuration
func (s *Server) SetConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

// LoadConfig reads the configuration file in the workspace root. On error
// the previous configuration stays active.
func (s *Server) LoadConfig() error {
	root := s.RootPath()
	if root == "" {
		return nil
	}
	cfg, file, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if file != "" {
		log.Info("Loaded configuration from %s", file)
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	s.SetConfig(cfg)
	return nil
}

// GLSPContext returns the stored client connection
func (s *Server) GLSPContext() *glsp.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.context
}

// SetGLSPContext stores the client connection
func (s *Server) SetGLSPContext(ctx *glsp.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = ctx
}

// PublishDiagnostics compiles the document and pushes the result
func (s *Server) PublishDiagnostics(ctx *glsp.Context, uri string) error {
	if ctx == nil {
		ctx = s.GLSPContext()
	}
	if ctx == nil || ctx.Notify == nil {
		return errors.New("cannot publish diagnostics: no client connection")
	}

	diagnostics, err := diagnostic.GetDiagnostics(s, uri)
	if err != nil {
		return err
	}
	if diagnostics == nil {
		return nil
	}
	log.Debug("Publishing %d diagnostics for %s", len(diagnostics), uri)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}

// ClearDiagnostics pushes an empty diagnostic list for uri
func (s *Server) ClearDiagnostics(ctx *glsp.Context, uri string) {
	if ctx == nil {
		ctx = s.GLSPContext()
	}
	if ctx == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
}

// RegisterFileWatchers asks the client to report changes to sources and
// configuration files
func (s *Server) RegisterFileWatchers(ctx *glsp.Context) error {
	if ctx == nil || ctx.Call == nil {
		log.Info("Skipping file watcher registration (no client connection)")
		return nil
	}

	watchers := []protocol.FileSystemWatcher{{GlobPattern: "**/*.chtl"}}
	for _, name := range config.FileNames {
		watchers = append(watchers, protocol.FileSystemWatcher{GlobPattern: "**/" + name})
	}
	params := protocol.RegistrationParams{
		Registrations: []protocol.Registration{{
			ID:     "chtl-file-watcher",
			Method: "workspace/didChangeWatchedFiles",
			RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
				Watchers: watchers,
			},
		}},
	}

	// client/registerCapability is a request; calling it on the handler
	// goroutine would deadlock waiting for the response
	go func(ctx *glsp.Context) {
		var result any
		ctx.Call("client/registerCapability", params, &result)
		log.Debug("File watcher registration completed")
	}(ctx)
	return nil
}
