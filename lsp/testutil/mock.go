// Package testutil provides a ServerContext double for handler tests.
package testutil

import (
	"sync"

	"bennypowers.dev/chtl/internal/config"
	"bennypowers.dev/chtl/internal/documents"
	"bennypowers.dev/chtl/lsp/methods/textDocument/diagnostic"
	"bennypowers.dev/chtl/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var _ types.ServerContext = (*MockServerContext)(nil)

// MockServerContext records published diagnostics instead of sending them
type MockServerContext struct {
	docs        *documents.Manager
	rootURI     string
	rootPath    string
	config      *config.Config
	glspContext *glsp.Context

	// LoadConfigFunc overrides LoadConfig when set
	LoadConfigFunc func() error

	mu          sync.Mutex
	Published   map[string][]protocol.Diagnostic
	Cleared     []string
	ConfigLoads int
	Watchers    int
}

// NewMockServerContext creates a mock with the default configuration
func NewMockServerContext() *MockServerContext {
	return &MockServerContext{
		docs:      documents.NewManager(),
		config:    config.Default(),
		Published: make(map[string][]protocol.Diagnostic),
	}
}

func (m *MockServerContext) Document(uri string) *documents.Document { return m.docs.Get(uri) }
func (m *MockServerContext) DocumentManager() *documents.Manager     { return m.docs }
func (m *MockServerContext) RootURI() string                         { return m.rootURI }
func (m *MockServerContext) RootPath() string                        { return m.rootPath }
func (m *MockServerContext) SetRootURI(uri string)                   { m.rootURI = uri }
func (m *MockServerContext) SetRootPath(path string)                 { m.rootPath = path }
func (m *MockServerContext) Config() *config.Config                  { return m.config }
func (m *MockServerContext) SetConfig(cfg *config.Config)            { m.config = cfg }
func (m *MockServerContext) GLSPContext() *glsp.Context              { return m.glspContext }
func (m *MockServerContext) SetGLSPContext(ctx *glsp.Context)        { m.glspContext = ctx }

// LoadConfig counts calls and loads from the root path
func (m *MockServerContext) LoadConfig() error {
	m.ConfigLoads++
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc()
	}
	if m.rootPath == "" {
		return nil
	}
	cfg, _, err := config.Load(m.rootPath)
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// RegisterFileWatchers counts calls
func (m *MockServerContext) RegisterFileWatchers(*glsp.Context) error {
	m.Watchers++
	return nil
}

// PublishDiagnostics compiles the document and records the result
func (m *MockServerContext) PublishDiagnostics(_ *glsp.Context, uri string) error {
	diagnostics, err := diagnostic.GetDiagnostics(m, uri)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published[uri] = diagnostics
	return nil
}

// ClearDiagnostics records the cleared URI
func (m *MockServerContext) ClearDiagnostics(_ *glsp.Context, uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Published, uri)
	m.Cleared = append(m.Cleared, uri)
}
