package documents

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bennypowers.dev/chtl/internal/position"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Manager tracks open documents by URI
type Manager struct {
	documents map[string]*Document
	mu        sync.RWMutex
}

// NewManager creates an empty manager
func NewManager() *Manager {
	return &Manager{
		documents: make(map[string]*Document),
	}
}

// Get returns the document for uri, or nil
func (m *Manager) Get(uri string) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.documents[uri]
}

// GetAll returns every open document
func (m *Manager) GetAll() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]*Document, 0, len(m.documents))
	for _, doc := range m.documents {
		docs = append(docs, doc)
	}
	return docs
}

// ByPath returns the open document backed by path, or nil
func (m *Manager) ByPath(path string) *Document {
	path = filepath.Clean(path)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doc := range m.documents {
		if doc.path != "" && filepath.Clean(doc.path) == path {
			return doc
		}
	}
	return nil
}

// Read returns the buffer of an open document at path, falling back to the
// file on disk. Imports compiled by the language server see unsaved edits.
func (m *Manager) Read(path string) ([]byte, error) {
	if doc := m.ByPath(path); doc != nil {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return []byte(doc.content), nil
	}
	return os.ReadFile(path) //nolint:gosec // G304: import paths come from the compiled sources
}

// DidOpen starts tracking a document
func (m *Manager) DidOpen(uri, languageID string, version int, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[uri] = NewDocument(uri, languageID, version, content)
	return nil
}

// DidClose stops tracking a document
func (m *Manager) DidClose(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.documents[uri]; !exists {
		return fmt.Errorf("document not found: %s", uri)
	}
	delete(m.documents, uri)
	return nil
}

// DidChange applies full or incremental edits in order
func (m *Manager) DidChange(uri string, version int, changes []protocol.TextDocumentContentChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.documents[uri]
	if !exists {
		return fmt.Errorf("document not found: %s", uri)
	}

	content := doc.content
	for _, change := range changes {
		if change.Range == nil {
			content = change.Text
			continue
		}
		next, err := applyIncrementalChange(content, *change.Range, change.Text)
		if err != nil {
			return fmt.Errorf("failed to apply changes: %w", err)
		}
		content = next
	}

	if err := doc.SetContent(content, version); err != nil {
		return fmt.Errorf("failed to set document content: %w", err)
	}
	return nil
}

// applyIncrementalChange replaces the range with text. LSP columns count
// UTF-16 code units.
func applyIncrementalChange(content string, r protocol.Range, text string) (string, error) {
	lines := strings.Split(content, "\n")
	startLine, endLine := int(r.Start.Line), int(r.End.Line)
	if startLine > len(lines) || endLine > len(lines) || startLine > endLine {
		return "", fmt.Errorf("range %d-%d out of bounds (total lines: %d)", startLine, endLine, len(lines))
	}

	startCol, endCol := int(r.Start.Character), int(r.End.Character)
	// insertion at the line past the end appends to the last line
	if startLine == len(lines) {
		startLine, endLine = len(lines)-1, len(lines)-1
		startCol = position.StringLengthUTF16(lines[startLine])
		endCol = startCol
	}
	if endLine == len(lines) {
		endLine = len(lines) - 1
		endCol = position.StringLengthUTF16(lines[endLine])
	}

	startByte := position.UTF16ToByteOffset(lines[startLine], startCol)
	endByte := position.UTF16ToByteOffset(lines[endLine], endCol)

	var b strings.Builder
	for i := range startLine {
		b.WriteString(lines[i])
		b.WriteString("\n")
	}
	b.WriteString(lines[startLine][:startByte])
	b.WriteString(text)
	b.WriteString(lines[endLine][endByte:])
	for i := endLine + 1; i < len(lines); i++ {
		b.WriteString("\n")
		b.WriteString(lines[i])
	}
	return b.String(), nil
}
