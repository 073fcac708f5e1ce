// Package documents keeps the editor buffers the language server compiles.
package documents

import (
	"fmt"

	"bennypowers.dev/chtl/internal/uriutil"
)

// Document is an open source file
type Document struct {
	uri        string
	path       string
	languageID string
	content    string
	version    int
}

// NewDocument creates a document for uri
func NewDocument(uri, languageID string, version int, content string) *Document {
	return &Document{
		uri:        uri,
		path:       uriutil.URIToPath(uri),
		languageID: languageID,
		version:    version,
		content:    content,
	}
}

// URI returns the document's URI
func (d *Document) URI() string {
	return d.uri
}

// Path returns the file system path the URI names
func (d *Document) Path() string {
	return d.path
}

// LanguageID returns the client's language identifier
func (d *Document) LanguageID() string {
	return d.languageID
}

// Version returns the document's version
func (d *Document) Version() int {
	return d.version
}

// Content returns the current buffer
func (d *Document) Content() string {
	return d.content
}

// SetContent replaces the buffer. Updates older than the current version
// are rejected.
func (d *Document) SetContent(content string, version int) error {
	if version < d.version {
		return fmt.Errorf("rejected stale update: document version is %d but update version is %d", d.version, version)
	}
	d.content = content
	d.version = version
	return nil
}
