// Package uriutil converts between file:// URIs and file system paths.
package uriutil

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PathToURI returns the file:// URI for path, made absolute first. Path
// segments are percent-encoded and drive letters get a leading slash.
func PathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	path = filepath.ToSlash(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "file://" + strings.Join(segments, "/")
}

// URIToPath returns the file system path named by a file:// URI. Anything
// that is not a file URI is treated leniently as a path.
func URIToPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return fromSlash(strings.TrimPrefix(uri, "file://"))
	}
	if parsed.Host != "" && parsed.Host != "localhost" {
		return fromSlash("//" + parsed.Host + parsed.Path)
	}
	return fromSlash(parsed.Path)
}

// fromSlash strips the slash before a drive letter and converts separators
func fromSlash(path string) string {
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}
