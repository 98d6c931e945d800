package xbrl

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ParseFunc converts raw filing bytes into a Document.
type ParseFunc func(r io.Reader) (*Document, error)

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".xbrl":  true,
	".xml":   true,
	".xsd":   true,
	".xhtml": true,
	".html":  true,
	".htm":   true,
}

// ForFile returns the parser for a filename: plain instance documents for
// XML extensions, the inline-XBRL parser for XHTML ones.
func ForFile(filename string) (ParseFunc, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xbrl", ".xml", ".xsd":
		return ParseInstance, nil
	case ".xhtml", ".html", ".htm":
		return ParseInline, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}
