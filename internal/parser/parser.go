// Package parser turns markup source files into documents: YAML
// frontmatter becomes the per-document configuration layer and the
// markup body becomes the format-neutral AST, with reference and
// target placeholders left for the rewrite phases to resolve.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docweave/docweave/internal/doctree"
)

// Parser converts raw source bytes into a document at the given tree
// path.
type Parser interface {
	Parse(src []byte, docPath string) (*doctree.Document, error)
}

// SupportedExtensions lists the file extensions the pipeline treats as
// markup documents.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// ForFile returns the parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
