// Package doctree models the document hierarchy the pipeline operates
// on (documents, directory trees, templates) plus the cursor layer
// that gives rewrite rules navigable, position-aware access to the
// whole tree during a pass.
package doctree

import (
	"path"
	"strings"

	"github.com/docweave/docweave/internal/ast"
	"github.com/docweave/docweave/internal/config"
	"github.com/docweave/docweave/internal/targets"
)

// Document is one parsed markup file: its AST, optional title, named
// fragments extracted for independent placement, resolved configuration
// and collected targets. Documents are never mutated in place; rewrite
// phases produce new copies.
type Document struct {
	Path      string
	Content   []ast.Block
	Title     []ast.Span
	Fragments map[string][]ast.Block
	Config    *config.Config
	Targets   *targets.DocumentTargets
}

// WithContent returns a copy with replaced content.
func (d *Document) WithContent(blocks []ast.Block) *Document {
	out := *d
	out.Content = blocks
	return &out
}

// TitleText returns the document title: explicit title spans, then the
// configured title, then the file name stem.
func (d *Document) TitleText() string {
	if len(d.Title) > 0 {
		return ast.ExtractText(d.Title)
	}
	if d.Config != nil {
		if v, ok := d.Config.Lookup("title"); ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	base := path.Base(d.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// TemplateDocument is a parsed template file associated with a tree.
type TemplateDocument struct {
	Path    string
	Content []ast.TemplateSpan
	Config  *config.Config
}

// TreeItem is a child of a Tree: a *Document or a nested *Tree.
type TreeItem interface {
	ItemPath() string
}

func (d *Document) ItemPath() string { return d.Path }
func (t *Tree) ItemPath() string     { return t.Path }

// Tree is one directory of the input hierarchy. It exclusively owns its
// children; nothing owns its parent (cursors carry parent handles).
type Tree struct {
	Path          string
	Children      []TreeItem
	TitleDocument *Document
	Templates     map[string]*TemplateDocument
	Config        *config.Config
}

// TitleText returns the tree title: the title document's, then the
// configured title, then the directory name.
func (t *Tree) TitleText() string {
	if t.TitleDocument != nil {
		return t.TitleDocument.TitleText()
	}
	if t.Config != nil {
		if v, ok := t.Config.Lookup("title"); ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	if t.Path == "/" {
		return "/"
	}
	return path.Base(t.Path)
}

// Template finds a template by file name on this tree.
func (t *Tree) Template(name string) (*TemplateDocument, bool) {
	tpl, ok := t.Templates[name]
	return tpl, ok
}

// Root is the complete document tree handed to a transform.
type Root struct {
	Tree *Tree
}

// AllDocuments returns every document in flattened order: a tree's
// title document first, then its children depth-first.
func (r *Root) AllDocuments() []*Document {
	var out []*Document
	collectDocs(r.Tree, &out)
	return out
}

func collectDocs(t *Tree, out *[]*Document) {
	if t.TitleDocument != nil {
		*out = append(*out, t.TitleDocument)
	}
	for _, item := range t.Children {
		switch c := item.(type) {
		case *Document:
			*out = append(*out, c)
		case *Tree:
			collectDocs(c, out)
		}
	}
}
