package templates

import (
	"fmt"

	"github.com/docweave/docweave/internal/ast"
	"github.com/docweave/docweave/internal/config"
	"github.com/docweave/docweave/internal/doctree"
)

// Fallback is the built-in template used when neither configuration nor
// any directory default names one: it inserts the document content and
// nothing else.
func Fallback() *doctree.TemplateDocument {
	return &doctree.TemplateDocument{
		Path:    "/default.template.html",
		Content: []ast.TemplateSpan{&ast.TemplateVariable{Key: "document.content", Source: "${document.content}"}},
	}
}

// Select picks the template applied to one document, in precedence
// order: an explicitly configured template path (the format-specific
// key first, then the generic one), the nearest ancestor directory's
// default template for the format, and finally the built-in fallback.
// Relative configured paths resolve against the layer that defined
// them; a configured path that names no template is an error, silent
// fallback would mask a typo.
func Select(rc *doctree.RootCursor, dc *doctree.DocumentCursor, format string) (*doctree.TemplateDocument, error) {
	for _, key := range []string{"template." + format, "template"} {
		p, ok, err := config.GetPath(dc.Config, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		tpl, found := rc.TemplateByPath(p)
		if !found {
			return nil, fmt.Errorf("template %q configured for %s not found", p, dc.Path())
		}
		return tpl, nil
	}

	name := "default.template." + format
	for tc := rc.TreeFor(dc); tc != nil; tc = tc.Parent() {
		if tpl, ok := tc.Tree.Template(name); ok {
			return tpl, nil
		}
	}
	return Fallback(), nil
}
