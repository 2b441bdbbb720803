package templates

import (
	"github.com/docweave/docweave/internal/ast"
	"github.com/docweave/docweave/internal/doctree"
	"github.com/docweave/docweave/internal/rewrite"
)

// Apply rewrites one document through a template. The template's own
// configuration merges beneath the document's, the template body is
// rewritten against the merged cursor, adjacent literal text merges,
// indentation in front of embedded content is recorded, and a body
// that collapses to a single embedded root unwraps to plain document
// content.
func Apply(tpl *doctree.TemplateDocument, dc *doctree.DocumentCursor, rules rewrite.Rules) *doctree.Document {
	cursor := dc
	if tpl.Config != nil {
		cursor = dc.WithConfig(dc.Config.WithFallback(tpl.Config))
	}

	spans := rewrite.TemplateSpans(tpl.Content, rules, cursor)
	spans = ast.MergeTemplateText(spans)
	spans = ast.RecordIndentation(spans)

	if len(spans) == 1 {
		if root, ok := spans[0].(*ast.EmbeddedRoot); ok && root.Indent == 0 {
			return dc.Doc.WithContent(root.Content)
		}
	}
	return dc.Doc.WithContent([]ast.Block{&ast.TemplateRoot{Content: spans}})
}
