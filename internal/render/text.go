package render

import (
	"fmt"
	"strings"

	"github.com/docweave/docweave/internal/ast"
)

// Text renders document content as an indented node tree, one node per
// line. It is the debugging view behind `--format ast` and accepts any
// tree, resolved or not.
type Text struct{}

func (Text) Render(blocks []ast.Block) (string, error) {
	w := &textWriter{}
	for _, b := range blocks {
		w.node(b, 0)
	}
	return w.b.String(), nil
}

type textWriter struct {
	b strings.Builder
}

func (w *textWriter) line(depth int, format string, args ...any) {
	w.b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *textWriter) node(n ast.Node, depth int) {
	switch t := n.(type) {
	case *ast.RootContent:
		w.line(depth, "RootContent")
		w.children(t.Blocks, depth+1)
	case *ast.Paragraph:
		w.line(depth, "Paragraph%s", optSuffix(t.Opt))
		w.spanChildren(t.Content, depth+1)
	case *ast.Header:
		w.line(depth, "Header(%d)%s", t.Level, optSuffix(t.Opt))
		w.spanChildren(t.Content, depth+1)
	case *ast.DecoratedHeader:
		w.line(depth, "DecoratedHeader(%q)", t.Decoration)
		w.spanChildren(t.Content, depth+1)
	case *ast.CodeBlock:
		w.line(depth, "CodeBlock(%s) %q", t.Language, t.Text)
	case *ast.QuotedBlock:
		w.line(depth, "QuotedBlock")
		w.children(t.Content, depth+1)
	case *ast.BulletList:
		w.line(depth, "BulletList")
		w.itemChildren(t.Items, depth+1)
	case *ast.EnumList:
		w.line(depth, "EnumList(start=%d)", t.Start)
		w.itemChildren(t.Items, depth+1)
	case *ast.Table:
		w.line(depth, "Table(head=%d, body=%d)", len(t.Head), len(t.Body))
	case *ast.BlockSequence:
		w.line(depth, "BlockSequence")
		w.children(t.Content, depth+1)
	case *ast.Rule:
		w.line(depth, "Rule")
	case *ast.Footnote:
		w.line(depth, "Footnote(%s)%s", t.Label, optSuffix(t.Opt))
		w.children(t.Content, depth+1)
	case *ast.FootnoteDefinition:
		w.line(depth, "FootnoteDefinition(%T)", t.Label)
		w.children(t.Content, depth+1)
	case *ast.Citation:
		w.line(depth, "Citation(%s)%s", t.Label, optSuffix(t.Opt))
		w.children(t.Content, depth+1)
	case *ast.LinkDefinition:
		w.line(depth, "LinkDefinition(%s -> %s)", t.ID, t.URL)
	case *ast.LinkAlias:
		w.line(depth, "LinkAlias(%s -> %s)", t.ID, t.Target)
	case *ast.InternalLinkTarget:
		w.line(depth, "InternalLinkTarget%s", optSuffix(t.Opt))
	case *ast.TemplateRoot:
		w.line(depth, "TemplateRoot")
		for _, s := range t.Content {
			w.node(s, depth+1)
		}
	case *ast.TemplateText:
		w.line(depth, "TemplateText %q", t.Text)
	case *ast.EmbeddedRoot:
		w.line(depth, "EmbeddedRoot(indent=%d)", t.Indent)
		w.children(t.Content, depth+1)
	case *ast.InvalidBlock:
		w.line(depth, "InvalidBlock(%q)", t.Message)
	case *ast.InvalidSpan:
		w.line(depth, "InvalidSpan(%q)", t.Message)
	case *ast.InvalidTemplateSpan:
		w.line(depth, "InvalidTemplateSpan(%q)", t.Message)
	case *ast.Text:
		w.line(depth, "Text %q", t.Content)
	case *ast.Emphasized:
		w.line(depth, "Emphasized")
		w.spanChildren(t.Content, depth+1)
	case *ast.Strong:
		w.line(depth, "Strong")
		w.spanChildren(t.Content, depth+1)
	case *ast.InlineCode:
		w.line(depth, "InlineCode %q", t.Text)
	case *ast.SpanSequence:
		w.line(depth, "SpanSequence")
		w.spanChildren(t.Content, depth+1)
	case *ast.SpanLink:
		w.line(depth, "SpanLink(%s)", t.URL)
		w.spanChildren(t.Content, depth+1)
	case *ast.Image:
		w.line(depth, "Image(%s)", t.URL)
	case *ast.FootnoteLink:
		w.line(depth, "FootnoteLink(%s -> %s)", t.Label, t.Ref)
	case *ast.CitationLink:
		w.line(depth, "CitationLink(%s -> %s)", t.Label, t.Ref)
	default:
		if u, ok := n.(ast.Unresolved); ok {
			w.line(depth, "%T(%q)", n, u.UnresolvedMessage())
			return
		}
		w.line(depth, "%T", n)
	}
}

func (w *textWriter) children(blocks []ast.Block, depth int) {
	for _, b := range blocks {
		w.node(b, depth)
	}
}

func (w *textWriter) spanChildren(spans []ast.Span, depth int) {
	for _, s := range spans {
		w.node(s, depth)
	}
}

func (w *textWriter) itemChildren(items [][]ast.Block, depth int) {
	for _, item := range items {
		w.line(depth, "Item")
		w.children(item, depth+1)
	}
}

func optSuffix(opt ast.Options) string {
	if opt.ID == "" && len(opt.Styles) == 0 {
		return ""
	}
	if len(opt.Styles) == 0 {
		return fmt.Sprintf(" #%s", opt.ID)
	}
	if opt.ID == "" {
		return fmt.Sprintf(" .%s", strings.Join(opt.Styles, "."))
	}
	return fmt.Sprintf(" #%s .%s", opt.ID, strings.Join(opt.Styles, "."))
}
