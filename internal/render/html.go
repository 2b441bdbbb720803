// Package render turns resolved document content into output text.
// Renderers expect a tree the rewrite fixpoint has finished with:
// encountering a placeholder node is a bug in the rule chain, not bad
// input, and is reported as an error.
package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/docweave/docweave/internal/ast"
	"github.com/docweave/docweave/internal/parser"
)

// HTML renders document content as an HTML fragment. Link URLs that
// point at markup sources are rewritten to their rendered counterparts
// (.md becomes .html); invalid nodes render visibly with their
// diagnostic so broken references are debuggable in the output.
type HTML struct{}

func (HTML) Render(blocks []ast.Block) (string, error) {
	w := &htmlWriter{}
	w.blocks(blocks)
	if w.err != nil {
		return "", w.err
	}
	return w.b.String(), nil
}

type htmlWriter struct {
	b   strings.Builder
	err error
}

func (w *htmlWriter) errf(format string, args ...any) {
	if w.err == nil {
		w.err = fmt.Errorf(format, args...)
	}
}

func (w *htmlWriter) blocks(blocks []ast.Block) {
	for _, b := range blocks {
		w.block(b)
	}
}

func (w *htmlWriter) block(b ast.Block) {
	switch t := b.(type) {
	case *ast.RootContent:
		w.blocks(t.Blocks)
	case *ast.Paragraph:
		w.open("p", t.Opt)
		w.spans(t.Content)
		w.b.WriteString("</p>\n")
	case *ast.Header:
		tag := "h" + strconv.Itoa(t.Level)
		w.open(tag, t.Opt)
		w.spans(t.Content)
		w.b.WriteString("</" + tag + ">\n")
	case *ast.CodeBlock:
		w.b.WriteString("<pre><code")
		if t.Language != "" {
			w.attr("class", "language-"+t.Language)
		}
		w.b.WriteString(">")
		w.b.WriteString(html.EscapeString(t.Text))
		w.b.WriteString("</code></pre>\n")
	case *ast.QuotedBlock:
		w.open("blockquote", t.Opt)
		w.b.WriteString("\n")
		w.blocks(t.Content)
		w.b.WriteString("</blockquote>\n")
	case *ast.BulletList:
		w.open("ul", t.Opt)
		w.b.WriteString("\n")
		w.items(t.Items)
		w.b.WriteString("</ul>\n")
	case *ast.EnumList:
		w.b.WriteString("<ol")
		if t.Start > 1 {
			w.attr("start", strconv.Itoa(t.Start))
		}
		w.options(t.Opt)
		w.b.WriteString(">\n")
		w.items(t.Items)
		w.b.WriteString("</ol>\n")
	case *ast.Table:
		w.table(t)
	case *ast.BlockSequence:
		w.blocks(t.Content)
	case *ast.Rule:
		w.b.WriteString("<hr>\n")
	case *ast.Footnote:
		w.open("div", withStyle(t.Opt, "footnote"))
		w.b.WriteString("<sup>" + html.EscapeString(t.Label) + "</sup>\n")
		w.blocks(t.Content)
		w.b.WriteString("</div>\n")
	case *ast.Citation:
		w.open("div", withStyle(t.Opt, "citation"))
		w.b.WriteString("\n")
		w.blocks(t.Content)
		w.b.WriteString("</div>\n")
	case *ast.InternalLinkTarget:
		w.b.WriteString("<a")
		w.attr("id", t.Opt.ID)
		w.b.WriteString("></a>\n")
	case *ast.TemplateRoot:
		w.templateSpans(t.Content, 0)
	case *ast.InvalidBlock:
		w.b.WriteString("<div class=\"invalid\"")
		w.attr("title", t.Message)
		w.b.WriteString(">")
		w.b.WriteString(html.EscapeString(t.Fallback))
		w.b.WriteString("</div>\n")
	default:
		w.errf("render: unexpected block %T", b)
	}
}

func (w *htmlWriter) items(items [][]ast.Block) {
	for _, item := range items {
		w.b.WriteString("<li>")
		w.cell(item)
		w.b.WriteString("</li>\n")
	}
}

// cell renders a block list in inline position: a single paragraph
// loses its wrapper.
func (w *htmlWriter) cell(blocks []ast.Block) {
	if len(blocks) == 1 {
		if p, ok := blocks[0].(*ast.Paragraph); ok && p.Opt.ID == "" {
			w.spans(p.Content)
			return
		}
	}
	w.blocks(blocks)
}

func (w *htmlWriter) table(t *ast.Table) {
	w.open("table", t.Opt)
	w.b.WriteString("\n")
	if len(t.Head) > 0 {
		w.b.WriteString("<thead>\n")
		w.rows(t.Head, "th")
		w.b.WriteString("</thead>\n")
	}
	w.b.WriteString("<tbody>\n")
	w.rows(t.Body, "td")
	w.b.WriteString("</tbody>\n</table>\n")
}

func (w *htmlWriter) rows(rows []ast.TableRow, cellTag string) {
	for _, row := range rows {
		w.b.WriteString("<tr>")
		for _, c := range row.Cells {
			w.b.WriteString("<" + cellTag + ">")
			w.cell(c.Content)
			w.b.WriteString("</" + cellTag + ">")
		}
		w.b.WriteString("</tr>\n")
	}
}

func (w *htmlWriter) spans(spans []ast.Span) {
	for _, s := range spans {
		w.span(s)
	}
}

func (w *htmlWriter) span(s ast.Span) {
	switch t := s.(type) {
	case *ast.Text:
		w.b.WriteString(html.EscapeString(t.Content))
	case *ast.Emphasized:
		w.open("em", t.Opt)
		w.spans(t.Content)
		w.b.WriteString("</em>")
	case *ast.Strong:
		w.open("strong", t.Opt)
		w.spans(t.Content)
		w.b.WriteString("</strong>")
	case *ast.InlineCode:
		w.open("code", t.Opt)
		w.b.WriteString(html.EscapeString(t.Text))
		w.b.WriteString("</code>")
	case *ast.SpanSequence:
		w.spans(t.Content)
	case *ast.SpanLink:
		w.b.WriteString("<a")
		w.attr("href", RewriteURL(t.URL))
		if t.Title != "" {
			w.attr("title", t.Title)
		}
		w.options(t.Opt)
		w.b.WriteString(">")
		w.spans(t.Content)
		w.b.WriteString("</a>")
	case *ast.Image:
		w.b.WriteString("<img")
		w.attr("src", t.URL)
		w.attr("alt", t.Alt)
		if t.Title != "" {
			w.attr("title", t.Title)
		}
		w.b.WriteString(">")
	case *ast.FootnoteLink:
		w.b.WriteString("<sup><a")
		w.attr("href", "#"+t.Ref)
		w.b.WriteString(">")
		w.b.WriteString(html.EscapeString(t.Label))
		w.b.WriteString("</a></sup>")
	case *ast.CitationLink:
		w.b.WriteString("<a class=\"citation\"")
		w.attr("href", "#"+t.Ref)
		w.b.WriteString(">[")
		w.b.WriteString(html.EscapeString(t.Label))
		w.b.WriteString("]</a>")
	case *ast.InternalLinkTarget:
		w.b.WriteString("<a")
		w.attr("id", t.Opt.ID)
		w.b.WriteString("></a>")
	case *ast.InvalidSpan:
		w.b.WriteString("<span class=\"invalid\"")
		w.attr("title", t.Message)
		w.b.WriteString(">")
		w.b.WriteString(html.EscapeString(t.Fallback))
		w.b.WriteString("</span>")
	default:
		w.errf("render: unexpected span %T", s)
	}
}

func (w *htmlWriter) templateSpans(spans []ast.TemplateSpan, indent int) {
	for _, s := range spans {
		switch t := s.(type) {
		case *ast.TemplateText:
			w.b.WriteString(t.Text)
		case *ast.TemplateSpanSequence:
			w.templateSpans(t.Content, indent)
		case *ast.EmbeddedRoot:
			w.embedded(t)
		case *ast.InvalidTemplateSpan:
			w.b.WriteString("<span class=\"invalid\"")
			w.attr("title", t.Message)
			w.b.WriteString(">")
			w.b.WriteString(html.EscapeString(t.Fallback))
			w.b.WriteString("</span>")
		default:
			w.errf("render: unexpected template span %T", s)
		}
	}
}

// embedded renders nested document content, re-indenting every line
// after the first to the recorded insertion column.
func (w *htmlWriter) embedded(t *ast.EmbeddedRoot) {
	inner := &htmlWriter{}
	inner.blocks(t.Content)
	if inner.err != nil {
		w.errf("%v", inner.err)
		return
	}
	out := strings.TrimRight(inner.b.String(), "\n")
	if t.Indent > 0 {
		pad := strings.Repeat(" ", t.Indent)
		out = strings.ReplaceAll(out, "\n", "\n"+pad)
	}
	w.b.WriteString(out)
}

func (w *htmlWriter) open(tag string, opt ast.Options) {
	w.b.WriteString("<" + tag)
	w.options(opt)
	w.b.WriteString(">")
}

func (w *htmlWriter) options(opt ast.Options) {
	if opt.ID != "" {
		w.attr("id", opt.ID)
	}
	if len(opt.Styles) > 0 {
		w.attr("class", strings.Join(opt.Styles, " "))
	}
}

func (w *htmlWriter) attr(name, value string) {
	w.b.WriteString(" " + name + "=\"" + html.EscapeString(value) + "\"")
}

func withStyle(opt ast.Options, style string) ast.Options {
	if opt.HasStyle(style) {
		return opt
	}
	return ast.Options{ID: opt.ID, Styles: append([]string{style}, opt.Styles...)}
}

// RewriteURL maps markup source paths in internal links to their
// rendered form; external URLs pass through untouched.
func RewriteURL(url string) string {
	if strings.Contains(url, "://") || strings.HasPrefix(url, "mailto:") {
		return url
	}
	p, frag, hasFrag := strings.Cut(url, "#")
	if !parser.IsSupportedExtension(p) {
		return url
	}
	ext := p[strings.LastIndex(p, "."):]
	p = strings.TrimSuffix(p, ext) + ".html"
	if hasFrag {
		return p + "#" + frag
	}
	return p
}
