package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/docweave/docweave/internal/ast"
	"github.com/docweave/docweave/internal/config"
	"github.com/docweave/docweave/internal/doctree"
	"github.com/docweave/docweave/internal/targets"
)

// MarkdownParser adapts goldmark's parse result to the pipeline AST.
// It does not render; goldmark only supplies the syntax tree.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(src []byte, docPath string) (*doctree.Document, error) {
	meta, body, err := config.ParseFrontmatter(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", docPath, err)
	}
	var cfg *config.Config
	if len(meta) > 0 {
		cfg = config.New(meta, config.Origin{TreePath: docPath})
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Footnote, extension.Table))
	root := md.Parser().Parse(text.NewReader(body))

	c := &converter{src: body, footnotes: map[int]ast.FootnoteLabel{}}
	c.indexFootnotes(root)
	content := c.blocks(root)
	content = append(content, scanLinkDefinitions(body)...)

	return &doctree.Document{
		Path:    docPath,
		Content: content,
		Title:   firstHeaderTitle(content),
		Config:  cfg,
	}, nil
}

// firstHeaderTitle takes the first top-level header as the document
// title, the same way the file's readers would.
func firstHeaderTitle(blocks []ast.Block) []ast.Span {
	for _, b := range blocks {
		if h, ok := b.(*ast.Header); ok {
			return h.Content
		}
	}
	return nil
}

// linkDefPattern matches markdown link reference definitions. goldmark
// consumes them into its parse context, so they are re-scanned from
// source to become LinkDefinition targets visible to other documents.
var linkDefPattern = regexp.MustCompile(`(?m)^\[([^\]^][^\]]*)\]:\s*(\S+)(?:\s+"([^"]*)")?\s*$`)

func scanLinkDefinitions(body []byte) []ast.Block {
	var out []ast.Block
	for _, m := range linkDefPattern.FindAllSubmatch(body, -1) {
		out = append(out, &ast.LinkDefinition{
			ID:     string(m[1]),
			URL:    string(m[2]),
			Title:  string(m[3]),
			Source: string(m[0]),
		})
	}
	return out
}

type converter struct {
	src       []byte
	footnotes map[int]ast.FootnoteLabel
}

// indexFootnotes maps goldmark footnote indices back to their labels so
// reference spans can carry the label the author wrote.
func (c *converter) indexFootnotes(root gast.Node) {
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		list, ok := n.(*east.FootnoteList)
		if !ok {
			continue
		}
		for f := list.FirstChild(); f != nil; f = f.NextSibling() {
			fn, ok := f.(*east.Footnote)
			if !ok {
				continue
			}
			c.footnotes[fn.Index] = footnoteLabel(string(fn.Ref))
		}
	}
}

func footnoteLabel(ref string) ast.FootnoteLabel {
	if n, err := strconv.Atoi(ref); err == nil {
		return ast.NumericLabel{Number: n}
	}
	return ast.AutonumberLabel{Label: ref}
}

func (c *converter) blocks(n gast.Node) []ast.Block {
	var out []ast.Block
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, c.block(child)...)
	}
	return out
}

func (c *converter) block(n gast.Node) []ast.Block {
	switch t := n.(type) {
	case *gast.Heading:
		content := c.spans(t)
		id := targets.SlugID(ast.ExtractText(content))
		return []ast.Block{&ast.Header{Level: t.Level, Content: content, Opt: ast.Options{ID: id}}}

	case *gast.Paragraph:
		return []ast.Block{&ast.Paragraph{Content: c.spans(t)}}

	case *gast.TextBlock:
		return []ast.Block{&ast.Paragraph{Content: c.spans(t)}}

	case *gast.Blockquote:
		return []ast.Block{&ast.QuotedBlock{Content: c.blocks(t)}}

	case *gast.List:
		items := make([][]ast.Block, 0, t.ChildCount())
		for item := t.FirstChild(); item != nil; item = item.NextSibling() {
			items = append(items, c.blocks(item))
		}
		if t.IsOrdered() {
			return []ast.Block{&ast.EnumList{Start: t.Start, Items: items}}
		}
		return []ast.Block{&ast.BulletList{Items: items}}

	case *gast.FencedCodeBlock:
		return []ast.Block{&ast.CodeBlock{
			Language: string(t.Language(c.src)),
			Text:     c.blockText(t),
		}}

	case *gast.CodeBlock:
		return []ast.Block{&ast.CodeBlock{Text: c.blockText(t)}}

	case *gast.ThematicBreak:
		return []ast.Block{&ast.Rule{}}

	case *gast.HTMLBlock:
		// Raw HTML passes through as literal text.
		return []ast.Block{&ast.Paragraph{Content: []ast.Span{&ast.Text{Content: c.blockText(t)}}}}

	case *east.FootnoteList:
		var out []ast.Block
		for f := t.FirstChild(); f != nil; f = f.NextSibling() {
			fn, ok := f.(*east.Footnote)
			if !ok {
				continue
			}
			ref := string(fn.Ref)
			out = append(out, &ast.FootnoteDefinition{
				Label:   footnoteLabel(ref),
				Content: c.blocks(fn),
				Source:  "[^" + ref + "]",
			})
		}
		return out

	case *east.Table:
		return []ast.Block{c.table(t)}

	default:
		if txt := c.blockText(n); txt != "" {
			return []ast.Block{&ast.Paragraph{Content: []ast.Span{&ast.Text{Content: txt}}}}
		}
		return nil
	}
}

func (c *converter) table(t *east.Table) *ast.Table {
	out := &ast.Table{}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []ast.TableCell
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, ast.TableCell{
				Content: []ast.Block{&ast.Paragraph{Content: c.spans(cell)}},
			})
		}
		tr := ast.TableRow{Cells: cells}
		if _, ok := row.(*east.TableHeader); ok {
			out.Head = append(out.Head, tr)
		} else {
			out.Body = append(out.Body, tr)
		}
	}
	return out
}

func (c *converter) blockText(n gast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.src))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *converter) spans(n gast.Node) []ast.Span {
	var out []ast.Span
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, c.span(child)...)
	}
	return scanReferences(mergeText(out))
}

func (c *converter) span(n gast.Node) []ast.Span {
	switch t := n.(type) {
	case *gast.Text:
		content := string(t.Value(c.src))
		if t.SoftLineBreak() || t.HardLineBreak() {
			content += "\n"
		}
		return []ast.Span{&ast.Text{Content: content}}

	case *gast.String:
		return []ast.Span{&ast.Text{Content: string(t.Value)}}

	case *gast.Emphasis:
		content := c.spans(t)
		if t.Level >= 2 {
			return []ast.Span{&ast.Strong{Content: content}}
		}
		return []ast.Span{&ast.Emphasized{Content: content}}

	case *gast.CodeSpan:
		return []ast.Span{&ast.InlineCode{Text: string(t.Text(c.src))}}

	case *gast.Link:
		return []ast.Span{classifyLink(c.spans(t), string(t.Destination), string(t.Title))}

	case *gast.AutoLink:
		url := string(t.URL(c.src))
		label := string(t.Label(c.src))
		if t.AutoLinkType == gast.AutoLinkEmail && !strings.HasPrefix(url, "mailto:") {
			url = "mailto:" + url
		}
		return []ast.Span{&ast.SpanLink{
			Content: []ast.Span{&ast.Text{Content: label}},
			URL:     url,
		}}

	case *gast.Image:
		return []ast.Span{&ast.Image{
			Alt:   ast.ExtractText(c.spans(t)),
			URL:   string(t.Destination),
			Title: string(t.Title),
		}}

	case *east.FootnoteLink:
		label, ok := c.footnotes[t.Index]
		if !ok {
			label = ast.Autonumber{}
		}
		return []ast.Span{&ast.FootnoteReference{
			Label:  label,
			Source: footnoteSource(label),
		}}

	case *gast.RawHTML:
		var b strings.Builder
		for i := 0; i < t.Segments.Len(); i++ {
			seg := t.Segments.At(i)
			b.Write(seg.Value(c.src))
		}
		return []ast.Span{&ast.Text{Content: b.String()}}

	default:
		return c.spansOf(n)
	}
}

// spansOf descends into an unknown inline container instead of dropping
// its content.
func (c *converter) spansOf(n gast.Node) []ast.Span {
	var out []ast.Span
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, c.span(child)...)
	}
	return out
}

func footnoteSource(label ast.FootnoteLabel) string {
	switch t := label.(type) {
	case ast.NumericLabel:
		return "[^" + strconv.Itoa(t.Number) + "]"
	case ast.AutonumberLabel:
		return "[^" + t.Label + "]"
	default:
		return "[^]"
	}
}

// classifyLink decides what a markdown link becomes: external URLs stay
// concrete links, markup paths and fragments become path references the
// tree rewrite resolves and relativizes.
func classifyLink(content []ast.Span, dest, title string) ast.Span {
	if strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") {
		return &ast.SpanLink{Content: content, URL: dest, Title: title}
	}
	if frag, ok := strings.CutPrefix(dest, "#"); ok {
		return &ast.PathReference{
			Content:  content,
			Fragment: frag,
			Source:   "[" + ast.ExtractText(content) + "](" + dest + ")",
		}
	}
	p, frag, _ := strings.Cut(dest, "#")
	if IsSupportedExtension(p) {
		return &ast.PathReference{
			Content:  content,
			Path:     p,
			Fragment: frag,
			Source:   "[" + ast.ExtractText(content) + "](" + dest + ")",
		}
	}
	return &ast.SpanLink{Content: content, URL: dest, Title: title}
}

// refPattern matches `[text][id]` reference-style links that goldmark
// left as literal text because no local definition exists; these become
// id references resolved tree-wide. An empty second bracket uses the
// text as the id.
var refPattern = regexp.MustCompile(`\[([^\[\]]+)\]\[([^\[\]]*)\]`)

func scanReferences(spans []ast.Span) []ast.Span {
	var out []ast.Span
	for _, s := range spans {
		t, ok := s.(*ast.Text)
		if !ok {
			out = append(out, s)
			continue
		}
		out = append(out, scanTextReferences(t)...)
	}
	return out
}

func scanTextReferences(t *ast.Text) []ast.Span {
	matches := refPattern.FindAllStringSubmatchIndex(t.Content, -1)
	if len(matches) == 0 {
		return []ast.Span{t}
	}
	var out []ast.Span
	last := 0
	for _, m := range matches {
		if m[0] > last {
			out = append(out, &ast.Text{Content: t.Content[last:m[0]]})
		}
		text := t.Content[m[2]:m[3]]
		id := t.Content[m[4]:m[5]]
		if id == "" {
			id = text
		}
		out = append(out, &ast.LinkIDReference{
			Content: []ast.Span{&ast.Text{Content: text}},
			ID:      id,
			Source:  t.Content[m[0]:m[1]],
		})
		last = m[1]
	}
	if last < len(t.Content) {
		out = append(out, &ast.Text{Content: t.Content[last:]})
	}
	return out
}

// mergeText joins adjacent literal spans so reference patterns split
// across goldmark text segments are visible to the scan.
func mergeText(spans []ast.Span) []ast.Span {
	var out []ast.Span
	for _, s := range spans {
		t, ok := s.(*ast.Text)
		if ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*ast.Text); ok && prev.Opt.ID == "" && t.Opt.ID == "" {
				out[len(out)-1] = &ast.Text{Content: prev.Content + t.Content}
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
