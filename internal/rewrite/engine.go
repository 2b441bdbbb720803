package rewrite

import (
	"github.com/docweave/docweave/internal/ast"
)

// Blocks rewrites a block list bottom-up: children first, then the rule
// chain on the rebuilt node. Rule replacements are recursively rewritten
// in full, so a rule may expand one placeholder into another and both
// get resolved in the same pass. Resolver nodes are resolved against the
// cursor and their output re-enters the full chain; scope nodes rewrite
// their content against a cursor extended with their local substitutions.
//
// A nil cursor disables resolver and scope handling; the nodes then fall
// through to the rule chain like any other block.
func Blocks(blocks []ast.Block, r Rules, c ast.Cursor) []ast.Block {
	out := make([]ast.Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, rewriteBlock(b, r, c)...)
	}
	return out
}

// Spans rewrites a span list with the same semantics as Blocks.
func Spans(spans []ast.Span, r Rules, c ast.Cursor) []ast.Span {
	out := make([]ast.Span, 0, len(spans))
	for _, s := range spans {
		out = append(out, rewriteSpan(s, r, c)...)
	}
	return out
}

// TemplateSpans rewrites a template body with the same semantics as
// Blocks.
func TemplateSpans(spans []ast.TemplateSpan, r Rules, c ast.Cursor) []ast.TemplateSpan {
	out := make([]ast.TemplateSpan, 0, len(spans))
	for _, s := range spans {
		out = append(out, rewriteTemplateSpan(s, r, c)...)
	}
	return out
}

func rewriteBlock(b ast.Block, r Rules, c ast.Cursor) []ast.Block {
	if c != nil {
		if res, ok := b.(ast.BlockResolver); ok {
			n := res.ResolveBlock(c)
			if n == nil {
				return nil
			}
			return rewriteBlock(n, r, c)
		}
		if sc, ok := b.(*ast.BlockScope); ok {
			return Blocks(sc.Content, r, c.WithSubstitutions(sc.Local))
		}
	}

	b = rewriteBlockChildren(b, r, c)

	switch a := r.applyBlock(b); a.kind {
	case remove:
		return nil
	case replace:
		if a.node == nil {
			violate("block rule returned a nil replacement")
		}
		nb, ok := a.node.(ast.Block)
		if !ok {
			violate("block rule replaced a block with %T", a.node)
		}
		if nb == b {
			return []ast.Block{b}
		}
		return rewriteBlock(nb, r, c)
	default:
		return []ast.Block{b}
	}
}

func rewriteSpan(s ast.Span, r Rules, c ast.Cursor) []ast.Span {
	if c != nil {
		if res, ok := s.(ast.SpanResolver); ok {
			n := res.ResolveSpan(c)
			if n == nil {
				return nil
			}
			return rewriteSpan(n, r, c)
		}
		if sc, ok := s.(*ast.SpanScope); ok {
			return Spans(sc.Content, r, c.WithSubstitutions(sc.Local))
		}
	}

	s = rewriteSpanChildren(s, r, c)

	switch a := r.applySpan(s); a.kind {
	case remove:
		return nil
	case replace:
		if a.node == nil {
			violate("span rule returned a nil replacement")
		}
		ns, ok := a.node.(ast.Span)
		if !ok {
			violate("span rule replaced a span with %T", a.node)
		}
		if ns == s {
			return []ast.Span{s}
		}
		return rewriteSpan(ns, r, c)
	default:
		return []ast.Span{s}
	}
}

func rewriteTemplateSpan(s ast.TemplateSpan, r Rules, c ast.Cursor) []ast.TemplateSpan {
	if c != nil {
		if res, ok := s.(ast.TemplateResolver); ok {
			n := res.ResolveTemplateSpan(c)
			if n == nil {
				return nil
			}
			return rewriteTemplateSpan(n, r, c)
		}
		if sc, ok := s.(*ast.TemplateScope); ok {
			return TemplateSpans(sc.Content, r, c.WithSubstitutions(sc.Local))
		}
	}

	s = rewriteTemplateChildren(s, r, c)

	switch a := r.applyTemplate(s); a.kind {
	case remove:
		return nil
	case replace:
		if a.node == nil {
			violate("template rule returned a nil replacement")
		}
		ns, ok := a.node.(ast.TemplateSpan)
		if !ok {
			violate("template rule replaced a template span with %T", a.node)
		}
		if ns == s {
			return []ast.TemplateSpan{s}
		}
		return rewriteTemplateSpan(ns, r, c)
	default:
		return []ast.TemplateSpan{s}
	}
}

func rewriteBlockChildren(b ast.Block, r Rules, c ast.Cursor) ast.Block {
	switch t := b.(type) {
	case *ast.RootContent:
		return &ast.RootContent{Blocks: Blocks(t.Blocks, r, c)}
	case *ast.Paragraph:
		return &ast.Paragraph{Content: Spans(t.Content, r, c), Opt: t.Opt}
	case *ast.Header:
		return &ast.Header{Level: t.Level, Content: Spans(t.Content, r, c), Opt: t.Opt}
	case *ast.DecoratedHeader:
		return &ast.DecoratedHeader{Decoration: t.Decoration, Content: Spans(t.Content, r, c), Source: t.Source}
	case *ast.QuotedBlock:
		return &ast.QuotedBlock{Content: Blocks(t.Content, r, c), Opt: t.Opt}
	case *ast.BulletList:
		return &ast.BulletList{Items: rewriteItems(t.Items, r, c), Opt: t.Opt}
	case *ast.EnumList:
		return &ast.EnumList{Start: t.Start, Items: rewriteItems(t.Items, r, c), Opt: t.Opt}
	case *ast.Table:
		return &ast.Table{Head: rewriteRows(t.Head, r, c), Body: rewriteRows(t.Body, r, c), Opt: t.Opt}
	case *ast.BlockSequence:
		return &ast.BlockSequence{Content: Blocks(t.Content, r, c), Opt: t.Opt}
	case *ast.FootnoteDefinition:
		return &ast.FootnoteDefinition{Label: t.Label, Content: Blocks(t.Content, r, c), Source: t.Source}
	case *ast.Footnote:
		return &ast.Footnote{Label: t.Label, Content: Blocks(t.Content, r, c), Opt: t.Opt}
	case *ast.Citation:
		return &ast.Citation{Label: t.Label, Content: Blocks(t.Content, r, c), Opt: t.Opt}
	case *ast.TemplateRoot:
		return &ast.TemplateRoot{Content: TemplateSpans(t.Content, r, c)}
	default:
		return b
	}
}

func rewriteItems(items [][]ast.Block, r Rules, c ast.Cursor) [][]ast.Block {
	out := make([][]ast.Block, len(items))
	for i, item := range items {
		out[i] = Blocks(item, r, c)
	}
	return out
}

func rewriteRows(rows []ast.TableRow, r Rules, c ast.Cursor) []ast.TableRow {
	out := make([]ast.TableRow, len(rows))
	for i, row := range rows {
		cells := make([]ast.TableCell, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = ast.TableCell{Content: Blocks(cell.Content, r, c)}
		}
		out[i] = ast.TableRow{Cells: cells}
	}
	return out
}

func rewriteSpanChildren(s ast.Span, r Rules, c ast.Cursor) ast.Span {
	switch t := s.(type) {
	case *ast.Emphasized:
		return &ast.Emphasized{Content: Spans(t.Content, r, c), Opt: t.Opt}
	case *ast.Strong:
		return &ast.Strong{Content: Spans(t.Content, r, c), Opt: t.Opt}
	case *ast.SpanSequence:
		return &ast.SpanSequence{Content: Spans(t.Content, r, c), Opt: t.Opt}
	case *ast.SpanLink:
		return &ast.SpanLink{Content: Spans(t.Content, r, c), URL: t.URL, Title: t.Title, Opt: t.Opt}
	case *ast.LinkIDReference:
		return &ast.LinkIDReference{Content: Spans(t.Content, r, c), ID: t.ID, Source: t.Source}
	case *ast.AnonymousReference:
		return &ast.AnonymousReference{Content: Spans(t.Content, r, c), Source: t.Source}
	case *ast.PathReference:
		return &ast.PathReference{Content: Spans(t.Content, r, c), Path: t.Path, Fragment: t.Fragment, Source: t.Source}
	default:
		return s
	}
}

func rewriteTemplateChildren(s ast.TemplateSpan, r Rules, c ast.Cursor) ast.TemplateSpan {
	switch t := s.(type) {
	case *ast.TemplateSpanSequence:
		return &ast.TemplateSpanSequence{Content: TemplateSpans(t.Content, r, c)}
	case *ast.EmbeddedRoot:
		return &ast.EmbeddedRoot{Content: Blocks(t.Content, r, c), Indent: t.Indent}
	default:
		return s
	}
}
