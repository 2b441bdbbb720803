package targets

import (
	"strconv"

	"github.com/docweave/docweave/internal/ast"
	"github.com/docweave/docweave/internal/rewrite"
)

// RewriteRules builds the rule set that consumes this document's target
// resolvers: target definition nodes take their final form (or
// disappear), reference nodes become links or typed invalid spans.
// References that cannot be resolved locally fall back to tree-wide
// lookup through the cursor; anything still unresolved afterwards is
// handled by the terminal rule appended by the caller.
func (d *DocumentTargets) RewriteRules(c ast.Cursor) rewrite.Rules {
	return rewrite.Rules{
		Blocks:    []rewrite.BlockRule{d.blockRule()},
		Spans:     []rewrite.SpanRule{d.spanRule(c)},
		Templates: nil,
	}
}

func (d *DocumentTargets) blockRule() rewrite.BlockRule {
	return func(b ast.Block) (rewrite.Action, bool) {
		switch t := b.(type) {
		case *ast.DecoratedHeader:
			sel := UniqueID{Name: NormalizeID(SlugID(ast.ExtractText(t.Content)))}
			return d.replaceUnique(sel, t)

		case *ast.Header:
			if t.Opt.ID == "" {
				return rewrite.Retained, false
			}
			return d.replaceUnique(UniqueID{Name: NormalizeID(t.Opt.ID)}, t)

		case *ast.Citation:
			return d.replaceUnique(UniqueID{Name: NormalizeID(t.Label)}, t)

		case *ast.FootnoteDefinition:
			switch lbl := t.Label.(type) {
			case ast.NumericLabel:
				return d.replaceUnique(UniqueID{Name: strconv.Itoa(lbl.Number)}, t)
			case ast.AutonumberLabel:
				return d.replaceUnique(UniqueID{Name: NormalizeID(lbl.Label)}, t)
			case ast.Autonumber:
				return replaceFromSequence(d.autonumber, t)
			case ast.Autosymbol:
				return replaceFromSequence(d.autosymbol, t)
			}
			return rewrite.Retained, false

		case *ast.LinkDefinition:
			if t.ID == "" {
				return replaceFromSequence(d.anonymous, t)
			}
			return d.replaceUnique(LinkDef{Name: NormalizeID(t.ID)}, t)

		case *ast.LinkAlias:
			return d.replaceUnique(LinkDef{Name: NormalizeID(t.ID)}, t)

		default:
			return rewrite.Retained, false
		}
	}
}

func (d *DocumentTargets) replaceUnique(sel Selector, node ast.Block) (rewrite.Action, bool) {
	r, ok := d.unique[sel]
	if !ok || r.ReplaceTarget == nil {
		return rewrite.Retained, false
	}
	result := r.ReplaceTarget(node)
	if result == nil {
		return rewrite.Removed, true
	}
	return rewrite.Replace(result), true
}

func replaceFromSequence(s *sequence, node ast.Block) (rewrite.Action, bool) {
	result, ok := s.nextDef(node)
	if !ok {
		return rewrite.Retained, false
	}
	if result == nil {
		return rewrite.Removed, true
	}
	return rewrite.Replace(result), true
}

func (d *DocumentTargets) spanRule(c ast.Cursor) rewrite.SpanRule {
	return func(s ast.Span) (rewrite.Action, bool) {
		switch t := s.(type) {
		case *ast.FootnoteReference:
			switch lbl := t.Label.(type) {
			case ast.NumericLabel:
				return d.resolveUniqueRef(UniqueID{Name: strconv.Itoa(lbl.Number)}, t)
			case ast.AutonumberLabel:
				return d.resolveUniqueRef(UniqueID{Name: NormalizeID(lbl.Label)}, t)
			case ast.Autonumber:
				return rewrite.Replace(d.autonumber.nextRef(t)), true
			case ast.Autosymbol:
				return rewrite.Replace(d.autosymbol.nextRef(t)), true
			}
			return rewrite.Retained, false

		case *ast.CitationReference:
			return d.resolveUniqueRef(UniqueID{Name: NormalizeID(t.Label)}, t)

		case *ast.LinkIDReference:
			id := NormalizeID(t.ID)
			if a, ok := d.resolveLocalID(id, t); ok {
				return a, true
			}
			if c != nil {
				if target, ok := c.TargetByID(id); ok {
					return rewrite.Replace(crossLink(c, target, t.Content, id)), true
				}
			}
			return rewrite.Retained, false

		case *ast.AnonymousReference:
			return rewrite.Replace(d.anonymous.nextRef(t)), true

		case *ast.PathReference:
			if c == nil {
				return rewrite.Retained, false
			}
			target, ok := c.Target(t.Path, t.Fragment)
			if !ok {
				return rewrite.Retained, false
			}
			return rewrite.Replace(crossLink(c, target, t.Content, t.Path)), true

		default:
			return rewrite.Retained, false
		}
	}
}

func (d *DocumentTargets) resolveLocalID(id string, ref ast.Span) (rewrite.Action, bool) {
	if r, ok := d.unique[LinkDef{Name: id}]; ok && r.ResolveReference != nil {
		return rewrite.Replace(r.ResolveReference(ref)), true
	}
	if r, ok := d.unique[UniqueID{Name: id}]; ok && r.ResolveReference != nil {
		return rewrite.Replace(r.ResolveReference(ref)), true
	}
	return rewrite.Retained, false
}

func (d *DocumentTargets) resolveUniqueRef(sel Selector, ref ast.Span) (rewrite.Action, bool) {
	r, ok := d.unique[sel]
	if !ok || r.ResolveReference == nil {
		return rewrite.Retained, false
	}
	return rewrite.Replace(r.ResolveReference(ref)), true
}

// crossLink builds a link from the rewriting document to a target in
// another document, using the relative path between them.
func crossLink(c ast.Cursor, target ast.ResolvedTarget, content []ast.Span, fallbackText string) ast.Span {
	url := RelativePath(c.Path(), target.Path)
	if target.Fragment != "" {
		url += "#" + target.Fragment
	}
	if len(content) == 0 {
		text := target.Title
		if text == "" {
			text = fallbackText
		}
		content = []ast.Span{&ast.Text{Content: text}}
	}
	return &ast.SpanLink{Content: content, URL: url}
}
