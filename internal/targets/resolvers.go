package targets

import (
	"github.com/docweave/docweave/internal/ast"
)

// TargetResolver binds a selector to the two transformations a target
// participates in: producing the replacement for reference nodes that
// point at it, and rewriting the target definition node itself. Built
// once per document during collection, consumed during the single
// rewrite pass, then discarded.
type TargetResolver struct {
	Selector Selector

	// Target describes where references end up, for link construction
	// and cross-document lookup.
	Target ast.ResolvedTarget

	// ResolveReference produces the span replacing a reference node.
	// The reference arrives with its children already rewritten.
	ResolveReference func(ref ast.Span) ast.Span

	// ReplaceTarget transforms the (already rewritten) target
	// definition node; returning nil removes it from the output.
	ReplaceTarget func(node ast.Node) ast.Node

	// duplicate marks the resolver that replaced the originals of a
	// duplicated unique selector.
	duplicate bool
}

// headerResolver serves a header target: the definition gets its level
// (for decorated headers) and slug id, references become links to the
// fragment.
func headerResolver(docPath, id string, level int, title string) *TargetResolver {
	return &TargetResolver{
		Target: ast.ResolvedTarget{Path: docPath, Fragment: id, Title: title},
		ResolveReference: func(ref ast.Span) ast.Span {
			content := contentOf(ref)
			if len(content) == 0 {
				content = []ast.Span{&ast.Text{Content: title}}
			}
			return &ast.SpanLink{Content: content, URL: "#" + id}
		},
		ReplaceTarget: func(node ast.Node) ast.Node {
			switch t := node.(type) {
			case *ast.DecoratedHeader:
				return &ast.Header{Level: level, Content: t.Content, Opt: ast.Options{ID: id}}
			default:
				return node
			}
		},
	}
}

// anchorResolver serves an invisible internal link target.
func anchorResolver(docPath, id string) *TargetResolver {
	return &TargetResolver{
		Target: ast.ResolvedTarget{Path: docPath, Fragment: id},
		ResolveReference: func(ref ast.Span) ast.Span {
			content := contentOf(ref)
			if len(content) == 0 {
				content = []ast.Span{&ast.Text{Content: id}}
			}
			return &ast.SpanLink{Content: content, URL: "#" + id}
		},
		ReplaceTarget: func(node ast.Node) ast.Node { return node },
	}
}

// citationResolver serves a citation body and its references.
func citationResolver(docPath, id, label string) *TargetResolver {
	return &TargetResolver{
		Target: ast.ResolvedTarget{Path: docPath, Fragment: id, Title: label},
		ResolveReference: func(ref ast.Span) ast.Span {
			return &ast.CitationLink{Ref: id, Label: label}
		},
		ReplaceTarget: func(node ast.Node) ast.Node {
			switch t := node.(type) {
			case *ast.Citation:
				if t.Opt.ID == id {
					return node
				}
				return &ast.Citation{Label: t.Label, Content: t.Content, Opt: ast.Options{ID: id}}
			default:
				return node
			}
		},
	}
}

// footnoteResolver serves a footnote body with its assigned display
// label (explicit number, autonumber, or autosymbol).
func footnoteResolver(docPath, id, display string) *TargetResolver {
	return &TargetResolver{
		Target: ast.ResolvedTarget{Path: docPath, Fragment: id, Title: display},
		ResolveReference: func(ref ast.Span) ast.Span {
			return &ast.FootnoteLink{Ref: id, Label: display}
		},
		ReplaceTarget: func(node ast.Node) ast.Node {
			switch t := node.(type) {
			case *ast.FootnoteDefinition:
				return &ast.Footnote{Label: display, Content: t.Content, Opt: ast.Options{ID: id}}
			default:
				return node
			}
		},
	}
}

// linkDefResolver serves an external link definition: references become
// links, the definition itself is removed from output.
func linkDefResolver(url, title string) *TargetResolver {
	return &TargetResolver{
		Target: ast.ResolvedTarget{},
		ResolveReference: func(ref ast.Span) ast.Span {
			content := contentOf(ref)
			if len(content) == 0 {
				content = []ast.Span{&ast.Text{Content: url}}
			}
			return &ast.SpanLink{Content: content, URL: url, Title: title}
		},
		ReplaceTarget: func(ast.Node) ast.Node { return nil },
	}
}

// sourceOf extracts the original markup fragment of a reference span
// for diagnostics.
func sourceOf(ref ast.Span) string {
	if u, ok := ref.(ast.Unresolved); ok {
		return u.SourceText()
	}
	return ""
}

// sourceOfNode is sourceOf for definition nodes; kinds that keep their
// original markup (link definitions, aliases, footnote definitions,
// decorated headers) surface it, the rest yield empty.
func sourceOfNode(node ast.Node) string {
	if u, ok := node.(ast.Unresolved); ok {
		return u.SourceText()
	}
	return ""
}

// contentOf extracts the display content of a reference span.
func contentOf(ref ast.Span) []ast.Span {
	switch t := ref.(type) {
	case *ast.LinkIDReference:
		return t.Content
	case *ast.AnonymousReference:
		return t.Content
	case *ast.PathReference:
		return t.Content
	default:
		return nil
	}
}

// duplicateResolver replaces every definition and every reference of a
// duplicated unique selector with an invalid node. All conflicting
// definitions lose their id; none stays live.
func duplicateResolver(sel Selector) *TargetResolver {
	msg := "duplicate target id: " + Name(sel)
	return &TargetResolver{
		Selector: sel,
		ResolveReference: func(ref ast.Span) ast.Span {
			return &ast.InvalidSpan{Message: msg, Fallback: sourceOf(ref)}
		},
		ReplaceTarget: func(node ast.Node) ast.Node {
			fallback := sourceOfNode(node)
			switch node.(type) {
			case ast.Span:
				return &ast.InvalidSpan{Message: msg, Fallback: fallback}
			default:
				return &ast.InvalidBlock{Message: msg, Fallback: fallback}
			}
		},
	}
}

// sequence serves the resolvers of one positional selector kind in
// strict document order, independently for references and for target
// definitions. References beyond the available count resolve to an
// invalid span.
type sequence struct {
	entries     []*TargetResolver
	exhaustedBy string
	refNext     int
	defNext     int
}

func (s *sequence) nextRef(ref ast.Span) ast.Span {
	if s == nil || s.refNext >= len(s.entries) {
		return &ast.InvalidSpan{Message: s.exhaustMessage(), Fallback: sourceOf(ref)}
	}
	r := s.entries[s.refNext]
	s.refNext++
	return r.ResolveReference(ref)
}

func (s *sequence) nextDef(node ast.Node) (ast.Node, bool) {
	if s == nil || s.defNext >= len(s.entries) {
		return nil, false
	}
	r := s.entries[s.defNext]
	s.defNext++
	return r.ReplaceTarget(node), true
}

func (s *sequence) exhaustMessage() string {
	if s == nil {
		return "too many references"
	}
	return s.exhaustedBy
}
