// Package ast defines the format-neutral document tree that all input
// adapters produce and all renderers consume. The tree is made of three
// parallel hierarchies (Block, Span and TemplateSpan), each a closed set
// of node types. Nodes are immutable once constructed; rewrite passes
// build new nodes instead of mutating.
package ast

// Node is implemented by every element of the document tree.
type Node interface {
	node()
}

// Block is a block-level element: paragraphs, headers, lists, and the
// container and placeholder variants that hold them.
type Block interface {
	Node
	block()
}

// Span is an inline element nested inside block content.
type Span interface {
	Node
	span()
}

// TemplateSpan is an element of a template body. Template spans only
// exist between template parsing and the template rewrite; none survive
// into rendered output.
type TemplateSpan interface {
	Node
	templateSpan()
}

// Unresolved marks a node that must be replaced during the rewrite
// fixpoint and is illegal in rendered output. The terminal rewrite rule
// converts any remaining Unresolved node into the matching invalid node,
// carrying Message and Source for display.
type Unresolved interface {
	Node
	UnresolvedMessage() string
	SourceText() string
}

// Options carries the cross-cutting attributes a block or span may have:
// an id that makes it a link target, and renderer style hints.
type Options struct {
	ID     string
	Styles []string
}

// HasStyle reports whether s is among the style hints.
func (o Options) HasStyle(s string) bool {
	for _, st := range o.Styles {
		if st == s {
			return true
		}
	}
	return false
}
