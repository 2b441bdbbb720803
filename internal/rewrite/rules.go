// Package rewrite implements the generic fixpoint tree transformer the
// whole pipeline runs on: ordered partial rules over the three AST
// hierarchies, first-match-wins composition, bottom-up structural
// recursion, and built-in handling for resolver and scope nodes.
package rewrite

import (
	"fmt"

	"github.com/docweave/docweave/internal/ast"
)

type actionKind int

const (
	retain actionKind = iota
	remove
	replace
)

// Action is a rule's verdict on a node: keep it, drop it, or substitute
// a replacement (which is itself rewritten recursively).
type Action struct {
	kind actionKind
	node ast.Node
}

// Retained leaves the node untouched and falls through to traversal.
var Retained = Action{kind: retain}

// Removed drops the node from its containing list.
var Removed = Action{kind: remove}

// Replace substitutes n for the matched node. A nil replacement is a
// rewrite-contract violation.
func Replace(n ast.Node) Action {
	return Action{kind: replace, node: n}
}

// BlockRule is a partial function over blocks: matched=false falls
// through to the next rule in the chain.
type BlockRule func(ast.Block) (Action, bool)

// SpanRule is a partial function over spans.
type SpanRule func(ast.Span) (Action, bool)

// TemplateRule is a partial function over template spans.
type TemplateRule func(ast.TemplateSpan) (Action, bool)

// Rules is an ordered rule set over the three hierarchies. The zero
// value matches nothing.
type Rules struct {
	Blocks    []BlockRule
	Spans     []SpanRule
	Templates []TemplateRule
}

// ForBlocks builds a rule set from a single block rule.
func ForBlocks(r BlockRule) Rules { return Rules{Blocks: []BlockRule{r}} }

// ForSpans builds a rule set from a single span rule.
func ForSpans(r SpanRule) Rules { return Rules{Spans: []SpanRule{r}} }

// ForTemplates builds a rule set from a single template span rule.
func ForTemplates(r TemplateRule) Rules { return Rules{Templates: []TemplateRule{r}} }

// Append composes two rule sets: rules of r are consulted before rules
// of o, first match wins. Neither operand is modified.
func (r Rules) Append(o Rules) Rules {
	out := Rules{
		Blocks:    make([]BlockRule, 0, len(r.Blocks)+len(o.Blocks)),
		Spans:     make([]SpanRule, 0, len(r.Spans)+len(o.Spans)),
		Templates: make([]TemplateRule, 0, len(r.Templates)+len(o.Templates)),
	}
	out.Blocks = append(append(out.Blocks, r.Blocks...), o.Blocks...)
	out.Spans = append(append(out.Spans, r.Spans...), o.Spans...)
	out.Templates = append(append(out.Templates, r.Templates...), o.Templates...)
	return out
}

func (r Rules) applyBlock(b ast.Block) Action {
	for _, rule := range r.Blocks {
		if a, ok := rule(b); ok {
			return a
		}
	}
	return Retained
}

func (r Rules) applySpan(s ast.Span) Action {
	for _, rule := range r.Spans {
		if a, ok := rule(s); ok {
			return a
		}
	}
	return Retained
}

func (r Rules) applyTemplate(s ast.TemplateSpan) Action {
	for _, rule := range r.Templates {
		if a, ok := rule(s); ok {
			return a
		}
	}
	return Retained
}

// ContractViolation is panicked when a rule produces a structurally
// illegal replacement. It signals a bug in rule-authoring code, not bad
// user input, so it is deliberately not a recoverable error.
type ContractViolation struct {
	Msg string
}

func (v ContractViolation) Error() string {
	return "rewrite contract violation: " + v.Msg
}

func violate(format string, args ...any) {
	panic(ContractViolation{Msg: fmt.Sprintf(format, args...)})
}

// UnresolvedRules is the terminal rule set installed last in every
// default chain: any node still marked Unresolved becomes the matching
// invalid node carrying its own diagnostic and source fragment. This is
// what guarantees the fixpoint ends in a renderable tree.
func UnresolvedRules() Rules {
	return Rules{
		Blocks: []BlockRule{func(b ast.Block) (Action, bool) {
			if u, ok := b.(ast.Unresolved); ok {
				return Replace(&ast.InvalidBlock{Message: u.UnresolvedMessage(), Fallback: u.SourceText()}), true
			}
			return Retained, false
		}},
		Spans: []SpanRule{func(s ast.Span) (Action, bool) {
			if u, ok := s.(ast.Unresolved); ok {
				return Replace(&ast.InvalidSpan{Message: u.UnresolvedMessage(), Fallback: u.SourceText()}), true
			}
			return Retained, false
		}},
		Templates: []TemplateRule{func(s ast.TemplateSpan) (Action, bool) {
			if u, ok := s.(ast.Unresolved); ok {
				return Replace(&ast.InvalidTemplateSpan{Message: u.UnresolvedMessage(), Fallback: u.SourceText()}), true
			}
			return Retained, false
		}},
	}
}
