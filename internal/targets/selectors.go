// Package targets implements per-document target collection and
// reference resolution: one pass classifies every referenceable element
// into a (selector, resolver) pair, grouping detects duplicates, alias
// chains are chased, and the resulting resolvers drive the rewrite rules
// that turn reference nodes into links and target nodes into their
// final form.
package targets

import (
	"strings"

	"github.com/goliatone/go-slug"
)

// Selector identifies a referenceable target. Unique selectors must
// resolve to at most one live target per document scope; positional
// selectors are consumed in document order.
type Selector interface {
	// Unique reports whether at most one target may claim this
	// selector within one document.
	Unique() bool
	selector()
}

// UniqueID selects by explicit or slug-derived id, case-normalized.
type UniqueID struct {
	Name string
}

// PathSelector selects by absolute document path plus optional fragment
// id; synthesized for every unique target and for whole documents so
// cross-document references by path keep working.
type PathSelector struct {
	Path     string
	Fragment string
}

// LinkDef selects a named external link definition.
type LinkDef struct {
	Name string
}

// AnonymousSel selects the next anonymous link definition in document
// order.
type AnonymousSel struct{}

// AutonumberSel selects the next auto-numbered footnote in document
// order.
type AutonumberSel struct{}

// AutosymbolSel selects the next auto-symbol footnote in document
// order.
type AutosymbolSel struct{}

func (UniqueID) Unique() bool      { return true }
func (PathSelector) Unique() bool  { return true }
func (LinkDef) Unique() bool       { return true }
func (AnonymousSel) Unique() bool  { return false }
func (AutonumberSel) Unique() bool { return false }
func (AutosymbolSel) Unique() bool { return false }

func (UniqueID) selector()      {}
func (PathSelector) selector()  {}
func (LinkDef) selector()       {}
func (AnonymousSel) selector()  {}
func (AutonumberSel) selector() {}
func (AutosymbolSel) selector() {}

// NormalizeID case-normalizes an id the way reference lookup expects:
// lowercased with runs of whitespace collapsed to single spaces.
func NormalizeID(id string) string {
	return strings.Join(strings.Fields(strings.ToLower(id)), " ")
}

// SlugID derives a slug id from header text.
func SlugID(text string) string {
	s, _ := slug.Normalize(text)
	return s
}

// Name returns the display name of a selector for diagnostics.
func Name(s Selector) string {
	switch t := s.(type) {
	case UniqueID:
		return t.Name
	case LinkDef:
		return t.Name
	case PathSelector:
		if t.Fragment != "" {
			return t.Path + "#" + t.Fragment
		}
		return t.Path
	case AnonymousSel:
		return "anonymous"
	case AutonumberSel:
		return "autonumber"
	case AutosymbolSel:
		return "autosymbol"
	default:
		return "unknown"
	}
}
