package doctree

import (
	"path"

	"github.com/ohler55/ojg/jp"

	"github.com/docweave/docweave/internal/ast"
	"github.com/docweave/docweave/internal/config"
	"github.com/docweave/docweave/internal/targets"
)

// RootCursor is the single entry point of the cursor layer: it eagerly
// builds tree and document cursors in parent-to-child order, resolving
// inherited configuration and seeding each document's reference value
// space. Cursors are cheap, short-lived values built once per rewrite
// pass; they are never cached across passes because configuration can
// differ per render target.
//
// Parent links are arena indices, not pointers, so the cursor layer
// adds no ownership cycles on top of the tree it wraps.
type RootCursor struct {
	Root   *Root
	Config *config.Config

	trees  []*TreeCursor
	docs   []*DocumentCursor
	byPath map[string]*DocumentCursor
}

// TreeCursor wraps one tree with its resolved configuration and its
// position among the parent's children.
type TreeCursor struct {
	root     *RootCursor
	Tree     *Tree
	parent   int // arena index, -1 at the root
	index    int
	position int
	Config   *config.Config
}

// DocumentCursor wraps one document with its resolved configuration,
// position, and reference value space. It implements ast.Cursor.
type DocumentCursor struct {
	root     *RootCursor
	Doc      *Document
	tree     int // arena index of the owning tree cursor
	position int // index among the owning tree's children, -1 for title documents
	flat     int
	isTitle  bool
	Config   *config.Config

	refs map[string]any // seeded reference value space
	subs map[string]any // scope overlay, nil outside scopes
}

// NewRootCursor builds the complete cursor layer for a root.
// Construction never fails; configuration problems surface only when a
// reference queries the bad value.
func NewRootCursor(root *Root) *RootCursor {
	rc := &RootCursor{Root: root, byPath: make(map[string]*DocumentCursor)}
	rc.buildTree(root.Tree, -1, 0)
	rc.Config = rc.trees[0].Config
	for i, dc := range rc.docs {
		dc.flat = i
	}
	// Navigation facts need the complete sibling set, so the value
	// space is seeded in a second pass.
	for _, dc := range rc.docs {
		dc.refs = dc.buildRefs()
	}
	return rc
}

func (rc *RootCursor) buildTree(t *Tree, parent, position int) {
	var parentCfg *config.Config
	if parent >= 0 {
		parentCfg = rc.trees[parent].Config
	}
	resolved := t.Config.WithFallback(parentCfg)
	if resolved == nil {
		resolved = config.Empty()
	}

	idx := len(rc.trees)
	rc.trees = append(rc.trees, &TreeCursor{
		root:     rc,
		Tree:     t,
		parent:   parent,
		index:    idx,
		position: position,
		Config:   resolved,
	})

	if t.TitleDocument != nil {
		rc.addDocument(t.TitleDocument, idx, -1, true)
	}
	for i, item := range t.Children {
		switch c := item.(type) {
		case *Document:
			rc.addDocument(c, idx, i, false)
		case *Tree:
			rc.buildTree(c, idx, i)
		}
	}
}

func (rc *RootCursor) addDocument(d *Document, tree, position int, isTitle bool) {
	cfg := d.Config.WithFallback(rc.trees[tree].Config)
	if cfg == nil {
		cfg = config.Empty()
	}
	dc := &DocumentCursor{
		root:     rc,
		Doc:      d,
		tree:     tree,
		position: position,
		isTitle:  isTitle,
		Config:   cfg,
	}
	rc.docs = append(rc.docs, dc)
	rc.byPath[d.Path] = dc
}

// Documents returns all document cursors in flattened order.
func (rc *RootCursor) Documents() []*DocumentCursor { return rc.docs }

// Document finds a document cursor by absolute tree path.
func (rc *RootCursor) Document(p string) (*DocumentCursor, bool) {
	dc, ok := rc.byPath[p]
	return dc, ok
}

// TreeFor returns the tree cursor owning a document cursor.
func (rc *RootCursor) TreeFor(dc *DocumentCursor) *TreeCursor {
	return rc.trees[dc.tree]
}

// TemplateByPath finds a template document by absolute tree path.
func (rc *RootCursor) TemplateByPath(p string) (*TemplateDocument, bool) {
	dir, name := path.Dir(p), path.Base(p)
	for _, tc := range rc.trees {
		if tc.Tree.Path != dir {
			continue
		}
		if tpl, ok := tc.Tree.Template(name); ok {
			return tpl, true
		}
	}
	return nil, false
}

// Parent returns the parent tree cursor, or nil at the root.
func (tc *TreeCursor) Parent() *TreeCursor {
	if tc.parent < 0 {
		return nil
	}
	return tc.root.trees[tc.parent]
}

// PreviousDocument is the hierarchical previous sibling: the nearest
// document before this one among the owning tree's children. A title
// document navigates among the parent tree's children instead. There
// is none at the root boundary.
func (dc *DocumentCursor) PreviousDocument() *DocumentCursor {
	return dc.hierarchicalSibling(-1)
}

// NextDocument is the hierarchical next sibling.
func (dc *DocumentCursor) NextDocument() *DocumentCursor {
	return dc.hierarchicalSibling(+1)
}

func (dc *DocumentCursor) hierarchicalSibling(step int) *DocumentCursor {
	tc := dc.root.trees[dc.tree]
	pos := dc.position
	if dc.isTitle {
		// A title document navigates among the siblings of the tree
		// it titles; at the root there are none.
		parent := tc.Parent()
		if parent == nil {
			return nil
		}
		pos = tc.position
		tc = parent
	}
	for i := pos + step; i >= 0 && i < len(tc.Tree.Children); i += step {
		if d, ok := tc.Tree.Children[i].(*Document); ok {
			return dc.root.byPath[d.Path]
		}
	}
	return nil
}

// PreviousFlattened is the previous document across the fully
// flattened document list of the whole root, ignoring tree boundaries.
func (dc *DocumentCursor) PreviousFlattened() *DocumentCursor {
	if dc.flat <= 0 {
		return nil
	}
	return dc.root.docs[dc.flat-1]
}

// NextFlattened is the next document in flattened order.
func (dc *DocumentCursor) NextFlattened() *DocumentCursor {
	if dc.flat >= len(dc.root.docs)-1 {
		return nil
	}
	return dc.root.docs[dc.flat+1]
}

// Path implements ast.Cursor.
func (dc *DocumentCursor) Path() string { return dc.Doc.Path }

// Resolve implements ast.Cursor: scope overlay first, then the seeded
// reference value space, then configuration. Missing keys are not an
// error.
func (dc *DocumentCursor) Resolve(key string) (any, bool) {
	expr, err := jp.ParseString(key)
	if err != nil {
		return nil, false
	}
	if dc.subs != nil {
		if matches := expr.Get(dc.subs); len(matches) > 0 {
			return matches[0], true
		}
	}
	if dc.refs != nil {
		if matches := expr.Get(dc.refs); len(matches) > 0 {
			return matches[0], true
		}
	}
	return dc.Config.Lookup(key)
}

// Target implements ast.Cursor: cross-document lookup by path.
func (dc *DocumentCursor) Target(p, fragment string) (ast.ResolvedTarget, bool) {
	abs := p
	switch {
	case p == "":
		// Fragment-only references target the current document.
		abs = dc.Doc.Path
	case !path.IsAbs(p):
		abs = path.Join(path.Dir(dc.Doc.Path), p)
	}
	other, ok := dc.root.byPath[abs]
	if !ok || other.Doc.Targets == nil {
		return ast.ResolvedTarget{}, false
	}
	return other.Doc.Targets.LookupPath(abs, fragment)
}

// TargetByID implements ast.Cursor: the current document first, then
// the rest of the tree in flattened order.
func (dc *DocumentCursor) TargetByID(id string) (ast.ResolvedTarget, bool) {
	if dc.Doc.Targets != nil {
		if t, ok := dc.Doc.Targets.LookupID(id); ok {
			return t, true
		}
	}
	for _, other := range dc.root.docs {
		if other == dc || other.Doc.Targets == nil {
			continue
		}
		if t, ok := other.Doc.Targets.LookupID(id); ok {
			return t, true
		}
	}
	return ast.ResolvedTarget{}, false
}

// WithSubstitutions implements ast.Cursor.
func (dc *DocumentCursor) WithSubstitutions(local map[string]any) ast.Cursor {
	if len(local) == 0 {
		return dc
	}
	merged := make(map[string]any, len(dc.subs)+len(local))
	for k, v := range dc.subs {
		merged[k] = v
	}
	for k, v := range local {
		merged[k] = v
	}
	out := *dc
	out.subs = merged
	return &out
}

// WithConfig returns a cursor whose configuration is replaced by cfg,
// used by the template rewriter after merging template and document
// configuration. The reference value space is reseeded.
func (dc *DocumentCursor) WithConfig(cfg *config.Config) *DocumentCursor {
	out := *dc
	out.Config = cfg
	out.refs = out.buildRefs()
	return &out
}

func (dc *DocumentCursor) buildRefs() map[string]any {
	d := dc.Doc

	fragments := make(map[string]any, len(d.Fragments))
	for name, blocks := range d.Fragments {
		fragments[name] = blocks
	}

	doc := map[string]any{
		"title":     d.TitleText(),
		"path":      d.Path,
		"content":   d.Content,
		"fragments": fragments,
	}
	if prev := dc.PreviousDocument(); prev != nil {
		doc["previous"] = dc.navEntry(prev)
	}
	if next := dc.NextDocument(); next != nil {
		doc["next"] = dc.navEntry(next)
	}

	flattened := map[string]any{}
	if prev := dc.PreviousFlattened(); prev != nil {
		flattened["previous"] = dc.navEntry(prev)
	}
	if next := dc.NextFlattened(); next != nil {
		flattened["next"] = dc.navEntry(next)
	}

	tc := dc.root.trees[dc.tree]
	parent := map[string]any{
		"title": tc.Tree.TitleText(),
		"path":  tc.Tree.Path,
	}

	return map[string]any{
		"document":  doc,
		"flattened": flattened,
		"parent":    parent,
		"root": map[string]any{
			"title": dc.root.Root.Tree.TitleText(),
		},
	}
}

func (dc *DocumentCursor) navEntry(other *DocumentCursor) map[string]any {
	return map[string]any{
		"path":         other.Doc.Path,
		"relativePath": targets.RelativePath(dc.Doc.Path, other.Doc.Path),
		"title":        other.Doc.TitleText(),
	}
}
