package targets

import (
	"strconv"

	"github.com/docweave/docweave/internal/ast"
)

// DocumentTargets is the complete set of target resolvers for one
// document: unique selectors (including synthesized path selectors) and
// the positional sequences. It is consumed by one rewrite pass and then
// discarded.
type DocumentTargets struct {
	path   string
	unique map[Selector]*TargetResolver

	anonymous  *sequence
	autonumber *sequence
	autosymbol *sequence
}

// Path returns the absolute tree path of the owning document.
func (d *DocumentTargets) Path() string { return d.path }

// LookupID resolves a unique id for cross-document references.
func (d *DocumentTargets) LookupID(id string) (ast.ResolvedTarget, bool) {
	r, ok := d.unique[UniqueID{Name: NormalizeID(id)}]
	if !ok || r.duplicate {
		return ast.ResolvedTarget{}, false
	}
	return r.Target, true
}

// LookupPath resolves a synthesized path selector: fragment lookup into
// this document, or the whole document when fragment is empty.
func (d *DocumentTargets) LookupPath(p, fragment string) (ast.ResolvedTarget, bool) {
	r, ok := d.unique[PathSelector{Path: p, Fragment: NormalizeID(fragment)}]
	if !ok || r.duplicate {
		return ast.ResolvedTarget{}, false
	}
	return r.Target, true
}

type targetKind int

const (
	kindDecoratedHeader targetKind = iota
	kindHeader
	kindInlineTarget
	kindCitation
	kindFootnote
	kindLinkDef
	kindAlias
)

type rawTarget struct {
	kind targetKind
	node ast.Node
}

// Collect walks one document's content and produces its complete target
// resolver set. Counters for section levels, footnote numbers and
// symbols are local to this call; nothing is shared across documents.
func Collect(docPath string, content []ast.Block) *DocumentTargets {
	var raw []rawTarget
	walkBlocks(content, func(n ast.Node) {
		switch t := n.(type) {
		case *ast.DecoratedHeader:
			raw = append(raw, rawTarget{kind: kindDecoratedHeader, node: t})
		case *ast.Header:
			if t.Opt.ID != "" {
				raw = append(raw, rawTarget{kind: kindHeader, node: t})
			}
		case *ast.InternalLinkTarget:
			if t.Opt.ID != "" {
				raw = append(raw, rawTarget{kind: kindInlineTarget, node: t})
			}
		case *ast.Citation:
			raw = append(raw, rawTarget{kind: kindCitation, node: t})
		case *ast.FootnoteDefinition:
			raw = append(raw, rawTarget{kind: kindFootnote, node: t})
		case *ast.LinkDefinition:
			raw = append(raw, rawTarget{kind: kindLinkDef, node: t})
		case *ast.LinkAlias:
			raw = append(raw, rawTarget{kind: kindAlias, node: t})
		}
	})

	// Explicit numeric footnote labels claim their numbers before any
	// autonumber is assigned.
	used := map[int]bool{}
	for _, rt := range raw {
		if rt.kind != kindFootnote {
			continue
		}
		if lbl, ok := rt.node.(*ast.FootnoteDefinition).Label.(ast.NumericLabel); ok {
			used[lbl.Number] = true
		}
	}
	numbers := newNumberGenerator(used)
	symbols := &symbolGenerator{}
	levels := map[string]int{}

	type pending struct {
		sel Selector
		res *TargetResolver
	}
	var entries []pending
	var aliases []*ast.LinkAlias

	add := func(sel Selector, res *TargetResolver) {
		res.Selector = sel
		entries = append(entries, pending{sel: sel, res: res})
	}

	for _, rt := range raw {
		switch rt.kind {
		case kindDecoratedHeader:
			dh := rt.node.(*ast.DecoratedHeader)
			level, ok := levels[dh.Decoration]
			if !ok {
				level = len(levels) + 1
				levels[dh.Decoration] = level
			}
			title := ast.ExtractText(dh.Content)
			id := SlugID(title)
			add(UniqueID{Name: NormalizeID(id)}, headerResolver(docPath, id, level, title))

		case kindHeader:
			h := rt.node.(*ast.Header)
			id := h.Opt.ID
			add(UniqueID{Name: NormalizeID(id)}, headerResolver(docPath, id, h.Level, ast.ExtractText(h.Content)))

		case kindInlineTarget:
			it := rt.node.(*ast.InternalLinkTarget)
			add(UniqueID{Name: NormalizeID(it.Opt.ID)}, anchorResolver(docPath, it.Opt.ID))

		case kindCitation:
			ct := rt.node.(*ast.Citation)
			id := NormalizeID(ct.Label)
			add(UniqueID{Name: id}, citationResolver(docPath, id, ct.Label))

		case kindFootnote:
			fd := rt.node.(*ast.FootnoteDefinition)
			switch lbl := fd.Label.(type) {
			case ast.NumericLabel:
				display := strconv.Itoa(lbl.Number)
				add(UniqueID{Name: display}, footnoteResolver(docPath, "fn-"+display, display))
			case ast.AutonumberLabel:
				display := strconv.Itoa(numbers.next())
				add(UniqueID{Name: NormalizeID(lbl.Label)}, footnoteResolver(docPath, NormalizeID(lbl.Label), display))
			case ast.Autonumber:
				display := strconv.Itoa(numbers.next())
				add(AutonumberSel{}, footnoteResolver(docPath, "fn-"+display, display))
			case ast.Autosymbol:
				display := symbols.next()
				id := "fns-" + strconv.Itoa(symbols.n)
				add(AutosymbolSel{}, footnoteResolver(docPath, id, display))
			}

		case kindLinkDef:
			ld := rt.node.(*ast.LinkDefinition)
			if ld.ID == "" {
				add(AnonymousSel{}, linkDefResolver(ld.URL, ld.Title))
			} else {
				add(LinkDef{Name: NormalizeID(ld.ID)}, linkDefResolver(ld.URL, ld.Title))
			}

		case kindAlias:
			aliases = append(aliases, rt.node.(*ast.LinkAlias))
		}
	}

	d := &DocumentTargets{
		path:       docPath,
		unique:     make(map[Selector]*TargetResolver),
		anonymous:  &sequence{exhaustedBy: "too many anonymous link references"},
		autonumber: &sequence{exhaustedBy: "too many autonumber references"},
		autosymbol: &sequence{exhaustedBy: "too many autosymbol references"},
	}

	// Group by selector: unique kinds reject duplicates outright,
	// positional kinds queue up in document order.
	for _, e := range entries {
		switch e.sel.(type) {
		case AnonymousSel:
			d.anonymous.entries = append(d.anonymous.entries, e.res)
		case AutonumberSel:
			d.autonumber.entries = append(d.autonumber.entries, e.res)
		case AutosymbolSel:
			d.autosymbol.entries = append(d.autosymbol.entries, e.res)
		default:
			if existing, ok := d.unique[e.sel]; ok {
				if !existing.duplicate {
					dup := duplicateResolver(e.sel)
					dup.duplicate = true
					d.unique[e.sel] = dup
				}
				continue
			}
			d.unique[e.sel] = e.res
		}
	}

	d.resolveAliases(aliases)
	d.synthesizePathSelectors()
	return d
}

// resolveAliases chases alias chains with a visited set per alias.
// Revisiting a selector is a cycle and resolves to a fixed circular
// reference error instead of looping. Every chase walks the raw alias
// definitions and is seeded from the alias's own name, so an alias that
// merely joins a cycle elsewhere still reports itself; resolutions only
// enter the grouped map after all chases are done.
func (d *DocumentTargets) resolveAliases(aliases []*ast.LinkAlias) {
	byName := make(map[string]*ast.LinkAlias, len(aliases))
	for _, a := range aliases {
		byName[NormalizeID(a.ID)] = a
	}

	resolved := make(map[Selector]*TargetResolver, len(aliases))
	for _, a := range aliases {
		name := NormalizeID(a.ID)
		sel := LinkDef{Name: name}
		if _, taken := d.unique[sel]; taken {
			dup := duplicateResolver(sel)
			dup.duplicate = true
			d.unique[sel] = dup
			continue
		}
		if _, taken := resolved[sel]; taken {
			dup := duplicateResolver(sel)
			dup.duplicate = true
			resolved[sel] = dup
			continue
		}

		visited := map[string]bool{name: true}
		cur := NormalizeID(a.Target)
		var inner *TargetResolver
		msg := ""
		for {
			if r, ok := d.unique[LinkDef{Name: cur}]; ok {
				inner = r
				break
			}
			if r, ok := d.unique[UniqueID{Name: cur}]; ok {
				inner = r
				break
			}
			next, ok := byName[cur]
			if !ok {
				msg = "unresolved link alias: " + cur
				break
			}
			if visited[cur] {
				msg = "circular link reference: " + name
				break
			}
			visited[cur] = true
			cur = NormalizeID(next.Target)
		}

		resolved[sel] = aliasResolver(sel, inner, msg)
	}
	for sel, r := range resolved {
		d.unique[sel] = r
	}
}

func aliasResolver(sel Selector, inner *TargetResolver, msg string) *TargetResolver {
	r := &TargetResolver{Selector: sel}
	if inner != nil {
		r.Target = inner.Target
		r.ResolveReference = inner.ResolveReference
	} else {
		r.ResolveReference = func(ref ast.Span) ast.Span {
			return &ast.InvalidSpan{Message: msg, Fallback: sourceOf(ref)}
		}
	}
	// The alias definition itself never renders.
	r.ReplaceTarget = func(ast.Node) ast.Node { return nil }
	return r
}

// synthesizePathSelectors adds a path selector for every unique-id
// target plus one for the whole document, so cross-document references
// by explicit path and fragment keep working.
func (d *DocumentTargets) synthesizePathSelectors() {
	for sel, r := range d.unique {
		uid, ok := sel.(UniqueID)
		if !ok || r.duplicate || r.Target.Fragment == "" {
			continue
		}
		ps := PathSelector{Path: d.path, Fragment: uid.Name}
		if _, taken := d.unique[ps]; !taken {
			d.unique[ps] = r
		}
	}
	whole := PathSelector{Path: d.path}
	if _, taken := d.unique[whole]; !taken {
		d.unique[whole] = &TargetResolver{
			Selector: whole,
			Target:   ast.ResolvedTarget{Path: d.path},
		}
	}
}

func walkBlocks(blocks []ast.Block, visit func(ast.Node)) {
	for _, b := range blocks {
		walkBlock(b, visit)
	}
}

func walkBlock(b ast.Block, visit func(ast.Node)) {
	visit(b)
	switch t := b.(type) {
	case *ast.RootContent:
		walkBlocks(t.Blocks, visit)
	case *ast.Paragraph:
		walkSpans(t.Content, visit)
	case *ast.Header:
		walkSpans(t.Content, visit)
	case *ast.DecoratedHeader:
		walkSpans(t.Content, visit)
	case *ast.QuotedBlock:
		walkBlocks(t.Content, visit)
	case *ast.BulletList:
		for _, item := range t.Items {
			walkBlocks(item, visit)
		}
	case *ast.EnumList:
		for _, item := range t.Items {
			walkBlocks(item, visit)
		}
	case *ast.Table:
		for _, row := range append(append([]ast.TableRow{}, t.Head...), t.Body...) {
			for _, cell := range row.Cells {
				walkBlocks(cell.Content, visit)
			}
		}
	case *ast.BlockSequence:
		walkBlocks(t.Content, visit)
	case *ast.FootnoteDefinition:
		walkBlocks(t.Content, visit)
	case *ast.Footnote:
		walkBlocks(t.Content, visit)
	case *ast.Citation:
		walkBlocks(t.Content, visit)
	}
}

func walkSpans(spans []ast.Span, visit func(ast.Node)) {
	for _, s := range spans {
		visit(s)
		switch t := s.(type) {
		case *ast.Emphasized:
			walkSpans(t.Content, visit)
		case *ast.Strong:
			walkSpans(t.Content, visit)
		case *ast.SpanSequence:
			walkSpans(t.Content, visit)
		case *ast.SpanLink:
			walkSpans(t.Content, visit)
		case *ast.LinkIDReference:
			walkSpans(t.Content, visit)
		case *ast.AnonymousReference:
			walkSpans(t.Content, visit)
		case *ast.PathReference:
			walkSpans(t.Content, visit)
		}
	}
}
