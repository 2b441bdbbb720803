package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docweave/docweave/internal/ast"
)

// stubCursor implements ast.Cursor over a flat substitution map.
type stubCursor struct {
	path string
	subs map[string]any
}

func (c *stubCursor) Path() string { return c.path }

func (c *stubCursor) Resolve(key string) (any, bool) {
	v, ok := c.subs[key]
	return v, ok
}

func (c *stubCursor) Target(path, fragment string) (ast.ResolvedTarget, bool) {
	return ast.ResolvedTarget{}, false
}

func (c *stubCursor) TargetByID(id string) (ast.ResolvedTarget, bool) {
	return ast.ResolvedTarget{}, false
}

func (c *stubCursor) WithSubstitutions(local map[string]any) ast.Cursor {
	merged := make(map[string]any, len(c.subs)+len(local))
	for k, v := range c.subs {
		merged[k] = v
	}
	for k, v := range local {
		merged[k] = v
	}
	return &stubCursor{path: c.path, subs: merged}
}

func upperFirstText(replacement string) SpanRule {
	return func(s ast.Span) (Action, bool) {
		if _, ok := s.(*ast.Text); ok {
			return Replace(&ast.Text{Content: replacement}), true
		}
		return Retained, false
	}
}

func TestAppendFirstMatchWins(t *testing.T) {
	first := ForSpans(upperFirstText("first"))
	second := ForSpans(upperFirstText("second"))

	spans := Spans([]ast.Span{&ast.Text{Content: "x"}}, first.Append(second), nil)
	require.Len(t, spans, 1)
	assert.Equal(t, &ast.Text{Content: "first"}, spans[0])

	// Composition must not mutate either operand.
	spans = Spans([]ast.Span{&ast.Text{Content: "x"}}, second, nil)
	assert.Equal(t, &ast.Text{Content: "second"}, spans[0].(*ast.Text))
}

func TestRewriteIsBottomUp(t *testing.T) {
	var seen []string
	rules := ForSpans(func(s ast.Span) (Action, bool) {
		if txt, ok := s.(*ast.Text); ok {
			seen = append(seen, txt.Content)
		}
		return Retained, false
	}).Append(ForBlocks(func(b ast.Block) (Action, bool) {
		if _, ok := b.(*ast.Paragraph); ok {
			seen = append(seen, "para")
		}
		return Retained, false
	}))

	Blocks([]ast.Block{
		&ast.Paragraph{Content: []ast.Span{&ast.Text{Content: "a"}, &ast.Text{Content: "b"}}},
	}, rules, nil)

	assert.Equal(t, []string{"a", "b", "para"}, seen)
}

func TestRemoveSplicesList(t *testing.T) {
	rules := ForSpans(func(s ast.Span) (Action, bool) {
		if txt, ok := s.(*ast.Text); ok && txt.Content == "drop" {
			return Removed, true
		}
		return Retained, false
	})

	spans := Spans([]ast.Span{
		&ast.Text{Content: "keep"},
		&ast.Text{Content: "drop"},
		&ast.Text{Content: "keep2"},
	}, rules, nil)

	require.Len(t, spans, 2)
	assert.Equal(t, "keep", spans[0].(*ast.Text).Content)
	assert.Equal(t, "keep2", spans[1].(*ast.Text).Content)
}

func TestReplacementIsRewrittenRecursively(t *testing.T) {
	// A rule expands a marker into a paragraph that contains another
	// marker span; a second rule must still fire on the inner marker.
	rules := ForBlocks(func(b ast.Block) (Action, bool) {
		if cb, ok := b.(*ast.CodeBlock); ok && cb.Language == "marker" {
			return Replace(&ast.Paragraph{Content: []ast.Span{&ast.Text{Content: "inner-marker"}}}), true
		}
		return Retained, false
	}).Append(ForSpans(func(s ast.Span) (Action, bool) {
		if txt, ok := s.(*ast.Text); ok && txt.Content == "inner-marker" {
			return Replace(&ast.Text{Content: "expanded"}), true
		}
		return Retained, false
	}))

	blocks := Blocks([]ast.Block{&ast.CodeBlock{Language: "marker"}}, rules, nil)
	require.Len(t, blocks, 1)
	para := blocks[0].(*ast.Paragraph)
	assert.Equal(t, "expanded", para.Content[0].(*ast.Text).Content)
}

func TestResolverOutputReentersRuleChain(t *testing.T) {
	c := &stubCursor{path: "/doc.md"}

	// The outer resolver produces another resolver; both must resolve
	// within a single pass.
	inner := &ast.SpanResolverFunc{F: func(ast.Cursor) ast.Span {
		return &ast.Text{Content: "resolved"}
	}}
	outer := &ast.SpanResolverFunc{F: func(ast.Cursor) ast.Span {
		return inner
	}}

	spans := Spans([]ast.Span{outer}, Rules{}, c)
	require.Len(t, spans, 1)
	assert.Equal(t, "resolved", spans[0].(*ast.Text).Content)
}

func TestResolverReturningNilIsRemoved(t *testing.T) {
	c := &stubCursor{path: "/doc.md"}
	res := &ast.BlockResolverFunc{F: func(ast.Cursor) ast.Block { return nil }}
	blocks := Blocks([]ast.Block{res, &ast.Rule{}}, Rules{}, c)
	require.Len(t, blocks, 1)
	assert.IsType(t, &ast.Rule{}, blocks[0])
}

func TestScopeOverlayIsLocal(t *testing.T) {
	c := &stubCursor{path: "/doc.md", subs: map[string]any{"name": "outer"}}

	readName := func() *ast.SpanResolverFunc {
		return &ast.SpanResolverFunc{F: func(cur ast.Cursor) ast.Span {
			v, _ := cur.Resolve("name")
			s, _ := v.(string)
			return &ast.Text{Content: s}
		}}
	}

	spans := Spans([]ast.Span{
		&ast.SpanScope{
			Content: []ast.Span{readName()},
			Local:   map[string]any{"name": "inner"},
		},
		readName(),
	}, Rules{}, c)

	require.Len(t, spans, 2)
	assert.Equal(t, "inner", spans[0].(*ast.Text).Content)
	assert.Equal(t, "outer", spans[1].(*ast.Text).Content)
}

func TestUnresolvedTerminalRule(t *testing.T) {
	rules := UnresolvedRules()

	blocks := Blocks([]ast.Block{
		&ast.Paragraph{Content: []ast.Span{
			&ast.LinkIDReference{ID: "missing", Source: "[missing]"},
		}},
		&ast.LinkDefinition{ID: "orphan", URL: "http://x", Source: "[orphan]: http://x"},
	}, rules, nil)

	require.Len(t, blocks, 2)
	para := blocks[0].(*ast.Paragraph)
	inv := para.Content[0].(*ast.InvalidSpan)
	assert.Equal(t, "unresolved link reference: missing", inv.Message)
	assert.Equal(t, "[missing]", inv.Fallback)
	assert.IsType(t, &ast.InvalidBlock{}, blocks[1])
}

func TestNilReplacementPanicsWithContractViolation(t *testing.T) {
	rules := ForBlocks(func(b ast.Block) (Action, bool) {
		if _, ok := b.(*ast.Rule); ok {
			return Replace(nil), true
		}
		return Retained, false
	})

	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(ContractViolation)
		assert.True(t, ok, "expected ContractViolation, got %T", r)
	}()
	Blocks([]ast.Block{&ast.Rule{}}, rules, nil)
}

func TestRewriteIdempotentOnResolvedTree(t *testing.T) {
	c := &stubCursor{path: "/doc.md"}
	rules := UnresolvedRules()

	input := []ast.Block{
		&ast.Header{Level: 1, Content: []ast.Span{&ast.Text{Content: "Title"}}, Opt: ast.Options{ID: "title"}},
		&ast.Paragraph{Content: []ast.Span{
			&ast.LinkIDReference{ID: "gone", Source: "[gone]"},
		}},
	}

	once := Blocks(input, rules, c)
	twice := Blocks(once, rules, c)
	assert.Equal(t, once, twice)
}
