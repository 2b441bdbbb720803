package targets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docweave/docweave/internal/ast"
	"github.com/docweave/docweave/internal/rewrite"
)

func resolveDoc(t *testing.T, docPath string, content []ast.Block) []ast.Block {
	t.Helper()
	d := Collect(docPath, content)
	rules := d.RewriteRules(nil).Append(rewrite.UnresolvedRules())
	return rewrite.Blocks(content, rules, nil)
}

func para(spans ...ast.Span) *ast.Paragraph {
	return &ast.Paragraph{Content: spans}
}

func txt(s string) *ast.Text { return &ast.Text{Content: s} }

func TestSectionLevelsByFirstOccurrence(t *testing.T) {
	content := []ast.Block{
		&ast.DecoratedHeader{Decoration: "===", Content: []ast.Span{txt("One")}},
		&ast.DecoratedHeader{Decoration: "---", Content: []ast.Span{txt("Two")}},
		&ast.DecoratedHeader{Decoration: "===", Content: []ast.Span{txt("Three")}},
		&ast.DecoratedHeader{Decoration: "~~~", Content: []ast.Span{txt("Four")}},
	}

	out := resolveDoc(t, "/doc.md", content)
	require.Len(t, out, 4)

	var levels []int
	for _, b := range out {
		h, ok := b.(*ast.Header)
		require.True(t, ok, "expected header, got %T", b)
		levels = append(levels, h.Level)
	}
	assert.Equal(t, []int{1, 2, 1, 3}, levels)
	assert.Equal(t, "one", out[0].(*ast.Header).Opt.ID)
}

func TestDuplicateTargetIDInvalidatesAllDefinitionsAndReferences(t *testing.T) {
	content := []ast.Block{
		&ast.Header{Level: 1, Content: []ast.Span{txt("Intro")}, Opt: ast.Options{ID: "intro"}},
		&ast.Header{Level: 2, Content: []ast.Span{txt("Intro again")}, Opt: ast.Options{ID: "intro"}},
		para(&ast.LinkIDReference{Content: []ast.Span{txt("see intro")}, ID: "intro", Source: "[see intro][intro]"}),
	}

	out := resolveDoc(t, "/doc.md", content)
	require.Len(t, out, 3)

	for i := 0; i < 2; i++ {
		inv, ok := out[i].(*ast.InvalidBlock)
		require.True(t, ok, "definition %d must be invalid, got %T", i, out[i])
		assert.Equal(t, "duplicate target id: intro", inv.Message)
	}

	ref := out[2].(*ast.Paragraph).Content[0]
	inv, ok := ref.(*ast.InvalidSpan)
	require.True(t, ok)
	assert.Equal(t, "duplicate target id: intro", inv.Message)
	assert.Equal(t, "[see intro][intro]", inv.Fallback)
}

func TestDuplicateDefinitionsKeepSourceFragment(t *testing.T) {
	content := []ast.Block{
		&ast.LinkDefinition{ID: "home", URL: "http://one.example", Source: "[home]: http://one.example"},
		&ast.LinkDefinition{ID: "home", URL: "http://two.example", Source: "[home]: http://two.example"},
	}

	out := resolveDoc(t, "/doc.md", content)
	require.Len(t, out, 2)

	var fallbacks []string
	for _, b := range out {
		inv, ok := b.(*ast.InvalidBlock)
		require.True(t, ok, "expected invalid block, got %T", b)
		assert.Equal(t, "duplicate target id: home", inv.Message)
		fallbacks = append(fallbacks, inv.Fallback)
	}
	assert.Equal(t, []string{"[home]: http://one.example", "[home]: http://two.example"}, fallbacks)
}

func TestAnonymousReferencesResolveInOrderAndExhaust(t *testing.T) {
	content := []ast.Block{
		para(
			&ast.AnonymousReference{Content: []ast.Span{txt("first")}, Source: "[first]__"},
			&ast.AnonymousReference{Content: []ast.Span{txt("second")}, Source: "[second]__"},
			&ast.AnonymousReference{Content: []ast.Span{txt("third")}, Source: "[third]__"},
		),
		&ast.LinkDefinition{URL: "http://a.example"},
		&ast.LinkDefinition{URL: "http://b.example"},
	}

	out := resolveDoc(t, "/doc.md", content)
	spans := out[0].(*ast.Paragraph).Content
	require.Len(t, spans, 3)

	first := spans[0].(*ast.SpanLink)
	assert.Equal(t, "http://a.example", first.URL)
	second := spans[1].(*ast.SpanLink)
	assert.Equal(t, "http://b.example", second.URL)

	inv, ok := spans[2].(*ast.InvalidSpan)
	require.True(t, ok)
	assert.Equal(t, "too many anonymous link references", inv.Message)
	assert.Equal(t, "[third]__", inv.Fallback)

	// Both definitions are consumed and removed from output.
	require.Len(t, out, 1)
}

func TestAutosymbolCycling(t *testing.T) {
	var content []ast.Block
	var refs []ast.Span
	for i := 0; i < 21; i++ {
		refs = append(refs, &ast.FootnoteReference{Label: ast.Autosymbol{}})
		content = append(content, &ast.FootnoteDefinition{
			Label:   ast.Autosymbol{},
			Content: []ast.Block{para(txt(fmt.Sprintf("note %d", i)))},
		})
	}
	content = append([]ast.Block{para(refs...)}, content...)

	out := resolveDoc(t, "/doc.md", content)
	spans := out[0].(*ast.Paragraph).Content
	require.Len(t, spans, 21)

	assert.Equal(t, "*", spans[0].(*ast.FootnoteLink).Label)
	assert.Equal(t, "♣", spans[9].(*ast.FootnoteLink).Label)
	assert.Equal(t, "**", spans[10].(*ast.FootnoteLink).Label, "11th autosymbol must double")
	assert.Equal(t, "***", spans[20].(*ast.FootnoteLink).Label, "21st autosymbol must triple")
}

func TestAutonumberSkipsExplicitNumericLabels(t *testing.T) {
	content := []ast.Block{
		para(
			&ast.FootnoteReference{Label: ast.Autonumber{}},
			&ast.FootnoteReference{Label: ast.NumericLabel{Number: 1}},
			&ast.FootnoteReference{Label: ast.Autonumber{}},
		),
		&ast.FootnoteDefinition{Label: ast.Autonumber{}, Content: []ast.Block{para(txt("a"))}},
		&ast.FootnoteDefinition{Label: ast.NumericLabel{Number: 1}, Content: []ast.Block{para(txt("b"))}},
		&ast.FootnoteDefinition{Label: ast.Autonumber{}, Content: []ast.Block{para(txt("c"))}},
	}

	out := resolveDoc(t, "/doc.md", content)
	spans := out[0].(*ast.Paragraph).Content

	assert.Equal(t, "2", spans[0].(*ast.FootnoteLink).Label)
	assert.Equal(t, "1", spans[1].(*ast.FootnoteLink).Label)
	assert.Equal(t, "3", spans[2].(*ast.FootnoteLink).Label)

	// Definitions carry the same display labels in document order.
	assert.Equal(t, "2", out[1].(*ast.Footnote).Label)
	assert.Equal(t, "1", out[2].(*ast.Footnote).Label)
	assert.Equal(t, "3", out[3].(*ast.Footnote).Label)
}

func TestLinkAliasChainsResolve(t *testing.T) {
	content := []ast.Block{
		para(&ast.LinkIDReference{Content: []ast.Span{txt("go")}, ID: "start", Source: "[go][start]"}),
		&ast.LinkAlias{ID: "start", Target: "middle"},
		&ast.LinkAlias{ID: "middle", Target: "end"},
		&ast.LinkDefinition{ID: "end", URL: "http://end.example"},
	}

	out := resolveDoc(t, "/doc.md", content)
	link := out[0].(*ast.Paragraph).Content[0].(*ast.SpanLink)
	assert.Equal(t, "http://end.example", link.URL)

	// Alias and definition nodes do not render.
	require.Len(t, out, 1)
}

func TestCircularAliasTerminates(t *testing.T) {
	content := []ast.Block{
		para(&ast.LinkIDReference{Content: []ast.Span{txt("go")}, ID: "a", Source: "[go][a]"}),
		&ast.LinkAlias{ID: "a", Target: "b"},
		&ast.LinkAlias{ID: "b", Target: "a"},
	}

	out := resolveDoc(t, "/doc.md", content)
	inv, ok := out[0].(*ast.Paragraph).Content[0].(*ast.InvalidSpan)
	require.True(t, ok)
	assert.Equal(t, "circular link reference: a", inv.Message)
}

func TestAliasJoiningCycleNamesItself(t *testing.T) {
	content := []ast.Block{
		para(&ast.LinkIDReference{Content: []ast.Span{txt("go")}, ID: "a", Source: "[go][a]"}),
		para(&ast.LinkIDReference{Content: []ast.Span{txt("go")}, ID: "b", Source: "[go][b]"}),
		&ast.LinkAlias{ID: "a", Target: "b"},
		&ast.LinkAlias{ID: "b", Target: "a"},
	}

	out := resolveDoc(t, "/doc.md", content)

	// Each member of the cycle reports under its own name, regardless of
	// the order the aliases were chased in.
	invA, ok := out[0].(*ast.Paragraph).Content[0].(*ast.InvalidSpan)
	require.True(t, ok)
	assert.Equal(t, "circular link reference: a", invA.Message)

	invB, ok := out[1].(*ast.Paragraph).Content[0].(*ast.InvalidSpan)
	require.True(t, ok)
	assert.Equal(t, "circular link reference: b", invB.Message)
}

func TestSelfReferentialAliasTerminates(t *testing.T) {
	content := []ast.Block{
		para(&ast.LinkIDReference{ID: "loop", Source: "[loop]"}),
		&ast.LinkAlias{ID: "loop", Target: "loop"},
	}

	out := resolveDoc(t, "/doc.md", content)
	inv, ok := out[0].(*ast.Paragraph).Content[0].(*ast.InvalidSpan)
	require.True(t, ok)
	assert.Equal(t, "circular link reference: loop", inv.Message)
}

func TestUnresolvedAliasMessage(t *testing.T) {
	content := []ast.Block{
		para(&ast.LinkIDReference{ID: "dangling", Source: "[dangling]"}),
		&ast.LinkAlias{ID: "dangling", Target: "nowhere"},
	}

	out := resolveDoc(t, "/doc.md", content)
	inv, ok := out[0].(*ast.Paragraph).Content[0].(*ast.InvalidSpan)
	require.True(t, ok)
	assert.Equal(t, "unresolved link alias: nowhere", inv.Message)
}

func TestCitationResolution(t *testing.T) {
	content := []ast.Block{
		para(&ast.CitationReference{Label: "Knuth84", Source: "[Knuth84]_"}),
		&ast.Citation{Label: "Knuth84", Content: []ast.Block{para(txt("TAOCP"))}},
	}

	out := resolveDoc(t, "/doc.md", content)
	link := out[0].(*ast.Paragraph).Content[0].(*ast.CitationLink)
	assert.Equal(t, "Knuth84", link.Label)
	assert.Equal(t, "knuth84", link.Ref)

	cite := out[1].(*ast.Citation)
	assert.Equal(t, "knuth84", cite.Opt.ID)
}

func TestSynthesizedPathSelectors(t *testing.T) {
	d := Collect("/dir/doc.md", []ast.Block{
		&ast.Header{Level: 1, Content: []ast.Span{txt("Intro")}, Opt: ast.Options{ID: "intro"}},
	})

	target, ok := d.LookupPath("/dir/doc.md", "intro")
	require.True(t, ok)
	assert.Equal(t, "/dir/doc.md", target.Path)
	assert.Equal(t, "intro", target.Fragment)

	whole, ok := d.LookupPath("/dir/doc.md", "")
	require.True(t, ok)
	assert.Equal(t, "/dir/doc.md", whole.Path)
	assert.Empty(t, whole.Fragment)

	byID, ok := d.LookupID("intro")
	require.True(t, ok)
	assert.Equal(t, "Intro", byID.Title)
}

func TestRelativePath(t *testing.T) {
	cases := []struct {
		from, to, want string
	}{
		{"/doc1.md", "/doc2.md", "doc2.md"},
		{"/dir/doc1.md", "/dir/doc2.md", "doc2.md"},
		{"/dir/doc1.md", "/dir/sub/doc2.md", "sub/doc2.md"},
		{"/dir/sub/doc1.md", "/dir/doc2.md", "../doc2.md"},
		{"/a/b/doc.md", "/c/doc2.md", "../../c/doc2.md"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RelativePath(tc.from, tc.to), "from %s to %s", tc.from, tc.to)
	}
}
