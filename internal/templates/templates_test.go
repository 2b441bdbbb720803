package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docweave/docweave/internal/ast"
	"github.com/docweave/docweave/internal/config"
	"github.com/docweave/docweave/internal/doctree"
	"github.com/docweave/docweave/internal/rewrite"
)

func TestParseLiteralAndVariables(t *testing.T) {
	spans, err := Parse("Hello ${name}!")
	require.NoError(t, err)
	require.Len(t, spans, 3)

	assert.Equal(t, &ast.TemplateText{Text: "Hello "}, spans[0])
	v := spans[1].(*ast.TemplateVariable)
	assert.Equal(t, "name", v.Key)
	assert.Equal(t, "${name}", v.Source)
	assert.Equal(t, &ast.TemplateText{Text: "!"}, spans[2])
}

func TestParseNestedDirectives(t *testing.T) {
	spans, err := Parse("@:if(show)\n@:for(items)\n- ${_}\n@:@\n@:@\ndone")
	require.NoError(t, err)
	require.Len(t, spans, 2)

	ifd := spans[0].(*ast.IfDirective)
	assert.Equal(t, "show", ifd.Key)
	require.Len(t, ifd.Body, 1)

	ford := ifd.Body[0].(*ast.ForDirective)
	assert.Equal(t, "items", ford.Key)
	require.Len(t, ford.Body, 3)
	assert.Equal(t, &ast.TemplateText{Text: "- "}, ford.Body[0])
	assert.Equal(t, "_", ford.Body[1].(*ast.TemplateVariable).Key)

	assert.Equal(t, &ast.TemplateText{Text: "done"}, spans[1])
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name, src string
	}{
		{"unclosed variable", "before ${oops"},
		{"unclosed directive", "@:for(items)\nbody"},
		{"stray end marker", "text @:@ text"},
		{"empty directive key", "@:if()\nbody\n@:@"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			assert.Error(t, err)
		})
	}
}

func singleDocRoot(t *testing.T, cfg map[string]any, content ...ast.Block) (*doctree.RootCursor, *doctree.DocumentCursor) {
	t.Helper()
	var c *config.Config
	if cfg != nil {
		c = config.New(cfg, config.Origin{TreePath: "/doc.md"})
	}
	doc := &doctree.Document{
		Path:    "/doc.md",
		Content: content,
		Title:   []ast.Span{&ast.Text{Content: "Doc"}},
		Config:  c,
	}
	rc := doctree.NewRootCursor(&doctree.Root{Tree: &doctree.Tree{
		Path:     "/",
		Children: []doctree.TreeItem{doc},
	}})
	dc, ok := rc.Document("/doc.md")
	require.True(t, ok)
	return rc, dc
}

func renderText(t *testing.T, spans []ast.TemplateSpan) string {
	t.Helper()
	var b strings.Builder
	for _, s := range spans {
		txt, ok := s.(*ast.TemplateText)
		require.True(t, ok, "expected only literal text, got %T", s)
		b.WriteString(txt.Text)
	}
	return b.String()
}

func rewriteTemplate(t *testing.T, src string, dc *doctree.DocumentCursor) []ast.TemplateSpan {
	t.Helper()
	spans, err := Parse(src)
	require.NoError(t, err)
	out := rewrite.TemplateSpans(spans, rewrite.UnresolvedRules(), dc)
	return ast.MergeTemplateText(out)
}

func TestVariableSubstitution(t *testing.T) {
	_, dc := singleDocRoot(t, map[string]any{"version": "1.2"})

	out := rewriteTemplate(t, "${document.title} v${version}", dc)
	assert.Equal(t, "Doc v1.2", renderText(t, out))
}

func TestMissingVariableResolvesEmpty(t *testing.T) {
	_, dc := singleDocRoot(t, nil)

	out := rewriteTemplate(t, "[${no.such.key}]", dc)
	assert.Equal(t, "[]", renderText(t, out))
}

func TestForDirectiveIteratesWithElementBinding(t *testing.T) {
	_, dc := singleDocRoot(t, map[string]any{
		"authors": []any{"Ann", "Ben"},
	})

	out := rewriteTemplate(t, "@:for(authors)\n<${_}>\n@:@", dc)
	assert.Equal(t, "<Ann>\n<Ben>\n", renderText(t, out))
}

func TestForDirectiveExposesObjectKeys(t *testing.T) {
	_, dc := singleDocRoot(t, map[string]any{
		"links": []any{
			map[string]any{"label": "Home", "url": "/"},
			map[string]any{"label": "Docs", "url": "/docs"},
		},
	})

	out := rewriteTemplate(t, "@:for(links)\n${label}=${url};\n@:@", dc)
	assert.Equal(t, "Home=/;\nDocs=/docs;\n", renderText(t, out))
}

func TestForDirectiveEmptyAndMissing(t *testing.T) {
	_, dc := singleDocRoot(t, map[string]any{"empty": []any{}})

	out := rewriteTemplate(t, "[@:for(empty)\nx\n@:@]", dc)
	assert.Equal(t, "[]", renderText(t, out))

	out = rewriteTemplate(t, "[@:for(absent)\nx\n@:@]", dc)
	assert.Equal(t, "[]", renderText(t, out))
}

func TestIfDirective(t *testing.T) {
	_, dc := singleDocRoot(t, map[string]any{
		"draft":  true,
		"hidden": false,
	})

	out := rewriteTemplate(t, "@:if(draft)\nDRAFT\n@:@", dc)
	assert.Equal(t, "DRAFT\n", renderText(t, out))

	out = rewriteTemplate(t, "[@:if(hidden)\nX\n@:@]", dc)
	assert.Equal(t, "[]", renderText(t, out))

	out = rewriteTemplate(t, "[@:if(absent)\nX\n@:@]", dc)
	assert.Equal(t, "[]", renderText(t, out))
}

func TestScopedBindingIsLocal(t *testing.T) {
	_, dc := singleDocRoot(t, map[string]any{
		"items": []any{"a"},
		"label": "outer",
	})

	// Inside the loop the element shadows nothing but "_"; outside the
	// loop "_" is gone and config keys are unchanged.
	out := rewriteTemplate(t, "@:for(items)\n${_}/${label}\n@:@${label}[${_}]", dc)
	assert.Equal(t, "a/outer\nouter[]", renderText(t, out))
}

func TestApplyCollapsesSingleContentInsertion(t *testing.T) {
	para := &ast.Paragraph{Content: []ast.Span{&ast.Text{Content: "body"}}}
	_, dc := singleDocRoot(t, nil, para)

	spans, err := Parse("${document.content}")
	require.NoError(t, err)
	tpl := &doctree.TemplateDocument{Path: "/default.template.html", Content: spans}

	out := Apply(tpl, dc, rewrite.UnresolvedRules())
	require.Len(t, out.Content, 1)
	assert.IsType(t, &ast.Paragraph{}, out.Content[0])
}

func TestApplyWrapsAndRecordsIndentation(t *testing.T) {
	para := &ast.Paragraph{Content: []ast.Span{&ast.Text{Content: "body"}}}
	_, dc := singleDocRoot(t, nil, para)

	spans, err := Parse("<div>\n  ${document.content}\n</div>")
	require.NoError(t, err)
	tpl := &doctree.TemplateDocument{Path: "/t.html", Content: spans}

	out := Apply(tpl, dc, rewrite.UnresolvedRules())
	require.Len(t, out.Content, 1)

	root := out.Content[0].(*ast.TemplateRoot)
	require.Len(t, root.Content, 3)
	embedded := root.Content[1].(*ast.EmbeddedRoot)
	assert.Equal(t, 2, embedded.Indent)
	require.Len(t, embedded.Content, 1)
}

func TestApplyMergesTemplateConfigBeneathDocument(t *testing.T) {
	_, dc := singleDocRoot(t, map[string]any{"title": "From Doc"})

	spans, err := Parse("${title}/${footer}")
	require.NoError(t, err)
	tpl := &doctree.TemplateDocument{
		Path:    "/t.html",
		Content: spans,
		Config: config.New(map[string]any{
			"title":  "From Template",
			"footer": "(c) docweave",
		}, config.Origin{TreePath: "/t.html"}),
	}

	out := Apply(tpl, dc, rewrite.UnresolvedRules())
	root := out.Content[0].(*ast.TemplateRoot)
	assert.Equal(t, "From Doc/(c) docweave", renderText(t, root.Content))
}

func selectFixture(t *testing.T, docCfg map[string]any) (*doctree.RootCursor, *doctree.DocumentCursor) {
	t.Helper()
	var cfg *config.Config
	if docCfg != nil {
		cfg = config.New(docCfg, config.Origin{TreePath: "/sub/doc.md"})
	}
	doc := &doctree.Document{Path: "/sub/doc.md", Config: cfg}

	rootDefault := &doctree.TemplateDocument{Path: "/default.template.html"}
	custom := &doctree.TemplateDocument{Path: "/custom.html"}
	sub := &doctree.Tree{Path: "/sub", Children: []doctree.TreeItem{doc}}
	root := &doctree.Tree{
		Path:     "/",
		Children: []doctree.TreeItem{sub},
		Templates: map[string]*doctree.TemplateDocument{
			"default.template.html": rootDefault,
			"custom.html":           custom,
		},
	}
	rc := doctree.NewRootCursor(&doctree.Root{Tree: root})
	dc, ok := rc.Document("/sub/doc.md")
	require.True(t, ok)
	return rc, dc
}

func TestSelectConfiguredTemplateWins(t *testing.T) {
	rc, dc := selectFixture(t, map[string]any{
		"template": map[string]any{"html": "/custom.html"},
	})

	tpl, err := Select(rc, dc, "html")
	require.NoError(t, err)
	assert.Equal(t, "/custom.html", tpl.Path)
}

func TestSelectGenericConfigKey(t *testing.T) {
	rc, dc := selectFixture(t, map[string]any{"template": "/custom.html"})

	tpl, err := Select(rc, dc, "html")
	require.NoError(t, err)
	assert.Equal(t, "/custom.html", tpl.Path)
}

func TestSelectAncestorDefault(t *testing.T) {
	rc, dc := selectFixture(t, nil)

	tpl, err := Select(rc, dc, "html")
	require.NoError(t, err)
	assert.Equal(t, "/default.template.html", tpl.Path)
}

func TestSelectNearestDefaultWins(t *testing.T) {
	rc, dc := selectFixture(t, nil)
	subDefault := &doctree.TemplateDocument{Path: "/sub/default.template.html"}
	rc.TreeFor(dc).Tree.Templates = map[string]*doctree.TemplateDocument{
		"default.template.html": subDefault,
	}

	tpl, err := Select(rc, dc, "html")
	require.NoError(t, err)
	assert.Equal(t, "/sub/default.template.html", tpl.Path)
}

func TestSelectConfiguredTemplateMissingIsError(t *testing.T) {
	rc, dc := selectFixture(t, map[string]any{"template": "/nope.html"})

	_, err := Select(rc, dc, "html")
	assert.Error(t, err)
}

func TestSelectFallback(t *testing.T) {
	doc := &doctree.Document{Path: "/doc.md"}
	rc := doctree.NewRootCursor(&doctree.Root{Tree: &doctree.Tree{
		Path:     "/",
		Children: []doctree.TreeItem{doc},
	}})
	dc, _ := rc.Document("/doc.md")

	tpl, err := Select(rc, dc, "html")
	require.NoError(t, err)
	require.Len(t, tpl.Content, 1)
	assert.Equal(t, "document.content", tpl.Content[0].(*ast.TemplateVariable).Key)
}
