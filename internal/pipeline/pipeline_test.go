package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func TestBuildEndToEnd(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"directory.conf": "siteName = \"Test Site\"\n",
		"default.template.html": "<html><head><title>${document.title}</title></head>\n" +
			"<body>\n${document.content}\n<footer>${siteName}</footer></body></html>\n",
		"index.md":    "# Welcome\n\nGo read the [details](sub/page.md#section).\n",
		"sub/page.md": "# Page\n\n## Section\n\nContent here.\n",
	})

	tr := NewTransformer(discardLogger(), 4, "html")
	outputs, err := tr.Build(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	index := outputs["/index.html"]
	require.NotEmpty(t, index)
	assert.Contains(t, index, "<title>Welcome</title>")
	assert.Contains(t, index, `href="sub/page.html#section"`)
	assert.Contains(t, index, "<footer>Test Site</footer>")

	page := outputs["/sub/page.html"]
	require.NotEmpty(t, page)
	assert.Contains(t, page, "<title>Page</title>")
	assert.Contains(t, page, `id="section"`)
	// Subdirectory documents inherit the root default template.
	assert.Contains(t, page, "<footer>Test Site</footer>")
}

func TestBuildTemplateFrontmatterConfig(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"default.template.html": "---\nfooter: \"(c) docweave\"\nsiteName: \"Template Name\"\n---\n" +
			"<main>${document.content}</main>\n<footer>${footer} ${siteName}</footer>",
		"directory.conf": "siteName = \"Doc Name\"\n",
		"index.md":       "# Home\n",
	})

	tr := NewTransformer(discardLogger(), 2, "html")
	outputs, err := tr.Build(context.Background(), dir)
	require.NoError(t, err)

	index := outputs["/index.html"]
	// Template config fills gaps, document-side config shadows it.
	assert.Contains(t, index, "(c) docweave")
	assert.Contains(t, index, "Doc Name")
	assert.NotContains(t, index, "Template Name")
}

func TestBuildUnresolvedReferenceDegrades(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"index.md": "see [nowhere][missing]\n",
	})

	tr := NewTransformer(discardLogger(), 2, "html")
	outputs, err := tr.Build(context.Background(), dir)
	require.NoError(t, err)

	index := outputs["/index.html"]
	assert.Contains(t, index, `class="invalid"`)
	assert.Contains(t, index, "unresolved link reference: missing")
}

func TestBuildFormatExclusion(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"kept.md":    "# Kept\n",
		"skipped.md": "---\nformats: [pdf]\n---\n\n# Skipped\n",
	})

	tr := NewTransformer(discardLogger(), 2, "html")
	outputs, err := tr.Build(context.Background(), dir)
	require.NoError(t, err)

	assert.Contains(t, outputs, "/kept.html")
	assert.NotContains(t, outputs, "/skipped.html")
}

func TestBuildTitleDocumentNavigation(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"title.md":              "# The Book\n",
		"a.md":                  "# A\n",
		"b.md":                  "# B\n",
		"default.template.html": "<nav>${root.title}</nav>\n${document.content}",
	})

	tr := NewTransformer(discardLogger(), 2, "html")
	outputs, err := tr.Build(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, outputs, 3)

	assert.Contains(t, outputs["/a.html"], "<nav>The Book</nav>")
}

func TestBuildASTFormat(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"doc.md": "# Title\n\ntext\n",
	})

	tr := NewTransformer(discardLogger(), 1, "ast")
	outputs, err := tr.Build(context.Background(), dir)
	require.NoError(t, err)

	out := outputs["/doc.txt"]
	require.NotEmpty(t, out)
	assert.Contains(t, out, "Header(1)")
}

func TestWriteSite(t *testing.T) {
	dst := t.TempDir()
	err := WriteSite(map[string]string{
		"/index.html":    "<p>a</p>",
		"/sub/page.html": "<p>b</p>",
	}, dst)
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dst, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>", string(b))

	b, err = os.ReadFile(filepath.Join(dst, "sub", "page.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>b</p>", string(b))
}
