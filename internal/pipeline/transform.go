package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/docweave/docweave/internal/ast"
	"github.com/docweave/docweave/internal/config"
	"github.com/docweave/docweave/internal/doctree"
	"github.com/docweave/docweave/internal/render"
	"github.com/docweave/docweave/internal/rewrite"
	"github.com/docweave/docweave/internal/targets"
	"github.com/docweave/docweave/internal/templates"
)

// Renderer is the output stage of a build.
type Renderer interface {
	Render(blocks []ast.Block) (string, error)
}

// Transformer runs builds for one target format with a bounded worker
// pool.
type Transformer struct {
	log     *slog.Logger
	workers int
	format  string
}

func NewTransformer(log *slog.Logger, workers int, format string) *Transformer {
	if workers < 1 {
		workers = 1
	}
	if format == "" {
		format = "html"
	}
	return &Transformer{log: log, workers: workers, format: format}
}

// Build scans a source directory and transforms it, returning rendered
// output keyed by tree path.
func (t *Transformer) Build(ctx context.Context, dir string) (map[string]string, error) {
	root, err := t.Scan(ctx, dir)
	if err != nil {
		return nil, err
	}
	return t.Transform(ctx, root)
}

// Transform runs the three per-document phases over an already scanned
// root: target collection, reference resolution, template application
// plus rendering. The two cursor constructions between them are the
// sequential barriers; documents within a phase are independent.
func (t *Transformer) Transform(ctx context.Context, root *doctree.Root) (map[string]string, error) {
	start := time.Now()
	docs := root.AllDocuments()

	err := t.parallel(ctx, len(docs), func(i int) error {
		d := docs[i]
		d.Targets = targets.Collect(d.Path, d.Content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.log.Info("targets collected", "documents", len(docs))

	rc := doctree.NewRootCursor(root)
	cursors := rc.Documents()
	resolved := make([]*doctree.Document, len(cursors))
	err = t.parallel(ctx, len(cursors), func(i int) error {
		dc := cursors[i]
		rules := dc.Doc.Targets.RewriteRules(dc).Append(rewrite.UnresolvedRules())
		content := rewrite.Blocks(dc.Doc.Content, rules, dc)
		if n := countInvalid(content); n > 0 {
			t.log.Warn("unresolved references degraded to invalid nodes",
				"path", dc.Path(), "count", n)
		}
		resolved[i] = dc.Doc.WithContent(content)
		return nil
	})
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]*doctree.Document, len(resolved))
	for _, d := range resolved {
		byPath[d.Path] = d
	}
	resolvedRoot := &doctree.Root{Tree: rebuildTree(root.Tree, byPath)}

	rc2 := doctree.NewRootCursor(resolvedRoot)
	cursors = rc2.Documents()
	outputs := make(map[string]string, len(cursors))
	var mu sync.Mutex
	err = t.parallel(ctx, len(cursors), func(i int) error {
		dc := cursors[i]
		skip, err := excluded(dc, t.format)
		if err != nil {
			return err
		}
		if skip {
			t.log.Debug("document excluded from format", "path", dc.Path(), "format", t.format)
			return nil
		}

		tpl, err := templates.Select(rc2, dc, t.format)
		if err != nil {
			return err
		}
		final := templates.Apply(tpl, dc, rewrite.UnresolvedRules())
		out, err := t.renderer().Render(final.Content)
		if err != nil {
			return fmt.Errorf("render %s: %w", dc.Path(), err)
		}

		mu.Lock()
		outputs[t.outputPath(dc.Path())] = out
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.log.Info("transform complete",
		"documents", len(docs), "rendered", len(outputs), "duration", time.Since(start))
	return outputs, nil
}

// parallel runs fn for each index on the bounded worker pool, returning
// the first error after all work has drained.
func (t *Transformer) parallel(ctx context.Context, n int, fn func(i int) error) error {
	sem := make(chan struct{}, t.workers)
	results := make(chan error, n)
	for i := range n {
		sem <- struct{}{}
		go func(i int) {
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				results <- err
				return
			}
			results <- fn(i)
		}(i)
	}
	var first error
	for range n {
		if err := <-results; err != nil && first == nil {
			first = err
		}
	}
	return first
}

// excluded reports whether a document's `formats` config restricts it
// away from the current target format.
func excluded(dc *doctree.DocumentCursor, format string) (bool, error) {
	formats, ok, err := config.GetOpt[[]string](dc.Config, "formats")
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	for _, f := range formats {
		if f == format {
			return false, nil
		}
	}
	return true, nil
}

func rebuildTree(tr *doctree.Tree, byPath map[string]*doctree.Document) *doctree.Tree {
	out := &doctree.Tree{
		Path:      tr.Path,
		Templates: tr.Templates,
		Config:    tr.Config,
	}
	if tr.TitleDocument != nil {
		out.TitleDocument = byPath[tr.TitleDocument.Path]
	}
	for _, item := range tr.Children {
		switch c := item.(type) {
		case *doctree.Document:
			out.Children = append(out.Children, byPath[c.Path])
		case *doctree.Tree:
			out.Children = append(out.Children, rebuildTree(c, byPath))
		}
	}
	return out
}

// countInvalid walks a resolved tree through the engine with counting
// rules that match without acting.
func countInvalid(blocks []ast.Block) int {
	n := 0
	rules := rewrite.Rules{
		Blocks: []rewrite.BlockRule{func(b ast.Block) (rewrite.Action, bool) {
			if _, ok := b.(*ast.InvalidBlock); ok {
				n++
			}
			return rewrite.Retained, false
		}},
		Spans: []rewrite.SpanRule{func(s ast.Span) (rewrite.Action, bool) {
			if _, ok := s.(*ast.InvalidSpan); ok {
				n++
			}
			return rewrite.Retained, false
		}},
	}
	rewrite.Blocks(blocks, rules, nil)
	return n
}

func (t *Transformer) renderer() Renderer {
	if t.format == "ast" {
		return render.Text{}
	}
	return render.HTML{}
}

func (t *Transformer) outputPath(p string) string {
	ext := path.Ext(p)
	base := strings.TrimSuffix(p, ext)
	if t.format == "ast" {
		return base + ".txt"
	}
	return base + ".html"
}

// WriteSite writes rendered output under dst, preserving the tree
// shape.
func WriteSite(outputs map[string]string, dst string) error {
	for p, content := range outputs {
		osPath := filepath.Join(dst, filepath.FromSlash(strings.TrimPrefix(p, "/")))
		if err := os.MkdirAll(filepath.Dir(osPath), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(osPath), err)
		}
		if err := os.WriteFile(osPath, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", osPath, err)
		}
	}
	return nil
}
