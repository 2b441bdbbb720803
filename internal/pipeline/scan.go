// Package pipeline drives a full site build: scan the input directory,
// parse documents on a bounded worker pool, collect link targets,
// construct the cursor layer, resolve references, apply templates and
// render output. Cursor construction is the only sequential barrier;
// every per-document phase runs in parallel.
package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docweave/docweave/internal/config"
	"github.com/docweave/docweave/internal/doctree"
	"github.com/docweave/docweave/internal/parser"
	"github.com/docweave/docweave/internal/templates"
)

const (
	titleDocName   = "title.md"
	configFileName = "directory.conf"
	templateSuffix = ".template.html"
)

// Scan reads an input directory into a document tree root. Markup
// files parse to documents in parallel, directory.conf files become
// per-directory configuration, *.template.html files become templates
// (their YAML frontmatter is the template's own configuration) and
// title.md becomes the directory's title document.
func (t *Transformer) Scan(ctx context.Context, dir string) (*doctree.Root, error) {
	trees := map[string]*doctree.Tree{}
	var ensureTree func(p string) *doctree.Tree
	ensureTree = func(p string) *doctree.Tree {
		if tr, ok := trees[p]; ok {
			return tr
		}
		tr := &doctree.Tree{Path: p, Templates: map[string]*doctree.TemplateDocument{}}
		trees[p] = tr
		if p != "/" {
			parent := ensureTree(path.Dir(p))
			parent.Children = append(parent.Children, tr)
		}
		return tr
	}
	ensureTree("/")

	type docJob struct {
		osPath   string
		treePath string
		isTitle  bool
	}
	var jobs []docJob

	walkErr := filepath.WalkDir(dir, func(osPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, osPath)
		if err != nil {
			return err
		}
		treePath := "/"
		if rel != "." {
			treePath = "/" + filepath.ToSlash(rel)
		}
		name := d.Name()

		if d.IsDir() {
			if rel != "." && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			ensureTree(treePath)
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		dirPath := path.Dir(treePath)
		switch {
		case name == configFileName:
			src, err := os.ReadFile(osPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", osPath, err)
			}
			values, err := config.ParseHCL(src, osPath)
			if err != nil {
				return err
			}
			ensureTree(dirPath).Config = config.New(values, config.Origin{TreePath: dirPath})

		case strings.HasSuffix(name, templateSuffix):
			src, err := os.ReadFile(osPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", osPath, err)
			}
			meta, body, err := config.ParseFrontmatter(src)
			if err != nil {
				return fmt.Errorf("%s: %w", treePath, err)
			}
			spans, err := templates.Parse(string(body))
			if err != nil {
				return fmt.Errorf("%s: %w", treePath, err)
			}
			tpl := &doctree.TemplateDocument{
				Path:    treePath,
				Content: spans,
			}
			if len(meta) > 0 {
				tpl.Config = config.New(meta, config.Origin{TreePath: treePath})
			}
			ensureTree(dirPath).Templates[name] = tpl

		case parser.IsSupportedExtension(name):
			jobs = append(jobs, docJob{osPath: osPath, treePath: treePath, isTitle: name == titleDocName})
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, walkErr)
	}

	type parseResult struct {
		job docJob
		doc *doctree.Document
		err error
	}
	results := make(chan parseResult, len(jobs))
	sem := make(chan struct{}, t.workers)
	for _, j := range jobs {
		sem <- struct{}{}
		go func(j docJob) {
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				results <- parseResult{job: j, err: err}
				return
			}
			doc, err := parseFile(j.osPath, j.treePath)
			results <- parseResult{job: j, doc: doc, err: err}
		}(j)
	}

	var firstErr error
	for range jobs {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		owner := ensureTree(path.Dir(r.job.treePath))
		if r.job.isTitle {
			owner.TitleDocument = r.doc
		} else {
			owner.Children = append(owner.Children, r.doc)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	// Parse completion order is nondeterministic; children sort by path
	// so navigation and numbering are stable across runs.
	for _, tr := range trees {
		sort.Slice(tr.Children, func(i, j int) bool {
			return tr.Children[i].ItemPath() < tr.Children[j].ItemPath()
		})
	}

	t.log.Info("scan complete", "documents", len(jobs), "directories", len(trees))
	return &doctree.Root{Tree: trees["/"]}, nil
}

func parseFile(osPath, treePath string) (*doctree.Document, error) {
	src, err := os.ReadFile(osPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", osPath, err)
	}
	p, err := parser.ForFile(treePath)
	if err != nil {
		return nil, err
	}
	return p.Parse(src, treePath)
}
