// Package api is the preview server. It builds the site into memory and
// serves the rendered pages over HTTP, rebuilding on request so edits
// can be reviewed without a separate build step.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/docweave/docweave/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves a rendered site from memory.
type Server struct {
	router      chi.Router
	transformer *pipeline.Transformer
	src         string
	log         *slog.Logger

	mu   sync.RWMutex
	site map[string]string
}

// NewServer creates the preview server for a source directory. Call
// Rebuild before serving to populate the initial site.
func NewServer(tr *pipeline.Transformer, src string, log *slog.Logger) *Server {
	s := &Server{
		transformer: tr,
		src:         src,
		log:         log,
		site:        map[string]string{},
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/rebuild", s.handleRebuild)
	r.Get("/*", s.handlePage)

	s.router = r
}

// Rebuild runs a full build of the source directory and swaps the
// served site in one step. A failed build leaves the previous site in
// place.
func (s *Server) Rebuild(ctx context.Context) error {
	outputs, err := s.transformer.Build(ctx, s.src)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.site = outputs
	s.mu.Unlock()
	s.log.Info("site rebuilt", "pages", len(outputs))
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if err := s.Rebuild(r.Context()); err != nil {
		s.log.Error("rebuild failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"rebuilt"}`))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	content, p, ok := s.lookup(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType(p))
	w.Write([]byte(content))
}

// lookup resolves a request path against the in-memory site. Extension
// free paths fall through to their page or index page.
func (s *Server) lookup(reqPath string) (content, resolved string, ok bool) {
	p := path.Clean("/" + reqPath)

	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := []string{p}
	if path.Ext(p) == "" {
		candidates = append(candidates, p+".html", path.Join(p, "index.html"))
	}
	for _, c := range candidates {
		if content, ok := s.site[c]; ok {
			return content, c, true
		}
	}
	return "", "", false
}

func contentType(p string) string {
	switch {
	case strings.HasSuffix(p, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(p, ".txt"):
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
