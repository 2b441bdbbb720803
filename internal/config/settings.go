package config

import (
	"os"
	"runtime"
	"strconv"
)

// Settings are the operational knobs of the transform pipeline and the
// preview server, read from the environment with CLI flags taking
// precedence.
type Settings struct {
	Addr string

	// Worker pool for per-document phases.
	WorkerCount int

	// Output format selector, e.g. "html".
	Format string
}

func LoadSettings() Settings {
	s := Settings{
		Addr:        envOr("DOCWEAVE_ADDR", ":8080"),
		WorkerCount: envInt("DOCWEAVE_WORKERS", runtime.NumCPU()),
		Format:      envOr("DOCWEAVE_FORMAT", "html"),
	}

	if s.WorkerCount <= 0 {
		s.WorkerCount = 4
	}
	if s.Format == "" {
		s.Format = "html"
	}

	return s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
