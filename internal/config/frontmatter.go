package config

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// ParseFrontmatter splits a document source into its YAML frontmatter
// (the per-document configuration section) and the markup body. Sources
// without frontmatter return an empty map and the body unchanged.
func ParseFrontmatter(src []byte) (map[string]any, []byte, error) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return normalizeKeys(meta), body, nil
}

// YAML decoding can produce map[any]any for nested objects; normalize
// to map[string]any so dotted-key lookup works uniformly.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeKeys(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	default:
		return v
	}
}
