// Package config implements the layered configuration the document tree
// runs on: per-document frontmatter over per-directory HCL files over
// ancestor directories up to the root. Values are queried by dotted key
// with typed decoding; path-valued settings resolve relative to the
// layer that defined them.
package config

import (
	"fmt"
	"path"
	"strconv"

	"github.com/ohler55/ojg/jp"
)

// Origin identifies where a configuration layer came from: the tree
// path of the document or directory whose file defined it. Relative
// path values resolve against it.
type Origin struct {
	TreePath string
}

// Config is one layer of configuration plus a fallback chain to the
// enclosing layers. Configs are immutable; layering produces new
// values.
type Config struct {
	origin Origin
	values map[string]any
	parent *Config
}

// New creates a single-layer config. A nil value map is valid and
// matches nothing.
func New(values map[string]any, origin Origin) *Config {
	return &Config{origin: origin, values: values}
}

// Empty is a config with no values and no origin.
func Empty() *Config { return &Config{} }

// Origin returns the origin of the top layer.
func (c *Config) Origin() Origin { return c.origin }

// WithFallback returns a config that consults c first and falls back to
// parent. Neither operand is modified.
func (c *Config) WithFallback(parent *Config) *Config {
	if c == nil {
		return parent
	}
	out := &Config{origin: c.origin, values: c.values, parent: c.parent}
	if out.parent == nil {
		out.parent = parent
	} else {
		out.parent = out.parent.WithFallback(parent)
	}
	return out
}

// Lookup finds a dotted key, walking the layer chain top down.
func (c *Config) Lookup(key string) (any, bool) {
	v, _, ok := c.lookupWithOrigin(key)
	return v, ok
}

func (c *Config) lookupWithOrigin(key string) (any, Origin, bool) {
	expr, err := jp.ParseString(key)
	if err != nil {
		return nil, Origin{}, false
	}
	for layer := c; layer != nil; layer = layer.parent {
		if layer.values == nil {
			continue
		}
		if matches := expr.Get(layer.values); len(matches) > 0 {
			return matches[0], layer.origin, true
		}
	}
	return nil, Origin{}, false
}

// Error reports a malformed or missing configuration value. It is fatal
// to the single operation that needed the value; the tree transform
// surfaces it as a top-level failure.
type Error struct {
	Key    string
	Origin string
	Reason string
}

func (e *Error) Error() string {
	if e.Origin != "" {
		return fmt.Sprintf("config key %q (%s): %s", e.Key, e.Origin, e.Reason)
	}
	return fmt.Sprintf("config key %q: %s", e.Key, e.Reason)
}

// Get decodes a required key into T.
func Get[T any](c *Config, key string) (T, error) {
	v, ok, err := GetOpt[T](c, key)
	if err != nil {
		return v, err
	}
	if !ok {
		var zero T
		return zero, &Error{Key: key, Reason: "not found"}
	}
	return v, nil
}

// GetOpt decodes an optional key into T; ok is false when the key is
// absent, which is not an error.
func GetOpt[T any](c *Config, key string) (T, bool, error) {
	var zero T
	raw, origin, ok := c.lookupWithOrigin(key)
	if !ok {
		return zero, false, nil
	}
	v, err := decode[T](raw)
	if err != nil {
		return zero, true, &Error{Key: key, Origin: origin.TreePath, Reason: err.Error()}
	}
	return v, true, nil
}

// GetPath decodes an optional path-valued key, resolving relative
// values against the tree path of the layer that defined them.
func GetPath(c *Config, key string) (string, bool, error) {
	raw, origin, ok := c.lookupWithOrigin(key)
	if !ok {
		return "", false, nil
	}
	s, err := decode[string](raw)
	if err != nil {
		return "", true, &Error{Key: key, Origin: origin.TreePath, Reason: err.Error()}
	}
	return ResolvePath(origin, s), true, nil
}

// ResolvePath resolves a possibly relative tree path against an origin.
func ResolvePath(origin Origin, p string) string {
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(origin.TreePath, p)
}

func decode[T any](raw any) (T, error) {
	var zero T
	switch any(zero).(type) {
	case string:
		s, ok := raw.(string)
		if !ok {
			return zero, fmt.Errorf("expected string, got %T", raw)
		}
		return any(s).(T), nil
	case bool:
		switch v := raw.(type) {
		case bool:
			return any(v).(T), nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return zero, fmt.Errorf("expected bool, got %q", v)
			}
			return any(b).(T), nil
		}
		return zero, fmt.Errorf("expected bool, got %T", raw)
	case int:
		switch v := raw.(type) {
		case int:
			return any(v).(T), nil
		case int64:
			return any(int(v)).(T), nil
		case float64:
			return any(int(v)).(T), nil
		}
		return zero, fmt.Errorf("expected number, got %T", raw)
	case float64:
		switch v := raw.(type) {
		case float64:
			return any(v).(T), nil
		case int:
			return any(float64(v)).(T), nil
		case int64:
			return any(float64(v)).(T), nil
		}
		return zero, fmt.Errorf("expected number, got %T", raw)
	case []string:
		switch v := raw.(type) {
		case []string:
			return any(v).(T), nil
		case []any:
			out := make([]string, len(v))
			for i, item := range v {
				s, ok := item.(string)
				if !ok {
					return zero, fmt.Errorf("expected string element, got %T", item)
				}
				out[i] = s
			}
			return any(out).(T), nil
		}
		return zero, fmt.Errorf("expected sequence, got %T", raw)
	case []any:
		items, ok := raw.([]any)
		if !ok {
			return zero, fmt.Errorf("expected sequence, got %T", raw)
		}
		return any(items).(T), nil
	case map[string]any:
		m, ok := raw.(map[string]any)
		if !ok {
			return zero, fmt.Errorf("expected object, got %T", raw)
		}
		return any(m).(T), nil
	default:
		if v, ok := raw.(T); ok {
			return v, nil
		}
		return zero, fmt.Errorf("unsupported target type %T", zero)
	}
}
