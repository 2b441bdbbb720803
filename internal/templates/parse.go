// Package templates implements the template side of the pipeline:
// scanning template source into a span list, selecting the template
// that applies to a document, and rewriting a document through it.
package templates

import (
	"fmt"
	"strings"

	"github.com/docweave/docweave/internal/ast"
)

const (
	varStart     = "${"
	varEnd       = "}"
	directiveEnd = "@:@"
)

// Parse scans template source into a span list. Literal text is kept
// verbatim, `${key}` becomes a variable node, and `@:for(key)` /
// `@:if(key)` directives become resolver nodes wrapping their body up
// to the matching `@:@`.
func Parse(src string) ([]ast.TemplateSpan, error) {
	s := &scanner{src: src}
	spans, err := s.scanBody(false)
	if err != nil {
		return nil, err
	}
	return spans, nil
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) scanBody(inDirective bool) ([]ast.TemplateSpan, error) {
	var out []ast.TemplateSpan
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			out = append(out, &ast.TemplateText{Text: lit.String()})
			lit.Reset()
		}
	}

	for s.pos < len(s.src) {
		rest := s.src[s.pos:]
		switch {
		case strings.HasPrefix(rest, varStart):
			end := strings.Index(rest, varEnd)
			if end < 0 {
				return nil, fmt.Errorf("template: unclosed variable at offset %d", s.pos)
			}
			flush()
			out = append(out, &ast.TemplateVariable{
				Key:    strings.TrimSpace(rest[len(varStart):end]),
				Source: rest[:end+1],
			})
			s.pos += end + 1

		case strings.HasPrefix(rest, directiveEnd):
			if !inDirective {
				return nil, fmt.Errorf("template: unexpected %q at offset %d", directiveEnd, s.pos)
			}
			flush()
			s.pos += len(directiveEnd)
			s.skipNewline()
			return out, nil

		case strings.HasPrefix(rest, "@:for(") || strings.HasPrefix(rest, "@:if("):
			name := "for"
			if strings.HasPrefix(rest, "@:if(") {
				name = "if"
			}
			closing := strings.Index(rest, ")")
			if closing < 0 {
				return nil, fmt.Errorf("template: unclosed @:%s at offset %d", name, s.pos)
			}
			header := rest[:closing+1]
			key := strings.TrimSpace(rest[len("@:"+name+"("):closing])
			if key == "" {
				return nil, fmt.Errorf("template: empty @:%s key at offset %d", name, s.pos)
			}
			s.pos += closing + 1
			s.skipNewline()
			body, err := s.scanBody(true)
			if err != nil {
				return nil, err
			}
			flush()
			if name == "for" {
				out = append(out, &ast.ForDirective{Key: key, Body: body, Source: header})
			} else {
				out = append(out, &ast.IfDirective{Key: key, Body: body, Source: header})
			}

		default:
			lit.WriteByte(s.src[s.pos])
			s.pos++
		}
	}

	if inDirective {
		return nil, fmt.Errorf("template: missing %q before end of input", directiveEnd)
	}
	flush()
	return out, nil
}

// skipNewline consumes one line break after a directive marker so the
// marker's own line leaves no blank output behind.
func (s *scanner) skipNewline() {
	if s.pos < len(s.src) && s.src[s.pos] == '\n' {
		s.pos++
	}
}
