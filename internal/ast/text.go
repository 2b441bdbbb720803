package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ExtractText returns the concatenated plain text of a span list,
// descending into containers and ignoring non-text structure.
func ExtractText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		writeText(&b, s)
	}
	return b.String()
}

func writeText(b *strings.Builder, s Span) {
	switch t := s.(type) {
	case *Text:
		b.WriteString(t.Content)
	case *InlineCode:
		b.WriteString(t.Text)
	case *Emphasized:
		b.WriteString(ExtractText(t.Content))
	case *Strong:
		b.WriteString(ExtractText(t.Content))
	case *SpanSequence:
		b.WriteString(ExtractText(t.Content))
	case *SpanLink:
		b.WriteString(ExtractText(t.Content))
	case *LinkIDReference:
		b.WriteString(ExtractText(t.Content))
	case *PathReference:
		b.WriteString(ExtractText(t.Content))
	case *AnonymousReference:
		b.WriteString(ExtractText(t.Content))
	}
}

// FormatValue renders a substitution value as literal text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		// Config numbers arrive as float64; print integers without a
		// fractional part.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// MergeTemplateText joins adjacent literal text spans and flattens
// sequence wrappers, producing the minimal span list for rendering.
func MergeTemplateText(spans []TemplateSpan) []TemplateSpan {
	flat := flattenTemplateSpans(spans)
	out := make([]TemplateSpan, 0, len(flat))
	for _, s := range flat {
		if t, ok := s.(*TemplateText); ok {
			if t.Text == "" {
				continue
			}
			if len(out) > 0 {
				if prev, ok := out[len(out)-1].(*TemplateText); ok {
					out[len(out)-1] = &TemplateText{Text: prev.Text + t.Text}
					continue
				}
			}
		}
		out = append(out, s)
	}
	return out
}

func flattenTemplateSpans(spans []TemplateSpan) []TemplateSpan {
	var out []TemplateSpan
	for _, s := range spans {
		if seq, ok := s.(*TemplateSpanSequence); ok {
			out = append(out, flattenTemplateSpans(seq.Content)...)
			continue
		}
		out = append(out, s)
	}
	return out
}

// RecordIndentation scans a merged template span list and records, on
// each embedded root, the indentation of the line it is inserted on, so
// renderers reproduce consistent indentation for multi-line content.
func RecordIndentation(spans []TemplateSpan) []TemplateSpan {
	out := make([]TemplateSpan, len(spans))
	copy(out, spans)
	for i, s := range out {
		root, ok := s.(*EmbeddedRoot)
		if !ok || i == 0 {
			continue
		}
		prev, ok := out[i-1].(*TemplateText)
		if !ok {
			continue
		}
		if n, ok := trailingIndent(prev.Text); ok {
			out[i] = &EmbeddedRoot{Content: root.Content, Indent: n}
		}
	}
	return out
}

func trailingIndent(s string) (int, bool) {
	n := 0
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ' ' || s[i] == '\t' {
			n++
			continue
		}
		if s[i] == '\n' {
			return n, n > 0
		}
		return 0, false
	}
	return 0, false
}
