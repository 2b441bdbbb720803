package ast

// ForDirective repeats its template body once per element of the keyed
// value. Each iteration expands into a scope binding the element under
// "_"; object elements additionally expose their own keys.
type ForDirective struct {
	Key    string
	Body   []TemplateSpan
	Source string
}

func (*ForDirective) node()         {}
func (*ForDirective) templateSpan() {}

func (d *ForDirective) UnresolvedMessage() string {
	return "unresolved @:for directive: " + d.Key
}

func (d *ForDirective) SourceText() string { return d.Source }

// ResolveTemplateSpan expands the loop. A missing key or an empty
// collection yields empty output; a scalar value iterates once.
func (d *ForDirective) ResolveTemplateSpan(c Cursor) TemplateSpan {
	val, ok := c.Resolve(d.Key)
	if !ok || val == nil {
		return &TemplateText{}
	}
	switch t := val.(type) {
	case []any:
		if len(t) == 0 {
			return &TemplateText{}
		}
		scopes := make([]TemplateSpan, 0, len(t))
		for _, e := range t {
			scopes = append(scopes, &TemplateScope{Content: d.Body, Local: elementLocals(e)})
		}
		return &TemplateSpanSequence{Content: scopes}
	case bool:
		if !t {
			return &TemplateText{}
		}
		return &TemplateScope{Content: d.Body, Local: elementLocals(t)}
	default:
		return &TemplateScope{Content: d.Body, Local: elementLocals(t)}
	}
}

func elementLocals(e any) map[string]any {
	locals := map[string]any{"_": e}
	if m, ok := e.(map[string]any); ok {
		for k, v := range m {
			locals[k] = v
		}
	}
	return locals
}

// IfDirective emits its template body once when the keyed value is
// present and truthy; absent or falsy values suppress it entirely.
type IfDirective struct {
	Key    string
	Body   []TemplateSpan
	Source string
}

func (*IfDirective) node()         {}
func (*IfDirective) templateSpan() {}

func (d *IfDirective) UnresolvedMessage() string {
	return "unresolved @:if directive: " + d.Key
}

func (d *IfDirective) SourceText() string { return d.Source }

func (d *IfDirective) ResolveTemplateSpan(c Cursor) TemplateSpan {
	val, ok := c.Resolve(d.Key)
	if !ok || !truthy(val) {
		return &TemplateText{}
	}
	return &TemplateScope{Content: d.Body, Local: map[string]any{"_": val}}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "false"
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
