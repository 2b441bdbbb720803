package ast

// TemplateRoot holds a rewritten template body as document content.
// When a template collapses to a single embedded document root the
// pipeline unwraps it instead; see the templates package.
type TemplateRoot struct {
	Content []TemplateSpan
}

// TemplateText is literal template output.
type TemplateText struct {
	Text string
}

// TemplateSpanSequence groups template spans without a wrapper; scope
// and directive expansion produce these and the post-rewrite merge
// flattens them.
type TemplateSpanSequence struct {
	Content []TemplateSpan
}

// EmbeddedRoot embeds rendered document content inside a template.
// Indent records the column of the insertion point so renderers can
// indent the embedded blocks consistently.
type EmbeddedRoot struct {
	Content []Block
	Indent  int
}

// TemplateVariable is an unresolved `${key}` substitution. A missing
// key resolves to empty output; templates tolerate optional context.
type TemplateVariable struct {
	Key    string
	Source string
}

// InvalidTemplateSpan replaces a template element that could not be
// resolved.
type InvalidTemplateSpan struct {
	Message  string
	Fallback string
}

func (*TemplateRoot) node()          {}
func (*TemplateRoot) block()         {}
func (*TemplateText) node()          {}
func (*TemplateText) templateSpan()  {}
func (*TemplateSpanSequence) node()  {}
func (*TemplateSpanSequence) templateSpan() {
}
func (*EmbeddedRoot) node()         {}
func (*EmbeddedRoot) templateSpan() {}
func (*TemplateVariable) node()     {}
func (*TemplateVariable) templateSpan() {
}
func (*InvalidTemplateSpan) node() {}
func (*InvalidTemplateSpan) templateSpan() {
}

func (v *TemplateVariable) UnresolvedMessage() string {
	return "unresolved template variable: " + v.Key
}
func (v *TemplateVariable) SourceText() string { return v.Source }

// ResolveTemplateSpan substitutes the variable's value: strings and
// scalars become literal text, document content embeds as a root, and
// a missing key becomes empty output.
func (v *TemplateVariable) ResolveTemplateSpan(c Cursor) TemplateSpan {
	val, ok := c.Resolve(v.Key)
	if !ok || val == nil {
		return &TemplateText{}
	}
	switch t := val.(type) {
	case string:
		return &TemplateText{Text: t}
	case []Block:
		return &EmbeddedRoot{Content: t}
	case []Span:
		return &EmbeddedRoot{Content: []Block{&Paragraph{Content: t}}}
	case TemplateSpan:
		return t
	default:
		return &TemplateText{Text: FormatValue(t)}
	}
}
