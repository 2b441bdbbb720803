package ast

// Text is a plain text span.
type Text struct {
	Content string
	Opt     Options
}

// Emphasized is inline emphasis.
type Emphasized struct {
	Content []Span
	Opt     Options
}

// Strong is strong inline emphasis.
type Strong struct {
	Content []Span
	Opt     Options
}

// InlineCode is an inline literal span.
type InlineCode struct {
	Text string
	Opt  Options
}

// SpanSequence groups spans without a rendered wrapper.
type SpanSequence struct {
	Content []Span
	Opt     Options
}

// SpanLink is a resolved link: either external (absolute URL) or
// internal (URL is a path relative to the rendered document, produced
// by reference resolution).
type SpanLink struct {
	Content []Span
	URL     string
	Title   string
	Opt     Options
}

// Image is an inline image.
type Image struct {
	Alt   string
	URL   string
	Title string
	Opt   Options
}

// FootnoteLink is a resolved reference to a footnote, rendered as its
// display label linking to the footnote body.
type FootnoteLink struct {
	Ref   string // id of the footnote body
	Label string // display label, e.g. "2" or "**"
}

// CitationLink is a resolved reference to a citation.
type CitationLink struct {
	Ref   string
	Label string
}

// LinkIDReference is an unresolved reference by id: `[text][id]` or
// `[id]`. Resolution looks the id up among the document's link
// definitions and unique targets, then tree-wide.
type LinkIDReference struct {
	Content []Span
	ID      string
	Source  string
}

// AnonymousReference is an unresolved reference consuming the next
// anonymous link definition in document order.
type AnonymousReference struct {
	Content []Span
	Source  string
}

// PathReference is an unresolved cross-document reference by tree path
// and optional fragment id.
type PathReference struct {
	Content  []Span
	Path     string
	Fragment string
	Source   string
}

// FootnoteReference is an unresolved reference to a footnote by label.
type FootnoteReference struct {
	Label  FootnoteLabel
	Source string
}

// CitationReference is an unresolved reference to a citation.
type CitationReference struct {
	Label  string
	Source string
}

// InvalidSpan replaces an inline element that could not be resolved.
type InvalidSpan struct {
	Message  string
	Fallback string
}

func (*Text) node()               {}
func (*Text) span()               {}
func (*Emphasized) node()         {}
func (*Emphasized) span()         {}
func (*Strong) node()             {}
func (*Strong) span()             {}
func (*InlineCode) node()         {}
func (*InlineCode) span()         {}
func (*SpanSequence) node()       {}
func (*SpanSequence) span()       {}
func (*SpanLink) node()           {}
func (*SpanLink) span()           {}
func (*Image) node()              {}
func (*Image) span()              {}
func (*FootnoteLink) node()       {}
func (*FootnoteLink) span()       {}
func (*CitationLink) node()       {}
func (*CitationLink) span()       {}
func (*LinkIDReference) node()    {}
func (*LinkIDReference) span()    {}
func (*AnonymousReference) node() {}
func (*AnonymousReference) span() {}
func (*PathReference) node()      {}
func (*PathReference) span()      {}
func (*FootnoteReference) node()  {}
func (*FootnoteReference) span()  {}
func (*CitationReference) node()  {}
func (*CitationReference) span()  {}
func (*InvalidSpan) node()        {}
func (*InvalidSpan) span()        {}

func (r *LinkIDReference) UnresolvedMessage() string {
	return "unresolved link reference: " + r.ID
}
func (r *LinkIDReference) SourceText() string { return r.Source }

func (r *AnonymousReference) UnresolvedMessage() string {
	return "too many anonymous link references"
}
func (r *AnonymousReference) SourceText() string { return r.Source }

func (r *PathReference) UnresolvedMessage() string {
	return "unresolved path reference: " + r.Path
}
func (r *PathReference) SourceText() string { return r.Source }

func (r *FootnoteReference) UnresolvedMessage() string {
	return "unresolved footnote reference"
}
func (r *FootnoteReference) SourceText() string { return r.Source }

func (r *CitationReference) UnresolvedMessage() string {
	return "unresolved citation reference: " + r.Label
}
func (r *CitationReference) SourceText() string { return r.Source }
