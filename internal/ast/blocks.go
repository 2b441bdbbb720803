package ast

// RootContent is the top-level block sequence of a document.
type RootContent struct {
	Blocks []Block
}

// Paragraph is a block of inline content.
type Paragraph struct {
	Content []Span
	Opt     Options
}

// Header is a section heading with an assigned level. Headers produced
// from decorated (underlined) headings receive their level during target
// collection; see DecoratedHeader.
type Header struct {
	Level   int
	Content []Span
	Opt     Options
}

// DecoratedHeader is a heading whose level is not yet known: underline
// style decides it, in order of first appearance in the document. It is
// unresolved until target collection replaces it with a Header.
type DecoratedHeader struct {
	Decoration string // the underline character sequence, e.g. "===" or "---"
	Content    []Span
	Source     string
}

// CodeBlock is a fenced or indented literal block.
type CodeBlock struct {
	Language string
	Text     string
	Opt      Options
}

// QuotedBlock is a block quote.
type QuotedBlock struct {
	Content []Block
	Opt     Options
}

// BulletList is an unordered list; each item is a block sequence.
type BulletList struct {
	Items [][]Block
	Opt   Options
}

// EnumList is an ordered list starting at Start.
type EnumList struct {
	Start int
	Items [][]Block
	Opt   Options
}

// Table is a simple table with an optional header row.
type Table struct {
	Head []TableRow
	Body []TableRow
	Opt  Options
}

type TableRow struct {
	Cells []TableCell
}

type TableCell struct {
	Content []Block
}

// BlockSequence groups blocks without any rendered wrapper of its own.
type BlockSequence struct {
	Content []Block
	Opt     Options
}

// Rule is a horizontal rule.
type Rule struct {
	Opt Options
}

// FootnoteDefinition is the raw form of a footnote before target
// collection assigns its display label and id.
type FootnoteDefinition struct {
	Label   FootnoteLabel
	Content []Block
	Source  string
}

// Footnote is a fully resolved footnote body carrying the display label
// references render with.
type Footnote struct {
	Label   string
	Content []Block
	Opt     Options
}

// Citation is a citation body targeted by citation references.
type Citation struct {
	Label   string
	Content []Block
	Opt     Options
}

// LinkDefinition maps an id (or, when ID is empty, an anonymous
// position) to an external url. Definitions are consumed during target
// collection and removed from rendered output.
type LinkDefinition struct {
	ID     string
	URL    string
	Title  string
	Source string
}

// LinkAlias defers to another link target by id instead of carrying its
// own url. Chains of aliases are followed during target collection.
type LinkAlias struct {
	ID     string
	Target string
	Source string
}

// InternalLinkTarget is an invisible anchor: an id with no content of
// its own.
type InternalLinkTarget struct {
	Opt Options
}

// InvalidBlock replaces a block-level element that could not be
// resolved. Fallback carries the original source fragment so renderers
// can show what the author wrote.
type InvalidBlock struct {
	Message  string
	Fallback string
}

func (*RootContent) node()        {}
func (*RootContent) block()       {}
func (*Paragraph) node()          {}
func (*Paragraph) block()         {}
func (*Header) node()             {}
func (*Header) block()            {}
func (*DecoratedHeader) node()    {}
func (*DecoratedHeader) block()   {}
func (*CodeBlock) node()          {}
func (*CodeBlock) block()         {}
func (*QuotedBlock) node()        {}
func (*QuotedBlock) block()       {}
func (*BulletList) node()         {}
func (*BulletList) block()        {}
func (*EnumList) node()           {}
func (*EnumList) block()          {}
func (*Table) node()              {}
func (*Table) block()             {}
func (*BlockSequence) node()      {}
func (*BlockSequence) block()     {}
func (*Rule) node()               {}
func (*Rule) block()              {}
func (*FootnoteDefinition) node() {}
func (*FootnoteDefinition) block() {
}
func (*Footnote) node()            {}
func (*Footnote) block()           {}
func (*Citation) node()            {}
func (*Citation) block()           {}
func (*LinkDefinition) node()      {}
func (*LinkDefinition) block()     {}
func (*LinkAlias) node()           {}
func (*LinkAlias) block()          {}
func (*InternalLinkTarget) node()  {}
func (*InternalLinkTarget) block() {}
func (*InternalLinkTarget) span()  {}
func (*InvalidBlock) node()        {}
func (*InvalidBlock) block()       {}

func (h *DecoratedHeader) UnresolvedMessage() string {
	return "unresolved decorated header"
}
func (h *DecoratedHeader) SourceText() string { return h.Source }

func (f *FootnoteDefinition) UnresolvedMessage() string {
	return "unresolved footnote definition"
}
func (f *FootnoteDefinition) SourceText() string { return f.Source }

func (l *LinkDefinition) UnresolvedMessage() string {
	return "unresolved link definition: " + l.ID
}
func (l *LinkDefinition) SourceText() string { return l.Source }

func (l *LinkAlias) UnresolvedMessage() string {
	return "unresolved link alias: " + l.ID
}
func (l *LinkAlias) SourceText() string { return l.Source }

// FootnoteLabel is the label given to a footnote definition or
// reference: explicit (numeric or named) or automatic (number/symbol
// assigned in document order).
type FootnoteLabel interface {
	footnoteLabel()
}

// Autonumber requests the next free footnote number.
type Autonumber struct{}

// Autosymbol requests the next symbol from the footnote symbol alphabet.
type Autosymbol struct{}

// AutonumberLabel requests an automatic number that is also addressable
// by name.
type AutonumberLabel struct {
	Label string
}

// NumericLabel is an explicit footnote number.
type NumericLabel struct {
	Number int
}

func (Autonumber) footnoteLabel()      {}
func (Autosymbol) footnoteLabel()      {}
func (AutonumberLabel) footnoteLabel() {}
func (NumericLabel) footnoteLabel()    {}
