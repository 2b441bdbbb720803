package ast

// ResolvedTarget describes where a reference ends up: the owning
// document's absolute tree path, the fragment id inside it (empty for
// whole-document targets), and the target's title text if it has one.
type ResolvedTarget struct {
	Path     string
	Fragment string
	Title    string
}

// Cursor is the tree-context view handed to resolver nodes and rewrite
// rules during a rewrite pass: the current document's position, the
// substitution value space, and target lookup across the whole tree.
// The concrete implementation lives in the doctree package.
type Cursor interface {
	// Path is the absolute tree path of the document being rewritten.
	Path() string

	// Resolve looks a key up in the reference value space: document
	// metadata, sibling navigation, then configuration. A missing key
	// yields ok=false, never an error.
	Resolve(key string) (value any, ok bool)

	// Target resolves a cross-document reference by absolute or
	// relative tree path plus optional fragment id.
	Target(path, fragment string) (ResolvedTarget, bool)

	// TargetByID resolves a unique id, searching the current document
	// first and then the rest of the tree in flattened order.
	TargetByID(id string) (ResolvedTarget, bool)

	// WithSubstitutions derives a cursor whose value space layers the
	// given entries over this cursor's. Used by scope nodes; the
	// overlay is invisible outside the subtree it is applied to.
	WithSubstitutions(local map[string]any) Cursor
}

// BlockResolver is a block placeholder carrying a deferred computation
// that produces the real block once a Cursor is available. The rewrite
// engine calls ResolveBlock exactly once and re-applies the full rule
// set to the result.
type BlockResolver interface {
	Block
	Unresolved
	ResolveBlock(c Cursor) Block
}

// SpanResolver is the inline counterpart of BlockResolver.
type SpanResolver interface {
	Span
	Unresolved
	ResolveSpan(c Cursor) Span
}

// TemplateResolver is the template counterpart of BlockResolver.
type TemplateResolver interface {
	TemplateSpan
	Unresolved
	ResolveTemplateSpan(c Cursor) TemplateSpan
}

// BlockResolverFunc adapts a closure into a BlockResolver.
type BlockResolverFunc struct {
	F      func(Cursor) Block
	Source string
}

// SpanResolverFunc adapts a closure into a SpanResolver.
type SpanResolverFunc struct {
	F      func(Cursor) Span
	Source string
}

func (*BlockResolverFunc) node()  {}
func (*BlockResolverFunc) block() {}
func (r *BlockResolverFunc) ResolveBlock(c Cursor) Block {
	return r.F(c)
}
func (r *BlockResolverFunc) UnresolvedMessage() string { return "unresolved block resolver" }
func (r *BlockResolverFunc) SourceText() string        { return r.Source }

func (*SpanResolverFunc) node() {}
func (*SpanResolverFunc) span() {}
func (r *SpanResolverFunc) ResolveSpan(c Cursor) Span {
	return r.F(c)
}
func (r *SpanResolverFunc) UnresolvedMessage() string { return "unresolved span resolver" }
func (r *SpanResolverFunc) SourceText() string        { return r.Source }

// BlockScope rewrites its content against a reference context extended
// with Local. The overlay is not visible outside the scope.
type BlockScope struct {
	Content []Block
	Local   map[string]any
}

// SpanScope is the inline counterpart of BlockScope.
type SpanScope struct {
	Content []Span
	Local   map[string]any
}

// TemplateScope is the template counterpart of BlockScope; loop and
// conditional directive bodies expand into these.
type TemplateScope struct {
	Content []TemplateSpan
	Local   map[string]any
}

func (*BlockScope) node()        {}
func (*BlockScope) block()       {}
func (*SpanScope) node()         {}
func (*SpanScope) span()         {}
func (*TemplateScope) node()     {}
func (*TemplateScope) templateSpan() {}
