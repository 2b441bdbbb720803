package targets

import "strings"

// footnoteSymbols is the fixed alphabet cycled through by auto-symbol
// footnotes. When exhausted the symbol doubles, then triples: the 11th
// footnote gets "**", the 21st "***".
var footnoteSymbols = []string{"*", "†", "‡", "§", "¶", "#", "♠", "♥", "♦", "♣"}

// symbolGenerator yields footnote symbols in document order.
type symbolGenerator struct {
	n int
}

func (g *symbolGenerator) next() string {
	sym := footnoteSymbols[g.n%len(footnoteSymbols)]
	repeat := g.n/len(footnoteSymbols) + 1
	g.n++
	return strings.Repeat(sym, repeat)
}

// numberGenerator yields footnote numbers in document order, skipping
// numbers already claimed by explicit numeric labels.
type numberGenerator struct {
	used map[int]bool
	n    int
}

func newNumberGenerator(used map[int]bool) *numberGenerator {
	return &numberGenerator{used: used, n: 0}
}

func (g *numberGenerator) next() int {
	for {
		g.n++
		if !g.used[g.n] {
			return g.n
		}
	}
}
