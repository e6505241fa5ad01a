// Package matchstrategy implements the MatchStrategy variants from spec.md
// §4.1: Literal, LiteralCI, Regex, and the WholeWord wrapper, plus the
// Factory that selects exactly one of them per search.
//
// The split between a cheap literal scan and a compiled regexp engine
// mirrors readerGrep in cmd/searcher/search/search_regex.go: most lines in
// most files do not match, so the literal strategies avoid the regexp
// engine entirely, and Regex itself still benefits from the same
// "advance past the previous match" loop shape.
package matchstrategy

import (
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/option"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/result"
)

// Strategy finds every non-overlapping match of a compiled pattern within a
// single line. Implementations are immutable after construction and safe to
// share across worker goroutines (mirrors readerGrep.Copy: the teacher
// copies a readerGrep per worker only because it carries a mutable
// transformBuf; our strategies carry no such scratch buffer and therefore
// need no per-worker copy).
type Strategy interface {
	// FindMatches returns every match in line, in ascending span order.
	FindMatches(line []byte, fileName string, lineNumber int) []result.Match

	// CanApply reports whether this strategy is a valid choice for opts. It
	// exists so the Factory's selection can be asserted in tests; dispatch
	// itself does not call it.
	CanApply(opts *option.Options) bool
}

// nextMatch advances the scan cursor past a match's end, or at least one
// byte forward for a zero-width match, per spec.md §4.1.
func nextMatch(end, start int) int {
	if end > start {
		return end
	}
	return start + 1
}
