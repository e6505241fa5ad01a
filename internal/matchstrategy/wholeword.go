package matchstrategy

import (
	"unicode"
	"unicode/utf8"

	"github.com/Reino-Barone/GrepCompatible-sub001/internal/option"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/result"
)

// WholeWord wraps another Strategy and keeps only matches whose boundaries
// are not adjacent to a word rune, per spec.md §4.1. Line boundaries count
// as non-word, so a match at position 0 or at end-of-line always qualifies
// on that side.
type WholeWord struct {
	inner Strategy
}

// NewWholeWord wraps inner in a word-boundary filter.
func NewWholeWord(inner Strategy) *WholeWord {
	return &WholeWord{inner: inner}
}

func (w *WholeWord) CanApply(opts *option.Options) bool {
	return opts.WholeWord && w.inner.CanApply(opts)
}

func (w *WholeWord) FindMatches(line []byte, fileName string, lineNumber int) []result.Match {
	candidates := w.inner.FindMatches(line, fileName, lineNumber)
	if len(candidates) == 0 {
		return nil
	}
	kept := candidates[:0]
	for _, m := range candidates {
		if isWordBoundaryMatch(line, m.Span.Start, m.Span.End) {
			kept = append(kept, m)
		}
	}
	return kept
}

// isWordBoundaryMatch reports whether neither the rune immediately before
// start nor the rune at end is a word rune ([A-Za-z0-9_], generalized to
// Unicode letters/digits).
func isWordBoundaryMatch(line []byte, start, end int) bool {
	if before, ok := runeBefore(line, start); ok && isWordRune(before) {
		return false
	}
	if after, ok := runeAt(line, end); ok && isWordRune(after) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func runeAt(line []byte, pos int) (rune, bool) {
	if pos < 0 || pos >= len(line) {
		return 0, false
	}
	r, _ := utf8.DecodeRune(line[pos:])
	return r, true
}

func runeBefore(line []byte, pos int) (rune, bool) {
	if pos <= 0 || pos > len(line) {
		return 0, false
	}
	r, _ := utf8.DecodeLastRune(line[:pos])
	return r, true
}
