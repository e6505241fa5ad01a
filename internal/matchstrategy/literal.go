package matchstrategy

import (
	"bytes"
	"strings"

	"github.com/Reino-Barone/GrepCompatible-sub001/internal/option"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/result"
)

// Literal matches a fixed (non-regex) pattern case-sensitively via a plain
// byte-substring scan, advancing past each match as spec.md §4.1 requires.
//
// TODO(perf): for patterns of length >= 2 over ASCII-safe input, a
// SIMD/byte-vector scan (as ripgrep's memchr-based searcher does) would beat
// bytes.Index here; correctness does not depend on it, so it is left as a
// follow-up rather than implemented speculatively.
type Literal struct {
	pattern []byte
}

// NewLiteral returns a Literal strategy for pattern.
func NewLiteral(pattern string) *Literal {
	return &Literal{pattern: []byte(pattern)}
}

func (l *Literal) CanApply(opts *option.Options) bool {
	return opts.FixedStrings && !opts.IgnoreCase || (!opts.ExtendedRegex && !containsRegexMeta(opts.Pattern))
}

func (l *Literal) FindMatches(line []byte, fileName string, lineNumber int) []result.Match {
	if len(l.pattern) == 0 {
		return nil
	}
	var matches []result.Match
	pos := 0
	for pos <= len(line) {
		idx := bytes.Index(line[pos:], l.pattern)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(l.pattern)
		matches = append(matches, result.Match{
			FileName:    fileName,
			LineNumber:  lineNumber,
			LineText:    string(line),
			Span:        result.Span{Start: start, End: end},
			MatchedText: string(line[start:end]),
		})
		pos = nextMatch(end, start)
	}
	return matches
}

// LiteralCI matches a fixed pattern case-insensitively.
//
// Folding is ASCII-only and byte-length preserving, the same trade-off
// readerGrep.Find documents in cmd/searcher/search/search_regex.go: "We also
// trade some correctness for perf by using a non-utf8 aware lowercase
// function." A byte-length-preserving fold keeps match offsets aligned with
// the original line; a full Unicode-simple-case-fold lowering can change a
// rune's byte length (e.g. İ → i̇) and would require re-deriving offsets
// from the folded buffer back into the original, which this engine does
// not attempt.
type LiteralCI struct {
	pattern []byte // already lowercased
}

// NewLiteralCI returns a LiteralCI strategy for pattern.
func NewLiteralCI(pattern string) *LiteralCI {
	return &LiteralCI{pattern: toLowerASCII([]byte(pattern))}
}

func (l *LiteralCI) CanApply(opts *option.Options) bool {
	return opts.FixedStrings && opts.IgnoreCase
}

func (l *LiteralCI) FindMatches(line []byte, fileName string, lineNumber int) []result.Match {
	if len(l.pattern) == 0 {
		return nil
	}
	lower := toLowerASCII(line)
	var matches []result.Match
	pos := 0
	for pos <= len(lower) {
		idx := bytes.Index(lower[pos:], l.pattern)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(l.pattern)
		matches = append(matches, result.Match{
			FileName:    fileName,
			LineNumber:  lineNumber,
			LineText:    string(line),
			Span:        result.Span{Start: start, End: end},
			MatchedText: string(line[start:end]),
		})
		pos = nextMatch(end, start)
	}
	return matches
}

// toLowerASCII lowercases the ASCII letters in b into a new slice, leaving
// every other byte (including multi-byte UTF-8 sequences) untouched so the
// result has the same length, and therefore the same byte offsets, as b.
func toLowerASCII(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

// containsRegexMeta reports whether pattern contains an ERE metacharacter,
// used by the Factory to decide between Literal and Regex when
// ExtendedRegex was not explicitly requested (spec.md §4.1 priority 3).
func containsRegexMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `.+*?[](){}|^$\`)
}
