// Package result holds the immutable value types produced by a search: the
// individual line matches, their surrounding context, and the aggregated
// result of searching an entire input set.
package result

import "time"

// Span is a half-open [Start, End) range into a line's text. Start and End
// are byte offsets into the UTF-8 text, not character (rune) indices.
type Span struct {
	Start int
	End   int
}

// Match is a single matching occurrence within one line of one file. It is
// immutable once produced.
type Match struct {
	FileName   string
	LineNumber int // 1-based
	LineText   string
	Span       Span
	MatchedText string
}

// ContextLine is one line of before/after context adjacent to a Match.
type ContextLine struct {
	FileName   string
	LineNumber int
	Text       string
	IsMatch    bool
}

// ContextualMatch bundles a Match with its bounded before/after context.
type ContextualMatch struct {
	Match  Match
	Before []ContextLine
	After  []ContextLine
}

// FileResult is the outcome of scanning a single file.
//
// Invariant: Error != "" implies TotalMatches == 0 and len(Matches) == 0.
type FileResult struct {
	FileName          string
	Matches           []Match
	TotalMatches      int
	Error             string
	ContextualMatches []ContextualMatch
	// BinaryMatch is set when the file was treated as binary and a match
	// was found; no line bodies are emitted for a binary file.
	BinaryMatch bool
}

// SearchResult is the aggregated outcome of a whole search, in path order.
//
// Invariant: TotalMatches == sum of FileResults[i].TotalMatches, and
// TotalFiles == len(FileResults).
type SearchResult struct {
	FileResults  []FileResult
	TotalMatches int
	TotalFiles   int
	Elapsed      time.Duration
}
