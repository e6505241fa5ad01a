package matchstrategy

import (
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/grepcerrors"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/option"
)

// Select chooses exactly one Strategy for opts, following the priority
// order in spec.md §4.1:
//
//  1. fixed_strings && ignore_case -> LiteralCI
//  2. fixed_strings                -> Literal
//  3. extended_regex or pattern contains a regex metacharacter -> Regex
//  4. otherwise                    -> Literal, treating pattern as plain text
//
// If whole_word is set, the chosen strategy is wrapped in WholeWord.
//
// Compilation happens once per search, mirroring compile() in
// cmd/searcher/search/search_regex.go, and is reused (read-only) across all
// worker goroutines.
func Select(opts *option.Options) (Strategy, error) {
	if opts.Pattern == "" {
		return nil, grepcerrors.NewUserError("pattern must not be empty")
	}

	var chosen Strategy
	switch {
	case opts.FixedStrings && opts.IgnoreCase:
		chosen = NewLiteralCI(opts.Pattern)
	case opts.FixedStrings:
		chosen = NewLiteral(opts.Pattern)
	case opts.ExtendedRegex || containsRegexMeta(opts.Pattern):
		re, err := NewRegex(opts.Pattern, opts.IgnoreCase)
		if err != nil {
			return nil, err
		}
		chosen = re
	default:
		if opts.IgnoreCase {
			chosen = NewLiteralCI(opts.Pattern)
		} else {
			chosen = NewLiteral(opts.Pattern)
		}
	}

	if opts.WholeWord {
		chosen = NewWholeWord(chosen)
	}
	return chosen, nil
}
