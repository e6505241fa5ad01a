package matchstrategy

import (
	"github.com/grafana/regexp"

	"github.com/Reino-Barone/GrepCompatible-sub001/internal/grepcerrors"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/option"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/result"
)

// Regex matches a compiled POSIX-ERE-flavoured pattern. It uses
// github.com/grafana/regexp, the drop-in stdlib-regexp fork used throughout
// cmd/searcher, which offers the same API with a faster engine for the
// common case of short, literal-heavy patterns.
type Regex struct {
	re *regexp.Regexp
}

// NewRegex compiles pattern and returns a Regex strategy.
//
// The expression is wrapped in "(?m:...)" so that ^ and $ anchor to logical
// line boundaries, the same compile-time decision cmd/searcher/search/search_regex.go
// makes in compile() — even though this engine already calls FindMatches
// one line at a time, keeping the multiline flag means a pattern authored
// for a multi-line regex engine still anchors the way its author expects.
func NewRegex(pattern string, ignoreCase bool) (*Regex, error) {
	if pattern == "" {
		return nil, grepcerrors.NewPatternError(errEmptyPattern)
	}
	expr := "(?m:" + pattern + ")"
	if ignoreCase {
		expr = "(?i:" + expr + ")"
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, grepcerrors.NewPatternError(err)
	}
	return &Regex{re: re}, nil
}

func (r *Regex) CanApply(opts *option.Options) bool {
	return opts.ExtendedRegex || containsRegexMeta(opts.Pattern)
}

func (r *Regex) FindMatches(line []byte, fileName string, lineNumber int) []result.Match {
	locs := r.re.FindAllIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	matches := make([]result.Match, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		matches = append(matches, result.Match{
			FileName:    fileName,
			LineNumber:  lineNumber,
			LineText:    string(line),
			Span:        result.Span{Start: start, End: end},
			MatchedText: string(line[start:end]),
		})
	}
	return matches
}

type emptyPatternError struct{}

func (emptyPatternError) Error() string { return "pattern must not be empty" }

var errEmptyPattern = emptyPatternError{}
