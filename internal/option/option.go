// Package option provides a read-only, typed view over a parsed command
// line: Options is constructed once by cmd/grepc and handed down through the
// engine and formatter. No field is ever mutated after construction, and no
// mutable state is exposed to callers — OptionContext values are safe to
// share freely across worker goroutines.
package option

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Options is the OptionContext described by the specification: a value-typed,
// explicit field struct instead of a dynamic option bag. Unknown options are
// rejected at parse time by the Cobra command in cmd/grepc, never here.
type Options struct {
	Pattern string
	Files   []string // may include "-" for stdin

	IgnoreCase        bool
	InvertMatch       bool
	LineNumber        bool
	CountOnly         bool
	FilenameOnly      bool
	SuppressFilename  bool
	ForceFilename     bool
	Silent            bool
	ExtendedRegex     bool
	FixedStrings      bool
	WholeWord         bool
	Recursive         bool

	IncludeGlobs []string
	ExcludeGlobs []string

	MaxCount      int // 0 means unbounded
	BeforeContext int
	AfterContext  int
}

// New validates raw, already-parsed flag values and returns an immutable
// Options. Context, when >= 0, overrides BeforeContext/AfterContext per
// spec.md §3 ("context=N overrides before/after when set").
func New(pattern string, files []string, ignoreCase, invertMatch, lineNumber, countOnly, filenameOnly, suppressFilename, forceFilename, silent, extendedRegex, fixedStrings, wholeWord, recursive bool, includeGlobs, excludeGlobs []string, maxCount, beforeContext, afterContext, context int) (*Options, error) {
	if pattern == "" && !fixedStrings {
		return nil, errors.New("pattern must not be empty")
	}
	if maxCount < 0 {
		return nil, errors.Newf("max-count must be >= 1, got %d", maxCount)
	}
	if beforeContext < 0 || afterContext < 0 || context < -1 {
		return nil, errors.New("context counts must be >= 0")
	}

	if context >= 0 {
		beforeContext = context
		afterContext = context
	}

	return &Options{
		Pattern:          pattern,
		Files:            files,
		IgnoreCase:       ignoreCase,
		InvertMatch:      invertMatch,
		LineNumber:       lineNumber,
		CountOnly:        countOnly,
		FilenameOnly:     filenameOnly,
		SuppressFilename: suppressFilename,
		ForceFilename:    forceFilename,
		Silent:           silent,
		ExtendedRegex:    extendedRegex,
		FixedStrings:     fixedStrings,
		WholeWord:        wholeWord,
		Recursive:        recursive,
		IncludeGlobs:     includeGlobs,
		ExcludeGlobs:     excludeGlobs,
		MaxCount:         maxCount,
		BeforeContext:    beforeContext,
		AfterContext:     afterContext,
	}, nil
}

// EffectiveFiles returns Files, or the stdin sentinel alone when the
// argument list is empty, per spec.md §4.2.
func (o *Options) EffectiveFiles() []string {
	if len(o.Files) == 0 {
		return []string{"-"}
	}
	return o.Files
}

// BuildsContext reports whether context structures (ring buffers,
// ContextualMatch) should be maintained at all for this search.
func (o *Options) BuildsContext() bool {
	if o.CountOnly || o.FilenameOnly || o.Silent {
		return false
	}
	return o.BeforeContext > 0 || o.AfterContext > 0
}

// Parallelism returns the GREPC_WORKERS override, or 0 if unset or invalid
// (0 means "let tuner.OptimalParallelism decide").
func (o *Options) Parallelism() int {
	v := os.Getenv("GREPC_WORKERS")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
