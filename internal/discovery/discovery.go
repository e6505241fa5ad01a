// Package discovery expands the file/directory/glob arguments from
// OptionContext into an ordered sequence of paths to scan, per spec.md §4.2.
//
// Directory walking is depth-first with lexicographic ordering at each
// level and never follows symlinks, matching the non-goal in spec.md §1.
// Glob matching is delegated to github.com/bmatcuk/doublestar/v4, the real
// third-party glob library this pack reaches for elsewhere
// (standardbeagle-lci's file watcher, ginkida-gooner) rather than
// hand-rolling filepath.Match's more limited semantics.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"github.com/Reino-Barone/GrepCompatible-sub001/internal/option"
)

// StdinSentinel is the file argument meaning "read from standard input".
const StdinSentinel = "-"

// Path is one entry of the ordered path stream: either a real file path, or
// the stdin sentinel.
type Path struct {
	Name    string
	IsStdin bool
}

// NonFatalError is a discovery-time problem with a single argument (missing
// glob match, non-recursive directory) that does not abort the whole
// search, but should raise the final exit code per spec.md §4.2/§7.
type NonFatalError struct {
	Arg string
	Err error
}

func (e *NonFatalError) Error() string { return e.Err.Error() }
func (e *NonFatalError) Unwrap() error { return e.Err }

// Cancel is the single cooperative cancellation token shared between
// discovery and the engine (spec.md §5). It is a thin wrapper over a
// channel so firing it is idempotent (closing a closed channel panics;
// Cancel guards against that).
type Cancel struct {
	ch   chan struct{}
	once sync.Once
}

// NewCancel returns a fresh, un-fired Cancel token.
func NewCancel() *Cancel {
	return &Cancel{ch: make(chan struct{})}
}

// Fire requests cancellation. Safe to call more than once (Testable
// Property 7: cancellation idempotence).
func (c *Cancel) Fire() {
	c.once.Do(func() { close(c.ch) })
}

// Done returns a channel that is closed once Fire has been called.
func (c *Cancel) Done() <-chan struct{} { return c.ch }

// Fired reports whether Fire has already been called.
func (c *Cancel) Fired() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}

// Expand walks opts' file arguments and returns the ordered path stream
// along with any non-fatal errors encountered (bad globs, non-recursive
// directories). The full slice is materialized eagerly rather than
// streamed lazily: this implementation searches an already-expanded file
// set known to the dispatcher up front.
func Expand(opts *option.Options, cancel *Cancel) ([]Path, []NonFatalError) {
	var (
		paths []Path
		errs  []NonFatalError
	)

	args := opts.EffectiveFiles()
	ignoreRecursive := len(args) == 1 && args[0] == StdinSentinel

	for _, arg := range args {
		if cancel.Fired() {
			return paths, errs
		}

		if arg == StdinSentinel {
			paths = append(paths, Path{IsStdin: true})
			continue
		}

		info, err := os.Lstat(arg)

		switch {
		case err == nil && info.IsDir():
			if !opts.Recursive || ignoreRecursive {
				errs = append(errs, NonFatalError{Arg: arg, Err: errors.Newf("%s: is a directory", arg)})
				continue
			}
			found, werrs := walkDir(arg, opts, cancel)
			paths = append(paths, found...)
			errs = append(errs, werrs...)
		case err != nil && isGlobPattern(arg):
			matches, err := doublestar.FilepathGlob(arg)
			if err != nil {
				errs = append(errs, NonFatalError{Arg: arg, Err: errors.Wrapf(err, "bad glob %s", arg)})
				continue
			}
			if len(matches) == 0 {
				errs = append(errs, NonFatalError{Arg: arg, Err: errors.Newf("%s: no such file or directory", arg)})
				continue
			}
			sort.Strings(matches)
			for _, m := range matches {
				paths = append(paths, Path{Name: m})
			}
		default:
			paths = append(paths, Path{Name: arg})
		}
	}

	return paths, errs
}

// walkDir recurses into dir depth-first, directories and files sorted
// lexicographically at each level, yielding regular files only and never
// following symlinks.
func walkDir(dir string, opts *option.Options, cancel *Cancel) ([]Path, []NonFatalError) {
	var paths []Path
	var errs []NonFatalError

	entries, err := os.ReadDir(dir)
	if err != nil {
		errs = append(errs, NonFatalError{Arg: dir, Err: errors.Wrapf(err, "cannot read directory %s", dir)})
		return paths, errs
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if cancel.Fired() {
			return paths, errs
		}

		full := filepath.Join(dir, e.Name())

		info, err := os.Lstat(full)
		if err != nil {
			errs = append(errs, NonFatalError{Arg: full, Err: err})
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue // never follow symlinks
		}

		if info.IsDir() {
			sub, serrs := walkDir(full, opts, cancel)
			paths = append(paths, sub...)
			errs = append(errs, serrs...)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		ok, err := ShouldInclude(e.Name(), opts.IncludeGlobs, opts.ExcludeGlobs)
		if err != nil {
			errs = append(errs, NonFatalError{Arg: full, Err: err})
			continue
		}
		if ok {
			paths = append(paths, Path{Name: full})
		}
	}

	return paths, errs
}

// ShouldInclude is the pure filter predicate from spec.md §4.2: a path is
// kept iff (includes is empty OR it matches any include glob) AND it
// matches no exclude glob. Matching is by filename only, not full path.
func ShouldInclude(name string, includes, excludes []string) (bool, error) {
	for _, pat := range excludes {
		m, err := doublestar.Match(pat, name)
		if err != nil {
			return false, errors.Wrapf(err, "bad exclude pattern %s", pat)
		}
		if m {
			return false, nil
		}
	}

	if len(includes) == 0 {
		return true, nil
	}

	for _, pat := range includes {
		m, err := doublestar.Match(pat, name)
		if err != nil {
			return false, errors.Wrapf(err, "bad include pattern %s", pat)
		}
		if m {
			return true, nil
		}
	}
	return false, nil
}

// isGlobPattern reports whether arg looks like a glob rather than a plain
// path; existence of non-glob arguments is verified at open time, not here
// (spec.md §4.2).
func isGlobPattern(arg string) bool {
	for _, r := range arg {
		switch r {
		case '*', '?', '[':
			return true
		}
	}
	return false
}
