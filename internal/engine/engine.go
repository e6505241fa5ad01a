// Package engine implements the ParallelEngine, the core of the
// specification (spec.md §4.5): a bounded worker pool that consumes the
// path stream from discovery, scans each file line by line with the
// selected MatchStrategy, maintains a per-file context ring buffer, honours
// a per-file max-count cap, and aggregates FileResults back into path
// order while observing cooperative cancellation.
//
// The worker shape — a shared dispatcher feeding a bounded channel, an
// errgroup.Group of scanners, atomic counters for coarse stats, and a
// ctx.Err() check as the cancellation boundary at each loop iteration — is
// ported from regexSearch in cmd/searcher/search/search_regex.go, adapted
// from that function's mutex-protected shared-slice design to a
// producer/consumer channel, the idiom used for worker pools elsewhere in
// this pack.
package engine

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/sourcegraph/log"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/Reino-Barone/GrepCompatible-sub001/internal/discovery"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/grepcerrors"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/matchstrategy"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/option"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/result"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/resultpool"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/tuner"
)

// binaryPeekSize is how much of a file is inspected for a NUL byte before
// deciding it is binary (spec.md §4.5 step b).
const binaryPeekSize = 8 * 1024

// Engine is the ParallelEngine. It is safe for reuse across searches; each
// Search call owns its own worker pool, ring buffers, and cancellation
// bookkeeping.
type Engine struct {
	pool   *resultpool.Pool
	logger log.Logger
}

// New returns an Engine backed by pool, logging under the given logger.
func New(pool *resultpool.Pool, logger log.Logger) *Engine {
	return &Engine{pool: pool, logger: logger}
}

// Outcome is the result of one Search call, including discovery-level
// non-fatal errors that did not produce a FileResult of their own but still
// affect the final exit code (spec.md §7).
type Outcome struct {
	Search        result.SearchResult
	DiscoveryErrs []discovery.NonFatalError
	Cancelled     bool
}

// Search runs the full pipeline: expand inputs, select a strategy, scan
// files across a bounded worker pool, and aggregate in path order.
func (e *Engine) Search(ctx context.Context, opts *option.Options, cancel *discovery.Cancel) (Outcome, error) {
	start := time.Now()

	strategy, err := matchstrategy.Select(opts)
	if err != nil {
		return Outcome{}, err
	}

	paths, discErrs := discovery.Expand(opts, cancel)

	workers := opts.Parallelism()
	if workers == 0 {
		workers = tuner.OptimalParallelism(len(paths))
	}

	slots := make([]*result.FileResult, len(paths))

	type task struct {
		index      int
		path       discovery.Path
		claimStdin bool
	}

	tasks := make(chan task, 2*workers)

	var stdinClaimed atomic.Bool
	var filesScanned atomic.Int64
	var filesErrored atomic.Int64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(tasks)
		for i, p := range paths {
			if cancel.Fired() || gctx.Err() != nil {
				return nil
			}
			// Paths are dispatched in order, so the first "-" claims stdin.
			claim := p.IsStdin && stdinClaimed.CompareAndSwap(false, true)
			select {
			case tasks <- task{index: i, path: p, claimStdin: claim}:
			case <-gctx.Done():
				return nil
			case <-cancel.Done():
				return nil
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				if cancel.Fired() || gctx.Err() != nil {
					return nil
				}
				select {
				case t, ok := <-tasks:
					if !ok {
						return nil
					}
					fr := e.scanFile(gctx, strategy, opts, t.path, t.claimStdin, cancel)
					if fr.Error != "" {
						filesErrored.Inc()
					} else {
						filesScanned.Inc()
					}
					slots[t.index] = &fr
				case <-gctx.Done():
					return nil
				case <-cancel.Done():
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}

	if cancel.Fired() {
		e.logger.Debug("search cancelled", log.Int("filesScanned", int(filesScanned.Load())))
		return Outcome{Cancelled: true, DiscoveryErrs: discErrs}, nil
	}

	fileResults := make([]result.FileResult, 0, len(paths))
	total := 0
	for _, fr := range slots {
		if fr == nil {
			continue // dispatcher/worker exited early (should not happen absent cancellation)
		}
		fileResults = append(fileResults, *fr)
		total += fr.TotalMatches
	}

	sr := result.SearchResult{
		FileResults:  fileResults,
		TotalMatches: total,
		TotalFiles:   len(fileResults),
		Elapsed:      time.Since(start),
	}

	e.logger.Debug("search complete",
		log.Int("files", sr.TotalFiles),
		log.Int("matches", sr.TotalMatches),
		log.Duration("elapsed", sr.Elapsed))

	return Outcome{Search: sr, DiscoveryErrs: discErrs}, nil
}

// scanFile implements spec.md §4.5 step 4 for a single path.
func (e *Engine) scanFile(ctx context.Context, strategy matchstrategy.Strategy, opts *option.Options, p discovery.Path, claimedStdin bool, cancel *discovery.Cancel) result.FileResult {
	name := p.Name
	if p.IsStdin {
		name = "(standard input)"
	}

	var r io.Reader
	if p.IsStdin {
		if !claimedStdin {
			// Only the first stdin argument is ever read; subsequent "-"
			// occurrences see instant EOF (spec.md §5).
			return result.FileResult{FileName: name}
		}
		r = os.Stdin
	} else {
		f, err := os.Open(p.Name)
		if err != nil {
			return result.FileResult{FileName: name, Error: grepcerrors.NewFileAccessError(p.Name, err).Error()}
		}
		defer f.Close()

		bufSize := tuner.OptimalBufferSize(fileSize(f))
		if bufSize < binaryPeekSize {
			bufSize = binaryPeekSize
		}
		r = bufio.NewReaderSize(f, bufSize)
	}

	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, tuner.OptimalBufferSize(0))
	}

	binary := false
	if !p.IsStdin {
		peeked, _ := br.Peek(binaryPeekSize)
		binary = bytes.IndexByte(peeked, 0) >= 0
	}

	if binary {
		return e.scanBinary(ctx, br, name, strategy, opts, cancel)
	}

	return e.scanText(ctx, br, name, strategy, opts, cancel)
}

func fileSize(f *os.File) int64 {
	fi, err := f.Stat()
	if err != nil {
		return 0
	}
	return fi.Size()
}

// scanBinary implements the Open Question resolution documented in
// DESIGN.md: scan but suppress line bodies, emitting a single notice iff
// any line is an effective match.
func (e *Engine) scanBinary(ctx context.Context, br *bufio.Reader, name string, strategy matchstrategy.Strategy, opts *option.Options, cancel *discovery.Cancel) result.FileResult {
	lineNumber := 0
	for {
		if ctx.Err() != nil || cancel.Fired() {
			return result.FileResult{FileName: name}
		}
		line, readErr := readLine(br)
		if line == nil && readErr == io.EOF {
			break
		}
		lineNumber++
		if effectiveMatch(strategy, line, name, lineNumber, opts.InvertMatch) {
			return result.FileResult{FileName: name, BinaryMatch: true, TotalMatches: 1}
		}
		if readErr != nil {
			break
		}
	}
	return result.FileResult{FileName: name}
}

// scanText implements the line-by-line scan, context ring buffer, and
// max-count early exit for a non-binary file.
func (e *Engine) scanText(ctx context.Context, br *bufio.Reader, name string, strategy matchstrategy.Strategy, opts *option.Options, cancel *discovery.Cancel) result.FileResult {
	buffer := e.pool.Rent(16)

	var maxCount *int
	if opts.MaxCount > 0 {
		mc := opts.MaxCount
		maxCount = &mc
	}

	buildContext := opts.BuildsContext()
	before := newRing(opts.BeforeContext)
	afterNeeded := 0
	currentIdx := -1
	lastEmitted := 0
	var contextual []result.ContextualMatch

	lineNumber := 0
	stopped := false

	for {
		if ctx.Err() != nil || cancel.Fired() {
			buffer.Release()
			return result.FileResult{FileName: name}
		}
		if stopped && afterNeeded == 0 {
			break
		}

		line, readErr := readLine(br)
		if line == nil && readErr == io.EOF {
			break
		}
		lineNumber++

		matches := strategy.FindMatches(line, name, lineNumber)
		isMatch := len(matches) > 0
		if opts.InvertMatch {
			isMatch = !isMatch
			if isMatch {
				matches = []result.Match{{FileName: name, LineNumber: lineNumber, LineText: string(line), Span: result.Span{}, MatchedText: ""}}
			} else {
				matches = nil
			}
		}

		if !stopped && isMatch {
			// A matching line counts and prints once, regardless of how
			// many non-overlapping spans it contains (spec.md §4.5 step e:
			// "if the line matches, append" is singular); only the first
			// span is kept for the recorded Match.
			if buffer.AddMatch(matches[0], maxCount) {
				stopped = true
			}

			if buildContext {
				beforeLines := before.linesAfter(lastEmitted)
				if opts.BeforeContext > 0 && len(beforeLines) > opts.BeforeContext {
					beforeLines = beforeLines[len(beforeLines)-opts.BeforeContext:]
				}
				contextual = append(contextual, result.ContextualMatch{
					Match:  matches[0],
					Before: beforeLines,
				})
				currentIdx = len(contextual) - 1
				afterNeeded = opts.AfterContext
				lastEmitted = lineNumber
			}
		} else if !isMatch {
			if buildContext && afterNeeded > 0 && currentIdx >= 0 {
				contextual[currentIdx].After = append(contextual[currentIdx].After, result.ContextLine{
					FileName: name, LineNumber: lineNumber, Text: string(line), IsMatch: false,
				})
				afterNeeded--
				lastEmitted = lineNumber
			} else if buildContext && opts.BeforeContext > 0 {
				before.push(result.ContextLine{FileName: name, LineNumber: lineNumber, Text: string(line), IsMatch: false})
			}
		}

		if readErr != nil {
			break
		}
	}

	fr := buffer.Finish(name)
	fr.ContextualMatches = contextual
	return fr
}

// effectiveMatch applies the effective-match rule from spec.md §4.5 step d.
func effectiveMatch(strategy matchstrategy.Strategy, line []byte, name string, lineNumber int, invert bool) bool {
	matches := strategy.FindMatches(line, name, lineNumber)
	if invert {
		return len(matches) == 0
	}
	return len(matches) > 0
}

// readLine reads one line from br, stripping a trailing "\n" or "\r\n". It
// returns (nil, err) only when there is no more data at all; a final line
// with no trailing newline is returned together with io.EOF, so callers
// process that line and then stop.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadBytes('\n')
	if len(line) == 0 && err != nil {
		return nil, err
	}
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if err == io.EOF {
		return line, io.EOF
	}
	return line, nil
}
