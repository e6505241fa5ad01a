// Package format implements the OutputFormatter from spec.md §4.6: it
// renders a SearchResult to stdout in POSIX-compatible form. FileResults
// that carry a per-file error are skipped here; cmd/grepc reports those
// errors on stderr.
//
// The output-mode switch (count-only / filenames-only / context-with-
// separators / plain) and the "--" block-separator, ":"-for-match,
// "-"-for-context convention are adapted from the formatting branch of
// jpl-au-llmd/internal/grep/grep.go's Run function, generalized from that
// package's in-memory string-split rendering to streaming over
// result.SearchResult, and combined with the "vscode wire format" shape
// of cmd/searcher/protocol/searcher.go's Response for what a finished
// result snapshot looks like.
package format

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/Reino-Barone/GrepCompatible-sub001/internal/option"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/result"
)

// Formatter streams a SearchResult to w per opts. Writes are buffered and
// flushed once at the end (spec.md §4.6).
type Formatter struct {
	w *bufio.Writer
}

// New returns a Formatter writing to w.
func New(w io.Writer) *Formatter {
	return &Formatter{w: bufio.NewWriter(w)}
}

// Write renders sr to the formatter's writer according to opts, then
// flushes. It reports the first write error encountered, if any.
func (f *Formatter) Write(sr result.SearchResult, opts *option.Options) (err error) {
	defer func() {
		if ferr := f.w.Flush(); err == nil {
			err = ferr
		}
	}()

	if opts.Silent {
		return nil
	}

	showName := filenameDisplayActive(opts)

	switch {
	case opts.CountOnly:
		return f.writeCounts(sr, showName)
	case opts.FilenameOnly:
		return f.writeFilenamesOnly(sr)
	default:
		return f.writeMatches(sr, opts, showName)
	}
}

// filenameDisplayActive implements spec.md §4.6: filename display is active
// iff NOT suppress_filename AND (input contained more than one effective
// file OR filename_only is set), unconditionally when force_filename (-H)
// was given. Recursive mode also counts as "more than one effective file":
// a directory argument may expand to any number of files, so grep shows
// names the same way it would for an explicit multi-file argument list.
func filenameDisplayActive(opts *option.Options) bool {
	if opts.ForceFilename {
		return true
	}
	if opts.SuppressFilename {
		return false
	}
	return len(opts.EffectiveFiles()) > 1 || opts.Recursive || opts.FilenameOnly
}

func (f *Formatter) writeCounts(sr result.SearchResult, showName bool) error {
	for _, fr := range sr.FileResults {
		if fr.Error != "" {
			continue
		}
		if showName {
			if _, err := fmt.Fprintf(f.w, "%s:%d\n", fr.FileName, fr.TotalMatches); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(f.w, "%d\n", fr.TotalMatches); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) writeFilenamesOnly(sr result.SearchResult) error {
	for _, fr := range sr.FileResults {
		if fr.Error != "" || fr.TotalMatches == 0 {
			continue
		}
		if _, err := fmt.Fprintln(f.w, fr.FileName); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) writeMatches(sr result.SearchResult, opts *option.Options, showName bool) error {
	wroteAny := false
	for _, fr := range sr.FileResults {
		if fr.Error != "" {
			continue
		}
		if fr.BinaryMatch {
			if _, err := fmt.Fprintf(f.w, "binary file %s matches\n", fr.FileName); err != nil {
				return err
			}
			wroteAny = true
			continue
		}
		if fr.TotalMatches == 0 {
			continue
		}

		if wroteAny && opts.BuildsContext() {
			if _, err := fmt.Fprintln(f.w, "--"); err != nil {
				return err
			}
		}
		wroteAny = true

		if opts.BuildsContext() && len(fr.ContextualMatches) > 0 {
			if err := f.writeContextualFile(fr, opts, showName); err != nil {
				return err
			}
			continue
		}

		for _, m := range fr.Matches {
			if err := f.writeLine(fr.FileName, m.LineNumber, m.LineText, ":", opts, showName); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Formatter) writeContextualFile(fr result.FileResult, opts *option.Options, showName bool) error {
	lastLine := -1
	for i, cm := range fr.ContextualMatches {
		firstLine := cm.Match.LineNumber
		if len(cm.Before) > 0 {
			firstLine = cm.Before[0].LineNumber
		}
		if i > 0 && firstLine > lastLine+1 {
			if _, err := fmt.Fprintln(f.w, "--"); err != nil {
				return err
			}
		}
		for _, bl := range cm.Before {
			if err := f.writeLine(fr.FileName, bl.LineNumber, bl.Text, "-", opts, showName); err != nil {
				return err
			}
		}
		if err := f.writeLine(fr.FileName, cm.Match.LineNumber, cm.Match.LineText, ":", opts, showName); err != nil {
			return err
		}
		for _, al := range cm.After {
			if err := f.writeLine(fr.FileName, al.LineNumber, al.Text, "-", opts, showName); err != nil {
				return err
			}
		}

		lastLine = cm.Match.LineNumber
		if len(cm.After) > 0 {
			lastLine = cm.After[len(cm.After)-1].LineNumber
		}
	}
	return nil
}

func (f *Formatter) writeLine(fileName string, lineNumber int, text, sep string, opts *option.Options, showName bool) error {
	prefix := ""
	if showName {
		prefix += fileName + sep
	}
	if opts.LineNumber {
		prefix += strconv.Itoa(lineNumber) + sep
	}
	_, err := fmt.Fprintf(f.w, "%s%s\n", prefix, text)
	return err
}
