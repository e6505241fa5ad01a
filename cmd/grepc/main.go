// Command grepc is the Application entry point (spec.md §4.7): it parses
// flags with cobra, wires option -> discovery -> matchstrategy -> engine ->
// format in order, installs SIGINT/SIGTERM cancellation, and maps the final
// Outcome to a POSIX-compatible exit code.
//
// Signal handling and logger initialization are adapted from
// cmd/searcher/main.go's shutdownOnSIGINT and log.Init, generalized from a
// long-running server's graceful-shutdown path to a one-shot CLI's
// cancel-the-current-search path.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/log"
	"github.com/spf13/cobra"

	"github.com/Reino-Barone/GrepCompatible-sub001/internal/discovery"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/engine"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/format"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/grepcerrors"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/option"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/resultpool"
)

// Exit codes per spec.md §4.7/§7.
const (
	exitMatches   = 0
	exitNoMatches = 1
	exitError     = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type flags struct {
	ignoreCase       bool
	invertMatch      bool
	lineNumber       bool
	countOnly        bool
	filenameOnly     bool
	suppressFilename bool
	forceFilename    bool
	silent           bool
	extendedRegex    bool
	fixedStrings     bool
	wholeWord        bool
	recursive        bool
	includeGlobs     []string
	excludeGlobs     []string
	maxCount         int
	before           int
	after            int
	context          int
}

func run(args []string, stdout, stderr *os.File) (code int) {
	var f flags

	logger, sync := newLogger()
	defer sync()

	cmd := &cobra.Command{
		Use:           "grepc PATTERN [FILE...]",
		Short:         "Search files for lines matching a pattern",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, cliArgs []string) error {
			pattern := cliArgs[0]
			files := cliArgs[1:]

			opts, err := option.New(
				pattern, files,
				f.ignoreCase, f.invertMatch, f.lineNumber, f.countOnly, f.filenameOnly,
				f.suppressFilename, f.forceFilename, f.silent, f.extendedRegex, f.fixedStrings,
				f.wholeWord, f.recursive,
				f.includeGlobs, f.excludeGlobs,
				f.maxCount, f.before, f.after, f.context,
			)
			if err != nil {
				return grepcerrors.NewUserError(err.Error())
			}

			return execute(cmd.Context(), opts, logger, stdout, stderr, &code)
		},
	}

	cmd.Flags().BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "ignore case distinctions")
	cmd.Flags().BoolVarP(&f.invertMatch, "invert-match", "v", false, "select non-matching lines")
	cmd.Flags().BoolVarP(&f.lineNumber, "line-number", "n", false, "prefix output with line numbers")
	cmd.Flags().BoolVarP(&f.countOnly, "count", "c", false, "print only a count of matching lines per file")
	cmd.Flags().BoolVarP(&f.filenameOnly, "files-with-matches", "l", false, "print only names of files with matches")
	cmd.Flags().BoolVarP(&f.suppressFilename, "no-filename", "h", false, "never print filenames with output")
	cmd.Flags().BoolVarP(&f.forceFilename, "with-filename", "H", false, "always print filenames with output")
	cmd.Flags().BoolVarP(&f.silent, "quiet", "q", false, "suppress all normal output")
	cmd.Flags().BoolVarP(&f.extendedRegex, "extended-regexp", "E", false, "interpret pattern as an extended regular expression")
	cmd.Flags().BoolVarP(&f.fixedStrings, "fixed-strings", "F", false, "interpret pattern as a literal string")
	cmd.Flags().BoolVarP(&f.wholeWord, "word-regexp", "w", false, "match only whole words")
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "r", false, "read all files under each directory, recursively")
	cmd.Flags().IntVarP(&f.maxCount, "max-count", "m", 0, "stop after NUM matching lines per file")
	cmd.Flags().IntVarP(&f.before, "before-context", "B", 0, "print NUM lines of leading context")
	cmd.Flags().IntVarP(&f.after, "after-context", "A", 0, "print NUM lines of trailing context")
	cmd.Flags().IntVarP(&f.context, "context", "C", -1, "print NUM lines of leading and trailing context")
	cmd.Flags().StringSliceVar(&f.includeGlobs, "include", nil, "search only files matching GLOB")
	cmd.Flags().StringSliceVar(&f.excludeGlobs, "exclude", nil, "skip files matching GLOB")

	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	if err := cmd.Execute(); err != nil {
		if code == 0 {
			code = exitError
		}
		fmt.Fprintln(stderr, "grepc:", err)
	}
	return code
}

// execute runs one search end to end and writes the result, setting code to
// the exit status the caller should use.
func execute(ctx context.Context, opts *option.Options, logger log.Logger, stdout, stderr *os.File, code *int) error {
	cancel := discovery.NewCancel()
	go func() {
		<-ctx.Done()
		cancel.Fire()
	}()

	pool := resultpool.New()
	eng := engine.New(pool, logger)

	outcome, err := eng.Search(ctx, opts, cancel)
	if err != nil {
		*code = exitError
		return err
	}

	if outcome.Cancelled {
		*code = exitError
		return errors.New("search cancelled")
	}

	fm := format.New(stdout)
	if err := fm.Write(outcome.Search, opts); err != nil {
		*code = exitError
		return err
	}

	hadFileErrors := false
	for _, fr := range outcome.Search.FileResults {
		if fr.Error != "" {
			hadFileErrors = true
			fmt.Fprintln(stderr, "grepc:", fr.Error)
		}
	}
	for _, de := range outcome.DiscoveryErrs {
		hadFileErrors = true
		fmt.Fprintln(stderr, "grepc:", de.Error())
	}

	switch {
	case hadFileErrors:
		*code = exitError
	case outcome.Search.TotalMatches > 0:
		*code = exitMatches
	default:
		*code = exitNoMatches
	}
	return nil
}

// newLogger initializes the global sourcegraph/log sink and returns a
// scoped logger for the search pipeline plus its Sync func, matching
// cmd/worker/main.go's log.Init / log.Scoped / defer liblog.Sync() pairing.
// GREPC_DEBUG flips verbosity the same way SRC_LOG_LEVEL does for the rest
// of the pack.
func newLogger() (log.Logger, func() error) {
	if os.Getenv("GREPC_DEBUG") != "" {
		os.Setenv("SRC_LOG_LEVEL", "debug")
	}
	liblog := log.Init(log.Resource{Name: "grepc"})
	return log.Scoped("search", "the parallel file search pipeline"), liblog.Sync
}
