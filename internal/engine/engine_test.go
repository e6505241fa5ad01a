package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sourcegraph/log/logtest"
	"github.com/stretchr/testify/require"

	"github.com/Reino-Barone/GrepCompatible-sub001/internal/discovery"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/engine"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/option"
	"github.com/Reino-Barone/GrepCompatible-sub001/internal/resultpool"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	return engine.New(resultpool.New(), logtest.Scoped(t))
}

func search(t *testing.T, opts *option.Options) engine.Outcome {
	t.Helper()
	out, err := newEngine(t).Search(context.Background(), opts, discovery.NewCancel())
	require.NoError(t, err)
	return out
}

// Boundary scenario 1: basic single-file match.
func TestBoundaryBasicSingleFileMatch(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "hello world\ntest line\nhello again\n")

	opts, err := option.New("hello", []string{a}, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, 0, 0, 0, -1)
	require.NoError(t, err)

	out := search(t, opts)
	require.Equal(t, 2, out.Search.TotalMatches)
	require.Len(t, out.Search.FileResults, 1)
	require.Equal(t, "hello world", out.Search.FileResults[0].Matches[0].LineText)
	require.Equal(t, "hello again", out.Search.FileResults[0].Matches[1].LineText)
}

// Boundary scenario 2: line numbers across multiple files.
func TestBoundaryLineNumbersMultiFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "x\nfoo\n")
	b := writeFile(t, dir, "b.txt", "foo\n")

	opts, err := option.New("foo", []string{a, b}, false, false, true, false, false, false, false, false, false, false, false, false, nil, nil, 0, 0, 0, -1)
	require.NoError(t, err)

	out := search(t, opts)
	require.Equal(t, 2, out.Search.TotalMatches)
	require.Equal(t, 2, out.Search.FileResults[0].Matches[0].LineNumber)
	require.Equal(t, 1, out.Search.FileResults[1].Matches[0].LineNumber)
}

// Boundary scenario 3: invert match + count.
func TestBoundaryInvertAndCount(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "foo\nbar\nbaz\n")

	opts, err := option.New("foo", []string{a}, false, true, false, true, false, false, false, false, false, false, false, false, nil, nil, 0, 0, 0, -1)
	require.NoError(t, err)

	out := search(t, opts)
	require.Equal(t, 2, out.Search.FileResults[0].TotalMatches)
}

// Boundary scenario 4: recursive include filter.
func TestBoundaryRecursiveIncludeExclude(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "d")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeFile(t, sub, "x.cs", "hit")
	writeFile(t, sub, "x.log", "hit")

	opts, err := option.New("hit", []string{sub}, false, false, false, false, false, false, false, false, false, false, false, true, []string{"*.cs"}, nil, 0, 0, 0, -1)
	require.NoError(t, err)

	out := search(t, opts)
	require.Len(t, out.Search.FileResults, 1)
	require.Equal(t, filepath.Join(sub, "x.cs"), out.Search.FileResults[0].FileName)
	require.Equal(t, 1, out.Search.FileResults[0].TotalMatches)
}

// Boundary scenario 5: context with block separator.
func TestBoundaryContextBlockSeparator(t *testing.T) {
	dir := t.TempDir()
	lines := "L1\nL2\nM3\nL4\nL5\nL6\nL7\nM8\nL9\nL10\n"
	f := writeFile(t, dir, "f", lines)

	opts, err := option.New("M", []string{f}, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, 0, 1, 1, -1)
	require.NoError(t, err)

	out := search(t, opts)
	fr := out.Search.FileResults[0]
	require.Len(t, fr.ContextualMatches, 2)

	first := fr.ContextualMatches[0]
	require.Equal(t, "M3", first.Match.LineText)
	require.Len(t, first.Before, 1)
	require.Equal(t, "L2", first.Before[0].Text)
	require.Len(t, first.After, 1)
	require.Equal(t, "L4", first.After[0].Text)

	second := fr.ContextualMatches[1]
	require.Equal(t, "M8", second.Match.LineText)
	require.Len(t, second.Before, 1)
	require.Equal(t, "L7", second.Before[0].Text)
	require.Len(t, second.After, 1)
	require.Equal(t, "L9", second.After[0].Text)
}

// Boundary scenario 6: max-count early stop.
func TestBoundaryMaxCountEarlyStop(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "f", "p\np\np\np\np\n")

	opts, err := option.New("p", []string{f}, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, 2, 0, 0, -1)
	require.NoError(t, err)

	out := search(t, opts)
	require.Equal(t, 2, out.Search.FileResults[0].TotalMatches)
	require.Len(t, out.Search.FileResults[0].Matches, 2)
}

// A line with multiple non-overlapping occurrences of the pattern counts
// and prints once, not once per occurrence (spec.md §4.5 step e: "if the
// line matches, append" is singular).
func TestMultipleOccurrencesOnOneLineCountOnce(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "f", "foo foo\nbar\n")

	opts, err := option.New("foo", []string{f}, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, 0, 0, 0, -1)
	require.NoError(t, err)

	out := search(t, opts)
	fr := out.Search.FileResults[0]
	require.Equal(t, 1, fr.TotalMatches)
	require.Len(t, fr.Matches, 1)
	require.Equal(t, "foo foo", fr.Matches[0].LineText)
}

// Testable property 1: file_results order equals discovery order.
func TestFileResultOrderMatchesDiscoveryOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "c.txt", "x\n")
	writeFile(t, dir, "a.txt", "x\n")
	writeFile(t, dir, "b.txt", "x\n")

	opts, err := option.New("x", []string{dir}, false, false, false, false, false, false, false, false, false, false, false, true, nil, nil, 0, 0, 0, -1)
	require.NoError(t, err)

	out := search(t, opts)
	require.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "c.txt"),
	}, []string{
		out.Search.FileResults[0].FileName,
		out.Search.FileResults[1].FileName,
		out.Search.FileResults[2].FileName,
	})
}

// Testable property 5: invert-match only emits lines the strategy itself
// does not match.
func TestInvertMatchOnlyEmitsNonMatchingLines(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "f", "keep\nfoo\nkeep2\n")

	opts, err := option.New("foo", []string{f}, false, true, false, false, false, false, false, false, false, false, false, false, nil, nil, 0, 0, 0, -1)
	require.NoError(t, err)

	out := search(t, opts)
	require.Equal(t, 2, out.Search.FileResults[0].TotalMatches)
	for _, m := range out.Search.FileResults[0].Matches {
		require.NotContains(t, m.LineText, "foo")
	}
}

func TestBinaryFileEmitsSingleNotice(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bin")
	content := append([]byte("hello\x00world match\n"), make([]byte, 0)...)
	require.NoError(t, os.WriteFile(p, content, 0o644))

	opts, err := option.New("match", []string{p}, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, 0, 0, 0, -1)
	require.NoError(t, err)

	out := search(t, opts)
	require.True(t, out.Search.FileResults[0].BinaryMatch)
	require.Equal(t, 1, out.Search.FileResults[0].TotalMatches)
}

func TestCancellationDiscardsPartialResults(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "f", "hello\n")

	opts, err := option.New("hello", []string{f}, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, 0, 0, 0, -1)
	require.NoError(t, err)

	cancel := discovery.NewCancel()
	cancel.Fire()

	out, err := newEngine(t).Search(context.Background(), opts, cancel)
	require.NoError(t, err)
	require.True(t, out.Cancelled)
}

func TestSingleStdinReaderClaimedOnce(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	go func() {
		w.WriteString("match here\n")
		w.Close()
	}()

	oldStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = oldStdin }()

	opts, err := option.New("match", []string{"-", "-"}, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, 0, 0, 0, -1)
	require.NoError(t, err)

	ctx, cancelCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelCtx()

	out, err := newEngine(t).Search(ctx, opts, discovery.NewCancel())
	require.NoError(t, err)
	require.Len(t, out.Search.FileResults, 2)

	claimed := 0
	for _, fr := range out.Search.FileResults {
		if fr.TotalMatches > 0 {
			claimed++
		}
	}
	require.Equal(t, 1, claimed, "only one stdin occurrence should ever read data")
}
