package option_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Reino-Barone/GrepCompatible-sub001/internal/option"
)

func TestNewRejectsEmptyPattern(t *testing.T) {
	_, err := option.New("", nil, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, 0, 0, 0, -1)
	require.Error(t, err)
}

func TestNewRejectsNegativeMaxCount(t *testing.T) {
	_, err := option.New("x", nil, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, -1, 0, 0, -1)
	require.Error(t, err)
}

func TestNewRejectsNegativeContext(t *testing.T) {
	_, err := option.New("x", nil, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, 0, -1, 0, -1)
	require.Error(t, err)
}

func TestContextOverridesBeforeAfter(t *testing.T) {
	opts, err := option.New("x", nil, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, 0, 1, 1, 3)
	require.NoError(t, err)
	require.Equal(t, 3, opts.BeforeContext)
	require.Equal(t, 3, opts.AfterContext)
}

func TestEffectiveFilesDefaultsToStdin(t *testing.T) {
	opts, err := option.New("x", nil, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, 0, 0, 0, -1)
	require.NoError(t, err)
	require.Equal(t, []string{"-"}, opts.EffectiveFiles())
}

func TestEffectiveFilesPassesThroughGivenFiles(t *testing.T) {
	opts, err := option.New("x", []string{"a.txt", "b.txt"}, false, false, false, false, false, false, false, false, false, false, false, false, nil, nil, 0, 0, 0, -1)
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt", "b.txt"}, opts.EffectiveFiles())
}

func TestBuildsContext(t *testing.T) {
	cases := []struct {
		name     string
		before   int
		after    int
		count    bool
		fname    bool
		silent   bool
		expected bool
	}{
		{name: "no context requested", expected: false},
		{name: "before context", before: 2, expected: true},
		{name: "after context", after: 2, expected: true},
		{name: "count suppresses context", before: 2, count: true, expected: false},
		{name: "filename-only suppresses context", before: 2, fname: true, expected: false},
		{name: "silent suppresses context", before: 2, silent: true, expected: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := option.New("x", nil, false, false, false, tc.count, tc.fname, false, false, tc.silent, false, false, false, false, nil, nil, 0, tc.before, tc.after, -1)
			require.NoError(t, err)
			require.Equal(t, tc.expected, opts.BuildsContext())
		})
	}
}
