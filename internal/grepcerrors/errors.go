// Package grepcerrors classifies the error taxonomy from spec.md §7 on top
// of github.com/cockroachdb/errors, mirroring the badRequestError /
// isBadRequest / isTemporary pattern in
// cmd/searcher/search/search.go.
package grepcerrors

import "github.com/cockroachdb/errors"

// userError is returned for bad options or a missing pattern: abort before
// scanning, exit code 2.
type userError struct{ msg string }

func (e userError) Error() string    { return e.msg }
func (e userError) BadRequest() bool { return true }

// NewUserError wraps a message as a UserError (spec.md §7).
func NewUserError(msg string) error { return userError{msg: msg} }

// patternError is returned for an unparsable pattern (bad regex, empty
// pattern): abort before scanning, exit code 2.
type patternError struct{ cause error }

func (e patternError) Error() string    { return e.cause.Error() }
func (e patternError) Unwrap() error    { return e.cause }
func (e patternError) BadRequest() bool { return true }

// NewPatternError wraps a compile failure as a PatternError.
func NewPatternError(cause error) error {
	return patternError{cause: errors.Wrap(cause, "invalid pattern")}
}

// fileAccessError records a single file's open/read failure. It never
// aborts the whole search (spec.md §4.5.3); instead its text travels inside
// result.FileResult.Error as a plain string. Application raises the final
// exit code for any non-empty FileResult.Error without inspecting this
// type; IsTemporary recognizes it where the error value itself is at hand.
type fileAccessError struct{ msg string }

func (e fileAccessError) Error() string   { return e.msg }
func (e fileAccessError) Temporary() bool { return true }

// NewFileAccessError wraps an open/read failure for a single path.
func NewFileAccessError(path string, cause error) error {
	return fileAccessError{msg: errors.Wrapf(cause, "%s", path).Error()}
}

// IsBadRequest reports whether err (or a wrapped cause) is a UserError or
// PatternError, i.e. should map to exit code 2 before any scanning happens.
func IsBadRequest(err error) bool {
	for ; err != nil; err = errors.UnwrapOnce(err) {
		if e, ok := err.(interface{ BadRequest() bool }); ok && e.BadRequest() {
			return true
		}
	}
	return false
}

// IsTemporary reports whether err is a recoverable per-file error.
func IsTemporary(err error) bool {
	e, ok := errors.Cause(err).(interface{ Temporary() bool })
	return ok && e.Temporary()
}
