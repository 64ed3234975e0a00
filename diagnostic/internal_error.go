// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package diagnostic

import (
	"errors"
	"fmt"
)

// IssueTracker is where internal errors ask to be reported.
const IssueTracker = "https://codeberg.org/pixivfe/i18ncheck/issues"

// ErrInvariant is the root cause of invariant violations that carry no other cause.
var ErrInvariant = errors.New("invariant violated")

// InternalError signals a bug in i18ncheck itself.
//
// It is never converted into a Diagnostic. Callers should let it propagate
// so the run fails loudly.
type InternalError struct {
	Op  string
	Err error
}

// Internal returns an InternalError for op wrapping err.
func Internal(op string, err error) *InternalError {
	if err == nil {
		err = ErrInvariant
	}

	return &InternalError{Op: op, Err: err}
}

// Internalf returns an InternalError for op with a formatted cause.
func Internalf(op, format string, args ...any) *InternalError {
	return Internal(op, fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...))
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("i18ncheck internal error in %s: %v, please open an issue at %s", e.Op, e.Err, IssueTracker)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// IsInternal reports whether err is or wraps an InternalError.
func IsInternal(err error) bool {
	var ie *InternalError

	return errors.As(err, &ie)
}
