package site

import (
	"errors"
	"fmt"
)

// AuthError means the session is invalid or could not be established.
// It is never retried per match; the remainder of the cycle is aborted.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError means a page or match list could not be read.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmitError means a tip could not be written. Transient covers the
// network/timeout/stale-page class that is worth retrying within the same
// submission.
type SubmitError struct {
	MatchID   string
	Transient bool
	Err       error
}

func (e *SubmitError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("submit tip for match %s (%s): %v", e.MatchID, kind, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// IsAuth reports whether err is an authentication failure anywhere in the
// chain.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsTransient reports whether err is a retryable submission failure.
func IsTransient(err error) bool {
	var submitErr *SubmitError
	return errors.As(err, &submitErr) && submitErr.Transient
}
