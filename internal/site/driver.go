// Package site defines the contract between the tipping engine and the
// browser-backed site driver. All decision logic lives above this boundary;
// implementations only move data to and from the site.
package site

import (
	"context"
	"time"

	"github.com/mwirth/tippbot/internal/pkg/models"
)

// Credentials for site authentication.
type Credentials struct {
	Email    string
	Password string
}

// Session is the handle for one authenticated site session. It is passed
// explicitly into every driver call — never stored as package state — so a
// cycle cannot accidentally outlive or share its login.
type Session struct {
	Account   string
	StartedAt time.Time

	// Data is driver-private state, set by the driver that issued the
	// session and opaque to callers.
	Data any
}

// Driver is one authenticated browser session against the tipping site.
// Calls block and carry their own bounded timeouts; none of them is safe
// for concurrent use.
type Driver interface {
	// Authenticate signs in and returns a session handle.
	// Failures are *AuthError.
	Authenticate(ctx context.Context, creds Credentials) (*Session, error)

	// ListMatches fetches the open tipping list for the competition.
	// Failures are *FetchError.
	ListMatches(ctx context.Context, s *Session, competition string) ([]models.Match, error)

	// SubmitTip opens the competition's tipping page, writes the scoreline
	// into the match's form, and submits it. Failures are *SubmitError;
	// transient ones may be retried.
	SubmitTip(ctx context.Context, s *Session, competition string, tip models.Tip) error

	// VerifyTip re-reads the match row and reports the tip the site now
	// holds. Failures are *FetchError.
	VerifyTip(ctx context.Context, s *Session, matchID string) (models.TippedState, *models.Tip, error)

	// Close releases the underlying browser.
	Close() error
}
