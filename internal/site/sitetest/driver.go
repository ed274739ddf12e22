// Package sitetest provides an in-memory site.Driver for tests.
package sitetest

import (
	"context"
	"sync"
	"time"

	"github.com/mwirth/tippbot/internal/pkg/models"
	"github.com/mwirth/tippbot/internal/site"
)

// Driver is a scriptable in-memory implementation of site.Driver.
// Zero value works: authentication succeeds and every submission verifies.
type Driver struct {
	mu sync.Mutex

	// AuthErrs is consumed one per Authenticate call; nil entries mean
	// success. When exhausted, Authenticate succeeds.
	AuthErrs []error
	// Matches is returned by ListMatches.
	Matches []models.Match
	// ListErr fails ListMatches when set.
	ListErr error
	// SubmitErrs queues per-match submission errors, consumed one per
	// attempt. When a match's queue is exhausted, submission succeeds.
	SubmitErrs map[string][]error
	// VerifyTips overrides what VerifyTip reports for a match,
	// regardless of what was submitted.
	VerifyTips map[string]*models.Tip
	// VerifyErr fails VerifyTip when set.
	VerifyErr error

	AuthCalls   int
	ListCalls   int
	SubmitCalls map[string]int
	Submitted   map[string]models.Tip
	// SubmitComps records the competition each match was submitted under.
	SubmitComps map[string]string
}

func (d *Driver) Authenticate(ctx context.Context, creds site.Credentials) (*site.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	call := d.AuthCalls
	d.AuthCalls++
	if call < len(d.AuthErrs) && d.AuthErrs[call] != nil {
		return nil, d.AuthErrs[call]
	}
	return &site.Session{Account: creds.Email, StartedAt: time.Now()}, nil
}

func (d *Driver) ListMatches(ctx context.Context, s *site.Session, competition string) ([]models.Match, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ListCalls++
	if d.ListErr != nil {
		return nil, d.ListErr
	}
	out := make([]models.Match, len(d.Matches))
	copy(out, d.Matches)
	return out, nil
}

func (d *Driver) SubmitTip(ctx context.Context, s *site.Session, competition string, tip models.Tip) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SubmitCalls == nil {
		d.SubmitCalls = make(map[string]int)
	}
	d.SubmitCalls[tip.MatchID]++
	if d.SubmitComps == nil {
		d.SubmitComps = make(map[string]string)
	}
	d.SubmitComps[tip.MatchID] = competition

	if queue := d.SubmitErrs[tip.MatchID]; len(queue) > 0 {
		err := queue[0]
		d.SubmitErrs[tip.MatchID] = queue[1:]
		if err != nil {
			return err
		}
	}

	if d.Submitted == nil {
		d.Submitted = make(map[string]models.Tip)
	}
	d.Submitted[tip.MatchID] = tip
	return nil
}

func (d *Driver) VerifyTip(ctx context.Context, s *site.Session, matchID string) (models.TippedState, *models.Tip, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.VerifyErr != nil {
		return "", nil, d.VerifyErr
	}
	if tip, ok := d.VerifyTips[matchID]; ok {
		if tip == nil {
			return models.TippedStateOpen, nil, nil
		}
		return models.TippedStateTipped, tip, nil
	}
	if tip, ok := d.Submitted[matchID]; ok {
		t := tip
		return models.TippedStateTipped, &t, nil
	}
	return models.TippedStateOpen, nil, nil
}

func (d *Driver) Close() error { return nil }
