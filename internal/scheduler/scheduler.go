// Package scheduler drives the periodic tipping pass: authenticate, fetch,
// filter, submit, notify. Cycles never overlap and a failing cycle never
// takes the process down.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mwirth/tippbot/internal/eligibility"
	"github.com/mwirth/tippbot/internal/notify"
	"github.com/mwirth/tippbot/internal/pkg/models"
	"github.com/mwirth/tippbot/internal/site"
	"github.com/mwirth/tippbot/internal/tipper"
)

// State of the scheduler; Idle between ticks, Running while a cycle is in
// progress.
type State int32

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

type Config struct {
	Interval    time.Duration // tick period
	LeadTime    time.Duration // eligibility window before kickoff
	Competition string
	Credentials site.Credentials

	// OverwriteTips resubmits matches the site already holds a tip for,
	// as long as they are still open for edits.
	OverwriteTips bool
}

type Scheduler struct {
	cfg         Config
	driver      site.Driver
	coordinator *tipper.Coordinator
	notifier    notify.Notifier

	state atomic.Int32

	// OnCycleEnd, when set, receives every finished cycle result
	// (health status and metrics hook into this).
	OnCycleEnd func(*models.CycleResult)

	// now is swappable for tests.
	now func() time.Time
}

func New(cfg Config, driver site.Driver, coordinator *tipper.Coordinator, notifier notify.Notifier) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		driver:      driver,
		coordinator: coordinator,
		notifier:    notifier,
		now:         time.Now,
	}
}

func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Run executes cycles on the configured interval until ctx is cancelled.
// The first cycle starts immediately. Because the loop body blocks, a tick
// that fires while a cycle is still running is deferred until the cycle
// completes; cycles never overlap the single browser session.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("Scheduler starting",
		"interval", s.cfg.Interval,
		"lead_time", s.cfg.LeadTime,
		"competition", s.cfg.Competition,
	)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	s.state.Store(int32(StateRunning))
	defer s.state.Store(int32(StateIdle))

	result := s.RunCycle(ctx)
	if ctx.Err() != nil && len(result.Matches) == 0 {
		// Shutdown hit before the cycle did anything; nothing to report.
		return
	}

	if s.OnCycleEnd != nil {
		s.OnCycleEnd(result)
	}
	if s.notifier != nil {
		// Best effort: delivery failures are logged by the notifier and
		// never affect tipping.
		_ = s.notifier.Notify(ctx, result)
	}

	slog.Info("Cycle finished",
		"cycle_id", result.CycleID,
		"duration", result.Duration,
		"submitted", result.Count(models.OutcomeSubmitted),
		"failed", result.Count(models.OutcomeFailed),
		"aborted", result.Aborted(),
	)
}

// RunCycle performs one full pass and always returns a result, aborted or
// not. Cycle-level errors (authentication, fetch) end the cycle but are
// contained here; nothing propagates.
func (s *Scheduler) RunCycle(ctx context.Context) *models.CycleResult {
	started := s.now()
	result := &models.CycleResult{
		CycleID:     uuid.NewString(),
		Competition: s.cfg.Competition,
		StartedAt:   started,
	}
	defer func() { result.Duration = s.now().Sub(started) }()

	log := slog.With("cycle_id", result.CycleID)
	log.Info("Cycle starting")

	session, err := s.driver.Authenticate(ctx, s.cfg.Credentials)
	if err != nil {
		log.Error("Cycle aborted: authentication failed", "error", err)
		result.AbortError = err.Error()
		return result
	}

	matches, err := s.driver.ListMatches(ctx, session, s.cfg.Competition)
	if err != nil {
		log.Error("Cycle aborted: match list unavailable", "error", err)
		result.AbortError = err.Error()
		return result
	}
	log.Info("Fetched matches", "count", len(matches))

	eligible, rejected := eligibility.Filter(matches, s.now(), s.cfg.LeadTime, s.cfg.OverwriteTips)
	for _, r := range rejected {
		log.Debug("Match skipped", "match", r.Match.Name(), "reason", r.Reason)
		result.Add(r.Match, r.Reason)
	}
	log.Info("Eligibility filtered", "eligible", len(eligible), "skipped", len(rejected))

	if err := s.coordinator.ProcessMatches(ctx, session, eligible, result); err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			log.Info("Cycle interrupted by shutdown")
		case site.IsAuth(err):
			// No further submission can succeed without a fresh login;
			// the remaining matches wait for the next tick.
			log.Error("Cycle aborted: session invalid", "error", err)
			result.AbortError = err.Error()
		default:
			log.Error("Cycle aborted", "error", err)
			result.AbortError = err.Error()
		}
	}
	return result
}
