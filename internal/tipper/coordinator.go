// Package tipper coordinates the per-match "predict → submit → verify"
// sequence. One match's failure never aborts the cycle; only an invalid
// session escalates to the scheduler.
package tipper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mwirth/tippbot/internal/odds"
	"github.com/mwirth/tippbot/internal/pkg/models"
	"github.com/mwirth/tippbot/internal/predict"
	"github.com/mwirth/tippbot/internal/site"
)

type Config struct {
	// MaxAttempts bounds one submission's tries on transient errors.
	MaxAttempts int
	// RetryBackoff is the first retry delay; it grows linearly per attempt.
	RetryBackoff time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 3
	}
	if out.RetryBackoff <= 0 {
		out.RetryBackoff = 2 * time.Second
	}
	return out
}

type Coordinator struct {
	driver    site.Driver
	predictor *predict.Predictor
	cfg       Config
}

func New(driver site.Driver, predictor *predict.Predictor, cfg Config) *Coordinator {
	return &Coordinator{driver: driver, predictor: predictor, cfg: cfg.withDefaults()}
}

// ProcessMatches runs every eligible match to completion and records the
// outcome in result. It returns an error only when the session became
// invalid (or the context was cancelled); matches not yet processed at that
// point stay absent from the result.
func (c *Coordinator) ProcessMatches(ctx context.Context, session *site.Session, matches []models.Match, result *models.CycleResult) error {
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.processMatch(ctx, session, m, result); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) processMatch(ctx context.Context, session *site.Session, m models.Match, result *models.CycleResult) error {
	dist, err := odds.Normalize(m.Odds)
	if err != nil {
		var malformed *odds.MalformedOddsError
		if errors.As(err, &malformed) {
			// Odds will not self-correct within the cycle; skip, no retry.
			slog.Warn("Skipping match with malformed odds", "match", m.Name(), "error", err)
			result.Add(m, models.OutcomeMalformed)
			return nil
		}
		result.AddFailed(m, err)
		return nil
	}

	tip := c.predictor.Predict(m.ID, dist)
	slog.Info("Predicted tip",
		"match", m.Name(),
		"tip", tip.Score(),
		"p_home", fmt.Sprintf("%.3f", dist.Home),
		"p_draw", fmt.Sprintf("%.3f", dist.Draw),
		"p_away", fmt.Sprintf("%.3f", dist.Away),
	)

	if err := c.submitWithRetry(ctx, session, m, tip); err != nil {
		if site.IsAuth(err) || ctx.Err() != nil {
			return err
		}
		slog.Error("Tip submission failed", "match", m.Name(), "error", err)
		result.AddFailed(m, err)
		return nil
	}

	if err := c.verify(ctx, session, m, tip); err != nil {
		if site.IsAuth(err) || ctx.Err() != nil {
			return err
		}
		// Unverified submissions count as failed even when the site
		// accepted the request, so notifications never overreport.
		slog.Error("Tip verification failed", "match", m.Name(), "error", err)
		result.AddFailed(m, err)
		return nil
	}

	slog.Info("Tip submitted and verified", "match", m.Name(), "tip", tip.Score())
	result.AddSubmitted(m, tip)
	return nil
}

func (c *Coordinator) submitWithRetry(ctx context.Context, session *site.Session, m models.Match, tip models.Tip) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		lastErr = c.driver.SubmitTip(ctx, session, m.Competition, tip)
		if lastErr == nil {
			return nil
		}
		if site.IsAuth(lastErr) || !site.IsTransient(lastErr) {
			return lastErr
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}

		backoff := time.Duration(attempt) * c.cfg.RetryBackoff
		slog.Warn("Transient submission error, retrying",
			"match", m.Name(), "attempt", attempt, "backoff", backoff, "error", lastErr)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("submission gave up after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}

func (c *Coordinator) verify(ctx context.Context, session *site.Session, m models.Match, tip models.Tip) error {
	state, onSite, err := c.driver.VerifyTip(ctx, session, m.ID)
	if err != nil {
		return fmt.Errorf("verify submission: %w", err)
	}
	if state != models.TippedStateTipped || onSite == nil {
		return fmt.Errorf("site does not report match %s as tipped after submission", m.ID)
	}
	if onSite.HomeGoals != tip.HomeGoals || onSite.AwayGoals != tip.AwayGoals {
		return fmt.Errorf("verification mismatch: submitted %s but site holds %s", tip.Score(), onSite.Score())
	}
	return nil
}
