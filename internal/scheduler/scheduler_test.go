package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mwirth/tippbot/internal/notify"
	"github.com/mwirth/tippbot/internal/pkg/models"
	"github.com/mwirth/tippbot/internal/predict"
	"github.com/mwirth/tippbot/internal/site"
	"github.com/mwirth/tippbot/internal/site/sitetest"
	"github.com/mwirth/tippbot/internal/tipper"
)

type captureNotifier struct {
	mu      sync.Mutex
	results []*models.CycleResult
}

func (c *captureNotifier) Name() string { return "capture" }
func (c *captureNotifier) Notify(ctx context.Context, result *models.CycleResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
	return nil
}

func (c *captureNotifier) all() []*models.CycleResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.CycleResult, len(c.results))
	copy(out, c.results)
	return out
}

func newScheduler(t *testing.T, driver site.Driver, n notify.Notifier, interval time.Duration) *Scheduler {
	t.Helper()
	p, err := predict.New(predict.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	coord := tipper.New(driver, p, tipper.Config{MaxAttempts: 3, RetryBackoff: time.Millisecond})
	return New(Config{
		Interval:    interval,
		LeadTime:    2 * time.Hour,
		Competition: "test-round",
		Credentials: site.Credentials{Email: "a@b.c", Password: "pw"},
	}, driver, coord, n)
}

func upcoming(id string, in time.Duration) models.Match {
	return models.Match{
		ID:       id,
		HomeTeam: "H" + id,
		AwayTeam: "A" + id,
		Kickoff:  time.Now().Add(in),
		Odds:     models.OddsTriple{HomeWin: 2.00, Draw: 3.40, AwayWin: 4.00},
		Tipped:   models.TippedStateOpen,
	}
}

func TestRunCycleSubmitsEligibleMatches(t *testing.T) {
	driver := &sitetest.Driver{
		Matches: []models.Match{
			upcoming("due", 30*time.Minute),
			upcoming("far", 24*time.Hour),
		},
	}
	s := newScheduler(t, driver, nil, time.Minute)

	result := s.RunCycle(context.Background())
	if result.Aborted() {
		t.Fatalf("cycle aborted: %s", result.AbortError)
	}
	if result.Count(models.OutcomeSubmitted) != 1 || result.Count(models.OutcomeNotDue) != 1 {
		t.Fatalf("result = %+v", result.Matches)
	}
	if result.CycleID == "" {
		t.Error("cycle id missing")
	}
}

func TestRunCycleAbortsOnAuthFailure(t *testing.T) {
	driver := &sitetest.Driver{
		AuthErrs: []error{&site.AuthError{Reason: "bad password"}},
		Matches:  []models.Match{upcoming("due", time.Hour)},
	}
	s := newScheduler(t, driver, nil, time.Minute)

	result := s.RunCycle(context.Background())
	if !result.Aborted() {
		t.Fatal("cycle should abort on auth failure")
	}
	if len(result.Matches) != 0 {
		t.Errorf("aborted cycle should hold no match entries, got %+v", result.Matches)
	}
	if driver.ListCalls != 0 {
		t.Error("match list must not be fetched without a session")
	}
}

func TestRunCycleAbortsOnFetchFailure(t *testing.T) {
	driver := &sitetest.Driver{
		ListErr: &site.FetchError{Op: "match list", Err: context.DeadlineExceeded},
	}
	s := newScheduler(t, driver, nil, time.Minute)

	result := s.RunCycle(context.Background())
	if !result.Aborted() {
		t.Fatal("cycle should abort on fetch failure")
	}
}

func TestSchedulerRecoversAfterAuthFailure(t *testing.T) {
	// First cycle fails to authenticate, the next tick still fires and
	// the second cycle succeeds.
	driver := &sitetest.Driver{
		AuthErrs: []error{&site.AuthError{Reason: "transient outage"}},
		Matches:  []models.Match{upcoming("due", time.Hour)},
	}
	n := &captureNotifier{}
	s := newScheduler(t, driver, n, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		results := n.all()
		if len(results) >= 2 {
			if !results[0].Aborted() {
				t.Error("first cycle should be aborted")
			}
			if results[1].Aborted() || results[1].Count(models.OutcomeSubmitted) != 1 {
				t.Errorf("second cycle = %+v", results[1])
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("saw %d cycle results, want 2", len(results))
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	if s.State() != StateIdle {
		t.Errorf("state after stop = %s", s.State())
	}
}

func TestSchedulerStopsCleanlyMidIdle(t *testing.T) {
	driver := &sitetest.Driver{}
	s := newScheduler(t, driver, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	// Let the immediate first cycle pass, then cancel during the idle wait.
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	if driver.AuthCalls != 1 {
		t.Errorf("auth calls = %d, want exactly the immediate first cycle", driver.AuthCalls)
	}
}
