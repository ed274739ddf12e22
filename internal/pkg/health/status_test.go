package health

import (
	"testing"

	"github.com/mwirth/tippbot/internal/pkg/models"
)

func TestStatusSchedulerState(t *testing.T) {
	s := NewStatus()
	if got := s.Snapshot().SchedulerState; got != "starting" {
		t.Errorf("state before wiring = %q, want starting", got)
	}
	s.SetStateFunc(func() string { return "running" })
	if got := s.Snapshot().SchedulerState; got != "running" {
		t.Errorf("state = %q, want running", got)
	}
}

func TestStatusRecordCycle(t *testing.T) {
	s := NewStatus()

	ok := &models.CycleResult{CycleID: "c1"}
	ok.AddSubmitted(models.Match{ID: "1"}, models.Tip{MatchID: "1", HomeGoals: 1})
	ok.AddSubmitted(models.Match{ID: "2"}, models.Tip{MatchID: "2", HomeGoals: 2})
	s.RecordCycle(ok)

	r := s.Snapshot()
	if !r.Healthy || r.TotalCycles != 1 || r.SubmittedTips != 2 || r.LastCycleID != "c1" {
		t.Errorf("report after good cycle: %+v", r)
	}

	s.RecordCycle(&models.CycleResult{CycleID: "c2", AbortError: "fetch failed"})
	r = s.Snapshot()
	if r.Healthy || r.AbortedCycles != 1 || r.LastError != "fetch failed" {
		t.Errorf("report after aborted cycle: %+v", r)
	}

	// A following good cycle clears the error.
	s.RecordCycle(&models.CycleResult{CycleID: "c3"})
	r = s.Snapshot()
	if !r.Healthy || r.TotalCycles != 3 || r.LastError != "" {
		t.Errorf("report after recovery: %+v", r)
	}
}
