// Package health serves liveness, run status, and prometheus metrics over
// HTTP while the bot loops in the background.
package health

import (
	"sync"
	"time"

	"github.com/mwirth/tippbot/internal/pkg/models"
)

// Status tracks bot run state for the /health endpoint.
type Status struct {
	mu            sync.Mutex
	startedAt     time.Time
	lastCycleAt   time.Time
	lastCycleID   string
	lastError     string
	totalCycles   int
	abortedCycles int
	submittedTips int
	stateFunc     func() string
}

func NewStatus() *Status {
	return &Status{startedAt: time.Now()}
}

// SetStateFunc installs the live scheduler-state source. Until one is set,
// the report shows "starting".
func (s *Status) SetStateFunc(f func() string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateFunc = f
}

func (s *Status) RecordCycle(result *models.CycleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalCycles++
	s.lastCycleAt = time.Now()
	s.lastCycleID = result.CycleID
	s.submittedTips += result.Count(models.OutcomeSubmitted)
	if result.Aborted() {
		s.abortedCycles++
		s.lastError = result.AbortError
	} else {
		s.lastError = ""
	}
}

// Report is the JSON body of /health.
type Report struct {
	Healthy        bool      `json:"healthy"`
	SchedulerState string    `json:"scheduler_state"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	StartedAt      time.Time `json:"started_at"`
	LastCycleAt    time.Time `json:"last_cycle_at,omitzero"`
	LastCycleID    string    `json:"last_cycle_id,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
	TotalCycles    int       `json:"total_cycles"`
	AbortedCycles  int       `json:"aborted_cycles"`
	SubmittedTips  int       `json:"submitted_tips"`
}

func (s *Status) Snapshot() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := "starting"
	if s.stateFunc != nil {
		state = s.stateFunc()
	}
	return Report{
		Healthy:        s.lastError == "",
		SchedulerState: state,
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		StartedAt:      s.startedAt,
		LastCycleAt:    s.lastCycleAt,
		LastCycleID:    s.lastCycleID,
		LastError:      s.lastError,
		TotalCycles:    s.totalCycles,
		AbortedCycles:  s.abortedCycles,
		SubmittedTips:  s.submittedTips,
	}
}
