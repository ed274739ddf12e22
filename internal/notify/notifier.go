// Package notify delivers cycle results to the operator. Delivery is
// best-effort: a failed notification is logged and never affects tipping.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mwirth/tippbot/internal/pkg/models"
)

// Notifier receives the result of one cycle.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, result *models.CycleResult) error
}

// Multi fans a cycle result out to all configured notifiers. Errors are
// logged per notifier; Notify itself never fails.
type Multi struct {
	notifiers []Notifier
}

func NewMulti(notifiers ...Notifier) *Multi {
	var active []Notifier
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &Multi{notifiers: active}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Notify(ctx context.Context, result *models.CycleResult) error {
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, result); err != nil {
			slog.Error("Notification delivery failed", "notifier", n.Name(), "cycle_id", result.CycleID, "error", err)
		}
	}
	return nil
}

// Summary renders a human-readable cycle report shared by the text-based
// notifiers.
func Summary(result *models.CycleResult) string {
	var b strings.Builder

	if result.Aborted() {
		fmt.Fprintf(&b, "⚠️ Tipping cycle aborted: %s\n", result.AbortError)
	} else {
		b.WriteString("Tipping cycle finished\n")
	}
	fmt.Fprintf(&b, "Competition: %s\n", result.Competition)
	fmt.Fprintf(&b, "Submitted %d, failed %d, already tipped %d, not due %d, started %d, malformed odds %d\n",
		result.Count(models.OutcomeSubmitted),
		result.Count(models.OutcomeFailed),
		result.Count(models.OutcomeAlreadyTipped),
		result.Count(models.OutcomeNotDue),
		result.Count(models.OutcomeStarted),
		result.Count(models.OutcomeMalformed),
	)

	for _, m := range result.Matches {
		switch m.Outcome {
		case models.OutcomeSubmitted:
			fmt.Fprintf(&b, "✅ %s → %s (odds %.2f/%.2f/%.2f)\n",
				m.Match.Name(), m.Tip.Score(),
				m.Match.Odds.HomeWin, m.Match.Odds.Draw, m.Match.Odds.AwayWin)
		case models.OutcomeFailed:
			fmt.Fprintf(&b, "❌ %s: %s\n", m.Match.Name(), m.Error)
		case models.OutcomeMalformed:
			fmt.Fprintf(&b, "⏭ %s: unusable odds\n", m.Match.Name())
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
