package membership

import (
	"fmt"
	"math"
	"time"

	"gymdesk/internal/member"
	"gymdesk/internal/plan"
	"gymdesk/internal/policy"
)

type Action string

const (
	ActionPause   Action = "pause"
	ActionUnpause Action = "unpause"
)

func (a Action) Valid() bool {
	return a == ActionPause || a == ActionUnpause
}

const (
	msgCannotPause   = "Cannot pause membership"
	msgCannotUnpause = "Cannot unpause membership"
)

// PauseEligibility is the pause state machine's view of one member. Reason
// explains why the requested action is not allowed and is empty otherwise.
type PauseEligibility struct {
	CanPause   bool   `json:"can_pause"`
	CanUnpause bool   `json:"can_unpause"`
	Reason     string `json:"reason,omitempty"`
	MaxPauses  int    `json:"max_pauses"`
}

func CheckPause(m *member.Member, p *plan.Plan, pol *policy.PausePolicy, action Action) PauseEligibility {
	pass := IsPassPlan(m.PlanType, p)

	e := PauseEligibility{CanUnpause: m.IsPaused}
	if !pass {
		e.MaxPauses = pol.MaxPauses(m.PlanDuration)
	}
	e.CanPause = !pass && !m.IsPaused && m.PauseCount < e.MaxPauses

	switch action {
	case ActionPause:
		if !e.CanPause {
			e.Reason = pauseDeniedReason(m, pass, e.MaxPauses)
		}
	case ActionUnpause:
		if !e.CanUnpause {
			e.Reason = "Membership is not paused"
		}
	}
	return e
}

func pauseDeniedReason(m *member.Member, pass bool, maxPauses int) string {
	switch {
	case pass:
		return "Pass and drop-in plans cannot be paused"
	case m.IsPaused:
		return "Membership is already paused"
	case maxPauses == 0:
		return "Your plan does not include pauses"
	case m.PauseCount >= maxPauses:
		return fmt.Sprintf("Pause limit reached (%d of %d used)", m.PauseCount, maxPauses)
	}
	return msgCannotPause
}

func deniedReason(e PauseEligibility, action Action) string {
	if e.Reason != "" {
		return e.Reason
	}
	if action == ActionUnpause {
		return msgCannotUnpause
	}
	return msgCannotPause
}

// pausedDays counts started days between start and end.
func pausedDays(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
