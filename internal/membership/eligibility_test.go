package membership

import (
	"testing"
	"time"

	"gymdesk/internal/plan"
	"gymdesk/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(t *testing.T) *policy.PausePolicy {
	t.Helper()
	p, err := policy.Parse("3:1,6:2,12:3")
	require.NoError(t, err)
	return p
}

func TestCheckPause(t *testing.T) {
	pol := testPolicy(t)

	tests := []struct {
		name       string
		planType   string
		duration   *int
		paused     bool
		pauseCount int
		action     Action
		canPause   bool
		canUnpause bool
		maxPauses  int
		reason     string
	}{
		{"duration plan with pauses left", "gym_monthly", intPtr(6), false, 1, ActionPause, true, false, 2, ""},
		{"limit reached", "gym_monthly", intPtr(6), false, 2, ActionPause, false, false, 2, "Pause limit reached (2 of 2 used)"},
		{"already paused", "gym_monthly", intPtr(12), true, 1, ActionPause, false, true, 3, "Membership is already paused"},
		{"below smallest tier", "gym_monthly", intPtr(1), false, 0, ActionPause, false, false, 0, "Your plan does not include pauses"},
		{"no duration", "gym_monthly", nil, false, 0, ActionPause, false, false, 0, "Your plan does not include pauses"},
		{"5pass never pauses", "gym_5pass", intPtr(12), false, 0, ActionPause, false, false, 0, "Pass and drop-in plans cannot be paused"},
		{"10pass never pauses", "gym_10pass", nil, false, 0, ActionPause, false, false, 0, "Pass and drop-in plans cannot be paused"},
		{"dropin never pauses", "gym_dropin", nil, false, 0, ActionPause, false, false, 0, "Pass and drop-in plans cannot be paused"},
		{"unpause when paused", "gym_monthly", intPtr(3), true, 1, ActionUnpause, false, true, 1, ""},
		{"unpause when not paused", "gym_monthly", intPtr(3), false, 0, ActionUnpause, true, false, 1, "Membership is not paused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := activeMember(tt.planType)
			m.PlanDuration = tt.duration
			m.IsPaused = tt.paused
			m.PauseCount = tt.pauseCount

			e := CheckPause(m, nil, pol, tt.action)
			assert.Equal(t, tt.canPause, e.CanPause)
			assert.Equal(t, tt.canUnpause, e.CanUnpause)
			assert.Equal(t, tt.maxPauses, e.MaxPauses)
			assert.Equal(t, tt.reason, e.Reason)
		})
	}
}

func TestCheckPause_CatalogPassPlan(t *testing.T) {
	m := activeMember("gym_punchcard")
	e := CheckPause(m, &plan.Plan{VisitLimit: intPtr(20)}, testPolicy(t), ActionPause)
	assert.False(t, e.CanPause)
	assert.Zero(t, e.MaxPauses)
}

func TestCheckPause_NilPolicy(t *testing.T) {
	e := CheckPause(activeMember("gym_monthly"), nil, nil, ActionPause)
	assert.False(t, e.CanPause)
	assert.Zero(t, e.MaxPauses)
}

func TestDeniedReasonFallback(t *testing.T) {
	assert.Equal(t, "Cannot pause membership", deniedReason(PauseEligibility{}, ActionPause))
	assert.Equal(t, "Cannot unpause membership", deniedReason(PauseEligibility{}, ActionUnpause))
	assert.Equal(t, "custom", deniedReason(PauseEligibility{Reason: "custom"}, ActionUnpause))
}

func TestPausedDays(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, pausedDays(start, start))
	assert.Equal(t, 0, pausedDays(start, start.Add(-time.Hour)))
	assert.Equal(t, 1, pausedDays(start, start.Add(time.Minute)))
	assert.Equal(t, 1, pausedDays(start, start.Add(24*time.Hour)))
	assert.Equal(t, 2, pausedDays(start, start.Add(25*time.Hour)))
	assert.Equal(t, 14, pausedDays(start, start.AddDate(0, 0, 14)))
}

func TestActionValid(t *testing.T) {
	assert.True(t, ActionPause.Valid())
	assert.True(t, ActionUnpause.Valid())
	assert.False(t, Action("freeze").Valid())
	assert.False(t, Action("").Valid())
}
