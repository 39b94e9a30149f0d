package membership

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gymdesk/internal/checkin"
	"gymdesk/internal/member"
	"gymdesk/internal/plan"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
	StatusInactive Status = "inactive"
	StatusPaused   Status = "paused"
)

const dateLayout = "Jan 2, 2006"

const (
	msgInactive  = "Membership is inactive. Please contact reception to reactivate."
	msgPaused    = "Membership is currently paused. Please contact reception to resume."
	msgNoVisits  = "No remaining visits on your pass. Please purchase a new pass."
	dropInVisits = 1
)

var passTag = regexp.MustCompile(`(\d+)pass`)

// facilityTags maps a facility to the substring a plan type must contain.
var facilityTags = map[checkin.FacilityType]string{
	checkin.FacilityGym:          "gym",
	checkin.FacilityCrossfit:     "crossfit",
	checkin.FacilityFitnessClass: "fitness",
}

// Decision is the outcome of evaluating one check-in attempt.
// RemainingVisits is the balance before this visit and is nil for
// unlimited plans.
type Decision struct {
	Authorized      bool
	Status          Status
	Message         string
	CurrentEndDate  *time.Time
	RemainingVisits *int
	VisitLimit      int
}

func ValidFacility(f checkin.FacilityType) bool {
	_, ok := facilityTags[f]
	return ok
}

// Evaluate decides whether m may enter facility at now. p is the catalog
// entry for m's plan type and may be nil. Evaluate has no side effects.
func Evaluate(m *member.Member, p *plan.Plan, facility checkin.FacilityType, now time.Time) (Decision, error) {
	tag, ok := facilityTags[facility]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %q", ErrInvalidFacility, facility)
	}
	if m == nil {
		return Decision{}, ErrMemberNotFound
	}

	d := Decision{CurrentEndDate: m.CurrentEndDate}

	switch {
	case !m.IsActive:
		d.Status, d.Message = StatusInactive, msgInactive
		return d, nil
	case m.IsPaused:
		d.Status, d.Message = StatusPaused, msgPaused
		return d, nil
	case m.CurrentEndDate != nil && m.CurrentEndDate.Before(now):
		d.Status = StatusExpired
		d.Message = fmt.Sprintf("Membership expired on %s. Please renew to continue training.",
			m.CurrentEndDate.Format(dateLayout))
		return d, nil
	}

	d.Status = StatusActive
	if !strings.Contains(strings.ToLower(m.PlanType), tag) {
		d.Message = fmt.Sprintf("Your plan does not include access to %s.", facility)
		return d, nil
	}

	if limit, ok := VisitLimit(m.PlanType, p); ok {
		remaining := RemainingVisits(m, limit)
		d.VisitLimit = limit
		d.RemainingVisits = &remaining
		if remaining <= 0 {
			d.Status, d.Message = StatusExpired, msgNoVisits
			return d, nil
		}
		d.Authorized = true
		d.Message = passWelcome(m.Name, remaining-1)
		return d, nil
	}

	d.Authorized = true
	d.Message = durationWelcome(m.Name, m.CurrentEndDate)
	return d, nil
}

// VisitLimit reports the number of visits a pass plan grants. The catalog's
// visit limit wins over the number in the plan type tag.
func VisitLimit(planType string, p *plan.Plan) (int, bool) {
	if p != nil && p.VisitLimit != nil && *p.VisitLimit > 0 {
		return *p.VisitLimit, true
	}
	if m := passTag.FindStringSubmatch(strings.ToLower(planType)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n, true
		}
	}
	if isDropIn(planType, p) {
		return dropInVisits, true
	}
	return 0, false
}

// IsPassPlan reports whether planType is visit-based rather than duration-based.
func IsPassPlan(planType string, p *plan.Plan) bool {
	_, ok := VisitLimit(planType, p)
	return ok
}

// RemainingVisits reads the pass balance, deriving it from usedVisits when
// the counter was never initialised.
func RemainingVisits(m *member.Member, limit int) int {
	if m.RemainingVisits != nil {
		return max(*m.RemainingVisits, 0)
	}
	return max(limit-m.UsedVisits, 0)
}

func isDropIn(planType string, p *plan.Plan) bool {
	if p != nil && p.IsDropIn {
		return true
	}
	return strings.Contains(strings.ToLower(planType), "dropin")
}

func passWelcome(name string, remaining int) string {
	return fmt.Sprintf("Welcome, %s! %d visit(s) remaining on your pass.", name, remaining)
}

func durationWelcome(name string, end *time.Time) string {
	if end == nil {
		return fmt.Sprintf("Welcome, %s! Membership is active.", name)
	}
	return fmt.Sprintf("Welcome, %s! Membership valid until %s.", name, end.Format(dateLayout))
}
