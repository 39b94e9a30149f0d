package membership

import (
	"errors"
	"fmt"

	"gymdesk/internal/api"
	"gymdesk/internal/member"
	"gymdesk/internal/pause"
	"gymdesk/internal/plan"
)

var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrInvalidFacility = errors.New("invalid facility type")
	ErrInvalidAction   = errors.New("action must be pause or unpause")
	// ErrVisitConflict means the visit counter changed between evaluation and
	// decrement.
	ErrVisitConflict = errors.New("visit counter changed by a concurrent check-in")
)

const (
	msgMemberNotFound = "Member not found"
	msgPlanNotFound   = "Plan not found"
	msgVisitConflict  = "Check-in conflicted with another request. Please try again."
	msgPauseOpen      = "Membership already has an open pause"
)

// classify turns repository and engine errors into api errors. Errors that
// are already classified pass through.
func classify(op string, err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, member.ErrNotFound), errors.Is(err, ErrMemberNotFound):
		return api.NotFound(msgMemberNotFound)
	case errors.Is(err, plan.ErrNotFound):
		return api.NotFound(msgPlanNotFound)
	case errors.Is(err, member.ErrDuplicateIdentity):
		return api.Conflict(member.ErrDuplicateIdentity.Error(), err)
	case errors.Is(err, ErrVisitConflict):
		return api.Conflict(msgVisitConflict, err)
	case errors.Is(err, pause.ErrPauseAlreadyOpen):
		return api.Conflict(msgPauseOpen, err)
	case errors.Is(err, ErrInvalidFacility), errors.Is(err, ErrInvalidAction):
		return api.InvalidRequest(err.Error())
	}
	return api.Storage(op, fmt.Errorf("%s: %w", op, err))
}
