package membership

import (
	"context"
	"errors"
	"strings"
	"time"

	"gymdesk/internal/api"
	"gymdesk/internal/checkin"
	"gymdesk/internal/db"
	"gymdesk/internal/logger"
	"gymdesk/internal/member"
	"gymdesk/internal/metrics"
	"gymdesk/internal/pause"
	"gymdesk/internal/payment"
	"gymdesk/internal/plan"
	"gymdesk/internal/policy"
	"gymdesk/internal/store"

	"github.com/shopspring/decimal"
)

// lowVisitThreshold is the balance at or below which members get a reminder
// to buy a new pass.
const lowVisitThreshold = 1

// Notifier delivers member emails. Delivery failures are logged and never
// fail the request that triggered them.
type Notifier interface {
	SendPauseConfirmation(ctx context.Context, to, name string, paused bool, currentEnd *time.Time) error
	SendLowVisitsWarning(ctx context.Context, to, name string, remaining int) error
	SendPaymentReceipt(ctx context.Context, to, name string, amount decimal.Decimal, method string, paidAt time.Time) error
}

type CheckInRequest struct {
	MemberID     int                  `json:"member_id"`
	Identifier   string               `json:"identifier"`
	FacilityType checkin.FacilityType `json:"facility_type" binding:"required"`
}

type CheckInResult struct {
	Success          bool       `json:"success"`
	Message          string     `json:"message"`
	MembershipStatus Status     `json:"membership_status"`
	CurrentEndDate   *time.Time `json:"current_end_date"`
	RemainingVisits  *int       `json:"remaining_visits,omitempty"`
	MemberID         int        `json:"member_id"`
	MemberName       string     `json:"member_name"`
}

type PauseRequest struct {
	MemberID int     `json:"-"`
	Action   Action  `json:"action" binding:"required"`
	Reason   *string `json:"reason"`
}

type PauseResult struct {
	Success        bool       `json:"success"`
	PauseCount     int        `json:"pause_count"`
	MaxPauses      int        `json:"max_pauses"`
	IsPaused       bool       `json:"is_paused"`
	CurrentEndDate *time.Time `json:"current_end_date"`
}

type PauseStatusResult struct {
	MemberID   int           `json:"member_id"`
	IsPaused   bool          `json:"is_paused"`
	PauseCount int           `json:"pause_count"`
	MaxPauses  int           `json:"max_pauses"`
	CanPause   bool          `json:"can_pause"`
	CanUnpause bool          `json:"can_unpause"`
	Reason     string        `json:"reason,omitempty"`
	History    []pause.Pause `json:"history"`
}

type CreatePaymentRequest struct {
	MemberID      int             `json:"member_id" binding:"required"`
	PlanID        *int            `json:"plan_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   *time.Time      `json:"payment_date"`
	PaymentMethod payment.Method  `json:"payment_method"`
}

type InitialPayment struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   *time.Time      `json:"payment_date"`
	PaymentMethod payment.Method  `json:"payment_method"`
}

type RegisterRequest struct {
	Name          string          `json:"name" binding:"required"`
	Email         *string         `json:"email" binding:"omitempty,email"`
	Phone         *string         `json:"phone"`
	PassportID    *string         `json:"passport_id"`
	NationalityID *string         `json:"nationality_id"`
	PlanType      string          `json:"plan_type" binding:"required"`
	StartDate     *time.Time      `json:"start_date"`
	Payment       *InitialPayment `json:"payment"`
}

type RegisterResult struct {
	Member  *member.Member   `json:"member"`
	Payment *payment.Payment `json:"payment,omitempty"`
}

type Service struct {
	store    store.Store
	policy   *policy.PausePolicy
	notifier Notifier
}

// NewService wires the engine to its store. notifier may be nil.
func NewService(s store.Store, pol *policy.PausePolicy, notifier Notifier) *Service {
	return &Service{store: s, policy: pol, notifier: notifier}
}

// CheckIn evaluates and, when authorized, records one visit. Denials are
// returned as a result with Success false. A lost race on the visit counter
// is retried once with fresh state.
func (s *Service) CheckIn(ctx context.Context, req CheckInRequest, now time.Time) (*CheckInResult, error) {
	if err := validateCheckIn(req); err != nil {
		return nil, err
	}

	var (
		result *CheckInResult
		m      *member.Member
		err    error
	)
	for attempt := 0; attempt < 2; attempt++ {
		err = s.store.InTx(ctx, func(r store.Repos) error {
			locked, err := lockMember(ctx, r, req)
			if err != nil {
				return err
			}
			m = locked
			p, err := planFor(ctx, r, m.PlanType)
			if err != nil {
				return err
			}

			d, err := Evaluate(m, p, req.FacilityType, now)
			if err != nil {
				return err
			}
			result = resultFor(m, d)
			if !d.Authorized {
				return nil
			}

			remaining, err := RecordVisit(ctx, r, m, d.VisitLimit, req.FacilityType, now)
			if err != nil {
				return err
			}
			if remaining != nil {
				result.RemainingVisits = remaining
				result.Message = passWelcome(m.Name, *remaining)
			}
			return nil
		})
		if err == nil || !retryable(err) {
			break
		}
		metrics.RecordVisitConflict()
		logger.Warn("check-in conflict, retrying", "attempt", attempt+1, "error", err)
	}
	if err != nil {
		return nil, classify("check in", err)
	}

	outcome := "allowed"
	if !result.Success {
		outcome = string(result.MembershipStatus)
	}
	metrics.RecordCheckIn(string(req.FacilityType), outcome)

	if result.Success && result.RemainingVisits != nil && *result.RemainingVisits <= lowVisitThreshold {
		s.notify(ctx, "low visits", m, func(n Notifier, to string) error {
			return n.SendLowVisitsWarning(ctx, to, m.Name, *result.RemainingVisits)
		})
	}
	return result, nil
}

// Preview evaluates a check-in without recording it.
func (s *Service) Preview(ctx context.Context, req CheckInRequest, now time.Time) (*CheckInResult, error) {
	if err := validateCheckIn(req); err != nil {
		return nil, err
	}

	m, err := findMember(ctx, s.store, req)
	if err != nil {
		return nil, classify("preview check-in", err)
	}
	p, err := planFor(ctx, s.store, m.PlanType)
	if err != nil {
		return nil, classify("preview check-in", err)
	}

	d, err := Evaluate(m, p, req.FacilityType, now)
	if err != nil {
		return nil, classify("preview check-in", err)
	}
	return resultFor(m, d), nil
}

// SetPause applies a pause or unpause. The member row and its pause history
// change in one transaction. Unpausing a duration plan pushes the current
// end date forward by the days spent paused.
func (s *Service) SetPause(ctx context.Context, req PauseRequest, now time.Time) (*PauseResult, error) {
	if !req.Action.Valid() {
		return nil, api.InvalidRequest(ErrInvalidAction.Error())
	}

	var (
		updated *member.Member
		elig    PauseEligibility
	)
	err := s.store.InTx(ctx, func(r store.Repos) error {
		m, err := r.Members().FindByIDForUpdate(ctx, req.MemberID)
		if err != nil {
			return err
		}
		p, err := planFor(ctx, r, m.PlanType)
		if err != nil {
			return err
		}

		elig = CheckPause(m, p, s.policy, req.Action)
		if req.Action == ActionPause {
			if !elig.CanPause {
				return api.PolicyDenied(deniedReason(elig, req.Action))
			}
			if _, err := r.Pauses().Insert(ctx, m.ID, now, req.Reason); err != nil {
				return err
			}
			updated, err = r.Members().SetPauseState(ctx, m.ID, true, m.PauseCount+1)
			return err
		}

		if !elig.CanUnpause {
			return api.PolicyDenied(deniedReason(elig, req.Action))
		}
		closed, err := r.Pauses().CloseOpen(ctx, m.ID, now)
		switch {
		case errors.Is(err, pause.ErrNoOpenPause):
			logger.Warn("paused member has no open pause row", "member_id", m.ID)
		case err != nil:
			return err
		case m.CurrentEndDate != nil && !IsPassPlan(m.PlanType, p):
			if days := pausedDays(closed.StartDate, now); days > 0 {
				if err := r.Members().ExtendEndDate(ctx, m.ID, m.CurrentEndDate.AddDate(0, 0, days)); err != nil {
					return err
				}
			}
		}
		updated, err = r.Members().SetPauseState(ctx, m.ID, false, m.PauseCount)
		return err
	})
	if err != nil {
		return nil, classify("set pause", err)
	}

	metrics.RecordPause(string(req.Action))
	s.notify(ctx, "pause confirmation", updated, func(n Notifier, to string) error {
		return n.SendPauseConfirmation(ctx, to, updated.Name, updated.IsPaused, updated.CurrentEndDate)
	})

	return &PauseResult{
		Success:        true,
		PauseCount:     updated.PauseCount,
		MaxPauses:      elig.MaxPauses,
		IsPaused:       updated.IsPaused,
		CurrentEndDate: updated.CurrentEndDate,
	}, nil
}

func (s *Service) PauseStatus(ctx context.Context, memberID int) (*PauseStatusResult, error) {
	m, err := s.store.Members().FindByID(ctx, memberID)
	if err != nil {
		return nil, classify("pause status", err)
	}
	p, err := planFor(ctx, s.store, m.PlanType)
	if err != nil {
		return nil, classify("pause status", err)
	}
	history, err := s.store.Pauses().ListByMember(ctx, memberID)
	if err != nil {
		return nil, classify("pause status", err)
	}

	next := ActionPause
	if m.IsPaused {
		next = ActionUnpause
	}
	e := CheckPause(m, p, s.policy, next)

	return &PauseStatusResult{
		MemberID:   m.ID,
		IsPaused:   m.IsPaused,
		PauseCount: m.PauseCount,
		MaxPauses:  e.MaxPauses,
		CanPause:   e.CanPause,
		CanUnpause: e.CanUnpause,
		Reason:     e.Reason,
		History:    history,
	}, nil
}

// CreatePayment records a payment. Share amounts come from the plan's
// current percentages and are stored with the payment.
func (s *Service) CreatePayment(ctx context.Context, req CreatePaymentRequest, now time.Time) (*payment.Payment, error) {
	method, err := validatePayment(req.Amount, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	var (
		created *payment.Payment
		m       *member.Member
	)
	err = s.store.InTx(ctx, func(r store.Repos) error {
		m, err = r.Members().FindByID(ctx, req.MemberID)
		if err != nil {
			return err
		}

		var p *plan.Plan
		if req.PlanID != nil {
			if p, err = r.Plans().FindByID(ctx, *req.PlanID); err != nil {
				return err
			}
		}

		created, err = r.Payments().Insert(ctx, newPayment(m.ID, p, req.Amount, method, dateOr(req.PaymentDate, now)))
		return err
	})
	if err != nil {
		return nil, classify("create payment", err)
	}

	s.paymentRecorded(ctx, m, created)
	return created, nil
}

// Register creates a member on plan type req.PlanType, with an optional first
// payment, in one transaction.
func (s *Service) Register(ctx context.Context, req RegisterRequest, now time.Time) (*RegisterResult, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, api.InvalidRequest("name is required")
	}
	var method payment.Method
	if req.Payment != nil {
		var err error
		if method, err = validatePayment(req.Payment.Amount, req.Payment.PaymentMethod); err != nil {
			return nil, err
		}
	}

	res := &RegisterResult{}
	err := s.store.InTx(ctx, func(r store.Repos) error {
		p, err := r.Plans().FindByType(ctx, req.PlanType)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return api.InvalidRequest("plan is no longer offered")
		}

		res.Member, err = r.Members().Create(ctx, newMember(req, p, now))
		if err != nil {
			return err
		}

		if req.Payment != nil {
			pay := newPayment(res.Member.ID, p, req.Payment.Amount, method, dateOr(req.Payment.PaymentDate, now))
			res.Payment, err = r.Payments().Insert(ctx, pay)
		}
		return err
	})
	if err != nil {
		return nil, classify("register member", err)
	}

	if res.Payment != nil {
		s.paymentRecorded(ctx, res.Member, res.Payment)
	}
	return res, nil
}

func (s *Service) CheckInStats(ctx context.Context, from, to time.Time) ([]checkin.FacilityCount, error) {
	counts, err := s.store.CheckIns().CountByFacility(ctx, from, to)
	if err != nil {
		return nil, classify("check-in stats", err)
	}
	return counts, nil
}

func (s *Service) RevenueStats(ctx context.Context, from, to time.Time) (*payment.RevenueSummary, error) {
	summary, err := s.store.Payments().RevenueSummary(ctx, from, to)
	if err != nil {
		return nil, classify("revenue stats", err)
	}
	return summary, nil
}

func (s *Service) MemberCheckIns(ctx context.Context, memberID, limit, offset int) ([]checkin.CheckIn, error) {
	if _, err := s.store.Members().FindByID(ctx, memberID); err != nil {
		return nil, classify("list check-ins", err)
	}
	list, err := s.store.CheckIns().ListByMember(ctx, memberID, limit, offset)
	if err != nil {
		return nil, classify("list check-ins", err)
	}
	return list, nil
}

func (s *Service) MemberPayments(ctx context.Context, memberID int) ([]payment.Payment, error) {
	if _, err := s.store.Members().FindByID(ctx, memberID); err != nil {
		return nil, classify("list payments", err)
	}
	list, err := s.store.Payments().ListByMember(ctx, memberID)
	if err != nil {
		return nil, classify("list payments", err)
	}
	return list, nil
}

func (s *Service) paymentRecorded(ctx context.Context, m *member.Member, p *payment.Payment) {
	var gym, crossfit float64
	if p.GymShareAmount != nil {
		gym = p.GymShareAmount.InexactFloat64()
	}
	if p.CrossfitShareAmount != nil {
		crossfit = p.CrossfitShareAmount.InexactFloat64()
	}
	metrics.RecordPayment(string(p.PaymentMethod), gym, crossfit)

	s.notify(ctx, "payment receipt", m, func(n Notifier, to string) error {
		return n.SendPaymentReceipt(ctx, to, m.Name, p.Amount, string(p.PaymentMethod), p.PaymentDate)
	})
}

func (s *Service) notify(ctx context.Context, kind string, m *member.Member, send func(Notifier, string) error) {
	if s.notifier == nil || m == nil || m.Email == nil || *m.Email == "" {
		return
	}
	if err := send(s.notifier, *m.Email); err != nil {
		logger.Warn("notification failed", "kind", kind, "member_id", m.ID, "error", err)
	}
}

func validateCheckIn(req CheckInRequest) error {
	if req.MemberID <= 0 && strings.TrimSpace(req.Identifier) == "" {
		return api.InvalidRequest("member_id or identifier is required")
	}
	if !ValidFacility(req.FacilityType) {
		return api.InvalidRequest("facility_type must be one of gym, crossfit, fitness_class")
	}
	return nil
}

func validatePayment(amount decimal.Decimal, method payment.Method) (payment.Method, error) {
	if !amount.IsPositive() {
		return "", api.InvalidRequest("amount must be positive")
	}
	if method == "" {
		return payment.MethodCash, nil
	}
	if !method.Valid() {
		return "", api.InvalidRequest("payment_method must be one of cash, card, transfer, online")
	}
	return method, nil
}

func lockMember(ctx context.Context, r store.Repos, req CheckInRequest) (*member.Member, error) {
	if req.MemberID > 0 {
		return r.Members().FindByIDForUpdate(ctx, req.MemberID)
	}
	return r.Members().FindByIdentifierForUpdate(ctx, strings.TrimSpace(req.Identifier))
}

func findMember(ctx context.Context, r store.Repos, req CheckInRequest) (*member.Member, error) {
	if req.MemberID > 0 {
		return r.Members().FindByID(ctx, req.MemberID)
	}
	return r.Members().FindByIdentifier(ctx, strings.TrimSpace(req.Identifier))
}

// planFor looks up the catalog entry for a member's plan type. Members on
// retired or unknown plan types evaluate on their tag alone.
func planFor(ctx context.Context, r store.Repos, planType string) (*plan.Plan, error) {
	p, err := r.Plans().FindByType(ctx, planType)
	if errors.Is(err, plan.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func retryable(err error) bool {
	return errors.Is(err, ErrVisitConflict) || db.IsRetryable(err)
}

func resultFor(m *member.Member, d Decision) *CheckInResult {
	return &CheckInResult{
		Success:          d.Authorized,
		Message:          d.Message,
		MembershipStatus: d.Status,
		CurrentEndDate:   d.CurrentEndDate,
		RemainingVisits:  d.RemainingVisits,
		MemberID:         m.ID,
		MemberName:       m.Name,
	}
}

func newMember(req RegisterRequest, p *plan.Plan, now time.Time) *member.Member {
	start := dateOr(req.StartDate, now)
	m := &member.Member{
		Name:          strings.TrimSpace(req.Name),
		Email:         req.Email,
		Phone:         req.Phone,
		PassportID:    req.PassportID,
		NationalityID: req.NationalityID,
		PlanType:      p.PlanType,
		PlanDuration:  p.DurationMonths,
		StartDate:     start,
		IsActive:      true,
	}
	if p.DurationMonths != nil {
		end := start.AddDate(0, *p.DurationMonths, 0)
		current := end
		m.OriginalEndDate = &end
		m.CurrentEndDate = &current
	}
	if limit, ok := VisitLimit(p.PlanType, p); ok {
		m.RemainingVisits = &limit
	}
	return m
}

func newPayment(memberID int, p *plan.Plan, amount decimal.Decimal, method payment.Method, at time.Time) *payment.Payment {
	pay := &payment.Payment{
		MemberID:      memberID,
		Amount:        amount,
		PaymentDate:   at,
		PaymentMethod: method,
	}
	if p != nil {
		pay.PlanID = &p.ID
	}
	if shares := payment.SharesForPlan(amount, p); shares != nil {
		pay.GymShareAmount = &shares.GymShareAmount
		pay.CrossfitShareAmount = &shares.CrossfitShareAmount
	}
	return pay
}

func dateOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil || t.IsZero() {
		return fallback
	}
	return *t
}
