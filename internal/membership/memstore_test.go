package membership

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"gymdesk/internal/checkin"
	"gymdesk/internal/member"
	"gymdesk/internal/pause"
	"gymdesk/internal/payment"
	"gymdesk/internal/plan"
	"gymdesk/internal/store"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory store.Store. Transactions are serialised by a
// mutex, which stands in for the row lock Postgres takes on the member, and
// a failed transaction restores the state it started from.
type memStore struct {
	mu    sync.Mutex
	state *memState

	txCount int
	// failures injected into the next matching call, consumed once
	consumeErrs    []error
	insertCheckErr error
	insertPayErr   error
}

type memState struct {
	nextID   int
	members  map[int]member.Member
	plans    map[int]plan.Plan
	pauses   []pause.Pause
	checkins []checkin.CheckIn
	payments []payment.Payment
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		nextID:  100,
		members: map[int]member.Member{},
		plans:   map[int]plan.Plan{},
	}}
}

func (st *memState) clone() *memState {
	c := &memState{
		nextID:   st.nextID,
		members:  make(map[int]member.Member, len(st.members)),
		plans:    make(map[int]plan.Plan, len(st.plans)),
		pauses:   append([]pause.Pause(nil), st.pauses...),
		checkins: append([]checkin.CheckIn(nil), st.checkins...),
		payments: append([]payment.Payment(nil), st.payments...),
	}
	for k, v := range st.members {
		c.members[k] = v
	}
	for k, v := range st.plans {
		c.plans[k] = v
	}
	return c
}

func (st *memState) id() int {
	st.nextID++
	return st.nextID
}

func (s *memStore) InTx(ctx context.Context, fn func(store.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txCount++
	snapshot := s.state.clone()
	if err := fn(memRepos{s: s}); err != nil {
		*s.state = *snapshot
		return err
	}
	return nil
}

func (s *memStore) Members() member.Repository { return memRepos{s: s}.Members() }
func (s *memStore) Plans() plan.Repository { return memRepos{s: s}.Plans() }
func (s *memStore) Pauses() pause.Repository { return memRepos{s: s}.Pauses() }
func (s *memStore) CheckIns() checkin.Repository { return memRepos{s: s}.CheckIns() }
func (s *memStore) Payments() payment.Repository { return memRepos{s: s}.Payments() }

// seed helpers

func (s *memStore) addPlan(p plan.Plan) plan.Plan {
	p.ID = s.state.id()
	s.state.plans[p.ID] = p
	return p
}

func (s *memStore) addMember(m member.Member) member.Member {
	m.ID = s.state.id()
	s.state.members[m.ID] = m
	return m
}

func (s *memStore) member(id int) member.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.members[id]
}

func (s *memStore) checkInCount(memberID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.state.checkins {
		if c.MemberID == memberID {
			n++
		}
	}
	return n
}

type memRepos struct{ s *memStore }

func (r memRepos) Members() member.Repository { return memMembers{r.s} }
func (r memRepos) Plans() plan.Repository { return memPlans{r.s} }
func (r memRepos) Pauses() pause.Repository { return memPauses{r.s} }
func (r memRepos) CheckIns() checkin.Repository { return memCheckIns{r.s} }
func (r memRepos) Payments() payment.Repository { return memPayments{r.s} }

type memMembers struct{ s *memStore }

func (r memMembers) live(id int) (member.Member, error) {
	m, ok := r.s.state.members[id]
	if !ok || m.DeletedAt != nil {
		return member.Member{}, member.ErrNotFound
	}
	return m, nil
}

func (r memMembers) Create(ctx context.Context, m *member.Member) (*member.Member, error) {
	for _, other := range r.s.state.members {
		if other.DeletedAt == nil && (sameValue(other.Email, m.Email) || sameValue(other.Phone, m.Phone) ||
			sameValue(other.PassportID, m.PassportID) || sameValue(other.NationalityID, m.NationalityID)) {
			return nil, member.ErrDuplicateIdentity
		}
	}
	c := *m
	c.ID = r.s.state.id()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.s.state.members[c.ID] = c
	return &c, nil
}

func sameValue(a, b *string) bool {
	return a != nil && b != nil && strings.EqualFold(*a, *b)
}

func (r memMembers) FindByID(ctx context.Context, id int) (*member.Member, error) {
	m, err := r.live(id)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r memMembers) FindByIDForUpdate(ctx context.Context, id int) (*member.Member, error) {
	return r.FindByID(ctx, id)
}

func (r memMembers) FindByIdentifier(ctx context.Context, identifier string) (*member.Member, error) {
	id, _ := strconv.Atoi(identifier)
	best := 0
	for _, m := range r.s.state.members {
		if m.DeletedAt != nil {
			continue
		}
		match := m.ID == id || sameValue(m.Email, &identifier) || eq(m.PassportID, identifier) ||
			eq(m.NationalityID, identifier) || eq(m.Phone, identifier)
		if match && (best == 0 || m.ID < best) {
			best = m.ID
		}
	}
	if best == 0 {
		return nil, member.ErrNotFound
	}
	return r.FindByID(ctx, best)
}

func eq(a *string, b string) bool {
	return a != nil && *a == b
}

func (r memMembers) FindByIdentifierForUpdate(ctx context.Context, identifier string) (*member.Member, error) {
	return r.FindByIdentifier(ctx, identifier)
}

func (r memMembers) List(ctx context.Context, f member.ListFilter) ([]member.Member, error) {
	out := []member.Member{}
	for _, m := range r.s.state.members {
		if m.DeletedAt == nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memMembers) UpdateProfile(ctx context.Context, id int, u member.ProfileUpdate) (*member.Member, error) {
	m, err := r.live(id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.IsActive != nil {
		m.IsActive = *u.IsActive
	}
	r.s.state.members[id] = m
	return &m, nil
}

func (r memMembers) SetPauseState(ctx context.Context, id int, paused bool, pauseCount int) (*member.Member, error) {
	m, err := r.live(id)
	if err != nil {
		return nil, err
	}
	m.IsPaused = paused
	m.PauseCount = pauseCount
	r.s.state.members[id] = m
	return &m, nil
}

func (r memMembers) ExtendEndDate(ctx context.Context, id int, currentEnd time.Time) error {
	m, err := r.live(id)
	if err != nil {
		return err
	}
	m.CurrentEndDate = &currentEnd
	r.s.state.members[id] = m
	return nil
}

func (r memMembers) ConsumeVisit(ctx context.Context, id int, limit int) (int, error) {
	if len(r.s.consumeErrs) > 0 {
		err := r.s.consumeErrs[0]
		r.s.consumeErrs = r.s.consumeErrs[1:]
		return 0, err
	}

	m, err := r.live(id)
	if err != nil {
		return 0, member.ErrNoVisitConsumed
	}
	remaining := max(limit-m.UsedVisits, 0)
	if m.RemainingVisits != nil {
		remaining = *m.RemainingVisits
	}
	if remaining <= 0 {
		return 0, member.ErrNoVisitConsumed
	}

	left := remaining - 1
	m.RemainingVisits = &left
	m.UsedVisits++
	r.s.state.members[id] = m
	return left, nil
}

func (r memMembers) SoftDelete(ctx context.Context, id int, at time.Time) error {
	m, err := r.live(id)
	if err != nil {
		return err
	}
	m.DeletedAt = &at
	r.s.state.members[id] = m
	return nil
}

func (r memMembers) Restore(ctx context.Context, id int) error {
	m, ok := r.s.state.members[id]
	if !ok || m.DeletedAt == nil {
		return member.ErrNotFound
	}
	m.DeletedAt = nil
	r.s.state.members[id] = m
	return nil
}

type memPlans struct{ s *memStore }

func (r memPlans) FindByID(ctx context.Context, id int) (*plan.Plan, error) {
	p, ok := r.s.state.plans[id]
	if !ok {
		return nil, plan.ErrNotFound
	}
	return &p, nil
}

func (r memPlans) FindByType(ctx context.Context, planType string) (*plan.Plan, error) {
	for _, p := range r.s.state.plans {
		if p.PlanType == planType {
			return &p, nil
		}
	}
	return nil, plan.ErrNotFound
}

func (r memPlans) List(ctx context.Context, onlyActive bool) ([]plan.Plan, error) {
	out := []plan.Plan{}
	for _, p := range r.s.state.plans {
		if !onlyActive || p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPlans) Create(ctx context.Context, p *plan.Plan) (*plan.Plan, error) {
	c := *p
	c.ID = r.s.state.id()
	r.s.state.plans[c.ID] = c
	return &c, nil
}

func (r memPlans) Update(ctx context.Context, id int, p *plan.Plan) (*plan.Plan, error) {
	if _, ok := r.s.state.plans[id]; !ok {
		return nil, plan.ErrNotFound
	}
	c := *p
	c.ID = id
	r.s.state.plans[id] = c
	return &c, nil
}

type memPauses struct{ s *memStore }

func (r memPauses) Insert(ctx context.Context, memberID int, start time.Time, reason *string) (*pause.Pause, error) {
	if _, err := r.FindOpen(ctx, memberID); err == nil {
		return nil, pause.ErrPauseAlreadyOpen
	}
	p := pause.Pause{ID: r.s.state.id(), MemberID: memberID, StartDate: start, Reason: reason, CreatedAt: start}
	r.s.state.pauses = append(r.s.state.pauses, p)
	return &p, nil
}

func (r memPauses) FindOpen(ctx context.Context, memberID int) (*pause.Pause, error) {
	for _, p := range r.s.state.pauses {
		if p.MemberID == memberID && p.EndDate == nil {
			return &p, nil
		}
	}
	return nil, pause.ErrNoOpenPause
}

func (r memPauses) CloseOpen(ctx context.Context, memberID int, end time.Time) (*pause.Pause, error) {
	for i, p := range r.s.state.pauses {
		if p.MemberID == memberID && p.EndDate == nil {
			p.EndDate = &end
			r.s.state.pauses[i] = p
			return &p, nil
		}
	}
	return nil, pause.ErrNoOpenPause
}

func (r memPauses) ListByMember(ctx context.Context, memberID int) ([]pause.Pause, error) {
	out := []pause.Pause{}
	for _, p := range r.s.state.pauses {
		if p.MemberID == memberID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memCheckIns struct{ s *memStore }

func (r memCheckIns) Insert(ctx context.Context, memberID int, facility checkin.FacilityType, at time.Time) (*checkin.CheckIn, error) {
	if err := r.s.insertCheckErr; err != nil {
		r.s.insertCheckErr = nil
		return nil, err
	}
	c := checkin.CheckIn{ID: r.s.state.id(), MemberID: memberID, FacilityType: facility, CheckInTime: at}
	r.s.state.checkins = append(r.s.state.checkins, c)
	return &c, nil
}

func (r memCheckIns) ListByMember(ctx context.Context, memberID int, limit, offset int) ([]checkin.CheckIn, error) {
	out := []checkin.CheckIn{}
	for _, c := range r.s.state.checkins {
		if c.MemberID == memberID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memCheckIns) CountByFacility(ctx context.Context, from, to time.Time) ([]checkin.FacilityCount, error) {
	totals := map[checkin.FacilityType]int{}
	for _, c := range r.s.state.checkins {
		if !c.CheckInTime.Before(from) && c.CheckInTime.Before(to) {
			totals[c.FacilityType]++
		}
	}
	out := []checkin.FacilityCount{}
	for f, n := range totals {
		out = append(out, checkin.FacilityCount{FacilityType: f, Day: from, Total: n})
	}
	return out, nil
}

type memPayments struct{ s *memStore }

func (r memPayments) Insert(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	if err := r.s.insertPayErr; err != nil {
		r.s.insertPayErr = nil
		return nil, err
	}
	c := *p
	c.ID = r.s.state.id()
	r.s.state.payments = append(r.s.state.payments, c)
	return &c, nil
}

func (r memPayments) ListByMember(ctx context.Context, memberID int) ([]payment.Payment, error) {
	out := []payment.Payment{}
	for _, p := range r.s.state.payments {
		if p.MemberID == memberID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPayments) RevenueSummary(ctx context.Context, from, to time.Time) (*payment.RevenueSummary, error) {
	sum := &payment.RevenueSummary{}
	for _, p := range r.s.state.payments {
		if p.PaymentDate.Before(from) || !p.PaymentDate.Before(to) {
			continue
		}
		sum.Payments++
		sum.Total = sum.Total.Add(p.Amount)
		sum.GymShare = sum.GymShare.Add(valueOr(p.GymShareAmount))
		sum.CrossfitShare = sum.CrossfitShare.Add(valueOr(p.CrossfitShareAmount))
	}
	return sum, nil
}

func valueOr(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

type notification struct {
	Kind      string
	To        string
	Remaining int
	Paused    bool
	Amount    decimal.Decimal
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *recordingNotifier) record(x notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, x)
	return n.err
}

func (n *recordingNotifier) SendPauseConfirmation(ctx context.Context, to, name string, paused bool, currentEnd *time.Time) error {
	return n.record(notification{Kind: "pause", To: to, Paused: paused})
}

func (n *recordingNotifier) SendLowVisitsWarning(ctx context.Context, to, name string, remaining int) error {
	return n.record(notification{Kind: "low_visits", To: to, Remaining: remaining})
}

func (n *recordingNotifier) SendPaymentReceipt(ctx context.Context, to, name string, amount decimal.Decimal, method string, paidAt time.Time) error {
	return n.record(notification{Kind: "receipt", To: to, Amount: amount})
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, x := range n.sent {
		out = append(out, x.Kind)
	}
	return out
}
