package purchase

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
)

type SessionConfig struct {
	MaxTickets    int
	MembershipFee float64
	Currency      string
	Timeout       time.Duration
	Reporter      ErrorReporter
	OnTransition  func(sessionID string, tr Transition)
}

// Session is one buyer's checkout for one event.
type Session struct {
	ID string

	event   *models.Event
	mode    types.PurchaseMode
	cfg     SessionConfig
	checker *EligibilityChecker
	orders  *Orchestrator

	mu       sync.Mutex
	form     *Form
	verified string
	lastSeen time.Time
}

func NewSession(id string, ev *models.Event, verifier ParticipantVerifier, gateway OrderGateway, cfg SessionConfig) *Session {
	if cfg.MembershipFee < 0 {
		cfg.MembershipFee = DefaultMembershipFee
	}
	mode := ResolveEventMode(ev)
	s := &Session{
		ID:       id,
		event:    ev,
		mode:     mode,
		cfg:      cfg,
		form:     NewForm(cfg.MaxTickets),
		lastSeen: time.Now(),
	}
	s.checker = NewEligibilityChecker(verifier, cfg.Timeout, cfg.Reporter)
	opts := []OrchestratorOption{WithTimeout(cfg.Timeout), WithErrorReporter(cfg.Reporter)}
	if cfg.OnTransition != nil {
		opts = append(opts, WithTransitionHook(func(tr Transition) { cfg.OnTransition(id, tr) }))
	}
	s.orders = NewOrchestrator(gateway, mode, opts...)
	return s
}

func (s *Session) Mode() types.PurchaseMode { return s.mode }
func (s *Session) Event() *models.Event { return s.event }
func (s *Session) State() types.CheckoutState { return s.orders.State() }

func (s *Session) Quote() types.Quote {
	s.mu.Lock()
	qty := s.form.Quantity()
	s.mu.Unlock()
	return ComputeQuote(s.event, s.mode, qty, s.cfg.MembershipFee, s.cfg.Currency)
}

// SetQuantity accepts an int, a whole JSON number or a numeric string. Anything else is ignored.
func (s *Session) SetQuantity(v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	var changed bool
	switch q := v.(type) {
	case int:
		changed = s.form.SetQuantity(q)
	case float64:
		if q != math.Trunc(q) || q > math.MaxInt32 || q < math.MinInt32 {
			return false
		}
		changed = s.form.SetQuantity(int(q))
	case string:
		changed = s.form.SetQuantityString(q)
	}
	return changed
}

func (s *Session) Increment() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Increment()
}

func (s *Session) Decrement() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Decrement()
}

func (s *Session) SetParticipants(ps []types.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.form.SetParticipants(ps)
}

// Verify runs the eligibility check for the current participants.
func (s *Session) Verify(ctx context.Context) types.EligibilityResult {
	s.mu.Lock()
	s.touch()
	ps := s.form.Participants()
	s.mu.Unlock()

	res := s.checker.Check(ctx, s.event.ID, s.mode, ps)

	s.mu.Lock()
	if res.Valid {
		s.verified = fingerprint(ps)
	} else {
		s.verified = ""
	}
	s.mu.Unlock()
	return res
}

// PlaceOrder validates the form, gates on eligibility when the mode needs it, then opens the order.
func (s *Session) PlaceOrder(ctx context.Context) (*types.CreatedOrder, error) {
	if s.mode == types.PURCHASE_ON_REQUEST {
		return nil, ErrOnRequest
	}
	if err := CheckSellable(s.event); err != nil {
		return nil, err
	}
	switch st := s.orders.State(); {
	case st == types.CHECKOUT_SUCCEEDED:
		return nil, ErrOrderCompleted
	case InFlight(st):
		return nil, ErrOrderInFlight
	}

	s.mu.Lock()
	s.touch()
	if err := s.form.Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	ps := s.form.Participants()
	verified := s.verified == fingerprint(ps)
	s.mu.Unlock()

	if RequiresEligibility(s.mode) && !verified {
		res := s.Verify(ctx)
		if !res.Valid {
			return nil, &EligibilityError{Errors: res.Errors}
		}
	}

	s.mu.Lock()
	s.form.Disable()
	qty := s.form.Quantity()
	s.mu.Unlock()

	quote := ComputeQuote(s.event, s.mode, qty, s.cfg.MembershipFee, s.cfg.Currency)
	created, err := s.orders.CreateOrder(ctx, types.CreateOrderRequestBody{
		EventID:      s.event.ID,
		TicketPrice:  quote.UnitPrice,
		Quantity:     qty,
		Participants: ps,
	})
	if err != nil {
		if !errors.Is(err, ErrOrderInFlight) && !errors.Is(err, ErrOrderCompleted) {
			s.enable()
		}
		return nil, err
	}
	return created, nil
}

func (s *Session) Approve(ctx context.Context, orderID string) (*types.CaptureResult, error) {
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()
	res, err := s.orders.OnApprove(ctx, orderID)
	if err != nil && s.orders.State() == types.CHECKOUT_FAILED {
		s.enable()
	}
	return res, err
}

func (s *Session) Cancel() error {
	if err := s.orders.OnCancel(); err != nil {
		return err
	}
	s.enable()
	return nil
}

func (s *Session) ProviderError(err error) error {
	if perr := s.orders.OnProviderError(err); perr != nil {
		return perr
	}
	s.enable()
	return nil
}

func (s *Session) Snapshot() types.CheckoutView {
	s.mu.Lock()
	qty := s.form.Quantity()
	ps := s.form.Participants()
	maxTickets := s.form.MaxTickets()
	disabled := s.form.Disabled()
	s.mu.Unlock()

	fee := MembershipFeeFor(s.event, s.cfg.MembershipFee)
	return types.CheckoutView{
		SessionID:    s.ID,
		EventID:      s.event.ID,
		EventTitle:   s.event.Title,
		PurchaseMode: s.mode,
		Panel:        DescribePanel(s.mode, fee),
		MaxTickets:   maxTickets,
		Quantity:     qty,
		Participants: ps,
		Disabled:     disabled,
		Loading:      s.checker.Loading() || s.orders.State() == types.CHECKOUT_CREATING || s.orders.State() == types.CHECKOUT_CAPTURING,
		Eligibility:  s.checker.Result(),
		State:        s.orders.State(),
		OrderID:      s.orders.OrderID(),
		Message:      s.orders.Message(),
		Quote:        ComputeQuote(s.event, s.mode, qty, s.cfg.MembershipFee, s.cfg.Currency),
	}
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) enable() {
	s.mu.Lock()
	s.form.Enable()
	s.mu.Unlock()
}

// touch must be called with s.mu held.
func (s *Session) touch() {
	s.lastSeen = time.Now()
}

func fingerprint(ps []types.Participant) string {
	var b strings.Builder
	for _, p := range ps {
		p = normalizeParticipant(p)
		b.WriteString(strings.ToLower(p.Name))
		b.WriteByte(0)
		b.WriteString(strings.ToLower(p.Surname))
		b.WriteByte(0)
		b.WriteString(p.Email)
		b.WriteByte(0)
		b.WriteString(p.Phone)
		b.WriteByte(0)
		b.WriteString(p.Birthdate)
		b.WriteByte('\n')
	}
	return b.String()
}
