package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/lib"
	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/purchase"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const (
	staleOrdersBatch   = 100
	membershipDuration = 365 * 24 * time.Hour
	descriptorMaxLen   = 22
)

type OrderConfig struct {
	MaxTickets    int
	MembershipFee float64
	Currency      string
	OrderTTL      time.Duration
}

// OrderOutcome is published on the orders-captured and orders-failed topics.
type OrderOutcome struct {
	OrderID     string            `json:"orderId"`
	EventID     string            `json:"eventId"`
	Status      types.OrderStatus `json:"status"`
	Quantity    int               `json:"quantity"`
	AmountTotal float64           `json:"amountTotal"`
	Currency    string            `json:"currency"`
	Emails      []string          `json:"emails"`
	Reason      string            `json:"reason,omitempty"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// OrderService is the server side of the order and participant endpoints.
type OrderService struct {
	events    EventRepository
	orders    OrderRepository
	members   MemberRepository
	payments  PaymentProvider
	idem      IdempotencyStore
	publisher Publisher
	notifier  Notifier
	cfg       OrderConfig
	now       func() time.Time
}

type OrderServiceOption func(*OrderService)

func WithIdempotency(store IdempotencyStore) OrderServiceOption {
	return func(s *OrderService) { s.idem = store }
}

func WithPublisher(p Publisher) OrderServiceOption {
	return func(s *OrderService) { s.publisher = p }
}

func WithNotifier(n Notifier) OrderServiceOption {
	return func(s *OrderService) { s.notifier = n }
}

func NewOrderService(events EventRepository, orders OrderRepository, members MemberRepository, payments PaymentProvider, cfg OrderConfig, opts ...OrderServiceOption) *OrderService {
	if cfg.MaxTickets <= 0 {
		cfg.MaxTickets = purchase.DefaultMaxTickets
	}
	if cfg.Currency == "" {
		cfg.Currency = "eur"
	}
	s := &OrderService{
		events:   events,
		orders:   orders,
		members:  members,
		payments: payments,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder prices the order from the event record, re-checks eligibility and opens
// a payment with the provider. A repeated idempotency key returns the first order.
func (s *OrderService) CreateOrder(ctx context.Context, req types.CreateOrderRequestBody, idempotencyKey string) (created *types.CreatedOrder, err error) {
	if s.idem != nil && idempotencyKey != "" {
		existing, reserved, rerr := s.idem.Reserve(ctx, idempotencyKey)
		if rerr != nil {
			log.Printf("[orders] idempotency store unavailable: %s\n", rerr.Error())
		} else if existing != "" {
			order, ferr := s.orders.FindOrder(ctx, existing)
			if ferr != nil {
				return nil, fmt.Errorf("loading order %s: %w", existing, ferr)
			}
			return createdFromOrder(order), nil
		} else if !reserved {
			return nil, ErrRequestInProgress
		} else {
			defer func() {
				if err != nil {
					if rerr := s.idem.Release(context.WithoutCancel(ctx), idempotencyKey); rerr != nil {
						log.Printf("[orders] could not release idempotency key: %s\n", rerr.Error())
					}
				}
			}()
		}
	}

	ev, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	mode := purchase.ResolveEventMode(ev)
	if mode == types.PURCHASE_ON_REQUEST {
		return nil, purchase.ErrOnRequest
	}
	if err := purchase.CheckSellable(ev); err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = max(len(req.Participants), 1)
	}
	if quantity < 1 || quantity > s.cfg.MaxTickets {
		return nil, &purchase.ValidationError{Errors: []string{fmt.Sprintf("quantity must be between 1 and %d", s.cfg.MaxTickets)}}
	}
	if len(req.Participants) != quantity {
		return nil, &purchase.ValidationError{Errors: []string{fmt.Sprintf("expected %d participants, got %d", quantity, len(req.Participants))}}
	}
	if err := purchase.ValidateParticipants(req.Participants); err != nil {
		return nil, err
	}

	quote := purchase.ComputeQuote(ev, mode, quantity, s.cfg.MembershipFee, s.cfg.Currency)
	if math.Abs(req.TicketPrice-quote.UnitPrice) > 0.005 {
		return nil, ErrPriceChanged
	}

	if purchase.RequiresEligibility(mode) {
		res, err := s.checkEligibility(ctx, ev, mode, req.Participants)
		if err != nil {
			return nil, err
		}
		if !res.Valid {
			return nil, &purchase.EligibilityError{Errors: res.Errors}
		}
	}

	payment, err := s.payments.CreatePayment(ctx, lib.PaymentInput{
		AmountMinor:    purchase.ToMinorUnits(quote.Total),
		Currency:       quote.Currency,
		Methods:        ev.PaymentMethods,
		Description:    fmt.Sprintf("%d x %s", quantity, ev.Title),
		Descriptor:     statementDescriptor(ev),
		IdempotencyKey: idempotencyKey,
		Metadata: map[string]string{
			"event_id":      ev.ID,
			"quantity":      strconv.Itoa(quantity),
			"purchase_mode": string(mode),
		},
	})
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:             payment.ID,
		EventID:        ev.ID,
		Quantity:       quantity,
		Participants:   req.Participants,
		Status:         types.ORDER_CREATED,
		PurchaseMode:   mode,
		UnitPrice:      quote.UnitPrice,
		AmountTotal:    quote.Total,
		Currency:       quote.Currency,
		Reference:      orderReference(ev, payment.ID),
		ClientSecret:   payment.ClientSecret,
		IdempotencyKey: idempotencyKey,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if cerr := s.payments.CancelPayment(context.WithoutCancel(ctx), payment.ID); cerr != nil {
			log.Printf("[orders] could not cancel payment %s: %s\n", payment.ID, cerr.Error())
		}
		return nil, fmt.Errorf("saving order: %w", err)
	}
	if s.idem != nil && idempotencyKey != "" {
		if err := s.idem.Complete(ctx, idempotencyKey, order.ID); err != nil {
			log.Printf("[orders] could not store idempotency key: %s\n", err.Error())
		}
	}

	return createdFromOrder(order), nil
}

// CaptureOrder captures an approved order. Terminal orders are answered from the database
// so a repeated capture never charges twice.
func (s *OrderService) CaptureOrder(ctx context.Context, orderID string) (*types.CaptureResult, error) {
	order, err := s.orders.FindOrder(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	} else if err != nil {
		return nil, fmt.Errorf("loading order: %w", err)
	}
	switch order.Status {
	case types.ORDER_CAPTURED:
		return &types.CaptureResult{ID: order.ID, Status: types.CAPTURE_COMPLETED}, nil
	case types.ORDER_FAILED:
		return &types.CaptureResult{ID: order.ID, Status: string(types.ORDER_FAILED)}, nil
	}

	payment, err := s.payments.CapturePayment(ctx, order.ID)
	if err != nil {
		var pe *purchase.ProviderError
		if !errors.As(err, &pe) {
			return nil, err
		}
		// Capturing an intent that already succeeded is refused too.
		current, gerr := s.payments.GetPayment(ctx, order.ID)
		switch {
		case gerr != nil:
			log.Printf("[orders] could not read payment %s: %s\n", order.ID, gerr.Error())
		case current.Status == types.CAPTURE_COMPLETED:
			if err := s.settleCaptured(ctx, order); err != nil {
				return nil, err
			}
			return &types.CaptureResult{ID: order.ID, Status: types.CAPTURE_COMPLETED}, nil
		default:
			s.failOrder(ctx, order, pe.Message())
		}
		return nil, err
	}
	if payment.Status != types.CAPTURE_COMPLETED {
		s.failOrder(ctx, order, fmt.Sprintf("capture returned %s", payment.Status))
		return &types.CaptureResult{ID: order.ID, Status: payment.Status}, nil
	}
	if err := s.settleCaptured(ctx, order); err != nil {
		return nil, err
	}
	return &types.CaptureResult{ID: order.ID, Status: types.CAPTURE_COMPLETED}, nil
}

// settleCaptured records a payment the provider has taken. Only the caller that moves
// the order out of CREATED registers members and sends notifications.
func (s *OrderService) settleCaptured(ctx context.Context, order *models.Order) error {
	capturedAt := s.now()
	moved, err := s.orders.TransitionOrder(ctx, order.ID, types.ORDER_CREATED, types.ORDER_CAPTURED, map[string]any{"captured_at": capturedAt})
	if err != nil {
		return fmt.Errorf("marking order captured: %w", err)
	}
	if !moved {
		return nil
	}
	order.Status = types.ORDER_CAPTURED
	order.CapturedAt = &capturedAt

	if order.PurchaseMode == types.PURCHASE_ONLY_MEMBERS {
		if err := s.members.UpsertMembers(ctx, newMembers(order, capturedAt)); err != nil {
			log.Printf("[orders] could not register members for order %s: %s\n", order.ID, err.Error())
		}
	}
	s.publish(ctx, lib.TOPIC_ORDERS_CAPTURED, order, "")
	if s.notifier != nil {
		ev, err := s.events.FindEvent(ctx, order.EventID)
		if err != nil {
			log.Printf("[orders] could not load event %s for notification: %s\n", order.EventID, err.Error())
		} else if err := s.notifier.OrderCaptured(ctx, order, ev); err != nil {
			log.Printf("[orders] could not notify order %s: %s\n", order.ID, err.Error())
		}
	}
	return nil
}

// ExpireStaleOrders fails orders that stayed CREATED longer than the order TTL.
// An order whose payment cannot be cancelled is only failed once the provider
// reports it cancelled; a succeeded payment is settled as captured instead.
func (s *OrderService) ExpireStaleOrders(ctx context.Context) (int, error) {
	orders, err := s.orders.FindStaleOrders(ctx, s.now().Add(-s.cfg.OrderTTL), staleOrdersBatch)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range orders {
		order := &orders[i]
		if err := s.payments.CancelPayment(ctx, order.ID); err != nil {
			log.Printf("[orders] could not cancel payment %s: %s\n", order.ID, err.Error())
			if !s.reconcileExpired(ctx, order) {
				continue
			}
		}
		if s.failOrder(ctx, order, "expired") {
			expired++
		}
	}
	return expired, nil
}

// reconcileExpired reports whether an order whose cancellation was refused may be failed.
func (s *OrderService) reconcileExpired(ctx context.Context, order *models.Order) bool {
	current, err := s.payments.GetPayment(ctx, order.ID)
	if err != nil {
		log.Printf("[orders] could not read payment %s, retrying next sweep: %s\n", order.ID, err.Error())
		return false
	}
	switch current.Status {
	case types.CAPTURE_COMPLETED:
		if err := s.settleCaptured(ctx, order); err != nil {
			log.Printf("[orders] could not settle captured order %s: %s\n", order.ID, err.Error())
		}
		return false
	case lib.PAYMENT_CANCELED:
		return true
	}
	log.Printf("[orders] payment %s is %s, retrying next sweep\n", order.ID, current.Status)
	return false
}

func (s *OrderService) failOrder(ctx context.Context, order *models.Order, reason string) bool {
	moved, err := s.orders.TransitionOrder(ctx, order.ID, types.ORDER_CREATED, types.ORDER_FAILED, map[string]any{"failure_reason": reason})
	if err != nil {
		log.Printf("[orders] could not mark order %s failed: %s\n", order.ID, err.Error())
		return false
	}
	if !moved {
		return false
	}
	order.Status = types.ORDER_FAILED
	order.FailureReason = reason
	s.publish(ctx, lib.TOPIC_ORDERS_FAILED, order, reason)
	return true
}

func (s *OrderService) publish(ctx context.Context, topic string, order *models.Order, reason string) {
	if s.publisher == nil {
		return
	}
	outcome := OrderOutcome{
		OrderID:     order.ID,
		EventID:     order.EventID,
		Status:      order.Status,
		Quantity:    order.Quantity,
		AmountTotal: order.AmountTotal,
		Currency:    order.Currency,
		Emails:      order.Emails(),
		Reason:      reason,
		OccurredAt:  s.now(),
	}
	if err := s.publisher.Publish(ctx, topic, outcome); err != nil {
		log.Printf("[orders] could not publish %s for %s: %s\n", topic, order.ID, err.Error())
	}
}

func (s *OrderService) findEvent(ctx context.Context, id string) (*models.Event, error) {
	return findEvent(ctx, s.events, id)
}

func findEvent(ctx context.Context, events EventRepository, id string) (*models.Event, error) {
	ev, err := events.FindEvent(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	} else if err != nil {
		return nil, fmt.Errorf("loading event: %w", err)
	}
	return ev, nil
}

// createdFromOrder answers both fresh and replayed creates with the order status.
func createdFromOrder(o *models.Order) *types.CreatedOrder {
	return &types.CreatedOrder{
		ID:           o.ID,
		Status:       string(o.Status),
		AmountTotal:  o.AmountTotal,
		Currency:     o.Currency,
		ClientSecret: o.ClientSecret,
	}
}

func newMembers(order *models.Order, capturedAt time.Time) []models.Member {
	expires := capturedAt.Add(membershipDuration)
	members := make([]models.Member, 0, len(order.Participants))
	for _, p := range order.Participants {
		members = append(members, models.Member{
			Email:     p.Email,
			Name:      p.Name,
			Surname:   p.Surname,
			Phone:     p.Phone,
			Birthdate: p.Birthdate,
			ExpiresAt: &expires,
			Active:    true,
			OrderID:   order.ID,
		})
	}
	return members
}

func orderReference(ev *models.Event, paymentID string) string {
	suffix := paymentID
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	base := ev.Slug
	if base == "" {
		base = slug.Make(ev.Title)
	}
	return strings.ToUpper(fmt.Sprintf("%s-%s", base, suffix))
}

func statementDescriptor(ev *models.Event) string {
	d := strings.ToUpper(strings.ReplaceAll(slug.Make(ev.Title), "-", " "))
	if len(d) > descriptorMaxLen {
		d = strings.TrimSpace(d[:descriptorMaxLen])
	}
	return d
}
