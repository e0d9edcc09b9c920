package common

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Vittorix99/mcp-website-sub001/src/lib"
	"github.com/Vittorix99/mcp-website-sub001/src/purchase"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/google/uuid"
)

// CheckoutService keeps one purchase.Session per buyer.
type CheckoutService struct {
	events   EventRepository
	registry *purchase.Registry
	verifier purchase.ParticipantVerifier
	gateway  purchase.OrderGateway
	cfg      purchase.SessionConfig
}

func NewCheckoutService(events EventRepository, registry *purchase.Registry, verifier purchase.ParticipantVerifier, gateway purchase.OrderGateway, cfg purchase.SessionConfig) *CheckoutService {
	return &CheckoutService{
		events:   events,
		registry: registry,
		verifier: verifier,
		gateway:  gateway,
		cfg:      cfg,
	}
}

func (s *CheckoutService) Start(ctx context.Context, eventID string) (*purchase.Session, error) {
	ev, err := findEvent(ctx, s.events, eventID)
	if err != nil {
		return nil, err
	}
	return s.registry.Open(ev, s.verifier, newKeyedGateway(s.gateway), s.cfg), nil
}

func (s *CheckoutService) Session(id string) (*purchase.Session, error) {
	sess, ok := s.registry.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *CheckoutService) Close(id string) {
	s.registry.Delete(id)
}

func (s *CheckoutService) Sweep() int {
	return s.registry.Sweep()
}

// keyedGateway gives every create attempt of one checkout its own idempotency key,
// so a retried HTTP call for the same attempt reuses the order it already opened.
type keyedGateway struct {
	inner    purchase.OrderGateway
	prefix   string
	attempts atomic.Int64
}

func newKeyedGateway(inner purchase.OrderGateway) *keyedGateway {
	return &keyedGateway{inner: inner, prefix: uuid.NewString()}
}

func (g *keyedGateway) CreateOrder(ctx context.Context, req types.CreateOrderRequestBody) (*types.CreatedOrder, error) {
	n := g.attempts.Add(1)
	ctx = lib.WithIdempotencyKey(ctx, fmt.Sprintf("%s:%d", g.prefix, n))
	return g.inner.CreateOrder(ctx, req)
}

func (g *keyedGateway) CaptureOrder(ctx context.Context, orderID string) (*types.CaptureResult, error) {
	return g.inner.CaptureOrder(ctx, orderID)
}
