package common

import (
	"context"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/lib"
	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/stretchr/testify/mock"
)

type mockEvents struct{ mock.Mock }

func (m *mockEvents) FindEvent(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	ev, _ := args.Get(0).(*models.Event)
	return ev, args.Error(1)
}

func (m *mockEvents) ListEvents(ctx context.Context, activeOnly bool) ([]models.Event, error) {
	args := m.Called(ctx, activeOnly)
	evs, _ := args.Get(0).([]models.Event)
	return evs, args.Error(1)
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) CreateOrder(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrders) FindOrder(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *mockOrders) TransitionOrder(ctx context.Context, id string, from, to types.OrderStatus, fields map[string]any) (bool, error) {
	args := m.Called(ctx, id, from, to, fields)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrders) FindStaleOrders(ctx context.Context, before time.Time, limit int) ([]models.Order, error) {
	args := m.Called(ctx, before, limit)
	os, _ := args.Get(0).([]models.Order)
	return os, args.Error(1)
}

func (m *mockOrders) CapturedParticipants(ctx context.Context, eventID string) ([]types.Participant, error) {
	args := m.Called(ctx, eventID)
	ps, _ := args.Get(0).([]types.Participant)
	return ps, args.Error(1)
}

type mockMembers struct{ mock.Mock }

func (m *mockMembers) FindMembersByEmail(ctx context.Context, emails []string) ([]models.Member, error) {
	args := m.Called(ctx, emails)
	ms, _ := args.Get(0).([]models.Member)
	return ms, args.Error(1)
}

func (m *mockMembers) UpsertMembers(ctx context.Context, members []models.Member) error {
	return m.Called(ctx, members).Error(0)
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) CreatePayment(ctx context.Context, in lib.PaymentInput) (*lib.Payment, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*lib.Payment)
	return p, args.Error(1)
}

func (m *mockPayments) CapturePayment(ctx context.Context, id string) (*lib.Payment, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*lib.Payment)
	return p, args.Error(1)
}

func (m *mockPayments) GetPayment(ctx context.Context, id string) (*lib.Payment, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*lib.Payment)
	return p, args.Error(1)
}

func (m *mockPayments) CancelPayment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockIdempotency struct{ mock.Mock }

func (m *mockIdempotency) Reserve(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockIdempotency) Complete(ctx context.Context, key, orderID string) error {
	return m.Called(ctx, key, orderID).Error(0)
}

func (m *mockIdempotency) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, topic string, payload any) error {
	return m.Called(ctx, topic, payload).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) OrderCaptured(ctx context.Context, order *models.Order, event *models.Event) error {
	return m.Called(ctx, order, event).Error(0)
}

type mockMailQueue struct{ mock.Mock }

func (m *mockMailQueue) Enqueue(ctx context.Context, input *lib.SendMailInput) error {
	return m.Called(ctx, input).Error(0)
}
