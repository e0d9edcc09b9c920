package common

import (
	"context"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/lib"
	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
)

type EventRepository interface {
	FindEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context, activeOnly bool) ([]models.Event, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id string) (*models.Order, error)
	TransitionOrder(ctx context.Context, id string, from, to types.OrderStatus, fields map[string]any) (bool, error)
	FindStaleOrders(ctx context.Context, before time.Time, limit int) ([]models.Order, error)
	CapturedParticipants(ctx context.Context, eventID string) ([]types.Participant, error)
}

type MemberRepository interface {
	FindMembersByEmail(ctx context.Context, emails []string) ([]models.Member, error)
	UpsertMembers(ctx context.Context, members []models.Member) error
}

type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (string, bool, error)
	Complete(ctx context.Context, key, orderID string) error
	Release(ctx context.Context, key string) error
}

type PaymentProvider interface {
	CreatePayment(ctx context.Context, in lib.PaymentInput) (*lib.Payment, error)
	CapturePayment(ctx context.Context, id string) (*lib.Payment, error)
	GetPayment(ctx context.Context, id string) (*lib.Payment, error)
	CancelPayment(ctx context.Context, id string) error
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

type Notifier interface {
	OrderCaptured(ctx context.Context, order *models.Order, event *models.Event) error
}
