package models

import (
	"context"
	"strings"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/models/scopes"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) FindEvent(ctx context.Context, id string) (*Event, error) {
	var ev Event
	err := s.db.WithContext(ctx).
		Model(&Event{}).
		Scopes(scopes.WithID(id)).
		First(&ev).
		Error
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *EventStore) ListEvents(ctx context.Context, activeOnly bool) ([]Event, error) {
	q := s.db.WithContext(ctx).Model(&Event{})
	if activeOnly {
		q = q.Scopes(scopes.ActiveOnly)
	}
	var events []Event
	if err := q.Order("created_at desc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

type MemberStore struct {
	db *gorm.DB
}

func NewMemberStore(db *gorm.DB) *MemberStore {
	return &MemberStore{db: db}
}

func (s *MemberStore) FindMembersByEmail(ctx context.Context, emails []string) ([]Member, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(e)))
	}
	var members []Member
	err := s.db.WithContext(ctx).
		Model(&Member{}).
		Where("email IN ?", lowered).
		Find(&members).
		Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// UpsertMembers creates memberships, refreshing expiry and status for emails that already exist.
func (s *MemberStore) UpsertMembers(ctx context.Context, members []Member) error {
	if len(members) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"active", "expires_at", "order_id", "updated_at"}),
		}).
		Create(&members).
		Error
}

type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) CreateOrder(ctx context.Context, order *Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *OrderStore) FindOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).
		Model(&Order{}).
		Scopes(scopes.WithID(id)).
		First(&order).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionOrder moves an order out of from. It reports false when the order was
// no longer in that status, which keeps terminal orders untouched.
func (s *OrderStore) TransitionOrder(ctx context.Context, id string, from, to types.OrderStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Order{}).
			Scopes(scopes.WithID(id), scopes.WithStatus(from)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *OrderStore) FindStaleOrders(ctx context.Context, before time.Time, limit int) ([]Order, error) {
	var orders []Order
	err := s.db.WithContext(ctx).
		Model(&Order{}).
		Scopes(scopes.WithCreatedStatus, scopes.CreatedBefore(before)).
		Order("created_at asc").
		Limit(limit).
		Find(&orders).
		Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// CapturedParticipants returns the participants of every captured order for the event.
func (s *OrderStore) CapturedParticipants(ctx context.Context, eventID string) ([]types.Participant, error) {
	var orders []Order
	err := s.db.WithContext(ctx).
		Model(&Order{}).
		Select("id", "participants").
		Where("event_id = ?", eventID).
		Scopes(scopes.WithStatus(types.ORDER_CAPTURED)).
		Find(&orders).
		Error
	if err != nil {
		return nil, err
	}
	var out []types.Participant
	for _, o := range orders {
		out = append(out, o.Participants...)
	}
	return out, nil
}
