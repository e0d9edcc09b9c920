package models

import (
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/types"
)

type Order struct {
	ID             string             `gorm:"primarykey;size:64" json:"id"`
	EventID        string             `gorm:"index;size:64" json:"eventId"`
	Quantity       int                `json:"quantity"`
	Participants   types.Participants `gorm:"type:jsonb" json:"participants"`
	Status         types.OrderStatus  `gorm:"index;size:16" json:"status"`
	PurchaseMode   types.PurchaseMode `gorm:"size:64" json:"purchaseMode"`
	UnitPrice      float64            `json:"unitPrice"`
	AmountTotal    float64            `json:"amountTotal"`
	Currency       string             `gorm:"size:8" json:"currency"`
	Reference      string             `gorm:"index" json:"reference,omitempty"`
	ClientSecret   string             `json:"-"`
	IdempotencyKey string             `gorm:"index" json:"-"`
	FailureReason  string             `json:"failureReason,omitempty"`
	CapturedAt     *time.Time         `json:"capturedAt,omitempty"`

	Event *Event `gorm:"foreignKey:event_id" json:"event,omitempty"`

	types.Timestamps
}

// Terminal orders are never updated again.
func (o *Order) Terminal() bool {
	return o.Status == types.ORDER_CAPTURED || o.Status == types.ORDER_FAILED
}

func (o *Order) Emails() []string {
	out := make([]string, 0, len(o.Participants))
	for _, p := range o.Participants {
		out = append(out, p.Email)
	}
	return out
}
