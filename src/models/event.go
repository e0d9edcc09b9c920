package models

import (
	"strings"

	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Event struct {
	ID             string          `gorm:"primarykey;size:64" json:"id"`
	Title          string          `json:"title,omitempty"`
	Slug           string          `gorm:"index" json:"slug,omitempty"`
	Date           string          `json:"date,omitempty"`
	StartTime      string          `json:"startTime,omitempty"`
	EndTime        string          `json:"endTime,omitempty"`
	Location       string          `json:"location,omitempty"`
	Seats          uint            `json:"seats,omitempty"`
	PurchaseMode   string          `gorm:"column:purchase_mode" json:"purchase_mode,omitempty"`
	Type           string          `json:"type,omitempty"`
	Price          float64         `json:"price"`
	MembershipFee  *float64        `json:"membershipFee,omitempty"`
	PaymentMethods types.StringSet `gorm:"type:jsonb" json:"paymentMethods"`
	Active         bool            `gorm:"index" json:"active"`

	types.Timestamps
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Slug == "" && strings.TrimSpace(e.Title) != "" {
		e.Slug = slug.Make(e.Title)
	}
	return nil
}

// Sellable reports whether the event can be bought through self-service checkout.
func (e *Event) Sellable() bool {
	return e.Active && len(e.PaymentMethods) > 0
}
