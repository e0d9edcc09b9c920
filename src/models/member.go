package models

import (
	"strings"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Member struct {
	ID         uuid.UUID  `gorm:"primarykey;type:uuid" json:"id"`
	Email      string     `gorm:"uniqueIndex;size:255" json:"email"`
	Name       string     `json:"name"`
	Surname    string     `json:"surname"`
	Phone      string     `json:"phone,omitempty"`
	Birthdate  string     `json:"birthdate,omitempty"`
	CardNumber string     `gorm:"index" json:"cardNumber,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	Active     bool       `json:"active"`
	// OrderID is the order that created the membership, if any.
	OrderID string `gorm:"size:64" json:"orderId,omitempty"`

	types.Timestamps
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	return nil
}

// ValidAt reports whether the membership is active and not expired at t.
func (m *Member) ValidAt(t time.Time) bool {
	if !m.Active {
		return false
	}
	return m.ExpiresAt == nil || m.ExpiresAt.After(t)
}
