package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

// StringSet is a JSONB array of distinct strings.
type StringSet []string

func (s StringSet) Has(v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	valueString, err := json.Marshal(s)
	return string(valueString), err
}
func (s *StringSet) Scan(value any) error {
	b, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, s)
}

func scanBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, errors.New("type assertion to []byte failed")
}

// PurchaseMode is the canonical classification of who may buy a ticket.
type PurchaseMode string

const (
	PURCHASE_PUBLIC                          PurchaseMode = "PUBLIC"
	PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS PurchaseMode = "ONLY_ALREADY_REGISTERED_MEMBERS"
	PURCHASE_ONLY_MEMBERS                    PurchaseMode = "ONLY_MEMBERS"
	PURCHASE_ON_REQUEST                      PurchaseMode = "ON_REQUEST"
)

var PurchaseModes = []PurchaseMode{
	PURCHASE_PUBLIC,
	PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS,
	PURCHASE_ONLY_MEMBERS,
	PURCHASE_ON_REQUEST,
}

type PanelVariant string

const (
	PANEL_PUBLIC                  PanelVariant = "PUBLIC"
	PANEL_ONLY_MEMBERS            PanelVariant = "ONLY_MEMBERS"
	PANEL_ONLY_ALREADY_REGISTERED PanelVariant = "ONLY_ALREADY_REGISTERED"
	PANEL_NONE                    PanelVariant = "NONE"
)

type CheckoutState string

const (
	CHECKOUT_IDLE              CheckoutState = "IDLE"
	CHECKOUT_CREATING          CheckoutState = "CREATING"
	CHECKOUT_AWAITING_APPROVAL CheckoutState = "AWAITING_APPROVAL"
	CHECKOUT_CAPTURING         CheckoutState = "CAPTURING"
	CHECKOUT_SUCCEEDED         CheckoutState = "SUCCEEDED"
	CHECKOUT_FAILED            CheckoutState = "FAILED"
)

type OrderStatus string

const (
	ORDER_CREATED  OrderStatus = "CREATED"
	ORDER_CAPTURED OrderStatus = "CAPTURED"
	ORDER_FAILED   OrderStatus = "FAILED"
)

// CAPTURE_COMPLETED is the only capture status that counts as a successful payment.
const CAPTURE_COMPLETED = "COMPLETED"

type Participant struct {
	Name      string `json:"name" validate:"required"`
	Surname   string `json:"surname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty"`
	Birthdate string `json:"birthdate,omitempty"`
}

type Participants []Participant

func (p Participants) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	valueString, err := json.Marshal(p)
	return string(valueString), err
}
func (p *Participants) Scan(value any) error {
	b, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, p)
}

type EligibilityResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

type CreateOrderRequestBody struct {
	EventID      string        `json:"eventId" binding:"required"`
	TicketPrice  float64       `json:"ticketPrice" binding:"gte=0"`
	Quantity     int           `json:"quantity" binding:"omitempty,min=1"`
	Participants []Participant `json:"participants,omitempty"`
}

type CheckParticipantsRequestBody struct {
	EventID      string        `json:"eventId" binding:"required"`
	PurchaseMode string        `json:"purchaseMode,omitempty"`
	Participants []Participant `json:"participants" binding:"required,min=1"`
}

type StartCheckoutRequestBody struct {
	EventID string `json:"eventId" binding:"required"`
}

type QuantityRequestBody struct {
	Quantity any `json:"quantity" binding:"required"`
}

type ParticipantsRequestBody struct {
	Participants []Participant `json:"participants" binding:"required"`
}

type ApproveOrderRequestBody struct {
	OrderID string `json:"orderId" binding:"required"`
}

type SimpleRequestParams struct {
	ID string `uri:"id" binding:"required"`
}

type CreatedOrder struct {
	ID           string  `json:"id"`
	Status       string  `json:"status,omitempty"`
	AmountTotal  float64 `json:"amountTotal,omitempty"`
	Currency     string  `json:"currency,omitempty"`
	ClientSecret string  `json:"clientSecret,omitempty"`
}

type CaptureResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ProviderErrorDetail struct {
	Issue       string `json:"issue,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProviderErrorPayload is the body returned by the order endpoints when the payment provider
// rejects a request.
type ProviderErrorPayload struct {
	Name    string                `json:"name,omitempty"`
	Message string                `json:"message,omitempty"`
	Details []ProviderErrorDetail `json:"details,omitempty"`
	DebugID string                `json:"debug_id,omitempty"`
}

type InfoPanel struct {
	Variant PanelVariant `json:"variant"`
	Title   string       `json:"title"`
	Body    string       `json:"body"`
}

type Quote struct {
	UnitPrice     float64 `json:"unitPrice"`
	TicketPrice   float64 `json:"ticketPrice"`
	MembershipFee float64 `json:"membershipFee,omitempty"`
	Quantity      int     `json:"quantity"`
	Total         float64 `json:"total"`
	Currency      string  `json:"currency,omitempty"`
}

type CheckoutView struct {
	SessionID    string             `json:"sessionId"`
	EventID      string             `json:"eventId"`
	EventTitle   string             `json:"eventTitle,omitempty"`
	PurchaseMode PurchaseMode       `json:"purchaseMode"`
	Panel        *InfoPanel         `json:"panel,omitempty"`
	MaxTickets   int                `json:"maxTickets"`
	Quantity     int                `json:"quantity"`
	Participants []Participant      `json:"participants"`
	Disabled     bool               `json:"disabled"`
	Loading      bool               `json:"loading"`
	Eligibility  *EligibilityResult `json:"eligibility,omitempty"`
	State        CheckoutState      `json:"state"`
	OrderID      string             `json:"orderId,omitempty"`
	Message      string             `json:"message,omitempty"`
	Quote        Quote              `json:"quote"`
}

type APIResponseEvent struct {
	ID                   string       `json:"id"`
	Title                string       `json:"title,omitempty"`
	Slug                 string       `json:"slug,omitempty"`
	Date                 string       `json:"date,omitempty"`
	StartTime            string       `json:"startTime,omitempty"`
	EndTime              string       `json:"endTime,omitempty"`
	Location             string       `json:"location,omitempty"`
	Seats                uint         `json:"seats,omitempty"`
	PurchaseMode         string       `json:"purchase_mode,omitempty"`
	ResolvedPurchaseMode PurchaseMode `json:"resolvedPurchaseMode"`
	Panel                *InfoPanel   `json:"panel,omitempty"`
	Price                float64      `json:"price"`
	MembershipFee        *float64     `json:"membershipFee,omitempty"`
	PaymentMethods       []string     `json:"paymentMethods"`
	Active               bool         `json:"active"`
	Timestamps
}
