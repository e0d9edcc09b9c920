package purchase

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/go-playground/validator/v10"
)

const DefaultMaxTickets = 5

var validate = validator.New(validator.WithRequiredStructEnabled())

// Form holds the ticket quantity and one participant record per ticket.
// Records past the current quantity are kept so that raising the quantity restores them.
// Form is not safe for concurrent use; Session guards it.
type Form struct {
	maxTickets   int
	quantity     int
	participants []types.Participant
	disabled     bool
}

func NewForm(maxTickets int) *Form {
	if maxTickets < 1 {
		maxTickets = DefaultMaxTickets
	}
	return &Form{
		maxTickets:   maxTickets,
		quantity:     1,
		participants: make([]types.Participant, 1),
	}
}

func (f *Form) Quantity() int { return f.quantity }
func (f *Form) MaxTickets() int { return f.maxTickets }
func (f *Form) Disabled() bool { return f.disabled }
func (f *Form) Disable() { f.disabled = true }
func (f *Form) Enable() { f.disabled = false }

// Participants returns a copy of the first Quantity() records.
func (f *Form) Participants() []types.Participant {
	out := make([]types.Participant, f.quantity)
	copy(out, f.participants[:f.quantity])
	return out
}

// SetQuantity ignores values outside [1, MaxTickets] and any change while disabled.
func (f *Form) SetQuantity(n int) bool {
	if f.disabled || n < 1 || n > f.maxTickets || n == f.quantity {
		return false
	}
	for len(f.participants) < n {
		f.participants = append(f.participants, types.Participant{})
	}
	f.quantity = n
	return true
}

func (f *Form) SetQuantityString(s string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return f.SetQuantity(n)
}

func (f *Form) Increment() bool { return f.SetQuantity(f.quantity + 1) }
func (f *Form) Decrement() bool { return f.SetQuantity(f.quantity - 1) }

// SetParticipants overwrites the first len(ps) records.
func (f *Form) SetParticipants(ps []types.Participant) error {
	if f.disabled {
		return ErrFormDisabled
	}
	if len(ps) > f.quantity {
		return &ValidationError{Errors: []string{
			fmt.Sprintf("%d participants submitted for %d tickets", len(ps), f.quantity),
		}}
	}
	for i, p := range ps {
		f.participants[i] = normalizeParticipant(p)
	}
	return nil
}

func (f *Form) SetParticipant(i int, p types.Participant) error {
	if f.disabled {
		return ErrFormDisabled
	}
	if i < 0 || i >= f.quantity {
		return &ValidationError{Errors: []string{fmt.Sprintf("participant %d does not exist", i+1)}}
	}
	f.participants[i] = normalizeParticipant(p)
	return nil
}

// Validate checks every active record for name, surname and a well-formed email.
func (f *Form) Validate() error {
	return ValidateParticipants(f.Participants())
}

func ValidateParticipants(ps []types.Participant) error {
	var msgs []string
	for i, p := range ps {
		err := validate.Struct(normalizeParticipant(p))
		if err == nil {
			continue
		}
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			msgs = append(msgs, fmt.Sprintf("participant %d: %s", i+1, err.Error()))
			continue
		}
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("participant %d: %s", i+1, describeFieldError(fe)))
		}
	}
	if len(msgs) > 0 {
		return &ValidationError{Errors: msgs}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " is not a valid email address"
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

func normalizeParticipant(p types.Participant) types.Participant {
	return types.Participant{
		Name:      strings.TrimSpace(p.Name),
		Surname:   strings.TrimSpace(p.Surname),
		Email:     strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:     strings.TrimSpace(p.Phone),
		Birthdate: strings.TrimSpace(p.Birthdate),
	}
}
