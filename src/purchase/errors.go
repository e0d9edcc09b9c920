package purchase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Vittorix99/mcp-website-sub001/src/types"
)

const (
	NetworkErrorMessage     = "We could not reach the server. Please check your connection and try again."
	MissingOrderIDMessage   = "The payment provider did not return an order. Please try again."
	EligibilityFailedNotice = "Some participants could not be verified."
	CancelledMessage        = "Payment cancelled. You can start a new order whenever you are ready."
	ProviderFailureMessage  = "The payment provider reported an error. Please start a new order."
)

var (
	ErrOrderInFlight       = errors.New("an order is already in progress for this checkout")
	ErrOrderCompleted      = errors.New("this checkout has already been paid")
	ErrNotAwaitingApproval = errors.New("no order is waiting for approval")
	ErrUnknownOrder        = errors.New("order does not belong to this checkout")
	ErrOnRequest           = errors.New("tickets for this event are available on request only")
	ErrEventInactive       = errors.New("event is not on sale")
	ErrNoPaymentMethods    = errors.New("event has no payment method enabled")
	ErrFormDisabled        = errors.New("participants cannot be changed while an order is in progress")
)

// ValidationError lists participant fields that are missing or malformed.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}

// EligibilityError carries the server's rejection list verbatim.
type EligibilityError struct {
	Errors []string
}

func (e *EligibilityError) Error() string {
	if len(e.Errors) == 0 {
		return EligibilityFailedNotice
	}
	return strings.Join(e.Errors, "; ")
}

// OrderCreationError is returned when no order could be opened with the provider.
type OrderCreationError struct {
	Message string
	Payload *types.ProviderErrorPayload
	Err     error
}

func (e *OrderCreationError) Error() string { return e.Message }
func (e *OrderCreationError) Unwrap() error { return e.Err }

// CaptureError is returned when an approved order was not completed.
// The order cannot be captured again; a new one has to be created.
type CaptureError struct {
	OrderID string
	Status  string
	Message string
	Err     error
}

func (e *CaptureError) Error() string { return e.Message }
func (e *CaptureError) Unwrap() error { return e.Err }

// ProviderError is a non-2xx answer from the order endpoints.
type ProviderError struct {
	StatusCode int
	Payload    *types.ProviderErrorPayload
	Raw        string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message())
}

// Message builds the user-facing text from details[0] and debug_id, else the raw payload.
func (e *ProviderError) Message() string {
	if e.Payload != nil && len(e.Payload.Details) > 0 {
		d := e.Payload.Details[0]
		msg := strings.TrimSpace(strings.Join([]string{d.Issue, d.Description}, " "))
		if msg != "" {
			if e.Payload.DebugID != "" {
				msg = fmt.Sprintf("%s (debug id: %s)", msg, e.Payload.DebugID)
			}
			return msg
		}
	}
	if e.Raw != "" {
		return e.Raw
	}
	if e.Payload != nil {
		b, err := json.Marshal(e.Payload)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func providerMessage(err error, fallback string) (string, *types.ProviderErrorPayload) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Message(), pe.Payload
	}
	return fallback, nil
}
