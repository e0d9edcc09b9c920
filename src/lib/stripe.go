package lib

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/Vittorix99/mcp-website-sub001/src/purchase"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

// PAYMENT_CANCELED is the status of a cancelled PaymentIntent as returned by CaptureStatus.
const PAYMENT_CANCELED = "CANCELED"

type PaymentInput struct {
	AmountMinor    int64
	Currency       string
	Methods        []string
	Description    string
	Descriptor     string
	Metadata       map[string]string
	IdempotencyKey string
}

type Payment struct {
	ID           string
	Status       string
	AmountMinor  int64
	Currency     string
	ClientSecret string
}

// StripeProvider opens PaymentIntents with manual capture so that the charge is
// only taken on capture.
type StripeProvider struct {
	client *stripe.Client
}

func NewStripeProvider(c *stripe.Client) *StripeProvider {
	if c == nil {
		c = GetStripeClient()
	}
	return &StripeProvider{client: c}
}

func (p *StripeProvider) CreatePayment(ctx context.Context, in PaymentInput) (*Payment, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:             stripe.Int64(in.AmountMinor),
		Currency:           stripe.String(strings.ToLower(in.Currency)),
		CaptureMethod:      stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		PaymentMethodTypes: stripe.StringSlice(in.Methods),
		Description:        stripe.String(in.Description),
	}
	if in.Descriptor != "" {
		params.StatementDescriptorSuffix = stripe.String(in.Descriptor)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}
	pi, err := p.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, StripeProviderError(err)
	}
	return paymentFromIntent(pi), nil
}

func (p *StripeProvider) CapturePayment(ctx context.Context, id string) (*Payment, error) {
	pi, err := p.client.V1PaymentIntents.Capture(ctx, id, &stripe.PaymentIntentCaptureParams{})
	if err != nil {
		return nil, StripeProviderError(err)
	}
	return paymentFromIntent(pi), nil
}

func (p *StripeProvider) GetPayment(ctx context.Context, id string) (*Payment, error) {
	pi, err := p.client.V1PaymentIntents.Retrieve(ctx, id, &stripe.PaymentIntentRetrieveParams{})
	if err != nil {
		return nil, StripeProviderError(err)
	}
	return paymentFromIntent(pi), nil
}

func (p *StripeProvider) CancelPayment(ctx context.Context, id string) error {
	_, err := p.client.V1PaymentIntents.Cancel(ctx, id, &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonAbandoned)),
	})
	if err != nil {
		return StripeProviderError(err)
	}
	return nil
}

func paymentFromIntent(pi *stripe.PaymentIntent) *Payment {
	return &Payment{
		ID:           pi.ID,
		Status:       CaptureStatus(pi.Status),
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
	}
}

// CaptureStatus maps a PaymentIntent status to the order status vocabulary:
// succeeded is COMPLETED, everything else is returned upper-cased.
func CaptureStatus(s stripe.PaymentIntentStatus) string {
	if s == stripe.PaymentIntentStatusSucceeded {
		return types.CAPTURE_COMPLETED
	}
	return strings.ToUpper(string(s))
}

// StripeProviderError converts Stripe API errors to the provider error payload.
func StripeProviderError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return fmt.Errorf("stripe: %w", err)
	}
	status := se.HTTPStatusCode
	if status == 0 {
		status = http.StatusBadGateway
	}
	issue := string(se.Code)
	if issue == "" {
		issue = string(se.Type)
	}
	return &purchase.ProviderError{
		StatusCode: status,
		Payload: &types.ProviderErrorPayload{
			Name:    strings.ToUpper(string(se.Type)),
			Message: se.Msg,
			Details: []types.ProviderErrorDetail{{Issue: issue, Description: se.Msg}},
			DebugID: se.RequestID,
		},
	}
}
