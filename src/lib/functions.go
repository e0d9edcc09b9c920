package lib

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/purchase"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type idempotencyKey struct{}

// WithIdempotencyKey attaches the key sent as Idempotency-Key on order creation.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, idempotencyKey{}, key)
}

func IdempotencyKeyFrom(ctx context.Context) string {
	if v, ok := ctx.Value(idempotencyKey{}).(string); ok && v != "" {
		return v
	}
	return uuid.NewString()
}

// FunctionsClient calls the backend order and participant endpoints.
type FunctionsClient struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

func NewFunctionsClient(baseURL string, timeout time.Duration) *FunctionsClient {
	return &FunctionsClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("mcp-website/functions"),
	}
}

func (c *FunctionsClient) CreateOrder(ctx context.Context, req types.CreateOrderRequestBody) (*types.CreatedOrder, error) {
	ctx, span := c.tracer.Start(ctx, "functions.create_order", trace.WithAttributes(
		attribute.String("event.id", req.EventID),
		attribute.Int("order.quantity", req.Quantity),
	))
	defer span.End()

	headers := map[string]string{"Idempotency-Key": IdempotencyKeyFrom(ctx)}
	status, body, err := c.post(ctx, "/orders", req, headers)
	if err != nil {
		return nil, recordError(span, err)
	}
	// A 2xx without an id carries the provider's reason in its body.
	if !success(status) || gjson.Get(body, "id").String() == "" {
		return nil, recordError(span, providerError(status, body))
	}
	created := &types.CreatedOrder{
		ID:           gjson.Get(body, "id").String(),
		Status:       gjson.Get(body, "status").String(),
		AmountTotal:  gjson.Get(body, "amountTotal").Float(),
		Currency:     gjson.Get(body, "currency").String(),
		ClientSecret: gjson.Get(body, "clientSecret").String(),
	}
	span.SetAttributes(attribute.String("order.id", created.ID))
	return created, nil
}

func (c *FunctionsClient) CaptureOrder(ctx context.Context, orderID string) (*types.CaptureResult, error) {
	ctx, span := c.tracer.Start(ctx, "functions.capture_order", trace.WithAttributes(
		attribute.String("order.id", orderID),
	))
	defer span.End()

	status, body, err := c.post(ctx, fmt.Sprintf("/orders/%s/capture", url.PathEscape(orderID)), nil, nil)
	if err != nil {
		return nil, recordError(span, err)
	}
	if !success(status) {
		return nil, recordError(span, providerError(status, body))
	}
	res := &types.CaptureResult{
		ID:     gjson.Get(body, "id").String(),
		Status: gjson.Get(body, "status").String(),
	}
	span.SetAttributes(attribute.String("capture.status", res.Status))
	return res, nil
}

// VerifyParticipants treats 4xx answers carrying a verdict as a rejection, not an error.
func (c *FunctionsClient) VerifyParticipants(ctx context.Context, eventID string, mode types.PurchaseMode, participants []types.Participant) (*types.EligibilityResult, error) {
	ctx, span := c.tracer.Start(ctx, "functions.check_participants", trace.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.String("purchase.mode", string(mode)),
		attribute.Int("participants.count", len(participants)),
	))
	defer span.End()

	payload := types.CheckParticipantsRequestBody{EventID: eventID, PurchaseMode: string(mode), Participants: participants}
	status, body, err := c.post(ctx, "/participants/check", payload, nil)
	if err != nil {
		return nil, recordError(span, err)
	}
	if status >= 500 || !gjson.Valid(body) {
		return nil, recordError(span, fmt.Errorf("participants check failed with status %d", status))
	}
	valid := gjson.Get(body, "valid")
	res := &types.EligibilityResult{Valid: success(status) && valid.Bool()}
	for _, e := range gjson.Get(body, "errors").Array() {
		res.Errors = append(res.Errors, e.String())
	}
	if msg := gjson.Get(body, "error"); msg.Exists() && msg.String() != "" {
		res.Errors = append(res.Errors, msg.String())
	}
	if !success(status) && len(res.Errors) == 0 && !valid.Exists() {
		return nil, recordError(span, fmt.Errorf("participants check failed with status %d", status))
	}
	span.SetAttributes(attribute.Bool("participants.valid", res.Valid))
	return res, nil
}

func (c *FunctionsClient) post(ctx context.Context, path string, payload any, headers map[string]string) (int, string, error) {
	var reader io.Reader = http.NoBody
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, "", err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(b), nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

// providerError reads {name, message, details:[{issue, description}], debug_id},
// also when it is nested under "error".
func providerError(status int, body string) *purchase.ProviderError {
	pe := &purchase.ProviderError{StatusCode: status, Raw: body}
	if !gjson.Valid(body) {
		return pe
	}
	root := gjson.Parse(body)
	if nested := root.Get("error"); nested.IsObject() {
		root = nested
	}
	if !root.Get("details").Exists() && !root.Get("debug_id").Exists() && !root.Get("name").Exists() {
		return pe
	}
	payload := &types.ProviderErrorPayload{
		Name:    root.Get("name").String(),
		Message: root.Get("message").String(),
		DebugID: root.Get("debug_id").String(),
	}
	for _, d := range root.Get("details").Array() {
		payload.Details = append(payload.Details, types.ProviderErrorDetail{
			Issue:       d.Get("issue").String(),
			Description: d.Get("description").String(),
		})
	}
	pe.Payload = payload
	return pe
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	var pe *purchase.ProviderError
	if errors.As(err, &pe) {
		span.SetAttributes(attribute.Int("http.status_code", pe.StatusCode))
	}
	span.SetStatus(codes.Error, err.Error())
	return err
}
