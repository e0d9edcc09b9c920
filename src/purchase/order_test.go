package purchase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/looplab/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createReq() types.CreateOrderRequestBody {
	return types.CreateOrderRequestBody{EventID: "ev1", TicketPrice: 15, Quantity: 1, Participants: participants(1)}
}

func TestOrchestratorHappyPath(t *testing.T) {
	var seen []Transition
	gw := okGateway("ORD1", types.CAPTURE_COMPLETED)
	o := NewOrchestrator(gw, types.PURCHASE_PUBLIC, WithTransitionHook(func(tr Transition) { seen = append(seen, tr) }))

	created, err := o.CreateOrder(context.Background(), createReq())
	require.NoError(t, err)
	assert.Equal(t, "ORD1", created.ID)
	assert.Equal(t, types.CHECKOUT_AWAITING_APPROVAL, o.State())

	res, err := o.OnApprove(context.Background(), "ORD1")
	require.NoError(t, err)
	assert.Equal(t, types.CAPTURE_COMPLETED, res.Status)
	assert.Equal(t, types.CHECKOUT_SUCCEEDED, o.State())
	assert.Equal(t, DefaultSuccessMessage, o.Message())

	var states []types.CheckoutState
	for _, tr := range seen {
		states = append(states, tr.To)
	}
	assert.Equal(t, []types.CheckoutState{
		types.CHECKOUT_CREATING,
		types.CHECKOUT_AWAITING_APPROVAL,
		types.CHECKOUT_CAPTURING,
		types.CHECKOUT_SUCCEEDED,
	}, states)
}

func TestOrchestratorRejectsCreateWhileAwaitingApproval(t *testing.T) {
	gw := okGateway("ORD1", types.CAPTURE_COMPLETED)
	o := NewOrchestrator(gw, types.PURCHASE_PUBLIC)

	_, err := o.CreateOrder(context.Background(), createReq())
	require.NoError(t, err)

	_, err = o.CreateOrder(context.Background(), createReq())
	assert.ErrorIs(t, err, ErrOrderInFlight)
	assert.Equal(t, types.CHECKOUT_AWAITING_APPROVAL, o.State())
	assert.Equal(t, "ORD1", o.OrderID())
	assert.Equal(t, 1, gw.createCalls())
}

func TestOrchestratorRejectsConcurrentCreate(t *testing.T) {
	release := make(chan struct{})
	gw := okGateway("ORD1", types.CAPTURE_COMPLETED)
	inner := gw.create
	gw.create = func(ctx context.Context, req types.CreateOrderRequestBody) (*types.CreatedOrder, error) {
		<-release
		return inner(ctx, req)
	}
	o := NewOrchestrator(gw, types.PURCHASE_PUBLIC)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = o.CreateOrder(context.Background(), createReq())
	}()
	require.Eventually(t, func() bool { return o.State() == types.CHECKOUT_CREATING }, time.Second, time.Millisecond)

	_, err := o.CreateOrder(context.Background(), createReq())
	assert.ErrorIs(t, err, ErrOrderInFlight)

	close(release)
	wg.Wait()
	assert.Equal(t, 1, gw.createCalls())
}

func TestOrchestratorCapturePendingFails(t *testing.T) {
	var reported []error
	gw := okGateway("ORD1", "PENDING")
	o := NewOrchestrator(gw, types.PURCHASE_PUBLIC, WithErrorReporter(func(err error) { reported = append(reported, err) }))

	_, err := o.CreateOrder(context.Background(), createReq())
	require.NoError(t, err)

	_, err = o.OnApprove(context.Background(), "ORD1")
	var ce *CaptureError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "PENDING", ce.Status)
	assert.Equal(t, types.CHECKOUT_FAILED, o.State())
	assert.Len(t, reported, 1)

	// A failed capture is not retried in place.
	_, err = o.OnApprove(context.Background(), "ORD1")
	assert.ErrorIs(t, err, ErrNotAwaitingApproval)
	assert.Len(t, gw.captured, 1)
}

func TestOrchestratorCreateFailureUsesProviderDetail(t *testing.T) {
	gw := okGateway("", "")
	gw.create = func(context.Context, types.CreateOrderRequestBody) (*types.CreatedOrder, error) {
		return nil, &ProviderError{StatusCode: 422, Payload: &types.ProviderErrorPayload{
			Name:    "UNPROCESSABLE_ENTITY",
			Details: []types.ProviderErrorDetail{{Issue: "card_declined", Description: "Your card was declined."}},
			DebugID: "req_123",
		}}
	}
	o := NewOrchestrator(gw, types.PURCHASE_PUBLIC)

	_, err := o.CreateOrder(context.Background(), createReq())
	var oce *OrderCreationError
	require.ErrorAs(t, err, &oce)
	assert.Equal(t, "card_declined Your card was declined. (debug id: req_123)", oce.Message)
	assert.Equal(t, types.CHECKOUT_FAILED, o.State())
	assert.Equal(t, oce.Message, o.Message())
}

func TestOrchestratorCreateFailureWithoutDetailUsesRawPayload(t *testing.T) {
	gw := okGateway("", "")
	gw.create = func(context.Context, types.CreateOrderRequestBody) (*types.CreatedOrder, error) {
		return nil, &ProviderError{StatusCode: 500, Raw: `{"error":"boom"}`}
	}
	o := NewOrchestrator(gw, types.PURCHASE_PUBLIC)

	_, err := o.CreateOrder(context.Background(), createReq())
	assert.EqualError(t, err, `{"error":"boom"}`)
}

func TestOrchestratorOrderWithoutIDFails(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name: "details",
			err: &ProviderError{StatusCode: 200, Raw: `{"name":"UNPROCESSABLE_ENTITY"}`, Payload: &types.ProviderErrorPayload{
				Name:    "UNPROCESSABLE_ENTITY",
				Details: []types.ProviderErrorDetail{{Issue: "INSTRUMENT_DECLINED", Description: "declined"}},
				DebugID: "dbg1",
			}},
			message: "INSTRUMENT_DECLINED declined (debug id: dbg1)",
		},
		{name: "raw", err: &ProviderError{StatusCode: 200, Raw: `{}`}, message: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := okGateway("", "")
			gw.create = func(context.Context, types.CreateOrderRequestBody) (*types.CreatedOrder, error) {
				return nil, tt.err
			}
			o := NewOrchestrator(gw, types.PURCHASE_PUBLIC)

			_, err := o.CreateOrder(context.Background(), createReq())

			var oce *OrderCreationError
			require.ErrorAs(t, err, &oce)
			assert.Equal(t, tt.message, oce.Message)
			assert.Equal(t, types.CHECKOUT_FAILED, o.State())
			assert.Equal(t, tt.message, o.Message())
		})
	}
}

func TestOrchestratorEmptyResultFails(t *testing.T) {
	gw := okGateway("", "")
	gw.create = func(context.Context, types.CreateOrderRequestBody) (*types.CreatedOrder, error) {
		return nil, nil
	}
	o := NewOrchestrator(gw, types.PURCHASE_PUBLIC)

	_, err := o.CreateOrder(context.Background(), createReq())
	assert.EqualError(t, err, MissingOrderIDMessage)
	assert.Equal(t, types.CHECKOUT_FAILED, o.State())

	o = NewOrchestrator(okGateway("  ", types.CAPTURE_COMPLETED), types.PURCHASE_PUBLIC)
	_, err = o.CreateOrder(context.Background(), createReq())
	assert.EqualError(t, err, MissingOrderIDMessage)
}

func TestOrchestratorNetworkFailureIsGeneric(t *testing.T) {
	gw := okGateway("", "")
	gw.create = func(context.Context, types.CreateOrderRequestBody) (*types.CreatedOrder, error) {
		return nil, errors.New("read tcp: connection reset by peer")
	}
	o := NewOrchestrator(gw, types.PURCHASE_PUBLIC)

	_, err := o.CreateOrder(context.Background(), createReq())
	assert.EqualError(t, err, NetworkErrorMessage)
}

func TestOrchestratorRetryAfterFailure(t *testing.T) {
	calls := 0
	gw := okGateway("ORD2", types.CAPTURE_COMPLETED)
	gw.create = func(context.Context, types.CreateOrderRequestBody) (*types.CreatedOrder, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("timeout")
		}
		return &types.CreatedOrder{ID: "ORD2"}, nil
	}
	o := NewOrchestrator(gw, types.PURCHASE_PUBLIC)

	_, err := o.CreateOrder(context.Background(), createReq())
	require.Error(t, err)
	created, err := o.CreateOrder(context.Background(), createReq())
	require.NoError(t, err)
	assert.Equal(t, "ORD2", created.ID)
	assert.Empty(t, o.Message())
	assert.Nil(t, o.Err())
}

func TestOrchestratorApproveUnknownOrder(t *testing.T) {
	o := NewOrchestrator(okGateway("ORD1", types.CAPTURE_COMPLETED), types.PURCHASE_PUBLIC)
	_, err := o.CreateOrder(context.Background(), createReq())
	require.NoError(t, err)

	_, err = o.OnApprove(context.Background(), "ORD9")
	assert.ErrorIs(t, err, ErrUnknownOrder)
	assert.Equal(t, types.CHECKOUT_AWAITING_APPROVAL, o.State())
}

func TestOrchestratorCancelAndProviderError(t *testing.T) {
	o := NewOrchestrator(okGateway("ORD1", types.CAPTURE_COMPLETED), types.PURCHASE_PUBLIC)
	assert.ErrorIs(t, o.OnCancel(), ErrNotAwaitingApproval)

	_, err := o.CreateOrder(context.Background(), createReq())
	require.NoError(t, err)
	require.NoError(t, o.OnCancel())
	assert.Equal(t, types.CHECKOUT_FAILED, o.State())
	assert.Equal(t, CancelledMessage, o.Message())

	_, err = o.CreateOrder(context.Background(), createReq())
	require.NoError(t, err)
	require.NoError(t, o.OnProviderError(errors.New("popup blocked")))
	assert.Equal(t, types.CHECKOUT_FAILED, o.State())
	assert.Equal(t, ProviderFailureMessage, o.Message())
}

func TestOrchestratorNoNewOrderAfterSuccess(t *testing.T) {
	o := NewOrchestrator(okGateway("ORD1", types.CAPTURE_COMPLETED), types.PURCHASE_ONLY_MEMBERS)
	_, err := o.CreateOrder(context.Background(), createReq())
	require.NoError(t, err)
	_, err = o.OnApprove(context.Background(), "ORD1")
	require.NoError(t, err)
	assert.Equal(t, SuccessMessage(types.PURCHASE_ONLY_MEMBERS), o.Message())

	_, err = o.CreateOrder(context.Background(), createReq())
	assert.ErrorIs(t, err, ErrOrderCompleted)
	assert.Equal(t, types.CHECKOUT_SUCCEEDED, o.State())
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, canMove(types.CHECKOUT_IDLE, types.CHECKOUT_CREATING))
	assert.True(t, canMove(types.CHECKOUT_FAILED, types.CHECKOUT_CREATING))
	assert.False(t, canMove(types.CHECKOUT_AWAITING_APPROVAL, types.CHECKOUT_CREATING))
	assert.False(t, canMove(types.CHECKOUT_SUCCEEDED, types.CHECKOUT_FAILED))
	assert.False(t, canMove(types.CHECKOUT_IDLE, types.CHECKOUT_FAILED))
	for _, from := range []types.CheckoutState{types.CHECKOUT_CREATING, types.CHECKOUT_AWAITING_APPROVAL, types.CHECKOUT_CAPTURING} {
		assert.True(t, canMove(from, types.CHECKOUT_FAILED), "from %s", from)
	}
}

func TestOrchestratorRefusesTransitionOutsideTable(t *testing.T) {
	o := NewOrchestrator(okGateway("ORD1", types.CAPTURE_COMPLETED), types.PURCHASE_PUBLIC)

	o.mu.Lock()
	_, err := o.move(types.CHECKOUT_SUCCEEDED)
	o.mu.Unlock()

	var invalid fsm.InvalidEventError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, types.CHECKOUT_IDLE, o.State())
}
