package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/looplab/fsm"
)

// OrderGateway opens and captures provider orders.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req types.CreateOrderRequestBody) (*types.CreatedOrder, error)
	CaptureOrder(ctx context.Context, orderID string) (*types.CaptureResult, error)
}

type Transition struct {
	From    types.CheckoutState
	To      types.CheckoutState
	OrderID string
}

// Each target state is reached through exactly one event.
var checkoutEvents = map[types.CheckoutState]string{
	types.CHECKOUT_CREATING:          "create",
	types.CHECKOUT_AWAITING_APPROVAL: "await_approval",
	types.CHECKOUT_CAPTURING:         "capture",
	types.CHECKOUT_SUCCEEDED:         "succeed",
	types.CHECKOUT_FAILED:            "fail",
}

func newCheckoutFSM(initial types.CheckoutState) *fsm.FSM {
	return fsm.NewFSM(string(initial), fsm.Events{
		{Name: "create", Src: []string{string(types.CHECKOUT_IDLE), string(types.CHECKOUT_FAILED)}, Dst: string(types.CHECKOUT_CREATING)},
		{Name: "await_approval", Src: []string{string(types.CHECKOUT_CREATING)}, Dst: string(types.CHECKOUT_AWAITING_APPROVAL)},
		{Name: "capture", Src: []string{string(types.CHECKOUT_AWAITING_APPROVAL)}, Dst: string(types.CHECKOUT_CAPTURING)},
		{Name: "succeed", Src: []string{string(types.CHECKOUT_CAPTURING)}, Dst: string(types.CHECKOUT_SUCCEEDED)},
		{Name: "fail", Src: []string{
			string(types.CHECKOUT_CREATING),
			string(types.CHECKOUT_AWAITING_APPROVAL),
			string(types.CHECKOUT_CAPTURING),
		}, Dst: string(types.CHECKOUT_FAILED)},
	}, nil)
}

func canMove(from, to types.CheckoutState) bool {
	event, ok := checkoutEvents[to]
	return ok && newCheckoutFSM(from).Can(event)
}

// InFlight reports whether an order-mutating call is running or awaiting the buyer.
func InFlight(s types.CheckoutState) bool {
	return s == types.CHECKOUT_CREATING || s == types.CHECKOUT_AWAITING_APPROVAL || s == types.CHECKOUT_CAPTURING
}

// Orchestrator drives one checkout through create and capture.
// CREATING and CAPTURING are held while the gateway is called, so no second
// order-mutating call can start for the same checkout.
type Orchestrator struct {
	gateway      OrderGateway
	mode         types.PurchaseMode
	timeout      time.Duration
	report       ErrorReporter
	onTransition func(Transition)

	mu      sync.Mutex
	machine *fsm.FSM
	orderID string
	message string
	err     error
}

type OrchestratorOption func(*Orchestrator)

func WithErrorReporter(r ErrorReporter) OrchestratorOption {
	return func(o *Orchestrator) { o.report = r }
}

func WithTransitionHook(fn func(Transition)) OrchestratorOption {
	return func(o *Orchestrator) { o.onTransition = fn }
}

func WithTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func NewOrchestrator(gateway OrderGateway, mode types.PurchaseMode, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		gateway: gateway,
		mode:    mode,
		timeout: DefaultRequestTimeout,
		machine: newCheckoutFSM(types.CHECKOUT_IDLE),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() types.CheckoutState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current()
}

func (o *Orchestrator) OrderID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.orderID
}

// Message is the text to show for the current state, empty while nothing happened yet.
func (o *Orchestrator) Message() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.message
}

func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

func (o *Orchestrator) current() types.CheckoutState {
	return types.CheckoutState(o.machine.Current())
}

// move must be called with o.mu held.
func (o *Orchestrator) move(to types.CheckoutState) (Transition, error) {
	from := o.current()
	if err := o.machine.Event(context.Background(), checkoutEvents[to]); err != nil {
		return Transition{}, fmt.Errorf("checkout cannot move from %s to %s: %w", from, to, err)
	}
	return Transition{From: from, To: to, OrderID: o.orderID}, nil
}

func (o *Orchestrator) emit(tr Transition) {
	if o.onTransition != nil {
		o.onTransition(tr)
	}
}

// CreateOrder is allowed from IDLE and FAILED only. Any other state leaves the
// checkout untouched and returns ErrOrderInFlight or ErrOrderCompleted.
func (o *Orchestrator) CreateOrder(ctx context.Context, req types.CreateOrderRequestBody) (*types.CreatedOrder, error) {
	o.mu.Lock()
	switch o.current() {
	case types.CHECKOUT_SUCCEEDED:
		o.mu.Unlock()
		return nil, ErrOrderCompleted
	case types.CHECKOUT_IDLE, types.CHECKOUT_FAILED:
	default:
		o.mu.Unlock()
		return nil, ErrOrderInFlight
	}
	o.orderID = ""
	o.message = ""
	o.err = nil
	tr, _ := o.move(types.CHECKOUT_CREATING)
	o.mu.Unlock()
	o.emit(tr)

	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	created, err := o.gateway.CreateOrder(cctx, req)
	// The HTTP gateway reports an id-less body as a ProviderError; this covers the rest.
	if err == nil && (created == nil || strings.TrimSpace(created.ID) == "") {
		err = &OrderCreationError{Message: MissingOrderIDMessage}
	}
	if err != nil {
		ferr := toOrderCreationError(err)
		o.fail(ferr)
		return nil, ferr
	}

	o.mu.Lock()
	o.orderID = created.ID
	tr, _ = o.move(types.CHECKOUT_AWAITING_APPROVAL)
	o.mu.Unlock()
	o.emit(tr)
	return created, nil
}

// OnApprove captures the current order. Only a COMPLETED capture succeeds.
func (o *Orchestrator) OnApprove(ctx context.Context, orderID string) (*types.CaptureResult, error) {
	o.mu.Lock()
	if o.current() != types.CHECKOUT_AWAITING_APPROVAL {
		o.mu.Unlock()
		return nil, ErrNotAwaitingApproval
	}
	if orderID != o.orderID {
		o.mu.Unlock()
		return nil, ErrUnknownOrder
	}
	tr, _ := o.move(types.CHECKOUT_CAPTURING)
	o.mu.Unlock()
	o.emit(tr)

	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	res, err := o.gateway.CaptureOrder(cctx, orderID)
	if err != nil {
		msg, _ := providerMessage(err, NetworkErrorMessage)
		cerr := &CaptureError{OrderID: orderID, Message: msg, Err: err}
		o.fail(cerr)
		return nil, cerr
	}
	if res == nil || res.Status != types.CAPTURE_COMPLETED {
		status := ""
		if res != nil {
			status = res.Status
		}
		cerr := &CaptureError{
			OrderID: orderID,
			Status:  status,
			Message: fmt.Sprintf("Payment was not completed (status %q). Please start a new order.", status),
		}
		o.fail(cerr)
		return res, cerr
	}

	o.mu.Lock()
	tr, _ = o.move(types.CHECKOUT_SUCCEEDED)
	o.message = SuccessMessage(o.mode)
	o.mu.Unlock()
	o.emit(tr)
	return res, nil
}

// OnCancel records that the buyer closed the provider dialog without approving.
func (o *Orchestrator) OnCancel() error {
	o.mu.Lock()
	if o.current() != types.CHECKOUT_AWAITING_APPROVAL {
		o.mu.Unlock()
		return ErrNotAwaitingApproval
	}
	tr, _ := o.move(types.CHECKOUT_FAILED)
	o.message = CancelledMessage
	o.err = nil
	o.mu.Unlock()
	o.emit(tr)
	return nil
}

// OnProviderError records an error raised by the provider while the buyer was approving.
func (o *Orchestrator) OnProviderError(err error) error {
	o.mu.Lock()
	if o.current() != types.CHECKOUT_AWAITING_APPROVAL {
		o.mu.Unlock()
		return ErrNotAwaitingApproval
	}
	msg, _ := providerMessage(err, ProviderFailureMessage)
	cerr := &CaptureError{OrderID: o.orderID, Message: msg, Err: err}
	tr, ok := o.failLocked(cerr)
	o.mu.Unlock()
	if ok {
		o.notifyFailure(tr, cerr)
	}
	return nil
}

func (o *Orchestrator) fail(err error) {
	o.mu.Lock()
	tr, ok := o.failLocked(err)
	o.mu.Unlock()
	if ok {
		o.notifyFailure(tr, err)
	}
}

// failLocked must be called with o.mu held.
func (o *Orchestrator) failLocked(err error) (Transition, bool) {
	tr, moveErr := o.move(types.CHECKOUT_FAILED)
	if moveErr != nil {
		return Transition{}, false
	}
	o.message = err.Error()
	o.err = err
	return tr, true
}

func (o *Orchestrator) notifyFailure(tr Transition, err error) {
	o.emit(tr)
	if o.report != nil {
		o.report(err)
	}
}

func toOrderCreationError(err error) *OrderCreationError {
	var oce *OrderCreationError
	if errors.As(err, &oce) {
		return oce
	}
	msg, payload := providerMessage(err, NetworkErrorMessage)
	return &OrderCreationError{Message: msg, Payload: payload, Err: err}
}
