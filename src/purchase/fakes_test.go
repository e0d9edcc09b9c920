package purchase

import (
	"context"
	"sync"

	"github.com/Vittorix99/mcp-website-sub001/src/types"
)

type fakeGateway struct {
	mu       sync.Mutex
	create   func(ctx context.Context, req types.CreateOrderRequestBody) (*types.CreatedOrder, error)
	capture  func(ctx context.Context, id string) (*types.CaptureResult, error)
	created  []types.CreateOrderRequestBody
	captured []string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req types.CreateOrderRequestBody) (*types.CreatedOrder, error) {
	g.mu.Lock()
	g.created = append(g.created, req)
	g.mu.Unlock()
	return g.create(ctx, req)
}

func (g *fakeGateway) CaptureOrder(ctx context.Context, id string) (*types.CaptureResult, error) {
	g.mu.Lock()
	g.captured = append(g.captured, id)
	g.mu.Unlock()
	return g.capture(ctx, id)
}

func (g *fakeGateway) createCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.created)
}

func okGateway(id, captureStatus string) *fakeGateway {
	return &fakeGateway{
		create: func(ctx context.Context, req types.CreateOrderRequestBody) (*types.CreatedOrder, error) {
			return &types.CreatedOrder{ID: id, Status: string(types.ORDER_CREATED)}, nil
		},
		capture: func(ctx context.Context, orderID string) (*types.CaptureResult, error) {
			return &types.CaptureResult{ID: orderID, Status: captureStatus}, nil
		},
	}
}

type fakeVerifier struct {
	mu     sync.Mutex
	calls  int
	verify func(ctx context.Context, eventID string, mode types.PurchaseMode, ps []types.Participant) (*types.EligibilityResult, error)
}

func (v *fakeVerifier) VerifyParticipants(ctx context.Context, eventID string, mode types.PurchaseMode, ps []types.Participant) (*types.EligibilityResult, error) {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()
	return v.verify(ctx, eventID, mode, ps)
}

func (v *fakeVerifier) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func verifierReturning(res *types.EligibilityResult, err error) *fakeVerifier {
	return &fakeVerifier{verify: func(context.Context, string, types.PurchaseMode, []types.Participant) (*types.EligibilityResult, error) {
		return res, err
	}}
}

func participants(n int) []types.Participant {
	all := []types.Participant{
		{Name: "Ada", Surname: "Lovelace", Email: "ada@example.org"},
		{Name: "Alan", Surname: "Turing", Email: "alan@example.org"},
		{Name: "Joan", Surname: "Clarke", Email: "joan@example.org"},
		{Name: "Grace", Surname: "Hopper", Email: "grace@example.org"},
		{Name: "Edsger", Surname: "Dijkstra", Email: "edsger@example.org"},
	}
	return all[:n]
}
