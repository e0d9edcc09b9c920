package common

import (
	"context"

	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/purchase"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
)

// EventResponse annotates the raw event with its resolved mode and info panel.
func EventResponse(ev *models.Event, fallbackFee float64) types.APIResponseEvent {
	mode := purchase.ResolveEventMode(ev)
	methods := []string(ev.PaymentMethods)
	if methods == nil {
		methods = []string{}
	}
	return types.APIResponseEvent{
		ID:                   ev.ID,
		Title:                ev.Title,
		Slug:                 ev.Slug,
		Date:                 ev.Date,
		StartTime:            ev.StartTime,
		EndTime:              ev.EndTime,
		Location:             ev.Location,
		Seats:                ev.Seats,
		PurchaseMode:         ev.PurchaseMode,
		ResolvedPurchaseMode: mode,
		Panel:                purchase.DescribePanel(mode, purchase.MembershipFeeFor(ev, fallbackFee)),
		Price:                ev.Price,
		MembershipFee:        ev.MembershipFee,
		PaymentMethods:       methods,
		Active:               ev.Active,
	}
}

type EventService struct {
	events      EventRepository
	fallbackFee float64
}

func NewEventService(events EventRepository, fallbackFee float64) *EventService {
	return &EventService{events: events, fallbackFee: fallbackFee}
}

func (s *EventService) List(ctx context.Context, activeOnly bool) ([]types.APIResponseEvent, error) {
	events, err := s.events.ListEvents(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]types.APIResponseEvent, 0, len(events))
	for i := range events {
		out = append(out, EventResponse(&events[i], s.fallbackFee))
	}
	return out, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*types.APIResponseEvent, error) {
	ev, err := findEvent(ctx, s.events, id)
	if err != nil {
		return nil, err
	}
	res := EventResponse(ev, s.fallbackFee)
	return &res, nil
}
