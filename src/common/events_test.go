package common

import (
	"context"
	"testing"

	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEventResponse(t *testing.T) {
	ev := sellableEvent("onlymembers")
	res := EventResponse(ev, 10)

	assert.Equal(t, "onlymembers", res.PurchaseMode)
	assert.Equal(t, types.PURCHASE_ONLY_MEMBERS, res.ResolvedPurchaseMode)
	require.NotNil(t, res.Panel)
	assert.Equal(t, types.PANEL_ONLY_MEMBERS, res.Panel.Variant)
	assert.Equal(t, []string{"card"}, res.PaymentMethods)

	onRequest := EventResponse(&models.Event{ID: "x", Type: "private"}, 10)
	assert.Equal(t, types.PURCHASE_ON_REQUEST, onRequest.ResolvedPurchaseMode)
	assert.Nil(t, onRequest.Panel)
	assert.NotNil(t, onRequest.PaymentMethods)
}

func TestEventService(t *testing.T) {
	events := &mockEvents{}
	svc := NewEventService(events, 10)
	events.On("ListEvents", mock.Anything, true).Return([]models.Event{*sellableEvent("public")}, nil)
	events.On("FindEvent", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	list, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, types.PURCHASE_PUBLIC, list[0].ResolvedPurchaseMode)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
	events.AssertExpectations(t)
}
