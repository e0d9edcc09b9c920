package common

import (
	"context"
	"testing"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/purchase"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCheckParticipantsRegisteredMembers(t *testing.T) {
	svc, d := newOrderService(t)
	expired := fixedNow.Add(-24 * time.Hour)
	d.events.On("FindEvent", mock.Anything, "ev1").Return(sellableEvent("registered"), nil)
	d.orders.On("CapturedParticipants", mock.Anything, "ev1").Return([]types.Participant{}, nil)
	d.members.On("FindMembersByEmail", mock.Anything, []string{"ada@example.org", "grace@example.org", "alan@example.org"}).
		Return([]models.Member{
			{Email: "ada@example.org", Active: true},
			{Email: "grace@example.org", Active: true, ExpiresAt: &expired},
		}, nil)

	res, err := svc.CheckParticipants(context.Background(), types.CheckParticipantsRequestBody{
		EventID:      "ev1",
		PurchaseMode: "PUBLIC",
		Participants: someParticipants(3),
	})

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"participant 2: " + MsgNotAMember,
		"participant 3: " + MsgNotAMember,
	}, res.Errors)
}

func TestCheckParticipantsTicketHoldersAndDuplicates(t *testing.T) {
	svc, d := newOrderService(t)
	d.events.On("FindEvent", mock.Anything, "ev1").Return(sellableEvent("public"), nil)
	d.orders.On("CapturedParticipants", mock.Anything, "ev1").
		Return([]types.Participant{{Email: "Grace@Example.org"}}, nil)

	ps := someParticipants(2)
	ps = append(ps, types.Participant{Name: "Ada", Surname: "Again", Email: "ADA@example.org"})
	res, err := svc.CheckParticipants(context.Background(), types.CheckParticipantsRequestBody{EventID: "ev1", Participants: ps})

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"participant 3: " + MsgDuplicateEmail,
		"participant 2: " + MsgAlreadyHasTicket,
	}, res.Errors)
	d.members.AssertNotCalled(t, "FindMembersByEmail", mock.Anything, mock.Anything)
}

func TestCheckParticipantsInvalidData(t *testing.T) {
	svc, d := newOrderService(t)
	d.events.On("FindEvent", mock.Anything, "ev1").Return(sellableEvent("onlymembers"), nil)

	res, err := svc.CheckParticipants(context.Background(), types.CheckParticipantsRequestBody{
		EventID:      "ev1",
		Participants: []types.Participant{{Name: "Ada", Surname: "L", Email: "nope"}},
	})

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)
}

func TestCheckParticipantsNewMembersPass(t *testing.T) {
	svc, d := newOrderService(t)
	d.events.On("FindEvent", mock.Anything, "ev1").Return(sellableEvent("ONLY_MEMBERS"), nil)
	d.orders.On("CapturedParticipants", mock.Anything, "ev1").Return(nil, nil)
	d.members.On("FindMembersByEmail", mock.Anything, []string{"ada@example.org"}).Return(nil, nil)

	res, err := svc.CheckParticipants(context.Background(), types.CheckParticipantsRequestBody{EventID: "ev1", Participants: someParticipants(1)})

	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestCheckParticipantsOnRequest(t *testing.T) {
	svc, d := newOrderService(t)
	d.events.On("FindEvent", mock.Anything, "ev1").Return(sellableEvent("on request"), nil)

	_, err := svc.CheckParticipants(context.Background(), types.CheckParticipantsRequestBody{EventID: "ev1", Participants: someParticipants(1)})
	assert.ErrorIs(t, err, purchase.ErrOnRequest)
}
