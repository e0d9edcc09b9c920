package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/purchase"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
)

const (
	MsgEmailAlreadyRegistered = "Email already registered"
	MsgNotAMember             = "Email is not an active member"
	MsgAlreadyHasTicket       = "Email already has a ticket for this event"
	MsgDuplicateEmail         = "Email is used by another participant"
)

// CheckParticipants runs the eligibility rules of the event's own purchase mode.
// Rejections are returned as a result, never as an error.
func (s *OrderService) CheckParticipants(ctx context.Context, req types.CheckParticipantsRequestBody) (*types.EligibilityResult, error) {
	ev, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	mode := purchase.ResolveEventMode(ev)
	if mode == types.PURCHASE_ON_REQUEST {
		return nil, purchase.ErrOnRequest
	}
	return s.checkEligibility(ctx, ev, mode, req.Participants)
}

func (s *OrderService) checkEligibility(ctx context.Context, ev *models.Event, mode types.PurchaseMode, ps []types.Participant) (*types.EligibilityResult, error) {
	if len(ps) == 0 {
		return &types.EligibilityResult{Valid: false, Errors: []string{"at least one participant is required"}}, nil
	}
	if err := purchase.ValidateParticipants(ps); err != nil {
		var ve *purchase.ValidationError
		if errors.As(err, &ve) {
			return &types.EligibilityResult{Valid: false, Errors: ve.Errors}, nil
		}
		return nil, err
	}

	emails := make([]string, len(ps))
	for i, p := range ps {
		emails[i] = strings.ToLower(strings.TrimSpace(p.Email))
	}

	var problems []string
	seen := map[string]bool{}
	for i, e := range emails {
		if seen[e] {
			problems = append(problems, participantMessage(len(ps), i, MsgDuplicateEmail))
		}
		seen[e] = true
	}

	ticketed, err := s.orders.CapturedParticipants(ctx, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("loading captured orders: %w", err)
	}
	holders := map[string]bool{}
	for _, p := range ticketed {
		holders[strings.ToLower(p.Email)] = true
	}
	for i, e := range emails {
		if holders[e] {
			problems = append(problems, participantMessage(len(ps), i, MsgAlreadyHasTicket))
		}
	}

	if purchase.RequiresEligibility(mode) {
		members, err := s.members.FindMembersByEmail(ctx, emails)
		if err != nil {
			return nil, fmt.Errorf("loading members: %w", err)
		}
		now := s.now()
		valid := map[string]bool{}
		for _, m := range members {
			if m.ValidAt(now) {
				valid[strings.ToLower(m.Email)] = true
			}
		}
		for i, e := range emails {
			switch {
			case mode == types.PURCHASE_ONLY_MEMBERS && valid[e]:
				problems = append(problems, participantMessage(len(ps), i, MsgEmailAlreadyRegistered))
			case mode == types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS && !valid[e]:
				problems = append(problems, participantMessage(len(ps), i, MsgNotAMember))
			}
		}
	}

	if len(problems) > 0 {
		return &types.EligibilityResult{Valid: false, Errors: problems}, nil
	}
	return &types.EligibilityResult{Valid: true}, nil
}

func participantMessage(total, i int, msg string) string {
	if total == 1 {
		return msg
	}
	return fmt.Sprintf("participant %d: %s", i+1, msg)
}
