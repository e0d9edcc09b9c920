package purchase

import (
	"math"

	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
)

const DefaultMembershipFee = 10.0

// MembershipFeeFor returns the event's own fee, or the fallback when the event carries none.
func MembershipFeeFor(ev *models.Event, fallback float64) float64 {
	if ev != nil && ev.MembershipFee != nil && *ev.MembershipFee >= 0 {
		return *ev.MembershipFee
	}
	return fallback
}

// ComputeQuote prices quantity tickets. Only ONLY_MEMBERS bundles the membership fee.
func ComputeQuote(ev *models.Event, mode types.PurchaseMode, quantity int, fallbackFee float64, currency string) types.Quote {
	q := types.Quote{Quantity: quantity, Currency: currency}
	if ev == nil {
		return q
	}
	q.TicketPrice = roundCents(ev.Price)
	if mode == types.PURCHASE_ONLY_MEMBERS {
		q.MembershipFee = roundCents(MembershipFeeFor(ev, fallbackFee))
	}
	q.UnitPrice = roundCents(q.TicketPrice + q.MembershipFee)
	q.Total = roundCents(q.UnitPrice * float64(quantity))
	return q
}

// ToMinorUnits converts an amount to cents for the payment provider.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
