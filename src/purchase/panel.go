package purchase

import (
	"fmt"

	"github.com/Vittorix99/mcp-website-sub001/src/types"
)

var panels = map[types.PurchaseMode]types.PanelVariant{
	types.PURCHASE_PUBLIC:                          types.PANEL_PUBLIC,
	types.PURCHASE_ONLY_MEMBERS:                    types.PANEL_ONLY_MEMBERS,
	types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS: types.PANEL_ONLY_ALREADY_REGISTERED,
}

// SelectPanel returns NONE for ON_REQUEST and for any mode without a panel.
// It never falls back to the public panel.
func SelectPanel(mode types.PurchaseMode) types.PanelVariant {
	if v, ok := panels[mode]; ok {
		return v
	}
	return types.PANEL_NONE
}

// DescribePanel returns the disclosure shown next to the checkout, or nil when no panel is shown.
func DescribePanel(mode types.PurchaseMode, membershipFee float64) *types.InfoPanel {
	switch variant := SelectPanel(mode); variant {
	case types.PANEL_PUBLIC:
		return &types.InfoPanel{
			Variant: variant,
			Title:   "Open event",
			Body:    "Anyone can buy a ticket for this event. Enter one participant per ticket.",
		}
	case types.PANEL_ONLY_MEMBERS:
		return &types.InfoPanel{
			Variant: variant,
			Title:   "Members only",
			Body: fmt.Sprintf("This event is reserved to members. The ticket price includes the annual membership fee (%s). "+
				"Participants who are not members yet become members with this purchase.", formatAmount(membershipFee)),
		}
	case types.PANEL_ONLY_ALREADY_REGISTERED:
		return &types.InfoPanel{
			Variant: variant,
			Title:   "Registered members only",
			Body:    "Only participants who already hold a valid membership can attend. Their details are checked before payment.",
		}
	}
	return nil
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
