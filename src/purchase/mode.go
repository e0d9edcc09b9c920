package purchase

import (
	"regexp"
	"strings"

	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
)

// LegacyModes maps historical purchase_mode and type values to their canonical mode.
// Keys are trimmed and lower-cased.
var LegacyModes = map[string]types.PurchaseMode{
	"public":   types.PURCHASE_PUBLIC,
	"pubblico": types.PURCHASE_PUBLIC,
	"open":     types.PURCHASE_PUBLIC,
	"standard": types.PURCHASE_PUBLIC,
	"normal":   types.PURCHASE_PUBLIC,
	"all":      types.PURCHASE_PUBLIC,

	"onlymembers":  types.PURCHASE_ONLY_MEMBERS,
	"only members": types.PURCHASE_ONLY_MEMBERS,
	"only-members": types.PURCHASE_ONLY_MEMBERS,
	"members":      types.PURCHASE_ONLY_MEMBERS,
	"members only": types.PURCHASE_ONLY_MEMBERS,
	"members_only": types.PURCHASE_ONLY_MEMBERS,
	"membership":   types.PURCHASE_ONLY_MEMBERS,
	"soci":         types.PURCHASE_ONLY_MEMBERS,
	"solo soci":    types.PURCHASE_ONLY_MEMBERS,

	"onlyalreadyregisteredmembers":    types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS,
	"only already registered members": types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS,
	"already registered":              types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS,
	"already_registered":              types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS,
	"alreadyregistered":               types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS,
	"registered":                      types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS,
	"registered members":              types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS,
	"only_registered_members":         types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS,
	"soci registrati":                 types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS,

	"onrequest":    types.PURCHASE_ON_REQUEST,
	"on request":   types.PURCHASE_ON_REQUEST,
	"request":      types.PURCHASE_ON_REQUEST,
	"su richiesta": types.PURCHASE_ON_REQUEST,
	"private":      types.PURCHASE_ON_REQUEST,
	"invite":       types.PURCHASE_ON_REQUEST,
}

var separators = regexp.MustCompile(`[\s-]+`)

// CheckSellable returns nil for an event open to self-service checkout, else the reason it is not.
func CheckSellable(ev *models.Event) error {
	switch {
	case ev.Sellable():
		return nil
	case !ev.Active:
		return ErrEventInactive
	}
	return ErrNoPaymentMethods
}

// ResolveMode maps any raw purchase mode string to exactly one canonical mode.
// Unknown and empty values resolve to PUBLIC.
func ResolveMode(raw string) types.PurchaseMode {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return types.PURCHASE_PUBLIC
	}
	if mode, ok := LegacyModes[key]; ok {
		return mode
	}
	canonical := strings.ToUpper(separators.ReplaceAllString(key, "_"))
	for _, mode := range types.PurchaseModes {
		if string(mode) == canonical {
			return mode
		}
	}
	return types.PURCHASE_PUBLIC
}

// ResolveEventMode resolves purchase_mode, falling back to the legacy type field when it is blank.
func ResolveEventMode(ev *models.Event) types.PurchaseMode {
	if ev == nil {
		return types.PURCHASE_PUBLIC
	}
	if strings.TrimSpace(ev.PurchaseMode) != "" {
		return ResolveMode(ev.PurchaseMode)
	}
	return ResolveMode(ev.Type)
}

// RequiresEligibility reports whether participants must pass a server check before an order is created.
func RequiresEligibility(mode types.PurchaseMode) bool {
	return mode == types.PURCHASE_ONLY_MEMBERS || mode == types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS
}

const DefaultSuccessMessage = "Payment completed. Thank you for your purchase, your tickets are on their way to your inbox."

var successMessages = map[types.PurchaseMode]string{
	types.PURCHASE_ONLY_MEMBERS:                    "Payment completed. Your membership is now active and your tickets have been sent by email.",
	types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS: "Payment completed. Tickets have been sent to the registered members' email addresses.",
}

func SuccessMessage(mode types.PurchaseMode) string {
	if msg, ok := successMessages[mode]; ok {
		return msg
	}
	return DefaultSuccessMessage
}
