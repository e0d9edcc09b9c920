package purchase

import (
	"testing"

	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPanel(t *testing.T) {
	assert.Equal(t, types.PANEL_PUBLIC, SelectPanel(types.PURCHASE_PUBLIC))
	assert.Equal(t, types.PANEL_ONLY_MEMBERS, SelectPanel(types.PURCHASE_ONLY_MEMBERS))
	assert.Equal(t, types.PANEL_ONLY_ALREADY_REGISTERED, SelectPanel(types.PURCHASE_ONLY_ALREADY_REGISTERED_MEMBERS))
	assert.Equal(t, types.PANEL_NONE, SelectPanel(types.PURCHASE_ON_REQUEST))
	assert.Equal(t, types.PANEL_NONE, SelectPanel(types.PurchaseMode("")))
}

func TestDescribePanel(t *testing.T) {
	p := DescribePanel(types.PURCHASE_ONLY_MEMBERS, 12.5)
	require.NotNil(t, p)
	assert.Equal(t, types.PANEL_ONLY_MEMBERS, p.Variant)
	assert.Contains(t, p.Body, "12.50")

	assert.Nil(t, DescribePanel(types.PURCHASE_ON_REQUEST, 10))
	assert.Nil(t, DescribePanel(types.PurchaseMode("bogus"), 10))
}

func TestOnlyMembersScenario(t *testing.T) {
	mode := ResolveMode("onlymembers")

	assert.Equal(t, types.PURCHASE_ONLY_MEMBERS, mode)
	assert.Equal(t, types.PANEL_ONLY_MEMBERS, SelectPanel(mode))
	assert.Equal(t, successMessages[types.PURCHASE_ONLY_MEMBERS], SuccessMessage(mode))
}
