package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func itemID(v int64) *int64 { return &v }

func TestConsolidate_DedupesByItemPriceQuantity(t *testing.T) {
	listings := []Listing{
		{FrameOffset: 10, ServerSequence: 1, PriceLuno: 500, Quantity: 3, ItemConfigID: itemID(7)},
		{FrameOffset: 99, ServerSequence: 2, PriceLuno: 500, Quantity: 3, ItemConfigID: itemID(7)},
		{FrameOffset: 20, ServerSequence: 1, PriceLuno: 500, Quantity: 4, ItemConfigID: itemID(7)},
	}

	out := Consolidate(listings, nil)

	assert.Len(t, out, 2)
	assert.Equal(t, 10, out[0].Metadata.FrameOffset)
	assert.Equal(t, uint32(1), out[0].Metadata.ServerSequence)
}

func TestConsolidate_NoResolverOmitsNameAndIcon(t *testing.T) {
	listings := []Listing{{PriceLuno: 1, Quantity: 1, ItemConfigID: itemID(5)}}

	out := Consolidate(listings, nil)

	require := out[0]
	assert.Equal(t, "", require.ItemName)
	assert.Equal(t, "", require.Metadata.ItemIcon)
}

func TestConsolidate_ResolverAttachesNameAndIcon(t *testing.T) {
	listings := []Listing{{PriceLuno: 1, Quantity: 1, ItemConfigID: itemID(5)}}
	resolve := func(id int64) (string, string, bool) {
		if id == 5 {
			return "Iron Sword", "icon://sword", true
		}
		return "", "", false
	}

	out := Consolidate(listings, resolve)

	assert.Equal(t, "Iron Sword", out[0].ItemName)
	assert.Equal(t, "icon://sword", out[0].Metadata.ItemIcon)
}

func TestConsolidate_PreservesInsertionOrder(t *testing.T) {
	listings := []Listing{
		{PriceLuno: 1, Quantity: 1, ItemConfigID: itemID(1)},
		{PriceLuno: 2, Quantity: 1, ItemConfigID: itemID(2)},
		{PriceLuno: 1, Quantity: 1, ItemConfigID: itemID(1)},
		{PriceLuno: 3, Quantity: 1, ItemConfigID: itemID(3)},
	}

	out := Consolidate(listings, nil)

	assert.Len(t, out, 3)
	assert.Equal(t, int64(1), *out[0].ItemID)
	assert.Equal(t, int64(2), *out[1].ItemID)
	assert.Equal(t, int64(3), *out[2].ItemID)
}
