package services

import (
	"testing"
	"time"

	"github.com/senthilk/gst-billing/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id, price string) models.Product {
	return models.Product{ID: id, Name: "Product " + id, UnitPrice: d(price), DateAdded: time.Now()}
}

func TestDraftMergeOnAdd(t *testing.T) {
	var draft Draft
	p := product("p1", "400")

	draft.AddProduct(p)
	draft.AddProduct(p)

	require.Len(t, draft.Items, 1)
	assert.Equal(t, 2, draft.Items[0].Quantity)
	assert.True(t, draft.Items[0].Amount.Equal(d("800")))
}

func TestDraftQuantityFloor(t *testing.T) {
	var draft Draft
	draft.AddProduct(product("p1", "50"))

	draft.SetQuantity("p1", 0)
	assert.Equal(t, 1, draft.Items[0].Quantity)
	assert.True(t, draft.Items[0].Amount.Equal(d("50")))

	draft.SetQuantity("p1", -3)
	assert.Equal(t, 1, draft.Items[0].Quantity)

	draft.SetQuantity("p1", 7)
	assert.Equal(t, 7, draft.Items[0].Quantity)
	assert.True(t, draft.Items[0].Amount.Equal(d("350")))
}

// The line amount must equal quantity * unit price after every edit.
func TestDraftAmountAlwaysDerived(t *testing.T) {
	var draft Draft
	draft.AddProductQty(product("p1", "19.99"), 3)
	for _, qty := range []int{5, 1, 0, 12} {
		draft.SetQuantity("p1", qty)
		it := draft.Items[0]
		want := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		assert.True(t, it.Amount.Equal(want), "qty %d: %s != %s", qty, it.Amount, want)
	}
}

func TestDraftRemove(t *testing.T) {
	var draft Draft
	draft.AddProduct(product("p1", "10"))
	draft.AddProduct(product("p2", "20"))

	draft.Remove("p1")
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "p2", draft.Items[0].ProductID)

	// Removing an unknown id is a no-op.
	draft.Remove("missing")
	assert.Len(t, draft.Items, 1)
}

func TestDraftAddQtyClamp(t *testing.T) {
	var draft Draft
	draft.AddProductQty(product("p1", "10"), -5)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, 1, draft.Items[0].Quantity)
}
