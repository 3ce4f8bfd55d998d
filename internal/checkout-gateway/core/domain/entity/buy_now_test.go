package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyNowContext_ConsumeOnce(t *testing.T) {
	bn := NewBuyNowContext(&CartLine{ID: "line-1", ProductID: "A", Quantity: 1})

	require.True(t, bn.Active())
	item, ok := bn.Consume()
	require.True(t, ok)
	assert.Equal(t, "A", item.ProductID)

	_, ok = bn.Consume()
	assert.False(t, ok)
	assert.False(t, bn.Active())
}

func TestBuyNowContext_ItemReturnsCopy(t *testing.T) {
	bn := NewBuyNowContext(&CartLine{ID: "line-1", ProductID: "A", Quantity: 1})

	item := bn.Item()
	item.Quantity = 99

	assert.Equal(t, 1, bn.Item().Quantity)
}

func TestBuyNowContext_NilAndClear(t *testing.T) {
	var nilCtx *BuyNowContext
	assert.Nil(t, nilCtx.Item())
	assert.False(t, nilCtx.Active())
	nilCtx.Clear()

	bn := NewBuyNowContext(nil)
	assert.False(t, bn.Active())
	bn.Set(CartLine{ProductID: "B", Quantity: 2})
	bn.Clear()
	assert.Nil(t, bn.Item())
}

func TestCheckoutForm_ShippingAddress(t *testing.T) {
	form := CheckoutForm{
		Billing:  Address{Line1: "1 High St", PostalCode: "AB1 2CD"},
		Shipping: Address{Line1: "9 Low Rd", PostalCode: "ZZ9 9ZZ"},
	}
	assert.Equal(t, "9 Low Rd", form.ShippingAddress().Line1)

	form.ShippingSameAsBilling = true
	assert.Equal(t, "1 High St", form.ShippingAddress().Line1)
}
