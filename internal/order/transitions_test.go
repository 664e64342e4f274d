package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusSubmitted, StatusDelivered},
		{StatusSubmitted, StatusCanceled},
		{StatusDelivered, StatusReturned},
		{StatusCanceled, StatusSubmitted},
		{StatusReturned, StatusSubmitted},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to Status }{
		{StatusDelivered, StatusSubmitted},
		{StatusDelivered, StatusCanceled},
		{StatusCanceled, StatusDelivered},
		{StatusCanceled, StatusReturned},
		{StatusReturned, StatusDelivered},
		{StatusReturned, StatusCanceled},
		{StatusSubmitted, StatusReturned},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestCanTransition_SameStateIsNoOp(t *testing.T) {
	for _, s := range []Status{StatusSubmitted, StatusDelivered, StatusCanceled, StatusReturned} {
		assert.True(t, CanTransition(s, s))
	}
}

func TestEffectOf(t *testing.T) {
	assert.Equal(t, stockConsume, effectOf(StatusDelivered))
	assert.Equal(t, stockRestock, effectOf(StatusReturned))
	assert.Equal(t, stockNone, effectOf(StatusSubmitted))
	assert.Equal(t, stockNone, effectOf(StatusCanceled))
}

func TestItemsCostIdentity(t *testing.T) {
	o := &Order{
		TotalCost:      377200,
		DiscountAmount: 10000,
		ServiceCost:    20700,
		GuaranteeCost:  11500,
		BusinessProfit: 23000,
		ShippingCost:   92000,
	}
	assert.Equal(t, int64(240000), o.ItemsCost())
}
