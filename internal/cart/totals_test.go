package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veracare/marketplace-api/internal/model"
)

func testRules() Rules {
	return Rules{
		FreeShippingCents: 5000,
		FlatShippingCents: 599,
		TaxRate:           0.08,
		PromoCode:         "HEALING10",
		PromoPercent:      10,
	}
}

func TestComputeSubtotalAndShipping(t *testing.T) {
	rules := testRules()

	items := []*model.CartItem{
		{ProductID: "a", PriceCents: 1500, Quantity: 2},
		{ProductID: "b", PriceCents: 900, Quantity: 1},
	}

	totals := rules.Compute(items, "")
	assert.Equal(t, 3900, totals.SubtotalCents)
	assert.Equal(t, 599, totals.ShippingCents, "subtotal at or below threshold pays flat shipping")
	assert.Equal(t, 312, totals.TaxCents)
	assert.Equal(t, 0, totals.DiscountCents)
	assert.Equal(t, 3900+599+312, totals.TotalCents)
}

func TestComputeFreeShippingAboveThreshold(t *testing.T) {
	rules := testRules()

	items := []*model.CartItem{{ProductID: "a", PriceCents: 3000, Quantity: 2}}
	totals := rules.Compute(items, "")
	assert.Equal(t, 6000, totals.SubtotalCents)
	assert.Equal(t, 0, totals.ShippingCents)
}

func TestComputeShippingAtExactThreshold(t *testing.T) {
	rules := testRules()

	items := []*model.CartItem{{ProductID: "a", PriceCents: 5000, Quantity: 1}}
	totals := rules.Compute(items, "")
	assert.Equal(t, 599, totals.ShippingCents, "threshold is strict: exactly $50 still pays shipping")
}

func TestComputePromoDiscountsSubtotalOnly(t *testing.T) {
	rules := testRules()

	// Two units at $30: subtotal $60, 10% off, free shipping, 8% tax on
	// the undiscounted subtotal.
	items := []*model.CartItem{{ProductID: "a", PriceCents: 3000, Quantity: 2}}
	totals := rules.Compute(items, "HEALING10")

	assert.Equal(t, 6000, totals.SubtotalCents)
	assert.Equal(t, 600, totals.DiscountCents)
	assert.Equal(t, 0, totals.ShippingCents)
	assert.Equal(t, 480, totals.TaxCents)
	assert.Equal(t, 5880, totals.TotalCents)
	assert.Equal(t, "HEALING10", totals.PromoCode)
}

func TestComputePromoCodeIsCaseSensitive(t *testing.T) {
	rules := testRules()

	items := []*model.CartItem{{ProductID: "a", PriceCents: 3000, Quantity: 2}}
	totals := rules.Compute(items, "healing10")
	assert.Equal(t, 0, totals.DiscountCents)
	assert.Empty(t, totals.PromoCode)
}

func TestComputeEmptyCart(t *testing.T) {
	rules := testRules()

	totals := rules.Compute(nil, "HEALING10")
	assert.Equal(t, 0, totals.SubtotalCents)
	assert.Equal(t, 0, totals.ShippingCents, "empty cart ships nothing")
	assert.Equal(t, 0, totals.TaxCents)
	assert.Equal(t, 0, totals.TotalCents)
}

func TestSubtotal(t *testing.T) {
	items := []*model.CartItem{
		{PriceCents: 1299, Quantity: 3},
		{PriceCents: 450, Quantity: 1},
	}
	assert.Equal(t, 1299*3+450, Subtotal(items))
	assert.Equal(t, 0, Subtotal(nil))
}
