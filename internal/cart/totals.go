package cart

import (
	"math"

	"github.com/veracare/marketplace-api/internal/model"
)

// Rules holds the totals constants: the free-shipping threshold, the
// flat shipping fee below it, the sales tax rate, and the single
// accepted promo code with its percentage discount.
type Rules struct {
	FreeShippingCents int
	FlatShippingCents int
	TaxRate           float64
	PromoCode         string
	PromoPercent      int
}

// Subtotal is the sum of price times quantity over all line items.
func Subtotal(items []*model.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.PriceCents * item.Quantity
	}
	return total
}

// Compute fills in all derived totals. The discount applies to the
// subtotal only, never to shipping or tax; shipping is waived strictly
// above the threshold; tax is always included.
func (r Rules) Compute(items []*model.CartItem, promoCode string) model.Cart {
	subtotal := Subtotal(items)

	discount := 0
	applied := ""
	if promoCode != "" && promoCode == r.PromoCode {
		discount = subtotal * r.PromoPercent / 100
		applied = promoCode
	}

	shipping := 0
	if subtotal > 0 && subtotal <= r.FreeShippingCents {
		shipping = r.FlatShippingCents
	}

	tax := int(math.Round(float64(subtotal) * r.TaxRate))

	return model.Cart{
		Items:         items,
		PromoCode:     applied,
		SubtotalCents: subtotal,
		DiscountCents: discount,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    subtotal - discount + shipping + tax,
	}
}
