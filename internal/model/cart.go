package model

// CartItem is one cart line. Carts are session-scoped and ephemeral;
// nothing is persisted to postgres until checkout.
type CartItem struct {
	ProductID  string `json:"product_id"`
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

// Cart is the full session cart with computed totals.
type Cart struct {
	Items         []*CartItem `json:"items"`
	PromoCode     string      `json:"promo_code,omitempty"`
	SubtotalCents int         `json:"subtotal_cents"`
	DiscountCents int         `json:"discount_cents"`
	ShippingCents int         `json:"shipping_cents"`
	TaxCents      int         `json:"tax_cents"`
	TotalCents    int         `json:"total_cents"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type ApplyPromoRequest struct {
	Code string `json:"code" binding:"required"`
}
