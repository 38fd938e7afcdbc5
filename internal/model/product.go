package model

import (
	"github.com/google/uuid"
)

type Product struct {
	Base
	Slug        string `db:"slug" json:"slug"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Category    string `db:"category" json:"category"`
	PriceCents  int    `db:"price_cents" json:"price_cents"`
	InStock     bool   `db:"in_stock" json:"in_stock"`
}

// ProductFilters narrows the store catalog listing.
type ProductFilters struct {
	Category      string `form:"category"`
	Sort          string `form:"sort"`
	MinPriceCents int    `form:"min_price"`
	MaxPriceCents int    `form:"max_price"`
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is created at checkout, before the external payment session.
// Line item prices are snapshotted from the catalog at creation time.
type Order struct {
	Base
	Email           string       `db:"email" json:"email"`
	ShippingAddress string       `db:"shipping_address" json:"shipping_address"`
	SubtotalCents   int          `db:"subtotal_cents" json:"subtotal_cents"`
	DiscountCents   int          `db:"discount_cents" json:"discount_cents"`
	ShippingCents   int          `db:"shipping_cents" json:"shipping_cents"`
	TaxCents        int          `db:"tax_cents" json:"tax_cents"`
	TotalCents      int          `db:"total_cents" json:"total_cents"`
	PromoCode       string       `db:"promo_code" json:"promo_code,omitempty"`
	Status          OrderStatus  `db:"status" json:"status"`
	Items           []*OrderItem `db:"-" json:"items"`
}

type OrderItem struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OrderID    uuid.UUID `db:"order_id" json:"order_id"`
	ProductID  uuid.UUID `db:"product_id" json:"product_id"`
	Name       string    `db:"name" json:"name"`
	PriceCents int       `db:"price_cents" json:"price_cents"`
	Quantity   int       `db:"quantity" json:"quantity"`
}

type CheckoutItem struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	Email           string         `json:"email" binding:"omitempty,email"`
	ShippingAddress string         `json:"shipping_address"`
	PromoCode       string         `json:"promo_code"`
}

// CheckoutResponse carries the external payment session redirect target.
type CheckoutResponse struct {
	URL string `json:"url"`
}
