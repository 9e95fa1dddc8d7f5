package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryMethod is how an order reaches the customer.
type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryShipping DeliveryMethod = "delivery"
)

// PaymentMethod is how an order is paid.
type PaymentMethod string

const (
	PaymentCashOnPickup PaymentMethod = "cash_on_pickup"
	PaymentOnline       PaymentMethod = "online"
)

// Payment statuses tracked on an order.
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// OrderItem represents a single item within an order.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Order represents a customer order as returned by the store API.
type Order struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	Items          []OrderItem     `json:"items"`
	DeliveryMethod DeliveryMethod  `json:"delivery_method"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Address        *Address        `json:"address,omitempty"`
	PromoCode      string          `json:"promo_code,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	Status         string          `json:"status"` // e.g., "pending", "processing", "ready", "completed", "cancelled"
	PaymentStatus  string          `json:"payment_status"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CheckoutRequest is the checkout form.
type CheckoutRequest struct {
	DeliveryMethod DeliveryMethod `json:"delivery_method" validate:"required,oneof=pickup delivery"`
	PaymentMethod  PaymentMethod  `json:"payment_method" validate:"required,oneof=cash_on_pickup online"`
	Address        *Address       `json:"address,omitempty" validate:"omitempty"`
	PromoCode      string         `json:"promo_code,omitempty" validate:"omitempty,max=40"`
	Notes          string         `json:"notes,omitempty" validate:"omitempty,max=500"`
	IdempotencyKey string         `json:"idempotency_key,omitempty" validate:"omitempty,uuid"`
}

// Quote is the checkout screen's price breakdown.
type Quote struct {
	Items       []CartItem      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	PromoCode   string          `json:"promo_code,omitempty"`
}

// NewQuote computes total = subtotal + shipping - discount. The discount is
// capped at the subtotal so the total never goes below the shipping fee.
func NewQuote(items []CartItem, subtotal, shipping, discount decimal.Decimal) Quote {
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return Quote{
		Items:       items,
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Discount:    discount,
		Total:       subtotal.Add(shipping).Sub(discount),
	}
}

// OrderRequest is the body sent to the store API to place an order.
type OrderRequest struct {
	Items          []OrderItem     `json:"items"`
	DeliveryMethod DeliveryMethod  `json:"delivery_method"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Address        *Address        `json:"address,omitempty"`
	PromoCode      string          `json:"promo_code,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
}

// Promotion is the API's answer to a promo code check.
type Promotion struct {
	Code     string          `json:"code"`
	Valid    bool            `json:"valid"`
	Discount decimal.Decimal `json:"discount"`
	Message  string          `json:"message,omitempty"`
}
