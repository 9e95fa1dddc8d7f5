package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one cart line. Price and stock are snapshots taken when the
// product was added; the API re-prices at checkout.
type CartItem struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID     string          `json:"product_id" gorm:"uniqueIndex;type:varchar(64)"`
	Title         string          `json:"title"`
	CoverURL      string          `json:"cover_url,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2)"`
	Quantity      int             `json:"quantity"`
	StockQuantity int             `json:"stock_quantity"`
	AddedAt       time.Time       `json:"added_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LineTotal is unit price times quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// AddToCartRequest is the body of an add-to-cart action.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=99"`
}

// QuantityUpdate sets a line to an exact quantity. Zero removes the line.
type QuantityUpdate struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}

// CartSummary is the cart screen model.
type CartSummary struct {
	Items    []CartItem      `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}
