package models

import "time"

// WantListItem is a product saved for later purchase.
type WantListItem struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WantListRequest adds a product to the want list.
type WantListRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}
