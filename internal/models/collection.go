package models

import "time"

// CollectionItem is an item the user owns.
type CollectionItem struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	Product    *Product  `json:"product,omitempty"`
	Condition  string    `json:"condition,omitempty"`
	Quantity   int       `json:"quantity"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// CollectionItemRequest records a newly owned item.
type CollectionItemRequest struct {
	ProductID  string     `json:"product_id" validate:"required"`
	Condition  string     `json:"condition,omitempty" validate:"omitempty,max=60"`
	Quantity   int        `json:"quantity" validate:"gte=0,lte=999"`
	AcquiredAt *time.Time `json:"acquired_at,omitempty"`
}

// CollectionSummary totals the collection screen.
type CollectionSummary struct {
	Items    []CollectionItem `json:"items"`
	Titles   int              `json:"titles"`
	Quantity int              `json:"quantity"`
}
