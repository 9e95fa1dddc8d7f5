package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item as served by the store API.
type Product struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Publisher     string          `json:"publisher,omitempty"`
	Variant       string          `json:"variant,omitempty"`
	Price         decimal.Decimal `json:"price"`
	ThumbnailURL  string          `json:"thumbnail_url,omitempty"`
	CoverURL      string          `json:"cover_url,omitempty"`
	StockQuantity int             `json:"stock_quantity"`
	ReleaseID     string          `json:"release_id,omitempty"`
	ReleaseDate   *time.Time      `json:"release_date,omitempty"`
}

// InStock reports whether at least one unit can be added to a cart.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// ProductQuery carries the catalog listing filters.
type ProductQuery struct {
	Search  string `json:"search" query:"search" validate:"omitempty,max=100"`
	Page    int    `json:"page" query:"page" validate:"gte=0"`
	PerPage int    `json:"per_page" query:"per_page" validate:"gte=0,lte=100"`
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Items   []Product `json:"items"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
	Total   int       `json:"total"`
}
