package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"storefront/internal/models"
)

// ListProducts returns one page of the catalog.
func (c *Client) ListProducts(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(q.PerPage))
	}
	var out models.ProductPage
	if err := c.get(ctx, "/products", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProduct fetches a single catalog item.
func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var out models.Product
	if err := c.get(ctx, "/products/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReleases returns the scheduled releases.
func (c *Client) ListReleases(ctx context.Context) ([]models.Release, error) {
	var out []models.Release
	if err := c.get(ctx, "/releases", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListReleaseProducts returns the products of a release, optionally filtered.
func (c *Client) ListReleaseProducts(ctx context.Context, releaseID, search string) ([]models.Product, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	var out []models.Product
	if err := c.get(ctx, "/releases/"+url.PathEscape(releaseID)+"/products", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}
