package apiclient

import (
	"context"
	"net/url"

	"storefront/internal/models"
)

// ListWantList returns the user's want list.
func (c *Client) ListWantList(ctx context.Context) ([]models.WantListItem, error) {
	var out []models.WantListItem
	if err := c.get(ctx, "/wantlist", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddWantListItem saves a product for later.
func (c *Client) AddWantListItem(ctx context.Context, productID string) (*models.WantListItem, error) {
	var out models.WantListItem
	if err := c.post(ctx, "/wantlist", models.WantListRequest{ProductID: productID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveWantListItem drops a product from the want list.
func (c *Client) RemoveWantListItem(ctx context.Context, productID string) error {
	return c.delete(ctx, "/wantlist/"+url.PathEscape(productID))
}

// ListCollection returns the items the user owns.
func (c *Client) ListCollection(ctx context.Context) ([]models.CollectionItem, error) {
	var out []models.CollectionItem
	if err := c.get(ctx, "/collection", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddCollectionItem records an owned item.
func (c *Client) AddCollectionItem(ctx context.Context, req models.CollectionItemRequest) (*models.CollectionItem, error) {
	var out models.CollectionItem
	if err := c.post(ctx, "/collection", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveCollectionItem deletes an owned item.
func (c *Client) RemoveCollectionItem(ctx context.Context, id string) error {
	return c.delete(ctx, "/collection/"+url.PathEscape(id))
}
