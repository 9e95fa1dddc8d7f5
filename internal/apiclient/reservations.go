package apiclient

import (
	"context"
	"net/url"

	"storefront/internal/models"
)

// ListReservations returns the user's reservation list.
func (c *Client) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	if err := c.get(ctx, "/reservations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddReservationItem puts one product on the reservation list as pending.
func (c *Client) AddReservationItem(ctx context.Context, req models.ReservationItemRequest) (*models.Reservation, error) {
	var out models.Reservation
	if err := c.post(ctx, "/reservations/items", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmReservations submits the pending items for store approval.
func (c *Client) ConfirmReservations(ctx context.Context) error {
	return c.post(ctx, "/reservations/confirm", nil, nil)
}

// CancelReservationItem removes a pending item.
func (c *Client) CancelReservationItem(ctx context.Context, id string) error {
	return c.delete(ctx, "/reservations/items/"+url.PathEscape(id))
}
