package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/models"

	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
)

// CreateOrder places an order. The idempotency key lets the API drop a
// duplicate submit.
func (c *Client) CreateOrder(ctx context.Context, req models.OrderRequest, idempotencyKey string) (*models.Order, error) {
	var out models.Order
	r := request{
		method:  http.MethodPost,
		path:    "/orders",
		body:    req,
		headers: map[string]string{IdempotencyKeyHeader: idempotencyKey},
	}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns the user's order history.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.get(ctx, "/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrder fetches one order.
func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var out models.Order
	if err := c.get(ctx, "/orders/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidatePromotion asks the API what a promo code is worth for subtotal.
func (c *Client) ValidatePromotion(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Promotion, error) {
	body := map[string]interface{}{"code": code, "subtotal": subtotal}
	var out models.Promotion
	if err := c.post(ctx, "/promotions/validate", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePayment starts a gateway transaction for an order. The API relays
// the gateway's Snap response.
func (c *Client) CreatePayment(ctx context.Context, orderID string) (*snap.Response, error) {
	var out snap.Response
	if err := c.post(ctx, "/orders/"+url.PathEscape(orderID)+"/payment", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
