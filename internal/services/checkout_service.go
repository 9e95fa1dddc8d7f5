package services

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ShippingPolicy prices delivery orders. Pickup is free.
type ShippingPolicy struct {
	FlatFee       decimal.Decimal
	FreeThreshold decimal.Decimal // zero disables free shipping
}

// Fee returns the shipping fee for method at subtotal.
func (p ShippingPolicy) Fee(method models.DeliveryMethod, subtotal decimal.Decimal) decimal.Decimal {
	if method != models.DeliveryShipping {
		return decimal.Zero
	}
	if p.FreeThreshold.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.FlatFee
}

// CheckoutService turns the cart into an order.
type CheckoutService struct {
	cart      *CartService
	orders    OrderAPI
	auth      *AuthService
	shipping  ShippingPolicy
	publisher EventPublisher
	validate  *validator.Validate
}

// NewCheckoutService creates a new CheckoutService. publisher may be nil.
func NewCheckoutService(cart *CartService, orders OrderAPI, auth *AuthService, shipping ShippingPolicy, publisher EventPublisher, validate *validator.Validate) *CheckoutService {
	return &CheckoutService{
		cart:      cart,
		orders:    orders,
		auth:      auth,
		shipping:  shipping,
		publisher: publisher,
		validate:  validate,
	}
}

// Quote prices the cart for the chosen delivery method and promo code.
func (s *CheckoutService) Quote(ctx context.Context, req models.CheckoutRequest) (*models.Quote, error) {
	if err := validation.Check(s.validate, req); err != nil {
		return nil, err
	}
	summary, err := s.cart.Summary()
	if err != nil {
		return nil, err
	}
	if len(summary.Items) == 0 {
		return nil, ErrCartEmpty
	}

	shipping := s.shipping.Fee(req.DeliveryMethod, summary.Subtotal)
	discount := decimal.Zero
	if req.PromoCode != "" {
		promo, err := s.orders.ValidatePromotion(ctx, req.PromoCode, summary.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("failed to validate promo code: %w", err)
		}
		if !promo.Valid {
			if promo.Message != "" {
				return nil, fmt.Errorf("%w: %s", ErrInvalidPromo, promo.Message)
			}
			return nil, ErrInvalidPromo
		}
		discount = promo.Discount
	}

	quote := models.NewQuote(summary.Items, summary.Subtotal, shipping, discount)
	quote.PromoCode = req.PromoCode
	return &quote, nil
}

// PlaceOrder submits the cart as an order and empties the cart on success.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req models.CheckoutRequest) (*models.Order, error) {
	session, err := s.auth.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := validation.Check(s.validate, req); err != nil {
		return nil, err
	}
	if req.DeliveryMethod == models.DeliveryShipping && (req.Address == nil || req.Address.Empty()) {
		return nil, validation.Field("address", "is required for delivery")
	}

	quote, err := s.Quote(ctx, req)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(quote.Items))
	for _, line := range quote.Items {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Title:     line.Title,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	orderReq := models.OrderRequest{
		Items:          items,
		DeliveryMethod: req.DeliveryMethod,
		PaymentMethod:  req.PaymentMethod,
		PromoCode:      quote.PromoCode,
		Notes:          req.Notes,
		Subtotal:       quote.Subtotal,
		ShippingFee:    quote.ShippingFee,
		Discount:       quote.Discount,
		Total:          quote.Total,
	}
	if req.DeliveryMethod == models.DeliveryShipping {
		orderReq.Address = req.Address
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.New().String()
	}
	order, err := s.orders.CreateOrder(ctx, orderReq, key)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err := s.cart.Clear(); err != nil {
		log.WithError(err).WithField("order_id", order.ID).Warn("order placed but cart could not be cleared")
	}

	publishEvent(s.publisher, "order.placed", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  session.UserID,
		"total":    order.Total,
		"items":    len(order.Items),
	})
	log.WithFields(log.Fields{"order_id": order.ID, "total": order.Total.String()}).Info("order placed")
	return order, nil
}

// Orders returns the order history.
func (s *CheckoutService) Orders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Order returns one order.
func (s *CheckoutService) Order(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return order, nil
}
