package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/models"
	"storefront/internal/validation"

	"github.com/midtrans/midtrans-go"
	log "github.com/sirupsen/logrus"
)

// PaymentService drives the gateway redirect flow: the API creates a Snap
// transaction, the UI opens the redirect URL, and the gateway sends the user
// back to a finish URL that Complete reads.
type PaymentService struct {
	orders       OrderAPI
	allowedHosts map[string]bool
}

// NewPaymentService creates a PaymentService that accepts redirects to the
// Snap host of env and to any of extraHosts.
func NewPaymentService(orders OrderAPI, env midtrans.EnvironmentType, extraHosts ...string) *PaymentService {
	allowed := make(map[string]bool)
	if u, err := url.Parse(env.SnapURL()); err == nil && u.Host != "" {
		allowed[u.Host] = true
	}
	for _, h := range extraHosts {
		if h != "" {
			allowed[h] = true
		}
	}
	return &PaymentService{orders: orders, allowedHosts: allowed}
}

// Begin starts a payment for an online order.
func (s *PaymentService) Begin(ctx context.Context, orderID string) (*models.PaymentRedirect, error) {
	resp, err := s.orders.CreatePayment(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to start payment for order %s: %w", orderID, err)
	}
	if resp.RedirectURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrPaymentRedirect, strings.Join(resp.ErrorMessages, "; "))
	}
	u, err := url.Parse(resp.RedirectURL)
	if err != nil || u.Scheme != "https" || !s.allowedHosts[u.Host] {
		log.WithField("redirect_url", resp.RedirectURL).Warn("refusing payment redirect to unexpected host")
		return nil, fmt.Errorf("%w: unexpected host", ErrPaymentRedirect)
	}
	return &models.PaymentRedirect{
		OrderID:     orderID,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// Complete reads the finish URL and re-fetches the order. The order's own
// payment status wins over what the redirect claims once the API has
// settled it.
func (s *PaymentService) Complete(ctx context.Context, finishURL string) (*models.PaymentResult, error) {
	u, err := url.Parse(finishURL)
	if err != nil {
		return nil, validation.Field("finish_url", "must be a valid URL")
	}
	q := u.Query()
	orderID := q.Get("order_id")
	if orderID == "" {
		return nil, validation.Field("finish_url", "has no order_id")
	}

	result := &models.PaymentResult{
		OrderID:           orderID,
		TransactionStatus: q.Get("transaction_status"),
		StatusCode:        q.Get("status_code"),
		Status:            paymentOutcome(q.Get("transaction_status")),
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh order %s: %w", orderID, err)
	}
	result.Order = order
	if order.PaymentStatus == models.PaymentStatusPaid || order.PaymentStatus == models.PaymentStatusFailed {
		result.Status = order.PaymentStatus
	}
	log.WithFields(log.Fields{"order_id": orderID, "status": result.Status}).Info("payment redirect completed")
	return result, nil
}

// paymentOutcome maps a gateway transaction status onto an order payment status.
func paymentOutcome(transactionStatus string) string {
	switch transactionStatus {
	case "capture", "settlement":
		return models.PaymentStatusPaid
	case "deny", "cancel", "expire", "failure":
		return models.PaymentStatusFailed
	}
	return models.PaymentStatusPending
}
