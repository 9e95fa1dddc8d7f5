package services

import (
	"context"
	"encoding/json"

	"storefront/internal/models"

	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// The store API as seen by each service. *apiclient.Client implements all of them.

// AuthAPI covers login, sign-up and logout.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
}

// ProfileAPI covers the signed-in user's profile.
type ProfileAPI interface {
	Me(ctx context.Context) (*models.User, error)
	UpdateMe(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
}

// CatalogAPI covers products and releases.
type CatalogAPI interface {
	ListProducts(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListReleases(ctx context.Context) ([]models.Release, error)
	ListReleaseProducts(ctx context.Context, releaseID, search string) ([]models.Product, error)
}

// OrderAPI covers orders, promotions and payments.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req models.OrderRequest, idempotencyKey string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ValidatePromotion(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Promotion, error)
	CreatePayment(ctx context.Context, orderID string) (*snap.Response, error)
}

// ReservationAPI covers the reservation list.
type ReservationAPI interface {
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	AddReservationItem(ctx context.Context, req models.ReservationItemRequest) (*models.Reservation, error)
	ConfirmReservations(ctx context.Context) error
	CancelReservationItem(ctx context.Context, id string) error
}

// WantListAPI covers the want list.
type WantListAPI interface {
	ListWantList(ctx context.Context) ([]models.WantListItem, error)
	AddWantListItem(ctx context.Context, productID string) (*models.WantListItem, error)
	RemoveWantListItem(ctx context.Context, productID string) error
}

// CollectionAPI covers the owned-item collection.
type CollectionAPI interface {
	ListCollection(ctx context.Context) ([]models.CollectionItem, error)
	AddCollectionItem(ctx context.Context, req models.CollectionItemRequest) (*models.CollectionItem, error)
	RemoveCollectionItem(ctx context.Context, id string) error
}

// EventPublisher sends activity events. *rabbitmq.Client implements it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// EventExchange is the exchange activity events are published to.
const EventExchange = "storefront"

// publishEvent publishes payload when a publisher is configured. Failures are
// logged; the user action already succeeded against the API.
func publishEvent(pub EventPublisher, routingKey string, payload interface{}) {
	if pub == nil {
		log.WithField("event", routingKey).Debug("event publisher not configured, skipping")
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).WithField("event", routingKey).Warn("failed to marshal event")
		return
	}
	if err := pub.Publish(EventExchange, routingKey, body); err != nil {
		log.WithError(err).WithField("event", routingKey).Warn("failed to publish event")
		return
	}
	log.WithField("event", routingKey).Debug("published event")
}
