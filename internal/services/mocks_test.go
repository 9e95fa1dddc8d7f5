package services_test

import (
	"context"

	"storefront/internal/models"

	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAuthAPI is a mock implementation of services.AuthAPI
type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResponse), args.Error(1)
}

func (m *MockAuthAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResponse), args.Error(1)
}

func (m *MockAuthAPI) Logout(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

// MockCatalogAPI is a mock implementation of services.CatalogAPI
type MockCatalogAPI struct {
	mock.Mock
}

func (m *MockCatalogAPI) ListProducts(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductPage), args.Error(1)
}

func (m *MockCatalogAPI) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalogAPI) ListReleases(ctx context.Context) ([]models.Release, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Copy so callers that sort in place do not disturb the fixture.
	releases := args.Get(0).([]models.Release)
	return append([]models.Release(nil), releases...), args.Error(1)
}

func (m *MockCatalogAPI) ListReleaseProducts(ctx context.Context, releaseID, search string) ([]models.Product, error) {
	args := m.Called(releaseID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

// MockOrderAPI is a mock implementation of services.OrderAPI
type MockOrderAPI struct {
	mock.Mock
}

func (m *MockOrderAPI) CreateOrder(ctx context.Context, req models.OrderRequest, idempotencyKey string) (*models.Order, error) {
	args := m.Called(req, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderAPI) ListOrders(ctx context.Context) ([]models.Order, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderAPI) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderAPI) ValidatePromotion(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Promotion, error) {
	args := m.Called(code, subtotal.String())
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Promotion), args.Error(1)
}

func (m *MockOrderAPI) CreatePayment(ctx context.Context, orderID string) (*snap.Response, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snap.Response), args.Error(1)
}

// MockReservationAPI is a mock implementation of services.ReservationAPI
type MockReservationAPI struct {
	mock.Mock
}

func (m *MockReservationAPI) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *MockReservationAPI) AddReservationItem(ctx context.Context, req models.ReservationItemRequest) (*models.Reservation, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockReservationAPI) ConfirmReservations(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockReservationAPI) CancelReservationItem(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockWantListAPI is a mock implementation of services.WantListAPI
type MockWantListAPI struct {
	mock.Mock
}

func (m *MockWantListAPI) ListWantList(ctx context.Context) ([]models.WantListItem, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WantListItem), args.Error(1)
}

func (m *MockWantListAPI) AddWantListItem(ctx context.Context, productID string) (*models.WantListItem, error) {
	args := m.Called(productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WantListItem), args.Error(1)
}

func (m *MockWantListAPI) RemoveWantListItem(ctx context.Context, productID string) error {
	args := m.Called(productID)
	return args.Error(0)
}

// MockCollectionAPI is a mock implementation of services.CollectionAPI
type MockCollectionAPI struct {
	mock.Mock
}

func (m *MockCollectionAPI) ListCollection(ctx context.Context) ([]models.CollectionItem, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CollectionItem), args.Error(1)
}

func (m *MockCollectionAPI) AddCollectionItem(ctx context.Context, req models.CollectionItemRequest) (*models.CollectionItem, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CollectionItem), args.Error(1)
}

func (m *MockCollectionAPI) RemoveCollectionItem(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

// MockProfileAPI is a mock implementation of services.ProfileAPI
type MockProfileAPI struct {
	mock.Mock
}

func (m *MockProfileAPI) Me(ctx context.Context) (*models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockProfileAPI) UpdateMe(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	args := m.Called(upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockSessionObserver is a mock implementation of services.SessionObserver
type MockSessionObserver struct {
	mock.Mock
}

func (m *MockSessionObserver) SignedIn(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSessionObserver) SignedOut() error {
	args := m.Called()
	return args.Error(0)
}
