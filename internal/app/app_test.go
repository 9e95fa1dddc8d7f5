package app_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"storefront/internal/apiclient/fakeapi"
	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newApp(t *testing.T) *app.App {
	t.Helper()
	db, err := repositories.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	require.NoError(t, err)
	cfg := &config.Config{
		APIBaseURL:            fakeapi.BaseURL,
		DBDriver:              "sqlite",
		ShippingFlatFee:       decimal.NewFromInt(15000),
		FreeShippingThreshold: decimal.NewFromInt(250000),
		PaymentEnv:            midtrans.Sandbox,
	}
	a, err := app.New(cfg, app.Options{DB: db, Doer: fakeapi.New().Doer(), DisableRequestLog: true})
	require.NoError(t, err)
	return a
}

func TestHealth(t *testing.T) {
	a := newApp(t)

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["events"])
	assert.Equal(t, "sqlite", body["database"])
}

func TestNew_CreatesDeviceSettings(t *testing.T) {
	a := newApp(t)

	settings, err := a.State.Settings()
	require.NoError(t, err)
	assert.NotEmpty(t, settings.DeviceID)
	assert.Equal(t, models.ThemeSystem, settings.Theme)
}

func TestProtectedPrefixes(t *testing.T) {
	a := newApp(t)

	for _, path := range []string{"/api/v1/checkout/quote", "/api/v1/payments/complete", "/api/v1/reservations/preview"} {
		resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodPost, path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	// Releases share a prefix with nothing protected
	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/releases", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReservationStatusHandler(t *testing.T) {
	a := newApp(t)
	cache := repositories.NewGORMReservationCacheRepository(a.DB)
	require.NoError(t, cache.ReplaceAll([]models.ReservedProduct{
		{ProductID: "m1", ReservationID: "r1", Status: models.ReservationForApproval},
	}))
	handle := app.ReservationStatusHandler(a.Reservations)

	t.Run("applies status", func(t *testing.T) {
		err := handle(amqp.Delivery{Body: []byte(`{"product_id":"m1","status":"approved"}`)})
		require.NoError(t, err)

		cached, err := a.Reservations.Cached()
		require.NoError(t, err)
		require.Len(t, cached, 1)
		assert.Equal(t, models.ReservationApproved, cached[0].Status)
	})

	t.Run("unknown product is ignored", func(t *testing.T) {
		err := handle(amqp.Delivery{Body: []byte(`{"product_id":"zz","status":"approved"}`)})
		assert.NoError(t, err)
	})

	t.Run("malformed body is discarded", func(t *testing.T) {
		err := handle(amqp.Delivery{Body: []byte(`not json`)})
		assert.ErrorIs(t, err, rabbitmq.ErrDiscard)
	})

	t.Run("unknown status is discarded", func(t *testing.T) {
		err := handle(amqp.Delivery{Body: []byte(`{"product_id":"m1","status":"shipped"}`)})
		assert.ErrorIs(t, err, rabbitmq.ErrDiscard)
	})
}
