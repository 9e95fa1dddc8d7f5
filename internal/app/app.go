// Package app wires configuration, the local store, the store API client,
// the services and the Fiber screen surface into one application.
package app

import (
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/apiclient"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/validation"
	"storefront/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"gorm.io/gorm"
)

// Options overrides the dependencies New would otherwise build from config.
type Options struct {
	// DB replaces the database opened from DB_DRIVER and DATABASE_DSN.
	DB *gorm.DB
	// Doer replaces the HTTP client used to reach the store API.
	Doer apiclient.Doer
	// Publisher receives activity events. Nil disables them.
	Publisher services.EventPublisher
	// DisableRequestLog turns off the Fiber request logger.
	DisableRequestLog bool
}

// App is the wired application.
type App struct {
	Fiber        *fiber.App
	DB           *gorm.DB
	Auth         *services.AuthService
	Cart         *services.CartService
	Reservations *services.ReservationService
	State        *services.StateService
}

// protectedPrefixes are the screens that need a signed-in session.
var protectedPrefixes = []string{
	"/profile",
	"/checkout",
	"/orders",
	"/payments",
	"/reservations",
	"/wantlist",
	"/collection",
}

// New builds the application.
func New(cfg *config.Config, opts Options) (*App, error) {
	db := opts.DB
	if db == nil {
		var err error
		db, err = repositories.Open(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
	} else if err := repositories.Migrate(db); err != nil {
		return nil, err
	}

	validate := validation.New()

	// --- Repositories ---
	sessionRepo := repositories.NewGORMSessionRepository(db)
	profileRepo := repositories.NewGORMProfileRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	reservationCache := repositories.NewGORMReservationCacheRepository(db)
	settingsRepo := repositories.NewGORMSettingsRepository(db)

	stateService := services.NewStateService(settingsRepo, cartRepo, reservationCache, validate)
	deviceID, err := stateService.DeviceID()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise device settings: %w", err)
	}

	// --- Store API client ---
	clientOpts := []apiclient.Option{apiclient.WithLogger(log.StandardLogger())}
	if opts.Doer != nil {
		clientOpts = append(clientOpts, apiclient.WithDoer(opts.Doer))
	}
	client := apiclient.New(apiclient.Config{
		BaseURL:           cfg.APIBaseURL,
		Timeout:           cfg.APITimeout,
		RequestsPerSecond: cfg.APIRateLimit,
		Burst:             cfg.APIRateBurst,
		DeviceID:          deviceID,
	}, services.NewSessionTokenSource(sessionRepo), clientOpts...)

	// --- Services ---
	reservationService := services.NewReservationService(client, client, reservationCache,
		services.NewSearchDebouncer(cfg.SearchDebounce), opts.Publisher, validate)
	wantListService := services.NewWantListService(client, stateService, opts.Publisher, validate)
	authService := services.NewAuthService(client, sessionRepo, profileRepo, validate,
		reservationService, wantListService)
	profileService := services.NewProfileService(client, profileRepo, validate)
	catalogService := services.NewCatalogService(client, validate)
	cartService := services.NewCartService(cartRepo, client)
	checkoutService := services.NewCheckoutService(cartService, client, authService, services.ShippingPolicy{
		FlatFee:       cfg.ShippingFlatFee,
		FreeThreshold: cfg.FreeShippingThreshold,
	}, opts.Publisher, validate)
	paymentService := services.NewPaymentService(client, cfg.PaymentEnv, cfg.PaymentRedirectHosts...)
	collectionService := services.NewCollectionService(client, validate)

	// --- Fiber app ---
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(recover.New())
	if !opts.DisableRequestLog {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"events":   opts.Publisher != nil,
			"database": cfg.DBDriver,
		})
	})

	apiV1 := app.Group("/api/v1")
	apiV1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	requireSession := middleware.SessionRequired(authService)
	for _, prefix := range protectedPrefixes {
		apiV1.Use(prefix, requireSession)
	}

	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1, requireSession)
	handlers.NewCatalogHandler(catalogService, reservationService).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartService, validate).RegisterRoutes(apiV1)
	handlers.NewStateHandler(stateService).RegisterRoutes(apiV1, requireSession)
	handlers.NewProfileHandler(profileService).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(checkoutService).RegisterRoutes(apiV1)
	handlers.NewPaymentHandler(paymentService, validate).RegisterRoutes(apiV1)
	handlers.NewReservationHandler(reservationService, deviceID).RegisterRoutes(apiV1)
	handlers.NewWantListHandler(wantListService, collectionService).RegisterRoutes(apiV1)

	return &App{
		Fiber:        app,
		DB:           db,
		Auth:         authService,
		Cart:         cartService,
		Reservations: reservationService,
		State:        stateService,
	}, nil
}

// ReservationStatusHandler decodes reservation status events from the
// broker and applies them to the local reservation cache.
func ReservationStatusHandler(reservations *services.ReservationService) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var ev models.ReservationStatusEvent
		if err := json.Unmarshal(msg.Body, &ev); err != nil {
			return fmt.Errorf("malformed reservation status event: %v: %w", err, rabbitmq.ErrDiscard)
		}
		if ev.ProductID == "" || !ev.Status.Valid() {
			return fmt.Errorf("reservation status event missing product or status: %w", rabbitmq.ErrDiscard)
		}
		if err := reservations.ApplyStatusEvent(ev); err != nil {
			return err
		}
		log.WithFields(log.Fields{"product_id": ev.ProductID, "status": ev.Status}).Info("reservation status updated")
		return nil
	}
}
