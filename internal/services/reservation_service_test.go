package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/apiclient"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	reservationNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	marchRelease = models.Release{
		ID:          "r-march",
		Title:       "March arrivals",
		ReleaseDate: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		Cutoff:      time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
	}
	februaryRelease = models.Release{
		ID:          "r-feb",
		Title:       "February arrivals",
		ReleaseDate: time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC),
	}
)

type reservationFixture struct {
	service   *services.ReservationService
	catalog   *MockCatalogAPI
	api       *MockReservationAPI
	cache     *repositories.MockReservationCacheRepository
	publisher *MockPublisher
}

func newReservations(t *testing.T) *reservationFixture {
	t.Helper()
	f := &reservationFixture{
		catalog:   new(MockCatalogAPI),
		api:       new(MockReservationAPI),
		cache:     repositories.NewMockReservationCacheRepository(),
		publisher: new(MockPublisher),
	}
	f.service = services.NewReservationService(f.catalog, f.api, f.cache, services.NewSearchDebouncer(0), f.publisher, validation.New())
	f.service.SetClock(func() time.Time { return reservationNow })

	f.catalog.On("ListReleases").Return([]models.Release{februaryRelease, marchRelease}, nil)
	f.catalog.On("ListReleaseProducts", "r-march", "").Return([]models.Product{
		comic("m1", 30000, 10), comic("m2", 45000, 10), comic("m3", 50000, 10),
	}, nil)
	f.catalog.On("ListReleaseProducts", "r-feb", "").Return([]models.Product{comic("f1", 30000, 10)}, nil)
	return f
}

func reserved(id, productID string, status models.ReservationStatus) models.Reservation {
	return models.Reservation{ID: id, Product: comic(productID, 30000, 10), Quantity: 1, Status: status}
}

func TestReservationService_ReleasesNewestFirst(t *testing.T) {
	f := newReservations(t)

	releases, err := f.service.Releases(context.Background())
	require.NoError(t, err)
	require.Len(t, releases, 2)
	assert.Equal(t, "r-march", releases[0].ID)
	assert.True(t, releases[0].Latest)
	assert.False(t, releases[1].Latest)
}

func TestReservationService_Candidates(t *testing.T) {
	f := newReservations(t)
	require.NoError(t, f.cache.ReplaceAll([]models.ReservedProduct{{ProductID: "m2", Status: models.ReservationPending}}))

	candidates, err := f.service.Candidates(context.Background(), "r-march", "")
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	byID := map[string]models.ReservationCandidate{}
	for _, c := range candidates {
		byID[c.Product.ID] = c
	}
	assert.True(t, byID["m1"].Selectable)
	assert.False(t, byID["m2"].Selectable)
	assert.Equal(t, "already on the reservation list", byID["m2"].Reason)

	old, err := f.service.Candidates(context.Background(), "r-feb", "")
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.False(t, old[0].Selectable)
	assert.Equal(t, "only the latest release can be reserved", old[0].Reason)

	_, err = f.service.Candidates(context.Background(), "r-nope", "")
	assert.ErrorIs(t, err, services.ErrUnknownRelease)
}

func TestReservationService_CandidatesAfterCutoff(t *testing.T) {
	f := newReservations(t)
	f.service.SetClock(func() time.Time { return marchRelease.Cutoff.Add(time.Minute) })

	candidates, err := f.service.Candidates(context.Background(), "r-march", "")
	require.NoError(t, err)
	for _, c := range candidates {
		assert.False(t, c.Selectable)
		assert.Equal(t, "reservation cutoff has passed", c.Reason)
	}
}

func TestReservationService_PreviewRules(t *testing.T) {
	f := newReservations(t)
	require.NoError(t, f.cache.ReplaceAll([]models.ReservedProduct{{ProductID: "m2", Status: models.ReservationPending}}))

	tests := []struct {
		name    string
		sel     models.ReservationSelection
		wantErr error
		product string
	}{
		{
			name:    "already reserved",
			sel:     models.ReservationSelection{ReleaseID: "r-march", Items: []models.ReservationSelectionItem{{ProductID: "m1"}, {ProductID: "m2"}}},
			wantErr: services.ErrAlreadyReserved,
			product: "m2",
		},
		{
			name:    "not the latest release",
			sel:     models.ReservationSelection{ReleaseID: "r-feb", Items: []models.ReservationSelectionItem{{ProductID: "f1"}}},
			wantErr: services.ErrNotLatestRelease,
		},
		{
			name:    "product from another release",
			sel:     models.ReservationSelection{ReleaseID: "r-march", Items: []models.ReservationSelectionItem{{ProductID: "f1"}}},
			wantErr: services.ErrNotInRelease,
			product: "f1",
		},
		{
			name:    "duplicate product",
			sel:     models.ReservationSelection{ReleaseID: "r-march", Items: []models.ReservationSelectionItem{{ProductID: "m1"}, {ProductID: "m1"}}},
			wantErr: services.ErrDuplicateSelection,
			product: "m1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Preview(context.Background(), tt.sel)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, services.ErrNotSelectable)
			if tt.product != "" {
				var serr *services.SelectionError
				require.True(t, errors.As(err, &serr))
				assert.Equal(t, tt.product, serr.ProductID)
			}
		})
	}
}

func TestReservationService_PreviewEmptySelection(t *testing.T) {
	f := newReservations(t)

	_, err := f.service.Preview(context.Background(), models.ReservationSelection{ReleaseID: "r-march"})
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "items")
}

func TestReservationService_Preview(t *testing.T) {
	f := newReservations(t)

	preview, err := f.service.Preview(context.Background(), models.ReservationSelection{
		ReleaseID: "r-march",
		Items:     []models.ReservationSelectionItem{{ProductID: "m1", Quantity: 2}, {ProductID: "m3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "r-march", preview.Release.ID)
	require.Len(t, preview.Lines, 2)
	assert.Equal(t, 1, preview.Lines[1].Quantity, "zero quantity means one")
	assert.Equal(t, 3, preview.Quantity)
	assert.True(t, preview.Total.Equal(decimal.NewFromInt(110000)), preview.Total.String())
	f.api.AssertNotCalled(t, "AddReservationItem", mock.Anything)
}

func TestReservationService_Confirm(t *testing.T) {
	f := newReservations(t)

	first := reserved("res-1", "m1", models.ReservationPending)
	second := reserved("res-2", "m3", models.ReservationPending)
	f.api.On("AddReservationItem", models.ReservationItemRequest{ProductID: "m1", Quantity: 1}).Return(&first, nil).Once()
	f.api.On("AddReservationItem", models.ReservationItemRequest{ProductID: "m3", Quantity: 1}).Return(&second, nil).Once()
	f.api.On("ConfirmReservations").Return(nil).Once()
	f.api.On("ListReservations").Return([]models.Reservation{
		reserved("res-1", "m1", models.ReservationForApproval),
		reserved("res-2", "m3", models.ReservationForApproval),
	}, nil).Once()
	f.publisher.On("Publish", services.EventExchange, "reservation.confirmed", mock.Anything).Return(nil).Once()

	result, err := f.service.Confirm(context.Background(), models.ReservationSelection{
		ReleaseID: "r-march",
		Items:     []models.ReservationSelectionItem{{ProductID: "m1"}, {ProductID: "m3"}},
	})
	require.NoError(t, err)
	assert.Len(t, result.Added, 2)
	assert.Len(t, result.Reservations, 2)

	ids, err := f.cache.ProductIDs()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"m1": true, "m3": true}, ids)

	candidates, err := f.service.Candidates(context.Background(), "r-march", "")
	require.NoError(t, err)
	for _, c := range candidates {
		assert.Equal(t, c.Product.ID == "m2", c.Selectable, c.Product.ID)
	}
	f.api.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestReservationService_ConfirmStopsAtFirstRejection(t *testing.T) {
	f := newReservations(t)

	first := reserved("res-1", "m1", models.ReservationPending)
	rejected := &apiclient.APIError{Status: 409, Method: "POST", Path: "/reservations/items", Message: "sold out at distributor"}
	f.api.On("AddReservationItem", models.ReservationItemRequest{ProductID: "m1", Quantity: 1}).Return(&first, nil).Once()
	f.api.On("AddReservationItem", models.ReservationItemRequest{ProductID: "m2", Quantity: 1}).Return(nil, rejected).Once()
	f.api.On("ListReservations").Return([]models.Reservation{first}, nil).Once()

	_, err := f.service.Confirm(context.Background(), models.ReservationSelection{
		ReleaseID: "r-march",
		Items:     []models.ReservationSelectionItem{{ProductID: "m1"}, {ProductID: "m2"}, {ProductID: "m3"}},
	})
	var cerr *services.CommitError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "m2", cerr.ProductID)
	require.Len(t, cerr.Added, 1)
	assert.Equal(t, "res-1", cerr.Added[0].ID)
	assert.ErrorIs(t, err, apiclient.ErrConflict)

	ids, err := f.cache.ProductIDs()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"m1": true}, ids, "cache refreshed after the failure")

	f.api.AssertNotCalled(t, "AddReservationItem", models.ReservationItemRequest{ProductID: "m3", Quantity: 1})
	f.api.AssertNotCalled(t, "ConfirmReservations")
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationService_ConfirmWithFailedRefresh(t *testing.T) {
	f := newReservations(t)

	first := reserved("res-1", "m1", models.ReservationPending)
	f.api.On("AddReservationItem", models.ReservationItemRequest{ProductID: "m1", Quantity: 1}).Return(&first, nil).Once()
	f.api.On("ConfirmReservations").Return(nil).Once()
	f.api.On("ListReservations").Return(nil, &apiclient.APIError{Status: 503, Message: "maintenance"}).Once()
	f.publisher.On("Publish", services.EventExchange, "reservation.confirmed", mock.Anything).Return(nil).Once()

	result, err := f.service.Confirm(context.Background(), models.ReservationSelection{
		ReleaseID: "r-march",
		Items:     []models.ReservationSelectionItem{{ProductID: "m1"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warning)
	require.Len(t, result.Added, 1)
	require.Len(t, result.Reservations, 1)
	assert.Equal(t, models.ReservationForApproval, result.Reservations[0].Status)

	ids, err := f.cache.ProductIDs()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"m1": true}, ids, "confirmed items kept out of later selections")

	_, err = f.service.Preview(context.Background(), models.ReservationSelection{
		ReleaseID: "r-march",
		Items:     []models.ReservationSelectionItem{{ProductID: "m1"}},
	})
	assert.ErrorIs(t, err, services.ErrAlreadyReserved)
	f.api.AssertExpectations(t)
}

func TestReservationService_SignInReplacesCache(t *testing.T) {
	f := newReservations(t)
	// Left behind by the previous user
	require.NoError(t, f.cache.ReplaceAll([]models.ReservedProduct{{ProductID: "m2", Status: models.ReservationPending}}))
	f.api.On("ListReservations").Return([]models.Reservation{
		reserved("res-7", "m1", models.ReservationApproved),
	}, nil).Once()

	require.NoError(t, f.service.SignedIn(context.Background()))
	ids, err := f.cache.ProductIDs()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"m1": true}, ids)

	candidates, err := f.service.Candidates(context.Background(), "r-march", "")
	require.NoError(t, err)
	for _, c := range candidates {
		assert.Equal(t, c.Product.ID != "m1", c.Selectable, c.Product.ID)
	}

	require.NoError(t, f.service.SignedOut())
	n, err := f.cache.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReservationService_SignInFetchFailureLeavesCacheEmpty(t *testing.T) {
	f := newReservations(t)
	require.NoError(t, f.cache.ReplaceAll([]models.ReservedProduct{{ProductID: "m2", Status: models.ReservationPending}}))
	f.api.On("ListReservations").Return(nil, errors.New("connection refused")).Once()

	assert.Error(t, f.service.SignedIn(context.Background()))
	n, err := f.cache.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReservationService_Cancel(t *testing.T) {
	f := newReservations(t)
	f.api.On("ListReservations").Return([]models.Reservation{
		reserved("res-1", "m1", models.ReservationPending),
		reserved("res-2", "m2", models.ReservationApproved),
	}, nil).Twice()
	f.api.On("CancelReservationItem", "res-1").Return(nil).Once()
	f.api.On("ListReservations").Return([]models.Reservation{
		reserved("res-2", "m2", models.ReservationApproved),
	}, nil).Once()

	_, err := f.service.Cancel(context.Background(), "res-2")
	assert.ErrorIs(t, err, services.ErrNotCancellable)

	list, err := f.service.Cancel(context.Background(), "res-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	count, err := f.cache.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	f.api.AssertExpectations(t)
}

func TestReservationService_ApplyStatusEvent(t *testing.T) {
	f := newReservations(t)
	require.NoError(t, f.cache.ReplaceAll([]models.ReservedProduct{{ProductID: "m1", ReservationID: "res-1", Status: models.ReservationForApproval}}))

	require.NoError(t, f.service.ApplyStatusEvent(models.ReservationStatusEvent{ProductID: "m1", Status: models.ReservationApproved}))
	cached, err := f.service.Cached()
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, models.ReservationApproved, cached[0].Status)

	assert.NoError(t, f.service.ApplyStatusEvent(models.ReservationStatusEvent{ProductID: "zz", Status: models.ReservationApproved}))
	assert.Error(t, f.service.ApplyStatusEvent(models.ReservationStatusEvent{ProductID: "m1", Status: "shipped"}))
}

func TestReservationService_SearchSuperseded(t *testing.T) {
	f := newReservations(t)
	f.service = services.NewReservationService(f.catalog, f.api, f.cache, services.NewSearchDebouncer(50*time.Millisecond), nil, validation.New())
	f.service.SetClock(func() time.Time { return reservationNow })
	f.catalog.On("ListReleaseProducts", "r-march", "spider").Return([]models.Product{comic("m1", 30000, 10)}, nil)

	first := make(chan error, 1)
	go func() {
		_, err := f.service.Search(context.Background(), "screen", "r-march", "spi")
		first <- err
	}()
	time.Sleep(10 * time.Millisecond)

	results, err := f.service.Search(context.Background(), "screen", "r-march", "spider")
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.ErrorIs(t, <-first, services.ErrSearchSuperseded)
	f.catalog.AssertNotCalled(t, "ListReleaseProducts", "r-march", "spi")
}
