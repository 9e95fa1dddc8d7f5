package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ReservationService runs the reservation workflow: pick the release, pick
// products from it, preview, then commit item by item and confirm. The
// local cache of reserved product ids keeps already reserved products out of
// later selections.
type ReservationService struct {
	catalog   CatalogAPI
	api       ReservationAPI
	cache     repositories.ReservationCacheRepository
	debouncer *SearchDebouncer
	publisher EventPublisher
	validate  *validator.Validate
	now       func() time.Time
}

// NewReservationService creates a new ReservationService. publisher may be nil.
func NewReservationService(catalog CatalogAPI, api ReservationAPI, cache repositories.ReservationCacheRepository, debouncer *SearchDebouncer, publisher EventPublisher, validate *validator.Validate) *ReservationService {
	return &ReservationService{
		catalog:   catalog,
		api:       api,
		cache:     cache,
		debouncer: debouncer,
		publisher: publisher,
		validate:  validate,
		now:       time.Now,
	}
}

// SetClock replaces the time source used for cutoff checks.
func (s *ReservationService) SetClock(now func() time.Time) {
	s.now = now
}

// Releases lists the releases newest first and flags the latest one.
func (s *ReservationService) Releases(ctx context.Context) ([]models.Release, error) {
	releases, err := s.catalog.ListReleases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}
	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].ReleaseDate.After(releases[j].ReleaseDate)
	})
	for i := range releases {
		releases[i].Latest = i == 0
	}
	return releases, nil
}

// release finds releaseID among the releases.
func (s *ReservationService) release(ctx context.Context, releaseID string) (*models.Release, error) {
	releases, err := s.Releases(ctx)
	if err != nil {
		return nil, err
	}
	for i := range releases {
		if releases[i].ID == releaseID {
			return &releases[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownRelease, releaseID)
}

// Candidates lists a release's products and marks which may be selected.
func (s *ReservationService) Candidates(ctx context.Context, releaseID, search string) ([]models.ReservationCandidate, error) {
	release, err := s.release(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.ListReleaseProducts(ctx, releaseID, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list release products: %w", err)
	}
	reserved, err := s.cache.ProductIDs()
	if err != nil {
		return nil, err
	}

	releaseErr := s.releaseRule(release)
	out := make([]models.ReservationCandidate, 0, len(products))
	for _, p := range products {
		c := models.ReservationCandidate{Product: p, Selectable: true}
		switch {
		case releaseErr != nil:
			c.Selectable, c.Reason = false, reason(releaseErr)
		case reserved[p.ID]:
			c.Selectable, c.Reason = false, reason(ErrAlreadyReserved)
		}
		out = append(out, c)
	}
	return out, nil
}

// Search is Candidates behind the debouncer. Calls overtaken by a newer
// search with the same key return ErrSearchSuperseded.
func (s *ReservationService) Search(ctx context.Context, key, releaseID, term string) ([]models.ReservationCandidate, error) {
	if err := s.debouncer.Wait(ctx, key); err != nil {
		return nil, err
	}
	return s.Candidates(ctx, releaseID, term)
}

// releaseRule reports why a release cannot take reservations, if it cannot.
func (s *ReservationService) releaseRule(r *models.Release) error {
	if !r.Latest {
		return ErrNotLatestRelease
	}
	if !r.OpenAt(s.now()) {
		return ErrReservationClosed
	}
	return nil
}

func reason(err error) string {
	msg := err.Error()
	prefix := ErrNotSelectable.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

// Preview checks a selection against every rule and returns the
// confirmation dialog model. Nothing is sent to the API.
func (s *ReservationService) Preview(ctx context.Context, sel models.ReservationSelection) (*models.ReservationPreview, error) {
	if err := validation.Check(s.validate, sel); err != nil {
		return nil, err
	}
	release, err := s.release(ctx, sel.ReleaseID)
	if err != nil {
		return nil, err
	}
	if err := s.releaseRule(release); err != nil {
		return nil, err
	}

	products, err := s.catalog.ListReleaseProducts(ctx, release.ID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list release products: %w", err)
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	reserved, err := s.cache.ProductIDs()
	if err != nil {
		return nil, err
	}

	preview := &models.ReservationPreview{Release: *release, Total: decimal.Zero}
	seen := make(map[string]bool, len(sel.Items))
	for _, item := range sel.Items {
		if seen[item.ProductID] {
			return nil, &SelectionError{ProductID: item.ProductID, Err: ErrDuplicateSelection}
		}
		seen[item.ProductID] = true

		product, ok := byID[item.ProductID]
		if !ok {
			return nil, &SelectionError{ProductID: item.ProductID, Err: ErrNotInRelease}
		}
		if reserved[item.ProductID] {
			return nil, &SelectionError{ProductID: item.ProductID, Err: ErrAlreadyReserved}
		}
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		line := models.ReservationPreviewLine{
			Product:   product,
			Quantity:  qty,
			LineTotal: product.Price.Mul(decimal.NewFromInt(int64(qty))),
		}
		preview.Lines = append(preview.Lines, line)
		preview.Quantity += qty
		preview.Total = preview.Total.Add(line.LineTotal)
	}
	return preview, nil
}

// Confirm commits a selection: one add call per item in order, then the
// confirm call, then a refresh of the local reserved-id cache. The first
// rejection stops the sequence and is returned as a *CommitError listing the
// items already added. The cache is refreshed either way. When only the final
// refresh fails, the confirmation is still returned, with Warning set.
func (s *ReservationService) Confirm(ctx context.Context, sel models.ReservationSelection) (*models.ReservationConfirmation, error) {
	preview, err := s.Preview(ctx, sel)
	if err != nil {
		return nil, err
	}

	var added []models.Reservation
	for _, line := range preview.Lines {
		r, err := s.api.AddReservationItem(ctx, models.ReservationItemRequest{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
		if err != nil {
			log.WithError(err).WithField("product_id", line.Product.ID).Warn("reservation item rejected")
			s.refreshQuietly(ctx)
			return nil, &CommitError{ProductID: line.Product.ID, Added: added, Err: err}
		}
		added = append(added, *r)
	}

	if err := s.api.ConfirmReservations(ctx); err != nil {
		log.WithError(err).Warn("reservation confirm rejected")
		s.refreshQuietly(ctx)
		return nil, &CommitError{Added: added, Err: err}
	}

	result := &models.ReservationConfirmation{Added: added}
	list, err := s.Refresh(ctx)
	if err != nil {
		log.WithError(err).Warn("reservations confirmed but the list could not be refreshed")
		list = s.remember(added)
		result.Warning = "Reservations were confirmed but the reservation list could not be refreshed"
	}
	result.Reservations = list

	productIDs := make([]string, 0, len(added))
	for _, r := range added {
		productIDs = append(productIDs, r.Product.ID)
	}
	publishEvent(s.publisher, "reservation.confirmed", map[string]interface{}{
		"release_id":  preview.Release.ID,
		"product_ids": productIDs,
	})
	log.WithFields(log.Fields{"release_id": preview.Release.ID, "items": len(added)}).Info("reservations confirmed")
	return result, nil
}

// remember adds confirmed items to the cache without a round trip and
// returns them as awaiting approval.
func (s *ReservationService) remember(added []models.Reservation) []models.Reservation {
	confirmed := make([]models.Reservation, len(added))
	cached, err := s.cache.GetAll()
	if err != nil {
		log.WithError(err).Warn("failed to read reservation cache")
	}
	for i, r := range added {
		r.Status = models.ReservationForApproval
		confirmed[i] = r
		cached = append(cached, models.ReservedProduct{
			ProductID:     r.Product.ID,
			ReservationID: r.ID,
			Status:        r.Status,
		})
	}
	if err := s.cache.ReplaceAll(cached); err != nil {
		log.WithError(err).Warn("failed to record confirmed reservations")
	}
	return confirmed
}

// Refresh fetches the reservation list and replaces the local cache.
func (s *ReservationService) Refresh(ctx context.Context) ([]models.Reservation, error) {
	list, err := s.api.ListReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	cached := make([]models.ReservedProduct, 0, len(list))
	for _, r := range list {
		cached = append(cached, models.ReservedProduct{
			ProductID:     r.Product.ID,
			ReservationID: r.ID,
			Status:        r.Status,
		})
	}
	if err := s.cache.ReplaceAll(cached); err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Reservation{}
	}
	return list, nil
}

// SignedIn loads the new user's reservations into the cache. The previous
// user's entries are dropped first so a failed fetch leaves nothing stale.
func (s *ReservationService) SignedIn(ctx context.Context) error {
	if err := s.cache.ReplaceAll(nil); err != nil {
		return err
	}
	_, err := s.Refresh(ctx)
	return err
}

// SignedOut empties the reservation cache.
func (s *ReservationService) SignedOut() error {
	return s.cache.ReplaceAll(nil)
}

func (s *ReservationService) refreshQuietly(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		log.WithError(err).Warn("failed to refresh reservation cache")
	}
}

// Cancel removes a pending reservation.
func (s *ReservationService) Cancel(ctx context.Context, reservationID string) ([]models.Reservation, error) {
	list, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	var target *models.Reservation
	for i := range list {
		if list[i].ID == reservationID {
			target = &list[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, repositories.ErrNotFound)
	}
	if target.Status != models.ReservationPending {
		return nil, ErrNotCancellable
	}
	if err := s.api.CancelReservationItem(ctx, reservationID); err != nil {
		return nil, fmt.Errorf("failed to cancel reservation %s: %w", reservationID, err)
	}
	return s.Refresh(ctx)
}

// ApplyStatusEvent records a status change pushed by the store.
func (s *ReservationService) ApplyStatusEvent(ev models.ReservationStatusEvent) error {
	if !ev.Status.Valid() {
		return fmt.Errorf("unknown reservation status %q", ev.Status)
	}
	if err := s.cache.UpdateStatus(ev.ProductID, ev.Status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.WithField("product_id", ev.ProductID).Debug("status event for product not in cache")
			return nil
		}
		return err
	}
	return nil
}

// Cached returns the local reservation cache.
func (s *ReservationService) Cached() ([]models.ReservedProduct, error) {
	return s.cache.GetAll()
}
