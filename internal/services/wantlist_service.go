package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/apiclient"
	"storefront/internal/models"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// WantListService manages the products saved for later.
type WantListService struct {
	api       WantListAPI
	state     *StateService
	publisher EventPublisher
	validate  *validator.Validate
}

// NewWantListService creates a new WantListService. publisher may be nil.
func NewWantListService(api WantListAPI, state *StateService, publisher EventPublisher, validate *validator.Validate) *WantListService {
	return &WantListService{api: api, state: state, publisher: publisher, validate: validate}
}

// List fetches the want list and updates the badge count.
func (s *WantListService) List(ctx context.Context) ([]models.WantListItem, error) {
	items, err := s.api.ListWantList(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list want list: %w", err)
	}
	if items == nil {
		items = []models.WantListItem{}
	}
	if err := s.state.RecordWantListCount(len(items)); err != nil {
		log.WithError(err).Warn("failed to record want list count")
	}
	return items, nil
}

// SignedIn loads the new user's want list count.
func (s *WantListService) SignedIn(ctx context.Context) error {
	if err := s.state.RecordWantListCount(0); err != nil {
		return err
	}
	_, err := s.List(ctx)
	return err
}

// SignedOut forgets the want list count.
func (s *WantListService) SignedOut() error {
	return s.state.RecordWantListCount(0)
}

// Contains reports whether productID is on the want list.
func (s *WantListService) Contains(ctx context.Context, productID string) (bool, error) {
	items, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	return containsProduct(items, productID), nil
}

func containsProduct(items []models.WantListItem, productID string) bool {
	for _, item := range items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Add saves a product. A product already on the list is ErrOnWantList.
func (s *WantListService) Add(ctx context.Context, req models.WantListRequest) ([]models.WantListItem, error) {
	if err := validation.Check(s.validate, req); err != nil {
		return nil, err
	}
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if containsProduct(items, req.ProductID) {
		return nil, ErrOnWantList
	}
	if _, err := s.api.AddWantListItem(ctx, req.ProductID); err != nil {
		if errors.Is(err, apiclient.ErrConflict) {
			return nil, ErrOnWantList
		}
		return nil, fmt.Errorf("failed to add to want list: %w", err)
	}
	s.changed("added", req.ProductID)
	return s.List(ctx)
}

// Remove drops a product from the want list.
func (s *WantListService) Remove(ctx context.Context, productID string) ([]models.WantListItem, error) {
	if err := s.api.RemoveWantListItem(ctx, productID); err != nil {
		return nil, fmt.Errorf("failed to remove from want list: %w", err)
	}
	s.changed("removed", productID)
	return s.List(ctx)
}

func (s *WantListService) changed(action, productID string) {
	publishEvent(s.publisher, "wantlist.changed", map[string]string{
		"action":     action,
		"product_id": productID,
	})
}
