package services

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
)

// CollectionService manages the items the user owns.
type CollectionService struct {
	api      CollectionAPI
	validate *validator.Validate
}

// NewCollectionService creates a new CollectionService.
func NewCollectionService(api CollectionAPI, validate *validator.Validate) *CollectionService {
	return &CollectionService{api: api, validate: validate}
}

// List fetches the collection.
func (s *CollectionService) List(ctx context.Context) ([]models.CollectionItem, error) {
	items, err := s.api.ListCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection: %w", err)
	}
	if items == nil {
		items = []models.CollectionItem{}
	}
	return items, nil
}

// Summary fetches the collection with its distinct title and item totals.
func (s *CollectionService) Summary(ctx context.Context) (*models.CollectionSummary, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return summarizeCollection(items), nil
}

func summarizeCollection(items []models.CollectionItem) *models.CollectionSummary {
	summary := &models.CollectionSummary{Items: items}
	titles := make(map[string]bool)
	for _, item := range items {
		key := item.ProductID
		if item.Product != nil && item.Product.Title != "" {
			key = item.Product.Title
		}
		titles[key] = true
		summary.Quantity += item.Quantity
	}
	summary.Titles = len(titles)
	return summary
}

// Add records an owned item. A zero quantity means one.
func (s *CollectionService) Add(ctx context.Context, req models.CollectionItemRequest) (*models.CollectionItem, error) {
	if err := validation.Check(s.validate, req); err != nil {
		return nil, err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	item, err := s.api.AddCollectionItem(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to add collection item: %w", err)
	}
	return item, nil
}

// Remove deletes an owned item.
func (s *CollectionService) Remove(ctx context.Context, id string) error {
	if err := s.api.RemoveCollectionItem(ctx, id); err != nil {
		return fmt.Errorf("failed to remove collection item %s: %w", id, err)
	}
	return nil
}
