package services

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
)

const defaultPerPage = 20

// CatalogService handles catalog browsing.
type CatalogService struct {
	api      CatalogAPI
	validate *validator.Validate
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(api CatalogAPI, validate *validator.Validate) *CatalogService {
	return &CatalogService{
		api:      api,
		validate: validate,
	}
}

// ListProducts returns one page of the catalog.
func (s *CatalogService) ListProducts(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	if err := validation.Check(s.validate, q); err != nil {
		return nil, err
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = defaultPerPage
	}
	page, err := s.api.ListProducts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return page, nil
}

// GetProduct retrieves a single product by its ID.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return product, nil
}
