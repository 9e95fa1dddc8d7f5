package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// CartService manages the locally persisted cart. Quantities stay between
// zero and the stock snapshot taken when the product was added; a line that
// reaches zero is removed.
type CartService struct {
	repo    repositories.CartRepository
	catalog CatalogAPI
}

// NewCartService creates a new CartService.
func NewCartService(repo repositories.CartRepository, catalog CatalogAPI) *CartService {
	return &CartService{
		repo:    repo,
		catalog: catalog,
	}
}

// Add puts quantity units of a product in the cart. The product is fetched
// so the line carries a fresh price and stock snapshot. Adding a product
// already in the cart increments its line, capped at stock.
func (s *CartService) Add(ctx context.Context, productID string, quantity int) (*models.CartItem, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity == 0 {
		quantity = 1
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}
	if !product.InStock() {
		return nil, fmt.Errorf("%s: %w", product.Title, ErrOutOfStock)
	}

	item, err := s.repo.GetByProductID(productID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		item = &models.CartItem{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			AddedAt:   time.Now(),
		}
	case err != nil:
		return nil, err
	}

	item.Title = product.Title
	item.CoverURL = product.ThumbnailURL
	item.UnitPrice = product.Price
	item.StockQuantity = product.StockQuantity
	item.Quantity += quantity
	if item.Quantity > product.StockQuantity {
		item.Quantity = product.StockQuantity
	}
	if err := s.repo.Save(item); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"product_id": productID, "quantity": item.Quantity}).Debug("cart line saved")
	return item, nil
}

// Increment adds one unit. It fails with ErrStockLimit at the stock snapshot.
func (s *CartService) Increment(productID string) (*models.CartItem, error) {
	item, err := s.line(productID)
	if err != nil {
		return nil, err
	}
	if item.Quantity >= item.StockQuantity {
		return nil, fmt.Errorf("%s: %w", item.Title, ErrStockLimit)
	}
	item.Quantity++
	if err := s.repo.Save(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Decrement removes one unit. At zero the line is removed and nil is returned.
func (s *CartService) Decrement(productID string) (*models.CartItem, error) {
	item, err := s.line(productID)
	if err != nil {
		return nil, err
	}
	return s.setQuantity(item, item.Quantity-1)
}

// SetQuantity sets a line to an exact quantity. Zero removes the line.
func (s *CartService) SetQuantity(productID string, quantity int) (*models.CartItem, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	item, err := s.line(productID)
	if err != nil {
		return nil, err
	}
	if quantity > item.StockQuantity {
		return nil, fmt.Errorf("%s: %w", item.Title, ErrStockLimit)
	}
	return s.setQuantity(item, quantity)
}

func (s *CartService) setQuantity(item *models.CartItem, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		if err := s.repo.Delete(item.ProductID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	item.Quantity = quantity
	if err := s.repo.Save(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Remove drops a line.
func (s *CartService) Remove(productID string) error {
	if err := s.repo.Delete(productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotInCart
		}
		return err
	}
	return nil
}

// Clear empties the cart.
func (s *CartService) Clear() error {
	return s.repo.Clear()
}

// Summary returns the cart lines with item count and subtotal.
func (s *CartService) Summary() (*models.CartSummary, error) {
	items, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	summary := &models.CartSummary{Items: items, Subtotal: decimal.Zero}
	for _, item := range items {
		summary.Count += item.Quantity
		summary.Subtotal = summary.Subtotal.Add(item.LineTotal())
	}
	if summary.Items == nil {
		summary.Items = []models.CartItem{}
	}
	return summary, nil
}

func (s *CartService) line(productID string) (*models.CartItem, error) {
	item, err := s.repo.GetByProductID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotInCart
		}
		return nil, err
	}
	return item, nil
}
