package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	items map[string]models.CartItem // by product id
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		items: make(map[string]models.CartItem),
	}
}

// GetAll returns all cart lines, oldest first.
func (r *MockCartRepository) GetAll() ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.CartItem, 0, len(r.items))
	for _, item := range r.items {
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].AddedAt.Before(list[j].AddedAt) })
	return list, nil
}

// GetByProductID returns the cart line for a product.
func (r *MockCartRepository) GetByProductID(productID string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[productID]
	if !ok {
		return nil, fmt.Errorf("cart item for product %s: %w", productID, ErrNotFound)
	}
	return &item, nil
}

// Save inserts or updates a cart line.
func (r *MockCartRepository) Save(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	item.UpdatedAt = time.Now()
	r.items[item.ProductID] = *item
	return nil
}

// Delete removes the cart line for a product.
func (r *MockCartRepository) Delete(productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[productID]; !ok {
		return fmt.Errorf("cart item for product %s: %w", productID, ErrNotFound)
	}
	delete(r.items, productID)
	return nil
}

// Clear empties the cart.
func (r *MockCartRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[string]models.CartItem)
	return nil
}
