package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/models"
)

// MockReservationCacheRepository is an in-memory implementation of ReservationCacheRepository.
type MockReservationCacheRepository struct {
	items map[string]models.ReservedProduct
	mu    sync.RWMutex
}

// NewMockReservationCacheRepository creates a new instance of MockReservationCacheRepository.
func NewMockReservationCacheRepository() *MockReservationCacheRepository {
	return &MockReservationCacheRepository{
		items: make(map[string]models.ReservedProduct),
	}
}

// ReplaceAll swaps the cached list for items.
func (r *MockReservationCacheRepository) ReplaceAll(items []models.ReservedProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[string]models.ReservedProduct, len(items))
	for _, item := range items {
		item.UpdatedAt = time.Now()
		r.items[item.ProductID] = item
	}
	return nil
}

// GetAll returns the cached list ordered by product id.
func (r *MockReservationCacheRepository) GetAll() ([]models.ReservedProduct, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.ReservedProduct, 0, len(r.items))
	for _, item := range r.items {
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list, nil
}

// ProductIDs returns the cached product ids as a set.
func (r *MockReservationCacheRepository) ProductIDs() (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[string]bool, len(r.items))
	for id := range r.items {
		set[id] = true
	}
	return set, nil
}

// UpdateStatus changes the cached status of a reserved product.
func (r *MockReservationCacheRepository) UpdateStatus(productID string, status models.ReservationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[productID]
	if !ok {
		return fmt.Errorf("reserved product %s: %w", productID, ErrNotFound)
	}
	item.Status = status
	item.UpdatedAt = time.Now()
	r.items[productID] = item
	return nil
}

// Count returns the number of cached reservations.
func (r *MockReservationCacheRepository) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}
