package repositories

import (
	"fmt"
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// GORMReservationCacheRepository is a GORM implementation of ReservationCacheRepository.
type GORMReservationCacheRepository struct {
	db *gorm.DB
}

// NewGORMReservationCacheRepository creates a new instance of GORMReservationCacheRepository.
func NewGORMReservationCacheRepository(db *gorm.DB) *GORMReservationCacheRepository {
	return &GORMReservationCacheRepository{db: db}
}

// ReplaceAll swaps the cached list for items in one transaction.
func (r *GORMReservationCacheRepository) ReplaceAll(items []models.ReservedProduct) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ReservedProduct{}).Error; err != nil {
			return fmt.Errorf("failed to clear reservation cache: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		// One row per product; a later entry for the same product wins.
		rows := make([]models.ReservedProduct, 0, len(items))
		index := make(map[string]int, len(items))
		for _, item := range items {
			item.UpdatedAt = now
			if i, ok := index[item.ProductID]; ok {
				rows[i] = item
				continue
			}
			index[item.ProductID] = len(rows)
			rows = append(rows, item)
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to store reservation cache: %w", err)
		}
		return nil
	})
}

// GetAll returns the cached list.
func (r *GORMReservationCacheRepository) GetAll() ([]models.ReservedProduct, error) {
	var items []models.ReservedProduct
	if err := r.db.Order("product_id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get reservation cache: %w", err)
	}
	return items, nil
}

// ProductIDs returns the cached product ids as a set.
func (r *GORMReservationCacheRepository) ProductIDs() (map[string]bool, error) {
	var ids []string
	if err := r.db.Model(&models.ReservedProduct{}).Pluck("product_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get reserved product ids: %w", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// UpdateStatus changes the cached status of a reserved product.
func (r *GORMReservationCacheRepository) UpdateStatus(productID string, status models.ReservationStatus) error {
	res := r.db.Model(&models.ReservedProduct{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to update reservation status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reserved product %s: %w", productID, ErrNotFound)
	}
	return nil
}

// Count returns the number of cached reservations.
func (r *GORMReservationCacheRepository) Count() (int, error) {
	var n int64
	if err := r.db.Model(&models.ReservedProduct{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return int(n), nil
}
