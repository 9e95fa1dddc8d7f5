package repositories

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetAll retrieves all cart lines, oldest first.
func (r *GORMCartRepository) GetAll() ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Order("added_at asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	return items, nil
}

// GetByProductID retrieves the cart line for a product.
func (r *GORMCartRepository) GetByProductID(productID string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.First(&item, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item for product %s: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart item for product %s: %w", productID, err)
	}
	return &item, nil
}

// Save inserts or updates a cart line.
func (r *GORMCartRepository) Save(item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	if err := r.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to save cart item: %w", err)
	}
	return nil
}

// Delete removes the cart line for a product.
func (r *GORMCartRepository) Delete(productID string) error {
	res := r.db.Delete(&models.CartItem{}, "product_id = ?", productID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item for product %s: %w", productID, ErrNotFound)
	}
	return nil
}

// Clear empties the cart.
func (r *GORMCartRepository) Clear() error {
	if err := r.db.Where("1 = 1").Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
