package repositories

import (
	"storefront/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	GetAll() ([]models.CartItem, error)
	GetByProductID(productID string) (*models.CartItem, error)
	Save(item *models.CartItem) error
	Delete(productID string) error
	Clear() error
}
