package repositories

import (
	"storefront/internal/models"
)

// ReservationCacheRepository keeps the ids of products already on the
// user's reservation list.
type ReservationCacheRepository interface {
	ReplaceAll(items []models.ReservedProduct) error
	GetAll() ([]models.ReservedProduct, error)
	ProductIDs() (map[string]bool, error)
	UpdateStatus(productID string, status models.ReservationStatus) error
	Count() (int, error)
}
