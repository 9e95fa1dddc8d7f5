package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
)

const sessionRowID = 1

// GORMSessionRepository is a GORM implementation of SessionRepository.
type GORMSessionRepository struct {
	db *gorm.DB
}

// NewGORMSessionRepository creates a new instance of GORMSessionRepository.
func NewGORMSessionRepository(db *gorm.DB) *GORMSessionRepository {
	return &GORMSessionRepository{db: db}
}

// Get returns the stored session.
func (r *GORMSessionRepository) Get() (*models.Session, error) {
	var session models.Session
	if err := r.db.First(&session, sessionRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// Save replaces the stored session.
func (r *GORMSessionRepository) Save(session *models.Session) error {
	session.ID = sessionRowID
	if err := r.db.Save(session).Error; err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear forgets the stored session.
func (r *GORMSessionRepository) Clear() error {
	if err := r.db.Delete(&models.Session{}, sessionRowID).Error; err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// GORMProfileRepository is a GORM implementation of ProfileRepository.
type GORMProfileRepository struct {
	db *gorm.DB
}

// NewGORMProfileRepository creates a new instance of GORMProfileRepository.
func NewGORMProfileRepository(db *gorm.DB) *GORMProfileRepository {
	return &GORMProfileRepository{db: db}
}

// Get returns the cached profile.
func (r *GORMProfileRepository) Get() (*models.User, error) {
	var user models.User
	if err := r.db.Order("updated_at desc").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &user, nil
}

// Save replaces the cached profile.
func (r *GORMProfileRepository) Save(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id <> ?", user.ID).Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("failed to replace profile: %w", err)
		}
		if err := tx.Save(user).Error; err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		return nil
	})
}

// Clear forgets the cached profile.
func (r *GORMProfileRepository) Clear() error {
	if err := r.db.Where("1 = 1").Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("failed to clear profile: %w", err)
	}
	return nil
}
