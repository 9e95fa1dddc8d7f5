package repositories

import (
	"errors"
	"fmt"
	"sync"

	"storefront/internal/models"

	"gorm.io/gorm"
)

const settingsRowID = 1

// SettingsRepository stores device-level settings.
type SettingsRepository interface {
	Get() (*models.Settings, error)
	Save(settings *models.Settings) error
}

// GORMSettingsRepository is a GORM implementation of SettingsRepository.
type GORMSettingsRepository struct {
	db *gorm.DB
}

// NewGORMSettingsRepository creates a new instance of GORMSettingsRepository.
func NewGORMSettingsRepository(db *gorm.DB) *GORMSettingsRepository {
	return &GORMSettingsRepository{db: db}
}

// Get returns the stored settings.
func (r *GORMSettingsRepository) Get() (*models.Settings, error) {
	var settings models.Settings
	if err := r.db.First(&settings, settingsRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("settings: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

// Save replaces the stored settings.
func (r *GORMSettingsRepository) Save(settings *models.Settings) error {
	settings.ID = settingsRowID
	if err := r.db.Save(settings).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// MockSettingsRepository is an in-memory implementation of SettingsRepository.
type MockSettingsRepository struct {
	settings *models.Settings
	mu       sync.RWMutex
}

// NewMockSettingsRepository creates a new instance of MockSettingsRepository.
func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{}
}

// Get returns the stored settings.
func (r *MockSettingsRepository) Get() (*models.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return nil, fmt.Errorf("settings: %w", ErrNotFound)
	}
	s := *r.settings
	return &s, nil
}

// Save replaces the stored settings.
func (r *MockSettingsRepository) Save(settings *models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := *settings
	s.ID = settingsRowID
	r.settings = &s
	return nil
}
