package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// StateService owns the device settings and the badge counts of the
// navigation shell.
type StateService struct {
	settings     repositories.SettingsRepository
	cart         repositories.CartRepository
	reservations repositories.ReservationCacheRepository
	validate     *validator.Validate
	mu           sync.Mutex
}

// NewStateService creates a new StateService.
func NewStateService(settings repositories.SettingsRepository, cart repositories.CartRepository, reservations repositories.ReservationCacheRepository, validate *validator.Validate) *StateService {
	return &StateService{
		settings:     settings,
		cart:         cart,
		reservations: reservations,
		validate:     validate,
	}
}

// Settings returns the device settings, creating them on first use.
func (s *StateService) Settings() (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *StateService) load() (*models.Settings, error) {
	settings, err := s.settings.Get()
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		settings = &models.Settings{}
	case err != nil:
		return nil, err
	}
	if settings.DeviceID != "" && settings.Theme != "" {
		return settings, nil
	}
	if settings.DeviceID == "" {
		settings.DeviceID = uuid.New().String()
	}
	if settings.Theme == "" {
		settings.Theme = models.ThemeSystem
	}
	if err := s.save(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *StateService) save(settings *models.Settings) error {
	settings.UpdatedAt = time.Now()
	if err := s.settings.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// DeviceID returns the installation id.
func (s *StateService) DeviceID() (string, error) {
	settings, err := s.Settings()
	if err != nil {
		return "", err
	}
	return settings.DeviceID, nil
}

// SetTheme changes the colour scheme.
func (s *StateService) SetTheme(upd models.ThemeUpdate) (*models.Settings, error) {
	if err := validation.Check(s.validate, upd); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return nil, err
	}
	settings.Theme = upd.Theme
	if err := s.save(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// RecordWantListCount stores the want list size last seen on the API.
func (s *StateService) RecordWantListCount(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return err
	}
	if settings.WantListCount == n {
		return nil
	}
	settings.WantListCount = n
	return s.save(settings)
}

// Counts returns the badge numbers.
func (s *StateService) Counts() (*models.Counts, error) {
	settings, err := s.Settings()
	if err != nil {
		return nil, err
	}
	items, err := s.cart.GetAll()
	if err != nil {
		return nil, err
	}
	reserved, err := s.reservations.Count()
	if err != nil {
		return nil, err
	}
	counts := &models.Counts{WantList: settings.WantListCount, Reservations: reserved}
	for _, item := range items {
		counts.Cart += item.Quantity
	}
	return counts, nil
}
