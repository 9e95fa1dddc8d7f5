package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/apiclient"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// ProfileService reads and edits the signed-in user's profile.
type ProfileService struct {
	api      ProfileAPI
	cache    repositories.ProfileRepository
	validate *validator.Validate
}

// NewProfileService creates a new ProfileService.
func NewProfileService(api ProfileAPI, cache repositories.ProfileRepository, validate *validator.Validate) *ProfileService {
	return &ProfileService{api: api, cache: cache, validate: validate}
}

// Get fetches the profile and refreshes the local copy. When the API cannot
// be reached the cached copy is returned instead.
func (s *ProfileService) Get(ctx context.Context) (*models.User, error) {
	user, err := s.api.Me(ctx)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return nil, err
		}
		cached, cacheErr := s.cache.Get()
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		log.WithError(err).Warn("serving cached profile")
		return cached, nil
	}
	if err := s.cache.Save(user); err != nil {
		log.WithError(err).Warn("failed to cache profile")
	}
	return user, nil
}

// Update validates and saves profile changes.
func (s *ProfileService) Update(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	if err := validation.Check(s.validate, upd); err != nil {
		return nil, err
	}
	user, err := s.api.UpdateMe(ctx, upd)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if err := s.cache.Save(user); err != nil {
		log.WithError(err).Warn("failed to cache profile")
	}
	return user, nil
}
