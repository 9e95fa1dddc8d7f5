package repositories

import "storefront/internal/models"

// SessionRepository stores the single signed-in session.
type SessionRepository interface {
	Get() (*models.Session, error)
	Save(session *models.Session) error
	Clear() error
}

// ProfileRepository caches the last profile fetched from the API.
type ProfileRepository interface {
	Get() (*models.User, error)
	Save(user *models.User) error
	Clear() error
}
