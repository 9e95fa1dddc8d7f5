package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/apiclient"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/validation"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// AuthService keeps the local session in step with the store API. Session
// issuance itself belongs to the API; this service only stores and inspects
// what it was given.
type AuthService struct {
	api       AuthAPI
	sessions  repositories.SessionRepository
	profiles  repositories.ProfileRepository
	validate  *validator.Validate
	observers []SessionObserver
	now       func() time.Time
}

// SessionObserver keeps per-user local state in step with the signed-in
// user. SignedIn runs after the new session is stored, so API calls made
// from it carry the new tokens.
type SessionObserver interface {
	SignedIn(ctx context.Context) error
	SignedOut() error
}

// NewAuthService creates a new AuthService. observers are told about every
// sign-in and sign-out.
func NewAuthService(api AuthAPI, sessions repositories.SessionRepository, profiles repositories.ProfileRepository, validate *validator.Validate, observers ...SessionObserver) *AuthService {
	return &AuthService{
		api:       api,
		sessions:  sessions,
		profiles:  profiles,
		validate:  validate,
		observers: observers,
		now:       time.Now,
	}
}

// SetClock replaces the time source used for expiry checks.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// Login validates the form, signs in against the API and stores the session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	if err := validation.Check(s.validate, req); err != nil {
		return nil, err
	}
	resp, err := s.api.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return s.establish(ctx, resp)
}

// Register creates an account and stores the session the API returns.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error) {
	if err := validation.Check(s.validate, req); err != nil {
		return nil, err
	}
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return s.establish(ctx, resp)
}

func (s *AuthService) establish(ctx context.Context, resp *models.AuthResponse) (*models.Session, error) {
	if resp.AccessToken == "" {
		return nil, errors.New("store api returned no access token")
	}
	session := &models.Session{
		AccessToken:  resp.AccessToken,
		SessionToken: resp.SessionToken,
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
		ExpiresAt:    tokenExpiry(resp),
		CreatedAt:    s.now(),
	}
	if err := s.sessions.Save(session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	if resp.User.ID != "" {
		if err := s.profiles.Save(&resp.User); err != nil {
			log.WithError(err).Warn("failed to cache profile after login")
		}
	}
	// A failed observer leaves its state empty. The sign-in stands.
	for _, o := range s.observers {
		if err := o.SignedIn(ctx); err != nil {
			log.WithError(err).Warn("failed to load user state after sign-in")
		}
	}
	log.WithField("user_id", session.UserID).Info("signed in")
	return session, nil
}

// tokenExpiry prefers the expiry the API reported and falls back to the
// access token's exp claim. The signature is not checked here; the API
// does that on every request.
func tokenExpiry(resp *models.AuthResponse) time.Time {
	if resp.ExpiresAt != nil {
		return *resp.ExpiresAt
	}
	token, _, err := new(jwt.Parser).ParseUnverified(resp.AccessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return time.Time{}
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}
	}
	return time.Unix(int64(exp), 0)
}

// CurrentSession returns the stored session, or ErrNotLoggedIn when there is
// none or it has expired. An expired session is cleared.
func (s *AuthService) CurrentSession(ctx context.Context) (*models.Session, error) {
	session, err := s.sessions.Get()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.ExpiredAt(s.now()) {
		log.WithField("user_id", session.UserID).Info("session expired")
		if err := s.clearLocal(); err != nil {
			return nil, err
		}
		return nil, ErrNotLoggedIn
	}
	return session, nil
}

// Logout revokes the session on the API when possible and always forgets it
// locally. The cart is kept.
func (s *AuthService) Logout(ctx context.Context) error {
	if _, err := s.CurrentSession(ctx); err == nil {
		if err := s.api.Logout(ctx); err != nil {
			log.WithError(err).Warn("remote logout failed, clearing local session anyway")
		}
	}
	return s.clearLocal()
}

// Expire forgets the local session after the API rejected its tokens.
func (s *AuthService) Expire(ctx context.Context) error {
	log.Info("store api rejected session tokens, signing out")
	return s.clearLocal()
}

func (s *AuthService) clearLocal() error {
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := s.profiles.Clear(); err != nil {
		return fmt.Errorf("failed to clear profile: %w", err)
	}
	var firstErr error
	for _, o := range s.observers {
		if err := o.SignedOut(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to clear user state: %w", err)
		}
	}
	return firstErr
}

// SessionTokenSource feeds the stored session tokens to the API client.
type SessionTokenSource struct {
	sessions repositories.SessionRepository
}

// NewSessionTokenSource creates a token source over the session store.
func NewSessionTokenSource(sessions repositories.SessionRepository) *SessionTokenSource {
	return &SessionTokenSource{sessions: sessions}
}

// Tokens implements apiclient.TokenSource. No session means no tokens.
func (t *SessionTokenSource) Tokens(ctx context.Context) (apiclient.Tokens, error) {
	session, err := t.sessions.Get()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apiclient.Tokens{}, nil
		}
		return apiclient.Tokens{}, err
	}
	return apiclient.Tokens{Access: session.AccessToken, Session: session.SessionToken}, nil
}
