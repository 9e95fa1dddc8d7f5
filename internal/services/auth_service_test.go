package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newAuth() (*services.AuthService, *MockAuthAPI, *repositories.MockSessionRepository, *repositories.MockProfileRepository) {
	api := new(MockAuthAPI)
	sessions := repositories.NewMockSessionRepository()
	profiles := repositories.NewMockProfileRepository()
	return services.NewAuthService(api, sessions, profiles, validation.New()), api, sessions, profiles
}

func TestAuthService_Login(t *testing.T) {
	auth, api, _, profiles := newAuth()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	req := models.LoginRequest{Email: "reader@example.com", Password: "secret123"}

	api.On("Login", req).Return(&models.AuthResponse{
		AccessToken:  signedToken(t, exp),
		SessionToken: "sess-1",
		User:         models.User{ID: "u1", Email: "reader@example.com", FirstName: "Rin"},
	}, nil).Once()

	session, err := auth.Login(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, "sess-1", session.SessionToken)
	assert.True(t, session.ExpiresAt.Equal(exp), "expiry read from the token's exp claim")

	cached, err := profiles.Get()
	require.NoError(t, err)
	assert.Equal(t, "Rin", cached.FirstName)

	current, err := auth.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.AccessToken, current.AccessToken)
	api.AssertExpectations(t)
}

func TestAuthService_LoginValidation(t *testing.T) {
	auth, api, _, _ := newAuth()

	_, err := auth.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: ""})
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
	api.AssertNotCalled(t, "Login")
}

func TestAuthService_RegisterRejectsWeakPassword(t *testing.T) {
	auth, api, _, _ := newAuth()

	_, err := auth.Register(context.Background(), models.RegisterRequest{
		FirstName: "Rin",
		Email:     "reader@example.com",
		Password:  "password",
	})
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "password")
	api.AssertNotCalled(t, "Register")
}

func TestAuthService_ExpiredSessionIsCleared(t *testing.T) {
	auth, api, sessions, _ := newAuth()
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	auth.SetClock(func() time.Time { return issued })

	req := models.LoginRequest{Email: "reader@example.com", Password: "secret123"}
	api.On("Login", req).Return(&models.AuthResponse{
		AccessToken: signedToken(t, issued.Add(30*time.Minute)),
		User:        models.User{ID: "u1"},
	}, nil).Once()
	_, err := auth.Login(context.Background(), req)
	require.NoError(t, err)

	auth.SetClock(func() time.Time { return issued.Add(31 * time.Minute) })
	_, err = auth.CurrentSession(context.Background())
	assert.ErrorIs(t, err, services.ErrNotLoggedIn)

	_, err = sessions.Get()
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestAuthService_LogoutClearsLocalSessionWhenRemoteFails(t *testing.T) {
	auth, api, sessions, profiles := newAuth()
	require.NoError(t, sessions.Save(&models.Session{AccessToken: "tok", UserID: "u1"}))
	require.NoError(t, profiles.Save(&models.User{ID: "u1"}))

	api.On("Logout").Return(errors.New("connection refused")).Once()

	require.NoError(t, auth.Logout(context.Background()))
	_, err := auth.CurrentSession(context.Background())
	assert.ErrorIs(t, err, services.ErrNotLoggedIn)
	_, err = profiles.Get()
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	api.AssertExpectations(t)
}

func TestAuthService_ObserversFollowSignInAndOut(t *testing.T) {
	api := new(MockAuthAPI)
	observer := new(MockSessionObserver)
	auth := services.NewAuthService(api, repositories.NewMockSessionRepository(), repositories.NewMockProfileRepository(), validation.New(), observer)

	req := models.LoginRequest{Email: "reader@example.com", Password: "secret123"}
	api.On("Login", req).Return(&models.AuthResponse{
		AccessToken: signedToken(t, time.Now().Add(time.Hour)),
		User:        models.User{ID: "u1"},
	}, nil).Once()
	api.On("Logout").Return(nil).Once()
	observer.On("SignedIn").Return(errors.New("store unreachable")).Once()
	observer.On("SignedOut").Return(nil).Twice()

	// A failed load of user state does not fail the sign-in
	_, err := auth.Login(context.Background(), req)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(context.Background()))
	require.NoError(t, auth.Expire(context.Background()))

	observer.AssertExpectations(t)
	api.AssertExpectations(t)
}

func TestAuthService_SignOutReportsObserverFailure(t *testing.T) {
	observer := new(MockSessionObserver)
	sessions := repositories.NewMockSessionRepository()
	auth := services.NewAuthService(new(MockAuthAPI), sessions, repositories.NewMockProfileRepository(), validation.New(), observer)
	require.NoError(t, sessions.Save(&models.Session{AccessToken: "tok", UserID: "u1"}))
	observer.On("SignedOut").Return(errors.New("disk full")).Once()

	err := auth.Expire(context.Background())
	assert.Error(t, err)
	_, err = sessions.Get()
	assert.ErrorIs(t, err, repositories.ErrNotFound, "session cleared regardless")
}

func TestSessionTokenSource(t *testing.T) {
	sessions := repositories.NewMockSessionRepository()
	source := services.NewSessionTokenSource(sessions)

	tokens, err := source.Tokens(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tokens.Access)

	require.NoError(t, sessions.Save(&models.Session{AccessToken: "a", SessionToken: "s"}))
	tokens, err = source.Tokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", tokens.Access)
	assert.Equal(t, "s", tokens.Session)
}
