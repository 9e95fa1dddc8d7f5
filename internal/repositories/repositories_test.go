package repositories_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestDB opens a private in-memory SQLite database.
func openTestDB(t *testing.T) *repositories.GORMCartRepository {
	t.Helper()
	return repositories.NewGORMCartRepository(mustOpen(t))
}

func mustOpen(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repositories.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	require.NoError(t, err)
	return db
}

func cartRepos(t *testing.T) map[string]repositories.CartRepository {
	return map[string]repositories.CartRepository{
		"gorm": openTestDB(t),
		"mock": repositories.NewMockCartRepository(),
	}
}

func TestCartRepository(t *testing.T) {
	for name, repo := range cartRepos(t) {
		t.Run(name, func(t *testing.T) {
			first := &models.CartItem{ProductID: "p-1", Title: "Saga #1", UnitPrice: decimal.RequireFromString("3.99"), Quantity: 1, StockQuantity: 5, AddedAt: time.Now().Add(-time.Minute)}
			second := &models.CartItem{ProductID: "p-2", Title: "Paper Girls #1", UnitPrice: decimal.RequireFromString("2.50"), Quantity: 2, StockQuantity: 3}
			require.NoError(t, repo.Save(first))
			require.NoError(t, repo.Save(second))
			assert.NotEmpty(t, first.ID)

			items, err := repo.GetAll()
			require.NoError(t, err)
			require.Len(t, items, 2)
			assert.Equal(t, "p-1", items[0].ProductID)
			assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("3.99")))

			first.Quantity = 3
			require.NoError(t, repo.Save(first))
			got, err := repo.GetByProductID("p-1")
			require.NoError(t, err)
			assert.Equal(t, 3, got.Quantity)
			assert.Equal(t, first.ID, got.ID)

			require.NoError(t, repo.Delete("p-1"))
			_, err = repo.GetByProductID("p-1")
			assert.True(t, errors.Is(err, repositories.ErrNotFound))
			assert.True(t, errors.Is(repo.Delete("p-1"), repositories.ErrNotFound))

			require.NoError(t, repo.Clear())
			items, err = repo.GetAll()
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestSessionRepository(t *testing.T) {
	repos := map[string]repositories.SessionRepository{
		"gorm": repositories.NewGORMSessionRepository(mustOpen(t)),
		"mock": repositories.NewMockSessionRepository(),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Get()
			assert.True(t, errors.Is(err, repositories.ErrNotFound))

			require.NoError(t, repo.Save(&models.Session{AccessToken: "a1", SessionToken: "s1", UserID: "u1"}))
			require.NoError(t, repo.Save(&models.Session{AccessToken: "a2", SessionToken: "s2", UserID: "u1"}))
			got, err := repo.Get()
			require.NoError(t, err)
			assert.Equal(t, "a2", got.AccessToken)

			require.NoError(t, repo.Clear())
			_, err = repo.Get()
			assert.True(t, errors.Is(err, repositories.ErrNotFound))
		})
	}
}

func TestProfileRepository(t *testing.T) {
	repos := map[string]repositories.ProfileRepository{
		"gorm": repositories.NewGORMProfileRepository(mustOpen(t)),
		"mock": repositories.NewMockProfileRepository(),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Save(&models.User{ID: "u1", FirstName: "Kara", Address: models.Address{City: "Metropolis"}}))
			require.NoError(t, repo.Save(&models.User{ID: "u2", FirstName: "Diana"}))
			got, err := repo.Get()
			require.NoError(t, err)
			assert.Equal(t, "u2", got.ID)

			require.NoError(t, repo.Clear())
			_, err = repo.Get()
			assert.True(t, errors.Is(err, repositories.ErrNotFound))
		})
	}
}

func TestReservationCacheRepository(t *testing.T) {
	repos := map[string]repositories.ReservationCacheRepository{
		"gorm": repositories.NewGORMReservationCacheRepository(mustOpen(t)),
		"mock": repositories.NewMockReservationCacheRepository(),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.ReplaceAll([]models.ReservedProduct{
				{ProductID: "p-1", ReservationID: "r-1", Status: models.ReservationPending},
				{ProductID: "p-2", ReservationID: "r-2", Status: models.ReservationForApproval},
			}))
			ids, err := repo.ProductIDs()
			require.NoError(t, err)
			assert.Equal(t, map[string]bool{"p-1": true, "p-2": true}, ids)

			require.NoError(t, repo.UpdateStatus("p-2", models.ReservationApproved))
			all, err := repo.GetAll()
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, models.ReservationApproved, all[1].Status)
			assert.True(t, errors.Is(repo.UpdateStatus("p-9", models.ReservationApproved), repositories.ErrNotFound))

			require.NoError(t, repo.ReplaceAll([]models.ReservedProduct{{ProductID: "p-3", Status: models.ReservationPending}}))
			n, err := repo.Count()
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			require.NoError(t, repo.ReplaceAll(nil))
			n, err = repo.Count()
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestReservationCacheRepository_DuplicateProduct(t *testing.T) {
	repos := map[string]repositories.ReservationCacheRepository{
		"gorm": repositories.NewGORMReservationCacheRepository(mustOpen(t)),
		"mock": repositories.NewMockReservationCacheRepository(),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.ReplaceAll([]models.ReservedProduct{
				{ProductID: "p-1", ReservationID: "r-1", Status: models.ReservationPending},
				{ProductID: "p-2", ReservationID: "r-2", Status: models.ReservationPending},
				{ProductID: "p-1", ReservationID: "r-3", Status: models.ReservationApproved},
			}))
			all, err := repo.GetAll()
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "p-1", all[0].ProductID)
			assert.Equal(t, "r-3", all[0].ReservationID)
			assert.Equal(t, models.ReservationApproved, all[0].Status)
		})
	}
}

func TestSettingsRepository(t *testing.T) {
	repos := map[string]repositories.SettingsRepository{
		"gorm": repositories.NewGORMSettingsRepository(mustOpen(t)),
		"mock": repositories.NewMockSettingsRepository(),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Get()
			assert.True(t, errors.Is(err, repositories.ErrNotFound))

			require.NoError(t, repo.Save(&models.Settings{Theme: models.ThemeDark, DeviceID: "d-1"}))
			got, err := repo.Get()
			require.NoError(t, err)
			assert.Equal(t, models.ThemeDark, got.Theme)
			assert.Equal(t, "d-1", got.DeviceID)
		})
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := repositories.Open("oracle", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
