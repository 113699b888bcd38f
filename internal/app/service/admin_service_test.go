package service

import (
	"testing"

	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/internal/app/repository"
	"github.com/ratewise/ratewise-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAdminTest(t *testing.T) (*gorm.DB, AdminService, RatingService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	ratingRepo := repository.NewRatingRepository(testDB)

	admin := NewAdminService(userRepo, storeRepo, ratingRepo)
	ratings := NewRatingService(ratingRepo, storeRepo)
	return testDB, admin, ratings
}

func TestAdminService_GetDashboardStats(t *testing.T) {
	testDB, admin, ratings := setupAdminTest(t)
	defer db.CleanupTestDB(testDB)

	owner := seedUser(t, testDB, "owner@example.com", model.RoleStoreOwner)
	rater1 := seedUser(t, testDB, "rater1@example.com", model.RoleUser)
	rater2 := seedUser(t, testDB, "rater2@example.com", model.RoleUser)
	seedUser(t, testDB, "admin@example.com", model.RoleAdmin)

	coffee := seedActiveStore(t, testDB, owner.ID, "Beans & Dreams")
	bakery := &model.Store{
		OwnerID:  owner.ID,
		Name:     "Crust & Crumb",
		Address:  "2 Oven Ln",
		City:     "Springfield",
		Category: "bakery",
		Status:   model.StatusActive,
	}
	require.NoError(t, testDB.Create(bakery).Error)

	_, err := ratings.CreateRating(rater1.ID, CreateRatingInput{StoreID: coffee.ID, Rating: 5})
	require.NoError(t, err)
	_, err = ratings.CreateRating(rater2.ID, CreateRatingInput{StoreID: coffee.ID, Rating: 3})
	require.NoError(t, err)
	_, err = ratings.CreateRating(rater1.ID, CreateRatingInput{StoreID: bakery.ID, Rating: 2})
	require.NoError(t, err)

	stats, err := admin.GetDashboardStats()
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.Overview.TotalUsers)
	assert.Equal(t, int64(2), stats.Overview.TotalStores)
	assert.Equal(t, int64(3), stats.Overview.TotalRatings)
	assert.InDelta(t, 10.0/3.0, stats.Overview.AverageRating, 0.001)

	byRole := make(map[model.UserRole]int64)
	for _, rc := range stats.UserRoles {
		byRole[rc.Role] = rc.Count
	}
	assert.Equal(t, int64(2), byRole[model.RoleUser])
	assert.Equal(t, int64(1), byRole[model.RoleStoreOwner])
	assert.Equal(t, int64(1), byRole[model.RoleAdmin])

	require.NotEmpty(t, stats.TopStores)
	assert.Equal(t, "Beans & Dreams", stats.TopStores[0].Name)

	require.Len(t, stats.RecentActivity, 1)
	assert.Equal(t, int64(3), stats.RecentActivity[0].Count)

	assert.Len(t, stats.CategoryStats, 2)
}

func TestAdminService_SetUserStatus(t *testing.T) {
	testDB, admin, _ := setupAdminTest(t)
	defer db.CleanupTestDB(testDB)

	user := seedUser(t, testDB, "user@example.com", model.RoleUser)

	updated, err := admin.SetUserStatus(user.ID, model.StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, updated.Status)

	// Reactivation is allowed
	updated, err = admin.SetUserStatus(user.ID, model.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, updated.Status)

	_, err = admin.SetUserStatus(99999, model.StatusInactive)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminService_SetStoreStatus(t *testing.T) {
	testDB, admin, _ := setupAdminTest(t)
	defer db.CleanupTestDB(testDB)

	owner := seedUser(t, testDB, "owner@example.com", model.RoleStoreOwner)
	store := seedActiveStore(t, testDB, owner.ID, "Beans & Dreams")

	updated, err := admin.SetStoreStatus(store.ID, model.StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, updated.Status)

	updated, err = admin.SetStoreStatus(store.ID, model.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, updated.Status)

	_, err = admin.SetStoreStatus(99999, model.StatusActive)
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestAdminService_ListStoresSeesAnyStatus(t *testing.T) {
	testDB, admin, _ := setupAdminTest(t)
	defer db.CleanupTestDB(testDB)

	owner := seedUser(t, testDB, "owner@example.com", model.RoleStoreOwner)
	seedActiveStore(t, testDB, owner.ID, "Open")
	hidden := &model.Store{
		OwnerID:  owner.ID,
		Name:     "Closed",
		Address:  "2 Gone St",
		City:     "Springfield",
		Category: "coffee",
		Status:   model.StatusInactive,
	}
	require.NoError(t, testDB.Create(hidden).Error)

	stores, pagination, err := admin.ListStores(repository.StoreFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, stores, 2)
	assert.Equal(t, int64(2), pagination.Total)

	stores, _, err = admin.ListStores(repository.StoreFilter{Status: model.StatusInactive}, 1, 10)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "Closed", stores[0].Name)
}
