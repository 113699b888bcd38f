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

func setupRatingServiceTest(t *testing.T) (*gorm.DB, RatingService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	ratingRepo := repository.NewRatingRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	return testDB, NewRatingService(ratingRepo, storeRepo)
}

func seedUser(t *testing.T, testDB *gorm.DB, email string, role model.UserRole) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		Status:       model.StatusActive,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func seedActiveStore(t *testing.T, testDB *gorm.DB, ownerID uint, name string) *model.Store {
	store := &model.Store{
		OwnerID:  ownerID,
		Name:     name,
		Address:  "1 Test Way",
		City:     "Springfield",
		Category: "coffee",
		Status:   model.StatusActive,
	}
	require.NoError(t, testDB.Create(store).Error)
	return store
}

func storeAggregates(t *testing.T, testDB *gorm.DB, id uint) (float64, int) {
	var store model.Store
	require.NoError(t, testDB.First(&store, id).Error)
	return store.AverageRating, store.TotalRatings
}

func TestRatingService_CreateRating(t *testing.T) {
	testDB, svc := setupRatingServiceTest(t)
	defer db.CleanupTestDB(testDB)

	owner := seedUser(t, testDB, "owner@example.com", model.RoleStoreOwner)
	store := seedActiveStore(t, testDB, owner.ID, "Beans & Dreams")
	rater := seedUser(t, testDB, "rater@example.com", model.RoleUser)

	t.Run("Valid rating", func(t *testing.T) {
		rating, err := svc.CreateRating(rater.ID, CreateRatingInput{
			StoreID: store.ID,
			Rating:  4,
			Review:  "Great espresso",
		})
		require.NoError(t, err)
		assert.Equal(t, 4, rating.Rating)
		assert.Equal(t, store.ID, rating.Store.ID)

		avg, total := storeAggregates(t, testDB, store.ID)
		assert.Equal(t, 4.0, avg)
		assert.Equal(t, 1, total)
	})

	t.Run("Duplicate rating rejected", func(t *testing.T) {
		_, err := svc.CreateRating(rater.ID, CreateRatingInput{
			StoreID: store.ID,
			Rating:  5,
		})
		assert.ErrorIs(t, err, ErrDuplicateRating)

		avg, total := storeAggregates(t, testDB, store.ID)
		assert.Equal(t, 4.0, avg)
		assert.Equal(t, 1, total)
	})

	t.Run("Out of range rating", func(t *testing.T) {
		other := seedUser(t, testDB, "other@example.com", model.RoleUser)
		for _, v := range []int{0, 6, -1} {
			_, err := svc.CreateRating(other.ID, CreateRatingInput{
				StoreID: store.ID,
				Rating:  v,
			})
			assert.ErrorIs(t, err, ErrInvalidRating)
		}
	})

	t.Run("Unknown store", func(t *testing.T) {
		_, err := svc.CreateRating(rater.ID, CreateRatingInput{
			StoreID: 99999,
			Rating:  3,
		})
		assert.ErrorIs(t, err, ErrStoreNotFound)
	})

	t.Run("Inactive store looks missing", func(t *testing.T) {
		hidden := &model.Store{
			OwnerID:  owner.ID,
			Name:     "Closed Shop",
			Address:  "2 Gone St",
			City:     "Springfield",
			Category: "coffee",
			Status:   model.StatusInactive,
		}
		require.NoError(t, testDB.Create(hidden).Error)

		_, err := svc.CreateRating(rater.ID, CreateRatingInput{
			StoreID: hidden.ID,
			Rating:  3,
		})
		assert.ErrorIs(t, err, ErrStoreNotFound)
	})
}

func TestRatingService_AverageTracksUpdates(t *testing.T) {
	testDB, svc := setupRatingServiceTest(t)
	defer db.CleanupTestDB(testDB)

	owner := seedUser(t, testDB, "owner@example.com", model.RoleStoreOwner)
	store := seedActiveStore(t, testDB, owner.ID, "Beans & Dreams")
	rater1 := seedUser(t, testDB, "rater1@example.com", model.RoleUser)
	rater2 := seedUser(t, testDB, "rater2@example.com", model.RoleUser)

	first, err := svc.CreateRating(rater1.ID, CreateRatingInput{StoreID: store.ID, Rating: 4})
	require.NoError(t, err)
	_, err = svc.CreateRating(rater2.ID, CreateRatingInput{StoreID: store.ID, Rating: 5})
	require.NoError(t, err)

	avg, total := storeAggregates(t, testDB, store.ID)
	assert.Equal(t, 4.5, avg)
	assert.Equal(t, 2, total)

	newValue := 2
	_, err = svc.UpdateRating(first.ID, rater1.ID, UpdateRatingInput{Rating: &newValue})
	require.NoError(t, err)

	avg, total = storeAggregates(t, testDB, store.ID)
	assert.Equal(t, 3.5, avg)
	assert.Equal(t, 2, total)
}

func TestRatingService_UpdateRating_Authorization(t *testing.T) {
	testDB, svc := setupRatingServiceTest(t)
	defer db.CleanupTestDB(testDB)

	owner := seedUser(t, testDB, "owner@example.com", model.RoleStoreOwner)
	store := seedActiveStore(t, testDB, owner.ID, "Beans & Dreams")
	author := seedUser(t, testDB, "author@example.com", model.RoleUser)
	stranger := seedUser(t, testDB, "stranger@example.com", model.RoleUser)

	rating, err := svc.CreateRating(author.ID, CreateRatingInput{StoreID: store.ID, Rating: 3})
	require.NoError(t, err)

	newValue := 5

	t.Run("Missing rating reported before authorship", func(t *testing.T) {
		_, err := svc.UpdateRating(99999, stranger.ID, UpdateRatingInput{Rating: &newValue})
		assert.ErrorIs(t, err, ErrRatingNotFound)
	})

	t.Run("Non-author rejected", func(t *testing.T) {
		_, err := svc.UpdateRating(rating.ID, stranger.ID, UpdateRatingInput{Rating: &newValue})
		assert.ErrorIs(t, err, ErrNotRatingAuthor)
	})

	t.Run("Author can update", func(t *testing.T) {
		updated, err := svc.UpdateRating(rating.ID, author.ID, UpdateRatingInput{Rating: &newValue})
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Rating)
	})
}

func TestRatingService_DeleteRating(t *testing.T) {
	testDB, svc := setupRatingServiceTest(t)
	defer db.CleanupTestDB(testDB)

	owner := seedUser(t, testDB, "owner@example.com", model.RoleStoreOwner)
	store := seedActiveStore(t, testDB, owner.ID, "Beans & Dreams")
	author := seedUser(t, testDB, "author@example.com", model.RoleUser)
	stranger := seedUser(t, testDB, "stranger@example.com", model.RoleUser)

	t.Run("Non-author cannot delete", func(t *testing.T) {
		rating, err := svc.CreateRating(author.ID, CreateRatingInput{StoreID: store.ID, Rating: 5})
		require.NoError(t, err)

		err = svc.DeleteRating(rating.ID, stranger.ID, false)
		assert.ErrorIs(t, err, ErrNotRatingAuthor)

		err = svc.DeleteRating(rating.ID, author.ID, false)
		require.NoError(t, err)
	})

	t.Run("Admin can delete any rating", func(t *testing.T) {
		rating, err := svc.CreateRating(author.ID, CreateRatingInput{StoreID: store.ID, Rating: 1})
		require.NoError(t, err)

		admin := seedUser(t, testDB, "admin@example.com", model.RoleAdmin)
		err = svc.DeleteRating(rating.ID, admin.ID, true)
		require.NoError(t, err)

		avg, total := storeAggregates(t, testDB, store.ID)
		assert.Equal(t, 0.0, avg)
		assert.Equal(t, 0, total)
	})

	t.Run("Missing rating", func(t *testing.T) {
		err := svc.DeleteRating(99999, author.ID, false)
		assert.ErrorIs(t, err, ErrRatingNotFound)
	})
}

func TestRatingService_ReconcileAllAggregates(t *testing.T) {
	testDB, svc := setupRatingServiceTest(t)
	defer db.CleanupTestDB(testDB)

	owner := seedUser(t, testDB, "owner@example.com", model.RoleStoreOwner)
	store := seedActiveStore(t, testDB, owner.ID, "Beans & Dreams")
	rater := seedUser(t, testDB, "rater@example.com", model.RoleUser)

	_, err := svc.CreateRating(rater.ID, CreateRatingInput{StoreID: store.ID, Rating: 4})
	require.NoError(t, err)

	// Drift the denormalized values, then reconcile
	require.NoError(t, testDB.Model(&model.Store{}).Where("id = ?", store.ID).
		Updates(map[string]interface{}{"average_rating": 1.0, "total_ratings": 42}).Error)

	require.NoError(t, svc.ReconcileAllAggregates())

	avg, total := storeAggregates(t, testDB, store.ID)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 1, total)
}
