package service

import (
	"context"
	"testing"
	"time"

	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/internal/app/repository"
	"github.com/ratewise/ratewise-backend/internal/db"
	"github.com/ratewise/ratewise-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const authTestSecret = "auth-service-test-secret"

func setupAuthTest(t *testing.T) (*gorm.DB, AuthService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	svc := NewAuthService(userRepo, authTestSecret, 15*time.Minute, 7*24*time.Hour)
	return testDB, svc
}

func TestAuthService_Register(t *testing.T) {
	testDB, svc := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	tests := []struct {
		name     string
		email    string
		role     model.UserRole
		wantRole model.UserRole
		wantErr  error
	}{
		{
			name:     "Default role when omitted",
			email:    "plain@example.com",
			role:     "",
			wantRole: model.RoleUser,
		},
		{
			name:     "Store owner self-registration",
			email:    "owner@example.com",
			role:     model.RoleStoreOwner,
			wantRole: model.RoleStoreOwner,
		},
		{
			name:    "Admin role rejected",
			email:   "sneaky@example.com",
			role:    model.RoleAdmin,
			wantErr: ErrInvalidRole,
		},
		{
			name:    "Unknown role rejected",
			email:   "weird@example.com",
			role:    model.UserRole("superuser"),
			wantErr: ErrInvalidRole,
		},
		{
			name:    "Duplicate email rejected",
			email:   "plain@example.com",
			role:    "",
			wantErr: ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := svc.Register(tt.email, "password123", "Test", "User", "", tt.role)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			require.NotNil(t, tokens)
			assert.Equal(t, tt.wantRole, user.Role)
			assert.Equal(t, model.StatusActive, user.Status)
			assert.NotEmpty(t, tokens.AccessToken)
			assert.NotEqual(t, "password123", user.PasswordHash)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	testDB, svc := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	registered, _, err := svc.Register("login@example.com", "password123", "Test", "User", "", model.RoleUser)
	require.NoError(t, err)

	t.Run("Valid credentials", func(t *testing.T) {
		user, tokens, err := svc.Login("login@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)

		claims, err := util.ValidateToken(tokens.AccessToken, authTestSecret)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.UserID)
		assert.Equal(t, "user", claims.Role)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, _, err := svc.Login("login@example.com", "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, _, err := svc.Login("nobody@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Deactivated account", func(t *testing.T) {
		require.NoError(t, testDB.Model(&model.User{}).
			Where("id = ?", registered.ID).
			Update("status", model.StatusInactive).Error)

		_, _, err := svc.Login("login@example.com", "password123")
		assert.ErrorIs(t, err, ErrAccountInactive)
	})
}

func TestAuthService_Logout(t *testing.T) {
	testDB, svc := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	_, tokens, err := svc.Register("logout@example.com", "password123", "Test", "User", "", model.RoleUser)
	require.NoError(t, err)

	// Without Redis configured, logout is a best-effort no-op
	err = svc.Logout(context.Background(), tokens.AccessToken)
	assert.NoError(t, err)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	testDB, svc := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	registered, _, err := svc.Register("profile@example.com", "password123", "Old", "Name", "", model.RoleUser)
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(registered.ID, "New", "Name", "555-0100")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FirstName)
	assert.Equal(t, "555-0100", updated.Phone)

	_, err = svc.UpdateProfile(99999, "Ghost", "User", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
