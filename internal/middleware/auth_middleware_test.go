package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/internal/app/repository"
	"github.com/ratewise/ratewise-backend/internal/db"
	"github.com/ratewise/ratewise-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const mwTestSecret = "middleware-test-secret"

type mwTestEnv struct {
	testDB *gorm.DB
	mw     *AuthMiddleware
}

func setupMiddlewareTest(t *testing.T) *mwTestEnv {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	return &mwTestEnv{
		testDB: testDB,
		mw:     NewAuthMiddleware(mwTestSecret, userRepo, storeRepo),
	}
}

func (env *mwTestEnv) createUser(t *testing.T, email string, role model.UserRole, status model.EntityStatus) (*model.User, string) {
	user := &model.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		Status:       status,
	}
	require.NoError(t, env.testDB.Create(user).Error)

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role), mwTestSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return user, tokens.AccessToken
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func doRequest(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	env := setupMiddlewareTest(t)

	router := gin.New()
	router.GET("/protected", env.mw.Authenticate(), okHandler)

	_, validToken := env.createUser(t, "active@example.com", model.RoleUser, model.StatusActive)
	_, inactiveToken := env.createUser(t, "frozen@example.com", model.RoleUser, model.StatusInactive)

	expiredTokens, err := util.GenerateTokenPair(1, "active@example.com", "user", mwTestSecret, time.Nanosecond, time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{
			name:       "Valid token",
			authHeader: "Bearer " + validToken,
			wantCode:   http.StatusOK,
		},
		{
			name:       "Missing header",
			authHeader: "",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "Malformed header",
			authHeader: "Token abc",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "Garbage token",
			authHeader: "Bearer not.a.token",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "Expired token",
			authHeader: "Bearer " + expiredTokens.AccessToken,
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "Deactivated user",
			authHeader: "Bearer " + inactiveToken,
			wantCode:   http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "GET", "/protected", tt.authHeader)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	env := setupMiddlewareTest(t)

	router := gin.New()
	router.GET("/protected", env.mw.Authenticate(), okHandler)

	user, token := env.createUser(t, "gone@example.com", model.RoleUser, model.StatusActive)
	require.NoError(t, env.testDB.Delete(&model.User{}, user.ID).Error)

	w := doRequest(router, "GET", "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	env := setupMiddlewareTest(t)

	router := gin.New()
	router.GET("/admin-only",
		env.mw.Authenticate(),
		env.mw.RequireRole(model.RoleAdmin),
		okHandler,
	)
	router.GET("/owners",
		env.mw.Authenticate(),
		env.mw.RequireRole(model.RoleStoreOwner, model.RoleAdmin),
		okHandler,
	)

	_, userToken := env.createUser(t, "user@example.com", model.RoleUser, model.StatusActive)
	_, ownerToken := env.createUser(t, "owner@example.com", model.RoleStoreOwner, model.StatusActive)
	_, adminToken := env.createUser(t, "admin@example.com", model.RoleAdmin, model.StatusActive)

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
	}{
		{"User blocked from admin route", "/admin-only", userToken, http.StatusForbidden},
		{"Owner blocked from admin route", "/admin-only", ownerToken, http.StatusForbidden},
		{"Admin passes admin route", "/admin-only", adminToken, http.StatusOK},
		{"User blocked from owner route", "/owners", userToken, http.StatusForbidden},
		{"Owner passes owner route", "/owners", ownerToken, http.StatusOK},
		{"Admin passes owner route", "/owners", adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "GET", tt.path, "Bearer "+tt.token)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestRequireStoreOwnership(t *testing.T) {
	env := setupMiddlewareTest(t)

	router := gin.New()
	router.PUT("/stores/:id",
		env.mw.Authenticate(),
		env.mw.RequireStoreOwnership(),
		okHandler,
	)

	owner, ownerToken := env.createUser(t, "owner@example.com", model.RoleStoreOwner, model.StatusActive)
	_, rivalToken := env.createUser(t, "rival@example.com", model.RoleStoreOwner, model.StatusActive)
	_, userToken := env.createUser(t, "user@example.com", model.RoleUser, model.StatusActive)
	_, adminToken := env.createUser(t, "admin@example.com", model.RoleAdmin, model.StatusActive)

	store := &model.Store{
		OwnerID:  owner.ID,
		Name:     "Beans & Dreams",
		Address:  "1 Test Way",
		City:     "Springfield",
		Category: "coffee",
		Status:   model.StatusActive,
	}
	require.NoError(t, env.testDB.Create(store).Error)
	path := fmt.Sprintf("/stores/%d", store.ID)

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
	}{
		{"Owner passes for own store", path, ownerToken, http.StatusOK},
		{"Rival owner forbidden", path, rivalToken, http.StatusForbidden},
		{"Plain user forbidden", path, userToken, http.StatusForbidden},
		{"Admin passes for any store", path, adminToken, http.StatusOK},
		{"Missing store is 404 before ownership", "/stores/99999", rivalToken, http.StatusNotFound},
		{"Bad ID is 400", "/stores/abc", ownerToken, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "PUT", tt.path, "Bearer "+tt.token)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
