package db

import (
	"errors"

	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/pkg/logger"
	"github.com/ratewise/ratewise-backend/pkg/util"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Store{},
		&model.Rating{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// SeedAdmin ensures a bootstrap admin account exists. Credentials come
// from the caller so they never live in source.
func SeedAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var existing model.User
	err := DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil // already seeded
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "System",
		LastName:     "Admin",
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
	}
	if err := DB.Create(admin).Error; err != nil {
		return err
	}

	logger.Info("Seeded bootstrap admin account", map[string]interface{}{
		"email": email,
	})
	return nil
}
