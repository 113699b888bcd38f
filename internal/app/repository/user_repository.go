package repository

import (
	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserFilter narrows the admin user listing
type UserFilter struct {
	Role   model.UserRole
	Search string // matches first name, last name or email
}

// RoleCount is one bucket of the role histogram
type RoleCount struct {
	Role  model.UserRole `json:"role"`
	Count int64          `json:"count"`
}

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindAll(filter UserFilter, offset, limit int) ([]model.User, int64, error)
	Update(user *model.User) error
	CountByStatus(status model.EntityStatus) (int64, error)
	RoleHistogram() ([]RoleCount, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll(filter UserFilter, offset, limit int) ([]model.User, int64, error) {
	query := r.db.Model(&model.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		logger.Error("Failed to list users", err, map[string]interface{}{
			"role":   filter.Role,
			"search": filter.Search,
		})
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

func (r *userRepository) CountByStatus(status model.EntityStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *userRepository) RoleHistogram() ([]RoleCount, error) {
	var counts []RoleCount
	err := r.db.Model(&model.User{}).
		Select("role, COUNT(*) as count").
		Where("status = ?", model.StatusActive).
		Group("role").
		Scan(&counts).Error
	if err != nil {
		logger.Error("Failed to compute role histogram", err)
		return nil, err
	}
	return counts, nil
}
