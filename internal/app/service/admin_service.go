package service

import (
	"errors"
	"time"

	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/internal/app/repository"
	"github.com/ratewise/ratewise-backend/pkg/logger"
	"gorm.io/gorm"
)

// DashboardStats is the admin reporting view. Every value is computed
// fresh from current table state at request time.
type DashboardStats struct {
	Overview       DashboardOverview         `json:"overview"`
	UserRoles      []repository.RoleCount    `json:"user_roles"`
	TopStores      []model.Store             `json:"top_stores"`
	RecentActivity []repository.DailyCount   `json:"recent_activity"`
	CategoryStats  []repository.CategoryStat `json:"category_stats"`
}

type DashboardOverview struct {
	TotalUsers    int64   `json:"total_users"`
	TotalStores   int64   `json:"total_stores"`
	TotalRatings  int64   `json:"total_ratings"`
	AverageRating float64 `json:"average_rating"`
}

type AdminService interface {
	GetDashboardStats() (*DashboardStats, error)
	ListUsers(filter repository.UserFilter, page, limit int) ([]model.User, Pagination, error)
	SetUserStatus(userID uint, status model.EntityStatus) (*model.User, error)
	ListStores(filter repository.StoreFilter, page, limit int) ([]model.Store, Pagination, error)
	SetStoreStatus(storeID uint, status model.EntityStatus) (*model.Store, error)
}

type adminService struct {
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	ratingRepo repository.RatingRepository,
) AdminService {
	return &adminService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

func (s *adminService) GetDashboardStats() (*DashboardStats, error) {
	totalUsers, err := s.userRepo.CountByStatus(model.StatusActive)
	if err != nil {
		return nil, err
	}

	totalStores, err := s.storeRepo.CountByStatus(model.StatusActive)
	if err != nil {
		return nil, err
	}

	totalRatings, err := s.ratingRepo.CountAll()
	if err != nil {
		return nil, err
	}

	averageRating, err := s.ratingRepo.OverallAverage()
	if err != nil {
		return nil, err
	}

	userRoles, err := s.userRepo.RoleHistogram()
	if err != nil {
		return nil, err
	}

	topStores, err := s.storeRepo.TopRated(10)
	if err != nil {
		return nil, err
	}

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	recentActivity, err := s.ratingRepo.DailyCounts(thirtyDaysAgo)
	if err != nil {
		return nil, err
	}

	categoryStats, err := s.storeRepo.CategoryStats()
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Overview: DashboardOverview{
			TotalUsers:    totalUsers,
			TotalStores:   totalStores,
			TotalRatings:  totalRatings,
			AverageRating: averageRating,
		},
		UserRoles:      userRoles,
		TopStores:      topStores,
		RecentActivity: recentActivity,
		CategoryStats:  categoryStats,
	}, nil
}

func (s *adminService) ListUsers(filter repository.UserFilter, page, limit int) ([]model.User, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	users, total, err := s.userRepo.FindAll(filter, offset, limit)
	if err != nil {
		return nil, Pagination{}, err
	}

	return users, paginate(total, page, limit), nil
}

func (s *adminService) SetUserStatus(userID uint, status model.EntityStatus) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Status = status
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("User status changed", map[string]interface{}{
		"user_id": userID,
		"status":  status,
	})
	return user, nil
}

// ListStores is the admin listing: any status, newest first
func (s *adminService) ListStores(filter repository.StoreFilter, page, limit int) ([]model.Store, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	stores, total, err := s.storeRepo.FindAll(filter, offset, limit, false)
	if err != nil {
		return nil, Pagination{}, err
	}

	return stores, paginate(total, page, limit), nil
}

func (s *adminService) SetStoreStatus(storeID uint, status model.EntityStatus) (*model.Store, error) {
	store, err := s.storeRepo.FindByID(storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	store.Status = status
	if err := s.storeRepo.Update(store); err != nil {
		return nil, err
	}

	logger.Info("Store status changed", map[string]interface{}{
		"store_id": storeID,
		"status":   status,
	})
	return store, nil
}
