package service

import (
	"errors"
	"math"

	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/internal/app/repository"
	"github.com/ratewise/ratewise-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrStoreNotFound = errors.New("store not found")
)

// Pagination is the standard list response metadata
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func paginate(total int64, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

// CreateStoreInput is the validated payload for a new store
type CreateStoreInput struct {
	Name        string
	Description string
	Address     string
	City        string
	State       string
	ZipCode     string
	Phone       string
	Email       string
	Website     string
	LogoURL     string
	Category    string
}

// UpdateStoreInput is a partial payload; nil fields stay untouched.
// The rating aggregate is deliberately absent: it is derived data.
type UpdateStoreInput struct {
	Name        *string
	Description *string
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	Phone       *string
	Email       *string
	Website     *string
	LogoURL     *string
	Category    *string
}

type StoreService interface {
	ListStores(filter repository.StoreFilter, page, limit int) ([]model.Store, Pagination, error)
	GetStore(id uint) (*model.Store, error)
	GetMyStores(ownerID uint) ([]model.Store, error)
	CreateStore(ownerID uint, input CreateStoreInput) (*model.Store, error)
	UpdateStore(id uint, input UpdateStoreInput) (*model.Store, error)
	DeleteStore(id uint) error
}

type storeService struct {
	storeRepo repository.StoreRepository
}

func NewStoreService(storeRepo repository.StoreRepository) StoreService {
	return &storeService{storeRepo: storeRepo}
}

// ListStores returns the public catalog: active stores only, best rated first
func (s *storeService) ListStores(filter repository.StoreFilter, page, limit int) ([]model.Store, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	filter.Status = model.StatusActive

	offset := (page - 1) * limit
	stores, total, err := s.storeRepo.FindAll(filter, offset, limit, true)
	if err != nil {
		return nil, Pagination{}, err
	}

	return stores, paginate(total, page, limit), nil
}

// GetStore returns one active store with its ratings and owner contact.
// Inactive stores are not publicly visible.
func (s *storeService) GetStore(id uint) (*model.Store, error) {
	store, err := s.storeRepo.FindByIDWithRatings(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if !store.IsActive() {
		return nil, ErrStoreNotFound
	}
	return store, nil
}

func (s *storeService) GetMyStores(ownerID uint) ([]model.Store, error) {
	return s.storeRepo.FindByOwner(ownerID)
}

func (s *storeService) CreateStore(ownerID uint, input CreateStoreInput) (*model.Store, error) {
	store := &model.Store{
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		Address:     input.Address,
		City:        input.City,
		State:       input.State,
		ZipCode:     input.ZipCode,
		Phone:       input.Phone,
		Email:       input.Email,
		Website:     input.Website,
		LogoURL:     input.LogoURL,
		Category:    input.Category,
		Status:      model.StatusActive,
	}

	if err := s.storeRepo.Create(store); err != nil {
		return nil, err
	}

	// Reload with owner for the response
	created, err := s.storeRepo.FindByID(store.ID)
	if err != nil {
		return store, nil
	}
	return created, nil
}

// UpdateStore applies a shallow merge of the provided fields
func (s *storeService) UpdateStore(id uint, input UpdateStoreInput) (*model.Store, error) {
	store, err := s.storeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		store.Name = *input.Name
	}
	if input.Description != nil {
		store.Description = *input.Description
	}
	if input.Address != nil {
		store.Address = *input.Address
	}
	if input.City != nil {
		store.City = *input.City
	}
	if input.State != nil {
		store.State = *input.State
	}
	if input.ZipCode != nil {
		store.ZipCode = *input.ZipCode
	}
	if input.Phone != nil {
		store.Phone = *input.Phone
	}
	if input.Email != nil {
		store.Email = *input.Email
	}
	if input.Website != nil {
		store.Website = *input.Website
	}
	if input.LogoURL != nil {
		store.LogoURL = *input.LogoURL
	}
	if input.Category != nil {
		store.Category = *input.Category
	}

	if err := s.storeRepo.Update(store); err != nil {
		return nil, err
	}

	return store, nil
}

// DeleteStore soft-deletes: the record stays, the status flips to inactive
func (s *storeService) DeleteStore(id uint) error {
	store, err := s.storeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}
		return err
	}

	if store.Status == model.StatusInactive {
		return nil // already gone from the catalog
	}

	store.Status = model.StatusInactive
	if err := s.storeRepo.Update(store); err != nil {
		logger.Error("Failed to soft delete store", err, map[string]interface{}{
			"store_id": id,
		})
		return err
	}

	logger.Info("Store deactivated", map[string]interface{}{
		"store_id": id,
	})
	return nil
}
