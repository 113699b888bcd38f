package repository

import (
	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/pkg/logger"
	"gorm.io/gorm"
)

// StoreFilter narrows store listings. Status empty means any status
// (admin listing); the public catalog passes StatusActive.
type StoreFilter struct {
	Category string
	City     string // substring, case-insensitive
	Search   string // matches name or description, case-insensitive
	Status   model.EntityStatus
}

// CategoryStat is the per-category rollup for the admin dashboard
type CategoryStat struct {
	Category      string  `json:"category"`
	Count         int64   `json:"count"`
	AverageRating float64 `json:"average_rating"`
}

type StoreRepository interface {
	Create(store *model.Store) error
	BulkCreate(stores []model.Store, batchSize int) error
	Update(store *model.Store) error
	FindByID(id uint) (*model.Store, error)
	FindByIDWithRatings(id uint) (*model.Store, error)
	FindAll(filter StoreFilter, offset, limit int, orderByRating bool) ([]model.Store, int64, error)
	FindByOwner(ownerID uint) ([]model.Store, error)
	FindAllIDs() ([]uint, error)
	CountByStatus(status model.EntityStatus) (int64, error)
	TopRated(limit int) ([]model.Store, error)
	CategoryStats() ([]CategoryStat, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"name":     store.Name,
		"city":     store.City,
		"owner_id": store.OwnerID,
	})

	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"name":     store.Name,
			"owner_id": store.OwnerID,
		})
		return err
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})
	return nil
}

func (r *storeRepository) BulkCreate(stores []model.Store, batchSize int) error {
	logger.Info("Bulk creating stores", map[string]interface{}{
		"count":      len(stores),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(stores, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create stores", err, map[string]interface{}{
			"count": len(stores),
		})
		return err
	}
	return nil
}

func (r *storeRepository) Update(store *model.Store) error {
	logger.Debug("Updating store in database", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})

	if err := r.db.Save(store).Error; err != nil {
		logger.Error("Failed to update store in database", err, map[string]interface{}{
			"store_id": store.ID,
		})
		return err
	}
	return nil
}

func (r *storeRepository) FindByID(id uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.Preload("Owner").First(&store, id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByIDWithRatings(id uint) (*model.Store, error) {
	var store model.Store
	err := r.db.Preload("Owner").
		Preload("Ratings", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Ratings.User").
		First(&store, id).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindAll(filter StoreFilter, offset, limit int, orderByRating bool) ([]model.Store, int64, error) {
	query := r.db.Model(&model.Store{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.City != "" {
		query = query.Where("LOWER(city) LIKE LOWER(?)", "%"+filter.City+"%")
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)",
			like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if orderByRating {
		order = "average_rating DESC, created_at DESC"
	}

	var stores []model.Store
	err := query.Preload("Owner").
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&stores).Error
	if err != nil {
		logger.Error("Failed to list stores", err, map[string]interface{}{
			"category": filter.Category,
			"city":     filter.City,
		})
		return nil, 0, err
	}

	return stores, total, nil
}

func (r *storeRepository) FindByOwner(ownerID uint) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&stores).Error
	if err != nil {
		logger.Error("Failed to list stores by owner", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}
	return stores, nil
}

func (r *storeRepository) FindAllIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&model.Store{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *storeRepository) CountByStatus(status model.EntityStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.Store{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *storeRepository) TopRated(limit int) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.Preload("Owner").
		Where("status = ?", model.StatusActive).
		Order("average_rating DESC, total_ratings DESC").
		Limit(limit).
		Find(&stores).Error
	if err != nil {
		logger.Error("Failed to list top rated stores", err)
		return nil, err
	}
	return stores, nil
}

func (r *storeRepository) CategoryStats() ([]CategoryStat, error) {
	var stats []CategoryStat
	err := r.db.Model(&model.Store{}).
		Select("category, COUNT(*) as count, COALESCE(AVG(average_rating), 0) as average_rating").
		Where("status = ?", model.StatusActive).
		Group("category").
		Order("count DESC").
		Scan(&stats).Error
	if err != nil {
		logger.Error("Failed to compute category stats", err)
		return nil, err
	}
	return stats, nil
}
