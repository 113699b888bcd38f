package repository

import (
	"time"

	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/pkg/logger"
	"gorm.io/gorm"
)

// DailyCount is one day of the rating-activity time series
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type RatingRepository interface {
	// Create, Update and Delete run the ledger mutation and the owning
	// store's aggregate rewrite in a single transaction.
	Create(rating *model.Rating) error
	Update(rating *model.Rating) error
	Delete(rating *model.Rating) error
	FindByID(id uint) (*model.Rating, error)
	FindByUser(userID uint) ([]model.Rating, error)
	RecalculateStoreAggregates(storeID uint) error
	CountAll() (int64, error)
	OverallAverage() (float64, error)
	DailyCounts(since time.Time) ([]DailyCount, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// recalculateAggregates rewrites a store's denormalized average/count from
// the rating rows. The sub-selects execute inside the UPDATE, so the values
// written are consistent with the ledger at statement time; callers run it
// in the same transaction as the mutation that made the aggregate stale.
func recalculateAggregates(tx *gorm.DB, storeID uint) error {
	return tx.Model(&model.Store{}).
		Where("id = ?", storeID).
		Updates(map[string]interface{}{
			"average_rating": gorm.Expr(
				"(SELECT COALESCE(ROUND(AVG(rating), 1), 0.0) FROM ratings WHERE store_id = ?)", storeID),
			"total_ratings": gorm.Expr(
				"(SELECT COUNT(*) FROM ratings WHERE store_id = ?)", storeID),
		}).Error
}

func (r *ratingRepository) Create(rating *model.Rating) error {
	logger.Debug("Creating rating in database", map[string]interface{}{
		"user_id":  rating.UserID,
		"store_id": rating.StoreID,
		"rating":   rating.Rating,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rating).Error; err != nil {
			return err
		}
		return recalculateAggregates(tx, rating.StoreID)
	})
	if err != nil {
		logger.Error("Failed to create rating", err, map[string]interface{}{
			"user_id":  rating.UserID,
			"store_id": rating.StoreID,
		})
		return err
	}

	logger.Debug("Rating created and store aggregates updated", map[string]interface{}{
		"rating_id": rating.ID,
		"store_id":  rating.StoreID,
	})
	return nil
}

func (r *ratingRepository) Update(rating *model.Rating) error {
	logger.Debug("Updating rating in database", map[string]interface{}{
		"rating_id": rating.ID,
		"store_id":  rating.StoreID,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rating).Error; err != nil {
			return err
		}
		return recalculateAggregates(tx, rating.StoreID)
	})
	if err != nil {
		logger.Error("Failed to update rating", err, map[string]interface{}{
			"rating_id": rating.ID,
		})
		return err
	}
	return nil
}

func (r *ratingRepository) Delete(rating *model.Rating) error {
	// Capture the store reference before the row disappears
	storeID := rating.StoreID

	logger.Debug("Deleting rating from database", map[string]interface{}{
		"rating_id": rating.ID,
		"store_id":  storeID,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Rating{}, rating.ID).Error; err != nil {
			return err
		}
		return recalculateAggregates(tx, storeID)
	})
	if err != nil {
		logger.Error("Failed to delete rating", err, map[string]interface{}{
			"rating_id": rating.ID,
		})
		return err
	}
	return nil
}

func (r *ratingRepository) FindByID(id uint) (*model.Rating, error) {
	var rating model.Rating
	if err := r.db.Preload("User").Preload("Store").First(&rating, id).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) FindByUser(userID uint) ([]model.Rating, error) {
	var ratings []model.Rating
	err := r.db.Where("user_id = ?", userID).
		Preload("Store").
		Order("created_at DESC").
		Find(&ratings).Error
	if err != nil {
		logger.Error("Failed to list ratings by user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return ratings, nil
}

// RecalculateStoreAggregates repairs a single store's aggregate outside of
// a mutation, used by the reconciliation scheduler.
func (r *ratingRepository) RecalculateStoreAggregates(storeID uint) error {
	return recalculateAggregates(r.db, storeID)
}

func (r *ratingRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.Rating{}).Count(&count).Error
	return count, err
}

func (r *ratingRepository) OverallAverage() (float64, error) {
	var avg float64
	err := r.db.Model(&model.Rating{}).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	return avg, err
}

// DailyCounts groups ratings created on or after the cutoff by calendar day
func (r *ratingRepository) DailyCounts(since time.Time) ([]DailyCount, error) {
	var counts []DailyCount
	err := r.db.Model(&model.Rating{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date DESC").
		Scan(&counts).Error
	if err != nil {
		logger.Error("Failed to compute daily rating counts", err)
		return nil, err
	}
	return counts, nil
}
