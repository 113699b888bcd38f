package service

import (
	"errors"

	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/internal/app/repository"
	apperrors "github.com/ratewise/ratewise-backend/internal/errors"
	"github.com/ratewise/ratewise-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrRatingNotFound  = errors.New("rating not found")
	ErrNotRatingAuthor = errors.New("rating belongs to another user")
	ErrDuplicateRating = errors.New("user has already rated this store")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// CreateRatingInput is the payload for a new rating
type CreateRatingInput struct {
	StoreID     uint
	Rating      int
	Review      string
	IsAnonymous bool
}

// UpdateRatingInput is a partial payload; nil fields stay untouched
type UpdateRatingInput struct {
	Rating      *int
	Review      *string
	IsAnonymous *bool
}

type RatingService interface {
	CreateRating(userID uint, input CreateRatingInput) (*model.Rating, error)
	UpdateRating(ratingID, userID uint, input UpdateRatingInput) (*model.Rating, error)
	DeleteRating(ratingID, userID uint, isAdmin bool) error
	GetUserRatings(userID uint) ([]model.Rating, error)
	ReconcileAllAggregates() error
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	storeRepo  repository.StoreRepository
}

func NewRatingService(ratingRepo repository.RatingRepository, storeRepo repository.StoreRepository) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
	}
}

// CreateRating records a user's rating for an active store. The store
// aggregate is rewritten in the same transaction as the insert.
func (s *ratingService) CreateRating(userID uint, input CreateRatingInput) (*model.Rating, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	store, err := s.storeRepo.FindByID(input.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if !store.IsActive() {
		return nil, ErrStoreNotFound
	}

	rating := &model.Rating{
		UserID:      userID,
		StoreID:     input.StoreID,
		Rating:      input.Rating,
		Review:      input.Review,
		IsAnonymous: input.IsAnonymous,
	}

	if err := s.ratingRepo.Create(rating); err != nil {
		if apperrors.IsDuplicateKey(err) {
			logger.Warn("Duplicate rating rejected", map[string]interface{}{
				"user_id":  userID,
				"store_id": input.StoreID,
			})
			return nil, ErrDuplicateRating
		}
		return nil, err
	}

	created, err := s.ratingRepo.FindByID(rating.ID)
	if err != nil {
		return rating, nil
	}
	return created, nil
}

// UpdateRating lets the author change their rating. Existence is checked
// before authorship so a missing rating is a distinct failure from an
// attempt to edit somebody else's.
func (s *ratingService) UpdateRating(ratingID, userID uint, input UpdateRatingInput) (*model.Rating, error) {
	rating, err := s.ratingRepo.FindByID(ratingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}

	if rating.UserID != userID {
		return nil, ErrNotRatingAuthor
	}

	if input.Rating != nil {
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, ErrInvalidRating
		}
		rating.Rating = *input.Rating
	}
	if input.Review != nil {
		rating.Review = *input.Review
	}
	if input.IsAnonymous != nil {
		rating.IsAnonymous = *input.IsAnonymous
	}

	if err := s.ratingRepo.Update(rating); err != nil {
		return nil, err
	}

	return rating, nil
}

// DeleteRating removes a rating. Authors delete their own; admins may
// delete any rating (moderation), but cannot edit one.
func (s *ratingService) DeleteRating(ratingID, userID uint, isAdmin bool) error {
	rating, err := s.ratingRepo.FindByID(ratingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRatingNotFound
		}
		return err
	}

	if rating.UserID != userID && !isAdmin {
		return ErrNotRatingAuthor
	}

	return s.ratingRepo.Delete(rating)
}

func (s *ratingService) GetUserRatings(userID uint) ([]model.Rating, error) {
	return s.ratingRepo.FindByUser(userID)
}

// ReconcileAllAggregates rewrites every store's aggregate from the ledger.
// Run by the scheduler as a safety net; the per-mutation transactions keep
// aggregates correct in normal operation.
func (s *ratingService) ReconcileAllAggregates() error {
	ids, err := s.storeRepo.FindAllIDs()
	if err != nil {
		return err
	}

	var failed int
	for _, id := range ids {
		if err := s.ratingRepo.RecalculateStoreAggregates(id); err != nil {
			logger.Error("Failed to reconcile store aggregates", err, map[string]interface{}{
				"store_id": id,
			})
			failed++
		}
	}

	logger.Info("Aggregate reconciliation completed", map[string]interface{}{
		"stores": len(ids),
		"failed": failed,
	})
	return nil
}
