package scheduler

import (
	"github.com/ratewise/ratewise-backend/internal/app/service"
	"github.com/ratewise/ratewise-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// AggregateScheduler reconciles store rating aggregates on a schedule.
// Aggregates are maintained transactionally on every write, so this is
// a consistency backstop, not the primary mechanism.
type AggregateScheduler struct {
	cron          *cron.Cron
	ratingService service.RatingService
}

func NewAggregateScheduler(ratingService service.RatingService) *AggregateScheduler {
	return &AggregateScheduler{
		cron:          cron.New(),
		ratingService: ratingService,
	}
}

// Start schedules the nightly reconciliation at 03:00.
func (s *AggregateScheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		logger.Info("Starting scheduled aggregate reconciliation", nil)

		if err := s.ratingService.ReconcileAllAggregates(); err != nil {
			logger.Error("Aggregate reconciliation failed", err)
			return
		}

		logger.Info("Aggregate reconciliation completed", nil)
	})
	if err != nil {
		logger.Error("Failed to register aggregate reconciliation job", err)
		return err
	}

	s.cron.Start()
	logger.Info("Aggregate scheduler started (daily at 3:00 AM)", nil)

	return nil
}

func (s *AggregateScheduler) Stop() {
	logger.Info("Stopping aggregate scheduler...", nil)
	s.cron.Stop()
	logger.Info("Aggregate scheduler stopped", nil)
}
