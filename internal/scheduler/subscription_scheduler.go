package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"github.com/robfig/cron/v3"
)

// sweepTimeout bounds one scheduled run.
const sweepTimeout = 15 * time.Minute

type sweeper interface {
	GenerateDueOrders(ctx context.Context, today time.Time, trigger model.SweepTrigger) (*service.SweepResult, error)
}

// SubscriptionScheduler runs the subscription sweep on a cron schedule.
type SubscriptionScheduler struct {
	cron     *cron.Cron
	spec     string
	location *time.Location
	sweeper  sweeper
}

func NewSubscriptionScheduler(sweeper sweeper, spec string, location *time.Location) *SubscriptionScheduler {
	if location == nil {
		location = time.UTC
	}
	return &SubscriptionScheduler{
		cron:     cron.New(cron.WithLocation(location)),
		spec:     spec,
		location: location,
		sweeper:  sweeper,
	}
}

func (s *SubscriptionScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runSweep); err != nil {
		logger.Error("Failed to add cron job for subscription sweep", err, map[string]interface{}{
			"schedule": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Subscription scheduler started", map[string]interface{}{
		"schedule": s.spec,
		"timezone": s.location.String(),
	})
	return nil
}

// Stop waits for a running sweep to finish.
func (s *SubscriptionScheduler) Stop() {
	logger.Info("Stopping subscription scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Subscription scheduler stopped")
}

func (s *SubscriptionScheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	today := util.Today(s.location)
	logger.Info("Starting scheduled subscription sweep", map[string]interface{}{
		"run_date": today.Format(util.DateLayout),
	})

	result, err := s.sweeper.GenerateDueOrders(ctx, today, model.TriggerScheduled)
	if err != nil {
		if errors.Is(err, service.ErrSweepInProgress) {
			logger.Info("Scheduled sweep skipped, another instance is running")
			return
		}
		logger.Error("Scheduled subscription sweep failed", err)
		return
	}

	logger.Info("Scheduled subscription sweep finished", map[string]interface{}{
		"generated": result.Generated,
		"failed":    result.Failed,
	})
}
