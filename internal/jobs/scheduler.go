// Package jobs runs the periodic background tasks of the server.
package jobs

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/crockshine/backend-erp/internal/events"
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/prometheus"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job is one scheduled task
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron schedules. A job still running when its next
// tick arrives is skipped.
type Scheduler struct {
	cron   *cron.Cron
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a stopped scheduler
func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under name with a cron spec such as "@every 30s"
func (s *Scheduler) Add(spec, name string, job Job) error {
	if _, err := s.cron.AddFunc(spec, s.wrap(name, job)); err != nil {
		return errors.Wrapf(err, "schedule %s job", name)
	}
	return nil
}

func (s *Scheduler) wrap(name string, job Job) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("Scheduled job panicked", zap.String("job", name), zap.Any("panic", r))
			}
		}()

		start := time.Now()
		if err := job(s.ctx); err != nil {
			s.log.Error("Scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.log.Debug("Scheduled job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	}
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them until ctx expires
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InventoryLister reads current stock levels
type InventoryLister interface {
	ListInventory(ctx context.Context) ([]model.InventoryLevel, error)
}

// InventoryGauge refreshes the per-product inventory gauge
func InventoryGauge(store InventoryLister) Job {
	return func(ctx context.Context) error {
		levels, err := store.ListInventory(ctx)
		if err != nil {
			return err
		}
		prometheus.ProductInventoryGauge.Reset()
		for _, l := range levels {
			prometheus.UpdateProductInventory(l.ProductID, l.ProductName, l.CategoryName, float64(l.RestCount))
		}
		return nil
	}
}

// OutboxRelay drains one outbox batch per run
func OutboxRelay(relay *events.Relay, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		n, err := relay.Flush(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info("Outbox events published", zap.Int("count", n))
		}
		return nil
	}
}
