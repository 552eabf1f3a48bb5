package monitoring

import (
	"context"
	"time"

	"github.com/eapache/queue"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/config"
	"github.com/kimm528/ringfitmanager/devices"
	"github.com/kimm528/ringfitmanager/pointer"
	"github.com/kimm528/ringfitmanager/store"
)

// Refresher periodically refreshes every user wearing a device so alerts
// are recorded without anyone opening the dashboard.
type Refresher struct {
	interval   time.Duration
	monitoring Service
	devices    devices.Service
	logger     *zap.SugaredLogger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewRefresher(cfg *config.Config, monitoring Service, devices devices.Service, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) *Refresher {
	r := &Refresher{
		interval:   cfg.RefreshInterval,
		monitoring: monitoring,
		devices:    devices,
		logger:     logger,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			r.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			r.Stop(ctx)
			return nil
		},
	})

	return r
}

func (r *Refresher) Start() {
	if r.interval <= 0 {
		r.logger.Infow("periodic refresh is disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.RefreshAll(ctx)
			}
		}
	}()
}

func (r *Refresher) Stop(ctx context.Context) {
	if r.cancel == nil {
		return
	}
	r.cancel()
	select {
	case <-r.done:
	case <-ctx.Done():
	}
}

const refreshAttempts = 2

type refreshTask struct {
	userId  string
	attempt int
}

// RefreshAll refreshes the users wearing a device one at a time. A user
// whose refresh fails is queued again behind the others, up to
// refreshAttempts times. It returns the number of users refreshed
// successfully.
func (r *Refresher) RefreshAll(ctx context.Context) int {
	assigned, err := r.devices.List(ctx, &devices.Filter{Assigned: pointer.FromAny(true)}, store.Pagination{})
	if err != nil {
		r.logger.Warnw("unable to list assigned devices", "error", err)
		return 0
	}

	pending := queue.New()
	for _, d := range assigned.Devices {
		pending.Add(refreshTask{userId: *d.UserId, attempt: 1})
	}

	refreshed := 0
	for pending.Length() > 0 {
		if ctx.Err() != nil {
			return refreshed
		}
		task := pending.Remove().(refreshTask)
		if _, err := r.monitoring.Refresh(ctx, task.userId); err != nil {
			if task.attempt < refreshAttempts {
				task.attempt++
				pending.Add(task)
				continue
			}
			r.logger.Warnw("unable to refresh user", "userId", task.userId, "attempts", task.attempt, "error", err)
			continue
		}
		refreshed++
	}

	r.logger.Debugw("refreshed users", "count", refreshed, "assigned", len(assigned.Devices))
	return refreshed
}
