package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/devices"
	"github.com/kimm528/ringfitmanager/fitlife"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/monitoring"
	"github.com/kimm528/ringfitmanager/pointer"
	"github.com/kimm528/ringfitmanager/store"
	"github.com/kimm528/ringfitmanager/users"
)

type Params struct {
	fx.In

	Monitoring monitoring.Service
	Users      users.Service
	Devices    devices.Service
	Fitlife    fitlife.Client
	Logger     *zap.SugaredLogger
}

func NewService(p Params) (Service, error) {
	return &service{
		monitoring: p.Monitoring,
		users:      p.Users,
		devices:    p.Devices,
		fitlife:    p.Fitlife,
		logger:     p.Logger,
		now:        time.Now,
	}, nil
}

type service struct {
	monitoring monitoring.Service
	users      users.Service
	devices    devices.Service
	fitlife    fitlife.Client
	logger     *zap.SugaredLogger
	now        func() time.Time
}

func (s *service) HealthReport(ctx context.Context, userId string, period Period) (*HealthReport, error) {
	card, err := s.monitoring.Evaluate(ctx, userId)
	if err != nil {
		return nil, err
	}

	report := &HealthReport{
		Period:        period,
		Current:       *card,
		Readings:      []Reading{},
		Nights:        []Night{},
		GeneratedTime: s.now(),
	}
	if card.Device == nil {
		return report, nil
	}

	mac := card.Device.Mac
	history, err := s.fitlife.GetHistory(ctx, mac, period.From, period.To)
	if errors.Is(err, fitlife.ErrDeviceNotFound) {
		s.logger.Warnw("device is unknown to the vendor", "mac", mac, "userId", userId)
		return report, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to fetch measurement history: %w", err)
	}
	for _, m := range history {
		report.Readings = append(report.Readings, Reading{
			Measurement: m,
			Evaluation:  health.Evaluate(m.Snapshot(nil), card.Profile),
		})
	}

	thresholds := card.Profile.Thresholds
	for _, day := range period.Days() {
		sessions, err := s.fitlife.GetSleep(ctx, mac, day)
		if err != nil {
			return nil, fmt.Errorf("unable to fetch sleep of %s: %w", day.Format(fitlife.DateLayout), err)
		}

		night := Night{Date: day, Breakdown: health.BreakdownFromSessions(sessions)}
		if night.Breakdown.HasData() {
			score := health.SleepScore(night.Breakdown)
			night.Score = &score
			night.Status = thresholds.SleepScore.Classify(pointer.FromAny(float64(score)))
		}
		report.Nights = append(report.Nights, night)
	}

	return report, nil
}

func (s *service) RosterAudit(ctx context.Context) (*RosterAudit, error) {
	allUsers, err := s.users.List(ctx, nil, store.Pagination{})
	if err != nil {
		return nil, err
	}
	allDevices, err := s.devices.List(ctx, nil, store.Pagination{})
	if err != nil {
		return nil, err
	}
	duplicates, err := users.NewDuplicateFinder(allUsers.Users).Clusters()
	if err != nil {
		return nil, fmt.Errorf("unable to find duplicate users: %w", err)
	}

	return &RosterAudit{
		Users:         allUsers.Users,
		Devices:       allDevices.Devices,
		Duplicates:    duplicates,
		GeneratedTime: s.now(),
	}, nil
}
