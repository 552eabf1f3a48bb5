package monitoring

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kimm528/ringfitmanager/devices"
	"github.com/kimm528/ringfitmanager/fitlife"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/outbox"
	"github.com/kimm528/ringfitmanager/store"
	"github.com/kimm528/ringfitmanager/users"
)

const dashboardConcurrency = 8

type Params struct {
	fx.In

	Users   users.Service
	Devices devices.Service
	Fitlife fitlife.Client
	Cache   *SnapshotCache
	Outbox  outbox.Repository
	Logger  *zap.SugaredLogger
}

func NewService(p Params) (Service, error) {
	return &service{
		users:    p.Users,
		devices:  p.Devices,
		fitlife:  p.Fitlife,
		cache:    p.Cache,
		outbox:   p.Outbox,
		logger:   p.Logger,
		now:      time.Now,
		statuses: map[string]health.Status{},
		mu:       &sync.Mutex{},
	}, nil
}

type service struct {
	users   users.Service
	devices devices.Service
	fitlife fitlife.Client
	cache   *SnapshotCache
	outbox  outbox.Repository
	logger  *zap.SugaredLogger
	now     func() time.Time

	// statuses holds the last overall status observed by Refresh per user
	statuses map[string]health.Status
	mu       *sync.Mutex
}

func (s *service) Evaluate(ctx context.Context, userId string) (*Card, error) {
	user, err := s.users.Get(ctx, userId)
	if err != nil {
		return nil, err
	}
	device, err := s.deviceOf(ctx, userId)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, user, device, false)
}

func (s *service) Refresh(ctx context.Context, userId string) (*Card, error) {
	user, err := s.users.Get(ctx, userId)
	if err != nil {
		return nil, err
	}
	device, err := s.deviceOf(ctx, userId)
	if err != nil {
		return nil, err
	}

	card, err := s.evaluate(ctx, user, device, true)
	if err != nil {
		return nil, err
	}

	previous := s.lastStatus(userId)
	current := card.Evaluation.Overall
	if current.Alerting() && current > previous {
		// The status is kept at its previous value until the alert is stored,
		// so a failed write is retried by the next refresh.
		if err := s.recordAlert(ctx, card, previous); err != nil {
			return nil, err
		}
	}
	s.setStatus(userId, current)
	return card, nil
}

func (s *service) Dashboard(ctx context.Context, filter DashboardFilter) ([]Card, error) {
	list, err := s.users.List(ctx, &users.Filter{Search: filter.Search, Room: filter.Room}, store.Pagination{})
	if err != nil {
		return nil, err
	}
	if len(list.Users) == 0 {
		return []Card{}, nil
	}

	ids := make([]string, 0, len(list.Users))
	for _, u := range list.Users {
		ids = append(ids, u.IdHex())
	}
	assigned, err := s.devices.List(ctx, &devices.Filter{UserIds: ids}, store.Pagination{})
	if err != nil {
		return nil, err
	}
	deviceByUser := make(map[string]*devices.Device, len(assigned.Devices))
	for _, d := range assigned.Devices {
		if d.UserId != nil {
			deviceByUser[*d.UserId] = d
		}
	}

	cards := make([]Card, len(list.Users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardConcurrency)
	for i, user := range list.Users {
		g.Go(func() error {
			card, err := s.evaluate(gctx, user, deviceByUser[user.IdHex()], false)
			if err != nil {
				s.logger.Warnw("unable to evaluate user", "userId", user.IdHex(), "error", err)
				card = s.emptyCard(user, deviceByUser[user.IdHex()])
				card.Error = err.Error()
			}
			cards[i] = *card
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if filter.MinStatus != nil {
		cards = slices.DeleteFunc(cards, func(c Card) bool {
			return c.Evaluation.Overall < *filter.MinStatus
		})
	}
	sortCards(cards)
	return cards, nil
}

func (s *service) evaluate(ctx context.Context, user *users.User, device *devices.Device, refresh bool) (*Card, error) {
	card := s.emptyCard(user, device)
	if device == nil {
		return card, nil
	}

	if refresh {
		s.cache.Remove(device.Mac)
	}
	snapshot, ok := s.cache.Get(device.Mac)
	if !ok {
		var err error
		snapshot, err = s.fetchSnapshot(ctx, device.Mac)
		if errors.Is(err, fitlife.ErrDeviceNotFound) {
			s.logger.Warnw("device is unknown to the vendor", "mac", device.Mac, "userId", user.IdHex())
			return card, nil
		} else if err != nil {
			return nil, err
		}
		s.cache.Add(device.Mac, snapshot)
	}

	card.Snapshot = snapshot
	card.Evaluation = health.Evaluate(snapshot, card.Profile)
	return card, nil
}

// fetchSnapshot combines the latest measurement with the sleep of the
// night that ended today.
func (s *service) fetchSnapshot(ctx context.Context, mac string) (health.Snapshot, error) {
	latest, err := s.fitlife.GetLatest(ctx, mac)
	if err != nil {
		return health.Snapshot{}, err
	}
	sessions, err := s.fitlife.GetSleep(ctx, mac, s.now())
	if err != nil && !errors.Is(err, fitlife.ErrDeviceNotFound) {
		return health.Snapshot{}, err
	}

	var sleep *health.SleepBreakdown
	if breakdown := health.BreakdownFromSessions(sessions); breakdown.HasData() {
		sleep = &breakdown
	}
	return latest.Snapshot(sleep), nil
}

func (s *service) emptyCard(user *users.User, device *devices.Device) *Card {
	profile := s.users.Profile(user)
	return &Card{
		User:          user,
		Device:        device,
		Profile:       profile,
		Evaluation:    health.Evaluate(health.Snapshot{}, profile),
		EvaluatedTime: s.now(),
	}
}

func (s *service) deviceOf(ctx context.Context, userId string) (*devices.Device, error) {
	device, err := s.devices.GetByUser(ctx, userId)
	if errors.Is(err, devices.ErrNotFound) {
		return nil, nil
	}
	return device, err
}

func (s *service) lastStatus(userId string) health.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.statuses[userId]
	if !ok {
		return health.StatusNoData
	}
	return previous
}

func (s *service) setStatus(userId string, status health.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses[userId] = status
}

func (s *service) recordAlert(ctx context.Context, card *Card, previous health.Status) error {
	statuses := make(map[string]string, len(card.Evaluation.Statuses))
	for metric, status := range card.Evaluation.Statuses {
		statuses[string(metric)] = status.String()
	}

	payload := outbox.HealthAlertPayload{
		UserId:     card.User.IdHex(),
		UserName:   card.User.Name,
		Previous:   previous.String(),
		Current:    card.Evaluation.Overall.String(),
		Statuses:   statuses,
		MeasuredAt: card.Snapshot.MeasuredAt,
	}
	if card.Device != nil {
		payload.DeviceMac = card.Device.Mac
	}

	event, err := outbox.NewEvent(outbox.EventTypeHealthAlert, payload)
	if err != nil {
		return err
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		return fmt.Errorf("unable to record health alert: %w", err)
	}

	s.logger.Infow("health alert recorded", "userId", payload.UserId, "previous", payload.Previous, "current", payload.Current)
	return nil
}

func sortCards(cards []Card) {
	slices.SortStableFunc(cards, func(a, b Card) int {
		if a.Evaluation.Overall != b.Evaluation.Overall {
			return int(b.Evaluation.Overall) - int(a.Evaluation.Overall)
		}
		if c := strings.Compare(a.User.Name, b.User.Name); c != 0 {
			return c
		}
		return strings.Compare(a.User.IdHex(), b.User.IdHex())
	})
}
