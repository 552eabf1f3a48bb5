package devices

import (
	"context"
	"errors"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/deletions"
	"github.com/kimm528/ringfitmanager/fitlife"
	"github.com/kimm528/ringfitmanager/store"
	"github.com/kimm528/ringfitmanager/users"
)

var NewDeletionsRepository = deletions.NewRepositoryFactory[Device]("device", []string{"mac"})

type Params struct {
	fx.In

	DbClient        *mongo.Client
	Repository      Repository
	Deletions       deletions.Repository[Device]
	UsersRepository users.Repository
	Fitlife         fitlife.Client
	Logger          *zap.SugaredLogger
}

func NewService(p Params) (Service, error) {
	return &service{
		dbClient:        p.DbClient,
		repository:      p.Repository,
		deletions:       p.Deletions,
		usersRepository: p.UsersRepository,
		fitlife:         p.Fitlife,
		logger:          p.Logger,
	}, nil
}

// NewDeviceReleaser exposes the service to users.Service, which releases
// the device of a user being deleted.
func NewDeviceReleaser(service Service) users.DeviceReleaser {
	return service
}

type service struct {
	dbClient        *mongo.Client
	repository      Repository
	deletions       deletions.Repository[Device]
	usersRepository users.Repository
	fitlife         fitlife.Client
	logger          *zap.SugaredLogger
}

func (s *service) Get(ctx context.Context, id string) (*Device, error) {
	return s.repository.Get(ctx, id)
}

func (s *service) GetByUser(ctx context.Context, userId string) (*Device, error) {
	return s.repository.GetByUser(ctx, userId)
}

func (s *service) List(ctx context.Context, filter *Filter, pagination store.Pagination) (*ListResult, error) {
	return s.repository.List(ctx, filter, pagination)
}

func (s *service) Create(ctx context.Context, device *Device) (*Device, error) {
	mac, err := NormalizeMac(device.Mac)
	if err != nil {
		return nil, err
	}

	create := &Device{
		Mac:   mac,
		Model: device.Model,
		Name:  device.Name,
	}
	created, err := s.repository.Create(ctx, create)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("device registered", "deviceId", created.IdHex(), "mac", created.Mac)
	return created, nil
}

func (s *service) Delete(ctx context.Context, id string, metadata deletions.Metadata) error {
	_, err := store.WithTransaction(ctx, s.dbClient, func(sessCtx mongo.SessionContext) (interface{}, error) {
		device, err := s.repository.Get(sessCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.deletions.Create(sessCtx, *device, metadata); err != nil {
			return nil, err
		}
		return nil, s.repository.Delete(sessCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("device deleted", "deviceId", id, "deletedBy", metadata.DeletedBy)
	return nil
}

// Assign hands the device to the user. A device already worn by someone
// else moves to the new user. A user holding a different device must
// release it first.
func (s *service) Assign(ctx context.Context, id, userId string) (*Device, error) {
	result, err := store.WithTransaction(ctx, s.dbClient, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := s.usersRepository.Get(sessCtx, userId); err != nil {
			return nil, err
		}
		device, err := s.repository.Get(sessCtx, id)
		if err != nil {
			return nil, err
		}

		current, err := s.repository.GetByUser(sessCtx, userId)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if current != nil && current.IdHex() != device.IdHex() {
			return nil, ErrUserHasRing
		}

		return s.repository.Assign(sessCtx, id, userId)
	})
	if err != nil {
		return nil, err
	}

	assigned := result.(*Device)
	s.logger.Infow("device assigned", "deviceId", id, "userId", userId)
	return assigned, nil
}

func (s *service) Unassign(ctx context.Context, id string) (*Device, error) {
	device, err := s.repository.Unassign(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("device unassigned", "deviceId", id)
	return device, nil
}

func (s *service) ReleaseUser(ctx context.Context, userId string) error {
	return s.repository.UnassignUser(ctx, userId)
}

// Sync registers the devices reported by the vendor that are not known yet.
func (s *service) Sync(ctx context.Context) (*SyncResult, error) {
	reported, err := s.fitlife.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list vendor devices: %w", err)
	}

	registered, err := s.repository.List(ctx, nil, store.Pagination{})
	if err != nil {
		return nil, err
	}
	known := mapset.NewThreadUnsafeSet[string]()
	for _, d := range registered.Devices {
		known.Add(d.Mac)
	}

	result := &SyncResult{Added: []string{}, Known: []string{}, Missing: []string{}}
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, vendorDevice := range reported {
		mac, err := NormalizeMac(vendorDevice.Mac)
		if err != nil {
			s.logger.Warnw("skipping vendor device with invalid mac", "mac", vendorDevice.Mac)
			continue
		}
		if !seen.Add(mac) {
			continue
		}
		if known.Contains(mac) {
			result.Known = append(result.Known, mac)
			continue
		}

		_, err = s.repository.Create(ctx, &Device{Mac: mac, Model: vendorDevice.Model, Name: vendorDevice.Name})
		if errors.Is(err, ErrDuplicateMac) {
			result.Known = append(result.Known, mac)
			continue
		} else if err != nil {
			return nil, err
		}
		result.Added = append(result.Added, mac)
	}

	result.Missing = known.Difference(seen).ToSlice()
	slices.Sort(result.Missing)

	s.logger.Infow("devices synchronized", "added", len(result.Added), "known", len(result.Known), "missing", len(result.Missing))
	return result, nil
}
