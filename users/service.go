package users

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/deletions"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/store"
)

type Params struct {
	fx.In

	DbClient       *mongo.Client
	Repository     Repository
	Deletions      deletions.Repository[User]
	DeviceReleaser DeviceReleaser
	Defaults       health.Profile
	Logger         *zap.SugaredLogger
}

func NewService(p Params) (Service, error) {
	return &service{
		dbClient:       p.DbClient,
		repository:     p.Repository,
		deletions:      p.Deletions,
		deviceReleaser: p.DeviceReleaser,
		defaults:       p.Defaults,
		logger:         p.Logger,
	}, nil
}

var NewDeletionsRepository = deletions.NewRepositoryFactory[User]("user", []string{"_id"})

type service struct {
	dbClient       *mongo.Client
	repository     Repository
	deletions      deletions.Repository[User]
	deviceReleaser DeviceReleaser
	defaults       health.Profile
	logger         *zap.SugaredLogger
}

func (s *service) Get(ctx context.Context, id string) (*User, error) {
	return s.repository.Get(ctx, id)
}

func (s *service) List(ctx context.Context, filter *Filter, pagination store.Pagination) (*ListResult, error) {
	return s.repository.List(ctx, filter, pagination)
}

func (s *service) Create(ctx context.Context, user *User) (*User, error) {
	user.Name = strings.TrimSpace(user.Name)
	if err := user.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repository.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("user created", "userId", created.IdHex())
	return created, nil
}

// Update replaces the personal details of a user. Thresholds and goals are
// managed through their own operations and are left untouched.
func (s *service) Update(ctx context.Context, id string, update *User) (*User, error) {
	update.Name = strings.TrimSpace(update.Name)
	details := *update
	details.Thresholds = nil
	details.Goals = nil
	if err := details.Validate(); err != nil {
		return nil, err
	}
	return s.repository.Update(ctx, id, &details)
}

func (s *service) Delete(ctx context.Context, id string, metadata deletions.Metadata) error {
	_, err := store.WithTransaction(ctx, s.dbClient, func(sessCtx mongo.SessionContext) (interface{}, error) {
		user, err := s.repository.Get(sessCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.deviceReleaser.ReleaseUser(sessCtx, id); err != nil {
			return nil, fmt.Errorf("unable to release device of user %s: %w", id, err)
		}
		if err := s.deletions.Create(sessCtx, *user, metadata); err != nil {
			return nil, err
		}
		return nil, s.repository.Delete(sessCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("user deleted", "userId", id, "deletedBy", metadata.DeletedBy)
	return nil
}

// UpdateThresholds merges a partial JSON document into the effective
// thresholds of the user and stores the result as the user's override.
func (s *service) UpdateThresholds(ctx context.Context, id string, patch []byte) (*User, error) {
	user, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	thresholds, err := health.MergeThresholdsJSON(s.Profile(user).Thresholds, patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	return s.repository.SetThresholds(ctx, id, &thresholds)
}

func (s *service) ResetThresholds(ctx context.Context, id string) (*User, error) {
	return s.repository.SetThresholds(ctx, id, nil)
}

func (s *service) UpdateGoals(ctx context.Context, id string, patch []byte) (*User, error) {
	user, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	goals, err := health.MergeGoalsJSON(s.Profile(user).Goals, patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	return s.repository.SetGoals(ctx, id, &goals)
}

func (s *service) ResetGoals(ctx context.Context, id string) (*User, error) {
	return s.repository.SetGoals(ctx, id, nil)
}

func (s *service) Profile(user *User) health.Profile {
	return user.Profile(s.defaults)
}
