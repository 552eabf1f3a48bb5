package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kimm528/ringfitmanager/deletions"
	"github.com/kimm528/ringfitmanager/errors"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/store"
)

const (
	CollectionName  = "users"
	BirthDateLayout = "2006-01-02"
)

var (
	ErrNotFound       = fmt.Errorf("user %w", errors.NotFound)
	ErrNameRequired   = fmt.Errorf("%w: user name is required", errors.BadRequest)
	ErrInvalidBirth   = fmt.Errorf("%w: birth date must be formatted as YYYY-MM-DD", errors.BadRequest)
	ErrInvalidProfile = fmt.Errorf("%w: invalid health profile", errors.BadRequest)
)

//go:generate mockgen -destination=./test/mock_releaser.go -package test . DeviceReleaser

type Service interface {
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter *Filter, pagination store.Pagination) (*ListResult, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, id string, update *User) (*User, error)
	Delete(ctx context.Context, id string, metadata deletions.Metadata) error
	UpdateThresholds(ctx context.Context, id string, patch []byte) (*User, error)
	ResetThresholds(ctx context.Context, id string) (*User, error)
	UpdateGoals(ctx context.Context, id string, patch []byte) (*User, error)
	ResetGoals(ctx context.Context, id string) (*User, error)
	Profile(user *User) health.Profile
}

type Repository interface {
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter *Filter, pagination store.Pagination) (*ListResult, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, id string, update *User) (*User, error)
	SetThresholds(ctx context.Context, id string, thresholds *health.Thresholds) (*User, error)
	SetGoals(ctx context.Context, id string, goals *health.Goals) (*User, error)
	Delete(ctx context.Context, id string) error
}

// DeviceReleaser unassigns the device held by a user that is being removed.
type DeviceReleaser interface {
	ReleaseUser(ctx context.Context, userId string) error
}

// User is a resident of the facility wearing a ring.
type User struct {
	Id          *primitive.ObjectID `bson:"_id,omitempty"`
	Name        string              `bson:"name"`
	BirthDate   *string             `bson:"birthDate,omitempty"`
	Gender      *string             `bson:"gender,omitempty"`
	Room        *string             `bson:"room,omitempty"`
	Phone       *string             `bson:"phone,omitempty"`
	Thresholds  *health.Thresholds  `bson:"thresholds,omitempty"`
	Goals       *health.Goals       `bson:"goals,omitempty"`
	CreatedTime time.Time           `bson:"createdTime"`
	UpdatedTime time.Time           `bson:"updatedTime"`
}

// Profile returns the user's overrides on top of the given defaults.
func (u *User) Profile(defaults health.Profile) health.Profile {
	profile := defaults
	if u.Thresholds != nil {
		profile.Thresholds = *u.Thresholds
	}
	if u.Goals != nil {
		profile.Goals = *u.Goals
	}
	return profile
}

func (u *User) IdHex() string {
	if u.Id == nil {
		return ""
	}
	return u.Id.Hex()
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrNameRequired
	}
	if u.BirthDate != nil {
		if _, err := time.Parse(BirthDateLayout, *u.BirthDate); err != nil {
			return ErrInvalidBirth
		}
	}
	if u.Thresholds != nil {
		if err := u.Thresholds.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
		}
	}
	if u.Goals != nil {
		if err := u.Goals.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
		}
	}
	return nil
}

type Filter struct {
	Search *string
	Room   *string
	Ids    []string
}

type ListResult struct {
	Users      []*User
	TotalCount int
}
