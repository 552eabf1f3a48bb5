package devices

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kimm528/ringfitmanager/deletions"
	"github.com/kimm528/ringfitmanager/errors"
	"github.com/kimm528/ringfitmanager/store"
)

const CollectionName = "devices"

var (
	ErrNotFound     = fmt.Errorf("device %w", errors.NotFound)
	ErrDuplicateMac = fmt.Errorf("%w: a device with this mac address is already registered", errors.Duplicate)
	ErrInvalidMac   = fmt.Errorf("%w: invalid mac address", errors.BadRequest)
	ErrUserHasRing  = fmt.Errorf("%w: user already wears another device", errors.Conflict)
)

type Service interface {
	Get(ctx context.Context, id string) (*Device, error)
	GetByUser(ctx context.Context, userId string) (*Device, error)
	List(ctx context.Context, filter *Filter, pagination store.Pagination) (*ListResult, error)
	Create(ctx context.Context, device *Device) (*Device, error)
	Delete(ctx context.Context, id string, metadata deletions.Metadata) error
	Assign(ctx context.Context, id, userId string) (*Device, error)
	Unassign(ctx context.Context, id string) (*Device, error)
	ReleaseUser(ctx context.Context, userId string) error
	Sync(ctx context.Context) (*SyncResult, error)
}

type Repository interface {
	Get(ctx context.Context, id string) (*Device, error)
	GetByMac(ctx context.Context, mac string) (*Device, error)
	GetByUser(ctx context.Context, userId string) (*Device, error)
	List(ctx context.Context, filter *Filter, pagination store.Pagination) (*ListResult, error)
	Create(ctx context.Context, device *Device) (*Device, error)
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, id, userId string) (*Device, error)
	Unassign(ctx context.Context, id string) (*Device, error)
	UnassignUser(ctx context.Context, userId string) error
}

// Device is a ring registered at the vendor. Mac is the vendor's device id.
type Device struct {
	Id           *primitive.ObjectID `bson:"_id,omitempty"`
	Mac          string              `bson:"mac"`
	Model        string              `bson:"model,omitempty"`
	Name         string              `bson:"name,omitempty"`
	UserId       *string             `bson:"userId,omitempty"`
	AssignedTime *time.Time          `bson:"assignedTime,omitempty"`
	CreatedTime  time.Time           `bson:"createdTime"`
	UpdatedTime  time.Time           `bson:"updatedTime"`
}

func (d *Device) IdHex() string {
	if d.Id == nil {
		return ""
	}
	return d.Id.Hex()
}

func (d *Device) IsAssigned() bool {
	return d.UserId != nil
}

// NormalizeMac accepts the usual mac notations and returns the upper case,
// colon separated form.
func NormalizeMac(mac string) (string, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(mac))
	if err != nil || len(hw) != 6 {
		return "", ErrInvalidMac
	}
	return strings.ToUpper(hw.String()), nil
}

type Filter struct {
	Assigned *bool
	UserIds  []string
}

type ListResult struct {
	Devices    []*Device
	TotalCount int
}

// SyncResult lists the macs reported by the vendor that were registered
// by the sync, those already known, and registered devices the vendor no
// longer reports.
type SyncResult struct {
	Added   []string
	Known   []string
	Missing []string
}
