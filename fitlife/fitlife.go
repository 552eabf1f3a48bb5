package fitlife

import (
	"context"
	"fmt"
	"time"

	"github.com/kimm528/ringfitmanager/errors"
	"github.com/kimm528/ringfitmanager/health"
)

const DateLayout = "2006-01-02"

var (
	ErrDeviceNotFound     = fmt.Errorf("device %w", errors.NotFound)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", errors.Unauthorized)
	ErrUnavailable        = fmt.Errorf("%w: fitlife is unavailable", errors.BadGateway)
)

//go:generate mockgen -source=./fitlife.go -destination=./test/mock_client.go -package test

// Client talks to the ring vendor's REST API.
type Client interface {
	Login(ctx context.Context, id, password string) (*LoginResult, error)
	ListDevices(ctx context.Context) ([]Device, error)
	GetLatest(ctx context.Context, mac string) (*Measurement, error)
	GetSleep(ctx context.Context, mac string, date time.Time) ([]health.SleepSession, error)
	GetHistory(ctx context.Context, mac string, from, to time.Time) ([]Measurement, error)
}

type Admin struct {
	Id   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
	Role string `mapstructure:"role"`
}

type LoginResult struct {
	Token string `mapstructure:"token"`
	Admin Admin  `mapstructure:"admin"`
}

type Device struct {
	Mac   string `mapstructure:"mac"`
	Model string `mapstructure:"model"`
	Name  string `mapstructure:"name"`
}

// Measurement is a single reading of a ring. Nil readings were not reported.
type Measurement struct {
	HeartRate     *float64
	Oxygen        *float64
	Stress        *float64
	Temperature   *float64
	BloodPressure *health.BloodPressure
	Activity      health.Activity
	MeasuredAt    *time.Time
}

// Snapshot combines the measurement with a night of sleep.
func (m Measurement) Snapshot(sleep *health.SleepBreakdown) health.Snapshot {
	return health.Snapshot{
		HeartRate:     m.HeartRate,
		Oxygen:        m.Oxygen,
		Stress:        m.Stress,
		Temperature:   m.Temperature,
		BloodPressure: m.BloodPressure,
		Sleep:         sleep,
		Activity:      m.Activity,
		MeasuredAt:    m.MeasuredAt,
	}
}
