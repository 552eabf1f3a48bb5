package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/kimm528/ringfitmanager/devices"
	"github.com/kimm528/ringfitmanager/errors"
	"github.com/kimm528/ringfitmanager/fitlife"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/monitoring"
	"github.com/kimm528/ringfitmanager/users"
)

const (
	MaxPeriod     = 31 * 24 * time.Hour
	DefaultPeriod = 7 * 24 * time.Hour
)

var ErrInvalidPeriod = fmt.Errorf("%w: invalid report period", errors.BadRequest)

type Service interface {
	HealthReport(ctx context.Context, userId string, period Period) (*HealthReport, error)
	RosterAudit(ctx context.Context) (*RosterAudit, error)
}

// Period is a half-open time range [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

// NewPeriod defaults missing bounds to the last seven days ending at now.
func NewPeriod(from, to *time.Time, now time.Time) (Period, error) {
	p := Period{To: now}
	if to != nil {
		p.To = *to
	}
	p.From = p.To.Add(-DefaultPeriod)
	if from != nil {
		p.From = *from
	}

	if !p.To.After(p.From) {
		return Period{}, fmt.Errorf("%w: from must be before to", ErrInvalidPeriod)
	}
	if p.To.Sub(p.From) > MaxPeriod {
		return Period{}, fmt.Errorf("%w: period cannot exceed %d days", ErrInvalidPeriod, int(MaxPeriod.Hours()/24))
	}
	return p, nil
}

// Days returns the start of each calendar day touched by the period.
func (p Period) Days() []time.Time {
	var days []time.Time
	day := time.Date(p.From.Year(), p.From.Month(), p.From.Day(), 0, 0, 0, 0, p.From.Location())
	for day.Before(p.To) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}

type HealthReport struct {
	Period        Period
	Current       monitoring.Card
	Readings      []Reading
	Nights        []Night
	GeneratedTime time.Time
}

// Reading is a historical measurement with its classification.
type Reading struct {
	fitlife.Measurement
	Evaluation health.Evaluation
}

// Night is the sleep recorded for the night ending on Date.
type Night struct {
	Date      time.Time
	Breakdown health.SleepBreakdown
	Score     *int
	Status    health.Status
}

type RosterAudit struct {
	Users         []*users.User
	Devices       []*devices.Device
	Duplicates    []users.DuplicateCluster
	GeneratedTime time.Time
}
