package health

import (
	"errors"
	"fmt"
)

var ErrInvalidThresholds = errors.New("invalid thresholds")

// Range holds the cutoffs of a metric that is unhealthy on both sides.
// Cutoffs are inclusive: a reading equal to DangerHigh is in danger.
type Range struct {
	WarningLow  float64 `json:"warningLow" bson:"warningLow" yaml:"warningLow"`
	WarningHigh float64 `json:"warningHigh" bson:"warningHigh" yaml:"warningHigh"`
	DangerLow   float64 `json:"dangerLow" bson:"dangerLow" yaml:"dangerLow"`
	DangerHigh  float64 `json:"dangerHigh" bson:"dangerHigh" yaml:"dangerHigh"`
}

func (r Range) Validate() error {
	if r.DangerLow > r.WarningLow || r.WarningLow > r.WarningHigh || r.WarningHigh > r.DangerHigh {
		return fmt.Errorf("%w: expected dangerLow <= warningLow <= warningHigh <= dangerHigh, got %v <= %v <= %v <= %v",
			ErrInvalidThresholds, r.DangerLow, r.WarningLow, r.WarningHigh, r.DangerHigh)
	}
	// The danger band cannot be empty
	if r.DangerLow >= r.DangerHigh {
		return fmt.Errorf("%w: expected dangerLow < dangerHigh, got %v >= %v", ErrInvalidThresholds, r.DangerLow, r.DangerHigh)
	}
	return nil
}

func (r Range) Classify(reading *float64) Status {
	if reading == nil {
		return StatusNoData
	}
	v := *reading
	switch {
	case v <= r.DangerLow || v >= r.DangerHigh:
		return StatusDanger
	case v <= r.WarningLow || v >= r.WarningHigh:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Floor holds the cutoffs of a metric that is only unhealthy when low.
type Floor struct {
	Warning float64 `json:"warning" bson:"warning" yaml:"warning"`
	Danger  float64 `json:"danger" bson:"danger" yaml:"danger"`
}

func (f Floor) Validate() error {
	if f.Danger > f.Warning {
		return fmt.Errorf("%w: expected danger <= warning, got %v > %v", ErrInvalidThresholds, f.Danger, f.Warning)
	}
	return nil
}

func (f Floor) Classify(reading *float64) Status {
	if reading == nil {
		return StatusNoData
	}
	v := *reading
	switch {
	case v < f.Danger:
		return StatusDanger
	case v < f.Warning:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Ceiling holds the cutoffs of a metric that is only unhealthy when high.
// Setting Warning equal to Danger leaves a single danger cutoff.
type Ceiling struct {
	Warning float64 `json:"warning" bson:"warning" yaml:"warning"`
	Danger  float64 `json:"danger" bson:"danger" yaml:"danger"`
}

func (c Ceiling) Validate() error {
	if c.Warning > c.Danger {
		return fmt.Errorf("%w: expected warning <= danger, got %v > %v", ErrInvalidThresholds, c.Warning, c.Danger)
	}
	return nil
}

func (c Ceiling) Classify(reading *float64) Status {
	if reading == nil {
		return StatusNoData
	}
	v := *reading
	switch {
	case v > c.Danger:
		return StatusDanger
	case v > c.Warning:
		return StatusWarning
	default:
		return StatusNormal
	}
}

type Thresholds struct {
	HeartRate   Range   `json:"heartRate" bson:"heartRate" yaml:"heartRate"`
	Oxygen      Floor   `json:"oxygen" bson:"oxygen" yaml:"oxygen"`
	Temperature Ceiling `json:"temperature" bson:"temperature" yaml:"temperature"`
	Systolic    Range   `json:"systolic" bson:"systolic" yaml:"systolic"`
	Diastolic   Range   `json:"diastolic" bson:"diastolic" yaml:"diastolic"`
	Stress      Ceiling `json:"stress" bson:"stress" yaml:"stress"`
	SleepScore  Floor   `json:"sleepScore" bson:"sleepScore" yaml:"sleepScore"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HeartRate: Range{
			WarningLow:  60,
			WarningHigh: 100,
			DangerLow:   50,
			DangerHigh:  110,
		},
		Oxygen: Floor{
			Warning: 95,
			Danger:  90,
		},
		Temperature: Ceiling{
			Warning: 37.5,
			Danger:  38.0,
		},
		Systolic: Range{
			WarningLow:  90,
			WarningHigh: 140,
			DangerLow:   80,
			DangerHigh:  180,
		},
		Diastolic: Range{
			WarningLow:  60,
			WarningHigh: 90,
			DangerLow:   50,
			DangerHigh:  120,
		},
		Stress: Ceiling{
			Warning: 60,
			Danger:  80,
		},
		SleepScore: Floor{
			Warning: 60,
			Danger:  40,
		},
	}
}

// Validate checks the ordering of every cutoff pair and reports all
// offending fields at once.
func (t Thresholds) Validate() error {
	checks := []struct {
		field string
		err   error
	}{
		{"heartRate", t.HeartRate.Validate()},
		{"oxygen", t.Oxygen.Validate()},
		{"temperature", t.Temperature.Validate()},
		{"systolic", t.Systolic.Validate()},
		{"diastolic", t.Diastolic.Validate()},
		{"stress", t.Stress.Validate()},
		{"sleepScore", t.SleepScore.Validate()},
	}

	var errs []error
	for _, c := range checks {
		if c.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.field, c.err))
		}
	}
	return errors.Join(errs...)
}

// BloodPressure is a paired systolic/diastolic reading in mmHg.
type BloodPressure struct {
	Systolic  float64 `json:"systolic" bson:"systolic"`
	Diastolic float64 `json:"diastolic" bson:"diastolic"`
}

// ClassifyBloodPressure returns the worse of the systolic and diastolic
// statuses.
func (t Thresholds) ClassifyBloodPressure(bp *BloodPressure) Status {
	if bp == nil {
		return StatusNoData
	}
	return Worst(t.Systolic.Classify(&bp.Systolic), t.Diastolic.Classify(&bp.Diastolic))
}
