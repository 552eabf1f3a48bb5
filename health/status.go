package health

import (
	"fmt"
)

// Status is the outcome of classifying a reading. The zero value is
// StatusNoData, which sorts below every real status.
type Status int

const (
	StatusNoData Status = iota
	StatusNormal
	StatusWarning
	StatusDanger
)

var statusNames = map[Status]string{
	StatusNoData:  "nodata",
	StatusNormal:  "normal",
	StatusWarning: "warning",
	StatusDanger:  "danger",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Alerting returns true for statuses that need attention.
func (s Status) Alerting() bool {
	return s >= StatusWarning
}

func ParseStatus(value string) (Status, error) {
	for status, name := range statusNames {
		if name == value {
			return status, nil
		}
	}
	return StatusNoData, fmt.Errorf("unknown status %q", value)
}

// Worst reduces statuses to the most severe one. The result does not depend
// on the order of the arguments; no arguments yield StatusNoData.
func Worst(statuses ...Status) Status {
	worst := StatusNoData
	for _, s := range statuses {
		if s > worst {
			worst = s
		}
	}
	return worst
}

// Metric names an evaluated vital sign.
type Metric string

const (
	MetricHeartRate     Metric = "heartRate"
	MetricOxygen        Metric = "oxygen"
	MetricTemperature   Metric = "temperature"
	MetricBloodPressure Metric = "bloodPressure"
	MetricSleepScore    Metric = "sleepScore"
	MetricStress        Metric = "stress"
)

// Metrics lists every metric in evaluation order.
var Metrics = []Metric{
	MetricHeartRate,
	MetricOxygen,
	MetricTemperature,
	MetricBloodPressure,
	MetricSleepScore,
	MetricStress,
}
