package health

import "time"

// Snapshot is the latest known state of a user. Nil readings were not
// reported by the device.
type Snapshot struct {
	HeartRate     *float64        `json:"heartRate,omitempty"`
	Oxygen        *float64        `json:"oxygen,omitempty"`
	Stress        *float64        `json:"stress,omitempty"`
	Temperature   *float64        `json:"temperature,omitempty"`
	BloodPressure *BloodPressure  `json:"bloodPressure,omitempty"`
	Sleep         *SleepBreakdown `json:"sleep,omitempty"`
	Activity      Activity        `json:"activity"`
	MeasuredAt    *time.Time      `json:"measuredAt,omitempty"`
}

type Evaluation struct {
	Statuses    map[Metric]Status `json:"statuses"`
	Overall     Status            `json:"overall"`
	SleepScore  *int              `json:"sleepScore,omitempty"`
	Achievement float64           `json:"achievement"`
}

// Evaluate classifies every metric of the snapshot against the profile and
// reduces them to an overall status.
func Evaluate(s Snapshot, p Profile) Evaluation {
	t := p.Thresholds

	var sleepScore *int
	if s.Sleep != nil && s.Sleep.HasData() {
		score := SleepScore(*s.Sleep)
		sleepScore = &score
	}

	statuses := map[Metric]Status{
		MetricHeartRate:     t.HeartRate.Classify(s.HeartRate),
		MetricOxygen:        t.Oxygen.Classify(s.Oxygen),
		MetricTemperature:   t.Temperature.Classify(s.Temperature),
		MetricBloodPressure: t.ClassifyBloodPressure(s.BloodPressure),
		MetricSleepScore:    t.SleepScore.Classify(intToFloat(sleepScore)),
		MetricStress:        t.Stress.Classify(s.Stress),
	}

	ordered := make([]Status, 0, len(Metrics))
	for _, m := range Metrics {
		ordered = append(ordered, statuses[m])
	}

	return Evaluation{
		Statuses:    statuses,
		Overall:     Worst(ordered...),
		SleepScore:  sleepScore,
		Achievement: Achievement(s.Activity, p.Goals),
	}
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
