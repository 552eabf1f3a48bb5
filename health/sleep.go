package health

import (
	"math"
	"time"
)

type SleepStage string

const (
	SleepStageAwake SleepStage = "awake"
	SleepStageLight SleepStage = "light"
	SleepStageDeep  SleepStage = "deep"
	SleepStageREM   SleepStage = "rem"
)

type SleepSession struct {
	Start time.Time  `json:"start" bson:"start"`
	End   time.Time  `json:"end" bson:"end"`
	Stage SleepStage `json:"stage" bson:"stage"`
}

// SleepBreakdown holds the minutes spent in each stage. Total is the time
// in bed and includes Awake.
type SleepBreakdown struct {
	Total float64 `json:"total" bson:"total"`
	Deep  float64 `json:"deep" bson:"deep"`
	Light float64 `json:"light" bson:"light"`
	REM   float64 `json:"rem" bson:"rem"`
	Awake float64 `json:"awake" bson:"awake"`
}

const (
	efficiencyWeight    = 40
	durationWeight      = 30
	structureWeight     = 30
	referenceSleepMins  = 420
	referenceDeepRatio  = 0.225
	maxSleepScoreResult = 100
)

func BreakdownFromSessions(sessions []SleepSession) SleepBreakdown {
	var b SleepBreakdown
	for _, s := range sessions {
		if !s.End.After(s.Start) {
			continue
		}
		minutes := s.End.Sub(s.Start).Minutes()
		switch s.Stage {
		case SleepStageDeep:
			b.Deep += minutes
		case SleepStageLight:
			b.Light += minutes
		case SleepStageREM:
			b.REM += minutes
		case SleepStageAwake:
			b.Awake += minutes
		default:
			continue
		}
		b.Total += minutes
	}
	return b
}

// HasData is false when the vendor reported no usable night: a zero total,
// deep or light duration means the ring did not track sleep.
func (b SleepBreakdown) HasData() bool {
	return b.Total > 0 && b.Deep > 0 && b.Light > 0
}

// SleepScore combines efficiency (40), duration against a 7h reference (30)
// and deep sleep ratio against 22.5% (30) into a 0-100 score.
func SleepScore(b SleepBreakdown) int {
	if !b.HasData() {
		return 0
	}

	sleepTime := math.Max(b.Total-b.Awake, 0)
	efficiency := math.Min(efficiencyWeight, math.Round(sleepTime/b.Total*efficiencyWeight))
	duration := math.Min(durationWeight, math.Round(b.Total/referenceSleepMins*durationWeight))
	structure := math.Min(structureWeight, math.Round(b.Deep/b.Total/referenceDeepRatio*structureWeight))

	score := efficiency + duration + structure
	return int(math.Round(math.Max(0, math.Min(maxSleepScoreResult, score))))
}
