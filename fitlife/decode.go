package fitlife

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/pointer"
)

var sleepStages = map[int]health.SleepStage{
	1: health.SleepStageDeep,
	2: health.SleepStageLight,
	3: health.SleepStageREM,
	4: health.SleepStageAwake,
}

type measurementPayload struct {
	Bpm         float64   `mapstructure:"bpm"`
	Oxygen      float64   `mapstructure:"oxygen"`
	Stress      float64   `mapstructure:"stress"`
	Temperature float64   `mapstructure:"temperature"`
	Systolic    float64   `mapstructure:"systolic"`
	Diastolic   float64   `mapstructure:"diastolic"`
	Steps       float64   `mapstructure:"steps"`
	Calories    float64   `mapstructure:"calories"`
	Distance    float64   `mapstructure:"distance"`
	MeasuredAt  time.Time `mapstructure:"measuredAt"`
}

// toMeasurement turns the vendor's 0 placeholder into a missing reading.
func (p measurementPayload) toMeasurement() Measurement {
	m := Measurement{
		HeartRate:   pointer.NonZero(p.Bpm),
		Oxygen:      pointer.NonZero(p.Oxygen),
		Stress:      pointer.NonZero(p.Stress),
		Temperature: pointer.NonZero(p.Temperature),
		Activity: health.Activity{
			Steps:    p.Steps,
			Calories: p.Calories,
			Distance: p.Distance,
		},
	}
	if !p.MeasuredAt.IsZero() {
		m.MeasuredAt = &p.MeasuredAt
	}
	if p.Systolic != 0 && p.Diastolic != 0 {
		m.BloodPressure = &health.BloodPressure{Systolic: p.Systolic, Diastolic: p.Diastolic}
	}
	return m
}

type sleepPayload struct {
	Sessions []struct {
		StartTime time.Time `mapstructure:"startTime"`
		EndTime   time.Time `mapstructure:"endTime"`
		SleepType int       `mapstructure:"sleepType"`
	} `mapstructure:"sessions"`
}

func (p sleepPayload) toSessions() []health.SleepSession {
	sessions := make([]health.SleepSession, 0, len(p.Sessions))
	for _, s := range p.Sessions {
		sessions = append(sessions, health.SleepSession{
			Start: s.StartTime,
			End:   s.EndTime,
			Stage: sleepStages[s.SleepType],
		})
	}
	return sessions
}

type historyPayload struct {
	Records []measurementPayload `mapstructure:"records"`
}

type devicesPayload struct {
	Devices []Device `mapstructure:"devices"`
}

// decode reads a JSON body into result. Numbers sent as strings and
// RFC3339 timestamps are accepted.
func decode(body io.Reader, result any) error {
	var raw any
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return fmt.Errorf("unable to parse fitlife response: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			emptyStringToZeroTime,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("unable to decode fitlife response: %w", err)
	}
	return nil
}

func emptyStringToZeroTime(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to == reflect.TypeOf(time.Time{}) && data.(string) == "" {
		return time.Time{}, nil
	}
	return data, nil
}
