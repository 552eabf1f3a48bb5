package health

import (
	"errors"
	"fmt"
	"math"
)

// Goals are the daily activity targets of a user.
type Goals struct {
	Steps    float64 `json:"steps" bson:"steps" yaml:"steps"`
	Calories float64 `json:"calories" bson:"calories" yaml:"calories"`
	Distance float64 `json:"distance" bson:"distance" yaml:"distance"`
}

// Activity is what the ring counted so far today. Distance is in km.
type Activity struct {
	Steps    float64 `json:"steps" bson:"steps"`
	Calories float64 `json:"calories" bson:"calories"`
	Distance float64 `json:"distance" bson:"distance"`
}

var ErrInvalidGoals = errors.New("invalid goals")

func DefaultGoals() Goals {
	return Goals{
		Steps:    10000,
		Calories: 2000,
		Distance: 5,
	}
}

func (g Goals) Validate() error {
	if g.Steps < 0 || g.Calories < 0 || g.Distance < 0 {
		return fmt.Errorf("%w: goals cannot be negative", ErrInvalidGoals)
	}
	return nil
}

// Percent is the share of goal reached, capped at 100. A missing goal
// yields 0 instead of dividing by zero.
func Percent(actual, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return math.Max(0, math.Min(actual/goal*100, 100))
}

// Achievement averages the step, calorie and distance percents.
func Achievement(a Activity, g Goals) float64 {
	return (Percent(a.Steps, g.Steps) + Percent(a.Calories, g.Calories) + Percent(a.Distance, g.Distance)) / 3
}
