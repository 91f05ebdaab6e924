package usecase

import (
	"math"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

// Action bucket upper bounds, inclusive.
const (
	RRRMaxScore    = 33
	RepairMaxScore = 66
)

// Reward prices a scored return. Credit is score*multiplier rounded half to even,
// never negative and saturated at math.MaxInt64.
func Reward(score, multiplier float64) model.Reward {
	credit := math.RoundToEven(score * multiplier)
	switch {
	case math.IsNaN(credit) || credit < 0:
		return model.Reward{Credit: 0, Action: ActionFor(score)}
	case credit >= math.MaxInt64:
		return model.Reward{Credit: math.MaxInt64, Action: ActionFor(score)}
	}
	return model.Reward{Credit: int64(credit), Action: ActionFor(score)}
}

// ActionFor maps a score to its disposition bucket.
func ActionFor(score float64) model.Action {
	switch {
	case score <= RRRMaxScore:
		return model.ActionRRR
	case score <= RepairMaxScore:
		return model.ActionRepair
	default:
		return model.ActionResell
	}
}
