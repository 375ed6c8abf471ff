package progress

import (
	"math"
	"time"
)

const (
	timeBonusRate = 0.2
	hintDecay     = 0.75
)

// RewardInput is what a case end contributes to the XP calculation.
type RewardInput struct {
	XPReward  int
	TimeLimit int // minutes
	Elapsed   time.Duration
	Completed bool
	Hints     int
}

// Reward breaks down the XP awarded for one case end.
type Reward struct {
	TimeBonus int `json:"time_bonus"`
	Base      int `json:"base"`
	Hints     int `json:"hints"`
	Final     int `json:"final"`
}

// WithinLimit reports whether elapsed beat a limit given in minutes.
func WithinLimit(elapsed time.Duration, limitMinutes int) bool {
	return elapsed.Minutes() < float64(limitMinutes)
}

// ComputeReward applies the time bonus and the compounding hint penalty.
// An uncompleted case earns nothing; the penalty still applies to zero.
func ComputeReward(in RewardInput) Reward {
	r := Reward{Hints: in.Hints}
	if in.Completed && WithinLimit(in.Elapsed, in.TimeLimit) {
		r.TimeBonus = int(math.Floor(float64(in.XPReward) * timeBonusRate))
	}
	if in.Completed {
		r.Base = in.XPReward + r.TimeBonus
	}
	r.Final = int(math.Floor(float64(r.Base) * math.Pow(hintDecay, float64(max(in.Hints, 0)))))
	return r
}
