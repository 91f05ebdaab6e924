package model

import "time"

// RewardPolicy is a persisted version of the reward economics.
// Version 0 denotes the built-in default that was never saved.
type RewardPolicy struct {
	Version    int64
	Multiplier float64
	UpdatedBy  string
	UpdatedAt  time.Time
}

// MaxMultiplier is the largest multiplier a policy may carry. With scores
// bounded to [0,100] it keeps every credit far below the int64 range.
const MaxMultiplier = 1000
