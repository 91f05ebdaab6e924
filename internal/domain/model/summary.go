package model

import (
	"math"
	"time"
)

// LeaderboardEntry aggregates credits earned by a single user.
type LeaderboardEntry struct {
	Username    string
	TotalCredit int64
	Returns     int
}

// ActionSummary counts returns routed to a single action bucket.
type ActionSummary struct {
	Action Action
	Count  int
	Credit int64
}

// Profile summarizes a customer's activity.
type Profile struct {
	Login        string
	TotalCredit  int64
	Returns      int
	LastReturnAt *time.Time
}

// AddCredit returns total+credit for non-negative credits, saturating at math.MaxInt64.
func AddCredit(total, credit int64) int64 {
	if credit > 0 && total > math.MaxInt64-credit {
		return math.MaxInt64
	}
	return total + credit
}
