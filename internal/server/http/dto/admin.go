package dto

import "time"

// ActionSummaryResponse counts returns routed to one action.
type ActionSummaryResponse struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
	Credit int64  `json:"credit"`
}

// PolicyResponse describes the reward policy in force.
type PolicyResponse struct {
	Version    int64      `json:"version"`
	Multiplier float64    `json:"multiplier"`
	UpdatedBy  string     `json:"updated_by,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// UpdatePolicyRequest changes the multiplier. Version, when set, must match
// the policy version the admin last saw.
type UpdatePolicyRequest struct {
	Multiplier *float64 `json:"multiplier"`
	Version    *int64   `json:"version"`
}

// AdminResponse describes an admin account.
type AdminResponse struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}
