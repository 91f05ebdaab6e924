package dto

import "time"

// SubmitReturnRequest describes the return submission form.
type SubmitReturnRequest struct {
	ProductName string `json:"product_name"`
	Condition   string `json:"condition"`
	DaysUsed    *int   `json:"days_used"`
	PickupDate  string `json:"pickup_date"`
	PickupTime  string `json:"pickup_time"`
}

// ReturnResponse describes a ledger entry.
type ReturnResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	ProductName   string    `json:"product_name"`
	Condition     string    `json:"condition"`
	DaysUsed      int       `json:"days_used"`
	Score         float64   `json:"score"`
	Credit        int64     `json:"credit"`
	Action        string    `json:"action"`
	SubmittedAt   time.Time `json:"submitted_at"`
	PickupDate    string    `json:"pickup_date"`
	PickupTime    string    `json:"pickup_time"`
	PolicyVersion int64     `json:"policy_version"`
	ModelVersion  string    `json:"model_version,omitempty"`
}

// ProfileResponse summarizes a customer's credit.
type ProfileResponse struct {
	Login        string     `json:"login"`
	TotalCredit  int64      `json:"total_credit"`
	Returns      int        `json:"returns"`
	LastReturnAt *time.Time `json:"last_return_at,omitempty"`
}

// LeaderboardEntryResponse is one leaderboard row.
type LeaderboardEntryResponse struct {
	Rank        int    `json:"rank"`
	Username    string `json:"username"`
	TotalCredit int64  `json:"total_credit"`
	Returns     int    `json:"returns"`
}
