package model

import "time"

const (
	// PickupDateLayout is the accepted pickup date format.
	PickupDateLayout = "2006-01-02"
	// PickupTimeLayout is the accepted pickup time format (24h clock).
	PickupTimeLayout = "15:04"
)

// ReturnRecord is an immutable ledger entry created once per submission.
type ReturnRecord struct {
	ID            string
	Username      string
	ProductName   string
	Condition     Condition
	DaysUsed      int
	Score         float64
	Credit        int64
	Action        Action
	SubmittedAt   time.Time
	PickupDate    string
	PickupTime    string
	PolicyVersion int64
	ModelVersion  string
}

// SubmitReturn carries raw form input for a new return.
type SubmitReturn struct {
	ProductName string
	Condition   string
	DaysUsed    *int
	PickupDate  string
	PickupTime  string
}

// Score is the output of the scoring model for a single return.
type Score struct {
	Value        float64
	ModelVersion string
}
