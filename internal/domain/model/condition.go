package model

import "strings"

// Condition describes the state of a returned product as reported by the customer.
type Condition string

const (
	ConditionNew  Condition = "New"
	ConditionGood Condition = "Good"
	ConditionFair Condition = "Fair"
	ConditionPoor Condition = "Poor"
)

// Conditions lists every condition accepted by the submission form.
var Conditions = []Condition{ConditionNew, ConditionGood, ConditionFair, ConditionPoor}

// ParseCondition normalizes user input into a known condition.
func ParseCondition(raw string) (Condition, bool) {
	raw = strings.TrimSpace(raw)
	for _, c := range Conditions {
		if strings.EqualFold(raw, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// Action is the disposition bucket a return is routed to.
type Action string

const (
	ActionRRR    Action = "RRR"
	ActionRepair Action = "Repair"
	ActionResell Action = "Resell"
)

// Actions lists every action bucket in score order.
var Actions = []Action{ActionRRR, ActionRepair, ActionResell}

// Reward is the priced outcome of a scored return.
type Reward struct {
	Credit int64
	Action Action
}
