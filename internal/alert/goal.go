package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Goal is the creator's goal overlay as sent by upstream.
type Goal struct {
	Title string `json:"Title"`
	// GoalAmount is null or a numeric string upstream. A bare number is kept as its literal text.
	GoalAmount         *string `json:"GoalAmount"`
	Currency           string  `json:"Currency"`
	ShowGoal           bool    `json:"ShowGoal"`
	ProgressPercentage float64 `json:"ProgressPercentage"`
}

func (g *Goal) UnmarshalJSON(data []byte) error {
	type plain Goal
	var raw struct {
		plain
		GoalAmount json.RawMessage `json:"GoalAmount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	amount, err := parseGoalAmount(raw.GoalAmount)
	if err != nil {
		return err
	}

	*g = Goal(raw.plain)
	g.GoalAmount = amount
	g.ProgressPercentage = clampPercentage(g.ProgressPercentage)
	return nil
}

func parseGoalAmount(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("GoalAmount: unsupported value %s", raw)
	}
	s := n.String()
	return &s, nil
}

func clampPercentage(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
