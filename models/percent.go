package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// NotApplicable is how an absent value is shown in tables and JSON.
const NotApplicable = "N/A"

// PercentChange is a period-over-period ratio that may have no baseline
// (the previous value was zero or missing).
type PercentChange struct {
	Value float64
	Valid bool
}

func Percent(v float64) PercentChange { return PercentChange{Value: v, Valid: true} }

func NoBaseline() PercentChange { return PercentChange{} }

func (p PercentChange) HasBaseline() bool { return p.Valid }

func (p PercentChange) String() string {
	if !p.Valid {
		return NotApplicable
	}
	return strconv.FormatFloat(p.Value*100, 'f', 2, 64) + "%"
}

// Compare orders numeric changes ascending and places no-baseline values after all of them.
func (p PercentChange) Compare(o PercentChange) int {
	switch {
	case !p.Valid && !o.Valid:
		return 0
	case !p.Valid:
		return 1
	case !o.Valid:
		return -1
	case p.Value < o.Value:
		return -1
	case p.Value > o.Value:
		return 1
	}
	return 0
}

func (p PercentChange) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return json.Marshal(NotApplicable)
	}
	return json.Marshal(p.Value)
}

func (p *PercentChange) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = NoBaseline()
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != NotApplicable {
			return fmt.Errorf("invalid percent change %q", s)
		}
		*p = NoBaseline()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid percent change: %w", err)
	}
	*p = Percent(v)
	return nil
}
