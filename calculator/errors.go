package calculator

import (
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientData is returned by statistics that are undefined for an empty input.
var ErrInsufficientData = errors.New("insufficient data")

// InvalidDateError reports a window start date that cannot be parsed or a negative window.
type InvalidDateError struct {
	Value  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Value, e.Reason)
}

// SchemaError reports a required input column that is missing.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required column %q is missing", e.Column)
}

// EmptyWindowError reports a window that matched no active events. It is not fatal.
type EmptyWindowError struct {
	Period string
	Start  time.Time
	End    time.Time
}

func (e *EmptyWindowError) Error() string {
	return fmt.Sprintf("%s window %s to %s has no events",
		e.Period, e.Start.Format(time.DateOnly), e.End.Format(time.DateOnly))
}
