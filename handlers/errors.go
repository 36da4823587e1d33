package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"pageperf/api/calculator"
)

// statusFor maps input errors to 400 and everything else to 500.
func statusFor(err error) int {
	var dateErr *calculator.InvalidDateError
	var schemaErr *calculator.SchemaError
	switch {
	case errors.As(err, &dateErr), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ReportInvalidator drops cached reports once their inputs change.
type ReportInvalidator interface {
	InvalidateReports(ctx context.Context) error
}

// invalidate runs after a successful write. A failure leaves the write in place and is logged.
func invalidate(ctx context.Context, reports ReportInvalidator) {
	if reports == nil {
		return
	}
	if err := reports.InvalidateReports(ctx); err != nil {
		slog.Error("failed to invalidate cached reports", "error", err)
	}
}
