package models

import "time"

// ReportRun is the history entry written for every generated report.
type ReportRun struct {
	ID             string    `json:"id"`
	PreviousStart  time.Time `json:"previousStart"`
	CurrentStart   time.Time `json:"currentStart"`
	WindowDays     int       `json:"windowDays"`
	PreviousEvents int       `json:"previousEvents"`
	CurrentEvents  int       `json:"currentEvents"`
	URLCount       int       `json:"urlCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ActiveURLsRequest struct {
	URLs []string `json:"urls" binding:"required"`
}
