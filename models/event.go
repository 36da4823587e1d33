// api/models/event.go
package models

import (
	"time"
)

// RawEvent is one performance_timing event as exported from the analytics warehouse.
type RawEvent struct {
	EventID        string    `json:"eventId,omitempty"`
	EventDate      time.Time `json:"eventDate"`
	EventTimestamp time.Time `json:"eventTimestamp"`

	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
	Metro   string `json:"metro,omitempty"`

	Category              string `json:"category,omitempty"`
	MobileBrandName       string `json:"mobileBrandName,omitempty"`
	MobileModelName       string `json:"mobileModelName,omitempty"`
	OSSystem              string `json:"osSystem,omitempty"`
	OSSystemVersion       string `json:"osSystemVersion,omitempty"`
	Language              string `json:"language,omitempty"`
	WebInfoBrowser        string `json:"webInfoBrowser,omitempty"`
	WebInfoBrowserVersion string `json:"webInfoBrowserVersion,omitempty"`

	PageURL              string `json:"pageUrl"`
	PageLoadTimeMs       int64  `json:"pageLoadTimeMs"`
	ServerResponseTimeMs int64  `json:"serverResponseTimeMs"`
}

// CleanedEvent is a RawEvent after URL canonicalization and unit conversion.
type CleanedEvent struct {
	RawEvent
	PageURLCleaned string  `json:"pageUrlCleaned"`
	PagePathOne    string  `json:"pagePathOne"`
	PLTSec         float64 `json:"pltSec"`
	SRTSec         float64 `json:"srtSec"`
}
