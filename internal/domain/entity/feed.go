// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Feed and Item, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// Cadence describes how often a feed is expected to be fetched.
type Cadence string

// Supported fetch cadences.
const (
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
	CadenceManual Cadence = "manual"
)

// Valid reports whether the cadence is one of the supported values.
func (c Cadence) Valid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceManual:
		return true
	}
	return false
}

// FetchStatus is the outcome of the most recent fetch attempt for a feed.
type FetchStatus string

// Fetch status values recorded on a feed after each attempt.
const (
	FetchStatusPending FetchStatus = "pending"
	FetchStatusSuccess FetchStatus = "success"
	FetchStatusFailure FetchStatus = "failure"
)

// Feed represents a registered content source in the system.
// The URL is unique across all registered feeds for as long as the feed exists;
// the ID is opaque, generated at registration time, and never changes.
type Feed struct {
	ID              string      `json:"id"`
	URL             string      `json:"url"`
	Title           string      `json:"title"`
	Category        string      `json:"category"`
	Cadence         Cadence     `json:"cadence"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	LastFetchedAt   *time.Time  `json:"last_fetched_at,omitempty"`
	LastFetchStatus FetchStatus `json:"last_fetch_status"`
	Enabled         bool        `json:"enabled"`
}
