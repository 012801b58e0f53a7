package entity

import "time"

// Item represents one retrieved content entry belonging to a feed.
// The ID is freshly generated at parse time and is NOT the identity used
// for deduplication; two items are the same item iff their links are equal.
// Optional fields are omitted from the persisted form when absent.
type Item struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Published   *time.Time `json:"published,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Content     string     `json:"content,omitempty"`
	Author      string     `json:"author,omitempty"`
	RetrievedAt time.Time  `json:"retrieved_at"`
}
