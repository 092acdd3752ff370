package model

import "time"

// CachedPage is a previously fetched page kept around so re-runs over the
// same input file do not refetch unchanged sources.
type CachedPage struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
