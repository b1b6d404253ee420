package models

import "time"

// Page is the result of mining one URL under a masked identity.
type Page struct {
	URL         string    `json:"url"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type,omitempty"`
	Title       string    `json:"title,omitempty"`
	Links       []string  `json:"links,omitempty"`
	Bytes       int       `json:"bytes"`
	Identity    string    `json:"identity"`
	FetchedAt   time.Time `json:"fetched_at"`
	Elapsed     float64   `json:"elapsed_seconds"`
}
