package models

import "time"

// AnonymousRequester marks hits from viewers with no authenticated session.
const AnonymousRequester = "anonymous"

// Hit is one observed retrieval of a tracking artifact. Rows are append-only:
// the core never updates or deletes them. Geo columns are independently
// nullable; nil means resolution failed or was skipped, never a default.
type Hit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TrackID     string    `gorm:"index;not null" json:"track_id"`
	RequesterID string    `json:"user_id"`
	IPAddress   string    `json:"ip"`
	UserAgent   string    `json:"ua"`
	CreatedAt   time.Time `json:"ts"`

	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lon"`
	City      *string  `json:"city"`
	Region    *string  `json:"region"`
	Country   *string  `json:"country"`
}
