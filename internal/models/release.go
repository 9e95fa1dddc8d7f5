package models

import "time"

// Release is a scheduled batch of new arrivals. Reservations for its products
// are accepted until Cutoff.
type Release struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ReleaseDate time.Time `json:"release_date"`
	Cutoff      time.Time `json:"reservation_cutoff"`
	Latest      bool      `json:"latest"`
}

// OpenAt reports whether the release still accepts reservations at t.
// A zero cutoff means the store did not set one.
func (r Release) OpenAt(t time.Time) bool {
	return r.Cutoff.IsZero() || t.Before(r.Cutoff)
}
