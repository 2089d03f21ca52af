// Package profile holds user profile data owned by the backend.
package profile

import "time"

// Profile is a user profile row, keyed by the Supabase auth user id.
type Profile struct {
	ID        string
	Name      string
	Email     string
	Avatar    string
	Phone     string
	Bio       string
	Pronouns  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats aggregates a profile's activity counters for the profile page.
type Stats struct {
	EventsAttended int
	EventsUpcoming int
	SavedPlaces    int
	Reviews        int
}
