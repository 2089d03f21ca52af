// Package catalog holds the directory content: safe places, services and
// events, plus their reviews.
package catalog

import "time"

// Place is a mapped safe place.
type Place struct {
	ID          string
	Name        string
	Description string
	Image       string
	Address     string
	Rating      float64
	Category    string
	Latitude    float64
	Longitude   float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Service is a listed community service or professional.
type Service struct {
	ID           string
	Name         string
	Description  string
	Image        string
	Price        float64
	Category     string
	CategorySlug string
	Rating       float64
	Provider     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event is a listed community event.
type Event struct {
	ID          string
	Name        string
	Description string
	Image       string
	Date        time.Time
	Location    string
	Category    string
	Price       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReviewSubject names the entity kind a review is attached to.
type ReviewSubject string

const (
	SubjectPlace   ReviewSubject = "place"
	SubjectService ReviewSubject = "service"
	SubjectEvent   ReviewSubject = "event"
)

// Review is a user rating of a place, service or event.
type Review struct {
	ID         string
	Subject    ReviewSubject
	SubjectID  string
	UserID     string
	UserName   string
	UserAvatar string
	Rating     int // 1..5
	Comment    string
	CreatedAt  time.Time
}
