// Package catalog exposes the directory side of the app: places, services
// and events, plus their reviews.
package catalog

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/catalog"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/identity"
	"github.com/ninamcunha/amooora-backend/internal/app/storage"
	"github.com/ninamcunha/amooora-backend/internal/errors"
	"github.com/ninamcunha/amooora-backend/pkg/logger"
)

// Service manages catalog entries and reviews.
type Service struct {
	store storage.CatalogStore
	log   *logger.Logger
}

// New constructs the catalog service.
func New(store storage.CatalogStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	return &Service{store: store, log: log}
}

func mapGetErr(err error, what string) error {
	if stderrors.Is(err, storage.ErrNotFound) {
		return errors.NotFound(what + " not found")
	}
	return errors.FetchFailed("get "+what, err)
}

// ListPlaces returns all places ordered by name.
func (s *Service) ListPlaces(ctx context.Context) ([]catalog.Place, error) {
	places, err := s.store.ListPlaces(ctx)
	if err != nil {
		return nil, errors.FetchFailed("list places", err)
	}
	return places, nil
}

// GetPlace fetches one place.
func (s *Service) GetPlace(ctx context.Context, id string) (catalog.Place, error) {
	place, err := s.store.GetPlace(ctx, id)
	if err != nil {
		return catalog.Place{}, mapGetErr(err, "place")
	}
	return place, nil
}

// CreatePlace registers a place.
func (s *Service) CreatePlace(ctx context.Context, p catalog.Place) (catalog.Place, error) {
	if strings.TrimSpace(p.Name) == "" {
		return catalog.Place{}, errors.Validation("name is required")
	}
	created, err := s.store.CreatePlace(ctx, p)
	if err != nil {
		return catalog.Place{}, errors.FetchFailed("create place", err)
	}
	s.log.WithField("place_id", created.ID).Info("place created")
	return created, nil
}

// UpdatePlace overwrites a place.
func (s *Service) UpdatePlace(ctx context.Context, p catalog.Place) (catalog.Place, error) {
	if p.ID == "" {
		return catalog.Place{}, errors.Validation("place id is required")
	}
	updated, err := s.store.UpdatePlace(ctx, p)
	if err != nil {
		return catalog.Place{}, mapGetErr(err, "place")
	}
	return updated, nil
}

// DeletePlace removes a place.
func (s *Service) DeletePlace(ctx context.Context, id string) error {
	if err := s.store.DeletePlace(ctx, id); err != nil {
		return mapGetErr(err, "place")
	}
	return nil
}

// ListServices returns services, optionally filtered by category slug.
func (s *Service) ListServices(ctx context.Context, categorySlug string) ([]catalog.Service, error) {
	services, err := s.store.ListServices(ctx, categorySlug)
	if err != nil {
		return nil, errors.FetchFailed("list services", err)
	}
	return services, nil
}

// GetService fetches one service entry.
func (s *Service) GetService(ctx context.Context, id string) (catalog.Service, error) {
	svc, err := s.store.GetService(ctx, id)
	if err != nil {
		return catalog.Service{}, mapGetErr(err, "service")
	}
	return svc, nil
}

// CreateService registers a service entry.
func (s *Service) CreateService(ctx context.Context, svc catalog.Service) (catalog.Service, error) {
	if strings.TrimSpace(svc.Name) == "" {
		return catalog.Service{}, errors.Validation("name is required")
	}
	if svc.CategorySlug == "" {
		svc.CategorySlug = slugify(svc.Category)
	}
	created, err := s.store.CreateService(ctx, svc)
	if err != nil {
		return catalog.Service{}, errors.FetchFailed("create service", err)
	}
	s.log.WithField("service_id", created.ID).Info("service created")
	return created, nil
}

// UpdateService overwrites a service entry.
func (s *Service) UpdateService(ctx context.Context, svc catalog.Service) (catalog.Service, error) {
	if svc.ID == "" {
		return catalog.Service{}, errors.Validation("service id is required")
	}
	updated, err := s.store.UpdateService(ctx, svc)
	if err != nil {
		return catalog.Service{}, mapGetErr(err, "service")
	}
	return updated, nil
}

// DeleteService removes a service entry.
func (s *Service) DeleteService(ctx context.Context, id string) error {
	if err := s.store.DeleteService(ctx, id); err != nil {
		return mapGetErr(err, "service")
	}
	return nil
}

// ListEvents returns all events ordered by date.
func (s *Service) ListEvents(ctx context.Context) ([]catalog.Event, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, errors.FetchFailed("list events", err)
	}
	return events, nil
}

// GetEvent fetches one event.
func (s *Service) GetEvent(ctx context.Context, id string) (catalog.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return catalog.Event{}, mapGetErr(err, "event")
	}
	return event, nil
}

// CreateEvent registers an event.
func (s *Service) CreateEvent(ctx context.Context, e catalog.Event) (catalog.Event, error) {
	if strings.TrimSpace(e.Name) == "" {
		return catalog.Event{}, errors.Validation("name is required")
	}
	if e.Date.IsZero() {
		return catalog.Event{}, errors.Validation("date is required")
	}
	created, err := s.store.CreateEvent(ctx, e)
	if err != nil {
		return catalog.Event{}, errors.FetchFailed("create event", err)
	}
	s.log.WithField("event_id", created.ID).Info("event created")
	return created, nil
}

// UpdateEvent overwrites an event.
func (s *Service) UpdateEvent(ctx context.Context, e catalog.Event) (catalog.Event, error) {
	if e.ID == "" {
		return catalog.Event{}, errors.Validation("event id is required")
	}
	updated, err := s.store.UpdateEvent(ctx, e)
	if err != nil {
		return catalog.Event{}, mapGetErr(err, "event")
	}
	return updated, nil
}

// DeleteEvent removes an event.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return mapGetErr(err, "event")
	}
	return nil
}

// ListReviews returns the reviews for one catalog entry, newest first.
func (s *Service) ListReviews(ctx context.Context, subject catalog.ReviewSubject, subjectID string) ([]catalog.Review, error) {
	if !validSubject(subject) {
		return nil, errors.Validation("unknown review subject: " + string(subject))
	}
	if subjectID == "" {
		return nil, errors.Validation("subject id is required")
	}
	reviews, err := s.store.ListReviews(ctx, subject, subjectID)
	if err != nil {
		return nil, errors.FetchFailed("list reviews", err)
	}
	return reviews, nil
}

// CreateReview records a review by the acting user. Anonymous identities
// cannot review.
func (s *Service) CreateReview(ctx context.Context, ident identity.ActingIdentity, r catalog.Review) (catalog.Review, error) {
	if !ident.IsAuthenticated() {
		return catalog.Review{}, errors.Unauthorized("sign in to leave a review")
	}
	if !validSubject(r.Subject) {
		return catalog.Review{}, errors.Validation("unknown review subject: " + string(r.Subject))
	}
	if r.SubjectID == "" {
		return catalog.Review{}, errors.Validation("subject id is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return catalog.Review{}, errors.Validation("rating must be between 1 and 5")
	}
	r.UserID = ident.UserID()

	created, err := s.store.CreateReview(ctx, r)
	if err != nil {
		return catalog.Review{}, errors.FetchFailed("create review", err)
	}
	s.log.WithFields(map[string]any{"review_id": created.ID, "subject": string(created.Subject)}).Info("review created")
	return created, nil
}

func validSubject(subject catalog.ReviewSubject) bool {
	switch subject {
	case catalog.SubjectPlace, catalog.SubjectService, catalog.SubjectEvent:
		return true
	}
	return false
}

func slugify(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}
