// Package profiles manages user profiles and their activity stats.
package profiles

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/identity"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/profile"
	"github.com/ninamcunha/amooora-backend/internal/app/storage"
	"github.com/ninamcunha/amooora-backend/internal/errors"
	"github.com/ninamcunha/amooora-backend/pkg/logger"
)

// Attendance tracks device-local attended events. Attendance never reaches
// the hosted backend; it only feeds the stats card.
type Attendance interface {
	AttendedEvents(ctx context.Context, localID string) ([]string, error)
	MarkEventAttended(ctx context.Context, localID, eventID string) error
	UnmarkEventAttended(ctx context.Context, localID, eventID string) error
}

// Service manages profiles.
type Service struct {
	store      storage.ProfileStore
	attendance Attendance
	log        *logger.Logger
}

// New constructs the profile service.
func New(store storage.ProfileStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("profiles")
	}
	return &Service{store: store, log: log}
}

// AttachAttendance wires the device-local attendance store.
func (s *Service) AttachAttendance(a Attendance) {
	s.attendance = a
}

// Get fetches a profile by id.
func (s *Service) Get(ctx context.Context, id string) (profile.Profile, error) {
	if id == "" {
		return profile.Profile{}, errors.Validation("profile id is required")
	}
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return profile.Profile{}, errors.NotFound("profile not found")
		}
		return profile.Profile{}, errors.FetchFailed("get profile", err)
	}
	return p, nil
}

// Update overwrites the acting user's own profile. One user cannot edit
// another's profile.
func (s *Service) Update(ctx context.Context, ident identity.ActingIdentity, p profile.Profile) (profile.Profile, error) {
	if !ident.IsAuthenticated() {
		return profile.Profile{}, errors.Unauthorized("sign in to edit your profile")
	}
	if p.ID == "" {
		p.ID = ident.UserID()
	}
	if p.ID != ident.UserID() {
		return profile.Profile{}, errors.Unauthorized("cannot edit another user's profile")
	}
	if strings.TrimSpace(p.Name) == "" {
		return profile.Profile{}, errors.Validation("name is required")
	}

	updated, err := s.store.UpdateProfile(ctx, p)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return profile.Profile{}, errors.NotFound("profile not found")
		}
		return profile.Profile{}, errors.FetchFailed("update profile", err)
	}
	s.log.WithField("profile_id", updated.ID).Info("profile updated")
	return updated, nil
}

// Stats assembles the profile activity card. Backend-held numbers come
// from the store; attended events are device-local and only available when
// the caller supplies its local id.
func (s *Service) Stats(ctx context.Context, ident identity.ActingIdentity, localID string) (profile.Stats, error) {
	var stats profile.Stats

	if ident.IsAuthenticated() {
		backend, err := s.store.GetProfileStats(ctx, ident.UserID())
		if err != nil {
			return profile.Stats{}, errors.FetchFailed("profile stats", err)
		}
		stats = backend
	}

	if s.attendance != nil && localID != "" {
		attended, err := s.attendance.AttendedEvents(ctx, localID)
		if err != nil {
			// Device state is best effort; the card renders without it.
			s.log.WithError(err).Warn("attended events unavailable")
		} else {
			stats.EventsAttended = len(attended)
		}
	}
	return stats, nil
}

// MarkAttended records an attended event for the device.
func (s *Service) MarkAttended(ctx context.Context, localID, eventID string) error {
	if s.attendance == nil {
		return errors.Validation("attendance tracking is not enabled")
	}
	if localID == "" || eventID == "" {
		return errors.Validation("local id and event id are required")
	}
	if err := s.attendance.MarkEventAttended(ctx, localID, eventID); err != nil {
		return errors.Internal("mark attended", err)
	}
	return nil
}

// UnmarkAttended removes an attended-event record for the device.
func (s *Service) UnmarkAttended(ctx context.Context, localID, eventID string) error {
	if s.attendance == nil {
		return errors.Validation("attendance tracking is not enabled")
	}
	if localID == "" || eventID == "" {
		return errors.Validation("local id and event id are required")
	}
	if err := s.attendance.UnmarkEventAttended(ctx, localID, eventID); err != nil {
		return errors.Internal("unmark attended", err)
	}
	return nil
}
