// Package storage defines the persistence interfaces the services depend
// on. Three implementations exist: memory (tests, prototyping), postgres
// (direct SQL with atomic counters) and supabase (the hosted PostgREST
// backend).
package storage

import (
	"context"
	"errors"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/catalog"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/community"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/profile"
)

// ErrNotFound is returned by single-row lookups that match nothing.
// Services translate it to a typed not-found, never a hard failure.
var ErrNotFound = errors.New("storage: not found")

// PostStore persists community posts.
type PostStore interface {
	CreatePost(ctx context.Context, post community.Post) (community.Post, error)
	GetPost(ctx context.Context, id string) (community.Post, error)

	// ListPosts returns up to limit posts from offset in feed ranking
	// order: trending desc, likes desc, replies desc, created desc.
	// An empty category means no filter.
	ListPosts(ctx context.Context, category string, limit, offset int) ([]community.Post, error)

	// AdjustPostLikes moves the shared like counter by delta, clamped at
	// zero, and returns the new value.
	AdjustPostLikes(ctx context.Context, postID string, delta int) (int, error)

	// IncrementPostReplies bumps the reply counter by one.
	IncrementPostReplies(ctx context.Context, postID string) error
}

// ReplyStore persists post replies.
type ReplyStore interface {
	CreateReply(ctx context.Context, reply community.Reply) (community.Reply, error)
	GetReply(ctx context.Context, id string) (community.Reply, error)

	// ListTopLevelReplies returns a post's replies with no parent,
	// ascending by creation time.
	ListTopLevelReplies(ctx context.Context, postID string) ([]community.Reply, error)

	// ListChildReplies returns the direct children of a reply, ascending
	// by creation time.
	ListChildReplies(ctx context.Context, parentReplyID string) ([]community.Reply, error)
}

// LikeStore persists per-user like records. Anonymous likes never reach
// this store; they live in the client-local store.
type LikeStore interface {
	HasLike(ctx context.Context, postID, userID string) (bool, error)
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
}

// CatalogStore persists places, services, events and reviews.
type CatalogStore interface {
	ListPlaces(ctx context.Context) ([]catalog.Place, error)
	GetPlace(ctx context.Context, id string) (catalog.Place, error)
	CreatePlace(ctx context.Context, p catalog.Place) (catalog.Place, error)
	UpdatePlace(ctx context.Context, p catalog.Place) (catalog.Place, error)
	DeletePlace(ctx context.Context, id string) error

	ListServices(ctx context.Context, categorySlug string) ([]catalog.Service, error)
	GetService(ctx context.Context, id string) (catalog.Service, error)
	CreateService(ctx context.Context, s catalog.Service) (catalog.Service, error)
	UpdateService(ctx context.Context, s catalog.Service) (catalog.Service, error)
	DeleteService(ctx context.Context, id string) error

	ListEvents(ctx context.Context) ([]catalog.Event, error)
	GetEvent(ctx context.Context, id string) (catalog.Event, error)
	CreateEvent(ctx context.Context, e catalog.Event) (catalog.Event, error)
	UpdateEvent(ctx context.Context, e catalog.Event) (catalog.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	ListReviews(ctx context.Context, subject catalog.ReviewSubject, subjectID string) ([]catalog.Review, error)
	CreateReview(ctx context.Context, r catalog.Review) (catalog.Review, error)
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (profile.Profile, error)
	UpdateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error)

	// FirstProfile returns any existing profile. Post creation by an
	// anonymous caller is attributed to it.
	FirstProfile(ctx context.Context) (profile.Profile, error)

	GetProfileStats(ctx context.Context, userID string) (profile.Stats, error)
}
