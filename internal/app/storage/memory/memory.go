// Package memory is a thread-safe in-memory implementation of the storage
// interfaces. It backs the tests and local prototyping; ranking and
// filtering match what the hosted backend computes server-side.
package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/catalog"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/community"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/profile"
	"github.com/ninamcunha/amooora-backend/internal/app/storage"

	"sync"
)

// Store implements every storage interface over mutex-guarded maps.
type Store struct {
	mu       sync.RWMutex
	posts    map[string]community.Post
	replies  map[string]community.Reply
	likes    map[string]struct{} // postID + "/" + userID
	places   map[string]catalog.Place
	services map[string]catalog.Service
	events   map[string]catalog.Event
	reviews  map[string]catalog.Review
	profiles map[string]profile.Profile

	// insertion order for profiles so FirstProfile is deterministic
	profileOrder []string
}

var _ storage.PostStore = (*Store)(nil)
var _ storage.ReplyStore = (*Store)(nil)
var _ storage.LikeStore = (*Store)(nil)
var _ storage.CatalogStore = (*Store)(nil)
var _ storage.ProfileStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		posts:    make(map[string]community.Post),
		replies:  make(map[string]community.Reply),
		likes:    make(map[string]struct{}),
		places:   make(map[string]catalog.Place),
		services: make(map[string]catalog.Service),
		events:   make(map[string]catalog.Event),
		reviews:  make(map[string]catalog.Review),
		profiles: make(map[string]profile.Profile),
	}
}

func likeKey(postID, userID string) string { return postID + "/" + userID }

// PostStore --------------------------------------------------------------

func (s *Store) CreatePost(_ context.Context, post community.Post) (community.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if prof, ok := s.profiles[post.UserID]; ok {
		post.Author = &community.Author{Name: prof.Name, Avatar: prof.Avatar}
	}
	s.posts[post.ID] = post
	return post, nil
}

func (s *Store) GetPost(_ context.Context, id string) (community.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return community.Post{}, storage.ErrNotFound
	}
	return post, nil
}

func (s *Store) ListPosts(_ context.Context, category string, limit, offset int) ([]community.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]community.Post, 0, len(s.posts))
	for _, post := range s.posts {
		if category != "" && post.Category != category {
			continue
		}
		ranked = append(ranked, post)
	}

	// Feed ranking: trending, likes, replies, then recency.
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.IsTrending != b.IsTrending {
			return a.IsTrending
		}
		if a.LikesCount != b.LikesCount {
			return a.LikesCount > b.LikesCount
		}
		if a.RepliesCount != b.RepliesCount {
			return a.RepliesCount > b.RepliesCount
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	if offset >= len(ranked) {
		return nil, nil
	}
	ranked = ranked[offset:]
	if limit >= 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	out := make([]community.Post, len(ranked))
	copy(out, ranked)
	return out, nil
}

func (s *Store) AdjustPostLikes(_ context.Context, postID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return 0, storage.ErrNotFound
	}
	post.LikesCount += delta
	if post.LikesCount < 0 {
		post.LikesCount = 0
	}
	s.posts[postID] = post
	return post.LikesCount, nil
}

func (s *Store) IncrementPostReplies(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return storage.ErrNotFound
	}
	post.RepliesCount++
	s.posts[postID] = post
	return nil
}

// ReplyStore -------------------------------------------------------------

func (s *Store) CreateReply(_ context.Context, reply community.Reply) (community.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[reply.PostID]; !ok {
		return community.Reply{}, storage.ErrNotFound
	}
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now().UTC()
	}
	if reply.UserID != "" {
		if prof, ok := s.profiles[reply.UserID]; ok {
			reply.Author = &community.Author{Name: prof.Name, Avatar: prof.Avatar}
			reply.AuthorName = prof.Name
		}
	}
	reply.Replies = nil
	s.replies[reply.ID] = reply
	return reply, nil
}

func (s *Store) GetReply(_ context.Context, id string) (community.Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reply, ok := s.replies[id]
	if !ok {
		return community.Reply{}, storage.ErrNotFound
	}
	return reply, nil
}

func (s *Store) ListTopLevelReplies(_ context.Context, postID string) ([]community.Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []community.Reply
	for _, reply := range s.replies {
		if reply.PostID == postID && reply.ParentReplyID == "" {
			out = append(out, reply)
		}
	}
	sortRepliesAsc(out)
	return out, nil
}

func (s *Store) ListChildReplies(_ context.Context, parentReplyID string) ([]community.Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []community.Reply
	for _, reply := range s.replies {
		if reply.ParentReplyID == parentReplyID {
			out = append(out, reply)
		}
	}
	sortRepliesAsc(out)
	return out, nil
}

func sortRepliesAsc(replies []community.Reply) {
	sort.SliceStable(replies, func(i, j int) bool {
		if replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].ID < replies[j].ID
		}
		return replies[i].CreatedAt.Before(replies[j].CreatedAt)
	})
}

// LikeStore --------------------------------------------------------------

func (s *Store) HasLike(_ context.Context, postID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.likes[likeKey(postID, userID)]
	return ok, nil
}

func (s *Store) AddLike(_ context.Context, postID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.likes[likeKey(postID, userID)] = struct{}{}
	return nil
}

func (s *Store) RemoveLike(_ context.Context, postID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.likes, likeKey(postID, userID))
	return nil
}

// CatalogStore -----------------------------------------------------------

func (s *Store) ListPlaces(_ context.Context) ([]catalog.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Place, 0, len(s.places))
	for _, p := range s.places {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetPlace(_ context.Context, id string) (catalog.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.places[id]
	if !ok {
		return catalog.Place{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) CreatePlace(_ context.Context, p catalog.Place) (catalog.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.places[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePlace(_ context.Context, p catalog.Place) (catalog.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.places[p.ID]
	if !ok {
		return catalog.Place{}, storage.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.places[p.ID] = p
	return p, nil
}

func (s *Store) DeletePlace(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.places[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.places, id)
	return nil
}

func (s *Store) ListServices(_ context.Context, categorySlug string) ([]catalog.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Service, 0, len(s.services))
	for _, svc := range s.services {
		if categorySlug != "" && !strings.EqualFold(svc.CategorySlug, categorySlug) {
			continue
		}
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetService(_ context.Context, id string) (catalog.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return catalog.Service{}, storage.ErrNotFound
	}
	return svc, nil
}

func (s *Store) CreateService(_ context.Context, svc catalog.Service) (catalog.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	s.services[svc.ID] = svc
	return svc, nil
}

func (s *Store) UpdateService(_ context.Context, svc catalog.Service) (catalog.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.services[svc.ID]
	if !ok {
		return catalog.Service{}, storage.ErrNotFound
	}
	svc.CreatedAt = existing.CreatedAt
	svc.UpdatedAt = time.Now().UTC()
	s.services[svc.ID] = svc
	return svc, nil
}

func (s *Store) DeleteService(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.services, id)
	return nil
}

func (s *Store) ListEvents(_ context.Context) ([]catalog.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) GetEvent(_ context.Context, id string) (catalog.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return catalog.Event{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateEvent(_ context.Context, e catalog.Event) (catalog.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	s.events[e.ID] = e
	return e, nil
}

func (s *Store) UpdateEvent(_ context.Context, e catalog.Event) (catalog.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.events[e.ID]
	if !ok {
		return catalog.Event{}, storage.ErrNotFound
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	s.events[e.ID] = e
	return e, nil
}

func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *Store) ListReviews(_ context.Context, subject catalog.ReviewSubject, subjectID string) ([]catalog.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []catalog.Review
	for _, r := range s.reviews {
		if r.Subject == subject && r.SubjectID == subjectID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateReview(_ context.Context, r catalog.Review) (catalog.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if prof, ok := s.profiles[r.UserID]; ok {
		r.UserName = prof.Name
		r.UserAvatar = prof.Avatar
	}
	s.reviews[r.ID] = r
	return r, nil
}

// ProfileStore -----------------------------------------------------------

func (s *Store) GetProfile(_ context.Context, id string) (profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return profile.Profile{}, storage.ErrNotFound
	}
	return p, nil
}

// CreateProfile registers a profile. Only the memory store exposes this;
// the hosted backend creates profiles during sign-up.
func (s *Store) CreateProfile(_ context.Context, p profile.Profile) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.profiles[p.ID] = p
	s.profileOrder = append(s.profileOrder, p.ID)
	return p, nil
}

func (s *Store) UpdateProfile(_ context.Context, p profile.Profile) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[p.ID]
	if !ok {
		return profile.Profile{}, storage.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.profiles[p.ID] = p
	return p, nil
}

func (s *Store) FirstProfile(_ context.Context) (profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.profileOrder) == 0 {
		return profile.Profile{}, storage.ErrNotFound
	}
	return s.profiles[s.profileOrder[0]], nil
}

func (s *Store) GetProfileStats(_ context.Context, userID string) (profile.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats profile.Stats
	for _, r := range s.reviews {
		if r.UserID == userID {
			stats.Reviews++
		}
	}
	return stats, nil
}
