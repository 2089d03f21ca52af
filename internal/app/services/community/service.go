// Package community implements the feed: paginated post listing, nested
// replies and like toggling.
package community

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/community"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/identity"
	"github.com/ninamcunha/amooora-backend/internal/app/storage"
	"github.com/ninamcunha/amooora-backend/internal/errors"
	"github.com/ninamcunha/amooora-backend/internal/metrics"
	"github.com/ninamcunha/amooora-backend/pkg/logger"
)

// DefaultPageSize is the feed page size.
const DefaultPageSize = 10

// Page is one feed page. HasMore reports whether another page exists,
// determined by over-fetching a single row rather than issuing a count.
type Page struct {
	Posts   []community.Post
	HasMore bool
}

// DeviceLikes records likes for anonymous identities on the device itself.
type DeviceLikes interface {
	IsPostLiked(ctx context.Context, localID, postID string) (bool, error)
	SetPostLiked(ctx context.Context, localID, postID string, liked bool) error
}

// Service coordinates posts, replies and likes.
type Service struct {
	posts    storage.PostStore
	replies  storage.ReplyStore
	likes    storage.LikeStore
	profiles storage.ProfileStore
	device   DeviceLikes
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// New constructs the community service.
func New(posts storage.PostStore, replies storage.ReplyStore, likes storage.LikeStore, profiles storage.ProfileStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("community")
	}
	return &Service{posts: posts, replies: replies, likes: likes, profiles: profiles, log: log}
}

// AttachDeviceLikes wires the device-local like store used for anonymous
// identities. Without it, anonymous like toggles are rejected.
func (s *Service) AttachDeviceLikes(device DeviceLikes) {
	s.device = device
}

// AttachMetrics wires feed instrumentation.
func (s *Service) AttachMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// normalizeCategory maps the sentinel and empty string to "no filter" and
// rejects unknown categories.
func normalizeCategory(category string) (string, error) {
	if category == "" || category == community.CategoryAll {
		return "", nil
	}
	if !community.ValidCategory(category) {
		return "", errors.Validation("unknown category: " + category)
	}
	return category, nil
}

// ListPosts returns one feed page. It fetches limit+1 rows and trims, so
// HasMore is exact without a separate count query.
func (s *Service) ListPosts(ctx context.Context, category string, limit, offset int) (Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	filter, err := normalizeCategory(category)
	if err != nil {
		return Page{}, err
	}

	posts, err := s.posts.ListPosts(ctx, filter, limit+1, offset)
	if err != nil {
		return Page{}, errors.FetchFailed("list posts", err)
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}
	if s.metrics != nil {
		s.metrics.RecordFeedPage()
	}
	return Page{Posts: posts, HasMore: hasMore}, nil
}

// GetPost fetches one post with its author.
func (s *Service) GetPost(ctx context.Context, id string) (community.Post, error) {
	if id == "" {
		return community.Post{}, errors.Validation("post id is required")
	}
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return community.Post{}, errors.NotFound("post not found")
		}
		return community.Post{}, errors.FetchFailed("get post", err)
	}
	return post, nil
}

// CreatePost publishes a new post. An anonymous identity is attributed to
// the first profile on record so the post still renders with an author.
func (s *Service) CreatePost(ctx context.Context, ident identity.ActingIdentity, post community.Post) (community.Post, error) {
	post.Title = strings.TrimSpace(post.Title)
	post.Content = strings.TrimSpace(post.Content)
	if post.Title == "" {
		return community.Post{}, errors.Validation("title is required")
	}
	if post.Content == "" {
		return community.Post{}, errors.Validation("content is required")
	}
	if post.Category == "" || post.Category == community.CategoryAll {
		post.Category = "Geral"
	}
	if !community.ValidCategory(post.Category) {
		return community.Post{}, errors.Validation("unknown category: " + post.Category)
	}

	if ident.IsAuthenticated() {
		post.UserID = ident.UserID()
	} else {
		fallback, err := s.profiles.FirstProfile(ctx)
		if err != nil {
			if stderrors.Is(err, storage.ErrNotFound) {
				return community.Post{}, errors.Validation("no profile available for anonymous post")
			}
			return community.Post{}, errors.FetchFailed("resolve fallback profile", err)
		}
		post.UserID = fallback.ID
		s.log.WithField("profile_id", fallback.ID).Debug("anonymous post attributed to fallback profile")
	}

	post.LikesCount = 0
	post.RepliesCount = 0
	post.IsTrending = false

	created, err := s.posts.CreatePost(ctx, post)
	if err != nil {
		return community.Post{}, errors.FetchFailed("create post", err)
	}
	s.log.WithFields(map[string]any{"post_id": created.ID, "category": created.Category}).Info("post created")
	return created, nil
}
