package community

import (
	"context"
	"sync"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/community"
)

// FeedSession accumulates feed pages for one consumer: an infinite-scroll
// view over the ranked feed. It tracks the offset and whether more pages
// exist, and ignores overlapping load requests so scroll events cannot
// fetch the same page twice.
type FeedSession struct {
	svc      *Service
	pageSize int

	mu       sync.Mutex
	category string
	posts    []community.Post
	offset   int
	hasMore  bool
	loading  bool
	lastErr  error
	// gen is bumped on every reset. A load started under an older
	// generation may not touch session state when it completes.
	gen int
}

// NewFeedSession creates a session over the whole feed. pageSize <= 0 uses
// the default.
func (s *Service) NewFeedSession(pageSize int) *FeedSession {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &FeedSession{
		svc:      s,
		pageSize: pageSize,
		category: community.CategoryAll,
		hasMore:  true,
	}
}

// Posts returns the accumulated posts.
func (f *FeedSession) Posts() []community.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]community.Post, len(f.posts))
	copy(out, f.posts)
	return out
}

// HasMore reports whether another page exists.
func (f *FeedSession) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Category returns the active category filter.
func (f *FeedSession) Category() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.category
}

// Err returns the error from the most recent load, or nil. A failed load
// keeps the accumulated posts; the next successful load clears it.
func (f *FeedSession) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// LoadMore appends the next page. It returns (false, nil) without fetching
// when a load is already in flight or the feed is exhausted, so callers
// can wire it straight to scroll events.
func (f *FeedSession) LoadMore(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.loading || !f.hasMore {
		f.mu.Unlock()
		return false, nil
	}
	f.loading = true
	category := f.category
	offset := f.offset
	gen := f.gen
	f.mu.Unlock()

	page, err := f.svc.ListPosts(ctx, category, f.pageSize, offset)

	f.mu.Lock()
	defer f.mu.Unlock()
	// A reset while loading discards this page entirely: the reset owns
	// the loading flag and lastErr now.
	if gen != f.gen {
		return false, nil
	}
	f.loading = false
	if err != nil {
		f.lastErr = err
		return false, err
	}
	f.lastErr = nil
	f.posts = append(f.posts, page.Posts...)
	f.offset += len(page.Posts)
	f.hasMore = page.HasMore
	return len(page.Posts) > 0, nil
}

// SetCategory switches the filter and reloads from the first page. Setting
// the current category is a no-op.
func (f *FeedSession) SetCategory(ctx context.Context, category string) error {
	f.mu.Lock()
	if category == f.category {
		f.mu.Unlock()
		return nil
	}
	f.category = category
	f.reset()
	f.mu.Unlock()

	_, err := f.LoadMore(ctx)
	return err
}

// Refetch reloads the first page for the current category, discarding the
// accumulated posts. Used after a mutation that changes ranking.
func (f *FeedSession) Refetch(ctx context.Context) error {
	f.mu.Lock()
	f.reset()
	f.mu.Unlock()

	_, err := f.LoadMore(ctx)
	return err
}

// reset clears the accumulated state and invalidates in-flight loads.
// Callers must hold f.mu.
func (f *FeedSession) reset() {
	f.posts = nil
	f.offset = 0
	f.hasMore = true
	f.loading = false
	f.lastErr = nil
	f.gen++
}
