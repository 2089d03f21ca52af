package community

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/community"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/identity"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/profile"
	"github.com/ninamcunha/amooora-backend/internal/app/storage/memory"
	"github.com/ninamcunha/amooora-backend/internal/errors"
	"github.com/ninamcunha/amooora-backend/pkg/logger"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := New(store, store, store, store, logger.NewNop())
	return svc, store
}

func seedProfile(name string) profile.Profile {
	return profile.Profile{Name: name, Email: name + "@example.com", Avatar: name + ".png"}
}

func seedPost(t *testing.T, store *memory.Store, post community.Post) community.Post {
	t.Helper()
	created, err := store.CreatePost(context.Background(), post)
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return created
}

func TestListPostsRanking(t *testing.T) {
	svc, store := newTestService(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	// Newest post, but no engagement.
	seedPost(t, store, community.Post{ID: "recent", Title: "r", Content: "r", Category: "Geral", UserID: "u1", CreatedAt: base.Add(3 * time.Hour)})
	// Most likes.
	seedPost(t, store, community.Post{ID: "liked", Title: "l", Content: "l", Category: "Geral", UserID: "u1", LikesCount: 9, CreatedAt: base})
	// Trending wins over everything.
	seedPost(t, store, community.Post{ID: "hot", Title: "h", Content: "h", Category: "Geral", UserID: "u1", IsTrending: true, CreatedAt: base.Add(time.Hour)})
	// Same likes as none, more replies than "recent".
	seedPost(t, store, community.Post{ID: "replied", Title: "p", Content: "p", Category: "Geral", UserID: "u1", RepliesCount: 4, CreatedAt: base.Add(2 * time.Hour)})

	page, err := svc.ListPosts(context.Background(), community.CategoryAll, 10, 0)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}

	want := []string{"hot", "liked", "replied", "recent"}
	if len(page.Posts) != len(want) {
		t.Fatalf("expected %d posts, got %d", len(want), len(page.Posts))
	}
	for i, id := range want {
		if page.Posts[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, page.Posts[i].ID)
		}
	}
	if page.HasMore {
		t.Fatalf("expected no further pages")
	}
}

func TestListPostsCategoryFilter(t *testing.T) {
	svc, store := newTestService(t)

	seedPost(t, store, community.Post{Title: "a", Content: "a", Category: "Eventos", UserID: "u1"})
	seedPost(t, store, community.Post{Title: "b", Content: "b", Category: "Apoio", UserID: "u1"})
	seedPost(t, store, community.Post{Title: "c", Content: "c", Category: "Eventos", UserID: "u1"})

	page, err := svc.ListPosts(context.Background(), "Eventos", 10, 0)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(page.Posts) != 2 {
		t.Fatalf("expected 2 Eventos posts, got %d", len(page.Posts))
	}
	for _, p := range page.Posts {
		if p.Category != "Eventos" {
			t.Fatalf("unexpected category %s", p.Category)
		}
	}

	// The sentinel returns everything.
	page, err = svc.ListPosts(context.Background(), community.CategoryAll, 10, 0)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(page.Posts) != 3 {
		t.Fatalf("expected all 3 posts, got %d", len(page.Posts))
	}

	if _, err := svc.ListPosts(context.Background(), "Nonsense", 10, 0); !errors.IsValidation(err) {
		t.Fatalf("expected validation error for unknown category, got %v", err)
	}
}

func TestListPostsHasMoreIsExact(t *testing.T) {
	svc, store := newTestService(t)

	for i := 0; i < 10; i++ {
		seedPost(t, store, community.Post{Title: fmt.Sprintf("t%d", i), Content: "c", Category: "Geral", UserID: "u1"})
	}

	// Exactly one page: the over-fetch finds no 11th row.
	page, err := svc.ListPosts(context.Background(), "", 10, 0)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(page.Posts) != 10 {
		t.Fatalf("expected 10 posts, got %d", len(page.Posts))
	}
	if page.HasMore {
		t.Fatalf("expected HasMore false at exactly one page")
	}

	seedPost(t, store, community.Post{Title: "t10", Content: "c", Category: "Geral", UserID: "u1"})

	page, err = svc.ListPosts(context.Background(), "", 10, 0)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(page.Posts) != 10 {
		t.Fatalf("expected trimmed page of 10, got %d", len(page.Posts))
	}
	if !page.HasMore {
		t.Fatalf("expected HasMore true with an 11th post")
	}
}

func TestCreatePostValidation(t *testing.T) {
	svc, store := newTestService(t)
	store.CreateProfile(context.Background(), seedProfile("u1"))

	ctx := context.Background()
	ident := identity.Authenticated("u1")

	if _, err := svc.CreatePost(ctx, ident, community.Post{Content: "c"}); !errors.IsValidation(err) {
		t.Fatalf("expected validation error for missing title, got %v", err)
	}
	if _, err := svc.CreatePost(ctx, ident, community.Post{Title: "t"}); !errors.IsValidation(err) {
		t.Fatalf("expected validation error for missing content, got %v", err)
	}
	if _, err := svc.CreatePost(ctx, ident, community.Post{Title: "t", Content: "c", Category: "Wrong"}); !errors.IsValidation(err) {
		t.Fatalf("expected validation error for bad category, got %v", err)
	}

	created, err := svc.CreatePost(ctx, ident, community.Post{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if created.Category != "Geral" {
		t.Fatalf("expected default category Geral, got %s", created.Category)
	}
	if created.UserID != "u1" {
		t.Fatalf("expected author u1, got %s", created.UserID)
	}
	if created.LikesCount != 0 || created.RepliesCount != 0 || created.IsTrending {
		t.Fatalf("expected zeroed counters, got %+v", created)
	}
}

func TestCreatePostAnonymousFallsBackToFirstProfile(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	// No profile at all: anonymous posting is impossible.
	if _, err := svc.CreatePost(ctx, identity.Anonymous("device-1"), community.Post{Title: "t", Content: "c"}); !errors.IsValidation(err) {
		t.Fatalf("expected validation error without profiles, got %v", err)
	}

	first, _ := store.CreateProfile(ctx, seedProfile("first"))
	store.CreateProfile(ctx, seedProfile("second"))

	created, err := svc.CreatePost(ctx, identity.Anonymous("device-1"), community.Post{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if created.UserID != first.ID {
		t.Fatalf("expected fallback to first profile %s, got %s", first.ID, created.UserID)
	}
	if created.Author == nil || created.Author.Name != first.Name {
		t.Fatalf("expected fallback author, got %+v", created.Author)
	}
}

func TestGetPostNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.GetPost(context.Background(), "missing"); !errors.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
