package community

import (
	"context"
	"fmt"
	"testing"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/community"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/identity"
	"github.com/ninamcunha/amooora-backend/internal/app/storage"
	"github.com/ninamcunha/amooora-backend/internal/app/storage/memory"
	"github.com/ninamcunha/amooora-backend/internal/errors"
	"github.com/ninamcunha/amooora-backend/internal/localstore"
	"github.com/ninamcunha/amooora-backend/pkg/logger"
)

func attachDevice(t *testing.T, svc *Service) *localstore.Store {
	t.Helper()
	device, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	t.Cleanup(func() { device.Close() })
	svc.AttachDeviceLikes(device)
	return device
}

func TestToggleLikeAuthenticated(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	post := seedPost(t, store, community.Post{Title: "t", Content: "c", Category: "Geral", UserID: "u1", LikesCount: 2})
	ident := identity.Authenticated("u9")

	state, err := svc.ToggleLike(ctx, ident, post.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !state.Liked || state.LikesCount != 3 {
		t.Fatalf("expected liked with count 3, got %+v", state)
	}

	liked, err := store.HasLike(ctx, post.ID, "u9")
	if err != nil {
		t.Fatalf("has like: %v", err)
	}
	if !liked {
		t.Fatalf("expected like row")
	}

	// Toggling again restores the original state exactly.
	state, err = svc.ToggleLike(ctx, ident, post.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if state.Liked || state.LikesCount != 2 {
		t.Fatalf("expected unliked with count 2, got %+v", state)
	}
	liked, _ = store.HasLike(ctx, post.ID, "u9")
	if liked {
		t.Fatalf("expected like row removed")
	}
}

func TestToggleLikeTwoUsersIndependent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	post := seedPost(t, store, community.Post{Title: "t", Content: "c", Category: "Geral", UserID: "u1"})

	if _, err := svc.ToggleLike(ctx, identity.Authenticated("a"), post.ID); err != nil {
		t.Fatalf("toggle a: %v", err)
	}
	state, err := svc.ToggleLike(ctx, identity.Authenticated("b"), post.ID)
	if err != nil {
		t.Fatalf("toggle b: %v", err)
	}
	if state.LikesCount != 2 {
		t.Fatalf("expected count 2 from two users, got %d", state.LikesCount)
	}

	// b unlikes, a's like remains.
	state, err = svc.ToggleLike(ctx, identity.Authenticated("b"), post.ID)
	if err != nil {
		t.Fatalf("untoggle b: %v", err)
	}
	if state.LikesCount != 1 {
		t.Fatalf("expected count 1, got %d", state.LikesCount)
	}
	if liked, _ := store.HasLike(ctx, post.ID, "a"); !liked {
		t.Fatalf("expected a's like untouched")
	}
}

func TestToggleLikeAnonymous(t *testing.T) {
	svc, store := newTestService(t)
	device := attachDevice(t, svc)
	ctx := context.Background()

	post := seedPost(t, store, community.Post{Title: "t", Content: "c", Category: "Geral", UserID: "u1"})
	ident := identity.Anonymous("device-1")

	state, err := svc.ToggleLike(ctx, ident, post.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !state.Liked || state.LikesCount != 1 {
		t.Fatalf("expected liked with count 1, got %+v", state)
	}

	// The like never reaches the backend like table.
	if liked, _ := store.HasLike(ctx, post.ID, "device-1"); liked {
		t.Fatalf("anonymous like must not create a like row")
	}
	if liked, _ := device.IsPostLiked(ctx, "device-1", post.ID); !liked {
		t.Fatalf("expected device-local like record")
	}

	state, err = svc.ToggleLike(ctx, ident, post.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if state.Liked || state.LikesCount != 0 {
		t.Fatalf("expected unliked with count 0, got %+v", state)
	}
}

func TestToggleLikeAnonymousRequiresDeviceStore(t *testing.T) {
	svc, store := newTestService(t)
	post := seedPost(t, store, community.Post{Title: "t", Content: "c", Category: "Geral", UserID: "u1"})

	if _, err := svc.ToggleLike(context.Background(), identity.Anonymous("device-1"), post.ID); !errors.IsValidation(err) {
		t.Fatalf("expected validation error without device store, got %v", err)
	}
}

func TestToggleLikeCounterClampsAtZero(t *testing.T) {
	svc, store := newTestService(t)
	device := attachDevice(t, svc)
	ctx := context.Background()

	// Counter already zero, device thinks it liked: an unlike must not go
	// negative.
	post := seedPost(t, store, community.Post{Title: "t", Content: "c", Category: "Geral", UserID: "u1"})
	if err := device.SetPostLiked(ctx, "device-1", post.ID, true); err != nil {
		t.Fatalf("seed device like: %v", err)
	}

	state, err := svc.ToggleLike(ctx, identity.Anonymous("device-1"), post.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if state.Liked || state.LikesCount != 0 {
		t.Fatalf("expected clamped unlike, got %+v", state)
	}
}

func TestToggleLikeMissingPost(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.ToggleLike(context.Background(), identity.Authenticated("u1"), "missing"); !errors.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

// brokenCounterPostStore fails counter adjustments while the rest of the
// store keeps working.
type brokenCounterPostStore struct {
	storage.PostStore
	fail bool
}

func (b *brokenCounterPostStore) AdjustPostLikes(ctx context.Context, postID string, delta int) (int, error) {
	if b.fail {
		return 0, fmt.Errorf("counter unavailable")
	}
	return b.PostStore.AdjustPostLikes(ctx, postID, delta)
}

func TestToggleLikeRollsBackRowOnCounterFailure(t *testing.T) {
	store := memory.New()
	broken := &brokenCounterPostStore{PostStore: store}
	svc := New(broken, store, store, store, logger.NewNop())
	ctx := context.Background()

	post := seedPost(t, store, community.Post{Title: "t", Content: "c", Category: "Geral", UserID: "u1"})
	ident := identity.Authenticated("u9")

	broken.fail = true
	if _, err := svc.ToggleLike(ctx, ident, post.ID); err == nil {
		t.Fatal("expected toggle error while counter is down")
	}

	liked, err := store.HasLike(ctx, post.ID, "u9")
	if err != nil {
		t.Fatalf("has like: %v", err)
	}
	if liked {
		t.Fatal("expected like row rolled back after counter failure")
	}

	// A retry after recovery lands cleanly.
	broken.fail = false
	state, err := svc.ToggleLike(ctx, ident, post.ID)
	if err != nil {
		t.Fatalf("toggle after recovery: %v", err)
	}
	if !state.Liked || state.LikesCount != 1 {
		t.Fatalf("expected liked with count 1, got %+v", state)
	}

	// Same rollback on the unlike direction.
	broken.fail = true
	if _, err := svc.ToggleLike(ctx, ident, post.ID); err == nil {
		t.Fatal("expected toggle error while counter is down")
	}
	liked, _ = store.HasLike(ctx, post.ID, "u9")
	if !liked {
		t.Fatal("expected like row restored after failed unlike")
	}
}
