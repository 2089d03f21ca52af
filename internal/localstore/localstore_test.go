package localstore

import (
	"context"
	"path/filepath"
	"testing"
)

func TestLikedPostsRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	liked, err := store.IsPostLiked(ctx, "device-1", "p1")
	if err != nil {
		t.Fatalf("is liked: %v", err)
	}
	if liked {
		t.Fatalf("expected not liked initially")
	}

	if err := store.SetPostLiked(ctx, "device-1", "p1", true); err != nil {
		t.Fatalf("set liked: %v", err)
	}
	// Repeat insert must not fail.
	if err := store.SetPostLiked(ctx, "device-1", "p1", true); err != nil {
		t.Fatalf("set liked again: %v", err)
	}

	liked, err = store.IsPostLiked(ctx, "device-1", "p1")
	if err != nil {
		t.Fatalf("is liked: %v", err)
	}
	if !liked {
		t.Fatalf("expected liked")
	}

	// Another device stays independent.
	liked, err = store.IsPostLiked(ctx, "device-2", "p1")
	if err != nil {
		t.Fatalf("is liked device-2: %v", err)
	}
	if liked {
		t.Fatalf("expected device-2 not liked")
	}

	if err := store.SetPostLiked(ctx, "device-1", "p1", false); err != nil {
		t.Fatalf("unset liked: %v", err)
	}
	liked, err = store.IsPostLiked(ctx, "device-1", "p1")
	if err != nil {
		t.Fatalf("is liked: %v", err)
	}
	if liked {
		t.Fatalf("expected unliked after clear")
	}
}

func TestAttendedEvents(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if err := store.MarkEventAttended(ctx, "device-1", "e1"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := store.MarkEventAttended(ctx, "device-1", "e2"); err != nil {
		t.Fatalf("mark: %v", err)
	}

	events, err := store.AttendedEvents(ctx, "device-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %v", events)
	}

	if err := store.UnmarkEventAttended(ctx, "device-1", "e1"); err != nil {
		t.Fatalf("unmark: %v", err)
	}
	events, err = store.AttendedEvents(ctx, "device-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 || events[0] != "e2" {
		t.Fatalf("expected only e2, got %v", events)
	}
}
