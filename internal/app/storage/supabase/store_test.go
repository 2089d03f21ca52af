package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ninamcunha/amooora-backend/internal/app/storage"
	"github.com/ninamcunha/amooora-backend/pkg/logger"
	"github.com/ninamcunha/amooora-backend/supabase/client"
)

func newTestStore(t *testing.T, handler http.Handler) (*Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := client.New(client.Config{URL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return New(c, logger.NewNop()), srv
}

func TestListPostsQueryShape(t *testing.T) {
	var gotQuery map[string][]string

	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/community_posts" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"p1","user_id":"u1","title":"a","content":"x","category":"Eventos","likes_count":5,"replies_count":2,"is_trending":true,"created_at":"2024-05-01T10:00:00Z","profiles":{"name":"Ana","avatar":"a.png"}},
			{"id":"p2","user_id":"u2","title":"b","content":"y","category":"Eventos","likes_count":1,"replies_count":0,"is_trending":false,"created_at":"2024-05-02T10:00:00Z","profiles":null}
		]`))
	}))

	posts, err := store.ListPosts(context.Background(), "Eventos", 11, 10)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Author == nil || posts[0].Author.Name != "Ana" {
		t.Fatalf("expected embedded author, got %+v", posts[0].Author)
	}
	if posts[1].Author != nil {
		t.Fatalf("expected nil author for missing profile")
	}

	if got := gotQuery["order"]; len(got) != 1 || got[0] != "is_trending.desc,likes_count.desc,replies_count.desc,created_at.desc" {
		t.Fatalf("unexpected order param: %v", got)
	}
	if got := gotQuery["category"]; len(got) != 1 || got[0] != "eq.Eventos" {
		t.Fatalf("unexpected category filter: %v", got)
	}
	if got := gotQuery["limit"]; len(got) != 1 || got[0] != "11" {
		t.Fatalf("unexpected limit: %v", got)
	}
	if got := gotQuery["offset"]; len(got) != 1 || got[0] != "10" {
		t.Fatalf("unexpected offset: %v", got)
	}
}

func TestListPostsNoCategoryFilter(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("category") {
			t.Fatalf("expected no category filter, got %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[]`))
	}))

	if _, err := store.ListPosts(context.Background(), "", 11, 0); err != nil {
		t.Fatalf("list posts: %v", err)
	}
}

func TestGetPostNotFound(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		w.Write([]byte(`{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`))
	}))

	if _, err := store.GetPost(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdjustPostLikesRPC(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/rpc/adjust_post_likes" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var params map[string]any
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		if params["p_post_id"] != "p1" || params["p_delta"] != float64(-1) {
			t.Fatalf("unexpected params: %v", params)
		}
		w.Write([]byte(`4`))
	}))

	count, err := store.AdjustPostLikes(context.Background(), "p1", -1)
	if err != nil {
		t.Fatalf("adjust likes: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4, got %d", count)
	}
}

func TestAdjustPostLikesFallback(t *testing.T) {
	var patched map[string]any

	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/rest/v1/rpc/adjust_post_likes":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"function not found"}`))
		case r.Method == http.MethodGet:
			w.Write([]byte(`{"id":"p1","user_id":"u1","title":"a","content":"x","category":"Geral","likes_count":0,"replies_count":0,"is_trending":false,"created_at":"2024-05-01T10:00:00Z"}`))
		case r.Method == http.MethodPatch:
			if err := json.NewDecoder(r.Body).Decode(&patched); err != nil {
				t.Fatalf("decode patch: %v", err)
			}
			w.Write([]byte(`[]`))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	// Unliking at zero must clamp, not go negative.
	count, err := store.AdjustPostLikes(context.Background(), "p1", -1)
	if err != nil {
		t.Fatalf("adjust likes: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected clamped 0, got %d", count)
	}
	if patched["likes_count"] != float64(0) {
		t.Fatalf("expected patch to 0, got %v", patched)
	}
}

func TestTopLevelRepliesFilterNullParent(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("parent_reply_id"); got != "is.null" {
			t.Fatalf("expected is.null parent filter, got %q", got)
		}
		if got := q.Get("order"); got != "created_at.asc" {
			t.Fatalf("expected ascending order, got %q", got)
		}
		w.Write([]byte(`[{"id":"r1","post_id":"p1","author_name":"Ana","content":"oi","likes":0,"created_at":"2024-05-01T10:00:00Z"}]`))
	}))

	replies, err := store.ListTopLevelReplies(context.Background(), "p1")
	if err != nil {
		t.Fatalf("list replies: %v", err)
	}
	if len(replies) != 1 || replies[0].ID != "r1" {
		t.Fatalf("unexpected replies: %+v", replies)
	}
}

func TestHasLike(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("post_id") != "eq.p1" || q.Get("user_id") != "eq.u1" {
			t.Fatalf("unexpected filters: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"post_id":"p1","user_id":"u1"}]`))
	}))

	liked, err := store.HasLike(context.Background(), "p1", "u1")
	if err != nil {
		t.Fatalf("has like: %v", err)
	}
	if !liked {
		t.Fatalf("expected liked")
	}
}
