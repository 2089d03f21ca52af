package community

import (
	"context"

	"github.com/ninamcunha/amooora-backend/pkg/logger"
	"github.com/ninamcunha/amooora-backend/supabase/client"
)

// FeedWatcher subscribes to community_posts changes over the realtime
// websocket and notifies registered listeners. Active feed sessions use
// it to learn that their cached pages are stale.
type FeedWatcher struct {
	rt        *client.RealtimeClient
	log       *logger.Logger
	listeners []func()
}

func NewFeedWatcher(rt *client.RealtimeClient, log *logger.Logger) *FeedWatcher {
	if log == nil {
		log = logger.NewDefault("feedwatcher")
	}
	return &FeedWatcher{rt: rt, log: log}
}

// OnChange registers a callback invoked for every post change. Register
// before Start; the watcher does not lock the listener slice.
func (w *FeedWatcher) OnChange(fn func()) {
	w.listeners = append(w.listeners, fn)
}

func (w *FeedWatcher) Name() string { return "feedwatcher" }

func (w *FeedWatcher) Start(ctx context.Context) error {
	if err := w.rt.Connect(ctx); err != nil {
		return err
	}
	_, err := w.rt.SubscribeToPostgresChanges(ctx, client.PostgresChangesConfig{
		Table: "community_posts",
	}, func(event *client.RealtimeEvent) {
		w.log.WithField("event", event.Event).Debug("community_posts changed")
		for _, fn := range w.listeners {
			fn()
		}
	})
	if err != nil {
		_ = w.rt.Disconnect()
		return err
	}
	w.log.Info("watching community_posts for changes")
	return nil
}

func (w *FeedWatcher) Stop(ctx context.Context) error {
	return w.rt.Disconnect()
}
