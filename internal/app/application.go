package app

import (
	"context"
	"fmt"

	"github.com/ninamcunha/amooora-backend/internal/app/services/catalog"
	"github.com/ninamcunha/amooora-backend/internal/app/services/community"
	"github.com/ninamcunha/amooora-backend/internal/app/services/profiles"
	"github.com/ninamcunha/amooora-backend/internal/app/storage"
	"github.com/ninamcunha/amooora-backend/internal/app/storage/memory"
	"github.com/ninamcunha/amooora-backend/internal/app/system"
	"github.com/ninamcunha/amooora-backend/internal/localstore"
	"github.com/ninamcunha/amooora-backend/internal/metrics"
	"github.com/ninamcunha/amooora-backend/pkg/logger"
	"github.com/ninamcunha/amooora-backend/supabase/client"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Posts    storage.PostStore
	Replies  storage.ReplyStore
	Likes    storage.LikeStore
	Catalog  storage.CatalogStore
	Profiles storage.ProfileStore
}

// Options carries optional dependencies beyond the stores.
type Options struct {
	// Device is the per-device SQLite store for anonymous likes and event
	// attendance. Nil disables anonymous like toggling.
	Device *localstore.Store
	// Realtime, when set, runs a feed watcher over community_posts changes.
	Realtime *client.RealtimeClient
	// Media, when set, backs image uploads.
	Media *client.StorageClient
	// Metrics, when set, is attached to services and the HTTP layer.
	Metrics *metrics.Metrics
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Community *community.Service
	Catalog   *catalog.Service
	Profiles  *profiles.Service

	Watcher *community.FeedWatcher
	Media   *client.StorageClient
	Metrics *metrics.Metrics
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Posts == nil {
		stores.Posts = mem
	}
	if stores.Replies == nil {
		stores.Replies = mem
	}
	if stores.Likes == nil {
		stores.Likes = mem
	}
	if stores.Catalog == nil {
		stores.Catalog = mem
	}
	if stores.Profiles == nil {
		stores.Profiles = mem
	}

	manager := system.NewManager()

	communityService := community.New(stores.Posts, stores.Replies, stores.Likes, stores.Profiles, log)
	catalogService := catalog.New(stores.Catalog, log)
	profileService := profiles.New(stores.Profiles, log)

	if opts.Device != nil {
		communityService.AttachDeviceLikes(opts.Device)
		profileService.AttachAttendance(opts.Device)
	} else {
		log.Warn("device store not configured; anonymous likes and attendance disabled")
	}
	if opts.Metrics != nil {
		communityService.AttachMetrics(opts.Metrics)
	}

	for _, name := range []string{"community", "catalog", "profiles"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	var watcher *community.FeedWatcher
	if opts.Realtime != nil {
		watcher = community.NewFeedWatcher(opts.Realtime, log)
		if err := manager.Register(watcher); err != nil {
			return nil, fmt.Errorf("register %s: %w", watcher.Name(), err)
		}
	} else {
		log.Warn("realtime client not configured; feed watcher disabled")
	}

	return &Application{
		manager:   manager,
		log:       log,
		Community: communityService,
		Catalog:   catalogService,
		Profiles:  profileService,
		Watcher:   watcher,
		Media:     opts.Media,
		Metrics:   opts.Metrics,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
