package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/catalog"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/identity"
	"github.com/ninamcunha/amooora-backend/internal/app/storage/memory"
	"github.com/ninamcunha/amooora-backend/internal/errors"
	"github.com/ninamcunha/amooora-backend/pkg/logger"
)

func TestPlaceLifecycle(t *testing.T) {
	store := memory.New()
	svc := New(store, logger.NewNop())
	ctx := context.Background()

	if _, err := svc.CreatePlace(ctx, catalog.Place{Name: "  "}); !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	created, err := svc.CreatePlace(ctx, catalog.Place{Name: "Bar da Lu", Category: "bar", Rating: 4.5})
	if err != nil {
		t.Fatalf("create place: %v", err)
	}

	created.Address = "Rua Augusta, 100"
	updated, err := svc.UpdatePlace(ctx, created)
	if err != nil {
		t.Fatalf("update place: %v", err)
	}
	if updated.Address != "Rua Augusta, 100" {
		t.Fatalf("update lost address")
	}

	places, err := svc.ListPlaces(ctx)
	if err != nil {
		t.Fatalf("list places: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(places))
	}

	if err := svc.DeletePlace(ctx, created.ID); err != nil {
		t.Fatalf("delete place: %v", err)
	}
	if _, err := svc.GetPlace(ctx, created.ID); !errors.IsNotFound(err) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}

func TestServiceCategorySlugFilter(t *testing.T) {
	store := memory.New()
	svc := New(store, logger.NewNop())
	ctx := context.Background()

	created, err := svc.CreateService(ctx, catalog.Service{Name: "Terapia", Category: "Saúde Mental"})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	if created.CategorySlug != "saúde-mental" {
		t.Fatalf("expected derived slug, got %q", created.CategorySlug)
	}
	if _, err := svc.CreateService(ctx, catalog.Service{Name: "Advocacia", Category: "Jurídico", CategorySlug: "juridico"}); err != nil {
		t.Fatalf("create service: %v", err)
	}

	filtered, err := svc.ListServices(ctx, "juridico")
	if err != nil {
		t.Fatalf("list services: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Advocacia" {
		t.Fatalf("unexpected filter result: %+v", filtered)
	}

	all, err := svc.ListServices(ctx, "")
	if err != nil {
		t.Fatalf("list services: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 services, got %d", len(all))
	}
}

func TestEventValidation(t *testing.T) {
	store := memory.New()
	svc := New(store, logger.NewNop())
	ctx := context.Background()

	if _, err := svc.CreateEvent(ctx, catalog.Event{Name: "Sarau"}); !errors.IsValidation(err) {
		t.Fatalf("expected validation error for missing date, got %v", err)
	}

	event, err := svc.CreateEvent(ctx, catalog.Event{Name: "Sarau", Date: time.Date(2024, 6, 28, 20, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	events, err := svc.ListEvents(ctx)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].ID != event.ID {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestReviews(t *testing.T) {
	store := memory.New()
	svc := New(store, logger.NewNop())
	ctx := context.Background()

	place, err := svc.CreatePlace(ctx, catalog.Place{Name: "Café Sapatão"})
	if err != nil {
		t.Fatalf("create place: %v", err)
	}

	review := catalog.Review{Subject: catalog.SubjectPlace, SubjectID: place.ID, Rating: 5, Comment: "acolhedor"}

	if _, err := svc.CreateReview(ctx, identity.Anonymous("device-1"), review); err == nil {
		t.Fatalf("expected anonymous review rejection")
	}
	if _, err := svc.CreateReview(ctx, identity.Authenticated("u1"), catalog.Review{Subject: catalog.SubjectPlace, SubjectID: place.ID, Rating: 9}); !errors.IsValidation(err) {
		t.Fatalf("expected rating validation, got %v", err)
	}
	if _, err := svc.CreateReview(ctx, identity.Authenticated("u1"), catalog.Review{Subject: "other", SubjectID: place.ID, Rating: 4}); !errors.IsValidation(err) {
		t.Fatalf("expected subject validation, got %v", err)
	}

	created, err := svc.CreateReview(ctx, identity.Authenticated("u1"), review)
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if created.UserID != "u1" {
		t.Fatalf("expected review attributed to u1, got %s", created.UserID)
	}

	reviews, err := svc.ListReviews(ctx, catalog.SubjectPlace, place.ID)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(reviews))
	}

	// Reviews of another subject type with the same id stay separate.
	other, err := svc.ListReviews(ctx, catalog.SubjectEvent, place.ID)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no event reviews, got %d", len(other))
	}
}
