// Package httpapi exposes the REST API consumed by the Amooora web client.
package httpapi

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	app "github.com/ninamcunha/amooora-backend/internal/app"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/catalog"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/community"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/profile"
	communitysvc "github.com/ninamcunha/amooora-backend/internal/app/services/community"
	"github.com/ninamcunha/amooora-backend/internal/errors"
	"github.com/ninamcunha/amooora-backend/internal/middleware"
)

// MediaBucket is the storage bucket image uploads land in.
const MediaBucket = "media"

const maxUploadBytes = 10 << 20

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewRouter returns a mux exposing the core REST API under /api/v1.
func NewRouter(application *app.Application) *mux.Router {
	h := &handler{app: application}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	if application.Metrics != nil {
		r.Handle("/metrics", application.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/posts", h.listPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts", h.createPost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", h.getPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}/replies", h.listReplies).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}/replies", h.addReply).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/like", h.toggleLike).Methods(http.MethodPost)
	api.HandleFunc("/categories", h.categories).Methods(http.MethodGet)

	api.HandleFunc("/places", h.listPlaces).Methods(http.MethodGet)
	api.HandleFunc("/places", h.createPlace).Methods(http.MethodPost)
	api.HandleFunc("/places/{id}", h.getPlace).Methods(http.MethodGet)
	api.HandleFunc("/places/{id}", h.updatePlace).Methods(http.MethodPut)
	api.HandleFunc("/places/{id}", h.deletePlace).Methods(http.MethodDelete)

	api.HandleFunc("/services", h.listServices).Methods(http.MethodGet)
	api.HandleFunc("/services", h.createService).Methods(http.MethodPost)
	api.HandleFunc("/services/{id}", h.getService).Methods(http.MethodGet)
	api.HandleFunc("/services/{id}", h.updateService).Methods(http.MethodPut)
	api.HandleFunc("/services/{id}", h.deleteService).Methods(http.MethodDelete)

	api.HandleFunc("/events", h.listEvents).Methods(http.MethodGet)
	api.HandleFunc("/events", h.createEvent).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}", h.getEvent).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}", h.updateEvent).Methods(http.MethodPut)
	api.HandleFunc("/events/{id}", h.deleteEvent).Methods(http.MethodDelete)
	api.HandleFunc("/events/{id}/attendance", h.markAttendance).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}/attendance", h.unmarkAttendance).Methods(http.MethodDelete)

	api.HandleFunc("/reviews", h.listReviews).Methods(http.MethodGet)
	api.Handle("/reviews", middleware.RequireAuthenticated(http.HandlerFunc(h.createReview))).Methods(http.MethodPost)

	api.HandleFunc("/profiles/{id}", h.getProfile).Methods(http.MethodGet)
	api.Handle("/profiles/{id}", middleware.RequireAuthenticated(http.HandlerFunc(h.updateProfile))).Methods(http.MethodPut)
	api.HandleFunc("/stats", h.stats).Methods(http.MethodGet)

	api.HandleFunc("/uploads", h.upload).Methods(http.MethodPost)

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// feedPage is the wire shape of one feed page.
type feedPage struct {
	Posts   []community.Post `json:"posts"`
	HasMore bool             `json:"has_more"`
}

func (h *handler) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), communitysvc.DefaultPageSize)
	offset := queryInt(q.Get("offset"), 0)

	page, err := h.app.Community.ListPosts(r.Context(), q.Get("category"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	posts := page.Posts
	if posts == nil {
		posts = []community.Post{}
	}
	writeJSON(w, http.StatusOK, feedPage{Posts: posts, HasMore: page.HasMore})
}

func (h *handler) createPost(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Category string `json:"category"`
		Image    string `json:"image"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.Validation(err.Error()))
		return
	}

	post, err := h.app.Community.CreatePost(r.Context(), middleware.IdentityFrom(r.Context()), community.Post{
		Title:    payload.Title,
		Content:  payload.Content,
		Category: payload.Category,
		Image:    payload.Image,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *handler) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.app.Community.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *handler) listReplies(w http.ResponseWriter, r *http.Request) {
	replies, err := h.app.Community.GetReplies(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if replies == nil {
		replies = []community.Reply{}
	}
	writeJSON(w, http.StatusOK, replies)
}

func (h *handler) addReply(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content       string `json:"content"`
		AuthorName    string `json:"author_name"`
		ParentReplyID string `json:"parent_reply_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.Validation(err.Error()))
		return
	}

	reply, err := h.app.Community.AddReply(r.Context(), middleware.IdentityFrom(r.Context()), community.Reply{
		PostID:        mux.Vars(r)["id"],
		Content:       payload.Content,
		AuthorName:    payload.AuthorName,
		ParentReplyID: payload.ParentReplyID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

func (h *handler) toggleLike(w http.ResponseWriter, r *http.Request) {
	state, err := h.app.Community.ToggleLike(r.Context(), middleware.IdentityFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *handler) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, community.Categories)
}

func (h *handler) listPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.app.Catalog.ListPlaces(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, places)
}

func (h *handler) getPlace(w http.ResponseWriter, r *http.Request) {
	place, err := h.app.Catalog.GetPlace(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}

func (h *handler) createPlace(w http.ResponseWriter, r *http.Request) {
	var place catalog.Place
	if err := decodeJSON(r.Body, &place); err != nil {
		writeError(w, errors.Validation(err.Error()))
		return
	}
	created, err := h.app.Catalog.CreatePlace(r.Context(), place)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updatePlace(w http.ResponseWriter, r *http.Request) {
	var place catalog.Place
	if err := decodeJSON(r.Body, &place); err != nil {
		writeError(w, errors.Validation(err.Error()))
		return
	}
	place.ID = mux.Vars(r)["id"]
	updated, err := h.app.Catalog.UpdatePlace(r.Context(), place)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deletePlace(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Catalog.DeletePlace(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.app.Catalog.ListServices(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

func (h *handler) getService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.app.Catalog.GetService(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (h *handler) createService(w http.ResponseWriter, r *http.Request) {
	var svc catalog.Service
	if err := decodeJSON(r.Body, &svc); err != nil {
		writeError(w, errors.Validation(err.Error()))
		return
	}
	created, err := h.app.Catalog.CreateService(r.Context(), svc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateService(w http.ResponseWriter, r *http.Request) {
	var svc catalog.Service
	if err := decodeJSON(r.Body, &svc); err != nil {
		writeError(w, errors.Validation(err.Error()))
		return
	}
	svc.ID = mux.Vars(r)["id"]
	updated, err := h.app.Catalog.UpdateService(r.Context(), svc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Catalog.DeleteService(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.app.Catalog.ListEvents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *handler) getEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.app.Catalog.GetEvent(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var event catalog.Event
	if err := decodeJSON(r.Body, &event); err != nil {
		writeError(w, errors.Validation(err.Error()))
		return
	}
	created, err := h.app.Catalog.CreateEvent(r.Context(), event)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	var event catalog.Event
	if err := decodeJSON(r.Body, &event); err != nil {
		writeError(w, errors.Validation(err.Error()))
		return
	}
	event.ID = mux.Vars(r)["id"]
	updated, err := h.app.Catalog.UpdateEvent(r.Context(), event)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Catalog.DeleteEvent(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) markAttendance(w http.ResponseWriter, r *http.Request) {
	localID := r.Header.Get(middleware.LocalIDHeader)
	if err := h.app.Profiles.MarkAttended(r.Context(), localID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"attending": true})
}

func (h *handler) unmarkAttendance(w http.ResponseWriter, r *http.Request) {
	localID := r.Header.Get(middleware.LocalIDHeader)
	if err := h.app.Profiles.UnmarkAttended(r.Context(), localID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"attending": false})
}

func (h *handler) listReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reviews, err := h.app.Catalog.ListReviews(r.Context(), catalog.ReviewSubject(q.Get("subject")), q.Get("subject_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if reviews == nil {
		reviews = []catalog.Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *handler) createReview(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Subject   string `json:"subject"`
		SubjectID string `json:"subject_id"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.Validation(err.Error()))
		return
	}

	review, err := h.app.Catalog.CreateReview(r.Context(), middleware.IdentityFrom(r.Context()), catalog.Review{
		Subject:   catalog.ReviewSubject(payload.Subject),
		SubjectID: payload.SubjectID,
		Rating:    payload.Rating,
		Comment:   payload.Comment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Profiles.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Avatar   string `json:"avatar"`
		Phone    string `json:"phone"`
		Bio      string `json:"bio"`
		Pronouns string `json:"pronouns"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, errors.Validation(err.Error()))
		return
	}

	updated, err := h.app.Profiles.Update(r.Context(), middleware.IdentityFrom(r.Context()), profile.Profile{
		ID:       mux.Vars(r)["id"],
		Name:     payload.Name,
		Email:    payload.Email,
		Avatar:   payload.Avatar,
		Phone:    payload.Phone,
		Bio:      payload.Bio,
		Pronouns: payload.Pronouns,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFrom(r.Context())
	localID := r.Header.Get(middleware.LocalIDHeader)
	stats, err := h.app.Profiles.Stats(r.Context(), ident, localID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	if h.app.Media == nil {
		writeError(w, errors.Internal("media storage not configured", nil))
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, errors.Validation("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errors.Validation("missing file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(w, errors.Internal("read upload", err))
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, errors.Validation("file exceeds 10MB limit"))
		return
	}

	objectPath := uuid.NewString() + strings.ToLower(path.Ext(header.Filename))
	contentType := header.Header.Get("Content-Type")
	url, err := h.app.Media.Upload(r.Context(), MediaBucket, objectPath, data, contentType)
	if err != nil {
		writeError(w, errors.FetchFailed("upload to storage", err))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url, "path": objectPath})
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.CodeInternal
	msg := err.Error()
	var se *errors.ServiceError
	if stderrors.As(err, &se) {
		code = se.Code
		msg = se.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errors.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": string(code), "message": msg},
	})
}
