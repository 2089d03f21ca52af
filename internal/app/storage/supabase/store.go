// Package supabase implements the storage interfaces against the hosted
// Supabase backend over PostgREST. Counter updates go through stored
// procedures first and fall back to a read-then-write when the procedure
// is not deployed.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/catalog"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/community"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/profile"
	"github.com/ninamcunha/amooora-backend/internal/app/storage"
	"github.com/ninamcunha/amooora-backend/pkg/logger"
	"github.com/ninamcunha/amooora-backend/supabase/client"
)

// Store implements the storage interfaces over a Supabase project.
type Store struct {
	client *client.Client
	log    *logger.Logger
}

var _ storage.PostStore = (*Store)(nil)
var _ storage.ReplyStore = (*Store)(nil)
var _ storage.LikeStore = (*Store)(nil)
var _ storage.CatalogStore = (*Store)(nil)
var _ storage.ProfileStore = (*Store)(nil)

// New creates a Store over the given Supabase client.
func New(c *client.Client, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("supabase-store")
	}
	return &Store{client: c, log: log}
}

func mapErr(err error) error {
	if errors.Is(err, client.ErrNotFound) {
		return storage.ErrNotFound
	}
	return err
}

// --- rows -------------------------------------------------------------------

type authorRow struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type postRow struct {
	ID           string     `json:"id,omitempty"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Category     string     `json:"category"`
	Image        *string    `json:"image,omitempty"`
	LikesCount   int        `json:"likes_count"`
	RepliesCount int        `json:"replies_count"`
	IsTrending   bool       `json:"is_trending"`
	CreatedAt    time.Time  `json:"created_at,omitempty"`
	Author       *authorRow `json:"profiles,omitempty"`
}

// postSelect embeds the author profile in one request instead of a second
// round trip per post.
const postSelect = "*, profiles:user_id(name, avatar)"

func (r postRow) toDomain() community.Post {
	post := community.Post{
		ID:           r.ID,
		UserID:       r.UserID,
		Title:        r.Title,
		Content:      r.Content,
		Category:     r.Category,
		LikesCount:   r.LikesCount,
		RepliesCount: r.RepliesCount,
		IsTrending:   r.IsTrending,
		CreatedAt:    r.CreatedAt,
	}
	if r.Image != nil {
		post.Image = *r.Image
	}
	if r.Author != nil {
		post.Author = &community.Author{Name: r.Author.Name, Avatar: r.Author.Avatar}
	}
	return post
}

type replyRow struct {
	ID            string     `json:"id,omitempty"`
	PostID        string     `json:"post_id"`
	UserID        *string    `json:"user_id,omitempty"`
	AuthorName    string     `json:"author_name"`
	Content       string     `json:"content"`
	ParentReplyID *string    `json:"parent_reply_id,omitempty"`
	Likes         int        `json:"likes"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
	Author        *authorRow `json:"profiles,omitempty"`
}

const replySelect = "*, profiles:user_id(name, avatar)"

func (r replyRow) toDomain() community.Reply {
	reply := community.Reply{
		ID:         r.ID,
		PostID:     r.PostID,
		AuthorName: r.AuthorName,
		Content:    r.Content,
		Likes:      r.Likes,
		CreatedAt:  r.CreatedAt,
	}
	if r.UserID != nil {
		reply.UserID = *r.UserID
	}
	if r.ParentReplyID != nil {
		reply.ParentReplyID = *r.ParentReplyID
	}
	if r.Author != nil {
		reply.Author = &community.Author{Name: r.Author.Name, Avatar: r.Author.Avatar}
	}
	return reply
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// --- PostStore --------------------------------------------------------------

func (s *Store) CreatePost(ctx context.Context, post community.Post) (community.Post, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}

	row := postRow{
		ID:         post.ID,
		UserID:     post.UserID,
		Title:      post.Title,
		Content:    post.Content,
		Category:   post.Category,
		Image:      nullable(post.Image),
		IsTrending: post.IsTrending,
	}

	var created []postRow
	err := s.client.From("community_posts").Select(postSelect).Insert(ctx, row, &created)
	if err != nil {
		return community.Post{}, mapErr(err)
	}
	if len(created) == 0 {
		return community.Post{}, fmt.Errorf("insert returned no representation")
	}
	return created[0].toDomain(), nil
}

func (s *Store) GetPost(ctx context.Context, id string) (community.Post, error) {
	var row postRow
	err := s.client.From("community_posts").
		Select(postSelect).
		Eq("id", id).
		Single().
		Get(ctx, &row)
	if err != nil {
		return community.Post{}, mapErr(err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListPosts(ctx context.Context, category string, limit, offset int) ([]community.Post, error) {
	q := s.client.From("community_posts").Select(postSelect)
	if category != "" {
		q = q.Eq("category", category)
	}
	q = q.Order("is_trending", false).
		Order("likes_count", false).
		Order("replies_count", false).
		Order("created_at", false).
		Limit(limit).
		Offset(offset)

	var rows []postRow
	if err := q.Get(ctx, &rows); err != nil {
		return nil, mapErr(err)
	}

	posts := make([]community.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toDomain())
	}
	return posts, nil
}

// AdjustPostLikes calls the adjust_post_likes procedure, which moves the
// counter atomically and clamps it at zero. Projects without the procedure
// fall back to a read-then-write, which can lose concurrent updates but
// keeps the toggle working.
func (s *Store) AdjustPostLikes(ctx context.Context, postID string, delta int) (int, error) {
	resp, err := s.client.RPC(ctx, "adjust_post_likes", map[string]any{
		"p_post_id": postID,
		"p_delta":   delta,
	})
	if err == nil && resp.Err() == nil {
		var count int
		if jsonErr := resp.JSON(&count); jsonErr == nil {
			return count, nil
		}
	}

	s.log.WithField("post_id", postID).Warn("adjust_post_likes rpc unavailable, falling back to read-then-write")

	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return 0, err
	}
	count := post.LikesCount + delta
	if count < 0 {
		count = 0
	}
	err = s.client.From("community_posts").
		Eq("id", postID).
		Update(ctx, map[string]any{"likes_count": count}, nil)
	if err != nil {
		return 0, mapErr(err)
	}
	return count, nil
}

func (s *Store) IncrementPostReplies(ctx context.Context, postID string) error {
	resp, err := s.client.RPC(ctx, "increment_replies_count", map[string]any{
		"p_post_id": postID,
	})
	if err == nil && resp.Err() == nil {
		return nil
	}

	s.log.WithField("post_id", postID).Warn("increment_replies_count rpc unavailable, falling back to read-then-write")

	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	err = s.client.From("community_posts").
		Eq("id", postID).
		Update(ctx, map[string]any{"replies_count": post.RepliesCount + 1}, nil)
	return mapErr(err)
}

// --- ReplyStore -------------------------------------------------------------

func (s *Store) CreateReply(ctx context.Context, reply community.Reply) (community.Reply, error) {
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}

	row := replyRow{
		ID:            reply.ID,
		PostID:        reply.PostID,
		UserID:        nullable(reply.UserID),
		AuthorName:    reply.AuthorName,
		Content:       reply.Content,
		ParentReplyID: nullable(reply.ParentReplyID),
	}

	var created []replyRow
	err := s.client.From("post_replies").Select(replySelect).Insert(ctx, row, &created)
	if err != nil {
		return community.Reply{}, mapErr(err)
	}
	if len(created) == 0 {
		return community.Reply{}, fmt.Errorf("insert returned no representation")
	}
	return created[0].toDomain(), nil
}

func (s *Store) GetReply(ctx context.Context, id string) (community.Reply, error) {
	var row replyRow
	err := s.client.From("post_replies").
		Select(replySelect).
		Eq("id", id).
		Single().
		Get(ctx, &row)
	if err != nil {
		return community.Reply{}, mapErr(err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListTopLevelReplies(ctx context.Context, postID string) ([]community.Reply, error) {
	var rows []replyRow
	err := s.client.From("post_replies").
		Select(replySelect).
		Eq("post_id", postID).
		Is("parent_reply_id", "null").
		Order("created_at", true).
		Get(ctx, &rows)
	if err != nil {
		return nil, mapErr(err)
	}
	return repliesToDomain(rows), nil
}

func (s *Store) ListChildReplies(ctx context.Context, parentReplyID string) ([]community.Reply, error) {
	var rows []replyRow
	err := s.client.From("post_replies").
		Select(replySelect).
		Eq("parent_reply_id", parentReplyID).
		Order("created_at", true).
		Get(ctx, &rows)
	if err != nil {
		return nil, mapErr(err)
	}
	return repliesToDomain(rows), nil
}

func repliesToDomain(rows []replyRow) []community.Reply {
	replies := make([]community.Reply, 0, len(rows))
	for _, row := range rows {
		replies = append(replies, row.toDomain())
	}
	return replies
}

// --- LikeStore --------------------------------------------------------------

type likeRow struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

func (s *Store) HasLike(ctx context.Context, postID, userID string) (bool, error) {
	var rows []likeRow
	err := s.client.From("post_likes").
		Select("post_id, user_id").
		Eq("post_id", postID).
		Eq("user_id", userID).
		Limit(1).
		Get(ctx, &rows)
	if err != nil {
		return false, mapErr(err)
	}
	return len(rows) > 0, nil
}

func (s *Store) AddLike(ctx context.Context, postID, userID string) error {
	err := s.client.From("post_likes").
		Insert(ctx, likeRow{PostID: postID, UserID: userID}, nil)
	return mapErr(err)
}

func (s *Store) RemoveLike(ctx context.Context, postID, userID string) error {
	err := s.client.From("post_likes").
		Eq("post_id", postID).
		Eq("user_id", userID).
		Delete(ctx)
	return mapErr(err)
}

// --- CatalogStore -----------------------------------------------------------

type placeRow struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Address     string    `json:"address"`
	Rating      float64   `json:"rating"`
	Category    string    `json:"category"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

func (r placeRow) toDomain() catalog.Place {
	return catalog.Place{
		ID: r.ID, Name: r.Name, Description: r.Description, Image: r.Image,
		Address: r.Address, Rating: r.Rating, Category: r.Category,
		Latitude: r.Latitude, Longitude: r.Longitude,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func placeToRow(p catalog.Place) placeRow {
	return placeRow{
		ID: p.ID, Name: p.Name, Description: p.Description, Image: p.Image,
		Address: p.Address, Rating: p.Rating, Category: p.Category,
		Latitude: p.Latitude, Longitude: p.Longitude,
	}
}

func (s *Store) ListPlaces(ctx context.Context) ([]catalog.Place, error) {
	var rows []placeRow
	err := s.client.From("places").Select("*").Order("name", true).Get(ctx, &rows)
	if err != nil {
		return nil, mapErr(err)
	}
	places := make([]catalog.Place, 0, len(rows))
	for _, row := range rows {
		places = append(places, row.toDomain())
	}
	return places, nil
}

func (s *Store) GetPlace(ctx context.Context, id string) (catalog.Place, error) {
	var row placeRow
	err := s.client.From("places").Select("*").Eq("id", id).Single().Get(ctx, &row)
	if err != nil {
		return catalog.Place{}, mapErr(err)
	}
	return row.toDomain(), nil
}

func (s *Store) CreatePlace(ctx context.Context, p catalog.Place) (catalog.Place, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	var created []placeRow
	if err := s.client.From("places").Select("*").Insert(ctx, placeToRow(p), &created); err != nil {
		return catalog.Place{}, mapErr(err)
	}
	if len(created) == 0 {
		return catalog.Place{}, fmt.Errorf("insert returned no representation")
	}
	return created[0].toDomain(), nil
}

func (s *Store) UpdatePlace(ctx context.Context, p catalog.Place) (catalog.Place, error) {
	var updated []placeRow
	err := s.client.From("places").
		Select("*").
		Eq("id", p.ID).
		Update(ctx, placeToRow(p), &updated)
	if err != nil {
		return catalog.Place{}, mapErr(err)
	}
	if len(updated) == 0 {
		return catalog.Place{}, storage.ErrNotFound
	}
	return updated[0].toDomain(), nil
}

func (s *Store) DeletePlace(ctx context.Context, id string) error {
	return mapErr(s.client.From("places").Eq("id", id).Delete(ctx))
}

type serviceRow struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	CategorySlug string    `json:"category_slug"`
	Rating       float64   `json:"rating"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

func (r serviceRow) toDomain() catalog.Service {
	return catalog.Service{
		ID: r.ID, Name: r.Name, Description: r.Description, Image: r.Image,
		Price: r.Price, Category: r.Category, CategorySlug: r.CategorySlug,
		Rating: r.Rating, Provider: r.Provider,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func serviceToRow(svc catalog.Service) serviceRow {
	return serviceRow{
		ID: svc.ID, Name: svc.Name, Description: svc.Description, Image: svc.Image,
		Price: svc.Price, Category: svc.Category, CategorySlug: svc.CategorySlug,
		Rating: svc.Rating, Provider: svc.Provider,
	}
}

func (s *Store) ListServices(ctx context.Context, categorySlug string) ([]catalog.Service, error) {
	q := s.client.From("services").Select("*").Order("name", true)
	if categorySlug != "" {
		q = q.Eq("category_slug", categorySlug)
	}
	var rows []serviceRow
	if err := q.Get(ctx, &rows); err != nil {
		return nil, mapErr(err)
	}
	services := make([]catalog.Service, 0, len(rows))
	for _, row := range rows {
		services = append(services, row.toDomain())
	}
	return services, nil
}

func (s *Store) GetService(ctx context.Context, id string) (catalog.Service, error) {
	var row serviceRow
	err := s.client.From("services").Select("*").Eq("id", id).Single().Get(ctx, &row)
	if err != nil {
		return catalog.Service{}, mapErr(err)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateService(ctx context.Context, svc catalog.Service) (catalog.Service, error) {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	var created []serviceRow
	if err := s.client.From("services").Select("*").Insert(ctx, serviceToRow(svc), &created); err != nil {
		return catalog.Service{}, mapErr(err)
	}
	if len(created) == 0 {
		return catalog.Service{}, fmt.Errorf("insert returned no representation")
	}
	return created[0].toDomain(), nil
}

func (s *Store) UpdateService(ctx context.Context, svc catalog.Service) (catalog.Service, error) {
	var updated []serviceRow
	err := s.client.From("services").
		Select("*").
		Eq("id", svc.ID).
		Update(ctx, serviceToRow(svc), &updated)
	if err != nil {
		return catalog.Service{}, mapErr(err)
	}
	if len(updated) == 0 {
		return catalog.Service{}, storage.ErrNotFound
	}
	return updated[0].toDomain(), nil
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	return mapErr(s.client.From("services").Eq("id", id).Delete(ctx))
}

type eventRow struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

func (r eventRow) toDomain() catalog.Event {
	return catalog.Event{
		ID: r.ID, Name: r.Name, Description: r.Description, Image: r.Image,
		Date: r.Date, Location: r.Location, Category: r.Category, Price: r.Price,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func eventToRow(e catalog.Event) eventRow {
	return eventRow{
		ID: e.ID, Name: e.Name, Description: e.Description, Image: e.Image,
		Date: e.Date, Location: e.Location, Category: e.Category, Price: e.Price,
	}
}

func (s *Store) ListEvents(ctx context.Context) ([]catalog.Event, error) {
	var rows []eventRow
	err := s.client.From("events").Select("*").Order("date", true).Get(ctx, &rows)
	if err != nil {
		return nil, mapErr(err)
	}
	events := make([]catalog.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toDomain())
	}
	return events, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (catalog.Event, error) {
	var row eventRow
	err := s.client.From("events").Select("*").Eq("id", id).Single().Get(ctx, &row)
	if err != nil {
		return catalog.Event{}, mapErr(err)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateEvent(ctx context.Context, e catalog.Event) (catalog.Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	var created []eventRow
	if err := s.client.From("events").Select("*").Insert(ctx, eventToRow(e), &created); err != nil {
		return catalog.Event{}, mapErr(err)
	}
	if len(created) == 0 {
		return catalog.Event{}, fmt.Errorf("insert returned no representation")
	}
	return created[0].toDomain(), nil
}

func (s *Store) UpdateEvent(ctx context.Context, e catalog.Event) (catalog.Event, error) {
	var updated []eventRow
	err := s.client.From("events").
		Select("*").
		Eq("id", e.ID).
		Update(ctx, eventToRow(e), &updated)
	if err != nil {
		return catalog.Event{}, mapErr(err)
	}
	if len(updated) == 0 {
		return catalog.Event{}, storage.ErrNotFound
	}
	return updated[0].toDomain(), nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return mapErr(s.client.From("events").Eq("id", id).Delete(ctx))
}

type reviewRow struct {
	ID        string     `json:"id,omitempty"`
	Subject   string     `json:"subject"`
	SubjectID string     `json:"subject_id"`
	UserID    string     `json:"user_id"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
	Author    *authorRow `json:"profiles,omitempty"`
}

const reviewSelect = "*, profiles:user_id(name, avatar)"

func (r reviewRow) toDomain() catalog.Review {
	review := catalog.Review{
		ID:        r.ID,
		Subject:   catalog.ReviewSubject(r.Subject),
		SubjectID: r.SubjectID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.Author != nil {
		review.UserName = r.Author.Name
		review.UserAvatar = r.Author.Avatar
	}
	return review
}

func (s *Store) ListReviews(ctx context.Context, subject catalog.ReviewSubject, subjectID string) ([]catalog.Review, error) {
	var rows []reviewRow
	err := s.client.From("reviews").
		Select(reviewSelect).
		Eq("subject", string(subject)).
		Eq("subject_id", subjectID).
		Order("created_at", false).
		Get(ctx, &rows)
	if err != nil {
		return nil, mapErr(err)
	}
	reviews := make([]catalog.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, row.toDomain())
	}
	return reviews, nil
}

func (s *Store) CreateReview(ctx context.Context, r catalog.Review) (catalog.Review, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	row := reviewRow{
		ID:        r.ID,
		Subject:   string(r.Subject),
		SubjectID: r.SubjectID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
	}
	var created []reviewRow
	if err := s.client.From("reviews").Select(reviewSelect).Insert(ctx, row, &created); err != nil {
		return catalog.Review{}, mapErr(err)
	}
	if len(created) == 0 {
		return catalog.Review{}, fmt.Errorf("insert returned no representation")
	}
	return created[0].toDomain(), nil
}

// --- ProfileStore -----------------------------------------------------------

type profileRow struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    *string   `json:"avatar,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Pronouns  *string   `json:"pronouns,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func (r profileRow) toDomain() profile.Profile {
	p := profile.Profile{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Avatar != nil {
		p.Avatar = *r.Avatar
	}
	if r.Phone != nil {
		p.Phone = *r.Phone
	}
	if r.Bio != nil {
		p.Bio = *r.Bio
	}
	if r.Pronouns != nil {
		p.Pronouns = *r.Pronouns
	}
	return p
}

func (s *Store) GetProfile(ctx context.Context, id string) (profile.Profile, error) {
	var row profileRow
	err := s.client.From("profiles").Select("*").Eq("id", id).Single().Get(ctx, &row)
	if err != nil {
		return profile.Profile{}, mapErr(err)
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	row := profileRow{
		Name:     p.Name,
		Email:    p.Email,
		Avatar:   nullable(p.Avatar),
		Phone:    nullable(p.Phone),
		Bio:      nullable(p.Bio),
		Pronouns: nullable(p.Pronouns),
	}
	var updated []profileRow
	err := s.client.From("profiles").
		Select("*").
		Eq("id", p.ID).
		Update(ctx, row, &updated)
	if err != nil {
		return profile.Profile{}, mapErr(err)
	}
	if len(updated) == 0 {
		return profile.Profile{}, storage.ErrNotFound
	}
	return updated[0].toDomain(), nil
}

func (s *Store) FirstProfile(ctx context.Context) (profile.Profile, error) {
	var rows []profileRow
	err := s.client.From("profiles").
		Select("*").
		Order("created_at", true).
		Limit(1).
		Get(ctx, &rows)
	if err != nil {
		return profile.Profile{}, mapErr(err)
	}
	if len(rows) == 0 {
		return profile.Profile{}, storage.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (s *Store) GetProfileStats(ctx context.Context, userID string) (profile.Stats, error) {
	var rows []reviewRow
	err := s.client.From("reviews").
		Select("id").
		Eq("user_id", userID).
		Get(ctx, &rows)
	if err != nil {
		return profile.Stats{}, mapErr(err)
	}
	return profile.Stats{Reviews: len(rows)}, nil
}
