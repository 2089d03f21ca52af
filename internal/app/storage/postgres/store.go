// Package postgres implements the storage interfaces over a PostgreSQL
// database using plain database/sql. Counter updates run as single atomic
// statements so concurrent likes and replies never lose increments.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/catalog"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/community"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/profile"
	"github.com/ninamcunha/amooora-backend/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.PostStore = (*Store)(nil)
var _ storage.ReplyStore = (*Store)(nil)
var _ storage.LikeStore = (*Store)(nil)
var _ storage.CatalogStore = (*Store)(nil)
var _ storage.ProfileStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// --- PostStore --------------------------------------------------------------

const postColumns = `
	p.id, p.user_id, p.title, p.content, p.category, p.image,
	p.likes_count, p.replies_count, p.is_trending, p.created_at,
	pr.name, pr.avatar
`

func scanPost(row interface{ Scan(...any) error }) (community.Post, error) {
	var (
		post         community.Post
		image        sql.NullString
		authorName   sql.NullString
		authorAvatar sql.NullString
	)
	err := row.Scan(
		&post.ID, &post.UserID, &post.Title, &post.Content, &post.Category, &image,
		&post.LikesCount, &post.RepliesCount, &post.IsTrending, &post.CreatedAt,
		&authorName, &authorAvatar,
	)
	if err != nil {
		return community.Post{}, mapErr(err)
	}
	post.Image = image.String
	if authorName.Valid {
		post.Author = &community.Author{Name: authorName.String, Avatar: authorAvatar.String}
	}
	return post, nil
}

func (s *Store) CreatePost(ctx context.Context, post community.Post) (community.Post, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO community_posts (id, user_id, title, content, category, image, likes_count, replies_count, is_trending, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, post.ID, post.UserID, post.Title, post.Content, post.Category, toNullString(post.Image), post.LikesCount, post.RepliesCount, post.IsTrending, post.CreatedAt)
	if err != nil {
		return community.Post{}, err
	}
	return s.GetPost(ctx, post.ID)
}

func (s *Store) GetPost(ctx context.Context, id string) (community.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+postColumns+`
		FROM community_posts p
		LEFT JOIN profiles pr ON pr.id = p.user_id
		WHERE p.id = $1
	`, id)
	return scanPost(row)
}

func (s *Store) ListPosts(ctx context.Context, category string, limit, offset int) ([]community.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM community_posts p
		LEFT JOIN profiles pr ON pr.id = p.user_id
		WHERE $1 = '' OR p.category = $1
		ORDER BY p.is_trending DESC, p.likes_count DESC, p.replies_count DESC, p.created_at DESC
		LIMIT $2 OFFSET $3
	`, category, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []community.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	return result, rows.Err()
}

func (s *Store) AdjustPostLikes(ctx context.Context, postID string, delta int) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE community_posts
		SET likes_count = GREATEST(likes_count + $2, 0)
		WHERE id = $1
		RETURNING likes_count
	`, postID, delta)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, mapErr(err)
	}
	return count, nil
}

func (s *Store) IncrementPostReplies(ctx context.Context, postID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE community_posts
		SET replies_count = replies_count + 1
		WHERE id = $1
	`, postID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- ReplyStore -------------------------------------------------------------

const replyColumns = `
	r.id, r.post_id, r.user_id, r.author_name, r.content, r.parent_reply_id,
	r.likes, r.created_at, pr.name, pr.avatar
`

func scanReply(row interface{ Scan(...any) error }) (community.Reply, error) {
	var (
		reply        community.Reply
		userID       sql.NullString
		parentID     sql.NullString
		authorName   sql.NullString
		authorAvatar sql.NullString
	)
	err := row.Scan(
		&reply.ID, &reply.PostID, &userID, &reply.AuthorName, &reply.Content, &parentID,
		&reply.Likes, &reply.CreatedAt, &authorName, &authorAvatar,
	)
	if err != nil {
		return community.Reply{}, mapErr(err)
	}
	reply.UserID = userID.String
	reply.ParentReplyID = parentID.String
	if authorName.Valid {
		reply.Author = &community.Author{Name: authorName.String, Avatar: authorAvatar.String}
	}
	return reply, nil
}

func (s *Store) CreateReply(ctx context.Context, reply community.Reply) (community.Reply, error) {
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO post_replies (id, post_id, user_id, author_name, content, parent_reply_id, likes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, reply.ID, reply.PostID, toNullString(reply.UserID), reply.AuthorName, reply.Content, toNullString(reply.ParentReplyID), reply.Likes, reply.CreatedAt)
	if err != nil {
		return community.Reply{}, err
	}
	return s.GetReply(ctx, reply.ID)
}

func (s *Store) GetReply(ctx context.Context, id string) (community.Reply, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+replyColumns+`
		FROM post_replies r
		LEFT JOIN profiles pr ON pr.id = r.user_id
		WHERE r.id = $1
	`, id)
	return scanReply(row)
}

func (s *Store) ListTopLevelReplies(ctx context.Context, postID string) ([]community.Reply, error) {
	return s.listReplies(ctx, `
		SELECT `+replyColumns+`
		FROM post_replies r
		LEFT JOIN profiles pr ON pr.id = r.user_id
		WHERE r.post_id = $1 AND r.parent_reply_id IS NULL
		ORDER BY r.created_at
	`, postID)
}

func (s *Store) ListChildReplies(ctx context.Context, parentReplyID string) ([]community.Reply, error) {
	return s.listReplies(ctx, `
		SELECT `+replyColumns+`
		FROM post_replies r
		LEFT JOIN profiles pr ON pr.id = r.user_id
		WHERE r.parent_reply_id = $1
		ORDER BY r.created_at
	`, parentReplyID)
}

func (s *Store) listReplies(ctx context.Context, query string, arg any) ([]community.Reply, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []community.Reply
	for rows.Next() {
		reply, err := scanReply(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, reply)
	}
	return result, rows.Err()
}

// --- LikeStore --------------------------------------------------------------

func (s *Store) HasLike(ctx context.Context, postID, userID string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2
		)
	`, postID, userID)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) AddLike(ctx context.Context, postID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO post_likes (post_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`, postID, userID, time.Now().UTC())
	return err
}

func (s *Store) RemoveLike(ctx context.Context, postID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2
	`, postID, userID)
	return err
}

// --- CatalogStore -----------------------------------------------------------

func (s *Store) ListPlaces(ctx context.Context) ([]catalog.Place, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, image, address, rating, category, latitude, longitude, created_at, updated_at
		FROM places
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Place
	for rows.Next() {
		var p catalog.Place
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Image, &p.Address, &p.Rating, &p.Category, &p.Latitude, &p.Longitude, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) GetPlace(ctx context.Context, id string) (catalog.Place, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, image, address, rating, category, latitude, longitude, created_at, updated_at
		FROM places
		WHERE id = $1
	`, id)

	var p catalog.Place
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Image, &p.Address, &p.Rating, &p.Category, &p.Latitude, &p.Longitude, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return catalog.Place{}, mapErr(err)
	}
	return p, nil
}

func (s *Store) CreatePlace(ctx context.Context, p catalog.Place) (catalog.Place, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO places (id, name, description, image, address, rating, category, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, p.ID, p.Name, p.Description, p.Image, p.Address, p.Rating, p.Category, p.Latitude, p.Longitude, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return catalog.Place{}, err
	}
	return p, nil
}

func (s *Store) UpdatePlace(ctx context.Context, p catalog.Place) (catalog.Place, error) {
	existing, err := s.GetPlace(ctx, p.ID)
	if err != nil {
		return catalog.Place{}, err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE places
		SET name = $2, description = $3, image = $4, address = $5, rating = $6, category = $7, latitude = $8, longitude = $9, updated_at = $10
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Image, p.Address, p.Rating, p.Category, p.Latitude, p.Longitude, p.UpdatedAt)
	if err != nil {
		return catalog.Place{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return catalog.Place{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) DeletePlace(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM places WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListServices(ctx context.Context, categorySlug string) ([]catalog.Service, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, image, price, category, category_slug, rating, provider, created_at, updated_at
		FROM services
		WHERE $1 = '' OR category_slug = $1
		ORDER BY name
	`, categorySlug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Service
	for rows.Next() {
		var svc catalog.Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.Image, &svc.Price, &svc.Category, &svc.CategorySlug, &svc.Rating, &svc.Provider, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}

func (s *Store) GetService(ctx context.Context, id string) (catalog.Service, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, image, price, category, category_slug, rating, provider, created_at, updated_at
		FROM services
		WHERE id = $1
	`, id)

	var svc catalog.Service
	if err := row.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.Image, &svc.Price, &svc.Category, &svc.CategorySlug, &svc.Rating, &svc.Provider, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return catalog.Service{}, mapErr(err)
	}
	return svc, nil
}

func (s *Store) CreateService(ctx context.Context, svc catalog.Service) (catalog.Service, error) {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO services (id, name, description, image, price, category, category_slug, rating, provider, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, svc.ID, svc.Name, svc.Description, svc.Image, svc.Price, svc.Category, svc.CategorySlug, svc.Rating, svc.Provider, svc.CreatedAt, svc.UpdatedAt)
	if err != nil {
		return catalog.Service{}, err
	}
	return svc, nil
}

func (s *Store) UpdateService(ctx context.Context, svc catalog.Service) (catalog.Service, error) {
	existing, err := s.GetService(ctx, svc.ID)
	if err != nil {
		return catalog.Service{}, err
	}
	svc.CreatedAt = existing.CreatedAt
	svc.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE services
		SET name = $2, description = $3, image = $4, price = $5, category = $6, category_slug = $7, rating = $8, provider = $9, updated_at = $10
		WHERE id = $1
	`, svc.ID, svc.Name, svc.Description, svc.Image, svc.Price, svc.Category, svc.CategorySlug, svc.Rating, svc.Provider, svc.UpdatedAt)
	if err != nil {
		return catalog.Service{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return catalog.Service{}, storage.ErrNotFound
	}
	return svc, nil
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM services WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context) ([]catalog.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, image, date, location, category, price, created_at, updated_at
		FROM events
		ORDER BY date
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Event
	for rows.Next() {
		var e catalog.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Image, &e.Date, &e.Location, &e.Category, &e.Price, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) GetEvent(ctx context.Context, id string) (catalog.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, image, date, location, category, price, created_at, updated_at
		FROM events
		WHERE id = $1
	`, id)

	var e catalog.Event
	if err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Image, &e.Date, &e.Location, &e.Category, &e.Price, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return catalog.Event{}, mapErr(err)
	}
	return e, nil
}

func (s *Store) CreateEvent(ctx context.Context, e catalog.Event) (catalog.Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, name, description, image, date, location, category, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.Name, e.Description, e.Image, e.Date, e.Location, e.Category, e.Price, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return catalog.Event{}, err
	}
	return e, nil
}

func (s *Store) UpdateEvent(ctx context.Context, e catalog.Event) (catalog.Event, error) {
	existing, err := s.GetEvent(ctx, e.ID)
	if err != nil {
		return catalog.Event{}, err
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET name = $2, description = $3, image = $4, date = $5, location = $6, category = $7, price = $8, updated_at = $9
		WHERE id = $1
	`, e.ID, e.Name, e.Description, e.Image, e.Date, e.Location, e.Category, e.Price, e.UpdatedAt)
	if err != nil {
		return catalog.Event{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return catalog.Event{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM events WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListReviews(ctx context.Context, subject catalog.ReviewSubject, subjectID string) ([]catalog.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.subject, r.subject_id, r.user_id, pr.name, pr.avatar, r.rating, r.comment, r.created_at
		FROM reviews r
		LEFT JOIN profiles pr ON pr.id = r.user_id
		WHERE r.subject = $1 AND r.subject_id = $2
		ORDER BY r.created_at DESC
	`, string(subject), subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Review
	for rows.Next() {
		var (
			r          catalog.Review
			userName   sql.NullString
			userAvatar sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Subject, &r.SubjectID, &r.UserID, &userName, &userAvatar, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.UserName = userName.String
		r.UserAvatar = userAvatar.String
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *Store) CreateReview(ctx context.Context, r catalog.Review) (catalog.Review, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, subject, subject_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.ID, string(r.Subject), r.SubjectID, r.UserID, r.Rating, r.Comment, r.CreatedAt)
	if err != nil {
		return catalog.Review{}, err
	}
	return r, nil
}

// --- ProfileStore -----------------------------------------------------------

const profileColumns = `id, name, email, avatar, phone, bio, pronouns, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (profile.Profile, error) {
	var (
		p        profile.Profile
		avatar   sql.NullString
		phone    sql.NullString
		bio      sql.NullString
		pronouns sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &avatar, &phone, &bio, &pronouns, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return profile.Profile{}, mapErr(err)
	}
	p.Avatar = avatar.String
	p.Phone = phone.String
	p.Bio = bio.String
	p.Pronouns = pronouns.String
	return p, nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (profile.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE id = $1
	`, id)
	return scanProfile(row)
}

func (s *Store) UpdateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	existing, err := s.GetProfile(ctx, p.ID)
	if err != nil {
		return profile.Profile{}, err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET name = $2, email = $3, avatar = $4, phone = $5, bio = $6, pronouns = $7, updated_at = $8
		WHERE id = $1
	`, p.ID, p.Name, p.Email, toNullString(p.Avatar), toNullString(p.Phone), toNullString(p.Bio), toNullString(p.Pronouns), p.UpdatedAt)
	if err != nil {
		return profile.Profile{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return profile.Profile{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) FirstProfile(ctx context.Context) (profile.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM profiles ORDER BY created_at LIMIT 1
	`)
	return scanProfile(row)
}

func (s *Store) GetProfileStats(ctx context.Context, userID string) (profile.Stats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reviews WHERE user_id = $1
	`, userID)

	var stats profile.Stats
	if err := row.Scan(&stats.Reviews); err != nil {
		return profile.Stats{}, err
	}
	return stats, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
