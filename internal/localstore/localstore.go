// Package localstore keeps per-device state for anonymous users: which
// posts the device has liked and which events it marked as attended. The
// data never reaches the hosted backend; each device carries its own
// SQLite file, so like state survives restarts the way a browser's local
// storage would.
package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a small SQLite-backed key set store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the local store at path. Use ":memory:" for an
// ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	// modernc's driver is not safe for concurrent writes on one connection
	// pool larger than one.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS liked_posts (
			local_id TEXT NOT NULL,
			post_id  TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (local_id, post_id)
		);
		CREATE TABLE IF NOT EXISTS attended_events (
			local_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (local_id, event_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate local store: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsPostLiked reports whether the device has liked the post.
func (s *Store) IsPostLiked(ctx context.Context, localID, postID string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM liked_posts WHERE local_id = ? AND post_id = ?)
	`, localID, postID)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// SetPostLiked records or clears a device-local like.
func (s *Store) SetPostLiked(ctx context.Context, localID, postID string, liked bool) error {
	if liked {
		_, err := s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO liked_posts (local_id, post_id, created_at) VALUES (?, ?, ?)
		`, localID, postID, time.Now().UTC())
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM liked_posts WHERE local_id = ? AND post_id = ?
	`, localID, postID)
	return err
}

// LikedPosts returns the post ids the device has liked.
func (s *Store) LikedPosts(ctx context.Context, localID string) ([]string, error) {
	return s.listIDs(ctx, `
		SELECT post_id FROM liked_posts WHERE local_id = ? ORDER BY created_at
	`, localID)
}

// MarkEventAttended records that the device's user attended an event.
func (s *Store) MarkEventAttended(ctx context.Context, localID, eventID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO attended_events (local_id, event_id, created_at) VALUES (?, ?, ?)
	`, localID, eventID, time.Now().UTC())
	return err
}

// UnmarkEventAttended removes an attended-event record.
func (s *Store) UnmarkEventAttended(ctx context.Context, localID, eventID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM attended_events WHERE local_id = ? AND event_id = ?
	`, localID, eventID)
	return err
}

// AttendedEvents returns the event ids the device marked as attended.
func (s *Store) AttendedEvents(ctx context.Context, localID string) ([]string, error) {
	return s.listIDs(ctx, `
		SELECT event_id FROM attended_events WHERE local_id = ? ORDER BY created_at
	`, localID)
}

func (s *Store) listIDs(ctx context.Context, query, localID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, localID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
