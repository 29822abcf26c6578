package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SeenTrack is a recorded track with the time it was first seen.
type SeenTrack struct {
	ID          string
	Name        string
	FirstSeenAt time.Time
}

// Contains reports whether the track id has been recorded.
func (s *Store) Contains(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM seen_tracks WHERE id = ?)", strings.TrimSpace(id),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query seen track: %w", err)
	}
	return exists == 1, nil
}

// Add records the track id. Known ids are left untouched.
func (s *Store) Add(ctx context.Context, id string) error {
	return s.AddTrack(ctx, id, "")
}

// AddTrack records the track id together with its display name at the time
// it was first seen.
func (s *Store) AddTrack(ctx context.Context, id, name string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("empty track id")
	}

	_, err := s.ExecContext(ctx,
		"INSERT INTO seen_tracks (id, name) VALUES (?, ?) ON CONFLICT(id) DO NOTHING",
		id, name,
	)
	if err != nil {
		return fmt.Errorf("insert seen track: %w", err)
	}
	return nil
}

// Len returns the number of recorded ids.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.QueryRowContext(ctx, "SELECT COUNT(*) FROM seen_tracks").Scan(&n); err != nil {
		return 0, fmt.Errorf("count seen tracks: %w", err)
	}
	return n, nil
}

// List returns every recorded id in insertion order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.QueryContext(ctx, "SELECT id FROM seen_tracks ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list seen tracks: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seen track: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Import records ids in a single transaction and returns how many were new.
func (s *Store) Import(ctx context.Context, ids []string) (int, error) {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO seen_tracks (id) VALUES (?) ON CONFLICT(id) DO NOTHING")
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		res, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("import %q: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return added, nil
}

// Recent returns the most recently recorded tracks, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]SeenTrack, error) {
	rows, err := s.QueryContext(ctx,
		"SELECT id, name, first_seen_at FROM seen_tracks ORDER BY seq DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query recent tracks: %w", err)
	}
	defer rows.Close()

	var tracks []SeenTrack
	for rows.Next() {
		var t SeenTrack
		if err := rows.Scan(&t.ID, &t.Name, &t.FirstSeenAt); err != nil {
			return nil, fmt.Errorf("scan recent track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}
