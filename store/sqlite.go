package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/use-agent/tubemeta/models"
	_ "modernc.org/sqlite"
)

// SQLite persists records in a single table ordered by rowid.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS videos (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		url              TEXT NOT NULL,
		title            TEXT NOT NULL,
		channel_name     TEXT NOT NULL,
		subscriber_count TEXT NOT NULL,
		view_count       TEXT NOT NULL,
		like_count       TEXT NOT NULL,
		comment_count    TEXT NOT NULL,
		publish_date     TEXT NOT NULL,
		error            TEXT NOT NULL DEFAULT ''
	)`)
	return err
}

// Append inserts recs in one transaction.
func (s *SQLite) Append(ctx context.Context, recs ...models.VideoRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO videos
		(url, title, channel_name, subscriber_count, view_count, like_count, comment_count, publish_date, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx,
			r.URL, r.Title, r.ChannelName, r.SubscriberCount, r.ViewCount,
			r.LikeCount, r.CommentCount, r.PublishDate, r.Error,
		); err != nil {
			return fmt.Errorf("store: insert %s: %w", r.URL, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) List(ctx context.Context) ([]models.VideoRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		url, title, channel_name, subscriber_count, view_count, like_count, comment_count, publish_date, error
		FROM videos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	recs := []models.VideoRecord{}
	for rows.Next() {
		var r models.VideoRecord
		if err := rows.Scan(
			&r.URL, &r.Title, &r.ChannelName, &r.SubscriberCount, &r.ViewCount,
			&r.LikeCount, &r.CommentCount, &r.PublishDate, &r.Error,
		); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM videos`); err != nil {
		return fmt.Errorf("store: clear: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
