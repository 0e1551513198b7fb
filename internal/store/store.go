// Package store persists generated image and video records.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"genstudio/types"
)

const DefaultPerPage = 20

var ErrNotFound = errors.New("record not found")

type dialect struct {
	driver string
	serial string
	// numbered placeholders ($1, $2) instead of ?
	numbered bool
}

var dialects = map[string]dialect{
	"sqlite":   {driver: "sqlite", serial: "INTEGER PRIMARY KEY AUTOINCREMENT"},
	"postgres": {driver: "postgres", serial: "BIGSERIAL PRIMARY KEY", numbered: true},
}

func (d dialect) rebind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type Store struct {
	db  *sql.DB
	d   dialect
	now func() time.Time
}

// Open connects to driver ("sqlite" or "postgres") and creates the tables.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening store: %w", err)
	}
	if d.driver == "sqlite" {
		// one connection keeps :memory: databases shared and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging store: %w", err)
	}

	s := &Store{db: db, d: d, now: time.Now}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS images (
			id ` + s.d.serial + `,
			prompt TEXT NOT NULL,
			style TEXT NOT NULL DEFAULT 'realistic',
			resolution TEXT NOT NULL DEFAULT '512x512',
			format TEXT NOT NULL DEFAULT 'PNG',
			image_url TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			error_message TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS videos (
			id ` + s.d.serial + `,
			prompt TEXT NOT NULL,
			style TEXT NOT NULL DEFAULT 'cinematic',
			duration TEXT NOT NULL DEFAULT '5s',
			resolution TEXT NOT NULL DEFAULT '720p',
			fps INTEGER NOT NULL DEFAULT 24,
			video_url TEXT,
			thumbnail_url TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			error_message TEXT,
			file_size BIGINT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *Store) exec(ctx context.Context, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, s.d.rebind(q), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Page is one slice of a newest-first listing.
type Page[T any] struct {
	Items []T
	Total int
	Pages int
	Page  int
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return page, perPage
}

func pageCount(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}

func parseStamp(v string) time.Time {
	t, err := types.ParseTimestamp(v)
	if err != nil {
		return time.Time{}
	}
	return t
}
