package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"

	"relaybot/internal/config"
	"relaybot/internal/registry"
	"relaybot/pkg/logx"
)

// SQLite keeps the document as a single row so saves stay atomic without a
// migration story. WAL plus a busy timeout covers the (rare) case of an
// external reader poking at the database file.
type SQLite struct {
	db  *sql.DB
	log logx.Logger
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS registry (
	id  INTEGER PRIMARY KEY CHECK (id = 1),
	doc TEXT NOT NULL
);`

func NewSQLite(cfg config.StorageConfig, log logx.Logger) (*SQLite, error) {
	busy, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.BusyTimeout, 5*time.Second)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	dsn := "file:" + cfg.Path + "?" + q.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %s: %w", cfg.Path, err)
	}
	// Single writer; the driver serializes everything anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &SQLite{db: db, log: log}, nil
}

func (s *SQLite) Load(ctx context.Context) (registry.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM registry WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		doc := registry.NewDocument()
		if serr := s.Save(ctx, doc); serr != nil {
			return registry.Document{}, serr
		}
		s.log.Info("seeded empty sqlite registry")
		return doc, nil
	}
	if err != nil {
		return registry.Document{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var doc registry.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return registry.Document{}, fmt.Errorf("store: decode registry row: %w", err)
	}
	if doc.Users == nil {
		doc.Users = map[string]registry.Operator{}
	}
	return doc, nil
}

func (s *SQLite) Save(ctx context.Context, doc registry.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode registry: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO registry (id, doc) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET doc = excluded.doc`, string(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
