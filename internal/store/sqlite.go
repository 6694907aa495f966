// Package store persists the trained knowledge in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/brainovision/campus-assistant/backend/internal/knowledge"
)

// ErrNotTrained is returned by LoadIntents before the first training run.
var ErrNotTrained = errors.New("no trained intents stored")

// SQLiteStore keeps the intents produced by the last training run.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (and creates if needed) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS intents (
		tag TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		patterns_json TEXT NOT NULL,
		responses_json TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_intents_position ON intents(position);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceIntents atomically swaps the stored intents for intents.
func (s *SQLiteStore) ReplaceIntents(ctx context.Context, intents []knowledge.Intent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM intents`); err != nil {
		return fmt.Errorf("clear intents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO intents (tag, position, patterns_json, responses_json, updated_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for i, in := range intents {
		patterns, err := json.Marshal(in.Patterns)
		if err != nil {
			return fmt.Errorf("marshal patterns of %q: %w", in.Tag, err)
		}
		responses, err := json.Marshal(in.Responses)
		if err != nil {
			return fmt.Errorf("marshal responses of %q: %w", in.Tag, err)
		}
		if _, err := stmt.ExecContext(ctx, in.Tag, i, string(patterns), string(responses), now); err != nil {
			return fmt.Errorf("insert intent %q: %w", in.Tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit intents: %w", err)
	}
	return nil
}

// LoadIntents returns the stored intents in training order.
func (s *SQLiteStore) LoadIntents(ctx context.Context) ([]knowledge.Intent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag, patterns_json, responses_json
		FROM intents ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query intents: %w", err)
	}
	defer rows.Close()

	var intents []knowledge.Intent
	for rows.Next() {
		var in knowledge.Intent
		var patterns, responses string
		if err := rows.Scan(&in.Tag, &patterns, &responses); err != nil {
			return nil, fmt.Errorf("scan intent row: %w", err)
		}
		if err := json.Unmarshal([]byte(patterns), &in.Patterns); err != nil {
			return nil, fmt.Errorf("decode patterns of %q: %w", in.Tag, err)
		}
		if err := json.Unmarshal([]byte(responses), &in.Responses); err != nil {
			return nil, fmt.Errorf("decode responses of %q: %w", in.Tag, err)
		}
		intents = append(intents, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intents: %w", err)
	}
	if len(intents) == 0 {
		return nil, ErrNotTrained
	}
	return intents, nil
}
