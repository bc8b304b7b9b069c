// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tombee/breakctl/internal/location"
)

// SQLiteStore implements Store on an in-memory SQLite database. It lives
// and dies with the process; breakpoints are never written to disk.
//
// The database is opened with a single connection because every
// connection to ":memory:" is a separate database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens an in-memory database and creates the schema.
func NewSQLiteStore(ctx context.Context) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	// An idle in-memory connection must not be recycled or the data goes with it.
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS breakpoints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			source TEXT NOT NULL,
			line INTEGER NOT NULL DEFAULT 0,
			separator TEXT NOT NULL DEFAULT '',
			member TEXT NOT NULL DEFAULT '',
			condition TEXT NOT NULL DEFAULT '',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_breakpoints_source_line
			ON breakpoints(source, line)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Insert implements Store.
func (s *SQLiteStore) Insert(ctx context.Context, bp *Breakpoint) (int, error) {
	query := `INSERT INTO breakpoints (kind, source, line, separator, member, condition, enabled, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, query,
		string(bp.Kind),
		bp.Source,
		bp.Line,
		string(bp.Separator),
		bp.Member,
		bp.Condition,
		bp.Enabled,
		bp.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert breakpoint: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read breakpoint id: %w", err)
	}
	bp.ID = int(id)
	return bp.ID, nil
}

const selectColumns = `SELECT id, kind, source, line, separator, member, condition, enabled, created_at FROM breakpoints`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBreakpoint(row rowScanner) (*Breakpoint, error) {
	var (
		bp        Breakpoint
		kind      string
		separator string
		createdAt string
	)
	if err := row.Scan(&bp.ID, &kind, &bp.Source, &bp.Line, &separator, &bp.Member, &bp.Condition, &bp.Enabled, &createdAt); err != nil {
		return nil, err
	}
	bp.Kind = Kind(kind)
	bp.Separator = location.Separator(separator)

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	bp.CreatedAt = t
	return &bp, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id int) (*Breakpoint, error) {
	bp, err := scanBreakpoint(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get breakpoint %d: %w", id, err)
	}
	return bp, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]*Breakpoint, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list breakpoints: %w", err)
	}
	defer rows.Close()

	var out []*Breakpoint
	for rows.Next() {
		bp, err := scanBreakpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan breakpoint: %w", err)
		}
		out = append(out, bp)
	}
	return out, rows.Err()
}

// SetEnabled implements Store.
func (s *SQLiteStore) SetEnabled(ctx context.Context, id int, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE breakpoints SET enabled = ? WHERE id = ?`, enabled, id)
	if err != nil {
		return fmt.Errorf("failed to update breakpoint %d: %w", id, err)
	}
	return requireOneRow(res, id)
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM breakpoints WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete breakpoint %d: %w", id, err)
	}
	return requireOneRow(res, id)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func requireOneRow(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}
