/*
Package sqlite provides a SQLite-backed implementation of tuition.Store.

PURPOSE:
  Persists levels, swimmers, month exceptions and calculation runs. In
  production the same patterns apply to PostgreSQL with minor SQL dialect
  differences.

KEY TABLES:
  levels:            Level definitions as JSON (versioned)
  swimmers:          Enrolled participants as JSON, name/level denormalized
  month_exceptions:  No-training dates per YYYY-MM
  calculation_runs:  Persisted results, one row per calculation

SNAPSHOTS:
  Snapshot reads levels, swimmers and the month's exception inside one
  read-only SQL transaction, so a calculation never sees a half-applied
  edit.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/tuition.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  in, err := store.Snapshot(ctx, "2025-03")
  result, err := tuition.Calculate(in)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - tuition/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/primeswim/tuition/generic"
	"github.com/primeswim/tuition/tuition"
)

// Store implements tuition.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ tuition.Store = (*Store)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Levels
	CREATE TABLE IF NOT EXISTS levels (
		name TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Swimmers (participants)
	CREATE TABLE IF NOT EXISTS swimmers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		level TEXT,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_swimmers_name
		ON swimmers(name, id);
	CREATE INDEX IF NOT EXISTS idx_swimmers_level
		ON swimmers(level);

	-- No-training dates per month
	CREATE TABLE IF NOT EXISTS month_exceptions (
		month TEXT PRIMARY KEY,
		dates_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Calculation runs
	CREATE TABLE IF NOT EXISTS calculation_runs (
		id TEXT PRIMARY KEY,
		month TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_month
		ON calculation_runs(month);
	CREATE INDEX IF NOT EXISTS idx_runs_fingerprint
		ON calculation_runs(month, fingerprint);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOT (tuition.SnapshotSource)
// =============================================================================

// Snapshot returns the configuration for a month from one read-only transaction.
func (s *Store) Snapshot(ctx context.Context, month string) (tuition.Input, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return tuition.Input{}, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	levels, err := listLevels(ctx, tx)
	if err != nil {
		return tuition.Input{}, err
	}
	participants, err := listParticipants(ctx, tx)
	if err != nil {
		return tuition.Input{}, err
	}
	exception, err := getMonthException(ctx, tx, month)
	if err != nil {
		return tuition.Input{}, err
	}

	in := tuition.Input{
		Month:        month,
		Levels:       make(map[string]tuition.LevelConfig, len(levels)),
		Participants: participants,
		Exception:    exception,
	}
	for _, l := range levels {
		in.Levels[l.Name] = l
	}
	return in, tx.Commit()
}

// =============================================================================
// LEVELS
// =============================================================================

// SaveLevel inserts or replaces a level, bumping its version.
func (s *Store) SaveLevel(ctx context.Context, level tuition.LevelConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(level)
	if err != nil {
		return fmt.Errorf("failed to encode level: %w", err)
	}

	query := `
		INSERT INTO levels (name, config_json, version, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			config_json = excluded.config_json,
			version = levels.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query, level.Name, string(data), now, now)
	return err
}

// GetLevel retrieves a level by name.
func (s *Store) GetLevel(ctx context.Context, name string) (*tuition.LevelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx, "SELECT config_json FROM levels WHERE name = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("level %q: %w", name, generic.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var l tuition.LevelConfig
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		return nil, fmt.Errorf("failed to decode level %q: %w", name, err)
	}
	return &l, nil
}

// ListLevels retrieves all levels ordered by name.
func (s *Store) ListLevels(ctx context.Context) ([]tuition.LevelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listLevels(ctx, s.db)
}

func listLevels(ctx context.Context, q querier) ([]tuition.LevelConfig, error) {
	rows, err := q.QueryContext(ctx, "SELECT name, config_json FROM levels ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := []tuition.LevelConfig{}
	for rows.Next() {
		var name, data string
		if err := rows.Scan(&name, &data); err != nil {
			return nil, err
		}
		var l tuition.LevelConfig
		if err := json.Unmarshal([]byte(data), &l); err != nil {
			return nil, fmt.Errorf("failed to decode level %q: %w", name, err)
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// DeleteLevel removes a level. Swimmers keep their reference to it.
func (s *Store) DeleteLevel(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM levels WHERE name = ?", name)
	if err != nil {
		return err
	}
	return requireAffected(res, "level", name)
}

// =============================================================================
// SWIMMERS
// =============================================================================

// SaveParticipant inserts or replaces a swimmer.
func (s *Store) SaveParticipant(ctx context.Context, p tuition.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode swimmer: %w", err)
	}

	query := `
		INSERT INTO swimmers (id, name, level, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			level = excluded.level,
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query, p.ID, p.Name, nullString(p.Level), string(data), now, now)
	return err
}

// GetParticipant retrieves a swimmer by ID.
func (s *Store) GetParticipant(ctx context.Context, id string) (*tuition.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx, "SELECT config_json FROM swimmers WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("swimmer %q: %w", id, generic.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var p tuition.Participant
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to decode swimmer %q: %w", id, err)
	}
	return &p, nil
}

// ListParticipants retrieves all swimmers ordered by name, then ID.
func (s *Store) ListParticipants(ctx context.Context) ([]tuition.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listParticipants(ctx, s.db)
}

func listParticipants(ctx context.Context, q querier) ([]tuition.Participant, error) {
	rows, err := q.QueryContext(ctx, "SELECT id, config_json FROM swimmers ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []tuition.Participant{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var p tuition.Participant
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("failed to decode swimmer %q: %w", id, err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// DeleteParticipant removes a swimmer.
func (s *Store) DeleteParticipant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM swimmers WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, "swimmer", id)
}

// SetTrainingWeekdays replaces the weekdays of several swimmers in one
// transaction. An unknown ID rolls back the whole batch.
func (s *Store) SetTrainingWeekdays(ctx context.Context, weekdays map[string][]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for id, days := range weekdays {
		var data string
		err := tx.QueryRowContext(ctx, "SELECT config_json FROM swimmers WHERE id = ?", id).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("swimmer %q: %w", id, generic.ErrNotFound)
		}
		if err != nil {
			return err
		}

		var p tuition.Participant
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return fmt.Errorf("failed to decode swimmer %q: %w", id, err)
		}
		p.TrainingWeekdays = append([]int{}, days...)

		updated, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode swimmer: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE swimmers SET config_json = ?, updated_at = ? WHERE id = ?",
			string(updated), now, id,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// =============================================================================
// MONTH EXCEPTIONS
// =============================================================================

// SaveMonthException replaces the no-training dates of a month.
func (s *Store) SaveMonthException(ctx context.Context, e tuition.MonthException) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dates := e.NoTrainingDates
	if dates == nil {
		dates = []string{}
	}
	data, err := json.Marshal(dates)
	if err != nil {
		return fmt.Errorf("failed to encode exception: %w", err)
	}

	query := `
		INSERT INTO month_exceptions (month, dates_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(month) DO UPDATE SET
			dates_json = excluded.dates_json,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, e.Month, string(data), time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetMonthException returns the month's exception, empty when none is stored.
func (s *Store) GetMonthException(ctx context.Context, month string) (tuition.MonthException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getMonthException(ctx, s.db, month)
}

func getMonthException(ctx context.Context, q querier, month string) (tuition.MonthException, error) {
	e := tuition.MonthException{Month: month, NoTrainingDates: []string{}}

	var data string
	err := q.QueryRowContext(ctx, "SELECT dates_json FROM month_exceptions WHERE month = ?", month).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return e, nil
	}
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal([]byte(data), &e.NoTrainingDates); err != nil {
		return e, fmt.Errorf("failed to decode exception %s: %w", month, err)
	}
	return e, nil
}

// =============================================================================
// CALCULATION RUNS
// =============================================================================

// SaveRun persists a calculation result.
func (s *Store) SaveRun(ctx context.Context, run tuition.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO calculation_runs (id, month, fingerprint, result_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Month, run.Fingerprint, string(data), run.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// ListRuns returns runs newest first, optionally for one month only.
func (s *Store) ListRuns(ctx context.Context, month string) ([]tuition.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, month, fingerprint, result_json, created_at FROM calculation_runs"
	var args []any
	if month != "" {
		query += " WHERE month = ?"
		args = append(args, month)
	}
	query += " ORDER BY rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []tuition.Run
	for rows.Next() {
		var r tuition.Run
		var data, createdAt string
		if err := rows.Scan(&r.ID, &r.Month, &r.Fingerprint, &data, &createdAt); err != nil {
			return nil, err
		}
		r.Result = &tuition.Result{}
		if err := json.Unmarshal([]byte(data), r.Result); err != nil {
			return nil, fmt.Errorf("failed to decode run %s: %w", r.ID, err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"calculation_runs", "month_exceptions", "swimmers", "levels"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func requireAffected(res sql.Result, kind, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, key, generic.ErrNotFound)
	}
	return nil
}
