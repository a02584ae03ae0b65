package generator

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/cerebratechai/skillctl/pkg/db"
	"github.com/cerebratechai/skillctl/pkg/db/migrations"
	"github.com/cerebratechai/skillctl/pkg/fsutil"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// fixed width so that stored timestamps sort lexicographically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	statusGenerated = "generated"
	statusFailed    = "failed"
)

// State is the persisted generation progress
type State struct {
	Generated   []string
	Failed      []string
	LastUpdated time.Time
}

// IsGenerated reports whether path has been generated
func (s *State) IsGenerated(path string) bool {
	for _, p := range s.Generated {
		if p == path {
			return true
		}
	}
	return false
}

// Run is one generator invocation
type Run struct {
	ID          string         `db:"id"`
	Mode        string         `db:"mode"`
	Provider    string         `db:"provider"`
	StartedAt   string         `db:"started_at"`
	FinishedAt  sql.NullString `db:"finished_at"`
	Succeeded   int            `db:"succeeded"`
	Failed      int            `db:"failed"`
	Skipped     int            `db:"skipped"`
	Interrupted bool           `db:"interrupted"`
}

// Store persists generation state in SQLite so that an interrupted run
// resumes where it stopped
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// OpenStore opens the state database at path and applies migrations
func OpenStore(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := db.OpenMigrated(ctx, path, migrations.All())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open generation state")
	}
	return NewStore(sqlDB), nil
}

// NewStore wraps an already migrated database
func NewStore(sqlDB *sqlx.DB) *Store {
	return &Store{db: sqlDB, now: time.Now}
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

// Load returns the generated and failed paths in the order they reached that status
func (s *Store) Load(ctx context.Context) (*State, error) {
	var rows []struct {
		Path      string `db:"path"`
		Status    string `db:"status"`
		UpdatedAt string `db:"updated_at"`
	}
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT path, status, updated_at FROM generation_items ORDER BY updated_at, rowid"); err != nil {
		return nil, errors.Wrap(err, "failed to load generation state")
	}

	state := &State{}
	for _, row := range rows {
		switch row.Status {
		case statusGenerated:
			state.Generated = append(state.Generated, row.Path)
		case statusFailed:
			state.Failed = append(state.Failed, row.Path)
		}
		if t, err := time.Parse(timeLayout, row.UpdatedAt); err == nil && t.After(state.LastUpdated) {
			state.LastUpdated = t
		}
	}
	return state, nil
}

// MarkGenerated records a successful generation, removing the path from the failed list
func (s *Store) MarkGenerated(ctx context.Context, path string) error {
	return s.upsert(ctx, path, statusGenerated, "")
}

// MarkFailed records a failed generation with its error
func (s *Store) MarkFailed(ctx context.Context, path string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.upsert(ctx, path, statusFailed, msg)
}

func (s *Store) upsert(ctx context.Context, path, status, msg string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_items (path, status, error, attempts, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(path) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			attempts = generation_items.attempts + 1,
			updated_at = excluded.updated_at
	`, path, status, msg, s.timestamp())
	return errors.Wrapf(err, "failed to save state for %s", path)
}

// ClearFailed forgets every failed path
func (s *Store) ClearFailed(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM generation_items WHERE status = ?", statusFailed)
	return errors.Wrap(err, "failed to clear failed skills")
}

// LastError returns the error recorded for a failed path
func (s *Store) LastError(ctx context.Context, path string) (string, error) {
	var msg string
	err := s.db.GetContext(ctx, &msg, "SELECT error FROM generation_items WHERE path = ?", path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return msg, errors.Wrap(err, "failed to read last error")
}

// BeginRun records the start of a run
func (s *Store) BeginRun(ctx context.Context, run *Run) error {
	run.StartedAt = s.timestamp()
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO generation_runs (id, mode, provider, started_at)
		VALUES (:id, :mode, :provider, :started_at)
	`, run)
	return errors.Wrap(err, "failed to record run start")
}

// FinishRun records the outcome of a run
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	run.FinishedAt = sql.NullString{String: s.timestamp(), Valid: true}
	_, err := s.db.NamedExecContext(ctx, `
		UPDATE generation_runs SET
			finished_at = :finished_at,
			succeeded = :succeeded,
			failed = :failed,
			skipped = :skipped,
			interrupted = :interrupted
		WHERE id = :id
	`, run)
	return errors.Wrap(err, "failed to record run result")
}

// Runs returns the most recent runs, newest first
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := s.db.SelectContext(ctx, &runs,
		"SELECT * FROM generation_runs ORDER BY started_at DESC LIMIT ?", limit)
	return runs, errors.Wrap(err, "failed to list runs")
}

// legacyState is the generation_state.json layout written by earlier tooling
type legacyState struct {
	Generated []string `json:"generated"`
	Failed    []string `json:"failed"`
}

// ImportLegacy loads a generation_state.json file into an empty store.
// It reports false when the file is missing or the store already has state.
func (s *Store) ImportLegacy(ctx context.Context, path string) (bool, error) {
	if !fsutil.Exists(path) {
		return false, nil
	}

	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM generation_items"); err != nil {
		return false, errors.Wrap(err, "failed to count generation state")
	}
	if count > 0 {
		return false, nil
	}

	data, err := fsutil.ReadFile(path)
	if err != nil {
		return false, err
	}
	var legacy legacyState
	if err := json.Unmarshal(data, &legacy); err != nil {
		return false, errors.Wrapf(err, "failed to parse %s", path)
	}

	for _, p := range legacy.Generated {
		if err := s.MarkGenerated(ctx, p); err != nil {
			return false, err
		}
	}
	for _, p := range legacy.Failed {
		if err := s.MarkFailed(ctx, p, nil); err != nil {
			return false, err
		}
	}

	logger.G(ctx).WithField("generated", len(legacy.Generated)).WithField("failed", len(legacy.Failed)).Info("imported legacy generation state")
	return true, nil
}
