package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

const (
	settingsKey     = "settings"
	consoleStateKey = "console_state"
)

// SQLite-backed implementation of the ScenarioStore port.
//
// Corrupt stored JSON never surfaces as an error: the row is logged and the
// caller receives defaults. Errors mean the storage layer itself failed.
type SqliteScenarioStore struct{ DB *sql.DB }

func NewSqliteScenarioStore(db *sql.DB) *SqliteScenarioStore {
	return &SqliteScenarioStore{DB: db}
}

func (s *SqliteScenarioStore) LoadSettings(ctx context.Context) (domain.Settings, error) {
	if s.DB == nil {
		return domain.Settings{}, errors.New("scenario store: DB is nil")
	}

	var raw string
	row := s.DB.QueryRowContext(ctx, `SELECT value FROM kv_state WHERE key = ?;`, settingsKey)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Settings{}, nil
		}
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	var settings domain.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		log.Printf("stored settings unreadable, using defaults: %v", err)
		return domain.Settings{}, nil
	}

	return settings, nil
}

func (s *SqliteScenarioStore) SaveSettings(ctx context.Context, settings domain.Settings) error {
	if s.DB == nil {
		return errors.New("scenario store: DB is nil")
	}

	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("save settings: encode: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO kv_state (key, value)
	VALUES (?, ?);
	`, settingsKey, string(value))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	return nil
}

// SaveScenario removes any scenario with the same name and inserts the new
// snapshot, so a re-save always carries a fresh id and timestamp and lists
// first.
func (s *SqliteScenarioStore) SaveScenario(ctx context.Context, name string, data domain.ScenarioData) (domain.SavedScenario, error) {
	if s.DB == nil {
		return domain.SavedScenario{}, errors.New("scenario store: DB is nil")
	}
	if name == "" {
		return domain.SavedScenario{}, errors.New("save scenario: name must not be empty")
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return domain.SavedScenario{}, fmt.Errorf("save scenario: encode data: %w", err)
	}

	saved := domain.SavedScenario{
		ID:      uuid.NewString(),
		Name:    name,
		SavedAt: time.Now().UTC(),
		Data:    data,
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.SavedScenario{}, fmt.Errorf("save scenario: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scenarios WHERE name = ?;`, name); err != nil {
		return domain.SavedScenario{}, fmt.Errorf("save scenario: replace existing: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO scenarios (id, name, saved_at, data)
	VALUES (?, ?, ?, ?);
	`, saved.ID, saved.Name, saved.SavedAt.Format(time.RFC3339Nano), string(encoded))
	if err != nil {
		return domain.SavedScenario{}, fmt.Errorf("save scenario: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.SavedScenario{}, fmt.Errorf("save scenario: commit tx: %w", err)
	}

	return saved, nil
}

// ListScenarios returns all saved scenarios, most recently saved first.
// Rows with unreadable data are logged and skipped.
func (s *SqliteScenarioStore) ListScenarios(ctx context.Context) ([]domain.SavedScenario, error) {
	if s.DB == nil {
		return nil, errors.New("scenario store: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, name, saved_at, data
	FROM scenarios
	ORDER BY saved_at DESC;
	`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SavedScenario, 0, 16)
	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("list scenarios: %w", err)
		}
		if scenario == nil {
			continue
		}
		out = append(out, *scenario)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scenarios: row iteration: %w", err)
	}

	return out, nil
}

func (s *SqliteScenarioStore) GetScenario(ctx context.Context, id string) (domain.SavedScenario, error) {
	if s.DB == nil {
		return domain.SavedScenario{}, errors.New("scenario store: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT id, name, saved_at, data
	FROM scenarios
	WHERE id = ?;
	`, id)

	scenario, err := scanScenario(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SavedScenario{}, ports.ErrNotFound
		}
		return domain.SavedScenario{}, fmt.Errorf("get scenario: %w", err)
	}
	if scenario == nil {
		return domain.SavedScenario{}, ports.ErrNotFound
	}

	return *scenario, nil
}

func (s *SqliteScenarioStore) DeleteScenario(ctx context.Context, id string) error {
	if s.DB == nil {
		return errors.New("scenario store: DB is nil")
	}

	// Unknown ids are a silent no-op.
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	return nil
}

func (s *SqliteScenarioStore) LoadConsoleState(ctx context.Context) ([]byte, error) {
	if s.DB == nil {
		return nil, errors.New("scenario store: DB is nil")
	}

	var raw string
	row := s.DB.QueryRowContext(ctx, `SELECT value FROM kv_state WHERE key = ?;`, consoleStateKey)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load console state: %w", err)
	}

	return []byte(raw), nil
}

func (s *SqliteScenarioStore) SaveConsoleState(ctx context.Context, state []byte) error {
	if s.DB == nil {
		return errors.New("scenario store: DB is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO kv_state (key, value)
	VALUES (?, ?);
	`, consoleStateKey, string(state))
	if err != nil {
		return fmt.Errorf("save console state: %w", err)
	}

	return nil
}

// AppendHistory inserts the entry and trims the table to the most recent
// HistoryLimit entries.
func (s *SqliteScenarioStore) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	if s.DB == nil {
		return errors.New("scenario store: DB is nil")
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append history: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO request_history (id, at, method, path, status, latency_ms, error)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`, entry.ID, entry.At.Format(time.RFC3339Nano), entry.Method, entry.Path, entry.Status, entry.LatencyMs, entry.Error)
	if err != nil {
		return fmt.Errorf("append history: insert: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
	DELETE FROM request_history
	WHERE id NOT IN (
		SELECT id FROM request_history
		ORDER BY at DESC
		LIMIT ?
	);
	`, domain.HistoryLimit)
	if err != nil {
		return fmt.Errorf("append history: trim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append history: commit tx: %w", err)
	}

	return nil
}

func (s *SqliteScenarioStore) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	if s.DB == nil {
		return nil, errors.New("scenario store: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, at, method, path, status, latency_ms, error
	FROM request_history
	ORDER BY at DESC
	LIMIT ?;
	`, domain.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]domain.HistoryEntry, 0, domain.HistoryLimit)
	for rows.Next() {
		var entry domain.HistoryEntry
		var at string
		if err := rows.Scan(&entry.ID, &at, &entry.Method, &entry.Path, &entry.Status, &entry.LatencyMs, &entry.Error); err != nil {
			return nil, fmt.Errorf("list history: scan row: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			log.Printf("history entry %s has unreadable timestamp, skipping: %v", entry.ID, err)
			continue
		}
		entry.At = parsed
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: row iteration: %w", err)
	}

	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanScenario reads one scenario row. Returns (nil, nil) when the stored
// payload is unreadable; the row is logged, not surfaced.
func scanScenario(row rowScanner) (*domain.SavedScenario, error) {
	var scenario domain.SavedScenario
	var savedAt, data string
	if err := row.Scan(&scenario.ID, &scenario.Name, &savedAt, &data); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		log.Printf("scenario %s has unreadable timestamp, skipping: %v", scenario.ID, err)
		return nil, nil
	}
	scenario.SavedAt = parsed

	if err := json.Unmarshal([]byte(data), &scenario.Data); err != nil {
		log.Printf("scenario %s has unreadable data, skipping: %v", scenario.ID, err)
		return nil, nil
	}

	return &scenario, nil
}
