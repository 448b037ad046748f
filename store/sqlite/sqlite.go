/*
Package sqlite provides the SQLite-backed workspace data store.

PURPOSE:
  Persists everything the analysis server needs besides the entries
  themselves: the workspace overtime config, member profiles, per-user
  schedule overrides, and the authoritative holiday and time-off calendars.
  The attribution engine itself persists nothing; it is a pure function fed
  from this store by the API layer.

KEY TABLES:
  workspace_config:  Single-row overtime ruleset (JSON)
  profiles:          Member capacity and working-day data
  overrides:         Per-user cascade values (weekly/per-day maps as JSON)
  holidays:          One row per (user, day), pre-flattened by the importer
  time_off:          One row per (user, day) of approved time off

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and crash recovery improves.

USAGE:
  store, err := sqlite.New("./data/attribution.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - api/handlers.go: The only consumer of this store
  - engine/types.go: The structures persisted here
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/attribution-engine/engine"
)

// Store persists workspace configuration and schedule data.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Workspace overtime config (single row)
	CREATE TABLE IF NOT EXISTS workspace_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config_json TEXT NOT NULL
	);

	-- Member profiles
	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		work_capacity_hours TEXT,
		working_days_json TEXT NOT NULL DEFAULT '{}'
	);

	-- Per-user schedule overrides
	CREATE TABLE IF NOT EXISTS overrides (
		user_id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		global_json TEXT NOT NULL DEFAULT '{}',
		weekly_json TEXT NOT NULL DEFAULT '{}',
		per_day_json TEXT NOT NULL DEFAULT '{}'
	);

	-- Authoritative holiday calendar, one row per user-day
	CREATE TABLE IF NOT EXISTS holidays (
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (user_id, date)
	);
	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);

	-- Approved time off, one row per user-day
	CREATE TABLE IF NOT EXISTS time_off (
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		hours TEXT NOT NULL,
		is_full_day INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, date)
	);
	CREATE INDEX IF NOT EXISTS idx_time_off_date ON time_off(date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WORKSPACE CONFIG
// =============================================================================

// SaveConfig stores the workspace overtime ruleset.
func (s *Store) SaveConfig(ctx context.Context, cfg engine.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workspace_config (id, config_json) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET config_json = excluded.config_json`,
		string(payload))
	return err
}

// GetConfig returns the stored ruleset, or the default when none was saved.
func (s *Store) GetConfig(ctx context.Context) (engine.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT config_json FROM workspace_config WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return engine.DefaultConfig(), nil
	}
	if err != nil {
		return engine.Config{}, err
	}

	var cfg engine.Config
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return engine.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// PROFILES
// =============================================================================

// UpsertProfile inserts or replaces a member profile.
func (s *Store) UpsertProfile(ctx context.Context, p engine.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	workingDays, err := json.Marshal(p.WorkingDays)
	if err != nil {
		return fmt.Errorf("failed to encode working days: %w", err)
	}

	var capacity sql.NullString
	if p.WorkCapacityHours != nil {
		capacity = sql.NullString{String: p.WorkCapacityHours.String(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, name, work_capacity_hours, working_days_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			work_capacity_hours = excluded.work_capacity_hours,
			working_days_json = excluded.working_days_json`,
		string(p.UserID), p.Name, capacity, string(workingDays))
	return err
}

// GetProfile returns one member profile.
func (s *Store) GetProfile(ctx context.Context, userID engine.UserID) (engine.Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, work_capacity_hours, working_days_json
		FROM profiles WHERE user_id = ?`, string(userID))

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return engine.Profile{}, false, nil
	}
	if err != nil {
		return engine.Profile{}, false, err
	}
	return p, true, nil
}

// ListProfiles returns all member profiles keyed by user.
func (s *Store) ListProfiles(ctx context.Context) (engine.Profiles, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, name, work_capacity_hours, working_days_json
		FROM profiles ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make(engine.Profiles)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles[p.UserID] = p
	}
	return profiles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (engine.Profile, error) {
	var (
		userID      string
		name        string
		capacity    sql.NullString
		workingDays string
	)
	if err := row.Scan(&userID, &name, &capacity, &workingDays); err != nil {
		return engine.Profile{}, err
	}

	p := engine.Profile{UserID: engine.UserID(userID), Name: name}
	if capacity.Valid {
		value, err := decimal.NewFromString(capacity.String)
		if err != nil {
			return engine.Profile{}, fmt.Errorf("corrupt capacity for %s: %w", userID, err)
		}
		p.WorkCapacityHours = &value
	}
	if err := json.Unmarshal([]byte(workingDays), &p.WorkingDays); err != nil {
		return engine.Profile{}, fmt.Errorf("corrupt working days for %s: %w", userID, err)
	}
	return p, nil
}

// =============================================================================
// OVERRIDES
// =============================================================================

// SaveOverride inserts or replaces one user's schedule override.
func (s *Store) SaveOverride(ctx context.Context, userID engine.UserID, ov engine.Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	global, err := json.Marshal(ov.Global)
	if err != nil {
		return fmt.Errorf("failed to encode global override: %w", err)
	}
	weekly, err := json.Marshal(ov.Weekly)
	if err != nil {
		return fmt.Errorf("failed to encode weekly overrides: %w", err)
	}
	perDay, err := json.Marshal(ov.PerDay)
	if err != nil {
		return fmt.Errorf("failed to encode per-day overrides: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO overrides (user_id, mode, global_json, weekly_json, per_day_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			mode = excluded.mode,
			global_json = excluded.global_json,
			weekly_json = excluded.weekly_json,
			per_day_json = excluded.per_day_json`,
		string(userID), string(ov.Mode), string(global), string(weekly), string(perDay))
	return err
}

// GetOverride returns one user's schedule override.
func (s *Store) GetOverride(ctx context.Context, userID engine.UserID) (engine.Override, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT mode, global_json, weekly_json, per_day_json
		FROM overrides WHERE user_id = ?`, string(userID))

	var mode, global, weekly, perDay string
	err := row.Scan(&mode, &global, &weekly, &perDay)
	if err == sql.ErrNoRows {
		return engine.Override{}, false, nil
	}
	if err != nil {
		return engine.Override{}, false, err
	}

	ov, err := decodeOverride(mode, global, weekly, perDay)
	if err != nil {
		return engine.Override{}, false, fmt.Errorf("corrupt override for %s: %w", userID, err)
	}
	return ov, true, nil
}

// DeleteOverride removes one user's schedule override.
func (s *Store) DeleteOverride(ctx context.Context, userID engine.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM overrides WHERE user_id = ?`, string(userID))
	return err
}

// ListOverrides returns all schedule overrides keyed by user.
func (s *Store) ListOverrides(ctx context.Context) (engine.Overrides, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, mode, global_json, weekly_json, per_day_json
		FROM overrides ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make(engine.Overrides)
	for rows.Next() {
		var userID, mode, global, weekly, perDay string
		if err := rows.Scan(&userID, &mode, &global, &weekly, &perDay); err != nil {
			return nil, err
		}
		ov, err := decodeOverride(mode, global, weekly, perDay)
		if err != nil {
			return nil, fmt.Errorf("corrupt override for %s: %w", userID, err)
		}
		overrides[engine.UserID(userID)] = ov
	}
	return overrides, rows.Err()
}

func decodeOverride(mode, global, weekly, perDay string) (engine.Override, error) {
	ov := engine.Override{Mode: engine.OverrideMode(mode)}
	if err := json.Unmarshal([]byte(global), &ov.Global); err != nil {
		return engine.Override{}, err
	}
	if err := json.Unmarshal([]byte(weekly), &ov.Weekly); err != nil {
		return engine.Override{}, err
	}
	if err := json.Unmarshal([]byte(perDay), &ov.PerDay); err != nil {
		return engine.Override{}, err
	}
	return ov, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// AddHoliday records one pre-flattened holiday day for a user.
func (s *Store) AddHoliday(ctx context.Context, userID engine.UserID, date engine.DateKey, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (user_id, date, name) VALUES (?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET name = excluded.name`,
		string(userID), date.String(), name)
	return err
}

// ListHolidays returns the holiday calendar for all users.
func (s *Store) ListHolidays(ctx context.Context) (engine.HolidayCalendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, date, name FROM holidays ORDER BY user_id, date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calendar := make(engine.HolidayCalendar)
	for rows.Next() {
		var userID, date, name string
		if err := rows.Scan(&userID, &date, &name); err != nil {
			return nil, err
		}
		key, err := engine.ParseDateKey(date)
		if err != nil {
			return nil, fmt.Errorf("corrupt holiday date for %s: %w", userID, err)
		}
		uid := engine.UserID(userID)
		if calendar[uid] == nil {
			calendar[uid] = make(map[engine.DateKey]engine.Holiday)
		}
		calendar[uid][key] = engine.Holiday{Name: name}
	}
	return calendar, rows.Err()
}

// =============================================================================
// TIME OFF
// =============================================================================

// AddTimeOff records one approved time-off day for a user.
func (s *Store) AddTimeOff(ctx context.Context, userID engine.UserID, date engine.DateKey, off engine.TimeOffDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fullDay := 0
	if off.IsFullDay {
		fullDay = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_off (user_id, date, hours, is_full_day) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			hours = excluded.hours,
			is_full_day = excluded.is_full_day`,
		string(userID), date.String(), off.Hours.String(), fullDay)
	return err
}

// ListTimeOff returns the time-off calendar for all users.
func (s *Store) ListTimeOff(ctx context.Context) (engine.TimeOffCalendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, date, hours, is_full_day FROM time_off ORDER BY user_id, date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calendar := make(engine.TimeOffCalendar)
	for rows.Next() {
		var (
			userID, date, hours string
			fullDay             int
		)
		if err := rows.Scan(&userID, &date, &hours, &fullDay); err != nil {
			return nil, err
		}
		key, err := engine.ParseDateKey(date)
		if err != nil {
			return nil, fmt.Errorf("corrupt time-off date for %s: %w", userID, err)
		}
		value, err := decimal.NewFromString(hours)
		if err != nil {
			return nil, fmt.Errorf("corrupt time-off hours for %s: %w", userID, err)
		}
		uid := engine.UserID(userID)
		if calendar[uid] == nil {
			calendar[uid] = make(map[engine.DateKey]engine.TimeOffDay)
		}
		calendar[uid][key] = engine.TimeOffDay{Hours: value, IsFullDay: fullDay == 1}
	}
	return calendar, rows.Err()
}

// =============================================================================
// DEV RESET
// =============================================================================

// Reset clears all workspace data. Dev/demo use only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"workspace_config", "profiles", "overrides", "holidays", "time_off"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}
