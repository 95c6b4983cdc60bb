// Package storage caches the last successful backend fetch in a local
// sqlite file so the TUI can still render doses when the backend is
// unreachable. The cache holds exactly one snapshot; every save replaces it.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dosewatch/dosewatch/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

const snapshotDayLayout = "2006-01-02"

var ErrNoSnapshot = errors.New("storage: no snapshot cached")

// Snapshot is the last successfully fetched remote state.
type Snapshot struct {
	Day         time.Time
	FetchedAt   time.Time
	Supplements []model.Supplement
	Logs        []model.DoseLog
}

// Stale reports whether the snapshot belongs to an earlier day than now.
// A stale snapshot is rendered read-only: its logs describe a day that is
// already over.
func (s Snapshot) Stale(now time.Time) bool {
	return s.Day.Format(snapshotDayLayout) != now.Format(snapshotDayLayout)
}

type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(db *sql.DB) (*SQLiteCache, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := NewSQLiteCache(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// SaveSnapshot replaces the cached snapshot wholesale inside one
// transaction, matching the registry's rebuild-not-patch discipline.
func (c *SQLiteCache) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"supplements", "dose_logs", "snapshot_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (key, day, fetched_at) VALUES ('latest', ?, ?)`,
		snap.Day.Format(snapshotDayLayout), mustTime(snap.FetchedAt),
	); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	for i, supp := range snap.Supplements {
		times, err := json.Marshal(timesToJSON(supp.TimesOfDay))
		if err != nil {
			return fmt.Errorf("encode times of day: %w", err)
		}
		days, err := json.Marshal(weekdaysToInts(supp.ActiveDays))
		if err != nil {
			return fmt.Errorf("encode active days: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO supplements (id, position, name, dosage, dosage_form, times_of_day, remind_me, active_days)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			supp.ID, i, supp.Name, supp.Dosage, string(supp.DosageForm),
			string(times), boolInt(supp.RemindMe), string(days),
		); err != nil {
			return fmt.Errorf("insert supplement %s: %w", supp.ID, err)
		}
	}

	for _, entry := range snap.Logs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dose_logs (id, supplement_id, scheduled_time, status, taken_at, notes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			entry.ID, entry.SupplementID, entry.ScheduledTime, string(entry.Status),
			nullTime(entry.TakenAt), entry.Notes,
		); err != nil {
			return fmt.Errorf("insert log %s: %w", entry.ID, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot returns the cached snapshot, or ErrNoSnapshot when nothing
// has been saved yet.
func (c *SQLiteCache) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var day, fetched string
	err := c.db.QueryRowContext(ctx,
		`SELECT day, fetched_at FROM snapshot_meta WHERE key = 'latest'`,
	).Scan(&day, &fetched)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, err
	}
	if snap.Day, err = time.ParseInLocation(snapshotDayLayout, day, time.Local); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot day: %w", err)
	}
	if snap.FetchedAt, err = parseRequiredTime(fetched); err != nil {
		return Snapshot{}, err
	}

	if snap.Supplements, err = c.loadSupplements(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Logs, err = c.loadLogs(ctx); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (c *SQLiteCache) loadSupplements(ctx context.Context) ([]model.Supplement, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, dosage, dosage_form, times_of_day, remind_me, active_days
		FROM supplements ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Supplement, 0)
	for rows.Next() {
		var supp model.Supplement
		var form, times, days string
		var remind int
		if err := rows.Scan(&supp.ID, &supp.Name, &supp.Dosage, &form, &times, &remind, &days); err != nil {
			return nil, err
		}
		supp.DosageForm = model.NormalizeDosageForm(form)
		supp.RemindMe = remind == 1
		var decoded map[string][]string
		if err := json.Unmarshal([]byte(times), &decoded); err != nil {
			return nil, fmt.Errorf("decode times of day for %s: %w", supp.ID, err)
		}
		supp.TimesOfDay = timesFromJSON(decoded)
		var dayInts []int
		if err := json.Unmarshal([]byte(days), &dayInts); err != nil {
			return nil, fmt.Errorf("decode active days for %s: %w", supp.ID, err)
		}
		for _, d := range dayInts {
			supp.ActiveDays = append(supp.ActiveDays, time.Weekday(d))
		}
		out = append(out, supp)
	}
	return out, rows.Err()
}

func (c *SQLiteCache) loadLogs(ctx context.Context) ([]model.DoseLog, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, supplement_id, scheduled_time, status, taken_at, notes
		FROM dose_logs ORDER BY supplement_id, scheduled_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.DoseLog, 0)
	for rows.Next() {
		var entry model.DoseLog
		var status string
		var taken sql.NullString
		if err := rows.Scan(&entry.ID, &entry.SupplementID, &entry.ScheduledTime, &status, &taken, &entry.Notes); err != nil {
			return nil, err
		}
		entry.Status = model.LogStatus(status)
		if entry.TakenAt, err = parseNullableTime(taken); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func timesToJSON(times map[model.Period][]string) map[string][]string {
	out := make(map[string][]string, len(times))
	for period, entries := range times {
		out[string(period)] = entries
	}
	return out
}

func timesFromJSON(raw map[string][]string) map[model.Period][]string {
	out := make(map[model.Period][]string, len(raw))
	for name, entries := range raw {
		period := model.Period(name)
		if period.IsValid() && len(entries) > 0 {
			out[period] = entries
		}
	}
	return out
}

func weekdaysToInts(days []time.Weekday) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		out = append(out, int(d))
	}
	return out
}

func mustTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return mustTime(*t)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func parseRequiredTime(value string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", value, err)
	}
	return t, nil
}

func parseNullableTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := parseRequiredTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
