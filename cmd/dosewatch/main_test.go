package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/internal/api"
	"github.com/dosewatch/dosewatch/internal/model"
	"github.com/dosewatch/dosewatch/internal/reconcile"
	"github.com/dosewatch/dosewatch/internal/registry"
	"github.com/dosewatch/dosewatch/internal/scheduler"
	"github.com/dosewatch/dosewatch/internal/storage"
)

var errBackendDown = errors.New("dial tcp: connection refused")

// downStore simulates an unreachable backend.
type downStore struct{}

func (downStore) ListSupplements(context.Context) ([]model.Supplement, error) {
	return nil, errBackendDown
}

func (downStore) ListTodayLogs(context.Context) ([]model.DoseLog, error) {
	return nil, errBackendDown
}

func (downStore) UpdateReminder(context.Context, string, bool) error {
	return errBackendDown
}

func (downStore) CreateLog(context.Context, api.CreateLogInput) (model.DoseLog, error) {
	return model.DoseLog{}, errBackendDown
}

func (downStore) UpdateLog(context.Context, string, api.UpdateLogInput) (model.DoseLog, error) {
	return model.DoseLog{}, errBackendDown
}

func TestInitialLoadSnapshotFallbackArmsReminders(t *testing.T) {
	cache, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	now := time.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	snap := storage.Snapshot{
		Day:       day,
		FetchedAt: now,
		Supplements: []model.Supplement{
			{
				ID:         "supp-d3",
				Name:       "Vitamin D3",
				Dosage:     "5000 IU",
				DosageForm: model.DosageFormSoftgel,
				RemindMe:   true,
				TimesOfDay: map[model.Period][]string{
					model.PeriodMorning: {"08:00"},
				},
			},
		},
	}
	if err := cache.SaveSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	reg := registry.New()
	rec := reconcile.New(downStore{}, reg, zap.NewNop())
	engine := scheduler.NewEngine(8)
	planner := scheduler.NewPlanner(engine, zap.NewNop())

	offline, staleDay, err := initialLoad(rec, reg, planner, cache, zap.NewNop())
	if err != nil {
		t.Fatalf("initialLoad: %v", err)
	}
	if !offline {
		t.Fatal("expected offline session when the backend is unreachable")
	}
	if staleDay != "" {
		t.Fatalf("same-day snapshot must not be flagged stale, got %q", staleDay)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 cached dose instance, got %d", reg.Len())
	}
	if got := engine.Pending(); got != 1 {
		t.Fatalf("expected 1 armed due event after snapshot fallback, got %d", got)
	}
}

func TestInitialLoadWithoutSnapshotStartsEmpty(t *testing.T) {
	cache, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	reg := registry.New()
	rec := reconcile.New(downStore{}, reg, zap.NewNop())
	engine := scheduler.NewEngine(8)
	planner := scheduler.NewPlanner(engine, zap.NewNop())

	offline, staleDay, err := initialLoad(rec, reg, planner, cache, zap.NewNop())
	if err != nil {
		t.Fatalf("initialLoad: %v", err)
	}
	if !offline || staleDay != "" {
		t.Fatalf("expected plain offline start, got offline=%v staleDay=%q", offline, staleDay)
	}
	if reg.Len() != 0 || engine.Pending() != 0 {
		t.Fatalf("expected empty session, got %d instances and %d events", reg.Len(), engine.Pending())
	}
}
