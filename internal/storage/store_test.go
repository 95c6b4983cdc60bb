package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dosewatch/dosewatch/internal/api"
	"github.com/dosewatch/dosewatch/internal/model"
)

type fakeRemote struct {
	supplements []model.Supplement
	logs        []model.DoseLog
	listErr     error
}

func (f *fakeRemote) ListSupplements(context.Context) ([]model.Supplement, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.supplements, nil
}

func (f *fakeRemote) ListTodayLogs(context.Context) ([]model.DoseLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.logs, nil
}

func (f *fakeRemote) UpdateReminder(context.Context, string, bool) error { return nil }

func (f *fakeRemote) CreateLog(_ context.Context, in api.CreateLogInput) (model.DoseLog, error) {
	return model.DoseLog{ID: "log-new", SupplementID: in.SupplementID}, nil
}

func (f *fakeRemote) UpdateLog(_ context.Context, id string, _ api.UpdateLogInput) (model.DoseLog, error) {
	return model.DoseLog{ID: id}, nil
}

func TestCachedStoreWritesSnapshotAfterBothLists(t *testing.T) {
	cache := setupCache(t)
	snap := sampleSnapshot()
	remote := &fakeRemote{supplements: snap.Supplements, logs: snap.Logs}

	store := NewCachedStore(remote, cache, nil)
	store.now = func() time.Time { return time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local) }

	ctx := context.Background()
	if _, err := store.ListSupplements(ctx); err != nil {
		t.Fatalf("list supplements: %v", err)
	}
	if _, err := store.ListTodayLogs(ctx); err != nil {
		t.Fatalf("list logs: %v", err)
	}

	got, err := cache.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if len(got.Supplements) != len(snap.Supplements) {
		t.Fatalf("cached %d supplements, want %d", len(got.Supplements), len(snap.Supplements))
	}
	if len(got.Logs) != len(snap.Logs) {
		t.Fatalf("cached %d logs, want %d", len(got.Logs), len(snap.Logs))
	}
	if got.Stale(time.Date(2026, 8, 28, 23, 0, 0, 0, time.Local)) {
		t.Fatal("same-day snapshot should not be stale")
	}
}

func TestCachedStoreSkipsSnapshotWithoutSupplementList(t *testing.T) {
	cache := setupCache(t)
	remote := &fakeRemote{logs: sampleSnapshot().Logs}

	store := NewCachedStore(remote, cache, nil)
	if _, err := store.ListTodayLogs(context.Background()); err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if _, err := cache.LoadSnapshot(context.Background()); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}
