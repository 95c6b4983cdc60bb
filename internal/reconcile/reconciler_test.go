package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dosewatch/dosewatch/internal/api"
	"github.com/dosewatch/dosewatch/internal/model"
	"github.com/dosewatch/dosewatch/internal/registry"
)

type fakeStore struct {
	supplements    []model.Supplement
	logs           []model.DoseLog
	listErr        error
	reminderErr    error
	createErr      error
	updateErr      error
	reminderCalls  int
	createCalls    int
	updateCalls    int
	lastReminder   bool
	lastReminderID string
	nextLogID      string
}

func (f *fakeStore) ListSupplements(ctx context.Context) ([]model.Supplement, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.supplements, nil
}

func (f *fakeStore) ListTodayLogs(ctx context.Context) ([]model.DoseLog, error) {
	return f.logs, nil
}

func (f *fakeStore) UpdateReminder(ctx context.Context, supplementID string, remind bool) error {
	f.reminderCalls++
	f.lastReminderID = supplementID
	f.lastReminder = remind
	return f.reminderErr
}

func (f *fakeStore) CreateLog(ctx context.Context, in api.CreateLogInput) (model.DoseLog, error) {
	f.createCalls++
	if f.createErr != nil {
		return model.DoseLog{}, f.createErr
	}
	id := f.nextLogID
	if id == "" {
		id = "log-new"
	}
	return model.DoseLog{
		ID:            id,
		SupplementID:  in.SupplementID,
		ScheduledTime: in.ScheduledTime,
		Status:        model.LogStatus(in.Status),
	}, nil
}

func (f *fakeStore) UpdateLog(ctx context.Context, id string, in api.UpdateLogInput) (model.DoseLog, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return model.DoseLog{}, f.updateErr
	}
	return model.DoseLog{ID: id, Status: model.LogStatus(in.Status)}, nil
}

func testSupplements() []model.Supplement {
	return []model.Supplement{
		{
			ID:         "supp-d3",
			Name:       "Vitamin D3",
			DosageForm: model.DosageFormSoftgel,
			RemindMe:   true,
			TimesOfDay: map[model.Period][]string{
				model.PeriodMorning: {"08:00"},
				model.PeriodEvening: {"20:00"},
			},
		},
	}
}

func setup(t *testing.T, store *fakeStore) (*Reconciler, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	reg.Rebuild(registry.BuildInstances(store.supplements, store.logs, time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)))
	return New(store, reg, nil), reg
}

func TestToggleCompletedCreatesLogAndStoresID(t *testing.T) {
	store := &fakeStore{supplements: testSupplements(), nextLogID: "log-42"}
	rec, reg := setup(t, store)

	if err := rec.ToggleCompleted(context.Background(), "supp-d3-M-0"); err != nil {
		t.Fatalf("toggle completed: %v", err)
	}
	inst, _ := reg.Get("supp-d3-M-0")
	if !inst.Completed || !inst.Muted {
		t.Fatalf("expected completed+muted, got %+v", inst)
	}
	if inst.LogID != "log-42" {
		t.Fatalf("expected returned log id stored, got %q", inst.LogID)
	}
	if store.createCalls != 1 || store.updateCalls != 0 {
		t.Fatalf("expected one create and no update, got create=%d update=%d", store.createCalls, store.updateCalls)
	}
}

func TestToggleCompletedUpdatesExistingLog(t *testing.T) {
	store := &fakeStore{
		supplements: testSupplements(),
		logs: []model.DoseLog{
			{ID: "log-1", SupplementID: "supp-d3", ScheduledTime: "08:00", Status: model.LogStatusTaken},
		},
	}
	rec, reg := setup(t, store)

	// Instance starts completed (log says taken); toggling makes it pending.
	if err := rec.ToggleCompleted(context.Background(), "supp-d3-M-0"); err != nil {
		t.Fatalf("toggle completed: %v", err)
	}
	inst, _ := reg.Get("supp-d3-M-0")
	if inst.Completed {
		t.Fatalf("expected un-completed instance, got %+v", inst)
	}
	if store.updateCalls != 1 || store.createCalls != 0 {
		t.Fatalf("expected update of existing log, got create=%d update=%d", store.createCalls, store.updateCalls)
	}
}

func TestToggleCompletedRollsBackOnFailure(t *testing.T) {
	store := &fakeStore{supplements: testSupplements(), createErr: errors.New("connection refused")}
	rec, reg := setup(t, store)

	before, _ := reg.Get("supp-d3-M-0")
	err := rec.ToggleCompleted(context.Background(), "supp-d3-M-0")
	if err == nil {
		t.Fatal("expected error from failed create")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("error must carry the failure reason: %v", err)
	}
	after, _ := reg.Get("supp-d3-M-0")
	if after.Completed != before.Completed || after.Muted != before.Muted {
		t.Fatalf("expected exact rollback of flipped fields: before=%+v after=%+v", before, after)
	}
	if after.LogID != "" {
		t.Fatalf("no log id may be stored on failure: %+v", after)
	}
}

func TestToggleMuteBatchesBySupplementName(t *testing.T) {
	store := &fakeStore{
		supplements: testSupplements(),
		logs: []model.DoseLog{
			{ID: "log-1", SupplementID: "supp-d3", ScheduledTime: "20:00", Status: model.LogStatusTaken},
		},
	}
	rec, reg := setup(t, store)

	if err := rec.ToggleMute(context.Background(), "supp-d3-M-0"); err != nil {
		t.Fatalf("toggle mute: %v", err)
	}
	morning, _ := reg.Get("supp-d3-M-0")
	evening, _ := reg.Get("supp-d3-E-0")
	if !morning.Muted {
		t.Fatalf("expected morning instance muted, got %+v", morning)
	}
	// Completed instances are left out of the batch.
	if evening.Muted {
		t.Fatalf("completed instance must not be batch-muted, got %+v", evening)
	}
	if store.reminderCalls != 1 || store.lastReminderID != "supp-d3" || store.lastReminder != false {
		t.Fatalf("unexpected remote reminder call: calls=%d id=%s remind=%v",
			store.reminderCalls, store.lastReminderID, store.lastReminder)
	}
}

func TestToggleMuteFailureTriggersReload(t *testing.T) {
	store := &fakeStore{supplements: testSupplements(), reminderErr: errors.New("boom")}
	rec, reg := setup(t, store)
	// Push the throttle window into the past so the recovery reload runs.
	rec.now = func() time.Time { return time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC) }
	rec.lastReload = time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)

	err := rec.ToggleMute(context.Background(), "supp-d3-M-0")
	if err == nil {
		t.Fatal("expected error from failed reminder update")
	}
	// Reload restored the remote truth: instance is unmuted again.
	inst, _ := reg.Get("supp-d3-M-0")
	if inst.Muted {
		t.Fatalf("expected reload to restore unmuted state, got %+v", inst)
	}
}

func TestReloadThrottleDropsRequests(t *testing.T) {
	store := &fakeStore{supplements: testSupplements()}
	rec, _ := setup(t, store)

	base := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	current := base
	rec.now = func() time.Time { return current }

	ran, err := rec.Reload(context.Background())
	if err != nil || !ran {
		t.Fatalf("first reload should run: ran=%v err=%v", ran, err)
	}

	current = base.Add(500 * time.Millisecond)
	ran, err = rec.Reload(context.Background())
	if err != nil || ran {
		t.Fatalf("reload inside window must be dropped: ran=%v err=%v", ran, err)
	}

	current = base.Add(3 * time.Second)
	ran, err = rec.Reload(context.Background())
	if err != nil || !ran {
		t.Fatalf("reload after window should run: ran=%v err=%v", ran, err)
	}
}

func TestToggleUnknownInstance(t *testing.T) {
	store := &fakeStore{supplements: testSupplements()}
	rec, _ := setup(t, store)
	if err := rec.ToggleCompleted(context.Background(), "nope"); !errors.Is(err, ErrUnknownInstance) {
		t.Fatalf("expected ErrUnknownInstance, got %v", err)
	}
	if err := rec.ToggleMute(context.Background(), "nope"); !errors.Is(err, ErrUnknownInstance) {
		t.Fatalf("expected ErrUnknownInstance, got %v", err)
	}
}
