// Package reconcile applies user toggles to the dose registry optimistically
// and settles them against the remote store: the local flip happens first,
// the network write follows, and a failed write is undone by an explicit
// inverse mutation (completion toggle) or a full reload (mute toggle).
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/internal/api"
	"github.com/dosewatch/dosewatch/internal/model"
	"github.com/dosewatch/dosewatch/internal/registry"
)

// ReloadInterval throttles full-registry reloads: requests arriving inside
// the window are dropped, not queued.
const ReloadInterval = 2 * time.Second

var ErrUnknownInstance = errors.New("reconcile: unknown dose instance")

// Store is the remote backend surface the reconciler needs.
type Store interface {
	ListSupplements(ctx context.Context) ([]model.Supplement, error)
	ListTodayLogs(ctx context.Context) ([]model.DoseLog, error)
	UpdateReminder(ctx context.Context, supplementID string, remind bool) error
	CreateLog(ctx context.Context, in api.CreateLogInput) (model.DoseLog, error)
	UpdateLog(ctx context.Context, id string, in api.UpdateLogInput) (model.DoseLog, error)
}

type Reconciler struct {
	store      Store
	reg        *registry.Registry
	log        *zap.Logger
	lastReload time.Time
	now        func() time.Time
}

func New(store Store, reg *registry.Registry, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		store: store,
		reg:   reg,
		log:   log,
		now:   time.Now,
	}
}

// ToggleMute flips the mute flag for every not-yet-completed instance that
// shares the target's supplement name. The batch-by-name behavior applies
// the toggle to all of today's pending occurrences of that supplement at
// once; this is the intended semantics, not a per-instance toggle. The
// remote write is the supplement-level reminder flag; if it fails, recovery
// is a full reload rather than a fine-grained rollback.
func (r *Reconciler) ToggleMute(ctx context.Context, instanceID string) error {
	inst, ok := r.reg.Get(instanceID)
	if !ok {
		return ErrUnknownInstance
	}
	newMuted := !inst.Muted

	touched := r.reg.ApplyWhere(
		func(d model.DoseInstance) bool { return d.Name == inst.Name && !d.Completed },
		func(d *model.DoseInstance) { d.Muted = newMuted },
	)
	r.log.Debug("mute toggled locally",
		zap.String("supplement", inst.Name),
		zap.Bool("muted", newMuted),
		zap.Int("instances", len(touched)))

	if err := r.store.UpdateReminder(ctx, inst.SupplementID, !newMuted); err != nil {
		r.log.Warn("reminder update failed, reloading registry",
			zap.String("supplement_id", inst.SupplementID), zap.Error(err))
		if _, reloadErr := r.Reload(ctx); reloadErr != nil {
			return fmt.Errorf("update reminder: %w (reload also failed: %v)", err, reloadErr)
		}
		return fmt.Errorf("update reminder: %w", err)
	}
	return nil
}

// ToggleCompleted flips the completion state of exactly one instance.
// Completing a dose also mutes it locally so its reminders stop. On remote
// failure only the two flipped fields are rolled back, and the error is
// returned for the UI to surface as a blocking alert.
func (r *Reconciler) ToggleCompleted(ctx context.Context, instanceID string) error {
	inst, ok := r.reg.Get(instanceID)
	if !ok {
		return ErrUnknownInstance
	}
	prevCompleted := inst.Completed
	prevMuted := inst.Muted
	nowCompleted := !prevCompleted

	r.reg.Apply(instanceID, func(d *model.DoseInstance) {
		d.Completed = nowCompleted
		d.Muted = true
	})

	status := model.LogStatusPending
	var takenAt *time.Time
	if nowCompleted {
		status = model.LogStatusTaken
		t := r.now()
		takenAt = &t
	}

	var entry model.DoseLog
	var err error
	if inst.LogID != "" {
		entry, err = r.store.UpdateLog(ctx, inst.LogID, api.UpdateLogInput{
			Status:  string(status),
			TakenAt: takenAt,
		})
	} else {
		entry, err = r.store.CreateLog(ctx, api.CreateLogInput{
			SupplementID:  inst.SupplementID,
			ScheduledTime: inst.ScheduledTime,
			Status:        string(status),
		})
	}
	if err != nil {
		r.reg.Apply(instanceID, func(d *model.DoseInstance) {
			d.Completed = prevCompleted
			d.Muted = prevMuted
		})
		return fmt.Errorf("saving %s at %s: %w", inst.Name, inst.ScheduledTime, err)
	}

	r.reg.Apply(instanceID, func(d *model.DoseInstance) {
		d.LogID = entry.ID
	})
	return nil
}

// Reload rebuilds the registry from the remote store. Returns false when the
// request fell inside the throttle window and was dropped.
func (r *Reconciler) Reload(ctx context.Context) (bool, error) {
	now := r.now()
	if now.Sub(r.lastReload) < ReloadInterval {
		r.log.Debug("reload throttled")
		return false, nil
	}
	r.lastReload = now

	supplements, err := r.store.ListSupplements(ctx)
	if err != nil {
		return true, fmt.Errorf("list supplements: %w", err)
	}
	logs, err := r.store.ListTodayLogs(ctx)
	if err != nil {
		return true, fmt.Errorf("list today logs: %w", err)
	}
	r.reg.Rebuild(registry.BuildInstances(supplements, logs, now))
	r.log.Info("registry reloaded",
		zap.Int("supplements", len(supplements)),
		zap.Int("logs", len(logs)),
		zap.Int("instances", r.reg.Len()))
	return true, nil
}
