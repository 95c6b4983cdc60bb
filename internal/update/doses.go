package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/internal/api"
	"github.com/dosewatch/dosewatch/internal/reconcile"
	"github.com/dosewatch/dosewatch/internal/scheduler"
)

// toggleTimeout bounds the synchronous store round trip behind a toggle. The
// API client enforces its own per-request deadline underneath.
const toggleTimeout = 15 * time.Second

func waitForDoseCmd(ch <-chan scheduler.DoseEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return DoseDueMsg{Event: ev}
	}
}

// applyDoseEvent handles a fired timer. Events from superseded builds are
// dropped; a due event notifies once and arms the missed follow-up; a missed
// event only surfaces if the dose is still open.
func (m Model) applyDoseEvent(ev scheduler.DoseEvent) Model {
	if m.Planner == nil || !m.Planner.Owns(ev) {
		return m
	}
	inst, ok := m.Registry.Get(ev.InstanceID)
	if !ok || !inst.Active() {
		return m
	}

	switch ev.Kind {
	case scheduler.KindDue:
		if m.Planner.MarkNotified(ev) {
			return m
		}
		m.Status = StatusBar{Text: fmt.Sprintf("time for %s (%s)", ev.Name, ev.Dosage), IsError: false}
		m.notify("Dose Due", fmt.Sprintf("%s %s at %s", ev.Name, ev.Dosage, ev.ScheduledTime), "info")
		if err := m.Planner.ArmMissed(ev, m.now()); err != nil {
			m.log.Warn("arming missed event failed", zap.String("instance_id", ev.InstanceID), zap.Error(err))
		}
	case scheduler.KindMissed:
		m.Status = StatusBar{Text: fmt.Sprintf("missed: %s at %s", ev.Name, ev.ScheduledTime), IsError: true}
		m.notify("Dose Missed", fmt.Sprintf("%s scheduled at %s was not taken", ev.Name, ev.ScheduledTime), "error")
	}
	return m
}

func (m Model) toggleCompletedSelected() Model {
	if m.SelectedDoseID == "" {
		m.Status = StatusBar{Text: "no dose selected", IsError: true}
		return m
	}
	if m.Offline {
		m.Status = StatusBar{Text: "offline: cached data is read-only", IsError: true}
		return m
	}
	if m.Reconciler == nil {
		m.Status = StatusBar{Text: "no backend configured", IsError: true}
		return m
	}

	ctx, cancel := context.WithTimeout(context.Background(), toggleTimeout)
	defer cancel()

	if err := m.Reconciler.ToggleCompleted(ctx, m.SelectedDoseID); err != nil {
		if errors.Is(err, reconcile.ErrUnknownInstance) {
			m.Status = StatusBar{Text: "dose no longer exists, refresh with r", IsError: true}
			return m
		}
		m.Status = StatusBar{Text: fmt.Sprintf("%v (press space to retry)", err), IsError: true}
		m.notify("Save Failed", err.Error(), "error")
		return m
	}

	inst, _ := m.Registry.Get(m.SelectedDoseID)
	if inst.Completed {
		m.Status = StatusBar{Text: fmt.Sprintf("%s marked taken", inst.Name), IsError: false}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("%s back to pending", inst.Name), IsError: false}
	}
	m.rearmPlanner()
	return m
}

func (m Model) toggleMuteSelected() Model {
	if m.SelectedDoseID == "" {
		m.Status = StatusBar{Text: "no dose selected", IsError: true}
		return m
	}
	if m.Offline {
		m.Status = StatusBar{Text: "offline: cached data is read-only", IsError: true}
		return m
	}
	if m.Reconciler == nil {
		m.Status = StatusBar{Text: "no backend configured", IsError: true}
		return m
	}

	ctx, cancel := context.WithTimeout(context.Background(), toggleTimeout)
	defer cancel()

	if err := m.Reconciler.ToggleMute(ctx, m.SelectedDoseID); err != nil {
		if errors.Is(err, reconcile.ErrUnknownInstance) {
			m.Status = StatusBar{Text: "dose no longer exists, refresh with r", IsError: true}
			return m
		}
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Mute Failed", err.Error(), "error")
		m.rearmPlanner()
		return m
	}

	inst, _ := m.Registry.Get(m.SelectedDoseID)
	if inst.Muted {
		m.Status = StatusBar{Text: fmt.Sprintf("reminders off for %s", inst.Name), IsError: false}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("reminders on for %s", inst.Name), IsError: false}
	}
	m.rearmPlanner()
	return m
}

// refresh reloads the registry from the remote store. A dropped (throttled)
// reload leaves everything untouched; a failed one keeps the last good data
// on screen with a retry hint.
func (m Model) refresh() Model {
	if m.Reconciler == nil {
		m.Status = StatusBar{Text: "no backend configured", IsError: true}
		return m
	}

	ctx, cancel := context.WithTimeout(context.Background(), toggleTimeout)
	defer cancel()

	ran, err := m.Reconciler.Reload(ctx)
	if !ran {
		m.Status = StatusBar{Text: "refresh throttled, try again shortly", IsError: false}
		return m
	}
	if err != nil {
		hint := "press r to try again"
		if api.IsAuth(err) {
			hint = "check your access token"
		}
		m.Status = StatusBar{Text: fmt.Sprintf("refresh failed: %v (%s)", err, hint), IsError: true}
		m.notify("Refresh Failed", err.Error(), "error")
		return m
	}

	m.Offline = false
	m.StaleDay = ""
	m.clampCursors()
	armed := m.rearmPlanner()
	m.Status = StatusBar{Text: fmt.Sprintf("refresh complete: %d doses, %d reminders armed", m.Registry.Len(), armed), IsError: false}
	return m
}

// rearmPlanner re-plans the whole timer set from the current registry state.
// Any mutation that can silence or revive a reminder goes through here.
func (m *Model) rearmPlanner() int {
	if m.Planner == nil {
		return 0
	}
	return m.Planner.Rebuild(m.Registry.Instances(), m.now())
}
