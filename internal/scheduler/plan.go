package scheduler

import (
	"time"

	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/internal/model"
)

// GracePeriod is how long after its due time a dose stays open before the
// missed event fires.
const GracePeriod = 30 * time.Minute

// Planner arms due and missed events for the current registry build. It
// follows a cancel-and-rearm discipline: every Rebuild cancels all queued
// events and arms the whole active set from scratch. An epoch counter marks
// each build so in-flight events from an earlier build can be recognized and
// dropped by the consumer.
type Planner struct {
	engine *Engine
	log    *zap.Logger
	epoch  uint64
	// notified records (instance id, HH:MM) slots whose due event already
	// fired today, so a rebuild does not arm the same slot twice.
	notified    map[string]bool
	notifiedDay time.Time
	// Grace overrides GracePeriod; zero means the default. Only tests set it.
	Grace time.Duration
}

func NewPlanner(engine *Engine, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{
		engine:   engine,
		log:      log,
		notified: make(map[string]bool),
	}
}

// Rebuild cancels everything and arms a due event for each active instance.
// Instances whose scheduled minute has already passed today are armed for
// the same time tomorrow rather than fired immediately, so a refresh never
// replays old reminders. Returns the number of events armed.
func (p *Planner) Rebuild(instances []model.DoseInstance, now time.Time) int {
	p.epoch++
	p.engine.Clear()
	p.resetNotifiedIfNewDay(now)

	armed := 0
	for _, inst := range instances {
		if !inst.Active() {
			continue
		}
		if p.notified[slotKey(inst.ID, inst.ScheduledTime)] {
			continue
		}
		due, err := model.DueAt(inst.ScheduledTime, now)
		if err != nil {
			p.log.Warn("skipping unschedulable dose",
				zap.String("instance_id", inst.ID),
				zap.String("scheduled_time", inst.ScheduledTime),
				zap.Error(err))
			continue
		}
		ev := DoseEvent{
			InstanceID:    inst.ID,
			SupplementID:  inst.SupplementID,
			Name:          inst.Name,
			Dosage:        inst.Dosage,
			ScheduledTime: inst.ScheduledTime,
			Kind:          KindDue,
			TriggerAt:     due,
			Epoch:         p.epoch,
		}
		if err := p.engine.Schedule(ev); err != nil {
			p.log.Warn("arming due event failed", zap.String("instance_id", inst.ID), zap.Error(err))
			continue
		}
		armed++
	}
	return armed
}

// Owns reports whether the event belongs to the latest build. Events from
// earlier epochs were cancelled logically and must be ignored.
func (p *Planner) Owns(ev DoseEvent) bool {
	return ev.Epoch == p.epoch
}

// MarkNotified records that the due event for this slot has fired, and
// reports whether it had fired before.
func (p *Planner) MarkNotified(ev DoseEvent) bool {
	key := slotKey(ev.InstanceID, ev.ScheduledTime)
	already := p.notified[key]
	p.notified[key] = true
	return already
}

// ArmMissed schedules the follow-up missed event for a dose whose due event
// just fired. The missed timer is only ever armed from inside the due
// handler, which is what guarantees due-before-missed per instance.
func (p *Planner) ArmMissed(ev DoseEvent, now time.Time) error {
	grace := p.Grace
	if grace <= 0 {
		grace = GracePeriod
	}
	missed := ev
	missed.Kind = KindMissed
	missed.TriggerAt = now.Add(grace)
	return p.engine.Schedule(missed)
}

func (p *Planner) resetNotifiedIfNewDay(now time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !day.Equal(p.notifiedDay) {
		p.notifiedDay = day
		p.notified = make(map[string]bool)
	}
}

func slotKey(instanceID, scheduledTime string) string {
	return instanceID + "@" + scheduledTime
}
