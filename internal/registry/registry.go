// Package registry holds the in-memory dose instance list derived from the
// remote supplement and log stores. The list is view state: rebuilt
// wholesale on every fetch, never patched incrementally, and mutated only
// through the registry's own methods so a single writer owns it.
package registry

import (
	"github.com/dosewatch/dosewatch/internal/model"
)

type Registry struct {
	instances []model.DoseInstance
	byID      map[string]int
	byKey     map[string]int
}

func New() *Registry {
	r := &Registry{}
	r.Rebuild(nil)
	return r
}

// Rebuild replaces the entire instance list. Stale indexes from the previous
// build are discarded unconditionally.
func (r *Registry) Rebuild(instances []model.DoseInstance) {
	r.instances = make([]model.DoseInstance, len(instances))
	copy(r.instances, instances)
	r.byID = make(map[string]int, len(instances))
	r.byKey = make(map[string]int, len(instances))
	for i, inst := range r.instances {
		r.byID[inst.ID] = i
		r.byKey[logKey(inst.SupplementID, inst.ScheduledTime)] = i
	}
}

func (r *Registry) Len() int {
	return len(r.instances)
}

// Instances returns a copy of the ordered instance list.
func (r *Registry) Instances() []model.DoseInstance {
	out := make([]model.DoseInstance, len(r.instances))
	copy(out, r.instances)
	return out
}

func (r *Registry) Get(id string) (model.DoseInstance, bool) {
	i, ok := r.byID[id]
	if !ok {
		return model.DoseInstance{}, false
	}
	return r.instances[i], true
}

// Find looks up the instance for an exact (supplement, scheduled time) pair.
func (r *Registry) Find(supplementID, scheduledTime string) (model.DoseInstance, bool) {
	i, ok := r.byKey[logKey(supplementID, scheduledTime)]
	if !ok {
		return model.DoseInstance{}, false
	}
	return r.instances[i], true
}

// Apply mutates the instance with the given id in place and reports whether
// it existed.
func (r *Registry) Apply(id string, mutate func(*model.DoseInstance)) bool {
	i, ok := r.byID[id]
	if !ok {
		return false
	}
	mutate(&r.instances[i])
	return true
}

// ApplyWhere mutates every instance matching the predicate and returns the
// ids it touched, in list order.
func (r *Registry) ApplyWhere(match func(model.DoseInstance) bool, mutate func(*model.DoseInstance)) []string {
	touched := make([]string, 0, 2)
	for i := range r.instances {
		if match(r.instances[i]) {
			mutate(&r.instances[i])
			touched = append(touched, r.instances[i].ID)
		}
	}
	return touched
}
