package registry

import (
	"fmt"
	"time"

	"github.com/dosewatch/dosewatch/internal/model"
)

// BuildInstances projects the remote supplement and log lists into the flat,
// ordered dose instance list for the given day. Output order is supplement
// order, then Morning, Afternoon, Evening, then time-array order, so two
// builds from identical input are identical. Supplements not scheduled on
// now's weekday contribute nothing, and a time listed more than once for one
// supplement yields a single instance (first listing wins).
func BuildInstances(supplements []model.Supplement, logs []model.DoseLog, now time.Time) []model.DoseInstance {
	byKey := make(map[string]model.DoseLog, len(logs))
	for _, entry := range logs {
		byKey[logKey(entry.SupplementID, entry.ScheduledTime)] = entry
	}

	out := make([]model.DoseInstance, 0, len(supplements)*2)
	for _, supp := range supplements {
		if !supp.ScheduledToday(now.Weekday()) {
			continue
		}
		seen := make(map[string]bool)
		for _, period := range model.Periods {
			times := supp.TimesOfDay[period]
			for idx, raw := range times {
				scheduled := NormalizeTime(raw)
				if seen[scheduled] {
					continue
				}
				seen[scheduled] = true
				inst := model.DoseInstance{
					ID:            InstanceID(supp.ID, period, idx),
					SupplementID:  supp.ID,
					Name:          supp.Name,
					Dosage:        supp.Dosage,
					DosageForm:    supp.DosageForm,
					Period:        period,
					ScheduledTime: scheduled,
					Muted:         !supp.RemindMe,
				}
				if entry, ok := byKey[logKey(supp.ID, scheduled)]; ok {
					inst.Completed = entry.Status == model.LogStatusTaken
					inst.LogID = entry.ID
				}
				out = append(out, inst)
			}
		}
	}
	return out
}

// InstanceID synthesizes the stable per-day id for one supplement slot.
func InstanceID(supplementID string, period model.Period, index int) string {
	return fmt.Sprintf("%s-%s-%d", supplementID, period.Code(), index)
}

func logKey(supplementID, scheduledTime string) string {
	return supplementID + "\x00" + scheduledTime
}
