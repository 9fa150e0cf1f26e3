package week

import (
	"time"

	"github.com/google/uuid"
	"github.com/weeklog/weeklog/pkg/entry"
)

// Draft is the working copy used by the week editor. Each calendar day holds
// at most one entry; per-day operations create, overwrite or remove that
// entry. Nothing is persisted until the service saves the result wholesale.
type Draft struct {
	entries []entry.TimeEntry
	now     time.Time
}

func NewDraft(entries []entry.TimeEntry, now time.Time) *Draft {
	copied := make([]entry.TimeEntry, len(entries))
	copy(copied, entries)
	return &Draft{entries: copied, now: now}
}

// SetDay records a worked interval for the given day, replacing any existing
// entry on that day. Only the clock time of start and end is used; the stored
// interval always lands on day, keeping the one-entry-per-day assumption
// intact even when the arguments carry a different date.
func (d *Draft) SetDay(day time.Time, start, end time.Time) {
	d.ClearDay(day)
	startOnDay := onDay(day, start)
	endOnDay := onDay(day, end)
	d.entries = append(d.entries, entry.TimeEntry{
		Id:        uuid.NewString(),
		StartTime: startOnDay,
		EndTime:   &endOnDay,
		CreatedAt: d.now,
		UpdatedAt: d.now,
	})
}

// onDay composes t's clock time onto day's calendar date.
func onDay(day, t time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), day.Location())
}

// MarkNotWorked replaces the day's entry with a not-worked marker.
func (d *Draft) MarkNotWorked(day time.Time, reason string) {
	d.ClearDay(day)
	d.entries = append(d.entries, entry.TimeEntry{
		Id:              uuid.NewString(),
		StartTime:       StartOfDay(day),
		NotWorked:       true,
		NotWorkedReason: reason,
		CreatedAt:       d.now,
		UpdatedAt:       d.now,
	})
}

// ClearDay removes the day's entry from the working copy, if any.
func (d *Draft) ClearDay(day time.Time) {
	kept := d.entries[:0]
	for _, e := range d.entries {
		if !IsSameDay(e.StartTime, day) {
			kept = append(kept, e)
		}
	}
	d.entries = kept
}

// Entries returns the working copy ordered by start time.
func (d *Draft) Entries() []entry.TimeEntry {
	result := make([]entry.TimeEntry, len(d.entries))
	copy(result, d.entries)
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].StartTime.Before(result[i].StartTime) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result
}
