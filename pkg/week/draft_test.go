package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weeklog/weeklog/pkg/entry"
)

func TestDraft(t *testing.T) {
	now := time.Date(2025, time.March, 14, 18, 0, 0, 0, time.UTC)
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	mondayEnd := monday.Add(17 * time.Hour)
	existing := entry.TimeEntry{
		Id:        "entry-monday",
		StartTime: monday.Add(9 * time.Hour),
		EndTime:   &mondayEnd,
	}

	t.Run("does not mutate the source slice", func(t *testing.T) {
		source := []entry.TimeEntry{existing}
		draft := NewDraft(source, now)

		draft.ClearDay(monday)

		assert.Len(t, source, 1)
		assert.Empty(t, draft.Entries())
	})

	t.Run("SetDay adds an entry on a free day", func(t *testing.T) {
		draft := NewDraft([]entry.TimeEntry{existing}, now)

		draft.SetDay(tuesday, tuesday.Add(9*time.Hour), tuesday.Add(13*time.Hour))

		entries := draft.Entries()
		assert.Len(t, entries, 2)
		assert.Equal(t, tuesday.Add(9*time.Hour), entries[1].StartTime)
		assert.NotEmpty(t, entries[1].Id)
		assert.Equal(t, now, entries[1].CreatedAt)
	})

	t.Run("SetDay replaces the day's existing entry", func(t *testing.T) {
		draft := NewDraft([]entry.TimeEntry{existing}, now)

		draft.SetDay(monday, monday.Add(10*time.Hour), monday.Add(14*time.Hour))

		entries := draft.Entries()
		assert.Len(t, entries, 1)
		assert.Equal(t, monday.Add(10*time.Hour), entries[0].StartTime)
		assert.NotEqual(t, existing.Id, entries[0].Id)
	})

	t.Run("SetDay pins the interval to the given day", func(t *testing.T) {
		draft := NewDraft([]entry.TimeEntry{existing}, now)

		// Clock times carried on Monday's date, applied to Tuesday.
		draft.SetDay(tuesday, monday.Add(10*time.Hour), monday.Add(14*time.Hour))

		entries := draft.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, existing.Id, entries[0].Id)
		assert.Equal(t, tuesday.Add(10*time.Hour), entries[1].StartTime)
		require.NotNil(t, entries[1].EndTime)
		assert.Equal(t, tuesday.Add(14*time.Hour), *entries[1].EndTime)
		assert.True(t, IsSameDay(entries[1].StartTime, tuesday))
	})

	t.Run("MarkNotWorked replaces the day's entry with a marker", func(t *testing.T) {
		draft := NewDraft([]entry.TimeEntry{existing}, now)

		draft.MarkNotWorked(monday, "public holiday")

		entries := draft.Entries()
		assert.Len(t, entries, 1)
		assert.True(t, entries[0].NotWorked)
		assert.Equal(t, "public holiday", entries[0].NotWorkedReason)
		assert.Equal(t, monday, entries[0].StartTime)
		assert.Nil(t, entries[0].EndTime)
	})

	t.Run("ClearDay on an empty day is a no-op", func(t *testing.T) {
		draft := NewDraft([]entry.TimeEntry{existing}, now)

		draft.ClearDay(tuesday)

		assert.Len(t, draft.Entries(), 1)
	})

	t.Run("Entries are ordered by start time", func(t *testing.T) {
		draft := NewDraft(nil, now)
		wednesday := monday.AddDate(0, 0, 2)

		draft.SetDay(wednesday, wednesday.Add(9*time.Hour), wednesday.Add(12*time.Hour))
		draft.SetDay(monday, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		draft.SetDay(tuesday, tuesday.Add(9*time.Hour), tuesday.Add(13*time.Hour))

		entries := draft.Entries()
		assert.Len(t, entries, 3)
		assert.True(t, entries[0].StartTime.Before(entries[1].StartTime))
		assert.True(t, entries[1].StartTime.Before(entries[2].StartTime))
	})
}
