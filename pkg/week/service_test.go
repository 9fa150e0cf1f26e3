package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weeklog/weeklog/internal/test_utils"
	"github.com/weeklog/weeklog/internal/utils"
	"github.com/weeklog/weeklog/pkg/entry"
)

// Friday of the week 2025-03-10 (Mon) .. 2025-03-16 (Sun).
var testNow = time.Date(2025, time.March, 14, 18, 0, 0, 0, time.UTC)

func newTestService(clock utils.Clock) (*ServiceImpl, *RepositoryStub, entry.Service) {
	repo := NewRepositoryStub()
	entryService := entry.NewService(entry.NewRepositoryStub(), clock)
	service := NewService(repo, entryService, test_utils.TestUserProvider{}, clock)
	return service, repo, entryService
}

func TestSaveCurrentWeek(t *testing.T) {
	ctx := test_utils.ContextWithTestUser()
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("creates a week with aggregated totals", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, entryService := newTestService(clock)

		_, err := entryService.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)
		tuesday := monday.AddDate(0, 0, 1)
		_, err = entryService.Add(ctx, tuesday.Add(9*time.Hour), tuesday.Add(13*time.Hour))
		require.NoError(t, err)

		saved, err := service.SaveCurrentWeek(ctx)

		require.NoError(t, err)
		assert.NotEmpty(t, saved.Id)
		assert.Equal(t, monday, saved.StartDate)
		assert.Equal(t, monday.AddDate(0, 0, 6), saved.EndDate)
		assert.Len(t, saved.Entries, 2)
		assert.InDelta(t, 12.0, saved.TotalHours, 0.0001)
		assert.InDelta(t, 152.40, saved.TotalEarnings, 0.0001)
	})

	t.Run("saving twice updates the same week", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, entryService := newTestService(clock)

		_, err := entryService.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)

		first, err := service.SaveCurrentWeek(ctx)
		require.NoError(t, err)
		second, err := service.SaveCurrentWeek(ctx)
		require.NoError(t, err)

		assert.Equal(t, first.Id, second.Id)
		weeks, err := service.List(ctx)
		require.NoError(t, err)
		assert.Len(t, weeks, 1)
	})

	t.Run("resave picks up entry deletions", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, entryService := newTestService(clock)

		mondayEntry, err := entryService.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)
		tuesday := monday.AddDate(0, 0, 1)
		_, err = entryService.Add(ctx, tuesday.Add(9*time.Hour), tuesday.Add(13*time.Hour))
		require.NoError(t, err)

		first, err := service.SaveCurrentWeek(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 12.0, first.TotalHours, 0.0001)

		require.NoError(t, entryService.Trash(ctx, mondayEntry.Id))

		second, err := service.SaveCurrentWeek(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.Id, second.Id)
		assert.Len(t, second.Entries, 1)
		assert.InDelta(t, 4.0, second.TotalHours, 0.0001)
		assert.InDelta(t, 50.80, second.TotalEarnings, 0.0001)
	})

	t.Run("entries outside the window are excluded", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, entryService := newTestService(clock)

		previousWeek := monday.AddDate(0, 0, -3)
		_, err := entryService.Add(ctx, previousWeek.Add(9*time.Hour), previousWeek.Add(17*time.Hour))
		require.NoError(t, err)
		_, err = entryService.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)

		saved, err := service.SaveCurrentWeek(ctx)

		require.NoError(t, err)
		assert.Len(t, saved.Entries, 1)
		assert.InDelta(t, 8.0, saved.TotalHours, 0.0001)
	})

	t.Run("rejects a save while one is in flight", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, _ := newTestService(clock)

		require.True(t, service.beginSave(test_utils.TestUser.Id))
		defer service.endSave(test_utils.TestUser.Id)

		_, err := service.SaveCurrentWeek(ctx)
		assert.ErrorIs(t, err, ErrSaveInProgress)
	})

	t.Run("guard is released after a save", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, _ := newTestService(clock)

		_, err := service.SaveCurrentWeek(ctx)
		require.NoError(t, err)
		_, err = service.SaveCurrentWeek(ctx)
		assert.NoError(t, err)
	})
}

func TestEditWeek(t *testing.T) {
	ctx := test_utils.ContextWithTestUser()
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	saveWeek := func(t *testing.T, service *ServiceImpl, entryService entry.Service) SavedWeek {
		t.Helper()
		_, err := entryService.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)
		saved, err := service.SaveCurrentWeek(ctx)
		require.NoError(t, err)
		return saved
	}

	t.Run("sets a new day and recomputes totals", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, entryService := newTestService(clock)
		saved := saveWeek(t, service, entryService)

		start := tuesday.Add(9 * time.Hour)
		end := tuesday.Add(13 * time.Hour)
		updated, err := service.Edit(ctx, saved.Id, []DayEdit{
			{Day: tuesday, Start: &start, End: &end},
		})

		require.NoError(t, err)
		assert.Len(t, updated.Entries, 2)
		assert.InDelta(t, 12.0, updated.TotalHours, 0.0001)
		assert.InDelta(t, 152.40, updated.TotalEarnings, 0.0001)
	})

	t.Run("clears a day", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, entryService := newTestService(clock)
		saved := saveWeek(t, service, entryService)

		updated, err := service.Edit(ctx, saved.Id, []DayEdit{
			{Day: monday, Clear: true},
		})

		require.NoError(t, err)
		assert.Empty(t, updated.Entries)
		assert.Equal(t, 0.0, updated.TotalHours)
		assert.Equal(t, 0.0, updated.TotalEarnings)
	})

	t.Run("marks a day not worked", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, entryService := newTestService(clock)
		saved := saveWeek(t, service, entryService)

		updated, err := service.Edit(ctx, saved.Id, []DayEdit{
			{Day: monday, NotWorked: true, NotWorkedReason: "sick leave"},
		})

		require.NoError(t, err)
		require.Len(t, updated.Entries, 1)
		assert.True(t, updated.Entries[0].NotWorked)
		assert.Equal(t, "sick leave", updated.Entries[0].NotWorkedReason)
		assert.Equal(t, 0.0, updated.TotalHours)
	})

	t.Run("edit is persisted", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, repo, entryService := newTestService(clock)
		saved := saveWeek(t, service, entryService)

		_, err := service.Edit(ctx, saved.Id, []DayEdit{{Day: monday, Clear: true}})
		require.NoError(t, err)

		stored, err := repo.Get(ctx, test_utils.TestUser.Id, saved.Id)
		require.NoError(t, err)
		assert.Empty(t, stored.Entries)
	})

	t.Run("rejects an interval ending before it starts", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, repo, entryService := newTestService(clock)
		saved := saveWeek(t, service, entryService)

		start := tuesday.Add(17 * time.Hour)
		end := tuesday.Add(9 * time.Hour)
		_, err := service.Edit(ctx, saved.Id, []DayEdit{
			{Day: tuesday, Start: &start, End: &end},
		})
		assert.ErrorIs(t, err, entry.ErrEndBeforeStart)

		// Nothing was persisted; the stored aggregates are untouched.
		stored, err := repo.Get(ctx, test_utils.TestUser.Id, saved.Id)
		require.NoError(t, err)
		assert.InDelta(t, 8.0, stored.TotalHours, 0.0001)
		assert.InDelta(t, 101.60, stored.TotalEarnings, 0.0001)
	})

	t.Run("interval lands on the edited day even when its date part differs", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, entryService := newTestService(clock)
		saved := saveWeek(t, service, entryService)

		// Clock times taken from Monday, but the edit targets Tuesday.
		start := monday.Add(9 * time.Hour)
		end := monday.Add(13 * time.Hour)
		updated, err := service.Edit(ctx, saved.Id, []DayEdit{
			{Day: tuesday, Start: &start, End: &end},
		})

		require.NoError(t, err)
		require.Len(t, updated.Entries, 2)
		assert.Equal(t, tuesday.Add(9*time.Hour), updated.Entries[1].StartTime)
		assert.True(t, IsSameDay(updated.Entries[1].StartTime, tuesday))
		assert.InDelta(t, 12.0, updated.TotalHours, 0.0001)
	})

	t.Run("rejects an edit with no operation", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, entryService := newTestService(clock)
		saved := saveWeek(t, service, entryService)

		_, err := service.Edit(ctx, saved.Id, []DayEdit{{Day: monday}})
		assert.ErrorIs(t, err, ErrInvalidDayEdit)
	})

	t.Run("unknown week", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, _ := newTestService(clock)

		_, err := service.Edit(ctx, "no-such-week", []DayEdit{{Day: monday, Clear: true}})
		assert.ErrorIs(t, err, ErrWeekNotFound)
	})

	t.Run("trashed week cannot be edited", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, entryService := newTestService(clock)
		saved := saveWeek(t, service, entryService)

		require.NoError(t, service.Trash(ctx, saved.Id))

		_, err := service.Edit(ctx, saved.Id, []DayEdit{{Day: monday, Clear: true}})
		assert.ErrorIs(t, err, ErrWeekNotFound)
	})
}

func TestTrashAndRestoreWeek(t *testing.T) {
	ctx := test_utils.ContextWithTestUser()
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("trashed week disappears from the list and comes back on restore", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, entryService := newTestService(clock)

		_, err := entryService.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)
		saved, err := service.SaveCurrentWeek(ctx)
		require.NoError(t, err)

		require.NoError(t, service.Trash(ctx, saved.Id))
		weeks, err := service.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, weeks)

		restored, err := service.Restore(ctx, saved)
		require.NoError(t, err)
		assert.Equal(t, saved.Id, restored.Id)
		assert.False(t, restored.IsDeleted)
		assert.Nil(t, restored.DeletedAt)

		weeks, err = service.List(ctx)
		require.NoError(t, err)
		assert.Len(t, weeks, 1)
	})

	t.Run("trashing an unknown week fails", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, _ := newTestService(clock)

		err := service.Trash(ctx, "no-such-week")
		assert.ErrorIs(t, err, ErrWeekNotFound)
	})

	t.Run("restore after purge recreates the week from the snapshot", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, repo, entryService := newTestService(clock)

		_, err := entryService.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)
		saved, err := service.SaveCurrentWeek(ctx)
		require.NoError(t, err)

		require.NoError(t, service.Trash(ctx, saved.Id))
		repo.Purge(saved.Id)

		restored, err := service.Restore(ctx, saved)
		require.NoError(t, err)
		assert.Equal(t, saved.Id, restored.Id)
		assert.False(t, restored.IsDeleted)
		assert.Len(t, restored.Entries, 1)
		assert.InDelta(t, saved.TotalHours, restored.TotalHours, 0.0001)
		assert.True(t, restored.CreatedAt.Equal(saved.CreatedAt))
	})

	t.Run("restore after purge keeps the creation timestamp through the wire format", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, repo, entryService := newTestService(clock)

		_, err := entryService.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)
		saved, err := service.SaveCurrentWeek(ctx)
		require.NoError(t, err)

		require.NoError(t, service.Trash(ctx, saved.Id))
		repo.Purge(saved.Id)

		// The client sends the snapshot back as JSON, so it passes through the
		// DTO converters before reaching the service.
		snapshot, err := dtoToWeek(weekToDTO(saved))
		require.NoError(t, err)

		restored, err := service.Restore(ctx, snapshot)
		require.NoError(t, err)
		assert.False(t, restored.CreatedAt.IsZero())
		assert.True(t, restored.CreatedAt.Equal(saved.CreatedAt))
	})

	t.Run("restoring an active week is a no-op", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		service, _, entryService := newTestService(clock)

		_, err := entryService.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)
		saved, err := service.SaveCurrentWeek(ctx)
		require.NoError(t, err)

		restored, err := service.Restore(ctx, saved)
		require.NoError(t, err)
		assert.Equal(t, saved.Id, restored.Id)

		weeks, err := service.List(ctx)
		require.NoError(t, err)
		assert.Len(t, weeks, 1)
	})
}
