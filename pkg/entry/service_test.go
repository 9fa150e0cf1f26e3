package entry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weeklog/weeklog/internal/test_utils"
	"github.com/weeklog/weeklog/internal/utils"
)

var serviceNow = time.Date(2025, time.March, 14, 18, 0, 0, 0, time.UTC)

func TestAddEntry(t *testing.T) {
	ctx := test_utils.ContextWithTestUser()
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("logs a worked interval", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), &utils.MockClock{FixedNow: serviceNow})

		stored, err := service.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))

		require.NoError(t, err)
		assert.NotEmpty(t, stored.Id)
		assert.Equal(t, monday.Add(9*time.Hour), stored.StartTime)
		require.NotNil(t, stored.EndTime)
		assert.Equal(t, monday.Add(17*time.Hour), *stored.EndTime)
		assert.Equal(t, serviceNow, stored.CreatedAt)
		assert.False(t, stored.NotWorked)
	})

	t.Run("rejects a second entry on the same day", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), &utils.MockClock{FixedNow: serviceNow})

		_, err := service.Add(ctx, monday.Add(9*time.Hour), monday.Add(12*time.Hour))
		require.NoError(t, err)

		_, err = service.Add(ctx, monday.Add(14*time.Hour), monday.Add(17*time.Hour))
		assert.ErrorIs(t, err, ErrDayAlreadyLogged)
	})

	t.Run("allows entries on different days", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), &utils.MockClock{FixedNow: serviceNow})

		_, err := service.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)
		tuesday := monday.AddDate(0, 0, 1)
		_, err = service.Add(ctx, tuesday.Add(9*time.Hour), tuesday.Add(17*time.Hour))
		assert.NoError(t, err)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), &utils.MockClock{FixedNow: serviceNow})

		_, err := service.Add(ctx, monday.Add(17*time.Hour), monday.Add(9*time.Hour))
		assert.ErrorIs(t, err, ErrEndBeforeStart)
	})

	t.Run("a trashed entry frees its day", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), &utils.MockClock{FixedNow: serviceNow})

		first, err := service.Add(ctx, monday.Add(9*time.Hour), monday.Add(12*time.Hour))
		require.NoError(t, err)
		require.NoError(t, service.Trash(ctx, first.Id))

		_, err = service.Add(ctx, monday.Add(14*time.Hour), monday.Add(17*time.Hour))
		assert.NoError(t, err)
	})
}

func TestMarkNotWorked(t *testing.T) {
	ctx := test_utils.ContextWithTestUser()
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("records a marker with a reason", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), &utils.MockClock{FixedNow: serviceNow})

		stored, err := service.MarkNotWorked(ctx, monday, "public holiday")

		require.NoError(t, err)
		assert.True(t, stored.NotWorked)
		assert.Equal(t, "public holiday", stored.NotWorkedReason)
		assert.Nil(t, stored.EndTime)
	})

	t.Run("occupies the day like a worked entry", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), &utils.MockClock{FixedNow: serviceNow})

		_, err := service.MarkNotWorked(ctx, monday, "")
		require.NoError(t, err)

		_, err = service.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		assert.ErrorIs(t, err, ErrDayAlreadyLogged)
	})
}

func TestTrashAndRestoreEntry(t *testing.T) {
	ctx := test_utils.ContextWithTestUser()
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("trashed entry disappears from listings and comes back on restore", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), &utils.MockClock{FixedNow: serviceNow})

		stored, err := service.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)

		require.NoError(t, service.Trash(ctx, stored.Id))
		entries, err := service.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)

		restored, err := service.Restore(ctx, stored)
		require.NoError(t, err)
		assert.Equal(t, stored.Id, restored.Id)
		assert.False(t, restored.IsDeleted)
		assert.Nil(t, restored.DeletedAt)
		assert.Equal(t, stored.StartTime, restored.StartTime)

		entries, err = service.List(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("trashing an unknown entry fails", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), &utils.MockClock{FixedNow: serviceNow})

		err := service.Trash(ctx, "no-such-entry")
		assert.ErrorIs(t, err, ErrEntryNotFound)
	})

	t.Run("restore after purge recreates the entry from the snapshot", func(t *testing.T) {
		repo := NewRepositoryStub()
		service := NewService(repo, &utils.MockClock{FixedNow: serviceNow})

		stored, err := service.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)
		require.NoError(t, service.Trash(ctx, stored.Id))
		repo.Purge(stored.Id)

		restored, err := service.Restore(ctx, stored)
		require.NoError(t, err)
		assert.Equal(t, stored.Id, restored.Id)
		assert.False(t, restored.IsDeleted)
		assert.Nil(t, restored.DeletedAt)
		assert.Equal(t, stored.StartTime, restored.StartTime)
		require.NotNil(t, restored.EndTime)
		assert.Equal(t, *stored.EndTime, *restored.EndTime)
	})

	t.Run("restoring an active entry is a no-op", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), &utils.MockClock{FixedNow: serviceNow})

		stored, err := service.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
		require.NoError(t, err)

		restored, err := service.Restore(ctx, stored)
		require.NoError(t, err)
		assert.Equal(t, stored.Id, restored.Id)

		entries, err := service.List(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestListBetween(t *testing.T) {
	ctx := test_utils.ContextWithTestUser()
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	service := NewService(NewRepositoryStub(), &utils.MockClock{FixedNow: serviceNow})

	_, err := service.Add(ctx, monday.Add(9*time.Hour), monday.Add(17*time.Hour))
	require.NoError(t, err)
	outside := monday.AddDate(0, 0, -3)
	_, err = service.Add(ctx, outside.Add(9*time.Hour), outside.Add(17*time.Hour))
	require.NoError(t, err)

	entries, err := service.ListBetween(ctx, monday, monday.AddDate(0, 0, 7))

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, monday.Add(9*time.Hour), entries[0].StartTime)
}
