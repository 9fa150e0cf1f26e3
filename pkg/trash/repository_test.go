package trash

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weeklog/weeklog/internal/test_utils"
)

func insertUser(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, created_at) VALUES (?, ?)`, id, time.Now().UnixMilli())
	require.NoError(t, err)
}

func insertEntry(t *testing.T, db *sql.DB, id, userId string, deleted bool, deletedAt time.Time) {
	t.Helper()
	var deletedMillis interface{}
	if deleted {
		deletedMillis = deletedAt.UnixMilli()
	}
	_, err := db.Exec(
		`INSERT INTO entries (id, user_id, start_time, is_deleted, deleted_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userId, deletedAt.AddDate(0, 0, -1).UnixMilli(), deleted, deletedMillis,
		deletedAt.AddDate(0, 0, -1).UnixMilli(), deletedAt.UnixMilli(),
	)
	require.NoError(t, err)
}

func insertWeek(t *testing.T, db *sql.DB, id, userId string, deleted bool, deletedAt time.Time) {
	t.Helper()
	var deletedMillis interface{}
	if deleted {
		deletedMillis = deletedAt.UnixMilli()
	}
	_, err := db.Exec(
		`INSERT INTO saved_weeks (id, user_id, start_date, end_date, is_deleted, deleted_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userId, deletedAt.AddDate(0, 0, -7).UnixMilli(), deletedAt.AddDate(0, 0, -1).UnixMilli(),
		deleted, deletedMillis, deletedAt.AddDate(0, 0, -7).UnixMilli(), deletedAt.UnixMilli(),
	)
	require.NoError(t, err)
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&count))
	return count
}

func TestTrashRepository(t *testing.T) {
	ctx := context.Background()
	userId := test_utils.TestUser.Id
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

	t.Run("lists only the user's trashed records, newest deletion first", func(t *testing.T) {
		db := test_utils.SetupTestDB(t)
		test_utils.InsertTestUser(t, db)
		insertUser(t, db, "other-user")
		repo := NewRepository(db)

		insertEntry(t, db, "entry-old", userId, true, now.AddDate(0, 0, -5))
		insertEntry(t, db, "entry-new", userId, true, now.AddDate(0, 0, -1))
		insertEntry(t, db, "entry-active", userId, false, now)
		insertEntry(t, db, "entry-theirs", "other-user", true, now.AddDate(0, 0, -1))
		insertWeek(t, db, "week-1", userId, true, now.AddDate(0, 0, -2))
		insertWeek(t, db, "week-active", userId, false, now)

		entries, err := repo.ListTrashedEntries(ctx, userId)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "entry-new", entries[0].Id)
		assert.Equal(t, "entry-old", entries[1].Id)
		assert.True(t, entries[0].IsDeleted)
		require.NotNil(t, entries[0].DeletedAt)

		weeks, err := repo.ListTrashedWeeks(ctx, userId)
		require.NoError(t, err)
		require.Len(t, weeks, 1)
		assert.Equal(t, "week-1", weeks[0].Id)
	})

	t.Run("empty trash removes both kinds for one user only", func(t *testing.T) {
		db := test_utils.SetupTestDB(t)
		test_utils.InsertTestUser(t, db)
		insertUser(t, db, "other-user")
		repo := NewRepository(db)

		insertEntry(t, db, "entry-1", userId, true, now.AddDate(0, 0, -1))
		insertEntry(t, db, "entry-active", userId, false, now)
		insertEntry(t, db, "entry-theirs", "other-user", true, now.AddDate(0, 0, -1))
		insertWeek(t, db, "week-1", userId, true, now.AddDate(0, 0, -2))

		require.NoError(t, repo.EmptyTrash(ctx, userId))

		entries, err := repo.ListTrashedEntries(ctx, userId)
		require.NoError(t, err)
		assert.Empty(t, entries)
		weeks, err := repo.ListTrashedWeeks(ctx, userId)
		require.NoError(t, err)
		assert.Empty(t, weeks)

		// Active rows and other users' trash survive.
		assert.Equal(t, 2, countRows(t, db, "entries"))
		theirs, err := repo.ListTrashedEntries(ctx, "other-user")
		require.NoError(t, err)
		assert.Len(t, theirs, 1)
	})

	t.Run("purge expired removes rows at or before the cutoff across all users", func(t *testing.T) {
		db := test_utils.SetupTestDB(t)
		test_utils.InsertTestUser(t, db)
		insertUser(t, db, "other-user")
		repo := NewRepository(db)

		cutoff := now.AddDate(0, 0, -30)
		insertEntry(t, db, "entry-expired", userId, true, cutoff.AddDate(0, 0, -1))
		insertEntry(t, db, "entry-at-cutoff", userId, true, cutoff)
		insertEntry(t, db, "entry-recent", userId, true, cutoff.AddDate(0, 0, 1))
		insertEntry(t, db, "entry-active", userId, false, now)
		insertWeek(t, db, "week-expired", "other-user", true, cutoff.AddDate(0, 0, -2))
		insertWeek(t, db, "week-recent", "other-user", true, now)

		purged, err := repo.PurgeExpired(ctx, cutoff)
		require.NoError(t, err)
		assert.Equal(t, int64(3), purged)

		entries, err := repo.ListTrashedEntries(ctx, userId)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "entry-recent", entries[0].Id)

		weeks, err := repo.ListTrashedWeeks(ctx, "other-user")
		require.NoError(t, err)
		require.Len(t, weeks, 1)
		assert.Equal(t, "week-recent", weeks[0].Id)

		assert.Equal(t, 2, countRows(t, db, "entries"))
	})
}
