package entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrEntryNotFound = errors.New("entry not found")

type Repository interface {
	// Store inserts the entry. When the id is empty a new one is assigned;
	// restore-after-purge passes a snapshot with its original id preserved.
	Store(ctx context.Context, userId string, entry TimeEntry) (TimeEntry, error)
	Get(ctx context.Context, userId string, id string) (TimeEntry, error)
	ListActive(ctx context.Context, userId string) ([]TimeEntry, error)
	ListActiveBetween(ctx context.Context, userId string, from, to time.Time) ([]TimeEntry, error)
	MarkTrashed(ctx context.Context, userId string, id string, deletedAt time.Time) (int64, error)
	ClearTrashed(ctx context.Context, userId string, id string, updatedAt time.Time) (int64, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const entryColumns = `id, start_time, end_time, not_worked, not_worked_reason, is_deleted, deleted_at, created_at, updated_at`

func (r *RepositoryImpl) Store(ctx context.Context, userId string, entry TimeEntry) (TimeEntry, error) {
	if entry.Id == "" {
		entry.Id = uuid.NewString()
	}
	query := `INSERT INTO entries (id, user_id, start_time, end_time, not_worked, not_worked_reason, is_deleted, deleted_at, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		entry.Id,
		userId,
		entry.StartTime.UnixMilli(),
		nullableMillis(entry.EndTime),
		entry.NotWorked,
		entry.NotWorkedReason,
		entry.IsDeleted,
		nullableMillis(entry.DeletedAt),
		entry.CreatedAt.UnixMilli(),
		entry.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not store entry: %w", err)
		log.Error(err)
		return TimeEntry{}, err
	}
	return entry, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId string, id string) (TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = ? AND id = ?`
	row := r.db.QueryRowContext(ctx, query, userId, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TimeEntry{}, ErrEntryNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get entry: %w", err)
		log.Error(err)
		return TimeEntry{}, err
	}
	return entry, nil
}

func (r *RepositoryImpl) ListActive(ctx context.Context, userId string) ([]TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = ? AND is_deleted = 0 ORDER BY start_time`
	return r.queryEntries(ctx, query, userId)
}

func (r *RepositoryImpl) ListActiveBetween(ctx context.Context, userId string, from, to time.Time) ([]TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries
				WHERE user_id = ? AND is_deleted = 0 AND start_time >= ? AND start_time <= ?
				ORDER BY start_time`
	return r.queryEntries(ctx, query, userId, from.UnixMilli(), to.UnixMilli())
}

func (r *RepositoryImpl) MarkTrashed(ctx context.Context, userId string, id string, deletedAt time.Time) (int64, error) {
	query := `UPDATE entries SET is_deleted = 1, deleted_at = ?, updated_at = ? WHERE user_id = ? AND id = ? AND is_deleted = 0`
	result, err := r.db.ExecContext(ctx, query, deletedAt.UnixMilli(), deletedAt.UnixMilli(), userId, id)
	if err != nil {
		err := fmt.Errorf("could not trash entry: %w", err)
		log.Error(err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *RepositoryImpl) ClearTrashed(ctx context.Context, userId string, id string, updatedAt time.Time) (int64, error) {
	query := `UPDATE entries SET is_deleted = 0, deleted_at = NULL, updated_at = ? WHERE user_id = ? AND id = ? AND is_deleted = 1`
	result, err := r.db.ExecContext(ctx, query, updatedAt.UnixMilli(), userId, id)
	if err != nil {
		err := fmt.Errorf("could not restore entry: %w", err)
		log.Error(err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *RepositoryImpl) queryEntries(ctx context.Context, query string, args ...interface{}) ([]TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query entries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	entries := make([]TimeEntry, 0, 10)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (TimeEntry, error) {
	var entry TimeEntry
	var startMillis, createdMillis, updatedMillis int64
	var endMillis, deletedMillis sql.NullInt64
	err := row.Scan(
		&entry.Id,
		&startMillis,
		&endMillis,
		&entry.NotWorked,
		&entry.NotWorkedReason,
		&entry.IsDeleted,
		&deletedMillis,
		&createdMillis,
		&updatedMillis,
	)
	if err != nil {
		return TimeEntry{}, err
	}
	entry.StartTime = time.UnixMilli(startMillis)
	if endMillis.Valid {
		endTime := time.UnixMilli(endMillis.Int64)
		entry.EndTime = &endTime
	}
	if deletedMillis.Valid {
		deletedAt := time.UnixMilli(deletedMillis.Int64)
		entry.DeletedAt = &deletedAt
	}
	entry.CreatedAt = time.UnixMilli(createdMillis)
	entry.UpdatedAt = time.UnixMilli(updatedMillis)
	return entry, nil
}

func nullableMillis(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
