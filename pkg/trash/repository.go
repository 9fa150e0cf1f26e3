package trash

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/weeklog/weeklog/pkg/entry"
	"github.com/weeklog/weeklog/pkg/week"
)

type Repository interface {
	ListTrashedEntries(ctx context.Context, userId string) ([]entry.TimeEntry, error)
	ListTrashedWeeks(ctx context.Context, userId string) ([]week.SavedWeek, error)
	// EmptyTrash hard-deletes all of the user's trashed records in a single
	// transaction. Either both tables are cleared or neither is.
	EmptyTrash(ctx context.Context, userId string) error
	// PurgeExpired hard-deletes records of all users trashed at or before
	// cutoff, in a single transaction. Returns the number of purged rows.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListTrashedEntries(ctx context.Context, userId string) ([]entry.TimeEntry, error) {
	query := `SELECT id, start_time, end_time, not_worked, not_worked_reason, deleted_at, created_at, updated_at
				FROM entries WHERE user_id = ? AND is_deleted = 1 ORDER BY deleted_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query trashed entries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	entries := make([]entry.TimeEntry, 0, 10)
	for rows.Next() {
		var e entry.TimeEntry
		var startMillis, deletedMillis, createdMillis, updatedMillis int64
		var endMillis sql.NullInt64
		err := rows.Scan(
			&e.Id,
			&startMillis,
			&endMillis,
			&e.NotWorked,
			&e.NotWorkedReason,
			&deletedMillis,
			&createdMillis,
			&updatedMillis,
		)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		e.StartTime = time.UnixMilli(startMillis)
		if endMillis.Valid {
			endTime := time.UnixMilli(endMillis.Int64)
			e.EndTime = &endTime
		}
		deletedAt := time.UnixMilli(deletedMillis)
		e.IsDeleted = true
		e.DeletedAt = &deletedAt
		e.CreatedAt = time.UnixMilli(createdMillis)
		e.UpdatedAt = time.UnixMilli(updatedMillis)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *RepositoryImpl) ListTrashedWeeks(ctx context.Context, userId string) ([]week.SavedWeek, error) {
	query := `SELECT id, start_date, end_date, total_hours, total_earnings, deleted_at, created_at, updated_at
				FROM saved_weeks WHERE user_id = ? AND is_deleted = 1 ORDER BY deleted_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query trashed weeks: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	weeks := make([]week.SavedWeek, 0, 10)
	for rows.Next() {
		var w week.SavedWeek
		var startMillis, endMillis, deletedMillis, createdMillis, updatedMillis int64
		err := rows.Scan(
			&w.Id,
			&startMillis,
			&endMillis,
			&w.TotalHours,
			&w.TotalEarnings,
			&deletedMillis,
			&createdMillis,
			&updatedMillis,
		)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		w.StartDate = time.UnixMilli(startMillis)
		w.EndDate = time.UnixMilli(endMillis)
		deletedAt := time.UnixMilli(deletedMillis)
		w.IsDeleted = true
		w.DeletedAt = &deletedAt
		w.CreatedAt = time.UnixMilli(createdMillis)
		w.UpdatedAt = time.UnixMilli(updatedMillis)
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

func (r *RepositoryImpl) EmptyTrash(ctx context.Context, userId string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE user_id = ? AND is_deleted = 1`, userId); err != nil {
		err := fmt.Errorf("could not empty entry trash: %w", err)
		log.Error(err)
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM saved_weeks WHERE user_id = ? AND is_deleted = 1`, userId); err != nil {
		err := fmt.Errorf("could not empty week trash: %w", err)
		log.Error(err)
		return err
	}
	return tx.Commit()
}

func (r *RepositoryImpl) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return 0, err
	}
	defer tx.Rollback()

	cutoffMillis := cutoff.UnixMilli()
	var purged int64
	for _, table := range []string{"entries", "saved_weeks"} {
		query := `DELETE FROM ` + table + ` WHERE is_deleted = 1 AND deleted_at <= ?`
		result, err := tx.ExecContext(ctx, query, cutoffMillis)
		if err != nil {
			err := fmt.Errorf("could not purge expired rows from %s: %w", table, err)
			log.Error(err)
			return 0, err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		purged += rows
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return purged, nil
}
