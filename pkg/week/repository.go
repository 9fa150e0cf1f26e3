package week

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/weeklog/weeklog/pkg/entry"
)

var ErrWeekNotFound = errors.New("saved week not found")

type Repository interface {
	// Store inserts the week. When the id is empty a new one is assigned;
	// restore-after-purge passes a snapshot with its original id preserved.
	Store(ctx context.Context, userId string, week SavedWeek) (SavedWeek, error)
	Get(ctx context.Context, userId string, id string) (SavedWeek, error)
	ListActive(ctx context.Context, userId string) ([]SavedWeek, error)
	// Overwrite replaces the stored entries snapshot and aggregates in full.
	Overwrite(ctx context.Context, userId string, week SavedWeek) error
	MarkTrashed(ctx context.Context, userId string, id string, deletedAt time.Time) (int64, error)
	ClearTrashed(ctx context.Context, userId string, id string, updatedAt time.Time) (int64, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

// entrySnapshot is the persisted JSON shape of an embedded entry copy.
type entrySnapshot struct {
	Id              string `json:"id"`
	StartTime       int64  `json:"startTime"`
	EndTime         *int64 `json:"endTime,omitempty"`
	NotWorked       bool   `json:"notWorked,omitempty"`
	NotWorkedReason string `json:"notWorkedReason,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
	UpdatedAt       int64  `json:"updatedAt"`
}

const weekColumns = `id, start_date, end_date, entries, total_hours, total_earnings, is_deleted, deleted_at, created_at, updated_at`

func (r *RepositoryImpl) Store(ctx context.Context, userId string, week SavedWeek) (SavedWeek, error) {
	if week.Id == "" {
		week.Id = uuid.NewString()
	}
	entriesJSON, err := marshalEntries(week.Entries)
	if err != nil {
		log.Errorf("could not marshal week entries: %v", err)
		return SavedWeek{}, err
	}

	query := `INSERT INTO saved_weeks (id, user_id, start_date, end_date, entries, total_hours, total_earnings, is_deleted, deleted_at, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		week.Id,
		userId,
		week.StartDate.UnixMilli(),
		week.EndDate.UnixMilli(),
		entriesJSON,
		week.TotalHours,
		week.TotalEarnings,
		week.IsDeleted,
		nullableMillis(week.DeletedAt),
		week.CreatedAt.UnixMilli(),
		week.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not store saved week: %w", err)
		log.Error(err)
		return SavedWeek{}, err
	}
	return week, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId string, id string) (SavedWeek, error) {
	query := `SELECT ` + weekColumns + ` FROM saved_weeks WHERE user_id = ? AND id = ?`
	row := r.db.QueryRowContext(ctx, query, userId, id)
	week, err := scanWeek(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedWeek{}, ErrWeekNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get saved week: %w", err)
		log.Error(err)
		return SavedWeek{}, err
	}
	return week, nil
}

func (r *RepositoryImpl) ListActive(ctx context.Context, userId string) ([]SavedWeek, error) {
	query := `SELECT ` + weekColumns + ` FROM saved_weeks WHERE user_id = ? AND is_deleted = 0 ORDER BY start_date DESC`
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query saved weeks: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	weeks := make([]SavedWeek, 0, 10)
	for rows.Next() {
		week, err := scanWeek(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		weeks = append(weeks, week)
	}
	return weeks, rows.Err()
}

func (r *RepositoryImpl) Overwrite(ctx context.Context, userId string, week SavedWeek) error {
	entriesJSON, err := marshalEntries(week.Entries)
	if err != nil {
		log.Errorf("could not marshal week entries: %v", err)
		return err
	}

	query := `UPDATE saved_weeks SET entries = ?, total_hours = ?, total_earnings = ?, updated_at = ?
				WHERE user_id = ? AND id = ?`
	result, err := r.db.ExecContext(ctx, query,
		entriesJSON,
		week.TotalHours,
		week.TotalEarnings,
		week.UpdatedAt.UnixMilli(),
		userId,
		week.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not overwrite saved week: %w", err)
		log.Error(err)
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrWeekNotFound
	}
	return nil
}

func (r *RepositoryImpl) MarkTrashed(ctx context.Context, userId string, id string, deletedAt time.Time) (int64, error) {
	query := `UPDATE saved_weeks SET is_deleted = 1, deleted_at = ?, updated_at = ? WHERE user_id = ? AND id = ? AND is_deleted = 0`
	result, err := r.db.ExecContext(ctx, query, deletedAt.UnixMilli(), deletedAt.UnixMilli(), userId, id)
	if err != nil {
		err := fmt.Errorf("could not trash saved week: %w", err)
		log.Error(err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *RepositoryImpl) ClearTrashed(ctx context.Context, userId string, id string, updatedAt time.Time) (int64, error) {
	query := `UPDATE saved_weeks SET is_deleted = 0, deleted_at = NULL, updated_at = ? WHERE user_id = ? AND id = ? AND is_deleted = 1`
	result, err := r.db.ExecContext(ctx, query, updatedAt.UnixMilli(), userId, id)
	if err != nil {
		err := fmt.Errorf("could not restore saved week: %w", err)
		log.Error(err)
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWeek(row rowScanner) (SavedWeek, error) {
	var week SavedWeek
	var startMillis, endMillis, createdMillis, updatedMillis int64
	var deletedMillis sql.NullInt64
	var entriesJSON string
	err := row.Scan(
		&week.Id,
		&startMillis,
		&endMillis,
		&entriesJSON,
		&week.TotalHours,
		&week.TotalEarnings,
		&week.IsDeleted,
		&deletedMillis,
		&createdMillis,
		&updatedMillis,
	)
	if err != nil {
		return SavedWeek{}, err
	}
	week.StartDate = time.UnixMilli(startMillis)
	week.EndDate = time.UnixMilli(endMillis)
	if deletedMillis.Valid {
		deletedAt := time.UnixMilli(deletedMillis.Int64)
		week.DeletedAt = &deletedAt
	}
	week.CreatedAt = time.UnixMilli(createdMillis)
	week.UpdatedAt = time.UnixMilli(updatedMillis)

	entries, err := unmarshalEntries(entriesJSON)
	if err != nil {
		return SavedWeek{}, err
	}
	week.Entries = entries
	return week, nil
}

func marshalEntries(entries []entry.TimeEntry) (string, error) {
	snapshots := make([]entrySnapshot, 0, len(entries))
	for _, e := range entries {
		snapshot := entrySnapshot{
			Id:              e.Id,
			StartTime:       e.StartTime.UnixMilli(),
			NotWorked:       e.NotWorked,
			NotWorkedReason: e.NotWorkedReason,
			CreatedAt:       e.CreatedAt.UnixMilli(),
			UpdatedAt:       e.UpdatedAt.UnixMilli(),
		}
		if e.EndTime != nil {
			endMillis := e.EndTime.UnixMilli()
			snapshot.EndTime = &endMillis
		}
		snapshots = append(snapshots, snapshot)
	}
	data, err := json.Marshal(snapshots)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalEntries(entriesJSON string) ([]entry.TimeEntry, error) {
	var snapshots []entrySnapshot
	if err := json.Unmarshal([]byte(entriesJSON), &snapshots); err != nil {
		return nil, err
	}
	entries := make([]entry.TimeEntry, 0, len(snapshots))
	for _, s := range snapshots {
		e := entry.TimeEntry{
			Id:              s.Id,
			StartTime:       time.UnixMilli(s.StartTime),
			NotWorked:       s.NotWorked,
			NotWorkedReason: s.NotWorkedReason,
			CreatedAt:       time.UnixMilli(s.CreatedAt),
			UpdatedAt:       time.UnixMilli(s.UpdatedAt),
		}
		if s.EndTime != nil {
			endTime := time.UnixMilli(*s.EndTime)
			e.EndTime = &endTime
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func nullableMillis(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
