package entry

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/weeklog/weeklog/internal/utils"
	"github.com/weeklog/weeklog/pkg/user"
)

var ErrDayAlreadyLogged = errors.New("an entry already exists for this day")
var ErrEndBeforeStart = errors.New("end time is before start time")

type Service interface {
	// Add logs a worked interval. At most one non-deleted entry may exist per
	// calendar day; a second one is rejected with ErrDayAlreadyLogged.
	Add(ctx context.Context, startTime, endTime time.Time) (TimeEntry, error)
	// MarkNotWorked records a non-working day marker with an optional reason.
	MarkNotWorked(ctx context.Context, day time.Time, reason string) (TimeEntry, error)
	List(ctx context.Context) ([]TimeEntry, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]TimeEntry, error)
	Trash(ctx context.Context, id string) error
	// Restore brings a trashed entry back. When the stored row was already
	// purged (the retention sweeper may have fired in the meantime) the entry
	// is recreated from the supplied snapshot instead of failing.
	Restore(ctx context.Context, snapshot TimeEntry) (TimeEntry, error)
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) Add(ctx context.Context, startTime, endTime time.Time) (TimeEntry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if endTime.Before(startTime) {
		return TimeEntry{}, ErrEndBeforeStart
	}

	if err := s.checkDayFree(ctx, userId, startTime); err != nil {
		return TimeEntry{}, err
	}

	now := s.clock.Now()
	entry := TimeEntry{
		StartTime: startTime,
		EndTime:   &endTime,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored, err := s.repo.Store(ctx, userId, entry)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("failed to store entry: %w", err)
	}
	log.Debugf("added entry %s for user %s", stored.Id, userId)
	return stored, nil
}

func (s *ServiceImpl) MarkNotWorked(ctx context.Context, day time.Time, reason string) (TimeEntry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("failed to get current user: %w", err)
	}

	if err := s.checkDayFree(ctx, userId, day); err != nil {
		return TimeEntry{}, err
	}

	now := s.clock.Now()
	entry := TimeEntry{
		StartTime:       day,
		NotWorked:       true,
		NotWorkedReason: reason,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	stored, err := s.repo.Store(ctx, userId, entry)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("failed to store entry: %w", err)
	}
	return stored, nil
}

// checkDayFree enforces the one-entry-per-day invariant at the store level.
func (s *ServiceImpl) checkDayFree(ctx context.Context, userId string, day time.Time) error {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)
	existing, err := s.repo.ListActiveBetween(ctx, userId, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("failed to check existing entries: %w", err)
	}
	if len(existing) > 0 {
		return ErrDayAlreadyLogged
	}
	return nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]TimeEntry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListActive(ctx, userId)
}

func (s *ServiceImpl) ListBetween(ctx context.Context, from, to time.Time) ([]TimeEntry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListActiveBetween(ctx, userId, from, to)
}

func (s *ServiceImpl) Trash(ctx context.Context, id string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	rows, err := s.repo.MarkTrashed(ctx, userId, id, s.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to trash entry: %w", err)
	}
	if rows == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *ServiceImpl) Restore(ctx context.Context, snapshot TimeEntry) (TimeEntry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("failed to get current user: %w", err)
	}

	now := s.clock.Now()
	rows, err := s.repo.ClearTrashed(ctx, userId, snapshot.Id, now)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("failed to restore entry: %w", err)
	}
	if rows > 0 {
		return s.repo.Get(ctx, userId, snapshot.Id)
	}

	current, err := s.repo.Get(ctx, userId, snapshot.Id)
	if err == nil {
		// Already active, nothing to do.
		return current, nil
	}
	if !errors.Is(err, ErrEntryNotFound) {
		return TimeEntry{}, fmt.Errorf("failed to restore entry: %w", err)
	}

	// The row was purged while trashed. Recreate it from the snapshot with the
	// delete markers cleared.
	log.Infof("entry %s was purged, recreating from snapshot", snapshot.Id)
	snapshot.IsDeleted = false
	snapshot.DeletedAt = nil
	snapshot.UpdatedAt = now
	recreated, err := s.repo.Store(ctx, userId, snapshot)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("failed to recreate entry: %w", err)
	}
	return recreated, nil
}
