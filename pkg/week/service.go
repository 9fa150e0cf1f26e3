package week

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/weeklog/weeklog/internal/utils"
	"github.com/weeklog/weeklog/pkg/entry"
	"github.com/weeklog/weeklog/pkg/user"
)

var ErrSaveInProgress = errors.New("a week save is already in progress")
var ErrInvalidDayEdit = errors.New("day edit requires either an interval, notWorked, or clear")

// EntryReader is the slice of the entry service the week coordinator needs.
type EntryReader interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]entry.TimeEntry, error)
}

// DayEdit is one per-day operation of the week editor: set a worked interval,
// mark the day not worked, or clear the day.
type DayEdit struct {
	Day             time.Time
	Start           *time.Time
	End             *time.Time
	NotWorked       bool
	NotWorkedReason string
	Clear           bool
}

type Service interface {
	// SaveCurrentWeek snapshots the current calendar week: it either updates
	// the existing SavedWeek for this week (full overwrite of entries and
	// aggregates) or creates a new one. At most one non-deleted SavedWeek
	// exists per week start date.
	SaveCurrentWeek(ctx context.Context) (SavedWeek, error)
	List(ctx context.Context) ([]SavedWeek, error)
	// Edit applies per-day edits to the stored week, replacing its entries
	// wholesale and recomputing the aggregates.
	Edit(ctx context.Context, weekId string, edits []DayEdit) (SavedWeek, error)
	Trash(ctx context.Context, id string) error
	// Restore brings a trashed week back, recreating it from the supplied
	// snapshot when the stored row was already purged.
	Restore(ctx context.Context, snapshot SavedWeek) (SavedWeek, error)
}

type ServiceImpl struct {
	repo    Repository
	entries EntryReader
	users   user.Provider
	clock   utils.Clock

	mu       sync.Mutex
	inFlight map[string]struct{} // user ids with a save in flight
}

func NewService(repo Repository, entries EntryReader, users user.Provider, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		entries:  entries,
		users:    users,
		clock:    clock,
		inFlight: make(map[string]struct{}),
	}
}

func (s *ServiceImpl) SaveCurrentWeek(ctx context.Context) (SavedWeek, error) {
	currentUser, err := s.users.GetCurrentUser(ctx)
	if err != nil {
		return SavedWeek{}, fmt.Errorf("failed to get current user: %w", err)
	}

	// Serialize saves per user within this process. Concurrent saves from
	// other processes remain last-writer-wins at the row level.
	if !s.beginSave(currentUser.Id) {
		return SavedWeek{}, ErrSaveInProgress
	}
	defer s.endSave(currentUser.Id)

	now := s.clock.Now()
	window := Window(now, currentUser.Settings.WeekStartDay)
	from := window[0]
	to := EndOfDay(window[6])

	weekEntries, err := s.entries.ListBetween(ctx, from, to)
	if err != nil {
		return SavedWeek{}, fmt.Errorf("failed to list week entries: %w", err)
	}

	totalHours := TotalHours(weekEntries)
	totalEarnings := Earnings(totalHours, currentUser.Settings.HourlyRate)

	existing, err := s.findByStartDay(ctx, currentUser.Id, from)
	if err != nil {
		return SavedWeek{}, err
	}

	if existing != nil {
		existing.Entries = weekEntries
		existing.TotalHours = totalHours
		existing.TotalEarnings = totalEarnings
		existing.UpdatedAt = now
		if err := s.repo.Overwrite(ctx, currentUser.Id, *existing); err != nil {
			return SavedWeek{}, fmt.Errorf("failed to update saved week: %w", err)
		}
		log.Debugf("updated saved week %s for user %s", existing.Id, currentUser.Id)
		return *existing, nil
	}

	newWeek := SavedWeek{
		StartDate:     from,
		EndDate:       window[6],
		Entries:       weekEntries,
		TotalHours:    totalHours,
		TotalEarnings: totalEarnings,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	stored, err := s.repo.Store(ctx, currentUser.Id, newWeek)
	if err != nil {
		return SavedWeek{}, fmt.Errorf("failed to store saved week: %w", err)
	}
	log.Debugf("created saved week %s for user %s", stored.Id, currentUser.Id)
	return stored, nil
}

func (s *ServiceImpl) beginSave(userId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userId]; busy {
		return false
	}
	s.inFlight[userId] = struct{}{}
	return true
}

func (s *ServiceImpl) endSave(userId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userId)
}

// findByStartDay looks for a non-deleted week whose start date falls on the
// same calendar day as day.
func (s *ServiceImpl) findByStartDay(ctx context.Context, userId string, day time.Time) (*SavedWeek, error) {
	weeks, err := s.repo.ListActive(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved weeks: %w", err)
	}
	for i := range weeks {
		if IsSameDay(weeks[i].StartDate, day) {
			return &weeks[i], nil
		}
	}
	return nil, nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]SavedWeek, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListActive(ctx, userId)
}

func (s *ServiceImpl) Edit(ctx context.Context, weekId string, edits []DayEdit) (SavedWeek, error) {
	currentUser, err := s.users.GetCurrentUser(ctx)
	if err != nil {
		return SavedWeek{}, fmt.Errorf("failed to get current user: %w", err)
	}

	week, err := s.repo.Get(ctx, currentUser.Id, weekId)
	if err != nil {
		return SavedWeek{}, err
	}
	if week.IsDeleted {
		return SavedWeek{}, ErrWeekNotFound
	}

	now := s.clock.Now()
	draft := NewDraft(week.Entries, now)
	for _, edit := range edits {
		switch {
		case edit.Clear:
			draft.ClearDay(edit.Day)
		case edit.NotWorked:
			draft.MarkNotWorked(edit.Day, edit.NotWorkedReason)
		case edit.Start != nil && edit.End != nil:
			// The interval is pinned to the edited day before validation so a
			// start/end whose date part drifted client-side cannot invert or
			// land on another day.
			start := onDay(edit.Day, *edit.Start)
			end := onDay(edit.Day, *edit.End)
			if end.Before(start) {
				return SavedWeek{}, entry.ErrEndBeforeStart
			}
			draft.SetDay(edit.Day, start, end)
		default:
			return SavedWeek{}, ErrInvalidDayEdit
		}
	}

	week.Entries = draft.Entries()
	week.TotalHours = TotalHours(week.Entries)
	week.TotalEarnings = Earnings(week.TotalHours, currentUser.Settings.HourlyRate)
	week.UpdatedAt = now

	if err := s.repo.Overwrite(ctx, currentUser.Id, week); err != nil {
		return SavedWeek{}, fmt.Errorf("failed to update saved week: %w", err)
	}
	return week, nil
}

func (s *ServiceImpl) Trash(ctx context.Context, id string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	rows, err := s.repo.MarkTrashed(ctx, userId, id, s.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to trash saved week: %w", err)
	}
	if rows == 0 {
		return ErrWeekNotFound
	}
	return nil
}

func (s *ServiceImpl) Restore(ctx context.Context, snapshot SavedWeek) (SavedWeek, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return SavedWeek{}, fmt.Errorf("failed to get current user: %w", err)
	}

	now := s.clock.Now()
	rows, err := s.repo.ClearTrashed(ctx, userId, snapshot.Id, now)
	if err != nil {
		return SavedWeek{}, fmt.Errorf("failed to restore saved week: %w", err)
	}
	if rows > 0 {
		return s.repo.Get(ctx, userId, snapshot.Id)
	}

	current, err := s.repo.Get(ctx, userId, snapshot.Id)
	if err == nil {
		// Already active, nothing to do.
		return current, nil
	}
	if !errors.Is(err, ErrWeekNotFound) {
		return SavedWeek{}, fmt.Errorf("failed to restore saved week: %w", err)
	}

	// The row was purged while trashed. Recreate it from the snapshot with the
	// delete markers cleared.
	log.Infof("saved week %s was purged, recreating from snapshot", snapshot.Id)
	snapshot.IsDeleted = false
	snapshot.DeletedAt = nil
	snapshot.UpdatedAt = now
	recreated, err := s.repo.Store(ctx, userId, snapshot)
	if err != nil {
		return SavedWeek{}, fmt.Errorf("failed to recreate saved week: %w", err)
	}
	return recreated, nil
}
