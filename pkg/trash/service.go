package trash

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/weeklog/weeklog/internal/utils"
	"github.com/weeklog/weeklog/pkg/user"
)

type Service interface {
	// List returns the user's trashed entries and weeks, newest deletion
	// first, each annotated with the days left until the sweeper purges it.
	List(ctx context.Context) ([]Item, error)
	// EmptyTrash hard-deletes everything in the user's trash at once.
	EmptyTrash(ctx context.Context) error
	// SweepExpired purges records of all users whose retention window has
	// elapsed. Returns the number of purged rows.
	SweepExpired(ctx context.Context) (int64, error)
}

type ServiceImpl struct {
	repo      Repository
	clock     utils.Clock
	retention time.Duration
}

func NewService(repo Repository, clock utils.Clock, retentionDays int) *ServiceImpl {
	return &ServiceImpl{
		repo:      repo,
		clock:     clock,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Item, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	entries, err := s.repo.ListTrashedEntries(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list trashed entries: %w", err)
	}
	weeks, err := s.repo.ListTrashedWeeks(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list trashed weeks: %w", err)
	}

	now := s.clock.Now()
	items := make([]Item, 0, len(entries)+len(weeks))
	for i := range entries {
		e := entries[i]
		item := Item{
			Kind:      KindEntry,
			Id:        e.Id,
			DeletedAt: *e.DeletedAt,
			Entry:     &e,
		}
		item.DaysRemaining, item.Pending = s.remaining(*e.DeletedAt, now)
		items = append(items, item)
	}
	for i := range weeks {
		w := weeks[i]
		item := Item{
			Kind:      KindWeek,
			Id:        w.Id,
			DeletedAt: *w.DeletedAt,
			Week:      &w,
		}
		item.DaysRemaining, item.Pending = s.remaining(*w.DeletedAt, now)
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[j].DeletedAt.Before(items[i].DeletedAt)
	})
	return items, nil
}

// remaining reports the whole days left before the record expires, rounding
// partial days up. An expired record reports 0 days and pending status.
func (s *ServiceImpl) remaining(deletedAt, now time.Time) (int, bool) {
	left := deletedAt.Add(s.retention).Sub(now)
	if left <= 0 {
		return 0, true
	}
	return int(math.Ceil(left.Hours() / 24)), false
}

func (s *ServiceImpl) EmptyTrash(ctx context.Context) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.repo.EmptyTrash(ctx, userId); err != nil {
		return fmt.Errorf("failed to empty trash: %w", err)
	}
	log.Infof("emptied trash for user %s", userId)
	return nil
}

func (s *ServiceImpl) SweepExpired(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.retention)
	purged, err := s.repo.PurgeExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired records: %w", err)
	}
	if purged > 0 {
		log.Infof("purged %d expired trash records", purged)
	}
	return purged, nil
}
