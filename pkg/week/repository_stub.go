package week

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	weeks   map[string]SavedWeek // id -> week
	userIds map[string]string    // id -> userId
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		weeks:   make(map[string]SavedWeek),
		userIds: make(map[string]string),
	}
}

func (r *RepositoryStub) Store(_ context.Context, userId string, week SavedWeek) (SavedWeek, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if week.Id == "" {
		week.Id = uuid.NewString()
	}
	r.weeks[week.Id] = week
	r.userIds[week.Id] = userId
	return week, nil
}

func (r *RepositoryStub) Get(_ context.Context, userId string, id string) (SavedWeek, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	week, ok := r.weeks[id]
	if !ok || r.userIds[id] != userId {
		return SavedWeek{}, ErrWeekNotFound
	}
	return week, nil
}

func (r *RepositoryStub) ListActive(_ context.Context, userId string) ([]SavedWeek, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []SavedWeek
	for id, week := range r.weeks {
		if r.userIds[id] == userId && !week.IsDeleted {
			result = append(result, week)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[j].StartDate.Before(result[i].StartDate)
	})
	return result, nil
}

func (r *RepositoryStub) Overwrite(_ context.Context, userId string, week SavedWeek) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.weeks[week.Id]
	if !ok || r.userIds[week.Id] != userId {
		return ErrWeekNotFound
	}
	stored.Entries = week.Entries
	stored.TotalHours = week.TotalHours
	stored.TotalEarnings = week.TotalEarnings
	stored.UpdatedAt = week.UpdatedAt
	r.weeks[week.Id] = stored
	return nil
}

func (r *RepositoryStub) MarkTrashed(_ context.Context, userId string, id string, deletedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	week, ok := r.weeks[id]
	if !ok || r.userIds[id] != userId || week.IsDeleted {
		return 0, nil
	}
	week.IsDeleted = true
	week.DeletedAt = &deletedAt
	week.UpdatedAt = deletedAt
	r.weeks[id] = week
	return 1, nil
}

func (r *RepositoryStub) ClearTrashed(_ context.Context, userId string, id string, updatedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	week, ok := r.weeks[id]
	if !ok || r.userIds[id] != userId || !week.IsDeleted {
		return 0, nil
	}
	week.IsDeleted = false
	week.DeletedAt = nil
	week.UpdatedAt = updatedAt
	r.weeks[id] = week
	return 1, nil
}

// Purge removes a row entirely, simulating the retention sweeper.
func (r *RepositoryStub) Purge(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.weeks, id)
	delete(r.userIds, id)
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weeks = make(map[string]SavedWeek)
	r.userIds = make(map[string]string)
}
