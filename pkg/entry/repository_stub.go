package entry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	entries map[string]TimeEntry // id -> entry
	userIds map[string]string    // id -> userId
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		entries: make(map[string]TimeEntry),
		userIds: make(map[string]string),
	}
}

func (r *RepositoryStub) Store(_ context.Context, userId string, entry TimeEntry) (TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.Id == "" {
		entry.Id = uuid.NewString()
	}
	r.entries[entry.Id] = entry
	r.userIds[entry.Id] = userId
	return entry, nil
}

func (r *RepositoryStub) Get(_ context.Context, userId string, id string) (TimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok || r.userIds[id] != userId {
		return TimeEntry{}, ErrEntryNotFound
	}
	return entry, nil
}

func (r *RepositoryStub) ListActive(_ context.Context, userId string) ([]TimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []TimeEntry
	for id, entry := range r.entries {
		if r.userIds[id] == userId && !entry.IsDeleted {
			result = append(result, entry)
		}
	}
	sortByStartTime(result)
	return result, nil
}

func (r *RepositoryStub) ListActiveBetween(_ context.Context, userId string, from, to time.Time) ([]TimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []TimeEntry
	for id, entry := range r.entries {
		if r.userIds[id] != userId || entry.IsDeleted {
			continue
		}
		if entry.StartTime.Before(from) || entry.StartTime.After(to) {
			continue
		}
		result = append(result, entry)
	}
	sortByStartTime(result)
	return result, nil
}

func (r *RepositoryStub) MarkTrashed(_ context.Context, userId string, id string, deletedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || r.userIds[id] != userId || entry.IsDeleted {
		return 0, nil
	}
	entry.IsDeleted = true
	entry.DeletedAt = &deletedAt
	entry.UpdatedAt = deletedAt
	r.entries[id] = entry
	return 1, nil
}

func (r *RepositoryStub) ClearTrashed(_ context.Context, userId string, id string, updatedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || r.userIds[id] != userId || !entry.IsDeleted {
		return 0, nil
	}
	entry.IsDeleted = false
	entry.DeletedAt = nil
	entry.UpdatedAt = updatedAt
	r.entries[id] = entry
	return 1, nil
}

// Purge removes a row entirely, simulating the retention sweeper.
func (r *RepositoryStub) Purge(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	delete(r.userIds, id)
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]TimeEntry)
	r.userIds = make(map[string]string)
}

func sortByStartTime(entries []TimeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartTime.Before(entries[j].StartTime)
	})
}
