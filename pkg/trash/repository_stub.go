package trash

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/weeklog/weeklog/pkg/entry"
	"github.com/weeklog/weeklog/pkg/week"
)

type trashedEntry struct {
	userId string
	entry  entry.TimeEntry
}

type trashedWeek struct {
	userId string
	week   week.SavedWeek
}

type RepositoryStub struct {
	mu      sync.RWMutex
	entries map[string]trashedEntry
	weeks   map[string]trashedWeek
	failure error // returned from mutating calls when set
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		entries: make(map[string]trashedEntry),
		weeks:   make(map[string]trashedWeek),
	}
}

func (r *RepositoryStub) AddEntry(userId string, e entry.TimeEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.Id] = trashedEntry{userId: userId, entry: e}
}

func (r *RepositoryStub) AddWeek(userId string, w week.SavedWeek) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weeks[w.Id] = trashedWeek{userId: userId, week: w}
}

// SetFailure makes EmptyTrash and PurgeExpired fail without touching any
// stored rows, mimicking a rolled-back transaction.
func (r *RepositoryStub) SetFailure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure = err
}

func (r *RepositoryStub) ListTrashedEntries(_ context.Context, userId string) ([]entry.TimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []entry.TimeEntry
	for _, t := range r.entries {
		if t.userId == userId {
			result = append(result, t.entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[j].DeletedAt.Before(*result[i].DeletedAt)
	})
	return result, nil
}

func (r *RepositoryStub) ListTrashedWeeks(_ context.Context, userId string) ([]week.SavedWeek, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []week.SavedWeek
	for _, t := range r.weeks {
		if t.userId == userId {
			result = append(result, t.week)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[j].DeletedAt.Before(*result[i].DeletedAt)
	})
	return result, nil
}

func (r *RepositoryStub) EmptyTrash(_ context.Context, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return r.failure
	}
	for id, t := range r.entries {
		if t.userId == userId {
			delete(r.entries, id)
		}
	}
	for id, t := range r.weeks {
		if t.userId == userId {
			delete(r.weeks, id)
		}
	}
	return nil
}

func (r *RepositoryStub) PurgeExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return 0, r.failure
	}
	var purged int64
	for id, t := range r.entries {
		if !t.entry.DeletedAt.After(cutoff) {
			delete(r.entries, id)
			purged++
		}
	}
	for id, t := range r.weeks {
		if !t.week.DeletedAt.After(cutoff) {
			delete(r.weeks, id)
			purged++
		}
	}
	return purged, nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]trashedEntry)
	r.weeks = make(map[string]trashedWeek)
	r.failure = nil
}
