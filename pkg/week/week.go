package week

import (
	"time"

	"github.com/weeklog/weeklog/pkg/entry"
)

// SavedWeek is the aggregated snapshot of a user's entries for one 7-day
// window. Entries is a denormalized copy taken at save time, not a live
// reference; TotalHours and TotalEarnings are derived from it.
type SavedWeek struct {
	Id            string
	StartDate     time.Time
	EndDate       time.Time
	Entries       []entry.TimeEntry
	TotalHours    float64
	TotalEarnings float64
	IsDeleted     bool
	DeletedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
