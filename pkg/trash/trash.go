package trash

import (
	"time"

	"github.com/weeklog/weeklog/pkg/entry"
	"github.com/weeklog/weeklog/pkg/week"
)

type Kind string

const (
	KindEntry Kind = "entry"
	KindWeek  Kind = "week"
)

// Item is one trashed record together with how long it has left before the
// retention sweeper hard-deletes it. Exactly one of Entry or Week is set,
// matching Kind.
type Item struct {
	Kind          Kind
	Id            string
	DeletedAt     time.Time
	DaysRemaining int
	// Pending marks items past the retention window that the sweeper has not
	// picked up yet.
	Pending bool
	Entry   *entry.TimeEntry
	Week    *week.SavedWeek
}
