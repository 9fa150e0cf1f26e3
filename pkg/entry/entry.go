package entry

import "time"

// TimeEntry is a single logged work interval, or a "not worked" marker for one
// calendar day when NotWorked is set (EndTime is absent in that case).
type TimeEntry struct {
	Id              string
	StartTime       time.Time
	EndTime         *time.Time
	NotWorked       bool
	NotWorkedReason string
	IsDeleted       bool
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
