package user

import "time"

type User struct {
	Id          string
	DisplayName string
	Email       string
	Settings    Settings
	CreatedAt   time.Time
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Settings carries the per-user preferences consumed by the rest of the
// application. HourlyRate feeds earnings aggregation and WeekStartDay drives
// week partitioning.
type Settings struct {
	Theme         Theme
	HourlyRate    float64
	WeekStartDay  time.Weekday
	Timezone      string
	EmailVerified bool
}
