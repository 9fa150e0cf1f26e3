package test_utils

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/weeklog/weeklog/pkg/user"
)

// TestUser is the user most service tests run as.
var TestUser = user.User{
	Id:          "test-user-1",
	DisplayName: "Test User",
	Email:       "test@example.com",
	Settings: user.Settings{
		Theme:         user.ThemeLight,
		HourlyRate:    12.70,
		WeekStartDay:  time.Monday,
		Timezone:      "Europe/Warsaw",
		EmailVerified: true,
	},
}

// ContextWithTestUser returns a context carrying TestUser, the way the user
// middleware would populate it for an authenticated request.
func ContextWithTestUser() context.Context {
	return user.WithUser(context.Background(), TestUser)
}

// InsertTestUser writes TestUser into the users table so that rows with a
// foreign key on user_id can be stored in repository tests.
func InsertTestUser(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO users (id, display_name, email, theme, hourly_rate, week_start_day, timezone, email_verified, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		TestUser.Id,
		TestUser.DisplayName,
		TestUser.Email,
		string(TestUser.Settings.Theme),
		TestUser.Settings.HourlyRate,
		int(TestUser.Settings.WeekStartDay),
		TestUser.Settings.Timezone,
		TestUser.Settings.EmailVerified,
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
	)
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}
}

type TestUserProvider struct{}

func (p TestUserProvider) GetCurrentUser(ctx context.Context) (user.User, error) {
	return TestUser, nil
}
