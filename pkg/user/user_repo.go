package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	UpdateUser(ctx context.Context, userId string, user User) (User, error)
	// DeleteUserData removes the user row together with all owned entries and
	// saved weeks (foreign keys cascade) in a single transaction.
	DeleteUserData(ctx context.Context, id string) error
}

type RepoImpl struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) CreateUser(ctx context.Context, user User) error {
	query := `INSERT INTO users (id, display_name, email, theme, hourly_rate, week_start_day, timezone, email_verified, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		user.Id,
		user.DisplayName,
		user.Email,
		string(user.Settings.Theme),
		user.Settings.HourlyRate,
		int(user.Settings.WeekStartDay),
		user.Settings.Timezone,
		user.Settings.EmailVerified,
		user.CreatedAt.UnixMilli(),
	)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return err
	}
	return nil
}

func (r *RepoImpl) GetUser(ctx context.Context, id string) (User, error) {
	query := `SELECT id, display_name, email, theme, hourly_rate, week_start_day, timezone, email_verified, created_at
				FROM users WHERE id = ?`
	var user User
	var theme string
	var weekStartDay int
	var createdAtMillis int64
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(
			&user.Id,
			&user.DisplayName,
			&user.Email,
			&theme,
			&user.Settings.HourlyRate,
			&weekStartDay,
			&user.Settings.Timezone,
			&user.Settings.EmailVerified,
			&createdAtMillis,
		)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debugf("user with id %s not found", id)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	user.Settings.Theme = Theme(theme)
	user.Settings.WeekStartDay = time.Weekday(weekStartDay)
	user.CreatedAt = time.UnixMilli(createdAtMillis)
	return user, nil
}

func (r *RepoImpl) UpdateUser(ctx context.Context, userId string, user User) (User, error) {
	query := `UPDATE users SET display_name = ?, email = ?, theme = ?, hourly_rate = ?, week_start_day = ?, timezone = ?,
				email_verified = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		user.DisplayName,
		user.Email,
		string(user.Settings.Theme),
		user.Settings.HourlyRate,
		int(user.Settings.WeekStartDay),
		user.Settings.Timezone,
		user.Settings.EmailVerified,
		userId,
	)
	if err != nil {
		return User{}, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if rowsAffected == 0 {
		log.Info("no rows affected when updating user")
		return User{}, ErrUserNotFound
	}
	user.Id = userId
	return user, nil
}

func (r *RepoImpl) DeleteUserData(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	// Entries and saved weeks go with the user row via ON DELETE CASCADE, so
	// the whole purge is one atomic statement.
	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete user data: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
