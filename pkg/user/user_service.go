package user

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/weeklog/weeklog/internal/utils"
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	UpdateCurrentUser(ctx context.Context, user User) (User, error)
	// DeleteCurrentUser purges all data owned by the user and then removes the
	// external credentials. Data goes first: if the credential step fails the
	// account data is already gone, which is the intended direction for an
	// irreversible account removal.
	DeleteCurrentUser(ctx context.Context) error
}

// Provider exposes just the current-user lookup for packages that only need
// settings (hourly rate, week start day).
type Provider interface {
	GetCurrentUser(ctx context.Context) (User, error)
}

type ServiceImpl struct {
	repo        Repo
	credentials CredentialStore
	clock       utils.Clock
}

func NewUserService(repo Repo, credentials CredentialStore, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, credentials: credentials, clock: clock}
}

func (s *ServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.GetUser(ctx, userId)
}

func (s *ServiceImpl) GetUser(ctx context.Context, id string) (User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *ServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	user.Id = userId
	if user.Settings.Theme == "" {
		user.Settings.Theme = ThemeLight
	}
	if user.Settings.Timezone == "" {
		user.Settings.Timezone = "UTC"
	}
	user.CreatedAt = s.clock.Now()
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *ServiceImpl) UpdateCurrentUser(ctx context.Context, user User) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.UpdateUser(ctx, userId, user)
}

func (s *ServiceImpl) DeleteCurrentUser(ctx context.Context) error {
	userId, err := CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	if err := s.repo.DeleteUserData(ctx, userId); err != nil {
		return fmt.Errorf("failed to delete user data: %w", err)
	}

	if err := s.credentials.DeleteCredentials(ctx, userId); err != nil {
		// Data is already purged; the dangling login is flagged, not rolled back.
		log.Errorf("user data purged but credential deletion failed for %s: %v", userId, err)
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}
