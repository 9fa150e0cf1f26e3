package app

import (
	"database/sql"
	"time"

	"github.com/weeklog/weeklog/internal/config"
	"github.com/weeklog/weeklog/internal/utils"
	"github.com/weeklog/weeklog/pkg/entry"
	"github.com/weeklog/weeklog/pkg/trash"
	"github.com/weeklog/weeklog/pkg/user"
	"github.com/weeklog/weeklog/pkg/week"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	UserService user.Service
	UserHandler *user.Handler

	EntryRepo    entry.Repository
	EntryService entry.Service
	EntryHandler *entry.Handler

	WeekRepo    week.Repository
	WeekService week.Service
	WeekHandler *week.Handler

	TrashRepo    trash.Repository
	TrashService trash.Service
	TrashHandler *trash.Handler
	TrashSweeper *trash.Sweeper

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	userService := user.NewUserService(user.NewUserRepo(db), &user.NoopCredentialStore{}, deps.Clock)
	deps.UserService = userService
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.EntryRepo = entry.NewRepository(db)
	entryService := entry.NewService(deps.EntryRepo, deps.Clock)
	deps.EntryService = entryService
	deps.EntryHandler = entry.NewHandler(deps.EntryService)

	deps.WeekRepo = week.NewRepository(db)
	deps.WeekService = week.NewService(deps.WeekRepo, entryService, userService, deps.Clock)
	deps.WeekHandler = week.NewHandler(deps.WeekService)

	deps.TrashRepo = trash.NewRepository(db)
	deps.TrashService = trash.NewService(deps.TrashRepo, deps.Clock, cfg.Retention.Days)
	deps.TrashHandler = trash.NewHandler(deps.TrashService)
	sweepInterval := time.Duration(cfg.Retention.SweepIntervalMinutes) * time.Minute
	deps.TrashSweeper = trash.NewSweeper(deps.TrashService, sweepInterval)

	return deps
}
