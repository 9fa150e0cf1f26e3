package app

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/weeklog/weeklog/internal/config"
	"github.com/weeklog/weeklog/pkg/user"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Propagate X-User-Id header into context for downstream services
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			userIdHeader := req.Header.Get("X-User-Id")
			ctx := req.Context()

			if userIdHeader != "" {
				// The id alone is always propagated so that user creation can
				// run before the user record exists.
				ctx = user.WithId(ctx, userIdHeader)

				u, err := deps.UserService.GetUser(ctx, userIdHeader)
				if err == nil {
					ctx = user.WithUser(ctx, u)
				} else if !errors.Is(err, user.ErrUserNotFound) {
					log.Errorf("failed to get user: %v", err)
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
