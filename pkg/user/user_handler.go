package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/weeklog/weeklog/internal/rest"
)

type UserDTO struct {
	Id          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	Email       string      `json:"email"`
	Settings    SettingsDTO `json:"settings"`
}

type SettingsDTO struct {
	Theme         string  `json:"theme"`
	HourlyRate    float64 `json:"hourlyRate"`
	WeekStartDay  string  `json:"weekStartDay"`
	Timezone      string  `json:"timezone"`
	EmailVerified bool    `json:"emailVerified"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// CreateUser registers the user record and settings for the authenticated id.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating user")

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	if len(dto.DisplayName) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Display name is required",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	user, err := dtoToUser(dto)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid week start day",
			Details: "Week start day must be 'monday' or 'sunday'",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	createdUser, err := h.userService.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Tracef("Created user: %+v", createdUser)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(userToDTO(createdUser)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// CurrentUser returns the authenticated user's record.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Getting current user")

	user, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(userToDTO(user)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// UpdateUser overwrites the user's profile and settings wholesale.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	user, err := dtoToUser(dto)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid week start day",
			Details: "Week start day must be 'monday' or 'sunday'",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	updatedUser, err := h.userService.UpdateCurrentUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(userToDTO(updatedUser)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// DeleteUser removes the account: all owned data, then the credentials.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	log.Debug("Deleting current user account")

	err := h.userService.DeleteCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func userToDTO(user User) UserDTO {
	return UserDTO{
		Id:          user.Id,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Settings: SettingsDTO{
			Theme:         string(user.Settings.Theme),
			HourlyRate:    user.Settings.HourlyRate,
			WeekStartDay:  weekdayToString(user.Settings.WeekStartDay),
			Timezone:      user.Settings.Timezone,
			EmailVerified: user.Settings.EmailVerified,
		},
	}
}

func dtoToUser(dto UserDTO) (User, error) {
	weekStartDay, err := weekdayFromString(dto.Settings.WeekStartDay)
	if err != nil {
		return User{}, err
	}
	return User{
		Id:          dto.Id,
		DisplayName: dto.DisplayName,
		Email:       dto.Email,
		Settings: Settings{
			Theme:         Theme(dto.Settings.Theme),
			HourlyRate:    dto.Settings.HourlyRate,
			WeekStartDay:  weekStartDay,
			Timezone:      dto.Settings.Timezone,
			EmailVerified: dto.Settings.EmailVerified,
		},
	}, nil
}

func weekdayToString(day time.Weekday) string {
	if day == time.Sunday {
		return "sunday"
	}
	return "monday"
}

func weekdayFromString(day string) (time.Weekday, error) {
	switch day {
	case "sunday":
		return time.Sunday, nil
	case "monday", "":
		return time.Monday, nil
	default:
		return time.Monday, errors.New("unsupported week start day: " + day)
	}
}
