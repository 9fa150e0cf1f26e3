package week

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/weeklog/weeklog/internal/rest"
	"github.com/weeklog/weeklog/pkg/entry"
	"github.com/weeklog/weeklog/pkg/user"
)

type SavedWeekDTO struct {
	Id            string               `json:"id"`
	StartDate     string               `json:"startDate"`
	EndDate       string               `json:"endDate"`
	Entries       []entry.TimeEntryDTO `json:"entries"`
	TotalHours    float64              `json:"totalHours"`
	TotalEarnings float64              `json:"totalEarnings"`
	IsDeleted     bool                 `json:"isDeleted,omitempty"`
	DeletedAt     *string              `json:"deletedAt,omitempty"`
	CreatedAt     string               `json:"createdAt"`
	UpdatedAt     string               `json:"updatedAt"`
}

type DayEditDTO struct {
	Date            string  `json:"date"`
	StartTime       *string `json:"startTime,omitempty"`
	EndTime         *string `json:"endTime,omitempty"`
	NotWorked       bool    `json:"notWorked,omitempty"`
	NotWorkedReason string  `json:"notWorkedReason,omitempty"`
	Clear           bool    `json:"clear,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// SaveCurrentWeek creates or fully overwrites the SavedWeek for the calendar
// week containing "now".
func (h *Handler) SaveCurrentWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	saved, err := h.service.SaveCurrentWeek(r.Context())
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		if errors.Is(err, ErrSaveInProgress) {
			w.WriteHeader(http.StatusConflict)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error: "A save is already in progress",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		log.Errorf("failed to save current week: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(weekToDTO(saved)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// ListWeeks returns all of the user's active saved weeks, newest first.
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	weeks, err := h.service.List(r.Context())
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]SavedWeekDTO, 0, len(weeks))
	for _, week := range weeks {
		dtos = append(dtos, weekToDTO(week))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// EditWeek applies per-day edits to a saved week and replaces its stored
// entries wholesale.
func (h *Handler) EditWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	weekId := mux.Vars(r)["weekId"]

	var request struct {
		Days []DayEditDTO `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	edits := make([]DayEdit, 0, len(request.Days))
	for _, dto := range request.Days {
		edit, err := dtoToDayEdit(dto)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Incorrect time format",
				Details: "Times must be in RFC3339 format",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		edits = append(edits, edit)
	}

	updated, err := h.service.Edit(r.Context(), weekId, edits)
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		if errors.Is(err, ErrWeekNotFound) {
			http.Error(w, "saved week not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrInvalidDayEdit) {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error: "Each day edit needs an interval, notWorked, or clear",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		if errors.Is(err, entry.ErrEndBeforeStart) {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error: "End time must not be before start time",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		log.Errorf("failed to edit week: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(weekToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// DeleteWeek moves a saved week to the trash (soft delete).
func (h *Handler) DeleteWeek(w http.ResponseWriter, r *http.Request) {
	weekId := mux.Vars(r)["weekId"]

	if err := h.service.Trash(r.Context(), weekId); err != nil {
		if errors.Is(err, user.ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		if errors.Is(err, ErrWeekNotFound) {
			http.Error(w, "saved week not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete week: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestoreWeek brings a trashed week back, recreating it from the request's
// snapshot if the stored row was already purged.
func (h *Handler) RestoreWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	weekId := mux.Vars(r)["weekId"]

	var dto SavedWeekDTO
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
	dto.Id = weekId

	snapshot, err := dtoToWeek(dto)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Incorrect time format",
			Details: "Times must be in RFC3339 format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	restored, err := h.service.Restore(r.Context(), snapshot)
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		log.Errorf("failed to restore week: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(weekToDTO(restored)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func weekToDTO(week SavedWeek) SavedWeekDTO {
	entries := make([]entry.TimeEntryDTO, 0, len(week.Entries))
	for _, e := range week.Entries {
		entries = append(entries, entry.EntryToDTO(e))
	}
	dto := SavedWeekDTO{
		Id:            week.Id,
		StartDate:     week.StartDate.Format(time.RFC3339),
		EndDate:       week.EndDate.Format(time.RFC3339),
		Entries:       entries,
		TotalHours:    roundTwoDecimals(week.TotalHours),
		TotalEarnings: roundTwoDecimals(week.TotalEarnings),
		IsDeleted:     week.IsDeleted,
		CreatedAt:     week.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     week.UpdatedAt.Format(time.RFC3339),
	}
	if week.DeletedAt != nil {
		deletedAt := week.DeletedAt.Format(time.RFC3339)
		dto.DeletedAt = &deletedAt
	}
	return dto
}

func dtoToWeek(dto SavedWeekDTO) (SavedWeek, error) {
	startDate, err := time.Parse(time.RFC3339, dto.StartDate)
	if err != nil {
		return SavedWeek{}, err
	}
	endDate, err := time.Parse(time.RFC3339, dto.EndDate)
	if err != nil {
		return SavedWeek{}, err
	}
	entries := make([]entry.TimeEntry, 0, len(dto.Entries))
	for _, entryDTO := range dto.Entries {
		e, err := entry.DTOToEntry(entryDTO)
		if err != nil {
			return SavedWeek{}, err
		}
		entries = append(entries, e)
	}
	week := SavedWeek{
		Id:            dto.Id,
		StartDate:     startDate,
		EndDate:       endDate,
		Entries:       entries,
		TotalHours:    dto.TotalHours,
		TotalEarnings: dto.TotalEarnings,
		IsDeleted:     dto.IsDeleted,
	}
	if dto.DeletedAt != nil {
		deletedAt, err := time.Parse(time.RFC3339, *dto.DeletedAt)
		if err != nil {
			return SavedWeek{}, err
		}
		week.DeletedAt = &deletedAt
	}
	if dto.CreatedAt != "" {
		createdAt, err := time.Parse(time.RFC3339, dto.CreatedAt)
		if err != nil {
			return SavedWeek{}, err
		}
		week.CreatedAt = createdAt
	}
	if dto.UpdatedAt != "" {
		updatedAt, err := time.Parse(time.RFC3339, dto.UpdatedAt)
		if err != nil {
			return SavedWeek{}, err
		}
		week.UpdatedAt = updatedAt
	}
	return week, nil
}

func dtoToDayEdit(dto DayEditDTO) (DayEdit, error) {
	day, err := time.Parse(time.RFC3339, dto.Date)
	if err != nil {
		return DayEdit{}, err
	}
	edit := DayEdit{
		Day:             day,
		NotWorked:       dto.NotWorked,
		NotWorkedReason: dto.NotWorkedReason,
		Clear:           dto.Clear,
	}
	if dto.StartTime != nil {
		start, err := time.Parse(time.RFC3339, *dto.StartTime)
		if err != nil {
			return DayEdit{}, err
		}
		edit.Start = &start
	}
	if dto.EndTime != nil {
		end, err := time.Parse(time.RFC3339, *dto.EndTime)
		if err != nil {
			return DayEdit{}, err
		}
		edit.End = &end
	}
	return edit, nil
}

func roundTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
