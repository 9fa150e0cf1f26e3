package entry

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/weeklog/weeklog/internal/rest"
	"github.com/weeklog/weeklog/pkg/user"
)

type TimeEntryDTO struct {
	Id              string  `json:"id"`
	StartTime       string  `json:"startTime"`
	EndTime         *string `json:"endTime,omitempty"`
	NotWorked       bool    `json:"notWorked,omitempty"`
	NotWorkedReason string  `json:"notWorkedReason,omitempty"`
	IsDeleted       bool    `json:"isDeleted,omitempty"`
	DeletedAt       *string `json:"deletedAt,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// AddEntry logs a worked interval, or a not-worked marker when notWorked is set.
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var request struct {
		StartTime       string `json:"startTime"`
		EndTime         string `json:"endTime"`
		NotWorked       bool   `json:"notWorked"`
		NotWorkedReason string `json:"notWorkedReason"`
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

	startTime, err := time.Parse(time.RFC3339, request.StartTime)
	if err != nil {
		writeInvalidTime(w)
		return
	}

	var stored TimeEntry
	if request.NotWorked {
		stored, err = h.service.MarkNotWorked(r.Context(), startTime, request.NotWorkedReason)
	} else {
		var endTime time.Time
		endTime, err = time.Parse(time.RFC3339, request.EndTime)
		if err != nil {
			writeInvalidTime(w)
			return
		}
		stored, err = h.service.Add(r.Context(), startTime, endTime)
	}
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		if errors.Is(err, ErrDayAlreadyLogged) {
			w.WriteHeader(http.StatusConflict)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error: "An entry already exists for this day",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		if errors.Is(err, ErrEndBeforeStart) {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error: "End time must not be before start time",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		log.Errorf("failed to add entry: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(EntryToDTO(stored)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// ListEntries returns all of the user's active (non-deleted) entries.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	entries, err := h.service.List(r.Context())
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]TimeEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, EntryToDTO(e))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// DeleteEntry moves an entry to the trash (soft delete).
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryId := mux.Vars(r)["entryId"]

	if err := h.service.Trash(r.Context(), entryId); err != nil {
		if errors.Is(err, user.ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		if errors.Is(err, ErrEntryNotFound) {
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete entry: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestoreEntry brings a trashed entry back. The request body carries the
// client's snapshot of the entry so it can be recreated if the stored row was
// already purged by the retention sweeper.
func (h *Handler) RestoreEntry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	entryId := mux.Vars(r)["entryId"]

	var dto TimeEntryDTO
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
	dto.Id = entryId

	snapshot, err := DTOToEntry(dto)
	if err != nil {
		writeInvalidTime(w)
		return
	}

	restored, err := h.service.Restore(r.Context(), snapshot)
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		log.Errorf("failed to restore entry: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(EntryToDTO(restored)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func writeInvalidTime(w http.ResponseWriter) {
	w.WriteHeader(http.StatusBadRequest)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   "Incorrect time format",
		Details: "Times must be in RFC3339 format",
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func EntryToDTO(entry TimeEntry) TimeEntryDTO {
	dto := TimeEntryDTO{
		Id:              entry.Id,
		StartTime:       entry.StartTime.Format(time.RFC3339),
		NotWorked:       entry.NotWorked,
		NotWorkedReason: entry.NotWorkedReason,
		IsDeleted:       entry.IsDeleted,
		CreatedAt:       entry.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       entry.UpdatedAt.Format(time.RFC3339),
	}
	if entry.EndTime != nil {
		endTime := entry.EndTime.Format(time.RFC3339)
		dto.EndTime = &endTime
	}
	if entry.DeletedAt != nil {
		deletedAt := entry.DeletedAt.Format(time.RFC3339)
		dto.DeletedAt = &deletedAt
	}
	return dto
}

func DTOToEntry(dto TimeEntryDTO) (TimeEntry, error) {
	startTime, err := time.Parse(time.RFC3339, dto.StartTime)
	if err != nil {
		return TimeEntry{}, err
	}
	entry := TimeEntry{
		Id:              dto.Id,
		StartTime:       startTime,
		NotWorked:       dto.NotWorked,
		NotWorkedReason: dto.NotWorkedReason,
		IsDeleted:       dto.IsDeleted,
	}
	if dto.EndTime != nil {
		endTime, err := time.Parse(time.RFC3339, *dto.EndTime)
		if err != nil {
			return TimeEntry{}, err
		}
		entry.EndTime = &endTime
	}
	if dto.DeletedAt != nil {
		deletedAt, err := time.Parse(time.RFC3339, *dto.DeletedAt)
		if err != nil {
			return TimeEntry{}, err
		}
		entry.DeletedAt = &deletedAt
	}
	if dto.CreatedAt != "" {
		createdAt, err := time.Parse(time.RFC3339, dto.CreatedAt)
		if err != nil {
			return TimeEntry{}, err
		}
		entry.CreatedAt = createdAt
	}
	if dto.UpdatedAt != "" {
		updatedAt, err := time.Parse(time.RFC3339, dto.UpdatedAt)
		if err != nil {
			return TimeEntry{}, err
		}
		entry.UpdatedAt = updatedAt
	}
	return entry, nil
}
