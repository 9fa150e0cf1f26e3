package trash

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/weeklog/weeklog/pkg/entry"
	"github.com/weeklog/weeklog/pkg/user"
)

type ItemDTO struct {
	Kind          string              `json:"kind"`
	Id            string              `json:"id"`
	DeletedAt     string              `json:"deletedAt"`
	DaysRemaining int                 `json:"daysRemaining"`
	Status        string              `json:"status"`
	Entry         *entry.TimeEntryDTO `json:"entry,omitempty"`
	Week          *WeekSummaryDTO     `json:"week,omitempty"`
}

// WeekSummaryDTO carries the saved week fields shown in the trash list; the
// embedded entries snapshot stays server-side until the week is restored.
type WeekSummaryDTO struct {
	Id            string  `json:"id"`
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
	TotalHours    float64 `json:"totalHours"`
	TotalEarnings float64 `json:"totalEarnings"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// ListTrash returns the user's trashed records, newest deletion first.
func (h *Handler) ListTrash(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	items, err := h.service.List(r.Context())
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		log.Errorf("failed to list trash: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, itemToDTO(item))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// EmptyTrash hard-deletes everything in the user's trash.
func (h *Handler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	if err := h.service.EmptyTrash(r.Context()); err != nil {
		if errors.Is(err, user.ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		log.Errorf("failed to empty trash: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func itemToDTO(item Item) ItemDTO {
	dto := ItemDTO{
		Kind:          string(item.Kind),
		Id:            item.Id,
		DeletedAt:     item.DeletedAt.Format(time.RFC3339),
		DaysRemaining: item.DaysRemaining,
		Status:        "trashed",
	}
	if item.Pending {
		dto.Status = "pending"
	}
	if item.Entry != nil {
		entryDTO := entry.EntryToDTO(*item.Entry)
		dto.Entry = &entryDTO
	}
	if item.Week != nil {
		dto.Week = &WeekSummaryDTO{
			Id:            item.Week.Id,
			StartDate:     item.Week.StartDate.Format(time.RFC3339),
			EndDate:       item.Week.EndDate.Format(time.RFC3339),
			TotalHours:    math.Round(item.Week.TotalHours*100) / 100,
			TotalEarnings: math.Round(item.Week.TotalEarnings*100) / 100,
		}
	}
	return dto
}
