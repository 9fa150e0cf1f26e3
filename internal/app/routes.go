package app

import (
	"github.com/gorilla/mux"
	"github.com/weeklog/weeklog/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Time entries
	r.HandleFunc("/api/entry", deps.EntryHandler.AddEntry).Methods("POST")
	r.HandleFunc("/api/entry", deps.EntryHandler.ListEntries).Methods("GET")
	r.HandleFunc("/api/entry/{entryId}", deps.EntryHandler.DeleteEntry).Methods("DELETE")
	r.HandleFunc("/api/entry/{entryId}/restore", deps.EntryHandler.RestoreEntry).Methods("POST")

	// Saved weeks
	r.HandleFunc("/api/week/current", deps.WeekHandler.SaveCurrentWeek).Methods("POST")
	r.HandleFunc("/api/week", deps.WeekHandler.ListWeeks).Methods("GET")
	r.HandleFunc("/api/week/{weekId}", deps.WeekHandler.EditWeek).Methods("PUT")
	r.HandleFunc("/api/week/{weekId}", deps.WeekHandler.DeleteWeek).Methods("DELETE")
	r.HandleFunc("/api/week/{weekId}/restore", deps.WeekHandler.RestoreWeek).Methods("POST")

	// Trash
	r.HandleFunc("/api/trash", deps.TrashHandler.ListTrash).Methods("GET")
	r.HandleFunc("/api/trash", deps.TrashHandler.EmptyTrash).Methods("DELETE")

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user/current", deps.UserHandler.DeleteUser).Methods("DELETE")
}
