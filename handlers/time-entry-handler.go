package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/logging"
	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
	"project-pulse/microservices/dashboard-service/services"
)

type TimeEntryHandler struct {
	service *services.TimeEntryService
}

func NewTimeEntryHandler(service *services.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{service: service}
}

func (h *TimeEntryHandler) LogTime(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var entry models.TimeEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		logging.Logger.Warnf("Invalid request payload for LogTime: %v", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	created, err := h.service.LogTime(r.Context(), actor, entry)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TimeEntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *TimeEntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	filter, err := timeEntryFilterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.service.ListEntries(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.TimeEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *TimeEntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}

	var patch models.TimeEntryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateEntry(r.Context(), actor, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TimeEntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.DeleteEntry(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func timeEntryFilterFromQuery(r *http.Request) (repositories.TimeEntryFilter, error) {
	var filter repositories.TimeEntryFilter
	query := r.URL.Query()

	if raw := query.Get("taskId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return filter, &repositories.ValidationError{Reason: "invalid taskId query parameter"}
		}
		filter.TaskID = &id
	}
	if raw := query.Get("userId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return filter, &repositories.ValidationError{Reason: "invalid userId query parameter"}
		}
		filter.UserID = &id
	}
	if raw := query.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, &repositories.ValidationError{Reason: "invalid from query parameter, expected RFC3339"}
		}
		filter.From = &t
	}
	if raw := query.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, &repositories.ValidationError{Reason: "invalid to query parameter, expected RFC3339"}
		}
		filter.To = &t
	}
	return filter, nil
}
