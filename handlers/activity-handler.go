package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/services"
)

type ActivityHandler struct {
	service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func limitFromQuery(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Recent(r.Context(), limitFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.ActivityLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ActivityHandler) ByEntity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	entries, err := h.service.ByEntity(r.Context(), vars["entityType"], vars["entityID"], limitFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.ActivityLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ActivityHandler) ByActor(w http.ResponseWriter, r *http.Request) {
	actorID, err := pathID(r, "actorID")
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.service.ByActor(r.Context(), actorID, limitFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.ActivityLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
