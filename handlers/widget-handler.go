package handlers

import (
	"encoding/json"
	"net/http"

	"project-pulse/microservices/dashboard-service/logging"
	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/services"
)

type WidgetHandler struct {
	service *services.WidgetService
}

func NewWidgetHandler(service *services.WidgetService) *WidgetHandler {
	return &WidgetHandler{service: service}
}

func (h *WidgetHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}
	role := models.UserRole(r.URL.Query().Get("role"))
	if role == "" {
		role = models.RoleUser
	}

	cfg, err := h.service.GetOrCreate(r.Context(), userID, role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *WidgetHandler) AddWidget(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Type  string            `json:"type"`
		Title string            `json:"title"`
		Size  models.WidgetSize `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.Logger.Warnf("Invalid request payload for AddWidget: %v", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	widget, err := h.service.Add(r.Context(), userID, req.Type, req.Title, req.Size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, widget)
}

func (h *WidgetHandler) RemoveWidget(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Remove(r.Context(), userID, muxVar(r, "widgetID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WidgetHandler) Reposition(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	var moves []services.WidgetPosition
	if err := json.NewDecoder(r.Body).Decode(&moves); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	cfg, err := h.service.Reposition(r.Context(), userID, moves)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *WidgetHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	widget, err := h.service.UpdateSettings(r.Context(), userID, muxVar(r, "widgetID"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, widget)
}

func (h *WidgetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Role models.UserRole `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}

	cfg, err := h.service.Reset(r.Context(), userID, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
