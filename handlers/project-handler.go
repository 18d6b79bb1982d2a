package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/logging"
	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
	"project-pulse/microservices/dashboard-service/services"
)

type ProjectHandler struct {
	service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var project models.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		logging.Logger.Warnf("Invalid request payload for CreateProject: %v", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateProject(r.Context(), actor, project)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		writeError(w, err)
		return
	}

	project, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ProjectFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.ProjectStatus(raw)
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("memberId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			http.Error(w, "invalid memberId", http.StatusBadRequest)
			return
		}
		filter.MemberID = &id
	}

	projects, err := h.service.ListProjects(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "projectID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		models.ProjectPatch
		Notify []primitive.ObjectID `json:"notify,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.Logger.Warnf("Invalid request payload for UpdateProject: %v", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateProject(r.Context(), actor, id, req.ProjectPatch, req.Notify)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "projectID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.DeleteProject(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
