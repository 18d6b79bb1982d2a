package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
)

// writeJSON always emits a JSON body, even for empty collections.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps the error taxonomy onto HTTP status codes. A
// connectivity error reaching this point means both backends failed.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case repositories.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case repositories.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case repositories.IsConflict(err):
		http.Error(w, err.Error(), http.StatusConflict)
	case repositories.IsConnectivity(err):
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// actorFromRequest identifies the acting user from the request headers
// the gateway sets after authentication.
func actorFromRequest(r *http.Request) (models.User, error) {
	rawID := r.Header.Get("Actor-ID")
	if rawID == "" {
		return models.User{}, &repositories.ValidationError{Reason: "Actor-ID header is required"}
	}
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return models.User{}, &repositories.ValidationError{Reason: fmt.Sprintf("invalid Actor-ID: %v", err)}
	}
	return models.User{ID: id, Name: r.Header.Get("Actor-Name")}, nil
}

func muxVar(r *http.Request, key string) string {
	return mux.Vars(r)[key]
}

func pathID(r *http.Request, key string) (primitive.ObjectID, error) {
	raw := mux.Vars(r)[key]
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, &repositories.ValidationError{Reason: fmt.Sprintf("invalid %s: %v", key, err)}
	}
	return id, nil
}
