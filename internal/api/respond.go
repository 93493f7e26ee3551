// internal/api/respond.go
package api

import (
	"encoding/json"
	"net/http"

	apperrors "activities-api/internal/common/errors"
)

// messageResponse is the success body for signup/unregister.
type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse is the error body for every failed request.
type errorResponse struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps an error to its HTTP status and `detail` body.
// Unknown errors are masked as a generic 500 so internals never leak.
func respondError(w http.ResponseWriter, err error) {
	if stdErr, ok := apperrors.AsStandard(err); ok {
		respondJSON(w, apperrors.HTTPStatus(stdErr.Code), errorResponse{Detail: stdErr.Message})
		return
	}
	respondJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Internal server error"})
}
