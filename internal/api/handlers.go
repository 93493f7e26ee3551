// internal/api/handlers.go
package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	apperrors "activities-api/internal/common/errors"
	"activities-api/internal/common/metrics"
)

// activityKnown reports whether err proves the activity exists. Only
// confirmed names go into per-activity metric labels; anything a client
// made up must not mint new label values.
func activityKnown(err error) bool {
	return apperrors.IsCode(err, apperrors.ErrCodeAlreadySignedUp) ||
		apperrors.IsCode(err, apperrors.ErrCodeNotSignedUp) ||
		apperrors.IsCode(err, apperrors.ErrCodeActivityFull)
}

// activityParam extracts the {name} path parameter. Activity names contain
// spaces, so the raw segment may still be percent-encoded.
func activityParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// handleRoot redirects to the static landing page.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/static/index.html", http.StatusTemporaryRedirect)
}

// handleListActivities returns the full name -> activity mapping.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := s.store.List(r.Context())
	if err != nil {
		s.log.Error("listing activities failed", map[string]interface{}{
			"error":     err.Error(),
			"requestId": RequestIDFromContext(r.Context()),
		})
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, activities)
}

// handleSignup adds a student to an activity's participant list.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	activity := activityParam(r)
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, apperrors.NewValidationError("email query parameter is required"))
		return
	}

	if err := s.store.Signup(r.Context(), activity, email); err != nil {
		if activityKnown(err) {
			metrics.SignupsTotal.WithLabelValues(activity, "error").Inc()
		}
		if !apperrors.IsClientError(err) {
			s.log.Error("signup failed", map[string]interface{}{
				"activity":  activity,
				"email":     email,
				"error":     err.Error(),
				"requestId": RequestIDFromContext(r.Context()),
			})
		}
		respondError(w, err)
		return
	}

	metrics.SignupsTotal.WithLabelValues(activity, "success").Inc()
	s.log.Info("student signed up", map[string]interface{}{
		"activity":  activity,
		"email":     email,
		"requestId": RequestIDFromContext(r.Context()),
	})
	s.notifier.SignupConfirmed(r.Context(), activity, email)

	respondJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Signed up %s for %s", email, activity),
	})
}

// handleUnregister removes a student from an activity's participant list.
func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	activity := activityParam(r)
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, apperrors.NewValidationError("email query parameter is required"))
		return
	}

	if err := s.store.Unregister(r.Context(), activity, email); err != nil {
		if activityKnown(err) {
			metrics.UnregistersTotal.WithLabelValues(activity, "error").Inc()
		}
		if !apperrors.IsClientError(err) {
			s.log.Error("unregister failed", map[string]interface{}{
				"activity":  activity,
				"email":     email,
				"error":     err.Error(),
				"requestId": RequestIDFromContext(r.Context()),
			})
		}
		respondError(w, err)
		return
	}

	metrics.UnregistersTotal.WithLabelValues(activity, "success").Inc()
	s.log.Info("student unregistered", map[string]interface{}{
		"activity":  activity,
		"email":     email,
		"requestId": RequestIDFromContext(r.Context()),
	})
	s.notifier.Unregistered(r.Context(), activity, email)

	respondJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Unregistered %s from %s", email, activity),
	})
}
