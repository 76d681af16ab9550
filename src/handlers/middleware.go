// backend/src/handlers/middleware.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/tallytrace/backend/src/logger"
	"github.com/username/tallytrace/backend/src/utils"
)

// Context keys are a private type so no other package can collide with them.
type contextKey string

const entityIDContextKey contextKey = "entityID"

// EntityContextMiddleware resolves the entity scope of a request from the
// X-Entity-Id header or the entity_id query parameter; the header wins when
// both are present. Requests without either run unscoped (entity 0, every
// book at once). A malformed value is rejected rather than silently widened
// to unscoped.
func EntityContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Entity-Id")
		if raw == "" {
			raw = r.URL.Query().Get("entity_id")
		}
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		entityID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || entityID < 1 {
			logger.L.Debug("Rejecting malformed entity scope", "value", raw, "path", r.URL.Path)
			utils.SendJSONError(w, fmt.Sprintf("invalid entity id %q", raw), http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), entityIDContextKey, entityID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// EntityIDFromRequest returns the resolved entity scope, 0 when unscoped.
func EntityIDFromRequest(r *http.Request) int64 {
	entityID, ok := r.Context().Value(entityIDContextKey).(int64)
	if !ok {
		return 0
	}
	return entityID
}

// parseIDParam reads the {id} path segment of a route.
func parseIDParam(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// recordEntityID maps a record's optional entity link to a cache scope.
func recordEntityID(entityID *int64) int64 {
	if entityID == nil {
		return 0
	}
	return *entityID
}

// boolQueryParam reads an optional boolean query parameter. Absent means nil.
func boolQueryParam(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("query parameter %q must be a boolean, got %q", name, raw)
	}
	return &value, nil
}

// int64QueryParam reads an optional positive id query parameter. Absent means nil.
func int64QueryParam(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 1 {
		return nil, fmt.Errorf("query parameter %q must be a positive integer, got %q", name, raw)
	}
	return &value, nil
}

// dateQueryParam reads an optional ISO date query parameter. Absent means "".
func dateQueryParam(r *http.Request, name string) (string, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return "", nil
	}
	if utils.ParseDate(raw).IsZero() {
		return "", fmt.Errorf("query parameter %q must be a date in %s format, got %q", name, utils.DefaultDateFormat, raw)
	}
	return raw, nil
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}
