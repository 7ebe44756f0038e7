// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/pawmart/petorder-be/internal/core/domain"
)

// Wire messages for the domain error taxonomy. These are part of the
// client contract and must not drift.
const (
	msgMalformed        = "Malformed data"
	msgUnsupportedMedia = "Expected application/json media type"
	msgNotAvailable     = "No pet of this type is available"
	msgClaimFailed      = "Failed to complete purchase"
	msgNotFound         = "Not found"
	msgInternal         = "Internal Server Error"
)

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, map[string]string{"error": message})
}

// respondDomainError maps the domain error taxonomy to wire statuses and
// messages. Store unavailability is collapsed into not-available; the
// distinguishing detail only appears in logs.
func respondDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedMedia):
		respondError(w, logger, http.StatusUnsupportedMediaType, msgUnsupportedMedia)
	case errors.Is(err, domain.ErrMalformed):
		respondError(w, logger, http.StatusBadRequest, msgMalformed)
	case errors.Is(err, domain.ErrNotAvailable), errors.Is(err, domain.ErrStoreUnavailable):
		respondError(w, logger, http.StatusBadRequest, msgNotAvailable)
	case errors.Is(err, domain.ErrClaimFailed):
		respondError(w, logger, http.StatusBadRequest, msgClaimFailed)
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, logger, http.StatusNotFound, msgNotFound)
	case errors.Is(err, domain.ErrConflict):
		respondError(w, logger, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", slog.String("error", err.Error()))
		respondError(w, logger, http.StatusInternalServerError, msgInternal)
	}
}

// requireJSON enforces the JSON media type on write endpoints.
func requireJSON(r *http.Request) error {
	ct := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil || mediaType != "application/json" {
		return domain.ErrUnsupportedMedia
	}
	return nil
}
