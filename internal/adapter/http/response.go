package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/infrastructure/logger"
)

type errorResponse struct {
	Error string `json:"error"`
	JobID string `json:"jobId,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps a service error onto a status code. notFound and
// fallback are the messages used for domain.ErrNotFound and for anything
// unexpected.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound, fallback string) {
	var (
		conflict   *domain.ConflictError
		startErr   *domain.ProcessStartError
		validation *domain.ValidationError
	)
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error: "Transcode already in progress for this video and format",
			JobID: conflict.JobID,
		})
	case errors.As(err, &startErr):
		logger.Error.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Failed to start transcoding",
			JobID: startErr.JobID,
		})
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	default:
		logger.Error.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
