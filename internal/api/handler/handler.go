// internal/api/handler/handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
)

// DefaultTimeout is the maximum duration for handling a single request.
const DefaultTimeout = 60 * time.Second

// respondWithJSON sends a JSON response with the given status code.
func respondWithJSON(w http.ResponseWriter, log *logrus.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to marshal JSON response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps service errors to HTTP status codes.
func respondWithError(w http.ResponseWriter, log *logrus.Logger, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		message = "Resource already exists"
	default:
		log.Errorf("unhandled service error: %v", err)
	}

	respondWithJSON(w, log, statusCode, map[string]string{"error": message})
}
