// ABOUTME: JSON response envelope and request decoding helpers
// ABOUTME: Maps classified service errors to statuses without leaking internals
package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/harperreed/outreach/importer"
	"github.com/harperreed/outreach/outreach"
)

const maxBodyBytes = 10 << 20

type envelope struct {
	Success bool                `json:"success"`
	Data    interface{}         `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  []importer.RowError `json:"errors,omitempty"`
	Details []string            `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Error: message})
}

// writeError renders err. Classified errors keep their status and message;
// anything else is logged and reported as fallback.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	var svcErr *outreach.Error
	if errors.As(err, &svcErr) {
		writeJSON(w, svcErr.Status, envelope{
			Success: false,
			Error:   svcErr.Message,
			Errors:  svcErr.RowErrors,
			Details: svcErr.Details,
		})
		return
	}
	logger.Error("request failed", "error", err)
	writeFailure(w, http.StatusInternalServerError, fallback)
}

// decode reads a JSON body into dst. An empty body leaves dst unchanged.
func decode(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var svcErr *outreach.Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return outreach.BadRequest("Invalid JSON body")
}
