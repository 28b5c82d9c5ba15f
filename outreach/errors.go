// ABOUTME: Classified service errors carrying the status the boundary should return
// ABOUTME: Store sentinels are translated into these at the service edge
package outreach

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/importer"
)

// Error is a failure whose message is safe to show to the caller. Rejected
// imports also carry parse details or per-row validation errors.
type Error struct {
	Status    int
	Message   string
	Details   []string
	RowErrors []importer.RowError
}

func (e *Error) Error() string {
	return e.Message
}

func BadRequest(format string, args ...interface{}) *Error {
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// StatusOf returns the HTTP status for err; unclassified errors are 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// ParseID validates a path or body id. entity names the record in the message,
// e.g. "company" yields "Invalid company id".
func ParseID(raw, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, BadRequest("Invalid %s id", entity)
	}
	return id, nil
}

// storeError classifies store sentinels. notFound is the message used for
// db.ErrNotFound.
func storeError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound):
		return NotFound(notFound)
	case errors.Is(err, db.ErrProfileNotConfigured):
		return NotFound("Settings not found")
	case errors.Is(err, db.ErrCompanyExists):
		return Conflict("Company already exists")
	case errors.Is(err, db.ErrContactExists):
		return Conflict("Contact already exists")
	case errors.Is(err, db.ErrCompanyHasContacts):
		return Conflict("Delete contacts linked to this company first")
	case errors.Is(err, db.ErrContactHasEmails):
		return Conflict("Delete outreach emails linked to this contact first")
	}
	return err
}
