// ABOUTME: HTTP handlers for recorded emails, the follow-up queue and notifications
// ABOUTME: Also serves stats and the reminder sweep trigger
package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/outreach"
)

func (s *Server) registerEmailRoutes(r *mux.Router) {
	r.HandleFunc("/emails", s.listEmails).Methods(http.MethodGet)
	r.HandleFunc("/emails", s.recordEmail).Methods(http.MethodPost)
	r.HandleFunc("/emails/{id}", s.getEmail).Methods(http.MethodGet)
	r.HandleFunc("/emails/{id}", s.updateEmail).Methods(http.MethodPatch)
	r.HandleFunc("/emails/{id}", s.deleteEmail).Methods(http.MethodDelete)
	r.HandleFunc("/followups", s.listFollowUps).Methods(http.MethodGet)
	r.HandleFunc("/drafts/{id}", s.deleteDraft).Methods(http.MethodDelete)
	r.HandleFunc("/stats", s.getStats).Methods(http.MethodGet)
	r.HandleFunc("/notifications", s.listNotifications).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/read", s.readNotification).Methods(http.MethodPost)
}

func (s *Server) listEmails(w http.ResponseWriter, r *http.Request) {
	contactID, err := queryUUID(r, "contactId")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	companyID, err := queryUUID(r, "companyId")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	emails, err := s.svc.ListEmails(r.Context(), db.EmailFilter{
		Status:      r.URL.Query().Get("status"),
		ContactID:   contactID,
		CompanyID:   companyID,
		FollowUpDue: r.URL.Query().Get("followUpDue") == "true",
		Limit:       queryLimit(r),
	})
	if err != nil {
		writeError(w, s.logger, err, "Failed to fetch outreach emails")
		return
	}
	writeData(w, http.StatusOK, mapAll(emails, toEmailWithRefsDTO))
}

func (s *Server) recordEmail(w http.ResponseWriter, r *http.Request) {
	var in outreach.EmailInput
	if err := decode(r, &in); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	email, err := s.svc.RecordEmail(r.Context(), in)
	if err != nil {
		writeError(w, s.logger, err, "Failed to log outreach email")
		return
	}
	writeData(w, http.StatusCreated, toEmailDTO(email))
}

func (s *Server) getEmail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "outreach email")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	email, err := s.svc.GetEmail(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err, "Failed to fetch outreach email")
		return
	}
	writeData(w, http.StatusOK, toEmailWithRefsDTO(email))
}

func (s *Server) updateEmail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "outreach email")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	var patch outreach.EmailPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	email, err := s.svc.UpdateEmail(r.Context(), id, patch)
	if err != nil {
		writeError(w, s.logger, err, "Failed to update outreach email")
		return
	}
	writeData(w, http.StatusOK, toEmailDTO(email))
}

func (s *Server) deleteEmail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "outreach email")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	if err := s.svc.DeleteEmail(r.Context(), id); err != nil {
		writeError(w, s.logger, err, "Failed to delete outreach email")
		return
	}
	writeMessage(w, "Outreach email deleted")
}

func (s *Server) listFollowUps(w http.ResponseWriter, r *http.Request) {
	due, err := s.svc.ListDue(r.Context())
	if err != nil {
		writeError(w, s.logger, err, "Failed to fetch follow-ups")
		return
	}
	writeData(w, http.StatusOK, mapAll(due, toEmailWithRefsDTO))
}

func (s *Server) deleteDraft(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "draft")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	if err := s.svc.DeleteDraft(r.Context(), id); err != nil {
		writeError(w, s.logger, err, "Failed to delete draft")
		return
	}
	writeMessage(w, "Draft deleted")
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		writeError(w, s.logger, err, "Failed to fetch outreach stats")
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.svc.ListNotifications(r.Context(), r.URL.Query().Get("unread") == "true")
	if err != nil {
		writeError(w, s.logger, err, "Failed to fetch notifications")
		return
	}
	writeData(w, http.StatusOK, mapAll(notifications, toNotificationDTO))
}

func (s *Server) readNotification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "notification")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	if err := s.svc.MarkNotificationRead(r.Context(), id); err != nil {
		writeError(w, s.logger, err, "Failed to update notification")
		return
	}
	writeMessage(w, "Notification marked as read")
}

// handleCronFollowUps runs the reminder sweep. The response carries the
// counts at the top level.
func (s *Server) handleCronFollowUps(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.SweepReminders(r.Context())
	if err != nil {
		writeError(w, s.logger, err, "Failed to process follow-ups")
		return
	}
	writeData(w, http.StatusOK, result)
}
