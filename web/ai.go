// ABOUTME: HTTP handlers for draft generation, follow-ups and rewrites
// ABOUTME: These routes sit behind the generation rate limiter
package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/outreach"
)

func (s *Server) registerAIRoutes(r *mux.Router) {
	r.HandleFunc("/draft", s.generateDraft).Methods(http.MethodPost)
	r.HandleFunc("/draft", s.listDrafts).Methods(http.MethodGet)
	r.HandleFunc("/followup", s.generateFollowUp).Methods(http.MethodPost)
	r.HandleFunc("/improve", s.improve).Methods(http.MethodPost)
}

func (s *Server) generateDraft(w http.ResponseWriter, r *http.Request) {
	var req outreach.DraftRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	draft, err := s.svc.GenerateDraft(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err, "Failed to generate draft")
		return
	}
	writeData(w, http.StatusOK, toDraftDTO(draft))
}

func (s *Server) listDrafts(w http.ResponseWriter, r *http.Request) {
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
	drafts, err := s.svc.ListDrafts(r.Context(), db.DraftFilter{ContactID: contactID, CompanyID: companyID})
	if err != nil {
		writeError(w, s.logger, err, "Failed to fetch drafts")
		return
	}
	writeData(w, http.StatusOK, mapAll(drafts, toDraftDTO))
}

func (s *Server) generateFollowUp(w http.ResponseWriter, r *http.Request) {
	var req outreach.FollowUpRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	result, err := s.svc.GenerateFollowUp(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err, "Failed to generate follow-up")
		return
	}
	writeData(w, http.StatusOK, toFollowUpDTO(result))
}

func (s *Server) improve(w http.ResponseWriter, r *http.Request) {
	var req outreach.ImproveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	improved, err := s.svc.Improve(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err, "Failed to improve email")
		return
	}
	writeData(w, http.StatusOK, improved)
}
