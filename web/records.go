// ABOUTME: HTTP handlers for companies, contacts and templates
// ABOUTME: Includes star/archive toggles and bulk CSV/XLSX imports
package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/harperreed/outreach/db"
	"github.com/harperreed/outreach/models"
	"github.com/harperreed/outreach/outreach"
)

func (s *Server) registerRecordRoutes(r *mux.Router) {
	r.HandleFunc("/companies", s.listCompanies).Methods(http.MethodGet)
	r.HandleFunc("/companies", s.createCompany).Methods(http.MethodPost)
	r.HandleFunc("/companies/bulk", s.importCompanies).Methods(http.MethodPost)
	r.HandleFunc("/companies/{id}", s.getCompany).Methods(http.MethodGet)
	r.HandleFunc("/companies/{id}", s.updateCompany).Methods(http.MethodPatch)
	r.HandleFunc("/companies/{id}", s.deleteCompany).Methods(http.MethodDelete)
	r.HandleFunc("/companies/{id}/star", s.starCompany).Methods(http.MethodPost)
	r.HandleFunc("/companies/{id}/archive", s.archiveCompany).Methods(http.MethodPost)

	r.HandleFunc("/contacts", s.listContacts).Methods(http.MethodGet)
	r.HandleFunc("/contacts", s.createContact).Methods(http.MethodPost)
	r.HandleFunc("/contacts/bulk", s.importContacts).Methods(http.MethodPost)
	r.HandleFunc("/contacts/{id}", s.getContact).Methods(http.MethodGet)
	r.HandleFunc("/contacts/{id}", s.updateContact).Methods(http.MethodPatch)
	r.HandleFunc("/contacts/{id}", s.deleteContact).Methods(http.MethodDelete)
	r.HandleFunc("/contacts/{id}/star", s.starContact).Methods(http.MethodPost)

	r.HandleFunc("/templates", s.listTemplates).Methods(http.MethodGet)
	r.HandleFunc("/templates", s.createTemplate).Methods(http.MethodPost)
	r.HandleFunc("/templates/{id}", s.getTemplate).Methods(http.MethodGet)
	r.HandleFunc("/templates/{id}", s.updateTemplate).Methods(http.MethodPatch)
	r.HandleFunc("/templates/{id}", s.deleteTemplate).Methods(http.MethodDelete)
	r.HandleFunc("/templates/{id}/render", s.renderTemplate).Methods(http.MethodPost)
}

func pathID(r *http.Request, entity string) (uuid.UUID, error) {
	return outreach.ParseID(mux.Vars(r)["id"], entity)
}

func queryBool(r *http.Request, key string) *bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, outreach.BadRequest("Invalid %s", key)
	}
	return &id, nil
}

type toggleRequest struct {
	Starred  *bool `json:"starred"`
	Archived *bool `json:"archived"`
}

type importRequest struct {
	CSVData       string            `json:"csvData"`
	ColumnMapping map[string]string `json:"columnMapping"`
}

// Companies

func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.svc.ListCompanies(r.Context(), db.CompanyFilter{
		Search:       strings.TrimSpace(r.URL.Query().Get("search")),
		Starred:      queryBool(r, "starred"),
		ShowArchived: r.URL.Query().Get("showArchived") == "true",
		Limit:        queryLimit(r),
	})
	if err != nil {
		writeError(w, s.logger, err, "Failed to fetch companies")
		return
	}
	writeData(w, http.StatusOK, mapAll(companies, toCompanyDTO))
}

func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) {
	var in outreach.CompanyInput
	if err := decode(r, &in); err != nil {
		writeError(w, s.logger, err, "Failed to create company")
		return
	}
	company, err := s.svc.CreateCompany(r.Context(), in)
	if err != nil {
		writeError(w, s.logger, err, "Failed to create company")
		return
	}
	writeData(w, http.StatusCreated, toCompanyDTO(company))
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "company")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	company, err := s.svc.GetCompany(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err, "Failed to fetch company")
		return
	}
	writeData(w, http.StatusOK, toCompanyDTO(company))
}

func (s *Server) updateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "company")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	var patch outreach.CompanyPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	company, err := s.svc.UpdateCompany(r.Context(), id, patch)
	if err != nil {
		writeError(w, s.logger, err, "Failed to update company")
		return
	}
	writeData(w, http.StatusOK, toCompanyDTO(company))
}

func (s *Server) deleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "company")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	if err := s.svc.DeleteCompany(r.Context(), id); err != nil {
		writeError(w, s.logger, err, "Failed to delete company")
		return
	}
	writeMessage(w, "Company deleted")
}

func (s *Server) starCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "company")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	var req toggleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	company, err := s.svc.StarCompany(r.Context(), id, req.Starred)
	if err != nil {
		writeError(w, s.logger, err, "Failed to update company")
		return
	}
	writeData(w, http.StatusOK, toCompanyDTO(company))
}

func (s *Server) archiveCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "company")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	var req toggleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	company, err := s.svc.ArchiveCompany(r.Context(), id, req.Archived)
	if err != nil {
		writeError(w, s.logger, err, "Failed to update company")
		return
	}
	writeData(w, http.StatusOK, toCompanyDTO(company))
}

func (s *Server) importCompanies(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	result, err := s.svc.ImportCompanies(r.Context(), []byte(req.CSVData), req.ColumnMapping)
	if err != nil {
		writeError(w, s.logger, err, "Failed to import companies")
		return
	}
	writeData(w, http.StatusOK, result)
}

// Contacts

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	companyID, err := queryUUID(r, "companyId")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	status := r.URL.Query().Get("status")
	if !models.IsValidContactStatus(status) {
		status = ""
	}
	contacts, err := s.svc.ListContacts(r.Context(), db.ContactFilter{
		Search:    strings.TrimSpace(r.URL.Query().Get("search")),
		Status:    status,
		CompanyID: companyID,
		Starred:   queryBool(r, "starred"),
		Limit:     queryLimit(r),
	})
	if err != nil {
		writeError(w, s.logger, err, "Failed to fetch contacts")
		return
	}
	writeData(w, http.StatusOK, mapAll(contacts, toContactDTO))
}

func (s *Server) createContact(w http.ResponseWriter, r *http.Request) {
	var in outreach.ContactInput
	if err := decode(r, &in); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	contact, err := s.svc.CreateContact(r.Context(), in)
	if err != nil {
		writeError(w, s.logger, err, "Failed to create contact")
		return
	}
	writeData(w, http.StatusCreated, toContactDTO(contact))
}

func (s *Server) getContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contact")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	contact, err := s.svc.GetContact(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err, "Failed to fetch contact")
		return
	}
	writeData(w, http.StatusOK, toContactDTO(contact))
}

func (s *Server) updateContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contact")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	var patch outreach.ContactPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	contact, err := s.svc.UpdateContact(r.Context(), id, patch)
	if err != nil {
		writeError(w, s.logger, err, "Failed to update contact")
		return
	}
	writeData(w, http.StatusOK, toContactDTO(contact))
}

func (s *Server) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contact")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	if err := s.svc.DeleteContact(r.Context(), id); err != nil {
		writeError(w, s.logger, err, "Failed to delete contact")
		return
	}
	writeMessage(w, "Contact deleted")
}

func (s *Server) starContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contact")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	var req toggleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	contact, err := s.svc.StarContact(r.Context(), id, req.Starred)
	if err != nil {
		writeError(w, s.logger, err, "Failed to update contact")
		return
	}
	writeData(w, http.StatusOK, toContactDTO(contact))
}

func (s *Server) importContacts(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	result, err := s.svc.ImportContacts(r.Context(), []byte(req.CSVData), req.ColumnMapping)
	if err != nil {
		writeError(w, s.logger, err, "Failed to import contacts")
		return
	}
	writeData(w, http.StatusOK, result)
}

// Templates

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	templates, err := s.svc.ListTemplates(r.Context(), db.TemplateFilter{
		Type:   strings.TrimSpace(q.Get("type")),
		Tone:   strings.TrimSpace(q.Get("tone")),
		Search: strings.TrimSpace(q.Get("search")),
	})
	if err != nil {
		writeError(w, s.logger, err, "Failed to fetch templates")
		return
	}
	writeData(w, http.StatusOK, mapAll(templates, toTemplateDTO))
}

func (s *Server) createTemplate(w http.ResponseWriter, r *http.Request) {
	var in outreach.TemplateInput
	if err := decode(r, &in); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	tmpl, err := s.svc.CreateTemplate(r.Context(), in)
	if err != nil {
		writeError(w, s.logger, err, "Failed to create template")
		return
	}
	writeData(w, http.StatusCreated, toTemplateDTO(tmpl))
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "template")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	tmpl, err := s.svc.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err, "Failed to fetch template")
		return
	}
	writeData(w, http.StatusOK, toTemplateDTO(tmpl))
}

func (s *Server) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "template")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	var patch outreach.TemplatePatch
	if err := decode(r, &patch); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	tmpl, err := s.svc.UpdateTemplate(r.Context(), id, patch)
	if err != nil {
		writeError(w, s.logger, err, "Failed to update template")
		return
	}
	writeData(w, http.StatusOK, toTemplateDTO(tmpl))
}

func (s *Server) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "template")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	if err := s.svc.DeleteTemplate(r.Context(), id); err != nil {
		writeError(w, s.logger, err, "Failed to delete template")
		return
	}
	writeMessage(w, "Template deleted")
}

func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "template")
	if err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	var req outreach.RenderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err, "")
		return
	}
	rendered, err := s.svc.RenderTemplateDraft(r.Context(), id, req)
	if err != nil {
		writeError(w, s.logger, err, "Failed to render template")
		return
	}
	dto := toDraftDTO(rendered.Draft)
	dto.UnfilledVariables = rendered.Unfilled
	writeData(w, http.StatusCreated, dto)
}
