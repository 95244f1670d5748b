package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kevann/nosteq-core/internal/audit"
	"github.com/kevann/nosteq-core/internal/technician"
)

// ─── Request Types ─────────────────────────────────────────────────

type createTechnicianRequest struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	ServiceArea string `json:"service_area"`
	Role        string `json:"role"`
}

type updateAreaRequest struct {
	ServiceArea string `json:"service_area"`
}

// ─── Handlers ──────────────────────────────────────────────────────

// handleListTechnicians returns all profiles.
func (s *Server) handleListTechnicians(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.List(r.Context())
	if err != nil {
		s.logger.Error("list technicians failed", "error", err)
		writeInternalError(w, "failed to list technicians")
		return
	}
	if profiles == nil {
		profiles = []technician.Profile{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"technicians": profiles,
		"count":       len(profiles),
	})
}

// handleCreateTechnician creates a profile.
func (s *Server) handleCreateTechnician(w http.ResponseWriter, r *http.Request) {
	var req createTechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	p := &technician.Profile{
		ID:          req.ID,
		Email:       req.Email,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		ServiceArea: req.ServiceArea,
		Role:        req.Role,
	}

	err := s.profiles.Create(r.Context(), p)
	switch {
	case errors.Is(err, technician.ErrProfileExists):
		writeConflict(w, "technician already exists")
		return
	case errors.Is(err, technician.ErrInvalidProfile), errors.Is(err, technician.ErrUnknownServiceArea):
		writeValidationError(w, err.Error())
		return
	case err != nil:
		s.logger.Error("create technician failed", "error", err)
		writeInternalError(w, "failed to create technician")
		return
	}

	actor := profileFromContext(r.Context()).ID
	s.logger.Info("technician created",
		"technician_id", p.ID,
		"role", p.Role,
		"service_area", p.ServiceArea,
		"created_by", actor,
	)
	s.auditLog(audit.ActionCreate, audit.EntityTechnician, p.ID, actor, map[string]any{
		"role":         p.Role,
		"service_area": p.ServiceArea,
	})
	writeJSON(w, http.StatusCreated, p)
}

// handleUpdateTechnicianArea moves a technician to another service area.
// An empty service_area clears it.
func (s *Server) handleUpdateTechnicianArea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateAreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	err := s.profiles.UpdateServiceArea(r.Context(), id, req.ServiceArea)
	switch {
	case errors.Is(err, technician.ErrProfileNotFound):
		writeNotFound(w, "technician not found")
		return
	case errors.Is(err, technician.ErrUnknownServiceArea):
		writeValidationError(w, err.Error())
		return
	case err != nil:
		s.logger.Error("update service area failed", "error", err, "technician_id", id)
		writeInternalError(w, "failed to update service area")
		return
	}

	updated, err := s.profiles.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("reload technician failed", "error", err, "technician_id", id)
		writeInternalError(w, "failed to load technician")
		return
	}

	actor := profileFromContext(r.Context()).ID
	s.logger.Info("service area updated",
		"technician_id", id,
		"service_area", updated.ServiceArea,
		"updated_by", actor,
	)
	s.auditLog(audit.ActionUpdateArea, audit.EntityTechnician, id, actor, map[string]any{
		"service_area": updated.ServiceArea,
	})
	writeJSON(w, http.StatusOK, updated)
}
