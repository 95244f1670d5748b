package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kevann/nosteq-core/internal/technician"
	"github.com/kevann/nosteq-core/internal/zone"
)

type updateMeRequest struct {
	PhoneNumber *string `json:"phone_number"`
}

// handleMe returns the caller's profile and the towns of their area.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{
		"profile": profile,
		"towns":   zone.TownsForZone(profile.ServiceArea),
	})
}

// handleUpdateMe lets the caller change their own phone number. Role and
// service area are admin-managed and cannot be changed here.
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.PhoneNumber == nil {
		writeBadRequest(w, "phone_number is required")
		return
	}

	profile := profileFromContext(r.Context())
	err := s.profiles.UpdatePhoneNumber(r.Context(), profile.ID, *req.PhoneNumber)
	switch {
	case errors.Is(err, technician.ErrProfileNotFound):
		writeNotFound(w, "profile not found")
		return
	case errors.Is(err, technician.ErrInvalidProfile):
		writeValidationError(w, err.Error())
		return
	case err != nil:
		s.logger.Error("update phone number failed", "error", err, "technician_id", profile.ID)
		writeInternalError(w, "failed to update profile")
		return
	}

	updated, err := s.profiles.Get(r.Context(), profile.ID)
	if err != nil {
		s.logger.Error("reload profile failed", "error", err, "technician_id", profile.ID)
		writeInternalError(w, "failed to load profile")
		return
	}

	s.logger.Info("phone number updated", "technician_id", profile.ID)
	writeJSON(w, http.StatusOK, updated)
}
