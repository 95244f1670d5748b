package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kevann/nosteq-core/internal/inventory"
	"github.com/kevann/nosteq-core/internal/onu"
)

// maxPageSize caps the limit query parameter.
const maxPageSize = 500

// handleListOnus returns one page of the ONUs visible to the caller,
// sorted by name.
func (s *Server) handleListOnus(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeBadRequest(w, "offset must be a non-negative integer")
		return
	}
	limit, err := queryInt(r, "limit", onu.DefaultPageSize)
	if err != nil || limit < 1 || limit > maxPageSize {
		writeBadRequest(w, "limit must be between 1 and "+strconv.Itoa(maxPageSize))
		return
	}

	visible, err := s.registry.ForTechnician(r.Context(), profileFromContext(r.Context()))
	if err != nil {
		s.logger.Error("list onus failed", "error", err)
		writeInternalError(w, "failed to list onus")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"onus":   onu.PageN(visible, offset, limit),
		"total":  len(visible),
		"offset": offset,
		"limit":  limit,
	})
}

// handleOnuCounts returns status counts for the caller's visible ONUs.
func (s *Server) handleOnuCounts(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	counts, err := s.registry.Counts(r.Context(), profile)
	if err != nil {
		s.logger.Error("count onus failed", "error", err)
		writeInternalError(w, "failed to count onus")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service_area": profile.ServiceArea,
		"counts":       counts,
		"total":        counts.Total(),
	})
}

// handleOnuLocations returns the GPS coordinates of the caller's visible
// ONUs. ONUs without stored coordinates are left out.
func (s *Server) handleOnuLocations(w http.ResponseWriter, r *http.Request) {
	if s.locations == nil {
		writeUnavailable(w, "locations are not configured")
		return
	}

	visible, err := s.registry.ForTechnician(r.Context(), profileFromContext(r.Context()))
	if err != nil {
		s.logger.Error("list onus failed", "error", err)
		writeInternalError(w, "failed to list onus")
		return
	}

	coords, err := s.locations.Locations(r.Context())
	if err != nil {
		s.logger.Error("load locations failed", "error", err)
		writeInternalError(w, "failed to load locations")
		return
	}

	resp := map[string]any{"updated_at": nil}
	meta, err := s.locations.LocationMetadata(r.Context())
	switch {
	case errors.Is(err, inventory.ErrNoLocations):
	case err != nil:
		s.logger.Error("load location metadata failed", "error", err)
		writeInternalError(w, "failed to load locations")
		return
	default:
		resp["updated_at"] = meta.LastUpdated
	}

	located := inventory.JoinLocations(visible, coords)
	resp["locations"] = located
	resp["count"] = len(located)
	writeJSON(w, http.StatusOK, resp)
}

// handleGetOnu returns one ONU. Technicians get 404 for an ONU outside
// their service area so serial numbers elsewhere are not disclosed.
func (s *Server) handleGetOnu(w http.ResponseWriter, r *http.Request) {
	sn := chi.URLParam(r, "sn")

	o, err := s.registry.GetBySN(r.Context(), sn)
	if errors.Is(err, inventory.ErrOnuNotFound) {
		writeNotFound(w, "onu not found")
		return
	}
	if err != nil {
		s.logger.Error("get onu failed", "error", err, "sn", sn)
		writeInternalError(w, "failed to load onu")
		return
	}

	if len(onu.FilterForTechnician([]onu.Onu{*o}, profileFromContext(r.Context()))) == 0 {
		writeNotFound(w, "onu not found")
		return
	}

	writeJSON(w, http.StatusOK, o)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
