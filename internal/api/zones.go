package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kevann/nosteq-core/internal/zone"
)

type zoneSummary struct {
	Area     string `json:"area"`
	Reserved bool   `json:"reserved"`
	Towns    int    `json:"towns"`
	Patterns int    `json:"patterns"`
}

// handleListZones returns every service area in catalog order.
func (s *Server) handleListZones(w http.ResponseWriter, _ *http.Request) {
	areas := zone.AllZones()
	zones := make([]zoneSummary, 0, len(areas))
	for _, area := range areas {
		zones = append(zones, zoneSummary{
			Area:     area,
			Reserved: zone.IsReserved(area),
			Towns:    len(zone.TownsForZone(area)),
			Patterns: len(zone.PatternsForZone(area)),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"zones": zones,
		"count": len(zones),
	})
}

// handleZonePatterns returns the flattened match patterns for one area.
func (s *Server) handleZonePatterns(w http.ResponseWriter, r *http.Request) {
	area, ok := zone.Resolve(chi.URLParam(r, "area"))
	if !ok {
		writeNotFound(w, "unknown service area")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"area":     area,
		"patterns": zone.PatternsForZone(area),
	})
}

// handleZoneTowns returns the towns of one area with their patterns.
func (s *Server) handleZoneTowns(w http.ResponseWriter, r *http.Request) {
	area, ok := zone.Resolve(chi.URLParam(r, "area"))
	if !ok {
		writeNotFound(w, "unknown service area")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"area":  area,
		"towns": zone.TownsForZone(area),
	})
}
