package onu

import (
	"github.com/kevann/nosteq-core/internal/technician"
	"github.com/kevann/nosteq-core/internal/zone"
)

// DefaultPageSize is how many ONUs a list screen loads per step.
const DefaultPageSize = 30

// FilterForTechnician returns the ONUs the profile may see. Technicians with
// a service area see only ONUs whose zone name falls in that area; everyone
// else, including a nil profile, sees the full list. A whitespace-only area
// is not empty and matches nothing.
func FilterForTechnician(onus []Onu, profile *technician.Profile) []Onu {
	if !profile.IsTechnician() || profile.ServiceArea == "" {
		return append([]Onu(nil), onus...)
	}

	visible := make([]Onu, 0, len(onus))
	for i := range onus {
		if zone.IsOnuInZone(onus[i].ZoneName(), profile.ServiceArea) {
			visible = append(visible, onus[i])
		}
	}
	return visible
}

// Counts tallies ONUs by operational state.
type Counts struct {
	Online    int `json:"online"`
	LOS       int `json:"los"`
	Offline   int `json:"offline"`
	PowerFail int `json:"power_fail"`
}

// Total returns the number of ONUs in a recognised state.
func (c Counts) Total() int {
	return c.Online + c.LOS + c.Offline + c.PowerFail
}

// CountStatuses tallies onus using the live status for each SN when one is
// present and the record's own status otherwise. statuses may be nil.
func CountStatuses(onus []Onu, statuses StatusMap) Counts {
	var c Counts
	for i := range onus {
		raw := onus[i].Status
		if live, ok := statuses[onus[i].SN]; ok {
			raw = live.Status
		}

		switch ParseStatus(raw) {
		case StatusOnline:
			c.Online++
		case StatusLOS:
			c.LOS++
		case StatusOffline:
			c.Offline++
		case StatusPowerFail:
			c.PowerFail++
		}
	}
	return c
}

// ApplyStatuses returns a copy of onus with Status replaced by the live
// status wherever one exists.
func ApplyStatuses(onus []Onu, statuses StatusMap) []Onu {
	out := make([]Onu, len(onus))
	for i := range onus {
		out[i] = onus[i]
		if live, ok := statuses[onus[i].SN]; ok && live.Status != "" {
			out[i].Status = live.Status
		}
	}
	return out
}

// PageN returns the window of at most size onus that follows the first
// offset entries. offset is clamped to [0, len(onus)] and a size below 1
// uses DefaultPageSize.
func PageN(onus []Onu, offset, size int) []Onu {
	if size < 1 {
		size = DefaultPageSize
	}
	offset = max(0, min(offset, len(onus)))
	end := min(offset+size, len(onus))
	return onus[offset:end:end]
}

// FindBySN returns the ONU with the given serial number.
func FindBySN(onus []Onu, sn string) (*Onu, bool) {
	for i := range onus {
		if onus[i].SN == sn {
			return &onus[i], true
		}
	}
	return nil, false
}
