package zone

import "strings"

// IsOnuInZone reports whether an ONU with the given upstream zone name
// belongs to a technician's service area.
//
// The service area is trimmed and upper-cased before lookup, so "zone a",
// "  Zone A  " and the alias "A" all resolve to ZONE A. Unknown and reserved
// areas return false for every zone name.
//
// A zone name matches when any town pattern is a prefix of it or appears
// anywhere inside it, compared case-insensitively after trimming.
func IsOnuInZone(onuZoneName, technicianServiceArea string) bool {
	_, ok := MatchTown(onuZoneName, technicianServiceArea)
	return ok
}

// MatchTown returns the first town in the service area whose patterns match
// the zone name. It follows the same rules as IsOnuInZone.
func MatchTown(onuZoneName, serviceArea string) (string, bool) {
	entry, ok := lookup(serviceArea)
	if !ok || len(entry.towns) == 0 {
		return "", false
	}

	name := normalise(onuZoneName)
	for i, patterns := range upperPatterns[entry.canonical] {
		for _, p := range patterns {
			if matches(name, p) {
				return entry.towns[i].Name, true
			}
		}
	}
	return "", false
}

// matches applies the prefix and substring checks. The prefix check is kept
// separate so anchored patterns can be introduced without touching callers.
func matches(zoneName, pattern string) bool {
	return strings.HasPrefix(zoneName, pattern) || strings.Contains(zoneName, pattern)
}

// PatternsForZone returns every pattern registered for the service area,
// flattened across towns in catalog order. Unknown and reserved areas yield
// an empty slice.
func PatternsForZone(serviceArea string) []string {
	entry, ok := lookup(serviceArea)
	if !ok {
		return []string{}
	}

	var n int
	for _, t := range entry.towns {
		n += len(t.Patterns)
	}
	patterns := make([]string, 0, n)
	for _, t := range entry.towns {
		patterns = append(patterns, t.Patterns...)
	}
	return patterns
}

// TownsForZone returns a copy of the towns registered for the service area.
func TownsForZone(serviceArea string) []TownEntry {
	entry, ok := lookup(serviceArea)
	if !ok {
		return []TownEntry{}
	}

	towns := make([]TownEntry, len(entry.towns))
	for i, t := range entry.towns {
		towns[i] = TownEntry{
			Name:     t.Name,
			Patterns: append([]string(nil), t.Patterns...),
		}
	}
	return towns
}

// AllZones returns the canonical service area names in display order.
// Aliases are not included.
func AllZones() []string {
	return append([]string(nil), canonicalAreas...)
}

// Resolve maps a service area or alias to its canonical name.
func Resolve(serviceArea string) (string, bool) {
	entry, ok := lookup(serviceArea)
	if !ok {
		return "", false
	}
	return entry.canonical, true
}

// IsReserved reports whether the area is known but has no towns configured.
func IsReserved(serviceArea string) bool {
	entry, ok := lookup(serviceArea)
	return ok && len(entry.towns) == 0
}

func lookup(serviceArea string) (areaEntry, bool) {
	entry, ok := catalog[normalise(serviceArea)]
	return entry, ok
}

func normalise(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}
