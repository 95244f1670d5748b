package zone

import "strings"

// Canonical service area identifiers.
const (
	AreaA = "ZONE A"
	AreaB = "ZONE B"
	AreaC = "ZONE C"
	AreaD = "ZONE D"
	AreaE = "ZONE E"
)

// TownEntry is a town and the zone-name fragments that identify ONUs
// installed there.
type TownEntry struct {
	Name     string   `json:"name"`
	Patterns []string `json:"patterns"`
}

// zoneATowns covers the Banana / Ruaka side of the network.
var zoneATowns = []TownEntry{
	{
		// BNN_ is the provisioning prefix for Banana; the rest are estates
		// that were provisioned without it.
		Name: "BANANA",
		Patterns: []string{
			"BNN_",
			"HIGHWAY HOMES",
			"NJORO",
			"P.C.E.A_THIMBIGUA",
			"TRINITY BANANA",
			"WANDUI KIAMBAA",
		},
	},
	{Name: "KARURA", Patterns: []string{"KARURA"}},
	{
		Name: "REDHILL",
		Patterns: []string{
			"REDHILL",
			"KIANJOGU",
			"GATWIKIRA NJIKU",
			"NDENDERU JUNCTION",
		},
	},
	{Name: "KARURI", Patterns: []string{"KARURI"}},
	{Name: "MUCHATHA", Patterns: []string{"MUCHATHA", "KIRIRU", "YAMOGO"}},
	{Name: "RUAKA", Patterns: []string{"RUAKA", "DAVANA", "DIGRO"}},
}

var zoneBTowns = []TownEntry{
	{Name: "TURITU", Patterns: []string{"TURITU"}},
	{Name: "KANUNGA", Patterns: []string{"KANUNGA"}},
	{Name: "KASPHAT", Patterns: []string{"KASPHAT"}},
	{Name: "GATHANGA", Patterns: []string{"GATHANGA", "MAYUYU"}},
	{Name: "WAGUTHU", Patterns: []string{"WAGUTHU", "WANYORI"}},
	{Name: "KIAMBAA", Patterns: []string{"KIAMBAA", "K-SENIOR"}},
}

var zoneCTowns = []TownEntry{
	{Name: "NAZARETH", Patterns: []string{"NAZARETH", "CLARENCE"}},
	{Name: "KAWAIDA", Patterns: []string{"KWD_"}},
	{
		Name: "RAINI",
		Patterns: []string{
			"RAINI",
			"BRICKHOUSE",
			"COUNTY MOTEL",
			"NDUOTA",
			"NJIKU RAINI",
			"RUDI",
			"RUBIS",
		},
	},
	{Name: "NJIKU", Patterns: []string{"NJIKU", "HOMEX"}},
	{Name: "MUTHURWA", Patterns: []string{"MUTHURWA"}},
}

// Zones D and E are reserved. They resolve but never match anything.
var (
	zoneDTowns = []TownEntry{}
	zoneETowns = []TownEntry{}
)

// canonicalAreas is the fixed display order returned by AllZones.
var canonicalAreas = []string{AreaA, AreaB, AreaC, AreaD, AreaE}

// areaEntry is one key of the lookup table.
type areaEntry struct {
	canonical string
	towns     []TownEntry
}

// catalog maps every accepted (normalised) service area key, canonical
// names and aliases alike, to its town list.
var catalog = map[string]areaEntry{
	AreaA: {AreaA, zoneATowns},
	AreaB: {AreaB, zoneBTowns},
	AreaC: {AreaC, zoneCTowns},
	AreaD: {AreaD, zoneDTowns},
	AreaE: {AreaE, zoneETowns},

	// Short forms used by older technician profiles.
	"A": {AreaA, zoneATowns},
	"B": {AreaB, zoneBTowns},
	"C": {AreaC, zoneCTowns},
	"D": {AreaD, zoneDTowns},
	"E": {AreaE, zoneETowns},
}

// upperPatterns holds each area's patterns pre-upper-cased, grouped by
// town, so matching does not re-case the catalog on every call.
var upperPatterns = func() map[string][][]string {
	m := make(map[string][][]string, len(canonicalAreas))
	for _, area := range canonicalAreas {
		towns := catalog[area].towns
		grouped := make([][]string, len(towns))
		for i, t := range towns {
			grouped[i] = make([]string, len(t.Patterns))
			for j, p := range t.Patterns {
				grouped[i][j] = strings.ToUpper(p)
			}
		}
		m[area] = grouped
	}
	return m
}()
