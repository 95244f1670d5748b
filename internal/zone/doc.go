// Package zone decides which technician service area an ONU belongs to.
//
// Upstream device records carry a free-text zone name assigned by whoever
// provisioned the ONU ("BNN_4521", "HIGHWAY HOMES ESTATE", ...). This package
// holds the catalog that maps each service area to its towns, and each town
// to the naming fragments that identify devices installed there.
//
// # Catalog
//
//	ZONE A ─┬─ BANANA   [BNN_, HIGHWAY HOMES, NJORO, ...]
//	        ├─ KARURA   [KARURA]
//	        └─ ...
//	ZONE D ─── (reserved, no towns)
//
// Single-letter aliases ("A" .. "E") are registered as their own keys and
// point at the same town list as the canonical name.
//
// The catalog is literal source data built once at package initialisation.
// There is no runtime mutation path: adding a town means editing catalog.go
// and redeploying.
//
// # Matching
//
// Both the service area and the zone name are trimmed and upper-cased. A
// zone name matches when any pattern of any town in the area is a prefix or
// a substring of it. Unknown areas and reserved areas never match.
//
// # Usage
//
//	if zone.IsOnuInZone(onu.ZoneName(), profile.ServiceArea) {
//	    visible = append(visible, onu)
//	}
//
// Thread Safety: all functions are safe for concurrent use. Nothing in this
// package performs I/O or returns an error.
package zone
