// Package onu defines the optical network unit record and the views a
// technician gets over a list of them.
//
// Records come from the provisioning API (see package smartolt) and are
// stored by package inventory. This package holds no state: every function
// takes the list it works on and returns a new slice.
//
// # Visibility
//
// FilterForTechnician is the single place where the zone classifier is
// applied to a list:
//
//	role "technician" + service area  → only ONUs in that area
//	any other role, or no area        → the whole list
//
// # Status
//
// Upstream status strings are lower-cased and trimmed before comparison, so
// "Online", "LOS" and "Power fail" all map to a Status constant. Anything
// unrecognised is StatusUnknown and is not counted.
package onu
