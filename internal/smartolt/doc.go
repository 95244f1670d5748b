// Package smartolt is a client for the SmartOLT provisioning API.
//
// Two read-only endpoints are used:
//
//	GET /onu/get_all_onus_details   full ONU records
//	GET /onu/get_onus_statuses      bulk live status per serial number
//
// Both accept the same optional filters (OLT, board, port, zone, ODB) and
// answer with an envelope:
//
//	{"status": true,  "onus": [...]}            details
//	{"status": true,  "response": [...]}        statuses
//	{"status": false, "error": "Invalid token"} failure
//
// Every request carries the tenant API key in the X-Token header.
//
// # Field mapping
//
// The API is loose about field names and types across firmware and tenant
// versions. Decoding accepts several names for the same field (sn/onu_sn,
// zone_name/zone, ...), reads numbers sent as strings and vice versa, turns
// empty strings into absent values, and drops the PPPoE password. The
// mapping lives in decode.go.
package smartolt
