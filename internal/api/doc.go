// Package api implements the HTTP REST API used by the field app and the
// operations dashboard.
//
// All routes live under /api/v1. Everything except /health requires a
// bearer token (see package auth); the token subject is resolved to a
// technician profile and that profile decides which ONUs are visible.
//
//	GET   /health
//	GET   /zones                      service areas with town counts
//	GET   /zones/{area}/patterns      match patterns for one area
//	GET   /zones/{area}/towns         towns and their patterns
//	GET   /me                         caller's profile and towns
//	PATCH /me                         update caller's phone number
//	GET   /onus?limit=&offset=        visible ONUs, sorted by name
//	GET   /onus/counts                status counts for visible ONUs
//	GET   /onus/locations             GPS coordinates of visible ONUs
//	GET   /onus/{sn}                  one ONU, 404 outside the caller's area
//	GET   /sync                       last sync result and snapshot age
//	POST  /sync                       run a sync now (admin)
//	GET   /technicians                list profiles (admin)
//	POST  /technicians                create a profile (admin)
//	PUT   /technicians/{id}/area      reassign a service area (admin)
//	GET   /audit                      admin action trail (admin)
//
// Errors are JSON: {"status": 404, "code": "not_found", "message": "..."}.
//
// The server follows the same lifecycle as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
