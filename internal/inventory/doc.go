// Package inventory keeps the last ONU snapshot pulled from the
// provisioning API and serves it to the API layer.
//
// There are two layers:
//
//	Store          SQLite tables onus + onu_cache_metadata, staged in
//	               batches and swapped in at once
//	LocationStore  GPS coordinates by unique external ID, fresh for 24 hours
//	Registry       in-memory copy of the store with a live status overlay
//
// The store answers "how old is the snapshot" so the sync loop can skip an
// upstream call while the data is still fresh (30 minutes by default). The
// registry answers every read request; it only touches SQLite when its
// cache has never been loaded.
//
// Thread Safety: Registry is safe for concurrent use. SQLiteStore relies on
// the single-connection database handle for serialisation.
package inventory
