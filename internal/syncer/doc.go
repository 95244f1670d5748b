// Package syncer pulls the ONU inventory from the provisioning API into the
// local store.
//
// One cycle (SyncOnce):
//
//  1. fetch details and live statuses concurrently
//  2. overlay statuses onto the detail records
//  3. replace the stored snapshot and reload the registry
//  4. announce the snapshot on MQTT and record per-area counts in InfluxDB
//
// A failed status fetch downgrades the cycle to "partial" but still saves
// the details. Publishing and metrics are best-effort.
//
// Run repeats the cycle on an interval. While the stored snapshot is still
// fresh it only refreshes live statuses. When a location source is wired,
// each tick also refetches GPS coordinates once the stored set is older
// than a day.
package syncer
