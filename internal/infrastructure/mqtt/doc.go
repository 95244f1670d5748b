// Package mqtt connects Nosteq Core to the site MQTT broker.
//
// Core uses the broker for two things:
//
//   - announcing inventory snapshots (retained) so dashboards and the field
//     app see the latest sync without polling the API
//   - receiving sync requests from operator tooling
//
// Topic layout:
//
//	nosteq/system/status              retained online/offline, also the LWT
//	nosteq/inventory/snapshot         retained summary of the last sync
//	nosteq/inventory/counts/{area}    retained status counts per service area
//	nosteq/command/sync               sync requests
//
// Subscriptions are tracked and restored after an automatic reconnect.
// Message handlers run on paho's goroutines; a panicking handler is
// recovered and logged.
//
// Tests other than the topic builders need a broker on 127.0.0.1:1883 and
// are skipped when none is reachable.
package mqtt
