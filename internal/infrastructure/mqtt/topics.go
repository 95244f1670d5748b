package mqtt

import "strings"

// TopicPrefix is the root of every Nosteq topic.
const TopicPrefix = "nosteq"

// Topics builds Nosteq topic names.
//
//	topic := mqtt.Topics{}.ZoneCounts("ZONE A")
//	// Returns: "nosteq/inventory/counts/zone-a"
type Topics struct{}

// SystemStatus is the retained online/offline topic, also used for the LWT.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// InventorySnapshot carries the retained summary of the last sync.
func (Topics) InventorySnapshot() string {
	return TopicPrefix + "/inventory/snapshot"
}

// ZoneCounts carries the retained status counts for one service area.
func (Topics) ZoneCounts(area string) string {
	return TopicPrefix + "/inventory/counts/" + topicSegment(area)
}

// SyncRequest is where operator tooling asks Core to sync now.
func (Topics) SyncRequest() string {
	return TopicPrefix + "/command/sync"
}

// topicSegment lower-cases s and replaces characters that are not safe in a
// single topic level. "ZONE A" becomes "zone-a".
func topicSegment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '+', '#':
			return '-'
		}
		return r
	}, s)
}
