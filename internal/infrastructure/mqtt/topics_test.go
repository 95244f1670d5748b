package mqtt

import (
	"encoding/json"
	"testing"
)

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"SystemStatus", topics.SystemStatus(), "nosteq/system/status"},
		{"InventorySnapshot", topics.InventorySnapshot(), "nosteq/inventory/snapshot"},
		{"ZoneCounts", topics.ZoneCounts("ZONE A"), "nosteq/inventory/counts/zone-a"},
		{"ZoneCounts trims", topics.ZoneCounts("  Zone  C "), "nosteq/inventory/counts/zone--c"},
		{"ZoneCounts strips wildcards", topics.ZoneCounts("A/B+#"), "nosteq/inventory/counts/a-b--"},
		{"SyncRequest", topics.SyncRequest(), "nosteq/command/sync"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestStatusPayload(t *testing.T) {
	var msg statusMessage
	if err := json.Unmarshal(statusPayload("offline", "nosteq-core", "graceful_shutdown"), &msg); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if msg.Status != "offline" || msg.ClientID != "nosteq-core" || msg.Reason != "graceful_shutdown" {
		t.Errorf("payload = %+v", msg)
	}
	if msg.Timestamp == "" {
		t.Error("payload has no timestamp")
	}

	var online map[string]any
	if err := json.Unmarshal(statusPayload("online", "c", ""), &online); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if _, ok := online["reason"]; ok {
		t.Error("online payload should omit reason")
	}
}
