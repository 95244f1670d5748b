package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	measurementOnuStatus = "onu_status"
	measurementSyncRun   = "sync_run"
)

// WriteZoneCounts records the ONU status counts for one service area.
// A "total" field is added from the sum of counts.
func (c *Client) WriteZoneCounts(area string, counts map[string]int, ts time.Time) {
	if !c.IsConnected() {
		return
	}

	fields := make(map[string]any, len(counts)+1)
	total := 0
	for k, v := range counts {
		fields[k] = v
		total += v
	}
	fields["total"] = total

	c.writeAPI.WritePoint(write.NewPoint(measurementOnuStatus,
		map[string]string{"area": area}, fields, ts))
}

// WriteSyncRun records the outcome of one sync cycle. result is "ok",
// "partial" (statuses unavailable) or "failed".
func (c *Client) WriteSyncRun(result string, saved, statuses int, duration time.Duration, ts time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurementSyncRun,
		map[string]string{"result": result},
		map[string]any{
			"saved":       saved,
			"statuses":    statuses,
			"duration_ms": duration.Milliseconds(),
		},
		ts))
}
