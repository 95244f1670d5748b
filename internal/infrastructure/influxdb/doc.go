// Package influxdb records inventory time series in InfluxDB v2.
//
// Two measurements are written by the sync loop:
//
//	onu_status   tags: area            fields: online, los, offline, power_fail, total
//	sync_run     tags: result          fields: saved, statuses, duration_ms
//
// Writes are non-blocking and batched by the client library. Errors surface
// through the callback set with SetOnError.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // metrics are optional
//	}
//	defer client.Close()
//
//	client.WriteZoneCounts("ZONE A", map[string]int{"online": 120, "los": 3}, time.Now())
package influxdb
