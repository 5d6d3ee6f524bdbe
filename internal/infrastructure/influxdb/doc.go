// Package influxdb records task lifecycle events as InfluxDB v2 points.
//
// It wraps github.com/influxdata/influxdb-client-go/v2 with connection
// verification, batched non-blocking writes and health checks. Each
// task.created, task.updated or task.deleted event becomes one point in the
// "task_events" measurement.
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteTaskEvent(influxdb.TaskEvent{Type: "task.created", TaskID: id})
package influxdb
