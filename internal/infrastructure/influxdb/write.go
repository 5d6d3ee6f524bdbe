package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementTaskEvents is the measurement task lifecycle points are written to.
const MeasurementTaskEvents = "task_events"

// TaskEvent describes one task lifecycle change.
type TaskEvent struct {
	Type        string
	TaskID      string
	Target      string
	Criticality string
	State       string
	At          time.Time
}

// WriteTaskEvent records a task lifecycle change. The write is
// non-blocking; points are batched and sent asynchronously.
func (c *Client) WriteTaskEvent(ev TaskEvent) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(taskEventPoint(ev))
}

// taskEventPoint tags the point with low-cardinality fields (event type,
// criticality, state) and keeps ids as fields.
func taskEventPoint(ev TaskEvent) *write.Point {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	tags := map[string]string{"event": ev.Type}
	if ev.Criticality != "" {
		tags["criticality"] = ev.Criticality
	}
	if ev.State != "" {
		tags["state"] = ev.State
	}

	return write.NewPoint(
		MeasurementTaskEvents,
		tags,
		map[string]any{
			"task_id": ev.TaskID,
			"target":  ev.Target,
			"count":   1,
		},
		at,
	)
}
