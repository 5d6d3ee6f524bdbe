package task

import "time"

// Collection is the document collection tasks are stored in.
const Collection = "tasks"

// Task is a maintenance task recorded against a device.
type Task struct {
	ID string `json:"id,omitempty"`

	// Criticality is a free-form severity label, e.g. "high".
	Criticality string `json:"criticality"`

	// Target is the id of the device the task concerns. It is not checked
	// against the device catalogue.
	Target string `json:"target"`

	// RecordTime is an RFC 3339 UTC timestamp.
	RecordTime string `json:"recordTime"`

	Description string `json:"description"`
	State       string `json:"state"`
}

// Event types emitted after a successful write.
const (
	EventCreated = "task.created"
	EventUpdated = "task.updated"
	EventDeleted = "task.deleted"
)

// Event describes a task lifecycle change. For deletions Task holds the
// document as it was before removal.
type Event struct {
	Type string    `json:"type"`
	Task Task      `json:"task"`
	At   time.Time `json:"at"`
}
