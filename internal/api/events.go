package api

import (
	"context"
	"encoding/json"

	"github.com/nerrad567/fieldtask-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/logging"
	"github.com/nerrad567/fieldtask-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/fieldtask-core/internal/task"
)

// Event delivery results recorded in fieldtask_task_events_total.
const (
	eventResultMQTT      = "mqtt"
	eventResultWebSocket = "websocket"
	eventResultFailed    = "failed"
)

// EventPublisherDeps holds the sinks for task events. Every field except
// Logger is optional.
type EventPublisherDeps struct {
	MQTT    *mqtt.Client
	Hub     *Hub
	Influx  *influxdb.Client
	Metrics *Metrics
	Logger  *logging.Logger
}

// EventPublisher implements task.Publisher.
//
// Events go to MQTT on fieldtask/core/event/<type> when the broker is
// connected; the server's bus relay then forwards them to WebSocket
// clients. Without a broker they are broadcast to the hub directly. Every
// event is also written to InfluxDB when configured.
type EventPublisher struct {
	mqtt    *mqtt.Client
	hub     *Hub
	influx  *influxdb.Client
	metrics *Metrics
	logger  *logging.Logger
}

var _ task.Publisher = (*EventPublisher)(nil)

// NewEventPublisher creates an EventPublisher.
func NewEventPublisher(deps EventPublisherDeps) *EventPublisher {
	return &EventPublisher{
		mqtt:    deps.MQTT,
		hub:     deps.Hub,
		influx:  deps.Influx,
		metrics: deps.Metrics,
		logger:  deps.Logger.With("component", "events"),
	}
}

// PublishTaskEvent fans ev out to the configured sinks. Delivery failures
// are logged and never reach the HTTP caller.
func (p *EventPublisher) PublishTaskEvent(_ context.Context, ev task.Event) {
	if !p.publishMQTT(ev) && p.hub != nil {
		p.hub.Broadcast(ev.Type, ev)
		p.observe(ev.Type, eventResultWebSocket)
	}

	if p.influx != nil {
		p.influx.WriteTaskEvent(influxdb.TaskEvent{
			Type:        ev.Type,
			TaskID:      ev.Task.ID,
			Target:      ev.Task.Target,
			Criticality: ev.Task.Criticality,
			State:       ev.Task.State,
			At:          ev.At,
		})
	}
}

// publishMQTT reports whether the event reached the broker.
func (p *EventPublisher) publishMQTT(ev task.Event) bool {
	if !p.mqtt.IsConnected() {
		return false
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("failed to marshal task event", "type", ev.Type, "error", err)
		p.observe(ev.Type, eventResultFailed)
		return false
	}

	if err := p.mqtt.PublishEvent(mqtt.Topics{}.CoreEvent(ev.Type), payload); err != nil {
		p.logger.Warn("failed to publish task event", "type", ev.Type, "task_id", ev.Task.ID, "error", err)
		p.observe(ev.Type, eventResultFailed)
		return false
	}
	p.observe(ev.Type, eventResultMQTT)
	return true
}

func (p *EventPublisher) observe(eventType, result string) {
	if p.metrics != nil {
		p.metrics.ObserveEvent(eventType, result)
	}
}
