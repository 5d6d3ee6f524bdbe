// Package api implements the HTTP JSON API and WebSocket server for
// Fieldtask Core.
//
// This package provides:
//   - /api/devices (list, view) and /api/tasks (list, view, create,
//     replace, delete)
//   - A hand-written dispatcher for /api driven by an immutable RouteTable
//   - WebSocket hub streaming task lifecycle events on /ws
//   - /health and Prometheus /metrics
//   - Middleware stack (request ID, logging, recovery, metrics, body limit)
//
// # Dispatch
//
// chi serves the operational endpoints and hands every /api path to Router,
// which answers exactly once per request: 404 for an unknown path, 204 for
// OPTIONS, 405 with Allow for an unaccepted method, 406 when Accept does
// not admit JSON, 400 for a POST or PUT without a JSON Content-Type or with
// an unparseable body, and otherwise the registered handler.
//
// # Events
//
// Task writes are reported to an EventPublisher, which publishes to MQTT
// when connected and otherwise broadcasts straight to the hub. With MQTT,
// the server subscribes to fieldtask/core/event/+ and relays to the hub, so
// clients also see events from other instances.
//
// Lifecycle:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
