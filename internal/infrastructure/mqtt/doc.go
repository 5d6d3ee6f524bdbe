// Package mqtt is Fieldtask Core's event bus client.
//
// It wraps github.com/eclipse/paho.mqtt.golang with connection tracking,
// subscription restore on reconnect, a retained status topic with Last Will,
// and panic-safe message handlers.
//
// Topic hierarchy:
//
//	fieldtask/core/event/{type}   task lifecycle events (task.created, ...)
//	fieldtask/system/status       retained online/offline status
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishEvent(mqtt.Topics{}.CoreEvent("task.created"), payload)
package mqtt
