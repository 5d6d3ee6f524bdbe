package mqtt

import "fmt"

// Topic prefixes for the Fieldtask topic hierarchy.
const (
	TopicPrefix       = "fieldtask"
	TopicPrefixCore   = TopicPrefix + "/core"
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics builds Fieldtask MQTT topic names.
//
//	mqtt.Topics{}.CoreEvent("task.created")
//	// Returns: "fieldtask/core/event/task.created"
type Topics struct{}

// CoreEvent returns the topic a lifecycle event of eventType is published on.
func (Topics) CoreEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixCore, eventType)
}

// AllCoreEvents matches every lifecycle event topic.
func (Topics) AllCoreEvents() string {
	return TopicPrefixCore + "/event/+"
}

// SystemStatus returns the retained online/offline status topic.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// EventTypeFromTopic extracts the event type from a CoreEvent topic.
// It returns false for topics outside the event hierarchy.
func (Topics) EventTypeFromTopic(topic string) (string, bool) {
	prefix := TopicPrefixCore + "/event/"
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return "", false
	}
	return topic[len(prefix):], true
}
