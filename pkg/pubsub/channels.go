package pubsub

import (
	"fmt"
	"strings"
)

// ChannelIndexEvents is the channel naming convention for index lifecycle
// events: {app}:index:{alias}:events.
const ChannelIndexEvents = "%s:index:%s:events"

// Event types for index lifecycle changes.
const (
	EventIndexCreated    = "index.created"
	EventIndexConfigured = "index.configured"
	EventIndexSwapped    = "index.swapped"
	EventIndexDeleted    = "index.deleted"
	EventDocumentsLoaded = "index.documents_loaded"
)

// IndexEventsChannel returns the channel for lifecycle events of an alias.
func IndexEventsChannel(app, alias string) string {
	return fmt.Sprintf(ChannelIndexEvents, app, alias)
}

// channelToTopicAndKey converts a Redis-style channel to a Kafka topic and message key.
//
//	"openjob:index:openjob:events" → topic: "openjob-index-events", key: "openjob"
func channelToTopicAndKey(channel string) (topic, key string, err error) {
	parts := strings.Split(channel, ":")
	if len(parts) != 4 || parts[1] != "index" || parts[0] == "" || parts[2] == "" || parts[3] == "" {
		return "", "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return parts[0] + "-index-" + parts[3], parts[2], nil
}

// Payloads.

// SwappedPayload is sent after an alias has been repointed.
type SwappedPayload struct {
	From []string `json:"from"`
	To   string   `json:"to"`
}

// DocumentsLoadedPayload is sent after a bulk load.
type DocumentsLoadedPayload struct {
	Target  string `json:"target"`
	Indexed int    `json:"indexed"`
}
