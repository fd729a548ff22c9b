package pubsub

import (
	"fmt"
	"strings"
)

// Channel naming conventions for the overlay relay bus.
const (
	// ChannelOverlayEvents carries asset events for one broadcaster's channel.
	ChannelOverlayEvents = "overlay:channel:%s:events"

	// PatternOverlayEvents matches every broadcaster's event channel.
	PatternOverlayEvents = "overlay:channel:*:events"
)

// OverlayEventsChannel returns the bus channel name for a broadcaster.
func OverlayEventsChannel(broadcaster string) string {
	return fmt.Sprintf(ChannelOverlayEvents, strings.ToLower(broadcaster))
}

// BroadcasterFromChannel extracts the broadcaster segment from a bus channel name.
func BroadcasterFromChannel(channel string) (string, bool) {
	parts := strings.Split(channel, ":")
	if len(parts) != 4 || parts[0] != "overlay" || parts[1] != "channel" || parts[3] != "events" {
		return "", false
	}
	return parts[2], parts[2] != ""
}
