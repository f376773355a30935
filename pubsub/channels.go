package pubsub

import "fmt"

// Channel names are part of the wire contract shared with other services;
// they must match bit-exactly.
const (
	// ChannelCommands carries inbound add/remove/replace commands.
	ChannelCommands = "aggregator"
	// ChannelErrors carries outbound error envelopes.
	ChannelErrors = "aggregator-errors"
	// ChannelStatus carries worker lifecycle notices.
	ChannelStatus = "aggregator-status"
)

// ItemChannel returns the category-keyed channel new items are published on.
func ItemChannel(category int64) string {
	return fmt.Sprintf("feed:wire:%d", category)
}
