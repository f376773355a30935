package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelNames(t *testing.T) {
	// These names are shared with external consumers; they are part of
	// the wire contract and must never drift.
	assert.Equal(t, "aggregator", ChannelCommands)
	assert.Equal(t, "aggregator-errors", ChannelErrors)
	assert.Equal(t, "aggregator-status", ChannelStatus)
}

func TestItemChannel(t *testing.T) {
	assert.Equal(t, "feed:wire:7", ItemChannel(7))
	assert.Equal(t, "feed:wire:0", ItemChannel(0))
	assert.Equal(t, "feed:wire:123", ItemChannel(123))
}
