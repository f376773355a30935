package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CommandName identifies an inbound control-plane command.
type CommandName string

const (
	CommandAdd     CommandName = "add"
	CommandRemove  CommandName = "remove"
	CommandReplace CommandName = "replace"
)

// Command is the validated form of an inbound control message. The wire
// format is schemaless JSON; validation happens once at the boundary and the
// rest of the worker only ever sees this struct.
type Command struct {
	Cmd      CommandName `json:"cmd"`
	URL      string      `json:"url"`
	Name     string      `json:"name"`
	Category int64       `json:"category"`
	Refresh  int64       `json:"refresh"`
}

// ParseCommand decodes and validates one control message. Unknown command
// names and structurally invalid payloads are rejected here so the scheduler
// never sees them.
func ParseCommand(payload []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return nil, fmt.Errorf("malformed command JSON: %w", err)
	}

	cmd.URL = strings.TrimSpace(cmd.URL)

	switch cmd.Cmd {
	case CommandAdd, CommandReplace:
		if cmd.URL == "" {
			return nil, fmt.Errorf("%w: missing url", ErrInvalidFeedConfig)
		}
		if cmd.Refresh <= 0 {
			return nil, fmt.Errorf("%w: refresh must be positive, got %d", ErrInvalidFeedConfig, cmd.Refresh)
		}
	case CommandRemove:
		if cmd.URL == "" {
			return nil, fmt.Errorf("%w: missing url", ErrInvalidFeedConfig)
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownCommand, cmd.Cmd)
	}

	return &cmd, nil
}

// FeedConfig converts an add/replace command into a feed configuration.
func (c *Command) FeedConfig() FeedConfig {
	return FeedConfig{
		Name:     c.Name,
		URL:      c.URL,
		Category: c.Category,
		Refresh:  c.Refresh,
	}
}
