// ABOUTME: This file consumes control commands from the aggregator channel.
// ABOUTME: Payloads are validated at the boundary and dispatched to the scheduler.
package consumer

import (
	"context"
	"errors"
	"log/slog"

	"aggregator/domain"
	"aggregator/metrics"
	"aggregator/pubsub"
)

// CommandConsumer subscribes to the command channel and maps messages to
// scheduler operations.
type CommandConsumer struct {
	subscriber pubsub.Subscriber
	scheduler  FeedScheduler
	emitter    ErrorSink
	logger     *slog.Logger
}

// NewCommandConsumer creates a command consumer.
func NewCommandConsumer(subscriber pubsub.Subscriber, scheduler FeedScheduler, emitter ErrorSink, logger *slog.Logger) *CommandConsumer {
	return &CommandConsumer{
		subscriber: subscriber,
		scheduler:  scheduler,
		emitter:    emitter,
		logger:     logger,
	}
}

// Start opens the persistent subscription on the command channel. Message
// handling runs on the subscriber's consume loop.
func (c *CommandConsumer) Start(ctx context.Context) error {
	c.logger.InfoContext(ctx, "starting command consumer", "channel", pubsub.ChannelCommands)
	return c.subscriber.Subscribe(ctx, pubsub.ChannelCommands, c.HandleMessage)
}

// HandleMessage processes one raw command payload. Malformed JSON is logged
// and dropped; unknown commands are logged at warn; invalid feed configs are
// surfaced as type_error events.
func (c *CommandConsumer) HandleMessage(channel, payload string) {
	ctx := context.Background()

	cmd, err := domain.ParseCommand([]byte(payload))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownCommand):
			metrics.CommandsTotal.WithLabelValues("unknown").Inc()
			c.logger.WarnContext(ctx, "unknown command", "channel", channel, "error", err)
		case errors.Is(err, domain.ErrInvalidFeedConfig):
			metrics.CommandsTotal.WithLabelValues("malformed").Inc()
			c.emitter.Error(ctx, domain.NewFeedError(domain.KindTypeError, "", nil, err))
		default:
			metrics.CommandsTotal.WithLabelValues("malformed").Inc()
			c.logger.ErrorContext(ctx, "dropping malformed command payload", "channel", channel, "error", err)
		}
		return
	}

	metrics.CommandsTotal.WithLabelValues(string(cmd.Cmd)).Inc()

	c.logger.InfoContext(ctx, "command received", "cmd", cmd.Cmd, "url", cmd.URL)

	switch cmd.Cmd {
	case domain.CommandAdd:
		if err := c.scheduler.Add(ctx, cmd.FeedConfig()); err != nil {
			c.logger.ErrorContext(ctx, "add command failed", "url", cmd.URL, "error", err)
		}
	case domain.CommandRemove:
		if err := c.scheduler.Remove(ctx, cmd.URL); err != nil {
			c.logger.ErrorContext(ctx, "remove command failed", "url", cmd.URL, "error", err)
		}
	case domain.CommandReplace:
		if err := c.scheduler.Replace(ctx, cmd.FeedConfig()); err != nil {
			c.logger.ErrorContext(ctx, "replace command failed", "url", cmd.URL, "error", err)
		}
	}
}
