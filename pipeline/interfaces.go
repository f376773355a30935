package pipeline

import (
	"context"

	"aggregator/domain"
)

// ItemSink receives identified-new items after persistence. The events
// emitter is the production implementation.
type ItemSink interface {
	NewItem(ctx context.Context, item domain.PersistedItem)
}
