package ports

import (
	"context"

	"dispatch/internal/core/domain/events"
)

// EventPublisher receives domain events after the emitting mutation has
// committed. Publishing is best-effort: a failed delivery is logged by the
// implementation and never propagates back into the command that emitted it.
//
// Handlers call Publish synchronously so that per-branch event ordering
// follows the mutation order.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}
