package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// SetCourierPresenceCommandHandler flips a courier's online or available flag.
//
// Flips are idempotent, and a courier.presence_changed event is published even
// when the value did not change. That keeps the handler trivially simple and
// lets subscribers treat every event as the current truth.
type SetCourierPresenceCommandHandler struct {
	uowFactory CourierUoWFactory
	publisher  ports.EventPublisher
}

// NewSetCourierPresenceCommandHandler creates a handler for presence flips.
func NewSetCourierPresenceCommandHandler(uowFactory CourierUoWFactory, publisher ports.EventPublisher) SetCourierPresenceCommandHandler {
	return SetCourierPresenceCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// HandleSetOnline processes an online flip and returns the updated courier.
func (h SetCourierPresenceCommandHandler) HandleSetOnline(ctx context.Context, cmd SetCourierOnlineCommand) (*courier.Courier, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.flip(ctx, cmd.CourierID(), func(c *courier.Courier) {
		c.SetOnline(cmd.Online())
	})
}

// HandleSetAvailable processes an availability flip and returns the updated courier.
func (h SetCourierPresenceCommandHandler) HandleSetAvailable(ctx context.Context, cmd SetCourierAvailableCommand) (*courier.Courier, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.flip(ctx, cmd.CourierID(), func(c *courier.Courier) {
		c.SetAvailable(cmd.Available())
	})
}

func (h SetCourierPresenceCommandHandler) flip(
	ctx context.Context,
	courierID kernel.UUID,
	mutate func(*courier.Courier),
) (*courier.Courier, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.CourierRepository().Get(ctx, courierID)
	if err != nil {
		return nil, err
	}

	mutate(aggregate)

	if err = uow.CourierRepository().Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, events.NewCourierPresenceChanged(aggregate, time.Now().UTC()))
	return aggregate, nil
}
