package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// CancelOrderCommandHandler cancels an order from any non-terminal state.
// If a courier was assigned, it is released back to available as part of the
// same logical operation: both writes share one transaction.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(uowFactory UoWFactory, publisher ports.EventPublisher) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the cancellation command and returns the updated order.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	previous := aggregate.Status()
	now := time.Now().UTC()
	if err = aggregate.Cancel(cmd.Reason(), cmd.Actor(), now); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return nil, err
	}

	var released *courier.Courier
	if aggregate.Courier() != nil {
		released, err = h.releaseCourier(ctx, uow, *aggregate.Courier())
		if err != nil {
			return nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, events.NewOrderStatusChanged(aggregate, previous, cmd.Actor(), cmd.Reason(), now))
	if released != nil {
		h.publisher.Publish(ctx, events.NewCourierPresenceChanged(released, now))
	}

	return aggregate, nil
}

func (h CancelOrderCommandHandler) releaseCourier(ctx context.Context, uow UoW, courierID kernel.UUID) (*courier.Courier, error) {
	released, err := uow.CourierRepository().Get(ctx, courierID)
	if err != nil {
		return nil, err
	}

	released.SetAvailable(true)
	if err = uow.CourierRepository().Update(ctx, released); err != nil {
		return nil, err
	}

	return released, nil
}
