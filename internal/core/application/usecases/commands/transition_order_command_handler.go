package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// TransitionOrderCommandHandler moves an order along a permitted lifecycle
// edge. When a delivery completes, the assigned courier is released back to
// available and credited with the delivery inside the same transaction.
//
// Failed guards reject the command with order.ErrInvalidTransition and leave
// the order untouched; a concurrent writer surfaces as
// errs.ErrConcurrencyConflict through the optimistic repository update.
type TransitionOrderCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
}

// NewTransitionOrderCommandHandler creates a handler for lifecycle transitions.
func NewTransitionOrderCommandHandler(uowFactory UoWFactory, publisher ports.EventPublisher) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the transition command and returns the updated order.
func (h TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (*order.Order, error) {
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
	if err = aggregate.TransitionTo(cmd.Target(), cmd.Actor(), cmd.Note(), now); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return nil, err
	}

	released, err := h.releaseCourierOnDelivered(ctx, uow, aggregate)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, events.NewOrderStatusChanged(aggregate, previous, cmd.Actor(), cmd.Note(), now))
	if released != nil {
		h.publisher.Publish(ctx, events.NewCourierPresenceChanged(released, now))
	}

	return aggregate, nil
}

// releaseCourierOnDelivered frees the assigned courier when the order reaches
// Delivered: availability returns to true and the delivery counter increments.
// Both writes ride the transition's transaction.
func (h TransitionOrderCommandHandler) releaseCourierOnDelivered(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
) (*courier.Courier, error) {
	if aggregate.Status() != order.Delivered || aggregate.Courier() == nil {
		return nil, nil
	}

	assigned, err := uow.CourierRepository().Get(ctx, *aggregate.Courier())
	if err != nil {
		return nil, err
	}

	assigned.SetAvailable(true)
	assigned.RecordDelivery()

	if err = uow.CourierRepository().Update(ctx, assigned); err != nil {
		return nil, err
	}

	return assigned, nil
}
