package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrAssignmentConflict is returned when the courier cannot take the
// assignment at commit time: offline, unavailable, attached to a different
// branch, or flipped by a concurrent writer. The whole assignment is rolled
// back; no state is left half-applied.
var ErrAssignmentConflict = errors.New("courier assignment conflict")

// AssignCourierCommandHandler attaches a courier to a delivery order.
//
// The order write and the courier's availability flip are two steps of one
// transaction. Both rows carry an optimistic version check, so when two
// admins race to assign the same courier or the same order exactly one
// transaction commits; the loser observes a version mismatch, rolls back
// anything already written and returns ErrAssignmentConflict.
type AssignCourierCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
}

// NewAssignCourierCommandHandler creates a handler for courier assignment.
func NewAssignCourierCommandHandler(uowFactory UoWFactory, publisher ports.EventPublisher) AssignCourierCommandHandler {
	return AssignCourierCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the assignment command and returns the updated order.
//
// On success the order is Assigned with the courier attached, the courier's
// isAvailable is false, and exactly one order.status_changed plus one
// courier.presence_changed event are published to the order's branch room.
func (h AssignCourierCommandHandler) Handle(ctx context.Context, cmd AssignCourierCommand) (*order.Order, error) {
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

	assigned, err := uow.CourierRepository().Get(ctx, cmd.CourierID())
	if err != nil {
		return nil, err
	}

	if err = assigned.ValidateAssignable(aggregate.BranchID()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssignmentConflict, err)
	}

	previous := aggregate.Status()
	now := time.Now().UTC()
	if err = aggregate.AssignCourier(cmd.CourierID(), cmd.Actor(), now); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		if errors.Is(err, errs.ErrConcurrencyConflict) {
			return nil, fmt.Errorf("%w: %w", ErrAssignmentConflict, err)
		}
		return nil, err
	}

	assigned.SetAvailable(false)
	if err = uow.CourierRepository().Update(ctx, assigned); err != nil {
		if errors.Is(err, errs.ErrConcurrencyConflict) {
			return nil, fmt.Errorf("%w: %w", ErrAssignmentConflict, err)
		}
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		if errors.Is(err, errs.ErrConcurrencyConflict) {
			return nil, fmt.Errorf("%w: %w", ErrAssignmentConflict, err)
		}
		return nil, err
	}

	h.publisher.Publish(ctx, events.NewOrderStatusChanged(aggregate, previous, cmd.Actor(), "", now))
	h.publisher.Publish(ctx, events.NewCourierPresenceChanged(assigned, now))

	return aggregate, nil
}
