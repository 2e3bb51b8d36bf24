package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// CreateOrderCommandHandler handles order placement.
// For delivery orders without an explicit branch it resolves the serving
// branch from the drop-off location; creation fails with
// services.ErrUnresolvableLocation when neither is available.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	geoRepo    ports.GeoRepository
	resolver   services.BranchResolver
	publisher  ports.EventPublisher
}

// NewCreateOrderCommandHandler creates a handler for order placement.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	geoRepo ports.GeoRepository,
	resolver services.BranchResolver,
	publisher ports.EventPublisher,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		geoRepo:    geoRepo,
		resolver:   resolver,
		publisher:  publisher,
	}
}

// Handle processes the order placement command.
// Persists the new order in pending status and publishes order.created after
// the transaction commits.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	branchID, err := h.resolveBranch(ctx, cmd)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	aggregate, err := order.NewOrder(
		cmd.OrderID(),
		branchID,
		cmd.OrderType(),
		cmd.Items(),
		cmd.CustomerName(),
		cmd.CustomerPhone(),
		cmd.DeliveryLocation(),
		cmd.Actor(),
		now,
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, events.NewOrderCreated(aggregate, now))
	return aggregate, nil
}

func (h CreateOrderCommandHandler) resolveBranch(ctx context.Context, cmd CreateOrderCommand) (kernel.UUID, error) {
	if explicit := cmd.BranchID(); explicit != nil {
		return *explicit, nil
	}

	if cmd.OrderType() != order.TypeDelivery || cmd.DeliveryLocation() == nil {
		return kernel.UUID{}, ErrBranchIsRequired
	}

	branches, err := h.geoRepo.GetActiveBranches(ctx)
	if err != nil {
		return kernel.UUID{}, err
	}

	zones, err := h.geoRepo.GetActiveZones(ctx)
	if err != nil {
		return kernel.UUID{}, err
	}

	resolution, err := h.resolver.ResolveBranchForLocation(*cmd.DeliveryLocation(), branches, zones)
	if err != nil {
		return kernel.UUID{}, err
	}

	return resolution.BranchID, nil
}
