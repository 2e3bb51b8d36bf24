package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	// ErrBranchIsRequired is returned when a non-delivery order is placed
	// without an explicit branch. Only delivery orders can have their branch
	// resolved from the drop-off location.
	ErrBranchIsRequired = errors.New("branchId is required for non-delivery orders")
)

// CreateOrderCommand represents a request to place a new order.
// The branch is optional for delivery orders: when absent, the handler
// resolves it from the delivery location.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(
//	    kernel.NewUUID(), nil, order.TypeDelivery, items,
//	    "Alice", "+998901234567", &dropOff, "customer",
//	)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID          kernel.UUID
	branchID         *kernel.UUID
	orderType        order.Type
	items            []order.Item
	customerName     string
	customerPhone    string
	deliveryLocation *kernel.GeoPoint
	actor            string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to place a new order.
// Validates identifiers, order type and items; the delivery-location and
// branch requirements are enforced by the handler and the Order constructor.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	branchID *kernel.UUID,
	orderType order.Type,
	items []order.Item,
	customerName string,
	customerPhone string,
	deliveryLocation *kernel.GeoPoint,
	actor string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		customerPhone: customerPhone,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setBranchID(branchID),
		cmd.setOrderType(orderType),
		cmd.setItems(items),
		cmd.setCustomerName(customerName),
		cmd.setDeliveryLocation(deliveryLocation),
		cmd.setActor(actor),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier assigned to the new order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// BranchID returns the explicitly chosen branch, or nil when the handler
// should resolve one from the delivery location.
func (c CreateOrderCommand) BranchID() *kernel.UUID {
	return c.branchID
}

// OrderType returns the fulfilment kind of the order.
func (c CreateOrderCommand) OrderType() order.Type {
	return c.orderType
}

// Items returns the order lines.
func (c CreateOrderCommand) Items() []order.Item {
	out := make([]order.Item, len(c.items))
	copy(out, c.items)
	return out
}

// CustomerName returns the customer name.
func (c CreateOrderCommand) CustomerName() string {
	return c.customerName
}

// CustomerPhone returns the customer phone.
func (c CreateOrderCommand) CustomerPhone() string {
	return c.customerPhone
}

// DeliveryLocation returns the drop-off point for delivery orders.
func (c CreateOrderCommand) DeliveryLocation() *kernel.GeoPoint {
	return c.deliveryLocation
}

// Actor returns who placed the order, recorded in the first history entry.
func (c CreateOrderCommand) Actor() string {
	return c.actor
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setBranchID(branchID *kernel.UUID) error {
	if branchID == nil {
		return nil
	}
	if err := branchID.Validate(); err != nil {
		return err
	}
	cp := *branchID
	c.branchID = &cp
	return nil
}

func (c *CreateOrderCommand) setOrderType(orderType order.Type) error {
	if err := orderType.Validate(); err != nil {
		return err
	}
	c.orderType = orderType
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	c.items = make([]order.Item, len(items))
	copy(c.items, items)
	return nil
}

func (c *CreateOrderCommand) setCustomerName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("customerName")
	}
	c.customerName = name
	return nil
}

func (c *CreateOrderCommand) setDeliveryLocation(location *kernel.GeoPoint) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	cp := *location
	c.deliveryLocation = &cp
	return nil
}

func (c *CreateOrderCommand) setActor(actor string) error {
	if actor == "" {
		return errs.NewValueIsRequiredError("actor")
	}
	c.actor = actor
	return nil
}
