package order

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder or RestoreOrder factory methods. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrCourierAlreadyAssigned is returned when assigning a courier to an order
	// that already carries a live assignment.
	ErrCourierAlreadyAssigned = errors.New("order already has a courier assigned")

	// ErrNotAssignable is returned when a courier assignment is requested outside
	// the assignable window (status must be confirmed, preparing or ready) or for
	// a non-delivery order.
	ErrNotAssignable = errors.New("order cannot take a courier assignment in its current state")

	// ErrDeliveryLocationRequired is returned when a delivery order is created
	// without a delivery location.
	ErrDeliveryLocationRequired = errors.New("delivery orders require a delivery location")
)

// HistoryEntry is one row of an order's append-only status history.
// The entry at the tail of the history always matches the order's current status.
type HistoryEntry struct {
	Status Status
	Actor  string
	Note   string
	At     time.Time
}

// Order represents a customer order in the system. It is the aggregate root that
// manages the order lifecycle from placement through preparation to fulfilment.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and branch
//   - Must have at least one item
//   - Status transitions follow the lifecycle edge table
//   - Status history is append-only; its last entry always equals the current status
//   - At most one live (non-cancelled) courier assignment at any time
//   - Orders are never deleted, only transitioned to a terminal status
//
// The Order struct uses private fields to ensure encapsulation and maintains
// its invariants through validated methods.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// branchID is the branch serving this order
	branchID kernel.UUID

	// orderType distinguishes delivery/pickup/dine-in/table fulfilment
	orderType Type

	// items are the order lines (at least one)
	items []Item

	// customerName and customerPhone identify the ordering customer
	customerName  string
	customerPhone string

	// status represents the current state in the order lifecycle
	status Status

	// courierID is the assigned courier's ID (nil if unassigned)
	courierID *kernel.UUID

	// deliveryLocation is the drop-off point (delivery orders only)
	deliveryLocation *kernel.GeoPoint

	// history is the append-only status trail
	history []HistoryEntry

	// createdAt is the placement time
	createdAt time.Time

	// version supports optimistic concurrency control in storage
	version int

	// guard ensures the order was created via a constructor
	guard guard.ConstructorGuard
}

// NewOrder creates a new Order in Pending status and records the first history entry.
// This is the only way to create a fresh Order, ensuring all business invariants hold.
//
// Parameters:
//   - id: Unique identifier for the order
//   - branchID: The serving branch (already resolved by the caller)
//   - orderType: Fulfilment kind; delivery orders must supply deliveryLocation
//   - items: Order lines (at least one)
//   - customerName, customerPhone: Customer contact captured at order time
//   - deliveryLocation: Drop-off point, required iff orderType is TypeDelivery
//   - actor: Who placed the order, recorded in the first history entry
//   - now: Placement timestamp
func NewOrder(
	id kernel.UUID,
	branchID kernel.UUID,
	orderType Type,
	items []Item,
	customerName string,
	customerPhone string,
	deliveryLocation *kernel.GeoPoint,
	actor string,
	now time.Time,
) (*Order, error) {
	o := &Order{
		createdAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setBranchID(branchID),
		o.setOrderType(orderType),
		o.setItems(items),
		o.setCustomer(customerName, customerPhone),
		o.setDeliveryLocation(deliveryLocation),
	); err != nil {
		return nil, err
	}

	o.applyStatus(Pending, actor, "", now)
	return o, nil
}

// RestoreOrder reconstructs an Order aggregate from persistent storage.
// Unlike NewOrder, this constructor restores the order to its previously persisted
// state including status, history, courier assignment and version. The restored
// order behaves identically to one built through normal domain operations.
func RestoreOrder(
	id kernel.UUID,
	branchID kernel.UUID,
	orderType Type,
	items []Item,
	customerName string,
	customerPhone string,
	deliveryLocation *kernel.GeoPoint,
	status Status,
	courierID *kernel.UUID,
	history []HistoryEntry,
	createdAt time.Time,
	version int,
) (*Order, error) {
	o := &Order{
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setBranchID(branchID),
		o.setOrderType(orderType),
		o.setItems(items),
		o.setCustomer(customerName, customerPhone),
		o.setDeliveryLocation(deliveryLocation),
		o.setStatus(status),
		o.setHistory(history),
		o.setVersion(version),
	); err != nil {
		return nil, err
	}

	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return nil, err
		}
		cp := *courierID
		o.courierID = &cp
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed through a constructor.
// This prevents bypassing validation by directly instantiating the struct.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// BranchID returns the serving branch's identifier.
func (o *Order) BranchID() kernel.UUID {
	return o.branchID
}

// OrderType returns the fulfilment kind of the order.
func (o *Order) OrderType() Type {
	return o.orderType
}

// Items returns the order lines. The returned slice is a copy to prevent
// external modification.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// CustomerName returns the customer name captured at order time.
func (o *Order) CustomerName() string {
	return o.customerName
}

// CustomerPhone returns the customer phone captured at order time.
func (o *Order) CustomerPhone() string {
	return o.customerPhone
}

// Total returns the sum of all line totals.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.items {
		total += item.LineTotal()
	}
	return total
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Courier returns the assigned courier's ID.
// Returns nil if no courier is assigned.
func (o *Order) Courier() *kernel.UUID {
	return o.courierID
}

// DeliveryLocation returns the drop-off point of a delivery order.
// Returns nil for non-delivery orders.
func (o *Order) DeliveryLocation() *kernel.GeoPoint {
	return o.deliveryLocation
}

// History returns the append-only status history. The returned slice is a copy
// to prevent external modification.
func (o *Order) History() []HistoryEntry {
	out := make([]HistoryEntry, len(o.history))
	copy(out, o.history)
	return out
}

// CreatedAt returns the placement time.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// Version returns the optimistic concurrency version loaded from storage.
// Fresh orders start at version 0; storage increments it on every update.
func (o *Order) Version() int {
	return o.version
}

// TransitionTo moves the order along a permitted lifecycle edge and appends a
// history entry. On failure the order is left completely untouched.
//
// Returns ErrInvalidTransition (wrapped with the offending edge) when
// (current, target) is not a permitted edge.
func (o *Order) TransitionTo(target Status, actor string, note string, now time.Time) error {
	newStatus, err := o.status.TransitionTo(target)
	if err != nil {
		return err
	}

	o.applyStatus(newStatus, actor, note, now)
	return nil
}

// AssignCourier attaches a courier to the order and transitions it to Assigned.
//
// Business rules:
//   - Only delivery orders take courier assignments
//   - The order must be in Confirmed, Preparing or Ready status
//   - The order must not already carry a live assignment
//
// The courier's own availability flip is the caller's responsibility; the two
// writes are committed together or not at all.
func (o *Order) AssignCourier(courierID kernel.UUID, actor string, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	if o.orderType != TypeDelivery {
		return ErrNotAssignable
	}

	if o.courierID != nil {
		return ErrCourierAlreadyAssigned
	}

	switch o.status {
	case Confirmed, Preparing, Ready:
	default:
		return ErrNotAssignable
	}

	o.courierID = &courierID
	o.applyStatus(Assigned, actor, "", now)
	return nil
}

// Cancel transitions the order to Cancelled from any non-terminal state and
// records the reason in the history note. The courier reference is retained for
// audit; releasing the courier's availability is the caller's responsibility.
func (o *Order) Cancel(reason string, actor string, now time.Time) error {
	newStatus, err := o.status.TransitionTo(Cancelled)
	if err != nil {
		return err
	}

	o.applyStatus(newStatus, actor, reason, now)
	return nil
}

// applyStatus is the single write path for status changes. It keeps the
// invariant that the history tail always equals the current status.
func (o *Order) applyStatus(status Status, actor string, note string, at time.Time) {
	o.status = status
	o.history = append(o.history, HistoryEntry{
		Status: status,
		Actor:  actor,
		Note:   note,
		At:     at,
	})
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setBranchID(branchID kernel.UUID) error {
	if err := branchID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("branchId", err)
	}
	o.branchID = branchID
	return nil
}

func (o *Order) setOrderType(orderType Type) error {
	if err := orderType.Validate(); err != nil {
		return err
	}
	o.orderType = orderType
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setCustomer(name string, phone string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("customerName")
	}

	o.customerName = name
	o.customerPhone = phone
	return nil
}

func (o *Order) setDeliveryLocation(location *kernel.GeoPoint) error {
	if o.orderType == TypeDelivery {
		if location == nil {
			return ErrDeliveryLocationRequired
		}
		if err := location.Validate(); err != nil {
			return err
		}
		cp := *location
		o.deliveryLocation = &cp
		return nil
	}

	// Non-delivery orders carry no drop-off point.
	o.deliveryLocation = nil
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func (o *Order) setHistory(history []HistoryEntry) error {
	if len(history) == 0 {
		return errs.NewValueIsRequiredError("statusHistory")
	}

	if history[len(history)-1].Status != o.status {
		return errs.NewValueIsInvalidError("statusHistory tail does not match status")
	}

	o.history = make([]HistoryEntry, len(history))
	copy(o.history, history)
	return nil
}

func (o *Order) setVersion(version int) error {
	if version < 0 {
		return errs.NewVersionIsInvalidError("version")
	}
	o.version = version
	return nil
}
