package events

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// Type identifies the kind of a domain event on the wire.
type Type string

// Event types pushed to branch rooms and the notification pipeline.
const (
	OrderCreated           Type = "order.created"
	OrderStatusChanged     Type = "order.status_changed"
	CourierPresenceChanged Type = "courier.presence_changed"
	CourierLocationChanged Type = "courier.location_changed"

	// BranchSnapshot carries a full branch state push. It is emitted by the
	// periodic snapshot job, not by a mutation.
	BranchSnapshot Type = "branch.snapshot"
)

// Event is an ephemeral domain event. Events are never persisted as their own
// record: they exist only transiently inside the fan-out call, and a
// disconnected subscriber compensates through the periodic resync snapshot.
type Event struct {
	BranchID  kernel.UUID `json:"branchId"`
	Type      Type        `json:"type"`
	Payload   any         `json:"payload"`
	EmittedAt time.Time   `json:"emittedAt"`
}

// OrderPayload is the payload of order lifecycle events.
type OrderPayload struct {
	OrderID        string  `json:"orderId"`
	OrderType      string  `json:"orderType"`
	Status         string  `json:"status"`
	PreviousStatus string  `json:"previousStatus,omitempty"`
	CourierID      *string `json:"courierId,omitempty"`
	CustomerName   string  `json:"customerName"`
	CustomerPhone  string  `json:"customerPhone,omitempty"`
	Total          float64 `json:"total"`
	Actor          string  `json:"actor,omitempty"`
	Note           string  `json:"note,omitempty"`
}

// PresencePayload is the payload of courier.presence_changed events.
type PresencePayload struct {
	CourierID   string `json:"courierId"`
	IsOnline    bool   `json:"isOnline"`
	IsAvailable bool   `json:"isAvailable"`
}

// LocationPayload is the payload of courier.location_changed events.
type LocationPayload struct {
	CourierID string    `json:"courierId"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewOrderCreated builds an order.created event from a freshly placed order.
func NewOrderCreated(o *order.Order, now time.Time) Event {
	return Event{
		BranchID:  o.BranchID(),
		Type:      OrderCreated,
		Payload:   orderPayload(o, "", "", ""),
		EmittedAt: now,
	}
}

// NewOrderStatusChanged builds an order.status_changed event carrying the
// previous status alongside the current one.
func NewOrderStatusChanged(o *order.Order, previous order.Status, actor string, note string, now time.Time) Event {
	return Event{
		BranchID:  o.BranchID(),
		Type:      OrderStatusChanged,
		Payload:   orderPayload(o, previous.String(), actor, note),
		EmittedAt: now,
	}
}

// NewCourierPresenceChanged builds a courier.presence_changed event from the
// courier's current flags.
func NewCourierPresenceChanged(c *courier.Courier, now time.Time) Event {
	return Event{
		BranchID: c.BranchID(),
		Type:     CourierPresenceChanged,
		Payload: PresencePayload{
			CourierID:   c.ID().String(),
			IsOnline:    c.IsOnline(),
			IsAvailable: c.IsAvailable(),
		},
		EmittedAt: now,
	}
}

// NewCourierLocationChanged builds a courier.location_changed event from the
// courier's last accepted report. The courier must carry a location.
func NewCourierLocationChanged(c *courier.Courier, now time.Time) Event {
	loc := c.Location()
	return Event{
		BranchID: c.BranchID(),
		Type:     CourierLocationChanged,
		Payload: LocationPayload{
			CourierID: c.ID().String(),
			Lat:       loc.Point().Lat(),
			Lon:       loc.Point().Lon(),
			UpdatedAt: loc.UpdatedAt(),
		},
		EmittedAt: now,
	}
}

func orderPayload(o *order.Order, previousStatus string, actor string, note string) OrderPayload {
	payload := OrderPayload{
		OrderID:        o.ID().String(),
		OrderType:      o.OrderType().String(),
		Status:         o.Status().String(),
		PreviousStatus: previousStatus,
		CustomerName:   o.CustomerName(),
		CustomerPhone:  o.CustomerPhone(),
		Total:          o.Total(),
		Actor:          actor,
		Note:           note,
	}

	if courierID := o.Courier(); courierID != nil {
		id := courierID.String()
		payload.CourierID = &id
	}

	return payload
}
