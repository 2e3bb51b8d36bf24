package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/events"
)

// Message is the wire shape pushed onto a notification exchange.
type Message struct {
	OrderID   string    `json:"orderId,omitempty"`
	CourierID string    `json:"courierId,omitempty"`
	Status    string    `json:"status,omitempty"`
	Text      string    `json:"text"`
	EmittedAt time.Time `json:"emittedAt"`
}

type templateKey struct {
	eventType events.Type
	orderType string
}

type dedupKey struct {
	orderID string
	status  string
}

// customerTemplates is the per-(eventType, orderType) customer-facing text.
// Order types without a dedicated entry fall back to the empty orderType row.
var customerTemplates = map[templateKey]string{
	{events.OrderCreated, "delivery"}: "Your order is confirmed and will be delivered to your address.",
	{events.OrderCreated, "pickup"}:   "Your order is confirmed. We'll let you know when it's ready to pick up.",
	{events.OrderCreated, ""}:         "Your order is confirmed.",

	{events.OrderStatusChanged, "delivery"}: "Your delivery order is now %s.",
	{events.OrderStatusChanged, "pickup"}:   "Your pickup order is now %s.",
	{events.OrderStatusChanged, ""}:         "Your order is now %s.",
}

// Dispatcher turns lifecycle and presence events into channel-specific
// outbound messages. Lifecycle events always notify the order's customer
// channel; assignment and presence events additionally notify the courier
// channel. A retried emission of the same (orderId, status) transition is
// suppressed so the customer never receives the same message twice.
type Dispatcher struct {
	publisher AmqpPublisher
	logger    *slog.Logger

	mu   sync.Mutex
	seen map[dedupKey]struct{}
}

// NewDispatcher creates a dispatcher over the given broker surface.
func NewDispatcher(publisher AmqpPublisher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		publisher: publisher,
		logger:    logger.With("component", "notification_dispatcher"),
		seen:      make(map[dedupKey]struct{}),
	}
}

// Publish implements ports.EventPublisher.
func (d *Dispatcher) Publish(ctx context.Context, event events.Event) {
	switch event.Type {
	case events.OrderCreated, events.OrderStatusChanged:
		d.dispatchLifecycle(ctx, event)
	case events.CourierPresenceChanged:
		d.dispatchPresence(ctx, event)
	case events.CourierLocationChanged:
		// Location ticks are streamed to admin consoles through the branch
		// room; they carry no customer- or courier-facing message.
	}
}

func (d *Dispatcher) dispatchLifecycle(ctx context.Context, event events.Event) {
	payload, ok := event.Payload.(events.OrderPayload)
	if !ok {
		d.logger.ErrorContext(ctx, "lifecycle event carries unexpected payload",
			"event_type", string(event.Type))
		return
	}

	if d.alreadySent(payload.OrderID, payload.Status) {
		d.logger.DebugContext(ctx, "duplicate transition suppressed",
			"order_id", payload.OrderID, "status", payload.Status)
		return
	}

	message := Message{
		OrderID:   payload.OrderID,
		Status:    payload.Status,
		Text:      renderCustomerText(event.Type, payload),
		EmittedAt: event.EmittedAt,
	}
	d.send(ctx, CustomerExchange, string(event.Type), message)

	// The assignment transition is the courier's marching order.
	if payload.Status == "assigned" && payload.CourierID != nil {
		courierMessage := Message{
			OrderID:   payload.OrderID,
			CourierID: *payload.CourierID,
			Status:    payload.Status,
			Text:      fmt.Sprintf("New delivery assigned: order %s.", payload.OrderID),
			EmittedAt: event.EmittedAt,
		}
		d.send(ctx, CourierExchange, string(event.Type), courierMessage)
	}
}

func (d *Dispatcher) dispatchPresence(ctx context.Context, event events.Event) {
	payload, ok := event.Payload.(events.PresencePayload)
	if !ok {
		d.logger.ErrorContext(ctx, "presence event carries unexpected payload",
			"event_type", string(event.Type))
		return
	}

	message := Message{
		CourierID: payload.CourierID,
		Text:      presenceText(payload),
		EmittedAt: event.EmittedAt,
	}
	d.send(ctx, CourierExchange, string(event.Type), message)
}

// alreadySent records the (orderId, status) idempotency key, reporting whether
// it had been recorded before.
func (d *Dispatcher) alreadySent(orderID string, status string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := dedupKey{orderID: orderID, status: status}
	if _, dup := d.seen[key]; dup {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *Dispatcher) send(ctx context.Context, exchange string, key string, message Message) {
	body, err := json.Marshal(message)
	if err != nil {
		d.logger.ErrorContext(ctx, "notification not delivered", "exchange", exchange, "error", err)
		return
	}

	if err := d.publisher.Publish(ctx, exchange, key, body); err != nil {
		d.logger.ErrorContext(ctx, "notification not delivered", "exchange", exchange, "error", err)
		return
	}

	d.logger.DebugContext(ctx, "notification delivered", "exchange", exchange, "routing_key", key)
}

func renderCustomerText(eventType events.Type, payload events.OrderPayload) string {
	template, ok := customerTemplates[templateKey{eventType: eventType, orderType: payload.OrderType}]
	if !ok {
		template = customerTemplates[templateKey{eventType: eventType, orderType: ""}]
	}

	if eventType == events.OrderStatusChanged {
		return fmt.Sprintf(template, payload.Status)
	}
	return template
}

func presenceText(payload events.PresencePayload) string {
	switch {
	case !payload.IsOnline:
		return "You are offline. New deliveries are paused."
	case payload.IsAvailable:
		return "You are online and available for deliveries."
	default:
		return "You are online. Finish your current delivery to receive the next one."
	}
}
