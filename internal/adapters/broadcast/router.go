// Package broadcast implements the branch-room fan-out for domain events.
//
// A Room is a branchId-scoped multicast group. Membership is created on the
// first join and evaporates when the last member leaves; there is no explicit
// destroy step. Events are never buffered for absent subscribers: a client
// that reconnects recovers missed state through the resync snapshot, not
// through replay.
package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/kernel"
)

// defaultSubscriberBuffer is the per-subscriber channel capacity. A subscriber
// whose buffer is full at publish time is considered broken and is evicted.
const defaultSubscriberBuffer = 64

// Subscriber is one connected room member. Events arrive on the channel
// returned by Events; the channel is closed when the subscriber is evicted or
// closed, which ends the consumer's receive loop.
type Subscriber struct {
	events chan events.Event
	once   sync.Once
}

// NewSubscriber creates a subscriber with the default buffer capacity.
func NewSubscriber() *Subscriber {
	return &Subscriber{
		events: make(chan events.Event, defaultSubscriberBuffer),
	}
}

// Events returns the subscriber's receive channel.
func (s *Subscriber) Events() <-chan events.Event {
	return s.events
}

func (s *Subscriber) close() {
	s.once.Do(func() {
		close(s.events)
	})
}

// Router fans domain events out to the subscribers of the emitting branch's
// room. Delivery is best-effort and isolated: a slow or broken subscriber is
// evicted from the room and never blocks delivery to the others, nor does it
// fail the publish call.
//
// Ordering within a room follows publish order because command handlers
// publish synchronously inside their own mutation. Router makes no ordering
// promise across rooms.
type Router struct {
	mu     sync.Mutex
	rooms  map[kernel.UUID]map[*Subscriber]struct{}
	logger *slog.Logger
}

// NewRouter creates an empty router.
func NewRouter(logger *slog.Logger) *Router {
	return &Router{
		rooms:  make(map[kernel.UUID]map[*Subscriber]struct{}),
		logger: logger.With("component", "broadcast_router"),
	}
}

// Join adds the subscriber to the branch room, creating the room on first
// join. Joining a room the subscriber is already a member of is a no-op.
func (r *Router) Join(branchID kernel.UUID, subscriber *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[branchID]
	if !ok {
		room = make(map[*Subscriber]struct{})
		r.rooms[branchID] = room
	}
	room[subscriber] = struct{}{}
}

// Leave removes the subscriber from the branch room and closes its channel.
// The room itself is dropped when its last member leaves.
func (r *Router) Leave(branchID kernel.UUID, subscriber *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.remove(branchID, subscriber)
}

// Publish delivers the event to every subscriber currently joined to the
// emitting branch's room. Publish never blocks and never fails: a subscriber
// that cannot accept the event immediately is evicted.
func (r *Router) Publish(ctx context.Context, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[event.BranchID]
	if !ok {
		return
	}

	for subscriber := range room {
		select {
		case subscriber.events <- event:
		default:
			r.remove(event.BranchID, subscriber)
			r.logger.WarnContext(ctx, "slow subscriber evicted from room",
				"branch_id", event.BranchID.String(),
				"event_type", string(event.Type))
		}
	}
}

// remove must be called with the mutex held.
func (r *Router) remove(branchID kernel.UUID, subscriber *Subscriber) {
	room, ok := r.rooms[branchID]
	if !ok {
		return
	}
	if _, member := room[subscriber]; !member {
		return
	}

	delete(room, subscriber)
	subscriber.close()
	if len(room) == 0 {
		delete(r.rooms, branchID)
	}
}
