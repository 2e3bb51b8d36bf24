package order

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
)

// ErrInvalidTransition is returned when a requested status change is not a
// permitted edge in the order lifecycle graph. The order is left untouched.
var ErrInvalidTransition = errors.New("invalid status transition")

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure
// orders follow the correct business workflow.
//
// State transitions:
//
//	Pending ──> Confirmed ──> Preparing ──> Ready ──┬──> Assigned ──> OnDelivery ──> Delivered
//	                                                ├──> PickedUp
//	                                                └──> Completed
//
// Cancelled and Refunded are reachable from every non-terminal state.
// Delivered, PickedUp, Completed, Cancelled and Refunded are terminal.
//
// Status is a value object that validates state transitions
// and provides string representations for persistence and display.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when an order is first created.
	Pending

	// Confirmed indicates the branch accepted the order.
	Confirmed

	// Preparing indicates the kitchen started working on the order.
	Preparing

	// Ready indicates the order is ready to leave the branch.
	Ready

	// Assigned indicates a courier was attached to a delivery order.
	Assigned

	// OnDelivery indicates the courier picked the order up and is en route.
	OnDelivery

	// Delivered indicates a delivery order reached the customer. Terminal.
	Delivered

	// PickedUp indicates a pickup order was collected by the customer. Terminal.
	PickedUp

	// Completed indicates a dine-in/table order was served and closed. Terminal.
	Completed

	// Cancelled indicates the order was cancelled before completion. Terminal.
	Cancelled

	// Refunded indicates the order was refunded. Terminal.
	Refunded
)

// getStatusStrings returns a map of Status values to their wire representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "unknown",
		Pending:    "pending",
		Confirmed:  "confirmed",
		Preparing:  "preparing",
		Ready:      "ready",
		Assigned:   "assigned",
		OnDelivery: "on_delivery",
		Delivered:  "delivered",
		PickedUp:   "picked_up",
		Completed:  "completed",
		Cancelled:  "cancelled",
		Refunded:   "refunded",
	}
}

// transitions returns the permitted edge table of the order lifecycle.
// Cancelled and Refunded are handled separately since they are reachable
// from every non-terminal state.
func transitions() map[Status][]Status {
	return map[Status][]Status{
		Pending:    {Confirmed},
		Confirmed:  {Preparing},
		Preparing:  {Ready},
		Ready:      {Assigned, PickedUp, Completed},
		Assigned:   {OnDelivery},
		OnDelivery: {Delivered},
	}
}

// StatusFromString parses a wire representation back into a Status.
// Returns an error for unknown strings, including "unknown" itself.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if s <= Unknown || s > Refunded {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status.
// This method implements the fmt.Stringer interface and is safe
// to call on any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status admits no further transitions.
// Terminal statuses: Delivered, PickedUp, Completed, Cancelled, Refunded.
func (s Status) IsTerminal() bool {
	switch s {
	case Delivered, PickedUp, Completed, Cancelled, Refunded:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether (s, target) is a permitted edge.
// Cancelled and Refunded are reachable from every non-terminal state;
// all other edges come from the transition table.
func (s Status) CanTransitionTo(target Status) bool {
	if s.Validate() != nil || target.Validate() != nil {
		return false
	}

	if target == Cancelled || target == Refunded {
		return !s.IsTerminal()
	}

	for _, next := range transitions()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionTo performs the state change to target.
//
// Returns:
//   - (target, nil) when (s, target) is a permitted edge
//   - (0, ErrInvalidTransition) otherwise, with the offending edge in the message
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return 0, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, target)
	}

	return target, nil
}
