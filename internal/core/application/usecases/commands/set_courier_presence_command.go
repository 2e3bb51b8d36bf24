package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrSetCourierOnlineCommandIsNotConstructed = errors.New(
		"SetCourierOnlineCommand must be created via NewSetCourierOnlineCommand constructor",
	)
	ErrSetCourierAvailableCommandIsNotConstructed = errors.New(
		"SetCourierAvailableCommand must be created via NewSetCourierAvailableCommand constructor",
	)
)

// SetCourierOnlineCommand represents a courier connecting or disconnecting.
type SetCourierOnlineCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	online    bool

	guard guard.ConstructorGuard
}

// NewSetCourierOnlineCommand creates a command to flip a courier's online flag.
func NewSetCourierOnlineCommand(courierID kernel.UUID, online bool) (SetCourierOnlineCommand, error) {
	if err := courierID.Validate(); err != nil {
		return SetCourierOnlineCommand{}, err
	}

	return SetCourierOnlineCommand{
		courierID: courierID,
		online:    online,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SetCourierOnlineCommand) Validate() error {
	return c.guard.Validate(ErrSetCourierOnlineCommandIsNotConstructed)
}

// CourierID returns the courier to flip.
func (c SetCourierOnlineCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Online returns the requested flag value.
func (c SetCourierOnlineCommand) Online() bool {
	return c.online
}

// SetCourierAvailableCommand represents a courier toggling readiness for
// new assignments.
type SetCourierAvailableCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	available bool

	guard guard.ConstructorGuard
}

// NewSetCourierAvailableCommand creates a command to flip a courier's availability flag.
func NewSetCourierAvailableCommand(courierID kernel.UUID, available bool) (SetCourierAvailableCommand, error) {
	if err := courierID.Validate(); err != nil {
		return SetCourierAvailableCommand{}, err
	}

	return SetCourierAvailableCommand{
		courierID: courierID,
		available: available,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SetCourierAvailableCommand) Validate() error {
	return c.guard.Validate(ErrSetCourierAvailableCommandIsNotConstructed)
}

// CourierID returns the courier to flip.
func (c SetCourierAvailableCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Available returns the requested flag value.
func (c SetCourierAvailableCommand) Available() bool {
	return c.available
}
