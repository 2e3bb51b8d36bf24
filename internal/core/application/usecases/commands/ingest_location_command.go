package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrIngestLocationCommandIsNotConstructed = errors.New(
	"IngestLocationCommand must be created via NewIngestLocationCommand constructor",
)

// IngestLocationCommand represents a location report from a courier device.
// The timestamp is the device's report time, not the server receive time;
// monotonicity is judged against it.
type IngestLocationCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	point     kernel.GeoPoint
	timestamp time.Time

	guard guard.ConstructorGuard
}

// NewIngestLocationCommand creates a command to ingest a location report.
func NewIngestLocationCommand(courierID kernel.UUID, point kernel.GeoPoint, timestamp time.Time) (IngestLocationCommand, error) {
	cmd := IngestLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCourierID(courierID),
		cmd.setPoint(point),
		cmd.setTimestamp(timestamp),
	); err != nil {
		return IngestLocationCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c IngestLocationCommand) Validate() error {
	return c.guard.Validate(ErrIngestLocationCommandIsNotConstructed)
}

// CourierID returns the reporting courier.
func (c IngestLocationCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Point returns the reported position.
func (c IngestLocationCommand) Point() kernel.GeoPoint {
	return c.point
}

// Timestamp returns the device report time.
func (c IngestLocationCommand) Timestamp() time.Time {
	return c.timestamp
}

func (c *IngestLocationCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	c.courierID = courierID
	return nil
}

func (c *IngestLocationCommand) setPoint(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	c.point = point
	return nil
}

func (c *IngestLocationCommand) setTimestamp(timestamp time.Time) error {
	if timestamp.IsZero() {
		return errs.NewValueIsRequiredError("timestamp")
	}
	c.timestamp = timestamp
	return nil
}
