package courier

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// StalenessWindow is the threshold beyond which a courier's last known
// location is considered untrustworthy.
const StalenessWindow = 5 * time.Minute

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier or RestoreCourier constructor")
	// ErrCourierNotAssignable is returned when a courier cannot take an assignment:
	// offline, unavailable, or attached to a different branch.
	ErrCourierNotAssignable = errors.New("courier cannot take an assignment")
)

// Courier represents a delivery courier in the system.
// It is an aggregate root that manages courier identity and presence: the
// online/available flags and the last reported location.
//
// Business rules:
//   - Online and available are independently toggleable flags; the domain does
//     not couple them (a courier may be flagged available while offline)
//   - The tracked location is replaced wholesale on each accepted report,
//     never merged field by field
//   - Location timestamps are monotonically non-decreasing: a report older
//     than the stored one is rejected, not reordered
//   - Staleness is derived from the clock at read time, never stored
//
// Example usage:
//
//	c, err := NewCourier(kernel.NewUUID(), branchID, "Alice")
//	if err != nil {
//	    // Handle construction error
//	}
//	c.SetOnline(true)
//	c.SetAvailable(true)
//	accepted := c.IngestLocation(point, time.Now())
type Courier struct {
	// id uniquely identifies the courier
	id kernel.UUID
	// branchID is the branch the courier serves
	branchID kernel.UUID
	// name is the human-readable name of the courier
	name string
	// isOnline reports whether the courier's device is connected
	isOnline bool
	// isAvailable reports whether the courier can take a new assignment
	isAvailable bool
	// location is the last accepted location report (nil until the first report)
	location *TrackedLocation
	// rating is the courier's average customer rating
	rating float64
	// totalDeliveries counts completed deliveries
	totalDeliveries int
	// version supports optimistic concurrency control in storage
	version int
	// guard ensures the courier was properly constructed
	guard guard.ConstructorGuard
}

// NewCourier creates a new Courier attached to a branch.
// The courier starts offline, unavailable and with no tracked location.
func NewCourier(id kernel.UUID, branchID kernel.UUID, name string) (*Courier, error) {
	c := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setBranchID(branchID),
		c.setName(name),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage,
// including presence flags, last location, counters and version. The restored
// courier behaves identically to one mutated through normal domain operations.
func RestoreCourier(
	id kernel.UUID,
	branchID kernel.UUID,
	name string,
	isOnline bool,
	isAvailable bool,
	location *TrackedLocation,
	rating float64,
	totalDeliveries int,
	version int,
) (*Courier, error) {
	c := &Courier{
		isOnline:        isOnline,
		isAvailable:     isAvailable,
		rating:          rating,
		totalDeliveries: totalDeliveries,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setBranchID(branchID),
		c.setName(name),
		c.setVersion(version),
	); err != nil {
		return nil, err
	}

	if location != nil {
		if err := location.Validate(); err != nil {
			return nil, err
		}
		cp := *location
		c.location = &cp
	}

	return c, nil
}

// Validate checks if the Courier was properly constructed using a constructor.
// The zero value of Courier is invalid and will fail this validation.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// IsEqual compares two couriers for equality based on their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	if other == nil {
		return false
	}
	return c.id.IsEqual(other.id)
}

// ID returns the unique identifier of the courier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// BranchID returns the branch the courier serves.
func (c *Courier) BranchID() kernel.UUID {
	return c.branchID
}

// Name returns the human-readable name of the courier.
func (c *Courier) Name() string {
	return c.name
}

// IsOnline reports whether the courier's device is connected.
func (c *Courier) IsOnline() bool {
	return c.isOnline
}

// IsAvailable reports whether the courier can take a new assignment.
func (c *Courier) IsAvailable() bool {
	return c.isAvailable
}

// Location returns the last accepted location report, or nil if the courier
// never reported one. The returned value is a copy.
func (c *Courier) Location() *TrackedLocation {
	if c.location == nil {
		return nil
	}
	cp := *c.location
	return &cp
}

// Rating returns the courier's average customer rating.
func (c *Courier) Rating() float64 {
	return c.rating
}

// TotalDeliveries returns the number of completed deliveries.
func (c *Courier) TotalDeliveries() int {
	return c.totalDeliveries
}

// Version returns the optimistic concurrency version loaded from storage.
// Fresh couriers start at version 0; storage increments it on every update.
func (c *Courier) Version() int {
	return c.version
}

// SetOnline flips the online flag. The operation is idempotent: setting the
// current value again succeeds and callers still emit a presence event.
func (c *Courier) SetOnline(online bool) {
	c.isOnline = online
}

// SetAvailable flips the availability flag. The operation is idempotent:
// setting the current value again succeeds and callers still emit a presence event.
func (c *Courier) SetAvailable(available bool) {
	c.isAvailable = available
}

// IngestLocation records a location report.
//
// A report whose timestamp is not strictly newer than the stored one is
// rejected: the method returns false and the courier is left untouched.
// This is the primary defense against out-of-order delivery from an
// unreliable transport. Accepted reports replace the stored location
// wholesale and return true.
func (c *Courier) IngestLocation(point kernel.GeoPoint, timestamp time.Time) (bool, error) {
	if err := point.Validate(); err != nil {
		return false, err
	}

	if c.location != nil && !timestamp.After(c.location.UpdatedAt()) {
		return false, nil
	}

	loc, err := NewTrackedLocation(point, timestamp)
	if err != nil {
		return false, err
	}

	c.location = &loc
	return true, nil
}

// IsStale reports whether the courier's last known location is untrustworthy
// at the given instant. A courier with no location report at all is stale.
// The result is computed from now at call time and never cached.
//
// The boundary is inclusive: exactly StalenessWindow after the last report the
// courier is already stale.
func (c *Courier) IsStale(now time.Time) bool {
	if c.location == nil {
		return true
	}
	return now.Sub(c.location.UpdatedAt()) >= StalenessWindow
}

// ValidateAssignable checks that the courier can take an assignment for an
// order served by branchID: the courier must be online, available and attached
// to that same branch. Returns ErrCourierNotAssignable (wrapped with the
// failing condition) otherwise.
func (c *Courier) ValidateAssignable(branchID kernel.UUID) error {
	if !c.isOnline {
		return fmt.Errorf("%w: courier %s is offline", ErrCourierNotAssignable, c.id)
	}
	if !c.isAvailable {
		return fmt.Errorf("%w: courier %s is not available", ErrCourierNotAssignable, c.id)
	}
	if !c.branchID.IsEqual(branchID) {
		return fmt.Errorf("%w: courier %s serves a different branch", ErrCourierNotAssignable, c.id)
	}
	return nil
}

// RecordDelivery increments the completed-delivery counter.
func (c *Courier) RecordDelivery() {
	c.totalDeliveries++
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setBranchID(branchID kernel.UUID) error {
	if err := branchID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("branchId", err)
	}
	c.branchID = branchID
	return nil
}

func (c *Courier) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Courier) setVersion(version int) error {
	if version < 0 {
		return errs.NewVersionIsInvalidError("version")
	}
	c.version = version
	return nil
}
