package geo

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrZoneIsNotConstructed is returned when using an improperly initialized DeliveryZone.
var ErrZoneIsNotConstructed = errors.New("DeliveryZone must be created via NewDeliveryZone constructor")

// DeliveryZone maps a geographic boundary to the branch that serves it.
// Overlapping zones are disambiguated by ascending priority, then by smaller
// area, then by lowest zone ID. Like Branch, zones are read-only reference
// data within the dispatch domain.
type DeliveryZone struct {
	id       kernel.UUID
	branchID kernel.UUID
	boundary Boundary
	priority int
	isActive bool
	guard    guard.ConstructorGuard
}

// NewDeliveryZone creates a DeliveryZone with the given boundary and priority.
// Lower priority numbers win on overlap.
func NewDeliveryZone(
	id kernel.UUID,
	branchID kernel.UUID,
	boundary Boundary,
	priority int,
	isActive bool,
) (*DeliveryZone, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := branchID.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("branchId", err)
	}
	if boundary == nil {
		return nil, errs.NewValueIsRequiredError("boundary")
	}
	if err := boundary.Validate(); err != nil {
		return nil, err
	}
	if priority < 0 {
		return nil, errs.NewValueIsInvalidError("priority must not be negative")
	}

	return &DeliveryZone{
		id:       id,
		branchID: branchID,
		boundary: boundary,
		priority: priority,
		isActive: isActive,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate checks if the DeliveryZone was properly constructed.
func (z *DeliveryZone) Validate() error {
	if z == nil {
		return ErrZoneIsNotConstructed
	}
	return z.guard.Validate(ErrZoneIsNotConstructed)
}

// ID returns the zone identifier.
func (z *DeliveryZone) ID() kernel.UUID {
	return z.id
}

// BranchID returns the branch serving this zone.
func (z *DeliveryZone) BranchID() kernel.UUID {
	return z.branchID
}

// Boundary returns the zone's geographic shape.
func (z *DeliveryZone) Boundary() Boundary {
	return z.boundary
}

// Priority returns the zone's overlap priority. Lower numbers win.
func (z *DeliveryZone) Priority() int {
	return z.priority
}

// IsActive reports whether the zone participates in resolution.
func (z *DeliveryZone) IsActive() bool {
	return z.isActive
}

// Contains reports whether the point lies inside the zone's boundary.
func (z *DeliveryZone) Contains(point kernel.GeoPoint) bool {
	return z.boundary.Contains(point)
}

// Area returns the zone's approximate area in square meters.
func (z *DeliveryZone) Area() float64 {
	return z.boundary.Area()
}
