package courier

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrTrackedLocationIsNotConstructed is returned when using an improperly
// initialized TrackedLocation.
var ErrTrackedLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"TrackedLocation must be created via NewTrackedLocation constructor")

// TrackedLocation is a courier's last reported position together with the
// moment it was reported. It is an immutable value object: an accepted report
// replaces the whole value, never a single field.
type TrackedLocation struct {
	point     kernel.GeoPoint
	updatedAt time.Time
	guard     guard.ConstructorGuard
}

// NewTrackedLocation creates a TrackedLocation from a valid point and its
// report timestamp. A zero timestamp is rejected.
func NewTrackedLocation(point kernel.GeoPoint, updatedAt time.Time) (TrackedLocation, error) {
	if err := point.Validate(); err != nil {
		return TrackedLocation{}, err
	}

	if updatedAt.IsZero() {
		return TrackedLocation{}, errs.NewValueIsRequiredError("updatedAt")
	}

	return TrackedLocation{
		point:     point,
		updatedAt: updatedAt,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate checks if the TrackedLocation was properly constructed.
// The zero value is invalid and will fail this validation.
func (l TrackedLocation) Validate() error {
	return l.guard.Validate(ErrTrackedLocationIsNotConstructed)
}

// Point returns the reported position.
func (l TrackedLocation) Point() kernel.GeoPoint {
	return l.point
}

// UpdatedAt returns the moment the position was reported.
func (l TrackedLocation) UpdatedAt() time.Time {
	return l.updatedAt
}
