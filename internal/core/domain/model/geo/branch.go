package geo

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Branch errors.
var (
	// ErrBranchIsNotConstructed is returned when using an improperly initialized Branch.
	ErrBranchIsNotConstructed = errors.New("Branch must be created via NewBranch constructor")
)

// Branch is a restaurant location capable of serving orders. Within the
// dispatch domain it is read-only reference data: branches are administered
// elsewhere, the resolver only consumes them.
type Branch struct {
	id          kernel.UUID
	name        string
	coordinates kernel.GeoPoint
	isActive    bool
	guard       guard.ConstructorGuard
}

// NewBranch creates a Branch at the given coordinates.
func NewBranch(id kernel.UUID, name string, coordinates kernel.GeoPoint, isActive bool) (*Branch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errs.NewValueIsRequiredError("name")
	}
	if err := coordinates.Validate(); err != nil {
		return nil, err
	}

	return &Branch{
		id:          id,
		name:        name,
		coordinates: coordinates,
		isActive:    isActive,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate checks if the Branch was properly constructed.
func (b *Branch) Validate() error {
	if b == nil {
		return ErrBranchIsNotConstructed
	}
	return b.guard.Validate(ErrBranchIsNotConstructed)
}

// ID returns the branch identifier.
func (b *Branch) ID() kernel.UUID {
	return b.id
}

// Name returns the human-readable branch name.
func (b *Branch) Name() string {
	return b.name
}

// Coordinates returns the branch's position.
func (b *Branch) Coordinates() kernel.GeoPoint {
	return b.coordinates
}

// IsActive reports whether the branch currently serves orders.
func (b *Branch) IsActive() bool {
	return b.isActive
}

// DistanceTo returns the great-circle distance in meters from the branch to
// the given point.
func (b *Branch) DistanceTo(point kernel.GeoPoint) (float64, error) {
	return b.coordinates.DistanceTo(point)
}
