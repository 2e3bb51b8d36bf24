// Package ports defines the contracts between the dispatch core and its
// infrastructure: repositories, the unit of work and the event publisher.
// These interfaces enable dependency inversion and testability.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	// Add persists a new courier aggregate to storage.
	// The courier must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *courier.Courier) error

	// Update persists changes to an existing courier aggregate using optimistic
	// concurrency: the write succeeds only if the stored version still matches
	// the aggregate's loaded version. Returns errs.ErrConcurrencyConflict when
	// a concurrent writer got there first. Two racing availability flips for
	// the same courier resolve through exactly this check.
	Update(ctx context.Context, aggregate *courier.Courier) error

	// Get retrieves a courier aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetByBranch retrieves all couriers attached to a branch.
	// Used by the resync snapshot.
	GetByBranch(ctx context.Context, branchID kernel.UUID) ([]*courier.Courier, error)
}
