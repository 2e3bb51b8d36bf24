package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate using optimistic
	// concurrency: the write succeeds only if the stored version still matches
	// the aggregate's loaded version. Returns errs.ErrConcurrencyConflict when
	// a concurrent writer got there first.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier, including
	// items, status history and courier assignment.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetActiveByBranch retrieves all non-terminal orders of a branch,
	// ordered by creation time. Used by the resync snapshot.
	GetActiveByBranch(ctx context.Context, branchID kernel.UUID) ([]*order.Order, error)
}
