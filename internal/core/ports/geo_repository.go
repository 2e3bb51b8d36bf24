package ports

import (
	"context"

	"dispatch/internal/core/domain/model/geo"
	"dispatch/internal/core/domain/model/kernel"
)

// GeoRepository provides read access to the geographic reference data consumed
// by branch resolution. The data is read-only at request time: zone edits take
// effect on the next resolution call, never retroactively.
type GeoRepository interface {
	// GetBranch retrieves a single branch by its identifier.
	GetBranch(ctx context.Context, id kernel.UUID) (*geo.Branch, error)

	// GetActiveBranches retrieves all branches currently serving orders.
	GetActiveBranches(ctx context.Context) ([]*geo.Branch, error)

	// GetActiveZones retrieves all delivery zones participating in resolution.
	GetActiveZones(ctx context.Context) ([]*geo.DeliveryZone, error)
}
