// Package queries contains read-only operations serving the query side of the
// CQRS split. Query handlers bypass the domain model and read projections
// straight from the database.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetBranchSnapshotQueryIsNotConstructed = errors.New(
	"GetBranchSnapshotQuery must be created via NewGetBranchSnapshotQuery constructor",
)

// GetBranchSnapshotQuery retrieves the full live state of one branch: its
// active orders and its couriers. Room subscribers poll this snapshot on
// connect and on a fixed interval as the safety net for events missed while
// disconnected, since the router never replays.
type GetBranchSnapshotQuery struct {
	branchID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetBranchSnapshotQuery creates a snapshot query for a branch.
func NewGetBranchSnapshotQuery(branchID kernel.UUID) (GetBranchSnapshotQuery, error) {
	if err := branchID.Validate(); err != nil {
		return GetBranchSnapshotQuery{}, err
	}

	return GetBranchSnapshotQuery{
		branchID: branchID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetBranchSnapshotQuery) Validate() error {
	return q.guard.Validate(ErrGetBranchSnapshotQueryIsNotConstructed)
}

// BranchID returns the branch to snapshot.
func (q GetBranchSnapshotQuery) BranchID() kernel.UUID {
	return q.branchID
}

// OrderSnapshot is one active order in the branch snapshot.
type OrderSnapshot struct {
	ID            string     `json:"orderId"`
	OrderType     string     `json:"orderType"`
	Status        string     `json:"status"`
	CourierID     *string    `json:"courierId,omitempty"`
	CustomerName  string     `json:"customerName"`
	CustomerPhone string     `json:"customerPhone,omitempty"`
	Total         float64    `json:"total"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// CourierSnapshot is one courier in the branch snapshot.
type CourierSnapshot struct {
	ID              string     `json:"courierId"`
	Name            string     `json:"name"`
	IsOnline        bool       `json:"isOnline"`
	IsAvailable     bool       `json:"isAvailable"`
	Lat             *float64   `json:"lat,omitempty"`
	Lon             *float64   `json:"lon,omitempty"`
	LocationAt      *time.Time `json:"locationUpdatedAt,omitempty"`
	Rating          float64    `json:"rating"`
	TotalDeliveries int        `json:"totalDeliveries"`
}

// GetBranchSnapshotQueryResponse bundles the branch's live state.
type GetBranchSnapshotQueryResponse struct {
	Orders   []OrderSnapshot   `json:"orders"`
	Couriers []CourierSnapshot `json:"couriers"`
}
