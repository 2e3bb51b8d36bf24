// Package order implements the Order aggregate of the dispatch domain.
//
// The package includes:
//   - Order: The aggregate root owning lifecycle state, items and status history
//   - Status: The lifecycle state machine with its permitted edge table
//   - Type: The fulfilment kind (delivery, pickup, dine-in, table)
//   - Item: An immutable order line value object
//
// Orders are mutated exclusively through guarded operations (TransitionTo,
// AssignCourier, Cancel); a failed guard leaves the aggregate untouched. The
// status history is append-only and its tail always equals the current status.
package order
