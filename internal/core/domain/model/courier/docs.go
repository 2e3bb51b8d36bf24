// Package courier implements the Courier aggregate of the dispatch domain.
//
// The package includes:
//   - Courier: The aggregate root owning presence flags, the tracked location
//     and delivery counters
//   - TrackedLocation: The last reported position with its report timestamp
//
// Location reports are accepted only with strictly increasing timestamps, so
// out-of-order delivery never moves a courier backwards. Staleness is a pure
// function of the clock at read time.
package courier
