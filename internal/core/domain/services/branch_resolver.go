package services

import (
	"errors"
	"sort"

	"dispatch/internal/core/domain/model/geo"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrUnresolvableLocation is returned when no active zone contains the point
// and no active branch lies within the configured maximum distance. The caller
// must then supply an explicit branch.
var ErrUnresolvableLocation = errors.New("no branch serves this location")

// Resolution is the outcome of a successful branch lookup. ZoneID is nil when
// the branch was found by nearest-distance fallback rather than zone containment.
type Resolution struct {
	BranchID kernel.UUID
	ZoneID   *kernel.UUID
}

// BranchResolver is a domain service mapping a delivery coordinate to the
// branch that serves it. It is deterministic and side-effect-free: two calls
// with identical inputs and unchanged reference data return identical results.
//
// Resolution algorithm:
//   - Evaluate active zones in ascending priority order; the first zone whose
//     boundary contains the point wins
//   - On equal priority the smaller-area zone wins; on equal area the lowest
//     zone ID wins (an explicit rule, never map-iteration order)
//   - If no zone contains the point, fall back to the nearest active branch by
//     great-circle distance, accepted only within maxFallbackMeters
//
// Example usage:
//
//	resolver := NewBranchResolver(5000)
//	res, err := resolver.ResolveBranchForLocation(point, branches, zones)
//	if errors.Is(err, ErrUnresolvableLocation) {
//	    // Ask the caller for an explicit branch
//	}
type BranchResolver struct {
	maxFallbackMeters float64
}

// NewBranchResolver creates a BranchResolver with the given maximum distance
// for the nearest-branch fallback, in meters.
func NewBranchResolver(maxFallbackMeters float64) BranchResolver {
	return BranchResolver{maxFallbackMeters: maxFallbackMeters}
}

// ResolveBranchForLocation maps a point to its serving branch.
//
// Returns ErrUnresolvableLocation when neither zone containment nor the
// distance fallback yields a branch. Inactive branches and zones never
// participate in resolution.
func (r BranchResolver) ResolveBranchForLocation(
	point kernel.GeoPoint,
	branches []*geo.Branch,
	zones []*geo.DeliveryZone,
) (Resolution, error) {
	if err := point.Validate(); err != nil {
		return Resolution{}, err
	}

	if res, ok := r.resolveByZone(point, zones); ok {
		return res, nil
	}

	if res, ok := r.resolveByDistance(point, branches); ok {
		return res, nil
	}

	return Resolution{}, ErrUnresolvableLocation
}

func (r BranchResolver) resolveByZone(point kernel.GeoPoint, zones []*geo.DeliveryZone) (Resolution, bool) {
	candidates := make([]*geo.DeliveryZone, 0, len(zones))
	for _, zone := range zones {
		if zone.Validate() == nil && zone.IsActive() {
			candidates = append(candidates, zone)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority() != candidates[j].Priority() {
			return candidates[i].Priority() < candidates[j].Priority()
		}
		if candidates[i].Area() != candidates[j].Area() {
			return candidates[i].Area() < candidates[j].Area()
		}
		return candidates[i].ID().String() < candidates[j].ID().String()
	})

	for _, zone := range candidates {
		if zone.Contains(point) {
			zoneID := zone.ID()
			return Resolution{BranchID: zone.BranchID(), ZoneID: &zoneID}, true
		}
	}

	return Resolution{}, false
}

func (r BranchResolver) resolveByDistance(point kernel.GeoPoint, branches []*geo.Branch) (Resolution, bool) {
	var nearest *geo.Branch
	var nearestDistance float64

	for _, branch := range branches {
		if branch.Validate() != nil || !branch.IsActive() {
			continue
		}

		distance, err := branch.DistanceTo(point)
		if err != nil || distance > r.maxFallbackMeters {
			continue
		}

		// Ties go to the lowest branch ID for determinism.
		closer := nearest == nil || distance < nearestDistance ||
			(distance == nearestDistance && branch.ID().String() < nearest.ID().String())
		if closer {
			nearest = branch
			nearestDistance = distance
		}
	}

	if nearest == nil {
		return Resolution{}, false
	}
	return Resolution{BranchID: nearest.ID()}, true
}
