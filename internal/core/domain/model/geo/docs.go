// Package geo holds the read-only geographic reference data of the dispatch
// domain: branches and the delivery zones that map coordinates to them.
//
// Zones carry a Boundary, either a radius around a center or a closed
// polygon. Both shapes answer containment and approximate area; area is used
// only to break priority ties between overlapping zones.
package geo
