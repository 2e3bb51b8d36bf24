// Package services contains stateless domain services of the dispatch core.
//
// BranchResolver maps a delivery coordinate to the serving branch using
// priority-ordered zone containment with a nearest-branch distance fallback.
// Services hold no mutable state and depend only on domain model packages.
package services
