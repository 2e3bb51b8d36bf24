// Package events defines the ephemeral domain events emitted by order and
// courier mutations. Events are branch-scoped, built synchronously inside the
// mutating operation and handed to the publisher after commit; they are never
// stored or replayed.
package events
