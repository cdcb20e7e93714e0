// Package ordering computes fractional position keys for items in an ordered
// sibling collection (pipeline stages of a project, tasks of a stage).
// Inserting between two neighbors assigns the midpoint of their keys, so the
// rest of the list is never renumbered.
package ordering

import "backend/internal/apperr"

const (
	// InitialKey is assigned to the first item of an empty collection
	InitialKey = 1000.0
	// Increment is the gap left after the current tail for future appends
	Increment = 1000.0
)

// Compute returns the order key for an item inserted between prev and next.
// A nil neighbor means the item is inserted at that end of the list.
//
// Repeated midpoint insertion between the same two neighbors halves the gap
// each time and can exhaust float64 precision; a renormalization pass over
// the sibling collection would fix that but is not implemented.
func Compute(prev, next *float64) (float64, error) {
	switch {
	case prev == nil && next == nil:
		return InitialKey, nil
	case next == nil:
		return *prev + Increment, nil
	case prev == nil:
		return *next / 2, nil
	default:
		if *prev >= *next {
			return 0, apperr.ErrInvalidOrder
		}
		return (*prev + *next) / 2, nil
	}
}
