package world

import "errors"

// Error taxonomy for the simulation core. All of these are local,
// caller-recoverable conditions: a failed operation leaves the grid
// unchanged and the caller decides whether to retry with a different
// action. There is no fatal error class in this package.
var (
	// ErrInvalidPosition marks a position that is out of bounds or not
	// walkable. Surfaced by placement and movement validators, never
	// silently corrected.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrOccupiedCell marks placing a flower where one exists, or placing
	// an agent onto an occupied cell while collisions are enabled.
	ErrOccupiedCell = errors.New("cell already occupied")

	// ErrNoFlower marks removing a flower from a cell that has none.
	ErrNoFlower = errors.New("no flower at position")

	// ErrUnknownFlowerType marks a flower type with no configured spec.
	ErrUnknownFlowerType = errors.New("unknown flower type")

	// ErrConfiguration marks grid setup that cannot be satisfied:
	// malformed grid files, or random initialization with fewer free
	// cells than requested agents.
	ErrConfiguration = errors.New("invalid grid configuration")
)
