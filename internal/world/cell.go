// Package world provides the grid-world simulation core: cells, flowers,
// gardener agents, and the Grid that owns them.
package world

// Position is a (row, col) grid coordinate. Row 0 is the top row.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Direction is one of the four unit moves.
type Direction uint8

const (
	DirUp    Direction = iota // row - 1
	DirDown                   // row + 1
	DirLeft                   // col - 1
	DirRight                  // col + 1
)

// Shift returns the position one step in the given direction.
// Bounds are not checked here; that is the caller's job.
func (p Position) Shift(d Direction) Position {
	switch d {
	case DirUp:
		return Position{Row: p.Row - 1, Col: p.Col}
	case DirDown:
		return Position{Row: p.Row + 1, Col: p.Col}
	case DirLeft:
		return Position{Row: p.Row, Col: p.Col - 1}
	default:
		return Position{Row: p.Row, Col: p.Col + 1}
	}
}

// CellType classifies a grid location.
type CellType uint8

const (
	CellGround   CellType = iota // Walkable and plantable
	CellObstacle                 // Blocks movement and planting
	CellWall                     // Boundary marker; blocks like an obstacle
)

// CellTypeName returns a human-readable name for a cell type.
func CellTypeName(t CellType) string {
	switch t {
	case CellGround:
		return "ground"
	case CellObstacle:
		return "obstacle"
	case CellWall:
		return "wall"
	}
	return "unknown"
}

// NumCellTypes is the size of the CellType enumeration, used by the
// observation encoders for normalization.
const NumCellTypes = 3

// Cell is one grid location. Ground cells carry a pollution level that
// drifts up each tick unless a flower is reducing it. Non-ground cells
// have no pollution (HasPollution reports false).
//
// Flower is owned by the cell. Agent is a back-reference only: ownership
// of agents lies with Grid.Agents.
type Cell struct {
	Type      CellType `json:"type"`
	Pollution float64  `json:"pollution"`
	Flower    *Flower  `json:"flower,omitempty"`
	Agent     *Agent   `json:"-"`

	hasPollution bool
}

// StartingPollution is the pollution level of a freshly created ground cell.
const StartingPollution = 50.0

// NewCell creates a cell of the given type. Ground cells start at
// StartingPollution; other types carry no pollution value.
func NewCell(t CellType) *Cell {
	c := &Cell{Type: t}
	if t == CellGround {
		c.Pollution = StartingPollution
		c.hasPollution = true
	}
	return c
}

// NewGroundCell creates a ground cell with an explicit pollution level.
func NewGroundCell(pollution float64) *Cell {
	return &Cell{Type: CellGround, Pollution: pollution, hasPollution: true}
}

// HasPollution reports whether the cell carries a pollution value.
// False for obstacles and walls.
func (c *Cell) HasPollution() bool {
	return c.hasPollution
}

// UpdatePollution advances the cell's pollution by one tick. With a flower
// present, pollution drops by the flower's current-stage reduction, floored
// at min. Without one, it climbs by increment, capped at max. No-op for
// cells without a pollution value.
func (c *Cell) UpdatePollution(min, max, increment float64) {
	if !c.hasPollution {
		return
	}
	if c.HasFlower() {
		c.Pollution -= c.Flower.PollutionReduction()
		if c.Pollution < min {
			c.Pollution = min
		}
	} else {
		c.Pollution += increment
		if c.Pollution > max {
			c.Pollution = max
		}
	}
}

// CanWalkOn reports whether agents may occupy this cell.
func (c *Cell) CanWalkOn() bool {
	return c.Type == CellGround
}

// CanPlantOn reports whether a flower may be planted here.
func (c *Cell) CanPlantOn() bool {
	return c.Type == CellGround && !c.HasFlower()
}

// HasFlower reports whether the cell holds a flower.
func (c *Cell) HasFlower() bool {
	return c.Flower != nil
}

// HasAgent reports whether an agent occupies the cell.
func (c *Cell) HasAgent() bool {
	return c.Agent != nil
}
