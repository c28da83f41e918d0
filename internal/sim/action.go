// Package sim provides the action state machine, the multi-objective
// reward functions, and the turn-based episode driver that external
// agent-stepping code runs against.
package sim

import (
	"fmt"

	"github.com/talgya/gardenworld/internal/world"
)

// ActionKind tags the Action sum type.
type ActionKind uint8

const (
	ActionMove ActionKind = iota
	ActionHarvest
	ActionWait
	ActionPlant
)

// Action is one agent decision: a move in a direction, a plant of a
// specific flower type, a harvest, or a wait. Each action is handled
// independently against current grid state; there are no pending or
// partial actions across turns.
type Action struct {
	Kind       ActionKind
	Direction  world.Direction // Move only
	FlowerType int             // Plant only
}

// Convenience constructors.
func Move(d world.Direction) Action { return Action{Kind: ActionMove, Direction: d} }
func Plant(flowerType int) Action   { return Action{Kind: ActionPlant, FlowerType: flowerType} }
func Harvest() Action               { return Action{Kind: ActionHarvest} }
func Wait() Action                  { return Action{Kind: ActionWait} }

// String names the action for logs and metrics.
func (a Action) String() string {
	switch a.Kind {
	case ActionMove:
		switch a.Direction {
		case world.DirUp:
			return "move_up"
		case world.DirDown:
			return "move_down"
		case world.DirLeft:
			return "move_left"
		default:
			return "move_right"
		}
	case ActionHarvest:
		return "harvest"
	case ActionWait:
		return "wait"
	case ActionPlant:
		return fmt.Sprintf("plant_type_%d", a.FlowerType)
	}
	return "unknown"
}

// Flat action indices for the discrete RL action space:
// four moves, then harvest, then wait, then one plant slot per
// configured flower type.
const (
	IndexMoveUp    = 0
	IndexMoveDown  = 1
	IndexMoveLeft  = 2
	IndexMoveRight = 3
	IndexHarvest   = 4
	IndexWait      = 5
	indexPlantBase = 6
)

// Space maps between Actions and flat indices, and computes per-agent
// action masks. Its size depends only on the configured flower type
// count, fixed at construction.
type Space struct {
	NumFlowerTypes int
}

// NewSpace creates an action space for the given flower type count.
func NewSpace(numFlowerTypes int) Space {
	return Space{NumFlowerTypes: numFlowerTypes}
}

// Size returns the number of discrete actions.
func (s Space) Size() int {
	return indexPlantBase + s.NumFlowerTypes
}

// Decode maps a flat index to an Action.
func (s Space) Decode(index int) (Action, error) {
	switch index {
	case IndexMoveUp:
		return Move(world.DirUp), nil
	case IndexMoveDown:
		return Move(world.DirDown), nil
	case IndexMoveLeft:
		return Move(world.DirLeft), nil
	case IndexMoveRight:
		return Move(world.DirRight), nil
	case IndexHarvest:
		return Harvest(), nil
	case IndexWait:
		return Wait(), nil
	}
	if index >= indexPlantBase && index < s.Size() {
		return Plant(index - indexPlantBase), nil
	}
	return Action{}, fmt.Errorf("action index %d out of range [0, %d)", index, s.Size())
}

// Encode maps an Action back to its flat index.
func (s Space) Encode(a Action) int {
	switch a.Kind {
	case ActionMove:
		switch a.Direction {
		case world.DirUp:
			return IndexMoveUp
		case world.DirDown:
			return IndexMoveDown
		case world.DirLeft:
			return IndexMoveLeft
		default:
			return IndexMoveRight
		}
	case ActionHarvest:
		return IndexHarvest
	case ActionWait:
		return IndexWait
	default:
		return indexPlantBase + a.FlowerType
	}
}

// Mask recomputes the boolean action mask for the agent's current
// position against live grid state: each move is enabled iff ValidMove
// holds for its destination, harvest iff the agent's cell holds a grown
// flower, each plant iff the agent has a seed and the cell accepts one,
// and wait always. Must be recomputed before every turn.
func (s Space) Mask(g *world.Grid, a *world.Agent) []bool {
	mask := make([]bool, s.Size())

	mask[IndexMoveUp] = g.ValidMove(a.Position.Shift(world.DirUp))
	mask[IndexMoveDown] = g.ValidMove(a.Position.Shift(world.DirDown))
	mask[IndexMoveLeft] = g.ValidMove(a.Position.Shift(world.DirLeft))
	mask[IndexMoveRight] = g.ValidMove(a.Position.Shift(world.DirRight))

	cell := g.CellAt(a.Position)
	mask[IndexHarvest] = cell.HasFlower() && cell.Flower.IsGrown()
	mask[IndexWait] = true

	for t := 0; t < s.NumFlowerTypes; t++ {
		mask[indexPlantBase+t] = a.CanPlant(t) && cell.CanPlantOn()
	}
	return mask
}
