package sim

import (
	"errors"
	"fmt"

	"github.com/talgya/gardenworld/internal/world"
)

// Handler failure conditions. Both are caller-recoverable: the grid is
// left untouched and the agent may try a different action.
var (
	// ErrCannotPlant: the agent lacks a seed of the requested type or
	// the cell cannot accept a flower.
	ErrCannotPlant = errors.New("cannot plant")

	// ErrCannotHarvest: no flower at the agent's cell, or it is not
	// fully grown.
	ErrCannotHarvest = errors.New("cannot harvest")
)

// Handler validates and applies one agent action at a time against the
// grid. Application is atomic: every check runs before the first
// mutation, so a failed action leaves agent and grid state unchanged.
type Handler struct {
	Grid *world.Grid
}

// NewHandler creates a handler bound to a grid.
func NewHandler(g *world.Grid) *Handler {
	return &Handler{Grid: g}
}

// Handle dispatches the action. Move and wait never fail: an invalid
// move is a no-op that still costs a turn. Plant and harvest return
// typed errors on failure.
func (h *Handler) Handle(agent *world.Agent, action Action) error {
	switch action.Kind {
	case ActionMove:
		h.move(agent, action.Direction)
		return nil
	case ActionPlant:
		return h.plant(agent, action.FlowerType)
	case ActionHarvest:
		return h.harvest(agent)
	case ActionWait:
		agent.TurnsWithoutIncome++
		return nil
	}
	return fmt.Errorf("unhandled action kind %d", action.Kind)
}

// move steps the agent when the destination is valid; either way the
// turn counts as one without income.
func (h *Handler) move(agent *world.Agent, d world.Direction) {
	dest := agent.Position.Shift(d)
	if h.Grid.ValidMove(dest) {
		h.Grid.MoveAgent(agent, dest)
	}
	agent.TurnsWithoutIncome++
}

func (h *Handler) plant(agent *world.Agent, flowerType int) error {
	if _, ok := h.Grid.FlowerSpecs[flowerType]; !ok {
		return fmt.Errorf("flower type %d at %v: %w", flowerType, agent.Position, ErrCannotPlant)
	}
	if !agent.CanPlant(flowerType) {
		return fmt.Errorf("no seeds of type %d: %w", flowerType, ErrCannotPlant)
	}
	if !h.Grid.CellAt(agent.Position).CanPlantOn() {
		return fmt.Errorf("cell %v not plantable: %w", agent.Position, ErrCannotPlant)
	}

	agent.UseSeed(flowerType)
	if err := h.Grid.PlaceFlower(agent.Position, flowerType, 0); err != nil {
		// Unreachable after the checks above; surfaced for safety.
		return fmt.Errorf("plant type %d: %w", flowerType, err)
	}
	agent.TurnsWithoutIncome++
	return nil
}

// harvest removes the grown flower under the agent, credits its price,
// applies the seed-return policy, and resets the no-income counter.
func (h *Handler) harvest(agent *world.Agent) error {
	cell := h.Grid.CellAt(agent.Position)
	if !cell.HasFlower() || !cell.Flower.IsGrown() {
		return fmt.Errorf("at %v: %w", agent.Position, ErrCannotHarvest)
	}

	flower, err := h.Grid.RemoveFlower(agent.Position)
	if err != nil {
		return fmt.Errorf("harvest at %v: %w", agent.Position, err)
	}

	if n, enabled := h.Grid.SeedsReturned(); enabled {
		agent.AddSeed(flower.Type, n)
	}
	agent.AddMoney(h.Grid.FlowerSpecs[flower.Type].Price)
	agent.FlowersHarvested[flower.Type]++
	agent.TurnsWithoutIncome = 0
	return nil
}
