package sim

import (
	"math"

	"github.com/talgya/gardenworld/internal/world"
)

// Epsilon keeps the ecology planting reward finite when a cell is
// already at maximum pollution.
const Epsilon = 0.01

// MaxPenaltyTurns is the number of consecutive no-income turns after
// which the wellbeing penalty saturates at -1.
const MaxPenaltyTurns = 10

// Breakdown is the per-step reward record: three normalized objective
// components and their arithmetic mean.
type Breakdown struct {
	Ecology      float64 `json:"ecology"`
	Wellbeing    float64 `json:"wellbeing"`
	Biodiversity float64 `json:"biodiversity"`
	Total        float64 `json:"total"`
}

// ComputeReward scores one agent's applied action by comparing the
// turn-start snapshot prev against the current grid curr. Pure function
// of its inputs; both grids must be well-formed and are never mutated.
func ComputeReward(prev, curr *world.Grid, agent *world.Agent, action Action) Breakdown {
	b := Breakdown{
		Ecology:      EcologyReward(prev, curr, agent, action),
		Wellbeing:    WellbeingReward(prev, curr, agent, action),
		Biodiversity: BiodiversityReward(curr, action),
	}
	b.Total = (b.Ecology + b.Wellbeing + b.Biodiversity) / 3
	return b
}

// EcologyReward scores pollution impact at the agent's own cell.
//
// Planting scales the flower's lifetime reduction by how close the cell
// is to maximum pollution, normalized by the best achievable value
// (max-min pollution span over Epsilon). Harvesting is a cost: removing
// a reducer forfeits its final-stage reduction, scaled by the cell's
// pollution above the minimum. Other actions contribute nothing.
func EcologyReward(prev, curr *world.Grid, agent *world.Agent, action Action) float64 {
	span := curr.MaxPollution - curr.MinPollution

	switch action.Kind {
	case ActionPlant:
		cell := curr.CellAt(agent.Position)
		if !cell.HasFlower() {
			return 0
		}
		spec, ok := curr.FlowerSpecs[cell.Flower.Type]
		if !ok {
			return 0
		}
		total := 0.0
		for _, r := range spec.PollutionReduction {
			total += r
		}
		rPlant := total * (1 / (cell.Pollution - curr.MaxPollution + Epsilon))
		rMax := span * (1 / Epsilon)
		return rPlant / rMax

	case ActionHarvest:
		prevCell := prev.CellAt(agent.Position)
		if !prevCell.HasFlower() {
			return 0
		}
		spec, ok := curr.FlowerSpecs[prevCell.Flower.Type]
		if !ok || len(spec.PollutionReduction) == 0 {
			return 0
		}
		final := spec.PollutionReduction[len(spec.PollutionReduction)-1]
		cell := curr.CellAt(agent.Position)
		rHarvest := final * (cell.Pollution - curr.MinPollution)
		return -(rHarvest / span)
	}
	return 0
}

// WellbeingReward is the individual-income proxy: a harvested flower's
// price relative to the dearest configured type, in [0, 1]; any other
// action incurs a penalty growing with consecutive no-income turns and
// saturating at -1.
func WellbeingReward(prev, curr *world.Grid, agent *world.Agent, action Action) float64 {
	if action.Kind == ActionHarvest {
		prevCell := prev.CellAt(agent.Position)
		if !prevCell.HasFlower() {
			return 0
		}
		maxPrice := curr.MaxFlowerPrice()
		if maxPrice == 0 {
			return 0
		}
		return curr.FlowerSpecs[prevCell.Flower.Type].Price / maxPrice
	}
	return -math.Min(float64(agent.TurnsWithoutIncome)/MaxPenaltyTurns, 1.0)
}

// BiodiversityReward is the Shannon-Wiener diversity delta over all
// agents' planted-flower counts, triggered only by planting. The
// "before" distribution is the current one with the planted type's
// count decremented by the flower just planted. Normalized by the
// maximum index ln(numTypes), giving roughly [-1, 1].
func BiodiversityReward(curr *world.Grid, action Action) float64 {
	if action.Kind != ActionPlant {
		return 0
	}
	numTypes := curr.NumFlowerTypes()
	if numTypes <= 1 {
		return 0
	}

	after := map[int]int{}
	for _, a := range curr.Agents {
		for t, n := range a.FlowersPlanted {
			after[t] += n
		}
	}

	before := map[int]int{}
	for t, n := range after {
		before[t] = n
	}
	if before[action.FlowerType] > 0 {
		before[action.FlowerType]--
	}

	delta := shannonIndex(after) - shannonIndex(before)
	return delta / math.Log(float64(numTypes))
}

// shannonIndex computes H = -sum p_i ln(p_i) over types with p_i > 0.
func shannonIndex(counts map[int]int) float64 {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, n := range counts {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(total)
		h -= p * math.Log(p)
	}
	return h
}
