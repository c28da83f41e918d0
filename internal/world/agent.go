package world

// InfiniteSeeds is the sentinel seed count for an inexhaustible supply.
// It is never decremented by UseSeed and never incremented by AddSeed.
const InfiniteSeeds = -1

// DefaultSeedsPerType is the seed count each type starts with when an agent
// is created without an explicit inventory.
const DefaultSeedsPerType = 10

// Agent is a gardener: a mutable position, money, a per-type seed
// inventory, and lifetime planted/harvested counters. Agents are created
// once at grid construction and live for the whole episode.
type Agent struct {
	Position Position `json:"position"`
	Money    float64  `json:"money"`

	// Seeds maps flower type to remaining seed count, or InfiniteSeeds.
	Seeds map[int]int `json:"seeds"`

	// Lifetime counters by flower type.
	FlowersPlanted   map[int]int `json:"flowers_planted"`
	FlowersHarvested map[int]int `json:"flowers_harvested"`

	// TurnsWithoutIncome counts consecutive turns since the last
	// successful harvest. Drives the wellbeing penalty.
	TurnsWithoutIncome int `json:"turns_without_income"`
}

// NewAgent creates an agent at the given position. A nil seeds map gets
// DefaultSeedsPerType for each of numFlowerTypes types.
func NewAgent(pos Position, money float64, seeds map[int]int, numFlowerTypes int) *Agent {
	if seeds == nil {
		seeds = make(map[int]int, numFlowerTypes)
		for i := 0; i < numFlowerTypes; i++ {
			seeds[i] = DefaultSeedsPerType
		}
	}
	planted := make(map[int]int, len(seeds))
	harvested := make(map[int]int, len(seeds))
	for t := range seeds {
		planted[t] = 0
		harvested[t] = 0
	}
	return &Agent{
		Position:         pos,
		Money:            money,
		Seeds:            seeds,
		FlowersPlanted:   planted,
		FlowersHarvested: harvested,
	}
}

// Move translates the agent one cell in the given direction. It performs
// no bounds or collision checks; validation belongs to the action handler.
func (a *Agent) Move(d Direction) {
	a.Position = a.Position.Shift(d)
}

// CanPlant reports whether the agent holds a seed of the given type.
func (a *Agent) CanPlant(flowerType int) bool {
	n, ok := a.Seeds[flowerType]
	if !ok {
		return false
	}
	return n == InfiniteSeeds || n > 0
}

// UseSeed consumes one seed of the given type and bumps the planted
// counter. Infinite inventories are not decremented. Returns false, with
// no state change, when no seed is available.
func (a *Agent) UseSeed(flowerType int) bool {
	if !a.CanPlant(flowerType) {
		return false
	}
	if a.Seeds[flowerType] != InfiniteSeeds {
		a.Seeds[flowerType]--
	}
	a.FlowersPlanted[flowerType]++
	return true
}

// AddMoney credits the agent unconditionally.
func (a *Agent) AddMoney(amount float64) {
	a.Money += amount
}

// AddSeed adds n seeds of the given type. No-op for infinite inventories.
func (a *Agent) AddSeed(flowerType, n int) {
	if a.Seeds[flowerType] == InfiniteSeeds {
		return
	}
	a.Seeds[flowerType] += n
}

// Copy returns an independent deep copy of the agent.
func (a *Agent) Copy() *Agent {
	dup := *a
	dup.Seeds = copyIntMap(a.Seeds)
	dup.FlowersPlanted = copyIntMap(a.FlowersPlanted)
	dup.FlowersHarvested = copyIntMap(a.FlowersHarvested)
	return &dup
}

func copyIntMap(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
