package world

import (
	"fmt"
	"math/rand"
)

// Seed-return policy codes as they appear in configuration. Non-negative
// values mean a fixed per-harvest seed count.
const (
	SeedReturnDisabled   = -1 // no seeds returned on harvest
	SeedReturnRandomOnce = -2 // count drawn once, at grid construction
	SeedReturnPerHarvest = -3 // count drawn fresh on every harvest
)

// GridConfig carries the grid-wide parameters shared by every
// construction path.
type GridConfig struct {
	Width              int
	Height             int
	MinPollution       float64
	MaxPollution       float64
	PollutionIncrement float64
	// SeedReturn is a policy code: a fixed count, or one of the
	// SeedReturn* sentinels above.
	SeedReturn   int
	CollisionsOn bool
	FlowerSpecs  map[int]FlowerSpec
}

// DefaultGridConfig mirrors the standard simulation setup: a 10x10 grid,
// pollution in [0, 100] climbing by 1 per tick, one seed back per harvest,
// collisions on, and three flower types.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		Width:              10,
		Height:             10,
		MinPollution:       0,
		MaxPollution:       100,
		PollutionIncrement: 1,
		SeedReturn:         1,
		CollisionsOn:       true,
		FlowerSpecs:        DefaultFlowerSpecs(),
	}
}

// DefaultFlowerSpecs returns the standard three flower types: a slow
// high-value type, a mid type, and a cheap single-stage type.
func DefaultFlowerSpecs() map[int]FlowerSpec {
	return map[int]FlowerSpec{
		0: {Price: 10, PollutionReduction: []float64{0, 0, 0, 0, 5}},
		1: {Price: 5, PollutionReduction: []float64{0, 0, 1, 3}},
		2: {Price: 2, PollutionReduction: []float64{1}},
	}
}

// Grid owns the 2D cell array, the agent list, and the per-type index of
// live flowers. Cells are addressed [row][col].
type Grid struct {
	Width              int
	Height             int
	MinPollution       float64
	MaxPollution       float64
	PollutionIncrement float64
	CollisionsOn       bool
	FlowerSpecs        map[int]FlowerSpec

	// SeedReturn is the resolved policy code: SeedReturnRandomOnce has
	// already been replaced by a fixed draw at construction.
	SeedReturn int

	Cells  [][]*Cell
	Agents []*Agent

	// FlowersByType indexes live flowers by type. Ownership stays with
	// the cells; this is a lookup aid kept consistent by PlaceFlower
	// and RemoveFlower.
	FlowersByType map[int][]*Flower

	rng *rand.Rand
}

// New creates a grid of all-ground cells from the given configuration.
// A nil rng gets a self-seeded source; pass a seeded one for
// reproducible episodes.
func New(cfg GridConfig, rng *rand.Rand) *Grid {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if cfg.FlowerSpecs == nil {
		cfg.FlowerSpecs = DefaultFlowerSpecs()
	}

	seedReturn := cfg.SeedReturn
	if seedReturn == SeedReturnRandomOnce {
		seedReturn = rng.Intn(5)
	}

	cells := make([][]*Cell, cfg.Height)
	for r := range cells {
		cells[r] = make([]*Cell, cfg.Width)
		for c := range cells[r] {
			cells[r][c] = NewCell(CellGround)
		}
	}

	flowers := make(map[int][]*Flower, len(cfg.FlowerSpecs))
	for t := range cfg.FlowerSpecs {
		flowers[t] = nil
	}

	return &Grid{
		Width:              cfg.Width,
		Height:             cfg.Height,
		MinPollution:       cfg.MinPollution,
		MaxPollution:       cfg.MaxPollution,
		PollutionIncrement: cfg.PollutionIncrement,
		CollisionsOn:       cfg.CollisionsOn,
		FlowerSpecs:        cfg.FlowerSpecs,
		SeedReturn:         seedReturn,
		Cells:              cells,
		FlowersByType:      flowers,
		rng:                rng,
	}
}

// CellAt returns the cell at the given position. The position must be in
// bounds; use InBounds or ValidPosition first when it may not be.
func (g *Grid) CellAt(pos Position) *Cell {
	return g.Cells[pos.Row][pos.Col]
}

// InBounds reports whether the position lies inside the grid.
func (g *Grid) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < g.Height && pos.Col >= 0 && pos.Col < g.Width
}

// ValidPosition reports whether the position is in bounds and walkable.
func (g *Grid) ValidPosition(pos Position) bool {
	return g.InBounds(pos) && g.CellAt(pos).CanWalkOn()
}

// ValidMove reports whether an agent may move onto the position: it must
// be a valid position and, with collisions enabled, free of other agents.
// This and ValidPosition are the sole gatekeepers for movement; the
// action handler does not duplicate these checks.
func (g *Grid) ValidMove(pos Position) bool {
	if !g.ValidPosition(pos) {
		return false
	}
	if g.CollisionsOn && g.CellAt(pos).HasAgent() {
		return false
	}
	return true
}

// SetCellType replaces the cell at pos with a fresh cell of the given
// type. Used by the structured constructors before any placement.
func (g *Grid) SetCellType(pos Position, t CellType) error {
	if !g.InBounds(pos) {
		return fmt.Errorf("set cell %v: %w", pos, ErrInvalidPosition)
	}
	g.Cells[pos.Row][pos.Col] = NewCell(t)
	return nil
}

// PlaceAgent binds the agent to the cell at its current position and
// appends it to the agent list.
func (g *Grid) PlaceAgent(a *Agent) error {
	if !g.ValidPosition(a.Position) {
		return fmt.Errorf("place agent at %v: %w", a.Position, ErrInvalidPosition)
	}
	cell := g.CellAt(a.Position)
	if g.CollisionsOn && cell.HasAgent() {
		return fmt.Errorf("place agent at %v: %w", a.Position, ErrOccupiedCell)
	}
	cell.Agent = a
	g.Agents = append(g.Agents, a)
	return nil
}

// PlaceFlower creates a flower of the given type at pos and registers it
// in the type index.
func (g *Grid) PlaceFlower(pos Position, flowerType, growthStage int) error {
	if !g.ValidPosition(pos) {
		return fmt.Errorf("place flower at %v: %w", pos, ErrInvalidPosition)
	}
	spec, ok := g.FlowerSpecs[flowerType]
	if !ok {
		return fmt.Errorf("place flower type %d: %w", flowerType, ErrUnknownFlowerType)
	}
	cell := g.CellAt(pos)
	if cell.HasFlower() {
		return fmt.Errorf("place flower at %v: %w", pos, ErrOccupiedCell)
	}
	f := NewFlower(pos, flowerType, spec, growthStage)
	cell.Flower = f
	g.FlowersByType[flowerType] = append(g.FlowersByType[flowerType], f)
	return nil
}

// RemoveFlower detaches the flower at pos from its cell and drops it from
// the type index, returning it for the caller (harvest logic needs the
// type and stage of what was removed).
func (g *Grid) RemoveFlower(pos Position) (*Flower, error) {
	if !g.InBounds(pos) {
		return nil, fmt.Errorf("remove flower at %v: %w", pos, ErrInvalidPosition)
	}
	cell := g.CellAt(pos)
	if !cell.HasFlower() {
		return nil, fmt.Errorf("remove flower at %v: %w", pos, ErrNoFlower)
	}
	f := cell.Flower
	cell.Flower = nil

	list := g.FlowersByType[f.Type]
	for i, other := range list {
		if other == f {
			g.FlowersByType[f.Type] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return f, nil
}

// MoveAgent rebinds an agent's cell back-reference from its current
// position to dest and updates the agent. The move must already have been
// validated with ValidMove.
func (g *Grid) MoveAgent(a *Agent, dest Position) {
	if g.InBounds(a.Position) && g.CellAt(a.Position).Agent == a {
		g.CellAt(a.Position).Agent = nil
	}
	a.Position = dest
	g.CellAt(dest).Agent = a
}

// UpdateCells advances the whole-grid environment by one tick: every cell's
// pollution is updated, then every flower grows one stage. Called once per
// full agent turn, after every active agent has acted exactly once.
func (g *Grid) UpdateCells() {
	for _, row := range g.Cells {
		for _, cell := range row {
			cell.UpdatePollution(g.MinPollution, g.MaxPollution, g.PollutionIncrement)
			if cell.HasFlower() {
				cell.Flower.Grow()
			}
		}
	}
}

// SeedsReturned resolves the seed-return policy for one harvest. The
// second return is false when the seed system is disabled.
func (g *Grid) SeedsReturned() (int, bool) {
	switch g.SeedReturn {
	case SeedReturnDisabled:
		return 0, false
	case SeedReturnPerHarvest:
		return 1 + g.rng.Intn(4), true
	default:
		return g.SeedReturn, true
	}
}

// Rand exposes the grid's random source for callers that must share its
// deterministic stream.
func (g *Grid) Rand() *rand.Rand {
	return g.rng
}

// Copy produces a fully independent deep snapshot: cells, flowers, and
// agents are all duplicated, and cell back-references are rebuilt against
// the copied agents. Mutating either grid never affects the other.
func (g *Grid) Copy() *Grid {
	dup := &Grid{
		Width:              g.Width,
		Height:             g.Height,
		MinPollution:       g.MinPollution,
		MaxPollution:       g.MaxPollution,
		PollutionIncrement: g.PollutionIncrement,
		CollisionsOn:       g.CollisionsOn,
		SeedReturn:         g.SeedReturn,
		rng:                g.rng,
	}

	dup.FlowerSpecs = make(map[int]FlowerSpec, len(g.FlowerSpecs))
	for t, spec := range g.FlowerSpecs {
		reductions := make([]float64, len(spec.PollutionReduction))
		copy(reductions, spec.PollutionReduction)
		dup.FlowerSpecs[t] = FlowerSpec{Price: spec.Price, PollutionReduction: reductions}
	}

	dup.Agents = make([]*Agent, len(g.Agents))
	agentFor := make(map[*Agent]*Agent, len(g.Agents))
	for i, a := range g.Agents {
		dup.Agents[i] = a.Copy()
		agentFor[a] = dup.Agents[i]
	}

	dup.FlowersByType = make(map[int][]*Flower, len(g.FlowersByType))
	for t := range g.FlowersByType {
		dup.FlowersByType[t] = nil
	}

	dup.Cells = make([][]*Cell, g.Height)
	for r := range g.Cells {
		dup.Cells[r] = make([]*Cell, g.Width)
		for c, cell := range g.Cells[r] {
			cc := &Cell{
				Type:         cell.Type,
				Pollution:    cell.Pollution,
				hasPollution: cell.hasPollution,
			}
			if cell.Flower != nil {
				f := *cell.Flower
				f.spec = dup.FlowerSpecs[f.Type]
				cc.Flower = &f
				dup.FlowersByType[f.Type] = append(dup.FlowersByType[f.Type], cc.Flower)
			}
			if cell.Agent != nil {
				cc.Agent = agentFor[cell.Agent]
			}
			dup.Cells[r][c] = cc
		}
	}

	return dup
}

// NumFlowerTypes returns the number of configured flower types.
func (g *Grid) NumFlowerTypes() int {
	return len(g.FlowerSpecs)
}

// MaxFlowerPrice returns the highest configured flower price. Used to
// normalize the wellbeing reward.
func (g *Grid) MaxFlowerPrice() float64 {
	max := 0.0
	for _, spec := range g.FlowerSpecs {
		if spec.Price > max {
			max = spec.Price
		}
	}
	return max
}

// MeanPollution averages pollution over cells that carry a value.
// Returns 0 for a grid with no ground cells.
func (g *Grid) MeanPollution() float64 {
	sum := 0.0
	n := 0
	for _, row := range g.Cells {
		for _, cell := range row {
			if cell.HasPollution() {
				sum += cell.Pollution
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
