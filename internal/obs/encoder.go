// Package obs encodes grid state into flat feature tensors for policy
// networks. Two strategies exist: a total view of the whole grid and a
// partial window centered on the observing agent.
package obs

import "github.com/talgya/gardenworld/internal/world"

// FeaturesPerCell is the per-cell feature vector width: cell type,
// pollution, flower type, growth stage, agent presence, observer row,
// observer col — each normalized to [0, 1].
const FeaturesPerCell = 7

// Strategy turns the grid into an observation for one agent, identified
// by its index in the grid's agent list. The returned slice is a
// row-major flattening of Shape().
type Strategy interface {
	Shape(g *world.Grid) (rows, cols, features int)
	Observe(g *world.Grid, agentIndex int) []float32
}

// Total gives the agent a complete view of the grid.
type Total struct{}

// NewTotal creates the full-grid strategy.
func NewTotal() Total { return Total{} }

func (Total) Shape(g *world.Grid) (int, int, int) {
	return g.Height, g.Width, FeaturesPerCell
}

func (t Total) Observe(g *world.Grid, agentIndex int) []float32 {
	rows, cols, feats := t.Shape(g)
	out := make([]float32, rows*cols*feats)
	observer := g.Agents[agentIndex]

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			base := (row*cols + col) * feats
			encodeCell(out[base:base+feats], g, world.Position{Row: row, Col: col}, observer)
		}
	}
	return out
}

// Partial limits the agent to a square window of radius Range around its
// position. Out-of-bounds cells read as zeros.
type Partial struct {
	Range int
}

// NewPartial creates a windowed strategy with the given visibility
// radius in cells.
func NewPartial(visRange int) Partial {
	if visRange < 1 {
		visRange = 1
	}
	return Partial{Range: visRange}
}

func (p Partial) Shape(g *world.Grid) (int, int, int) {
	side := 2*p.Range + 1
	return side, side, FeaturesPerCell
}

func (p Partial) Observe(g *world.Grid, agentIndex int) []float32 {
	rows, cols, feats := p.Shape(g)
	out := make([]float32, rows*cols*feats)
	observer := g.Agents[agentIndex]

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			pos := world.Position{
				Row: observer.Position.Row + i - p.Range,
				Col: observer.Position.Col + j - p.Range,
			}
			if !g.InBounds(pos) {
				continue
			}
			base := (i*cols + j) * feats
			encodeCell(out[base:base+feats], g, pos, observer)
		}
	}
	return out
}

// encodeCell fills one feature vector in place.
func encodeCell(dst []float32, g *world.Grid, pos world.Position, observer *world.Agent) {
	cell := g.CellAt(pos)

	dst[0] = float32(cell.Type) / float32(world.NumCellTypes)

	if cell.HasPollution() {
		span := g.MaxPollution - g.MinPollution
		if span > 0 {
			dst[1] = float32((cell.Pollution - g.MinPollution) / span)
		}
	}

	if cell.HasFlower() {
		dst[2] = float32(cell.Flower.Type+1) / float32(g.NumFlowerTypes())
		maxStage := cell.Flower.Spec().MaxStage()
		dst[3] = float32(cell.Flower.GrowthStage+1) / float32(maxStage+1)
	}

	if cell.HasAgent() {
		for i, a := range g.Agents {
			if cell.Agent == a {
				dst[4] = float32(i+1) / float32(len(g.Agents))
				break
			}
		}
	}

	dst[5] = normCoord(observer.Position.Row, g.Height)
	dst[6] = normCoord(observer.Position.Col, g.Width)
}

func normCoord(v, size int) float32 {
	if size <= 1 {
		return 0
	}
	return float32(v) / float32(size-1)
}
