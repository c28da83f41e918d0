package world

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds parameters for randomized grid generation.
type GenConfig struct {
	// ObstacleRatio is the proportion of cells turned into obstacles,
	// in [0, 1).
	ObstacleRatio float64
	// NumAgents is how many agents to scatter on the remaining ground.
	NumAgents int
	// NoisePollution shapes the initial pollution field with simplex
	// noise instead of the flat default. NoiseSeed and NoiseScale are
	// only read when it is set.
	NoisePollution bool
	NoiseSeed      int64
	NoiseScale     float64
}

// DefaultGenConfig returns the standard randomized setup: a fifth of the
// grid as obstacles and two agents.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		ObstacleRatio: 0.2,
		NumAgents:     2,
		NoiseScale:    0.15,
	}
}

// Generate builds a randomized grid: obstacles are placed on a
// ratio-determined random subset of cells without replacement, then agents
// on a disjoint random subset of the remaining ground cells. Returns a
// configuration error when fewer free cells remain than requested agents.
func Generate(cfg GridConfig, gen GenConfig, rng *rand.Rand) (*Grid, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	g := New(cfg, rng)

	free := make([]Position, 0, g.Width*g.Height)
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			free = append(free, Position{Row: row, Col: col})
		}
	}

	numObstacles := int(gen.ObstacleRatio * float64(g.Width*g.Height))
	if numObstacles > len(free) {
		numObstacles = len(free)
	}

	// Partial Fisher-Yates: the first numObstacles entries become
	// obstacles, the rest stay candidates for agent placement.
	for i := 0; i < numObstacles; i++ {
		j := i + rng.Intn(len(free)-i)
		free[i], free[j] = free[j], free[i]
		g.Cells[free[i].Row][free[i].Col] = NewCell(CellObstacle)
	}
	free = free[numObstacles:]

	if len(free) < gen.NumAgents {
		return nil, fmt.Errorf("%d agents requested but only %d free cells: %w",
			gen.NumAgents, len(free), ErrConfiguration)
	}

	for i := 0; i < gen.NumAgents; i++ {
		j := i + rng.Intn(len(free)-i)
		free[i], free[j] = free[j], free[i]
		a := NewAgent(free[i], 0, nil, g.NumFlowerTypes())
		if err := g.PlaceAgent(a); err != nil {
			return nil, err
		}
	}

	if gen.NoisePollution {
		applyNoisePollution(g, gen)
	}

	return g, nil
}

// applyNoisePollution replaces the flat starting pollution with a simplex
// noise field spanning [min, max], so episodes start with polluted and
// clean regions instead of a uniform board.
func applyNoisePollution(g *Grid, gen GenConfig) {
	seed := gen.NoiseSeed
	if seed == 0 {
		seed = g.rng.Int63()
	}
	scale := gen.NoiseScale
	if scale <= 0 {
		scale = 0.15
	}
	noise := opensimplex.NewNormalized(seed)

	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			cell := g.Cells[row][col]
			if !cell.HasPollution() {
				continue
			}
			n := octaveNoise(noise, float64(col), float64(row), 3, scale, 0.5)
			cell.Pollution = g.MinPollution + n*(g.MaxPollution-g.MinPollution)
		}
	}
}

// octaveNoise sums several noise layers at doubling frequency and
// decaying amplitude, renormalized to [0, 1].
func octaveNoise(n opensimplex.Noise, x, y float64, octaves int, freq, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0
	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*freq, y*freq) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		freq *= 2
	}
	return total / maxValue
}
