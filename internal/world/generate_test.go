package world

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	cfg := DefaultGridConfig()
	gen := DefaultGenConfig()
	g, err := Generate(cfg, gen, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	t.Run("obstacle count follows the ratio", func(t *testing.T) {
		obstacles := 0
		for _, row := range g.Cells {
			for _, cell := range row {
				if cell.Type == CellObstacle {
					obstacles++
				}
			}
		}
		assert.Equal(t, 20, obstacles)
	})

	t.Run("agents land on free ground", func(t *testing.T) {
		require.Len(t, g.Agents, 2)
		seen := map[Position]bool{}
		for _, a := range g.Agents {
			cell := g.CellAt(a.Position)
			assert.Equal(t, CellGround, cell.Type)
			assert.Same(t, a, cell.Agent)
			assert.False(t, seen[a.Position], "agents on distinct cells")
			seen[a.Position] = true
		}
	})

	t.Run("same seed reproduces the grid", func(t *testing.T) {
		g2, err := Generate(cfg, gen, rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		for row := 0; row < g.Height; row++ {
			for col := 0; col < g.Width; col++ {
				assert.Equal(t, g.Cells[row][col].Type, g2.Cells[row][col].Type)
			}
		}
		for i := range g.Agents {
			assert.Equal(t, g.Agents[i].Position, g2.Agents[i].Position)
		}
	})
}

func TestGenerateTooCrowded(t *testing.T) {
	cfg := DefaultGridConfig()
	cfg.Width = 2
	cfg.Height = 2
	gen := GenConfig{ObstacleRatio: 0.5, NumAgents: 3}
	_, err := Generate(cfg, gen, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestGenerateNoisePollution(t *testing.T) {
	cfg := DefaultGridConfig()
	gen := DefaultGenConfig()
	gen.NoisePollution = true
	gen.NoiseSeed = 9

	g, err := Generate(cfg, gen, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	flat := true
	for _, row := range g.Cells {
		for _, cell := range row {
			if !cell.HasPollution() {
				continue
			}
			require.GreaterOrEqual(t, cell.Pollution, cfg.MinPollution)
			require.LessOrEqual(t, cell.Pollution, cfg.MaxPollution)
			if cell.Pollution != StartingPollution {
				flat = false
			}
		}
	}
	assert.False(t, flat, "noise field varies across the grid")

	t.Run("same noise seed reproduces the field", func(t *testing.T) {
		g2, err := Generate(cfg, gen, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		for row := 0; row < g.Height; row++ {
			for col := 0; col < g.Width; col++ {
				assert.Equal(t, g.Cells[row][col].Pollution, g2.Cells[row][col].Pollution)
			}
		}
	})
}
