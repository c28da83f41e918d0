package world

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGridText = `4 3
G O F1_2 G
A0 G G W
G A1 G G
0,10,5|3|0
1,0,-1|-1|-1
0,10,0|0|0|0|5
1,5,0|0|1|3
2,2,1
`

func TestParseGridFile(t *testing.T) {
	cfg := DefaultGridConfig()
	g, err := Parse(strings.NewReader(sampleGridText), cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	require.Equal(t, 4, g.Width)
	require.Equal(t, 3, g.Height)

	t.Run("cell types", func(t *testing.T) {
		assert.Equal(t, CellObstacle, g.CellAt(Position{Row: 0, Col: 1}).Type)
		assert.Equal(t, CellWall, g.CellAt(Position{Row: 1, Col: 3}).Type)
		assert.Equal(t, CellGround, g.CellAt(Position{Row: 2, Col: 0}).Type)
	})

	t.Run("flower placement", func(t *testing.T) {
		cell := g.CellAt(Position{Row: 0, Col: 2})
		require.True(t, cell.HasFlower())
		assert.Equal(t, 1, cell.Flower.Type)
		assert.Equal(t, 2, cell.Flower.GrowthStage)
	})

	t.Run("agents matched by id", func(t *testing.T) {
		require.Len(t, g.Agents, 2)
		a0 := g.Agents[0]
		assert.Equal(t, Position{Row: 1, Col: 0}, a0.Position)
		assert.Equal(t, 10.0, a0.Money)
		assert.Equal(t, map[int]int{0: 5, 1: 3, 2: 0}, a0.Seeds)

		a1 := g.Agents[1]
		assert.Equal(t, Position{Row: 2, Col: 1}, a1.Position)
		assert.Equal(t, map[int]int{0: InfiniteSeeds, 1: InfiniteSeeds, 2: InfiniteSeeds}, a1.Seeds)
	})

	t.Run("flower specs from the file", func(t *testing.T) {
		require.Len(t, g.FlowerSpecs, 3)
		assert.Equal(t, FlowerSpec{Price: 5, PollutionReduction: []float64{0, 0, 1, 3}}, g.FlowerSpecs[1])
		assert.Equal(t, FlowerSpec{Price: 2, PollutionReduction: []float64{1}}, g.FlowerSpecs[2])
	})
}

func TestParseGridFileErrors(t *testing.T) {
	cfg := DefaultGridConfig()
	rng := rand.New(rand.NewSource(1))

	cases := []struct {
		name string
		text string
	}{
		{"empty input", ""},
		{"bad header", "abc def\n"},
		{"truncated rows", "3 3\nG G G\n"},
		{"row width mismatch", "2 1\nG\n0,0,1\n0,1,1\n"},
		{"unknown token", "2 1\nG X\n0,1,1\n"},
		{"bad flower token", "2 1\nG F1\n0,1,1\n"},
		{"duplicate agent id", "2 1\nA0 A0\n0,0,1\n0,1,1\n"},
		{"missing agent definition", "2 1\nA0 G\n"},
		{"no flower definitions", "2 1\nG G\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.text), cfg, rng)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestGridFileRoundTrip(t *testing.T) {
	cfg := DefaultGridConfig()
	g, err := Parse(strings.NewReader(sampleGridText), cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, g))

	g2, err := Parse(&buf, cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, g.Width, g2.Width)
	assert.Equal(t, g.Height, g2.Height)
	assert.Equal(t, g.FlowerSpecs, g2.FlowerSpecs)
	require.Len(t, g2.Agents, len(g.Agents))
	for i := range g.Agents {
		assert.Equal(t, g.Agents[i].Position, g2.Agents[i].Position)
		assert.Equal(t, g.Agents[i].Money, g2.Agents[i].Money)
		assert.Equal(t, g.Agents[i].Seeds, g2.Agents[i].Seeds)
	}
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			pos := Position{Row: row, Col: col}
			a, b := g.CellAt(pos), g2.CellAt(pos)
			assert.Equal(t, a.Type, b.Type, "cell %v", pos)
			assert.Equal(t, a.HasFlower(), b.HasFlower(), "cell %v", pos)
			if a.HasFlower() {
				assert.Equal(t, a.Flower.Type, b.Flower.Type)
				assert.Equal(t, a.Flower.GrowthStage, b.Flower.GrowthStage)
			}
		}
	}
}

func TestGridFileOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.txt")

	cfg := DefaultGridConfig()
	g, err := Parse(strings.NewReader(sampleGridText), cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	require.NoError(t, SaveFile(path, g))
	g2, err := LoadFile(path, cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, g.Width, g2.Width)
	assert.Len(t, g2.Agents, 2)

	_, err = LoadFile(filepath.Join(dir, "missing.txt"), cfg, nil)
	assert.Error(t, err)
}
