package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/gardenworld/internal/world"
)

// rewardGrid builds a 3x3 grid with one agent at the center. Default
// flower specs apply: type 0 sums to 5 reduction, prices 10/5/2.
func rewardGrid(t *testing.T) *world.Grid {
	t.Helper()
	cfg := world.DefaultGridConfig()
	cfg.Width = 3
	cfg.Height = 3

	g, err := world.Build(cfg, world.Layout{
		Agents: []world.AgentPlacement{
			{Position: world.Position{Row: 1, Col: 1}},
		},
	}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return g
}

func TestEcologyReward(t *testing.T) {
	t.Run("planting at maximum pollution", func(t *testing.T) {
		g := rewardGrid(t)
		a := g.Agents[0]
		g.CellAt(a.Position).Pollution = 100
		require.NoError(t, g.PlaceFlower(a.Position, 0, 0))

		// Lifetime reduction 5 at the best possible cell:
		// 5*(1/0.01) over 100*(1/0.01).
		got := EcologyReward(g.Copy(), g, a, Plant(0))
		assert.InDelta(t, 0.05, got, 1e-12)
	})

	t.Run("planting at mid pollution is near zero", func(t *testing.T) {
		g := rewardGrid(t)
		a := g.Agents[0]
		require.NoError(t, g.PlaceFlower(a.Position, 0, 0))

		// 5/(50-100+0.01) over 10000.
		got := EcologyReward(g.Copy(), g, a, Plant(0))
		assert.InDelta(t, -1.00020004e-5, got, 1e-10)
	})

	t.Run("harvesting a reducer is a cost", func(t *testing.T) {
		prev := rewardGrid(t)
		a := prev.Agents[0]
		require.NoError(t, prev.PlaceFlower(a.Position, 0, 4))

		curr := prev.Copy()
		_, err := curr.RemoveFlower(a.Position)
		require.NoError(t, err)
		curr.CellAt(a.Position).Pollution = 30

		// Final reduction 5 times pollution above minimum: -(5*30)/100.
		got := EcologyReward(prev, curr, curr.Agents[0], Harvest())
		assert.InDelta(t, -1.5, got, 1e-12)
	})

	t.Run("harvesting at minimum pollution costs nothing", func(t *testing.T) {
		prev := rewardGrid(t)
		a := prev.Agents[0]
		require.NoError(t, prev.PlaceFlower(a.Position, 0, 4))

		curr := prev.Copy()
		_, err := curr.RemoveFlower(a.Position)
		require.NoError(t, err)
		curr.CellAt(a.Position).Pollution = 0

		got := EcologyReward(prev, curr, curr.Agents[0], Harvest())
		assert.InDelta(t, 0, got, 1e-12)
	})

	t.Run("moves and waits score zero", func(t *testing.T) {
		g := rewardGrid(t)
		a := g.Agents[0]
		assert.Zero(t, EcologyReward(g.Copy(), g, a, Wait()))
		assert.Zero(t, EcologyReward(g.Copy(), g, a, Move(world.DirUp)))
	})
}

func TestWellbeingReward(t *testing.T) {
	t.Run("harvest pays price over dearest type", func(t *testing.T) {
		prev := rewardGrid(t)
		a := prev.Agents[0]
		require.NoError(t, prev.PlaceFlower(a.Position, 1, 3))

		curr := prev.Copy()
		_, err := curr.RemoveFlower(a.Position)
		require.NoError(t, err)

		got := WellbeingReward(prev, curr, curr.Agents[0], Harvest())
		assert.InDelta(t, 0.5, got, 1e-12)
	})

	t.Run("penalty grows with no-income turns", func(t *testing.T) {
		g := rewardGrid(t)
		a := g.Agents[0]

		a.TurnsWithoutIncome = 0
		assert.InDelta(t, 0, WellbeingReward(g.Copy(), g, a, Wait()), 1e-12)

		a.TurnsWithoutIncome = 5
		assert.InDelta(t, -0.5, WellbeingReward(g.Copy(), g, a, Wait()), 1e-12)

		a.TurnsWithoutIncome = 10
		assert.InDelta(t, -1.0, WellbeingReward(g.Copy(), g, a, Wait()), 1e-12)
	})

	t.Run("penalty saturates at minus one", func(t *testing.T) {
		g := rewardGrid(t)
		a := g.Agents[0]
		a.TurnsWithoutIncome = 50
		assert.InDelta(t, -1.0, WellbeingReward(g.Copy(), g, a, Move(world.DirUp)), 1e-12)
	})
}

func TestBiodiversityReward(t *testing.T) {
	t.Run("adding a second type raises diversity", func(t *testing.T) {
		g := rewardGrid(t)
		a := g.Agents[0]
		a.FlowersPlanted[0] = 1
		a.FlowersPlanted[1] = 1

		// From {0:1} to {0:1,1:1}: (ln 2 - 0) / ln 3.
		got := BiodiversityReward(g, Plant(1))
		assert.InDelta(t, 0.6309298, got, 1e-6)
	})

	t.Run("piling onto the majority type lowers diversity", func(t *testing.T) {
		g := rewardGrid(t)
		a := g.Agents[0]
		a.FlowersPlanted[0] = 6
		a.FlowersPlanted[1] = 5

		got := BiodiversityReward(g, Plant(0))
		assert.InDelta(t, -0.0037665, got, 1e-6)
	})

	t.Run("the very first flower scores zero", func(t *testing.T) {
		g := rewardGrid(t)
		g.Agents[0].FlowersPlanted[0] = 1
		assert.Zero(t, BiodiversityReward(g, Plant(0)))
	})

	t.Run("counts pool across agents", func(t *testing.T) {
		cfg := world.DefaultGridConfig()
		g, err := world.Build(cfg, world.Layout{
			Agents: []world.AgentPlacement{
				{Position: world.Position{Row: 0, Col: 0}},
				{Position: world.Position{Row: 2, Col: 2}},
			},
		}, rand.New(rand.NewSource(1)))
		require.NoError(t, err)

		g.Agents[0].FlowersPlanted[0] = 1
		g.Agents[1].FlowersPlanted[1] = 1
		got := BiodiversityReward(g, Plant(1))
		assert.InDelta(t, 0.6309298, got, 1e-6)
	})

	t.Run("non-plant actions score zero", func(t *testing.T) {
		g := rewardGrid(t)
		g.Agents[0].FlowersPlanted[0] = 3
		assert.Zero(t, BiodiversityReward(g, Harvest()))
		assert.Zero(t, BiodiversityReward(g, Wait()))
	})

	t.Run("single configured type scores zero", func(t *testing.T) {
		cfg := world.DefaultGridConfig()
		cfg.FlowerSpecs = map[int]world.FlowerSpec{0: {Price: 1, PollutionReduction: []float64{1}}}
		g, err := world.Build(cfg, world.Layout{
			Agents: []world.AgentPlacement{{Position: world.Position{Row: 0, Col: 0}}},
		}, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		g.Agents[0].FlowersPlanted[0] = 2
		assert.Zero(t, BiodiversityReward(g, Plant(0)))
	})
}

func TestComputeReward(t *testing.T) {
	g := rewardGrid(t)
	a := g.Agents[0]
	a.TurnsWithoutIncome = 5

	b := ComputeReward(g.Copy(), g, a, Wait())
	assert.Zero(t, b.Ecology)
	assert.InDelta(t, -0.5, b.Wellbeing, 1e-12)
	assert.Zero(t, b.Biodiversity)
	assert.InDelta(t, -0.5/3, b.Total, 1e-12)
}
