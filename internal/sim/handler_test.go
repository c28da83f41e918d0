package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/gardenworld/internal/world"
)

// handlerGrid builds a 3x3 grid with one agent in the center holding one
// seed of each type.
func handlerGrid(t *testing.T, seedReturn int) (*Handler, *world.Agent) {
	t.Helper()
	cfg := world.DefaultGridConfig()
	cfg.Width = 3
	cfg.Height = 3
	cfg.SeedReturn = seedReturn

	g, err := world.Build(cfg, world.Layout{
		Agents: []world.AgentPlacement{
			{Position: world.Position{Row: 1, Col: 1}, Seeds: map[int]int{0: 1, 1: 1, 2: 1}},
		},
	}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return NewHandler(g), g.Agents[0]
}

func TestHandlerMove(t *testing.T) {
	t.Run("valid move relocates and costs a turn", func(t *testing.T) {
		h, a := handlerGrid(t, 1)
		require.NoError(t, h.Handle(a, Move(world.DirUp)))
		assert.Equal(t, world.Position{Row: 0, Col: 1}, a.Position)
		assert.Equal(t, 1, a.TurnsWithoutIncome)
		assert.Same(t, a, h.Grid.CellAt(a.Position).Agent)
	})

	t.Run("blocked move is a costed no-op", func(t *testing.T) {
		h, a := handlerGrid(t, 1)
		require.NoError(t, h.Grid.SetCellType(world.Position{Row: 0, Col: 1}, world.CellWall))
		require.NoError(t, h.Handle(a, Move(world.DirUp)))
		assert.Equal(t, world.Position{Row: 1, Col: 1}, a.Position)
		assert.Equal(t, 1, a.TurnsWithoutIncome)
	})

	t.Run("out of bounds move is a costed no-op", func(t *testing.T) {
		h, a := handlerGrid(t, 1)
		h.Grid.MoveAgent(a, world.Position{Row: 0, Col: 1})
		require.NoError(t, h.Handle(a, Move(world.DirUp)))
		assert.Equal(t, world.Position{Row: 0, Col: 1}, a.Position)
	})
}

func TestHandlerPlant(t *testing.T) {
	t.Run("success places a young flower and spends the seed", func(t *testing.T) {
		h, a := handlerGrid(t, 1)
		require.NoError(t, h.Handle(a, Plant(0)))

		cell := h.Grid.CellAt(a.Position)
		require.True(t, cell.HasFlower())
		assert.Equal(t, 0, cell.Flower.Type)
		assert.Equal(t, 0, cell.Flower.GrowthStage)
		assert.Equal(t, 0, a.Seeds[0])
		assert.Equal(t, 1, a.FlowersPlanted[0])
		assert.Equal(t, 1, a.TurnsWithoutIncome)
	})

	t.Run("no seed fails without mutation", func(t *testing.T) {
		h, a := handlerGrid(t, 1)
		a.Seeds[0] = 0
		err := h.Handle(a, Plant(0))
		assert.ErrorIs(t, err, ErrCannotPlant)
		assert.False(t, h.Grid.CellAt(a.Position).HasFlower())
		assert.Equal(t, 0, a.FlowersPlanted[0])
		assert.Equal(t, 0, a.TurnsWithoutIncome)
	})

	t.Run("occupied cell fails without spending the seed", func(t *testing.T) {
		h, a := handlerGrid(t, 1)
		require.NoError(t, h.Grid.PlaceFlower(a.Position, 2, 0))
		err := h.Handle(a, Plant(0))
		assert.ErrorIs(t, err, ErrCannotPlant)
		assert.Equal(t, 1, a.Seeds[0])
	})

	t.Run("unknown type fails", func(t *testing.T) {
		h, a := handlerGrid(t, 1)
		assert.ErrorIs(t, h.Handle(a, Plant(9)), ErrCannotPlant)
	})
}

func TestHandlerHarvest(t *testing.T) {
	t.Run("grown flower pays out and resets the income counter", func(t *testing.T) {
		h, a := handlerGrid(t, 2)
		a.TurnsWithoutIncome = 7
		require.NoError(t, h.Grid.PlaceFlower(a.Position, 1, 3))

		require.NoError(t, h.Handle(a, Harvest()))
		assert.False(t, h.Grid.CellAt(a.Position).HasFlower())
		assert.Equal(t, 5.0, a.Money)
		assert.Equal(t, 3, a.Seeds[1], "one held plus two returned")
		assert.Equal(t, 1, a.FlowersHarvested[1])
		assert.Equal(t, 0, a.TurnsWithoutIncome)
		assert.Empty(t, h.Grid.FlowersByType[1])
	})

	t.Run("seed return disabled leaves the inventory alone", func(t *testing.T) {
		h, a := handlerGrid(t, world.SeedReturnDisabled)
		require.NoError(t, h.Grid.PlaceFlower(a.Position, 2, 0))
		require.NoError(t, h.Handle(a, Harvest()))
		assert.Equal(t, 1, a.Seeds[2])
		assert.Equal(t, 2.0, a.Money)
	})

	t.Run("ungrown flower fails", func(t *testing.T) {
		h, a := handlerGrid(t, 1)
		require.NoError(t, h.Grid.PlaceFlower(a.Position, 0, 2))
		err := h.Handle(a, Harvest())
		assert.ErrorIs(t, err, ErrCannotHarvest)
		assert.True(t, h.Grid.CellAt(a.Position).HasFlower())
		assert.Equal(t, 0.0, a.Money)
	})

	t.Run("empty cell fails", func(t *testing.T) {
		h, a := handlerGrid(t, 1)
		assert.ErrorIs(t, h.Handle(a, Harvest()), ErrCannotHarvest)
	})
}

func TestHandlerWait(t *testing.T) {
	h, a := handlerGrid(t, 1)
	require.NoError(t, h.Handle(a, Wait()))
	require.NoError(t, h.Handle(a, Wait()))
	assert.Equal(t, 2, a.TurnsWithoutIncome)
}
