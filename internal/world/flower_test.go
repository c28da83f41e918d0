package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlowerGrowth(t *testing.T) {
	spec := FlowerSpec{Price: 5, PollutionReduction: []float64{0, 0, 1, 3}}

	t.Run("grows one stage per call", func(t *testing.T) {
		f := NewFlower(Position{Row: 1, Col: 1}, 1, spec, 0)
		assert.False(t, f.IsGrown())
		f.Grow()
		assert.Equal(t, 1, f.GrowthStage)
		f.Grow()
		f.Grow()
		assert.Equal(t, 3, f.GrowthStage)
		assert.True(t, f.IsGrown())
	})

	t.Run("grow is idempotent at max stage", func(t *testing.T) {
		f := NewFlower(Position{}, 1, spec, spec.MaxStage())
		f.Grow()
		f.Grow()
		assert.Equal(t, spec.MaxStage(), f.GrowthStage)
	})

	t.Run("stage clamped on construction", func(t *testing.T) {
		assert.Equal(t, 0, NewFlower(Position{}, 1, spec, -5).GrowthStage)
		assert.Equal(t, 3, NewFlower(Position{}, 1, spec, 99).GrowthStage)
	})
}

func TestFlowerPollutionReduction(t *testing.T) {
	spec := FlowerSpec{Price: 5, PollutionReduction: []float64{0, 0, 1, 3}}
	f := NewFlower(Position{}, 1, spec, 0)

	assert.Equal(t, 0.0, f.PollutionReduction())
	f.Grow()
	f.Grow()
	assert.Equal(t, 1.0, f.PollutionReduction())
	f.Grow()
	assert.Equal(t, 3.0, f.PollutionReduction())
}

func TestFlowerSpecMaxStage(t *testing.T) {
	assert.Equal(t, 0, FlowerSpec{PollutionReduction: []float64{1}}.MaxStage())
	assert.Equal(t, 4, FlowerSpec{PollutionReduction: []float64{0, 0, 0, 0, 5}}.MaxStage())
}
