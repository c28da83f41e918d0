// Package render draws the grid as text for console output.
package render

import (
	"fmt"
	"strings"

	"github.com/talgya/gardenworld/internal/world"
)

// Charset maps grid contents to display runes. FlowerYoung is used for
// growing flowers, FlowerGrown once a flower reaches its final stage.
type Charset struct {
	Ground      rune
	Obstacle    rune
	Wall        rune
	Agent       rune
	FlowerYoung rune
	FlowerGrown rune
}

// DefaultCharset returns the standard glyphs.
func DefaultCharset() Charset {
	return Charset{
		Ground:      '.',
		Obstacle:    '#',
		Wall:        '|',
		Agent:       '@',
		FlowerYoung: 'f',
		FlowerGrown: 'F',
	}
}

// Console renders grid frames as multi-line strings.
type Console struct {
	Chars Charset
}

// NewConsole creates a console renderer with the default charset.
func NewConsole() *Console {
	return &Console{Chars: DefaultCharset()}
}

// Frame renders the current grid plus a one-line summary per agent.
// Agents draw over flowers when both occupy a cell.
func (c *Console) Frame(g *world.Grid) string {
	var b strings.Builder

	for _, row := range g.Cells {
		for _, cell := range row {
			b.WriteRune(c.cellRune(cell))
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}

	for i, a := range g.Agents {
		planted, harvested := 0, 0
		for _, n := range a.FlowersPlanted {
			planted += n
		}
		for _, n := range a.FlowersHarvested {
			harvested += n
		}
		fmt.Fprintf(&b, "agent_%d pos=(%d,%d) money=%.1f planted=%d harvested=%d\n",
			i, a.Position.Row, a.Position.Col, a.Money, planted, harvested)
	}

	fmt.Fprintf(&b, "mean pollution %.1f\n", g.MeanPollution())
	return b.String()
}

func (c *Console) cellRune(cell *world.Cell) rune {
	switch {
	case cell.HasAgent():
		return c.Chars.Agent
	case cell.HasFlower():
		if cell.Flower.IsGrown() {
			return c.Chars.FlowerGrown
		}
		return c.Chars.FlowerYoung
	case cell.Type == world.CellObstacle:
		return c.Chars.Obstacle
	case cell.Type == world.CellWall:
		return c.Chars.Wall
	default:
		return c.Chars.Ground
	}
}
