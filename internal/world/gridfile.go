package world

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Grid text format:
//
//	<width> <height>
//	<height> rows of <width> tokens:
//	    G           ground
//	    O           obstacle
//	    W           wall
//	    F<T>_<S>    ground holding a flower of type T at growth stage S
//	    A<I>        ground holding agent I
//	one line per referenced agent id:   id,money,seed0|seed1|...
//	one line per flower type:           type,price,reduction0|reduction1|...
//
// Agent definition lines are matched by id, so they may appear in any
// order; Save emits them in first-appearance order of the grid scan.

// LoadFile reads a grid from the text format at path. Grid-wide parameters
// (pollution bounds, seed return, collisions) come from cfg; flower specs
// come from the file.
func LoadFile(path string, cfg GridConfig, rng *rand.Rand) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid file: %w", err)
	}
	defer f.Close()
	g, err := Parse(f, cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("parse grid file %s: %w", path, err)
	}
	return g, nil
}

// Parse reads a grid from the text format.
func Parse(r io.Reader, cfg GridConfig, rng *rand.Rand) (*Grid, error) {
	sc := bufio.NewScanner(r)
	var lines []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty grid file: %w", ErrConfiguration)
	}

	header := strings.Fields(lines[0])
	if len(header) != 2 {
		return nil, fmt.Errorf("bad header %q: %w", lines[0], ErrConfiguration)
	}
	width, err1 := strconv.Atoi(header[0])
	height, err2 := strconv.Atoi(header[1])
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bad dimensions %q: %w", lines[0], ErrConfiguration)
	}
	if len(lines) < 1+height {
		return nil, fmt.Errorf("grid block truncated, want %d rows: %w", height, ErrConfiguration)
	}

	type flowerRef struct {
		pos   Position
		ftype int
		stage int
	}

	cellTypes := make([][]CellType, height)
	agentPos := map[int]Position{}
	var agentOrder []int
	var flowerRefs []flowerRef

	for row := 0; row < height; row++ {
		tokens := strings.Fields(lines[1+row])
		if len(tokens) != width {
			return nil, fmt.Errorf("row %d has %d tokens, want %d: %w", row, len(tokens), width, ErrConfiguration)
		}
		cellTypes[row] = make([]CellType, width)
		for col, tok := range tokens {
			pos := Position{Row: row, Col: col}
			switch {
			case tok == "G":
				cellTypes[row][col] = CellGround
			case tok == "O":
				cellTypes[row][col] = CellObstacle
			case tok == "W":
				cellTypes[row][col] = CellWall
			case strings.HasPrefix(tok, "F"):
				cellTypes[row][col] = CellGround
				parts := strings.SplitN(tok[1:], "_", 2)
				if len(parts) != 2 {
					return nil, fmt.Errorf("bad flower token %q: %w", tok, ErrConfiguration)
				}
				ft, err1 := strconv.Atoi(parts[0])
				stage, err2 := strconv.Atoi(parts[1])
				if err1 != nil || err2 != nil {
					return nil, fmt.Errorf("bad flower token %q: %w", tok, ErrConfiguration)
				}
				flowerRefs = append(flowerRefs, flowerRef{pos: pos, ftype: ft, stage: stage})
			case strings.HasPrefix(tok, "A"):
				cellTypes[row][col] = CellGround
				id, err := strconv.Atoi(tok[1:])
				if err != nil {
					return nil, fmt.Errorf("bad agent token %q: %w", tok, ErrConfiguration)
				}
				if _, dup := agentPos[id]; dup {
					return nil, fmt.Errorf("agent id %d appears twice: %w", id, ErrConfiguration)
				}
				agentPos[id] = pos
				agentOrder = append(agentOrder, id)
			default:
				return nil, fmt.Errorf("unknown cell token %q: %w", tok, ErrConfiguration)
			}
		}
	}

	defs := lines[1+height:]
	if len(defs) < len(agentPos) {
		return nil, fmt.Errorf("missing agent definitions, want %d: %w", len(agentPos), ErrConfiguration)
	}

	type agentDef struct {
		money float64
		seeds map[int]int
	}
	agentDefs := map[int]agentDef{}
	for _, line := range defs[:len(agentPos)] {
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("bad agent definition %q: %w", line, ErrConfiguration)
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("bad agent id in %q: %w", line, ErrConfiguration)
		}
		if _, ok := agentPos[id]; !ok {
			return nil, fmt.Errorf("definition for unreferenced agent %d: %w", id, ErrConfiguration)
		}
		money, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad agent money in %q: %w", line, ErrConfiguration)
		}
		seeds := map[int]int{}
		for i, s := range strings.Split(parts[2], "|") {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("bad seed count in %q: %w", line, ErrConfiguration)
			}
			seeds[i] = n
		}
		agentDefs[id] = agentDef{money: money, seeds: seeds}
	}

	specs := map[int]FlowerSpec{}
	for _, line := range defs[len(agentPos):] {
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("bad flower definition %q: %w", line, ErrConfiguration)
		}
		ft, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("bad flower type in %q: %w", line, ErrConfiguration)
		}
		price, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad flower price in %q: %w", line, ErrConfiguration)
		}
		var reductions []float64
		for _, s := range strings.Split(parts[2], "|") {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("bad pollution reduction in %q: %w", line, ErrConfiguration)
			}
			reductions = append(reductions, v)
		}
		specs[ft] = FlowerSpec{Price: price, PollutionReduction: reductions}
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no flower definitions: %w", ErrConfiguration)
	}

	cfg.Width = width
	cfg.Height = height
	cfg.FlowerSpecs = specs
	g := New(cfg, rng)

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if t := cellTypes[row][col]; t != CellGround {
				g.Cells[row][col] = NewCell(t)
			}
		}
	}

	for _, id := range agentOrder {
		def, ok := agentDefs[id]
		if !ok {
			return nil, fmt.Errorf("agent %d referenced in grid but never defined: %w", id, ErrConfiguration)
		}
		a := NewAgent(agentPos[id], def.money, def.seeds, len(specs))
		if err := g.PlaceAgent(a); err != nil {
			return nil, err
		}
	}

	for _, ref := range flowerRefs {
		if err := g.PlaceFlower(ref.pos, ref.ftype, ref.stage); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Save writes the grid's current state in the text format. Agent ids are
// assigned in grid-scan order, so agent definition lines appear in
// first-appearance order as the format requires.
func Save(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", g.Width, g.Height)

	agentID := map[*Agent]int{}
	var scanned []*Agent

	for row := 0; row < g.Height; row++ {
		tokens := make([]string, g.Width)
		for col := 0; col < g.Width; col++ {
			cell := g.Cells[row][col]
			switch {
			case cell.HasAgent():
				id, ok := agentID[cell.Agent]
				if !ok {
					id = len(scanned)
					agentID[cell.Agent] = id
					scanned = append(scanned, cell.Agent)
				}
				tokens[col] = fmt.Sprintf("A%d", id)
			case cell.HasFlower():
				tokens[col] = fmt.Sprintf("F%d_%d", cell.Flower.Type, cell.Flower.GrowthStage)
			case cell.Type == CellObstacle:
				tokens[col] = "O"
			case cell.Type == CellWall:
				tokens[col] = "W"
			default:
				tokens[col] = "G"
			}
		}
		fmt.Fprintln(bw, strings.Join(tokens, " "))
	}

	types := make([]int, 0, len(g.FlowerSpecs))
	for t := range g.FlowerSpecs {
		types = append(types, t)
	}
	sort.Ints(types)

	for id, a := range scanned {
		seeds := make([]string, 0, len(types))
		for _, t := range types {
			seeds = append(seeds, strconv.Itoa(a.Seeds[t]))
		}
		fmt.Fprintf(bw, "%d,%s,%s\n", id,
			strconv.FormatFloat(a.Money, 'f', -1, 64),
			strings.Join(seeds, "|"))
	}

	for _, t := range types {
		spec := g.FlowerSpecs[t]
		reductions := make([]string, len(spec.PollutionReduction))
		for i, v := range spec.PollutionReduction {
			reductions[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		fmt.Fprintf(bw, "%d,%s,%s\n", t,
			strconv.FormatFloat(spec.Price, 'f', -1, 64),
			strings.Join(reductions, "|"))
	}

	return bw.Flush()
}

// SaveFile writes the grid to path in the text format.
func SaveFile(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create grid file: %w", err)
	}
	if err := Save(f, g); err != nil {
		f.Close()
		return fmt.Errorf("write grid file %s: %w", path, err)
	}
	return f.Close()
}
