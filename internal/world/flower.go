package world

// FlowerSpec is the per-type configuration for a flower: its sale price and
// the pollution reduction it provides at each growth stage. The final entry
// of PollutionReduction is the fully-grown reduction; a flower of this type
// has len(PollutionReduction)-1 as its maximum growth stage.
type FlowerSpec struct {
	Price              float64   `json:"price" yaml:"price"`
	PollutionReduction []float64 `json:"pollution_reduction" yaml:"pollution_reduction"`
}

// MaxStage returns the final growth stage for this spec.
func (s FlowerSpec) MaxStage() int {
	return len(s.PollutionReduction) - 1
}

// Flower is a plant occupying a single cell. It advances one growth stage
// per world tick until fully grown, and is removed on harvest.
type Flower struct {
	Position    Position `json:"position"`
	Type        int      `json:"type"`
	GrowthStage int      `json:"growth_stage"`

	spec FlowerSpec
}

// NewFlower creates a flower of the given type at the given stage.
// The stage is clamped to the spec's valid range.
func NewFlower(pos Position, flowerType int, spec FlowerSpec, growthStage int) *Flower {
	if growthStage < 0 {
		growthStage = 0
	}
	if growthStage > spec.MaxStage() {
		growthStage = spec.MaxStage()
	}
	return &Flower{
		Position:    pos,
		Type:        flowerType,
		GrowthStage: growthStage,
		spec:        spec,
	}
}

// Grow advances the flower by one stage. Idempotent once fully grown.
func (f *Flower) Grow() {
	if f.GrowthStage < f.spec.MaxStage() {
		f.GrowthStage++
	}
}

// IsGrown reports whether the flower has reached its final growth stage.
func (f *Flower) IsGrown() bool {
	return f.GrowthStage == f.spec.MaxStage()
}

// PollutionReduction returns the reduction for the current growth stage.
func (f *Flower) PollutionReduction() float64 {
	return f.spec.PollutionReduction[f.GrowthStage]
}

// Spec returns the flower's type configuration.
func (f *Flower) Spec() FlowerSpec {
	return f.spec
}
