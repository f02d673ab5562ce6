package noise

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Generator draws the uniform noise terms used by the robot and the driver.
// All draws are taken from the single injected source in call order, so two
// generators sharing one source interleave deterministically.
type Generator struct {
	src rand.Source
}

// New wraps src. A nil source falls back to the global math/rand/v2 generator,
// which makes runs non-reproducible.
func New(src rand.Source) *Generator {
	return &Generator{src: src}
}

// NewSeeded creates a deterministic PCG source from the provided seed.
func NewSeeded(seed uint64) rand.Source {
	return rand.NewPCG(seed, 0)
}

// Symmetric returns a draw from U(-1, 1).
func (g *Generator) Symmetric() float64 {
	return g.Uniform(-1.0, 1.0)
}

// Uniform returns a draw from U(min, max).
func (g *Generator) Uniform(min, max float64) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: g.src}.Rand()
}

// Centered returns a source whose every draw lands on the midpoint of the
// requested interval: Symmetric yields exactly 0 and Uniform(a, b) yields (a+b)/2.
func Centered() rand.Source {
	return centered{}
}

// centered always yields 1<<52, which rand.Rand.Float64 maps to exactly 0.5.
type centered struct{}

func (centered) Uint64() uint64 { return 1 << 52 }
