package scene

import (
	"math"
	"math/rand/v2"
)

const (
	backgroundDots = 90
	// Parallax is the share of the pan delta the background dots follow.
	Parallax = 0.2
)

// Dot is a decorative background dot in screen space.
type Dot struct {
	X, Y, R float64
	Opacity float64
}

// Field is the fixed set of background dots, seeded once and reused by every
// render. Positions are stored in unit space.
type Field struct {
	dots []Dot
}

// NewField seeds a dot field.
func NewField(seed uint64) *Field {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	f := &Field{dots: make([]Dot, backgroundDots)}
	for i := range f.dots {
		f.dots[i] = Dot{
			X:       rng.Float64(),
			Y:       rng.Float64(),
			R:       0.6 + rng.Float64()*1.4,
			Opacity: 0.05 + rng.Float64()*0.15,
		}
	}
	return f
}

// Place maps the field onto a width x height screen, shifted by the parallax
// share of the pan offset and wrapped at the edges.
func (f *Field) Place(width, height, panX, panY float64) []Dot {
	if f == nil || width <= 0 || height <= 0 {
		return nil
	}
	out := make([]Dot, len(f.dots))
	for i, d := range f.dots {
		d.X = wrap(d.X*width+panX*Parallax, width)
		d.Y = wrap(d.Y*height+panY*Parallax, height)
		out[i] = d
	}
	return out
}

func wrap(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}
