package view

import (
	"math"

	"agarclient/geom"
	"agarclient/placement"
)

// DefaultGridSpacing is the distance between background lines in pixels.
const DefaultGridSpacing = 150

// Grid is the background line pattern. It scrolls against the local
// player's motion so the player appears to move over it.
type Grid struct {
	Spacing float64
	offX    float64
	offY    float64
}

// Advance scrolls the grid by the player's motion, in world units.
func (g *Grid) Advance(m geom.Vec, scale float64) {
	s := g.spacing()
	g.offX = wrap(g.offX-m.X*scale, s)
	g.offY = wrap(g.offY-m.Y*scale, s)
}

// Lines returns the x positions of vertical lines and the y positions of
// horizontal lines covering vp.
func (g *Grid) Lines(vp placement.Viewport) (xs, ys []float64) {
	s := g.spacing()
	for x := g.offX; x < vp.Width; x += s {
		xs = append(xs, x)
	}
	for y := g.offY; y < vp.Height; y += s {
		ys = append(ys, y)
	}
	return xs, ys
}

func (g *Grid) spacing() float64 {
	if g.Spacing <= 0 {
		return DefaultGridSpacing
	}
	return g.Spacing
}

func wrap(v, m float64) float64 {
	v = math.Mod(v, m)
	if v < 0 {
		v += m
	}
	if v >= m {
		v = 0
	}
	return v
}
