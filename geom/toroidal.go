// Package geom implements vector math on the wrapping playfield.
package geom

import (
	"math"
	"runtime"

	"agarclient/game"

	"github.com/remeh/sizedwaitgroup"
)

// Vec is a displacement in world units.
type Vec struct {
	X, Y float64
}

// Add returns v+o.
func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }

// Scale returns v*f.
func (v Vec) Scale(f float64) Vec { return Vec{X: v.X * f, Y: v.Y * f} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// axis returns the shortest signed distance from a to b on a circle of
// circumference dim. The result is in [-dim/2, dim/2].
func axis(a, b, dim float64) float64 {
	raw := math.Mod(b-a, dim)
	if math.Abs(raw) > dim/2 {
		if raw > 0 {
			raw -= dim
		} else {
			raw += dim
		}
	}
	return raw
}

// Vector returns the shortest displacement from `from` to `to` in w. Each
// axis is handled independently and wraps when crossing the edge is
// shorter than the direct path. A zero-sized world yields NaN.
func Vector(from, to game.Position, w game.World) Vec {
	return Vec{
		X: axis(from.X, to.X, w.Width),
		Y: axis(from.Y, to.Y, w.Height),
	}
}

// Distance is the length of Vector(from, to, w).
func Distance(from, to game.Position, w game.World) float64 {
	return Vector(from, to, w).Len()
}

// parallelThreshold is the batch size above which VectorBatch splits the
// work across CPUs. Below it the goroutine overhead dominates.
var parallelThreshold = 4096

const chunkSize = 1024

// VectorBatch returns Vector(origin, t, w) for every target, in order.
func VectorBatch(origin game.Position, targets []game.Position, w game.World) []Vec {
	out := make([]Vec, len(targets))
	if len(targets) < parallelThreshold {
		vectorRange(out, origin, targets, w)
		return out
	}

	wg := sizedwaitgroup.New(runtime.NumCPU())
	for start := 0; start < len(targets); start += chunkSize {
		end := min(start+chunkSize, len(targets))
		wg.Add()
		go func(start, end int) {
			defer wg.Done()
			vectorRange(out[start:end], origin, targets[start:end], w)
		}(start, end)
	}
	wg.Wait()
	return out
}

func vectorRange(out []Vec, origin game.Position, targets []game.Position, w game.World) {
	halfW, halfH := w.Width/2, w.Height/2
	for i, t := range targets {
		dx := math.Mod(t.X-origin.X, w.Width)
		if dx > halfW {
			dx -= w.Width
		} else if dx < -halfW {
			dx += w.Width
		}
		dy := math.Mod(t.Y-origin.Y, w.Height)
		if dy > halfH {
			dy -= w.Height
		} else if dy < -halfH {
			dy += w.Height
		}
		out[i] = Vec{X: dx, Y: dy}
	}
}
