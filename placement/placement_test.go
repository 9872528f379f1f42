package placement

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"agarclient/geom"
)

func TestProjectAnchor(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	center := Point{X: 400, Y: 300}
	for i := 0; i < 1000; i++ {
		scale := 0.1 + r.Float64()*4
		v := geom.Vec{X: (r.Float64() - 0.5) * 500, Y: (r.Float64() - 0.5) * 500}
		radius := r.Float64() * 40

		got, err := Project([]geom.Vec{v}, []float64{radius}, center, scale)
		if err != nil {
			t.Fatalf("Project: %v", err)
		}
		cx := center.X + v.X*scale
		cy := center.Y + v.Y*scale
		wantX := cx - radius*scale
		wantY := cy - radius*scale
		if math.Abs(got[0].X-wantX) > 1 || math.Abs(got[0].Y-wantY) > 1 {
			t.Fatalf("anchor=%v, want (%v,%v)", got[0], wantX, wantY)
		}
		if a := Anchor(v, radius, center, scale); a != got[0] {
			t.Fatalf("Anchor=%v, Project=%v", a, got[0])
		}
	}
}

func TestProjectExact(t *testing.T) {
	got, err := Project(
		[]geom.Vec{{X: 10, Y: -5}, {X: 0, Y: 0}},
		[]float64{2, 10},
		Point{X: 100, Y: 50},
		2,
	)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	want := []Point{{X: 116, Y: 36}, {X: 80, Y: 30}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("anchor[%d]=%v, want %v", i, got[i], want[i])
		}
	}
}

func TestProjectLengthMismatch(t *testing.T) {
	_, err := Project([]geom.Vec{{}}, nil, Point{}, 1)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err=%v, want ErrLengthMismatch", err)
	}
}

func TestVisible(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	tests := []struct {
		name string
		p    Point
		size float64
		want bool
	}{
		{"inside", Point{X: 10, Y: 10}, 20, true},
		{"right edge exclusive", Point{X: 800, Y: 10}, 20, false},
		{"bottom edge exclusive", Point{X: 10, Y: 600}, 20, false},
		{"just inside bottom right", Point{X: 799.5, Y: 599.5}, 20, true},
		{"beyond right", Point{X: 900, Y: 10}, 20, false},
		{"partly over left", Point{X: -10, Y: 10}, 20, true},
		{"partly over top", Point{X: 10, Y: -19}, 20, true},
		{"far past left", Point{X: -1000, Y: 10}, 20, true},
		{"far past top", Point{X: 10, Y: -1000}, 20, true},
		{"past top and right", Point{X: 800, Y: -1000}, 20, false},
	}
	for _, tt := range tests {
		if got := Visible(tt.p, tt.size, vp); got != tt.want {
			t.Fatalf("%s: Visible(%v)=%v, want %v", tt.name, tt.p, got, tt.want)
		}
	}
}

func TestViewportCenter(t *testing.T) {
	if c := (Viewport{Width: 640, Height: 480}).Center(); c != (Point{X: 320, Y: 240}) {
		t.Fatalf("Center=%v", c)
	}
}
