package view

import (
	"testing"

	"agarclient/game"
	"agarclient/geom"
	"agarclient/placement"
	"agarclient/store"
)

var testWorld = game.World{Width: 1000, Height: 1000}

func computeFrame(t *testing.T, s *store.Store, vp placement.Viewport, scale float64) Frame {
	t.Helper()
	var f Frame
	s.Tick(func(v store.View) { f = Compute(v, vp, scale) })
	return f
}

func TestComputeNotReady(t *testing.T) {
	s := store.New()
	vp := placement.Viewport{Width: 800, Height: 600}
	if f := computeFrame(t, s, vp, 1); f.Ready || len(f.Entities) != 0 {
		t.Fatalf("frame before identity = %+v, want empty", f)
	}
	if err := s.SetIdentity("me", testWorld); err != nil {
		t.Fatalf("SetIdentity: %v", err)
	}
	s.Merge(&game.Snapshot{Players: map[string]game.Organism{"other": {ID: "other"}}})
	if f := computeFrame(t, s, vp, 1); f.Ready {
		t.Fatalf("frame without local player is ready")
	}
}

func TestComputeProjectsAcrossEdge(t *testing.T) {
	s := store.New()
	if err := s.SetIdentity("me", testWorld); err != nil {
		t.Fatalf("SetIdentity: %v", err)
	}
	s.Merge(&game.Snapshot{
		Players: map[string]game.Organism{
			"me": {ID: "me", Position: game.Position{X: 990, Y: 500}, Radius: 10, Hue: 0.5},
			"b":  {ID: "b", Position: game.Position{X: 10, Y: 500}, Radius: 5, Hue: 0.25},
		},
		Organisms: []game.Organism{
			{ID: "f1", Position: game.Position{X: 500, Y: 0}, Radius: 2},
			{Position: game.Position{X: 995, Y: 505}, Radius: 1},
			{ID: "far", Position: game.Position{X: 440, Y: 500}, Radius: 1},
		},
	})

	f := computeFrame(t, s, placement.Viewport{Width: 800, Height: 600}, 1)
	if !f.Ready {
		t.Fatalf("frame not ready")
	}
	if f.Position != (game.Position{X: 990, Y: 500}) {
		t.Fatalf("position=%v", f.Position)
	}
	if len(f.Entities) != 4 {
		t.Fatalf("entities=%+v, want 4", f.Entities)
	}

	b := f.Entities[0]
	if b.Key != "p:b" || !b.Player || b.Local {
		t.Fatalf("first entity=%+v, want remote player b", b)
	}
	if b.Anchor != (placement.Point{X: 415, Y: 295}) || b.Size != 10 || b.Hue != 0.25 {
		t.Fatalf("player b=%+v, want anchor {415 295} size 10", b)
	}

	// Past the top/left edge stays in view; past the right edge does not.
	up := f.Entities[1]
	if up.Key != "o:f1" || up.Anchor != (placement.Point{X: -92, Y: -202}) {
		t.Fatalf("second entity=%+v, want o:f1 at {-92 -202}", up)
	}

	food := f.Entities[2]
	if food.Key != "o#1" || food.Player {
		t.Fatalf("third entity=%+v, want unnamed organism", food)
	}
	if food.Anchor != (placement.Point{X: 404, Y: 304}) {
		t.Fatalf("organism anchor=%v, want {404 304}", food.Anchor)
	}

	me := f.Entities[3]
	if me.Key != "p:me" || !me.Local {
		t.Fatalf("last entity=%+v, want local player", me)
	}
	if me.Anchor != (placement.Point{X: 390, Y: 290}) || me.Size != 20 {
		t.Fatalf("local=%+v, want centered at {390 290} size 20", me)
	}
}

func TestComputeScale(t *testing.T) {
	s := store.New()
	if err := s.SetIdentity("me", testWorld); err != nil {
		t.Fatalf("SetIdentity: %v", err)
	}
	s.Merge(&game.Snapshot{
		Players: map[string]game.Organism{
			"me": {Position: game.Position{X: 100, Y: 100}, Radius: 4},
		},
		Organisms: []game.Organism{{ID: "x", Position: game.Position{X: 110, Y: 100}, Radius: 1}},
	})
	f := computeFrame(t, s, placement.Viewport{Width: 200, Height: 200}, 2)
	if len(f.Entities) != 2 {
		t.Fatalf("entities=%+v", f.Entities)
	}
	if got := f.Entities[0]; got.Key != "o:x" || got.Anchor != (placement.Point{X: 118, Y: 98}) || got.Size != 4 {
		t.Fatalf("organism=%+v, want anchor {118 98} size 4", got)
	}
}

func TestComputeDuplicateOrganismIDs(t *testing.T) {
	s := store.New()
	if err := s.SetIdentity("me", testWorld); err != nil {
		t.Fatalf("SetIdentity: %v", err)
	}
	s.Merge(&game.Snapshot{
		Players: map[string]game.Organism{
			"me": {Position: game.Position{X: 100, Y: 100}, Radius: 4},
		},
		Organisms: []game.Organism{
			{ID: "a", Position: game.Position{X: 110, Y: 100}, Radius: 1},
			{ID: "a", Position: game.Position{X: 120, Y: 100}, Radius: 1},
			{ID: "a", Position: game.Position{X: 130, Y: 100}, Radius: 1},
		},
	})
	f := computeFrame(t, s, placement.Viewport{Width: 400, Height: 400}, 1)
	want := []string{"o:a", "o:a#1", "o:a#2", "p:me"}
	if len(f.Entities) != len(want) {
		t.Fatalf("entities=%+v, want %d", f.Entities, len(want))
	}
	for i, k := range want {
		if f.Entities[i].Key != k {
			t.Fatalf("entity %d key=%q, want %q", i, f.Entities[i].Key, k)
		}
	}

	tbl := NewTable(func(e Entity) Entity { return e }, nil, nil)
	if added, _ := tbl.Reconcile(f); added != 4 || tbl.Len() != 4 {
		t.Fatalf("added=%d len=%d, want a handle per organism", added, tbl.Len())
	}
}

type handle struct {
	key     string
	updates int
}

func TestTableReconcile(t *testing.T) {
	var retired []string
	tbl := NewTable(
		func(e Entity) *handle { return &handle{key: e.Key} },
		func(h *handle, e Entity) *handle { h.updates++; return h },
		func(key string, h *handle) { retired = append(retired, key) },
	)

	a, r := tbl.Reconcile(Frame{Entities: []Entity{{Key: "p:a"}, {Key: "o:1"}}})
	if a != 2 || r != 0 || tbl.Len() != 2 {
		t.Fatalf("first reconcile added=%d retired=%d len=%d", a, r, tbl.Len())
	}

	a, r = tbl.Reconcile(Frame{Entities: []Entity{{Key: "p:a"}, {Key: "o:2"}}})
	if a != 1 || r != 1 {
		t.Fatalf("second reconcile added=%d retired=%d, want 1 1", a, r)
	}
	if len(retired) != 1 || retired[0] != "o:1" {
		t.Fatalf("retired=%v, want [o:1]", retired)
	}
	h, ok := tbl.Get("p:a")
	if !ok || h.updates != 1 {
		t.Fatalf("p:a handle=%+v ok=%v, want one update", h, ok)
	}
	if _, ok := tbl.Get("o:1"); ok {
		t.Fatalf("retired handle still present")
	}

	a, r = tbl.Reconcile(Frame{})
	if a != 0 || r != 2 || tbl.Len() != 0 {
		t.Fatalf("empty reconcile added=%d retired=%d len=%d", a, r, tbl.Len())
	}
}

func TestTableNilCallbacks(t *testing.T) {
	tbl := NewTable[int](func(Entity) int { return 7 }, nil, nil)
	tbl.Reconcile(Frame{Entities: []Entity{{Key: "k"}}})
	tbl.Reconcile(Frame{Entities: []Entity{{Key: "k"}}})
	if v, ok := tbl.Get("k"); !ok || v != 7 {
		t.Fatalf("Get=%v,%v", v, ok)
	}
	tbl.Reconcile(Frame{})
	if tbl.Len() != 0 {
		t.Fatalf("len=%d", tbl.Len())
	}
}

func TestGridScroll(t *testing.T) {
	g := Grid{Spacing: 100}
	vp := placement.Viewport{Width: 300, Height: 200}

	xs, ys := g.Lines(vp)
	if len(xs) != 3 || len(ys) != 2 || xs[0] != 0 || ys[0] != 0 {
		t.Fatalf("initial lines xs=%v ys=%v", xs, ys)
	}

	g.Advance(geom.Vec{X: 30, Y: -250}, 1)
	xs, ys = g.Lines(vp)
	wantX := []float64{70, 170, 270}
	wantY := []float64{50, 150}
	if len(xs) != len(wantX) || len(ys) != len(wantY) {
		t.Fatalf("xs=%v ys=%v, want %v %v", xs, ys, wantX, wantY)
	}
	for i := range wantX {
		if xs[i] != wantX[i] {
			t.Fatalf("xs=%v, want %v", xs, wantX)
		}
	}
	for i := range wantY {
		if ys[i] != wantY[i] {
			t.Fatalf("ys=%v, want %v", ys, wantY)
		}
	}
}

func TestGridDefaultSpacing(t *testing.T) {
	var g Grid
	g.Advance(geom.Vec{X: 1}, 2)
	xs, _ := g.Lines(placement.Viewport{Width: 400, Height: 10})
	if len(xs) != 2 || xs[0] != 148 || xs[1] != 298 {
		t.Fatalf("xs=%v, want [148 298]", xs)
	}
}
