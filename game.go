package main

import (
	"bytes"
	"context"
	"image/color"
	"math"

	"agarclient/game"
	"agarclient/input"
	"agarclient/internal/clog"
	"agarclient/netclient"
	"agarclient/placement"
	"agarclient/store"
	"agarclient/view"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	backgroundColor = color.RGBA{16, 16, 24, 255}
	gridColor       = color.RGBA{40, 40, 56, 255}
	hudColor        = color.RGBA{200, 200, 200, 255}
)

var arrowKeys = []struct {
	key ebiten.Key
	dir input.Key
}{
	{ebiten.KeyArrowUp, input.KeyUp},
	{ebiten.KeyArrowDown, input.KeyDown},
	{ebiten.KeyArrowLeft, input.KeyLeft},
	{ebiten.KeyArrowRight, input.KeyRight},
}

// sprite is the render handle kept for each visible entity.
type sprite struct {
	cx, cy float32
	r      float32
	clr    color.RGBA
}

func newSprite(e view.Entity) *sprite {
	s := &sprite{clr: hueColor(e.Hue)}
	return s.place(e)
}

func (s *sprite) place(e view.Entity) *sprite {
	half := e.Size / 2
	s.cx = float32(e.Anchor.X + half)
	s.cy = float32(e.Anchor.Y + half)
	s.r = float32(half)
	return s
}

// Game drives one render tick per ebiten update and draws the last frame.
type Game struct {
	ctx    context.Context
	store  *store.Store
	client *netclient.Client
	ctrl   *input.Controller

	vp    placement.Viewport
	scale float64

	grid     view.Grid
	table    *view.Table[*sprite]
	frame    view.Frame
	lastSnap *game.Snapshot

	face *text.GoTextFace
}

func newGame(ctx context.Context, st *store.Store, c *netclient.Client, ctrl *input.Controller) *Game {
	g := &Game{
		ctx:    ctx,
		store:  st,
		client: c,
		ctrl:   ctrl,
		vp:     placement.Viewport{Width: float64(gs.WindowWidth), Height: float64(gs.WindowHeight)},
		scale:  gs.Scale,
		grid:   view.Grid{Spacing: gs.GridSpacing},
	}
	g.table = view.NewTable(newSprite, func(s *sprite, e view.Entity) *sprite {
		return s.place(e)
	}, nil)
	if src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF)); err == nil {
		g.face = &text.GoTextFace{Source: src, Size: 14}
	} else {
		clog.Warnf("load HUD font: %v", err)
	}
	return g
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	for _, k := range arrowKeys {
		if inpututil.IsKeyJustPressed(k.key) {
			g.ctrl.HandleKey(k.dir)
		}
	}
	g.tick()
	return nil
}

// tick runs one read-compute cycle with the store locked.
func (g *Game) tick() {
	g.store.Tick(func(v store.View) {
		g.frame = view.Compute(v, g.vp, g.scale)
		if v.Snapshot != g.lastSnap {
			g.lastSnap = v.Snapshot
			if m, ok := v.Motion(); ok {
				g.grid.Advance(m, g.scale)
			}
		}
	})
	added, retired := g.table.Reconcile(g.frame)
	if clog.DebugEnabled() && (added > 0 || retired > 0) {
		clog.Debugf("tick: %d visible, +%d -%d", len(g.frame.Entities), added, retired)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	xs, ys := g.grid.Lines(g.vp)
	w, h := float32(g.vp.Width), float32(g.vp.Height)
	for _, x := range xs {
		vector.StrokeLine(screen, float32(x), 0, float32(x), h, 2, gridColor, false)
	}
	for _, y := range ys {
		vector.StrokeLine(screen, 0, float32(y), w, float32(y), 2, gridColor, false)
	}

	for _, e := range g.frame.Entities {
		s, ok := g.table.Get(e.Key)
		if !ok {
			continue
		}
		vector.DrawFilledCircle(screen, s.cx, s.cy, s.r, s.clr, true)
	}

	if g.face != nil {
		op := &text.DrawOptions{}
		op.GeoM.Translate(8, 8)
		op.ColorScale.ScaleWithColor(hudColor)
		text.Draw(screen, hudLine(g.client.State(), g.client.Stats(), ebiten.ActualTPS()), g.face, op)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.vp = placement.Viewport{Width: float64(outsideWidth), Height: float64(outsideHeight)}
	return outsideWidth, outsideHeight
}

// hueColor converts a hue in [0,1] to a fully saturated, bright colour.
func hueColor(hue float64) color.RGBA {
	h := math.Mod(hue*360, 360)
	if math.IsNaN(h) {
		h = 0
	} else if h < 0 {
		h += 360
	}
	x := 1 - math.Abs(math.Mod(h/60, 2)-1)
	var r, gr, b float64
	switch {
	case h < 60:
		r, gr, b = 1, x, 0
	case h < 120:
		r, gr, b = x, 1, 0
	case h < 180:
		r, gr, b = 0, 1, x
	case h < 240:
		r, gr, b = 0, x, 1
	case h < 300:
		r, gr, b = x, 0, 1
	default:
		r, gr, b = 1, 0, x
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(gr * 255), B: uint8(b * 255), A: 255}
}
