// Package view turns a consistent store view into what one render tick
// draws: projected, visible entities relative to the local player, the
// ownership table of render handles, and the scrolling background grid.
package view

import (
	"sort"
	"strconv"

	"agarclient/game"
	"agarclient/geom"
	"agarclient/placement"
	"agarclient/store"
)

// Entity is one circle to draw.
type Entity struct {
	// Key identifies the entity across ticks. Players are "p:<id>",
	// organisms "o:<id>", "o:<id>#<index>" for a repeated id, or
	// "o#<index>" when the server sent no id.
	Key    string
	Anchor placement.Point
	// Size is the side of the bounding square in pixels.
	Size   float64
	Hue    float64
	Player bool
	Local  bool
}

// Frame is the output of one tick.
type Frame struct {
	// Ready is false until the local player appears in a snapshot. Nothing
	// can be placed before that.
	Ready    bool
	Position game.Position
	Entities []Entity
}

// Compute projects every player and organism around the local player and
// keeps the visible ones. The local player is always last and centered.
// It must be called with a view obtained from store.Tick.
func Compute(v store.View, vp placement.Viewport, scale float64) Frame {
	me, ok := v.ActualPosition()
	if !ok || !v.Identified() || v.Snapshot == nil {
		return Frame{}
	}
	snap := v.Snapshot
	localID := v.Identity.PlayerID

	ids := make([]string, 0, len(snap.Players))
	for id := range snap.Players {
		if id != localID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	n := len(ids) + len(snap.Organisms)
	keys := make([]string, 0, n)
	targets := make([]game.Position, 0, n)
	radii := make([]float64, 0, n)
	hues := make([]float64, 0, n)
	for _, id := range ids {
		o := snap.Players[id]
		keys = append(keys, "p:"+id)
		targets = append(targets, o.Position)
		radii = append(radii, o.Radius)
		hues = append(hues, o.Hue)
	}
	seen := make(map[string]struct{}, len(snap.Organisms))
	for i, o := range snap.Organisms {
		keys = append(keys, organismKey(o.ID, i, seen))
		targets = append(targets, o.Position)
		radii = append(radii, o.Radius)
		hues = append(hues, o.Hue)
	}

	center := vp.Center()
	vectors := geom.VectorBatch(me, targets, v.Identity.World)
	anchors, err := placement.Project(vectors, radii, center, scale)
	if err != nil {
		return Frame{}
	}

	f := Frame{Ready: true, Position: me, Entities: make([]Entity, 0, n+1)}
	for i, a := range anchors {
		size := 2 * radii[i] * scale
		if !placement.Visible(a, size, vp) {
			continue
		}
		f.Entities = append(f.Entities, Entity{
			Key:    keys[i],
			Anchor: a,
			Size:   size,
			Hue:    hues[i],
			Player: i < len(ids),
		})
	}

	local, _ := snap.Player(localID)
	f.Entities = append(f.Entities, Entity{
		Key:    "p:" + localID,
		Anchor: placement.Anchor(geom.Vec{}, local.Radius, center, scale),
		Size:   2 * local.Radius * scale,
		Hue:    local.Hue,
		Player: true,
		Local:  true,
	})
	return f
}

// organismKey keeps keys unique within one snapshot. The first organism
// with a given id owns "o:<id>"; repeats are qualified by their index.
func organismKey(id string, i int, seen map[string]struct{}) string {
	if id == "" {
		return "o#" + strconv.Itoa(i)
	}
	k := "o:" + id
	if _, dup := seen[k]; dup {
		return k + "#" + strconv.Itoa(i)
	}
	seen[k] = struct{}{}
	return k
}
