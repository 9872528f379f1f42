// Package game holds the client's mirror of the server's data model.
package game

import "math"

// World describes the playfield announced by the server on connect. Both
// axes wrap: a position just past Width is the same as one just past 0.
type World struct {
	Width         float64
	Height        float64
	TotalNutrient int
}

// Position is a point in world coordinates.
type Position struct {
	X, Y float64
}

// Organism is any entity the server broadcasts: food, bacteria and
// players alike. Hue is in [0,1].
type Organism struct {
	ID       string
	Position Position
	Radius   float64
	Hue      float64
}

// Snapshot is one server broadcast. Once published to the store it is
// never modified; a newer broadcast replaces it as a whole.
type Snapshot struct {
	Players   map[string]Organism
	Organisms []Organism
}

// Player returns the player with the given id.
func (s *Snapshot) Player(id string) (Organism, bool) {
	if s == nil || s.Players == nil {
		return Organism{}, false
	}
	o, ok := s.Players[id]
	return o, ok
}

// Intent step and bounds, in tenths.
const (
	IntentSteps    = 10
	IntentStepSize = 1.0 / IntentSteps
)

// SpeedIntent is the movement the player asks the server for. Each axis
// lies in [-1,1].
type SpeedIntent struct {
	X, Y float64
}

// Clamp limits both axes to [-1,1] and maps NaN to 0.
func (s SpeedIntent) Clamp() SpeedIntent {
	return SpeedIntent{X: clampUnit(s.X), Y: clampUnit(s.Y)}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
