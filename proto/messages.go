// Package proto defines the messages exchanged with the game server and
// their datagram encoding.
package proto

import (
	"strconv"

	"agarclient/game"
)

// Kind discriminates message envelopes.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindJoin
	KindConnect
	KindGameStatusUpdate
	KindPing
	KindChangeSpeed
	KindLeave
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindJoin:             "join",
	KindConnect:          "connect",
	KindGameStatusUpdate: "game_status_update",
	KindPing:             "ping",
	KindChangeSpeed:      "change_speed",
	KindLeave:            "leave",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Message is anything that travels inside an envelope.
type Message interface {
	Kind() Kind
	payload() any
}

// Connect acknowledges a Join and assigns the player id and world.
type Connect struct {
	PlayerID      string
	WorldWidth    float64
	WorldHeight   float64
	TotalNutrient int
}

func (Connect) Kind() Kind { return KindConnect }

func (m Connect) payload() any {
	return connectPayload{
		PlayerID:      m.PlayerID,
		WorldWidth:    m.WorldWidth,
		WorldHeight:   m.WorldHeight,
		TotalNutrient: m.TotalNutrient,
	}
}

// World returns the world parameters carried by m.
func (m Connect) World() game.World {
	return game.World{Width: m.WorldWidth, Height: m.WorldHeight, TotalNutrient: m.TotalNutrient}
}

// GameStatusUpdate is the periodic full-state broadcast.
type GameStatusUpdate struct {
	Snapshot *game.Snapshot
}

func (GameStatusUpdate) Kind() Kind { return KindGameStatusUpdate }

func (m GameStatusUpdate) payload() any { return statusToWire(m.Snapshot) }

// Unknown is any envelope whose type the client does not consume.
type Unknown struct {
	Type    Kind
	Payload []byte
}

func (m Unknown) Kind() Kind { return m.Type }

func (m Unknown) payload() any { return rawPayload(m.Payload) }

// Join asks the server to create a player.
type Join struct {
	Name     string `msgpack:"name"`
	ClientID string `msgpack:"cid"`
}

func (Join) Kind() Kind { return KindJoin }

func (m Join) payload() any { return m }

// Ping keeps the session alive.
type Ping struct{}

func (Ping) Kind() Kind { return KindPing }

func (m Ping) payload() any { return m }

// ChangeSpeed carries the full current speed intent.
type ChangeSpeed struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

func (ChangeSpeed) Kind() Kind { return KindChangeSpeed }

func (m ChangeSpeed) payload() any { return m }

// Leave announces a graceful disconnect.
type Leave struct{}

func (Leave) Kind() Kind { return KindLeave }

func (m Leave) payload() any { return m }

type connectPayload struct {
	PlayerID      string  `msgpack:"id"`
	WorldWidth    float64 `msgpack:"w"`
	WorldHeight   float64 `msgpack:"h"`
	TotalNutrient int     `msgpack:"n"`
}

type wireOrganism struct {
	ID     string  `msgpack:"id"`
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Radius float64 `msgpack:"r"`
	Hue    float64 `msgpack:"h"`
}

type statusPayload struct {
	Players   map[string]wireOrganism `msgpack:"players"`
	Organisms []wireOrganism          `msgpack:"organisms"`
}

func organismToWire(o game.Organism) wireOrganism {
	return wireOrganism{ID: o.ID, X: o.Position.X, Y: o.Position.Y, Radius: o.Radius, Hue: o.Hue}
}

func (w wireOrganism) organism() game.Organism {
	return game.Organism{
		ID:       w.ID,
		Position: game.Position{X: w.X, Y: w.Y},
		Radius:   w.Radius,
		Hue:      w.Hue,
	}
}

func statusToWire(s *game.Snapshot) statusPayload {
	var p statusPayload
	if s == nil {
		return p
	}
	p.Players = make(map[string]wireOrganism, len(s.Players))
	for id, o := range s.Players {
		p.Players[id] = organismToWire(o)
	}
	p.Organisms = make([]wireOrganism, len(s.Organisms))
	for i, o := range s.Organisms {
		p.Organisms[i] = organismToWire(o)
	}
	return p
}

// snapshot converts a decoded status into the game model. Player ids come
// from the map keys.
func (p statusPayload) snapshot() *game.Snapshot {
	s := &game.Snapshot{
		Players:   make(map[string]game.Organism, len(p.Players)),
		Organisms: make([]game.Organism, len(p.Organisms)),
	}
	for id, w := range p.Players {
		o := w.organism()
		o.ID = id
		s.Players[id] = o
	}
	for i, w := range p.Organisms {
		s.Organisms[i] = w.organism()
	}
	return s
}
