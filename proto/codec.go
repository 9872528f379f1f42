package proto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrMalformed wraps every decoding failure.
var ErrMalformed = errors.New("proto: malformed message")

// MaxFrame is the largest frame the 2-byte length prefix can describe.
const MaxFrame = math.MaxUint16

// envelope is the msgpack body of every frame.
type envelope struct {
	Type    Kind               `msgpack:"t"`
	Payload msgpack.RawMessage `msgpack:"p"`
}

func rawPayload(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return msgpack.RawMessage(b)
}

// Encode returns m as a single length-prefixed frame, ready to be sent as a
// datagram.
func Encode(m Message) ([]byte, error) {
	payload, err := msgpack.Marshal(m.payload())
	if err != nil {
		return nil, fmt.Errorf("encode %v payload: %w", m.Kind(), err)
	}
	body, err := msgpack.Marshal(envelope{Type: m.Kind(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %v envelope: %w", m.Kind(), err)
	}
	if len(body) > MaxFrame {
		return nil, fmt.Errorf("encode %v: frame of %d bytes exceeds %d", m.Kind(), len(body), MaxFrame)
	}
	buf := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(buf[:2], uint16(len(body)))
	copy(buf[2:], body)
	return buf, nil
}

// Split returns the frames in a datagram. Several frames may share one
// datagram. A truncated or empty frame makes the whole datagram invalid.
func Split(datagram []byte) ([][]byte, error) {
	var frames [][]byte
	for len(datagram) > 0 {
		if len(datagram) < 2 {
			return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(datagram))
		}
		sz := int(binary.BigEndian.Uint16(datagram[:2]))
		if sz == 0 {
			return nil, fmt.Errorf("%w: empty frame", ErrMalformed)
		}
		if len(datagram) < 2+sz {
			return nil, fmt.Errorf("%w: frame of %d bytes, have %d", ErrMalformed, sz, len(datagram)-2)
		}
		frames = append(frames, datagram[2:2+sz])
		datagram = datagram[2+sz:]
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: empty datagram", ErrMalformed)
	}
	return frames, nil
}

// Decode parses one frame body. Envelopes of a kind the client does not
// consume decode to Unknown without error.
func Decode(frame []byte) (Message, error) {
	var env envelope
	if err := msgpack.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrMalformed, err)
	}
	switch env.Type {
	case KindConnect:
		var p connectPayload
		if err := msgpack.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: connect: %v", ErrMalformed, err)
		}
		if p.PlayerID == "" || !(p.WorldWidth > 0) || !(p.WorldHeight > 0) {
			return nil, fmt.Errorf("%w: connect: id %q world %vx%v", ErrMalformed, p.PlayerID, p.WorldWidth, p.WorldHeight)
		}
		return Connect{
			PlayerID:      p.PlayerID,
			WorldWidth:    p.WorldWidth,
			WorldHeight:   p.WorldHeight,
			TotalNutrient: p.TotalNutrient,
		}, nil
	case KindGameStatusUpdate:
		var p statusPayload
		if err := msgpack.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: status: %v", ErrMalformed, err)
		}
		return GameStatusUpdate{Snapshot: p.snapshot()}, nil
	default:
		return Unknown{Type: env.Type, Payload: []byte(env.Payload)}, nil
	}
}

// DecodeDatagram splits a datagram and decodes every frame. It stops at the
// first malformed frame.
func DecodeDatagram(datagram []byte) ([]Message, error) {
	frames, err := Split(datagram)
	if err != nil {
		return nil, err
	}
	msgs := make([]Message, 0, len(frames))
	for _, f := range frames {
		m, err := Decode(f)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
