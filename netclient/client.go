// Package netclient runs the client side of a game session over UDP: the
// join handshake, keep-alives, the receive loop and command sends.
package netclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"agarclient/game"
	"agarclient/internal/clog"
	"agarclient/proto"

	"github.com/google/uuid"
)

// State is the session's connection state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

var (
	ErrNotConnected     = errors.New("netclient: not connected")
	ErrAlreadyConnected = errors.New("netclient: session already started")
	ErrClosed           = errors.New("netclient: client closed")
)

// Mirror is the part of the state store the client writes to.
type Mirror interface {
	SetIdentity(playerID string, w game.World) error
	HasIdentity() bool
	TryMerge(s *game.Snapshot) bool
}

// Handler receives decoded messages after the built-in handling.
type Handler func(proto.Message)

// DialFunc opens the datagram socket.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Config tunes a Client. Zero fields take defaults.
type Config struct {
	// KeepAlive is the ping period. Default 500ms.
	KeepAlive time.Duration
	// ReadPoll bounds each blocking read so the loop notices shutdown.
	// Default 1s.
	ReadPoll time.Duration
	// ErrorBackoff is the pause after a failed read. Default 100ms.
	ErrorBackoff time.Duration
	// Dial opens the socket. Default net.Dialer.DialContext.
	Dial DialFunc
}

const (
	defaultKeepAlive    = 500 * time.Millisecond
	defaultReadPoll     = time.Second
	defaultErrorBackoff = 100 * time.Millisecond
	maxDatagram         = 65535
)

func (c Config) withDefaults() Config {
	if c.KeepAlive <= 0 {
		c.KeepAlive = defaultKeepAlive
	}
	if c.ReadPoll <= 0 {
		c.ReadPoll = defaultReadPoll
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = defaultErrorBackoff
	}
	if c.Dial == nil {
		d := &net.Dialer{Timeout: 15 * time.Second}
		c.Dial = d.DialContext
	}
	return c
}

// Client owns one session's socket.
type Client struct {
	mirror   Mirror
	cfg      Config
	clientID string

	state atomic.Int32

	mu       sync.Mutex
	conn     net.Conn
	cancel   context.CancelFunc
	started  bool
	closing  bool
	handlers map[proto.Kind][]Handler

	writeMu sync.Mutex
	wg      sync.WaitGroup

	stats counters
}

// New returns a disconnected client that mirrors server state into m.
func New(m Mirror, cfg Config) *Client {
	return &Client{
		mirror:   m,
		cfg:      cfg.withDefaults(),
		clientID: uuid.NewString(),
		handlers: make(map[proto.Kind][]Handler),
	}
}

// State returns the current connection state.
func (c *Client) State() State { return State(c.state.Load()) }

// Ready reports whether the server has acknowledged the join and assigned
// an identity. Commands should only be sent once Ready.
func (c *Client) Ready() bool {
	return c.State() == Connected && c.mirror.HasIdentity()
}

// ClientID is the random id sent with the join request.
func (c *Client) ClientID() string { return c.clientID }

// Handle registers h for messages of kind k.
func (c *Client) Handle(k proto.Kind, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[k] = append(c.handlers[k], h)
}

// Connect dials the server, sends the join request and starts the
// keep-alive and receive loops. The loops run until Close or until ctx is
// done; either way the client ends Disconnected. A client supports a single
// session, and Connect returns ErrClosed once Close has been called.
func (c *Client) Connect(ctx context.Context, host string, port int, name string) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	if c.closing {
		c.mu.Unlock()
		return ErrClosed
	}
	c.started = true
	c.mu.Unlock()

	c.state.Store(int32(Connecting))
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := c.cfg.Dial(ctx, "udp", addr)
	if err != nil {
		c.state.Store(int32(Disconnected))
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	c.stats.started.Store(time.Now().UnixNano())

	if err := c.sendOn(conn, proto.Join{Name: name, ClientID: c.clientID}); err != nil {
		conn.Close()
		c.state.Store(int32(Disconnected))
		return fmt.Errorf("send join: %w", err)
	}
	clog.Debugf("join sent to %s as %q (client %s)", addr, name, c.clientID)

	sessionCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		cancel()
		conn.Close()
		c.state.Store(int32(Disconnected))
		return ErrClosed
	}
	c.conn = conn
	c.cancel = cancel
	c.wg.Add(2)
	c.mu.Unlock()

	go c.keepAliveLoop(sessionCtx)
	go c.readLoop(sessionCtx, conn)
	return nil
}

// ChangeSpeed sends the full speed intent. It fails with ErrNotConnected
// before Connect and after Close.
func (c *Client) ChangeSpeed(intent game.SpeedIntent) error {
	intent = intent.Clamp()
	return c.send(proto.ChangeSpeed{X: intent.X, Y: intent.Y})
}

// Close sends a best-effort leave, stops both loops and closes the socket.
// It is safe to call more than once, and before or during Connect.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return nil
	}
	c.closing = true
	conn, cancel := c.conn, c.cancel
	c.mu.Unlock()
	if conn == nil {
		return nil
	}

	if err := c.sendOn(conn, proto.Leave{}); err != nil {
		clog.Debugf("send leave: %v", err)
	}
	cancel()
	err := conn.Close()
	c.wg.Wait()

	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()
	c.state.Store(int32(Disconnected))
	return err
}

func (c *Client) send(m proto.Message) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil || c.State() == Disconnected {
		return ErrNotConnected
	}
	return c.sendOn(conn, m)
}

func (c *Client) sendOn(conn net.Conn, m proto.Message) error {
	buf, err := proto.Encode(m)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	err = writeDatagram(conn, buf)
	c.writeMu.Unlock()
	if err != nil {
		c.stats.sendErrors.Add(1)
		return fmt.Errorf("send %v: %w", m.Kind(), err)
	}
	c.stats.datagramsOut.Add(1)
	c.stats.bytesOut.Add(uint64(len(buf)))
	clog.DebugPacket("send "+m.Kind().String(), buf)
	return nil
}

// writeDatagram writes buf as one datagram. A short write is an error
// because the remainder would arrive as a separate datagram.
func writeDatagram(conn net.Conn, buf []byte) error {
	n, err := conn.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	return nil
}

func (c *Client) keepAliveLoop(ctx context.Context) {
	defer c.wg.Done()
	t := time.NewTicker(c.cfg.KeepAlive)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if s := c.State(); s != Connecting && s != Connected {
			continue
		}
		if err := c.send(proto.Ping{}); err != nil {
			if ctx.Err() != nil {
				return
			}
			clog.Warnf("keepalive: %v", err)
			continue
		}
		c.stats.keepAlives.Add(1)
	}
}

func (c *Client) readLoop(ctx context.Context, conn net.Conn) {
	defer c.wg.Done()
	defer c.state.Store(int32(Disconnected))
	buf := make([]byte, maxDatagram)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := conn.SetReadDeadline(time.Now().Add(c.cfg.ReadPoll)); err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
		}
		n, err := conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			c.stats.readErrors.Add(1)
			clog.Warnf("read udp: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.ErrorBackoff):
			}
			continue
		}
		if n == 0 {
			continue
		}
		c.Receive(append([]byte(nil), buf[:n]...))
	}
}

// Receive decodes one datagram and dispatches its messages. Malformed
// datagrams are counted and dropped.
func (c *Client) Receive(datagram []byte) {
	c.stats.datagramsIn.Add(1)
	c.stats.bytesIn.Add(uint64(len(datagram)))
	clog.DebugPacket("recv", datagram)

	msgs, err := proto.DecodeDatagram(datagram)
	if err != nil {
		c.stats.malformed.Add(1)
		clog.Debugf("dropping datagram: %v", err)
		return
	}
	for _, m := range msgs {
		c.dispatch(m)
	}
}

func (c *Client) dispatch(m proto.Message) {
	switch m := m.(type) {
	case proto.Connect:
		c.handleConnect(m)
	case proto.GameStatusUpdate:
		c.handleStatus(m)
	default:
		clog.Debugf("ignoring %v message", m.Kind())
	}

	c.mu.Lock()
	hs := c.handlers[m.Kind()]
	c.mu.Unlock()
	for _, h := range hs {
		h(m)
	}
}

func (c *Client) handleConnect(m proto.Connect) {
	if err := c.mirror.SetIdentity(m.PlayerID, m.World()); err != nil {
		clog.Warnf("connect for %q ignored: %v", m.PlayerID, err)
	} else {
		clog.Debugf("connected as %q, world %vx%v, %d nutrient", m.PlayerID, m.WorldWidth, m.WorldHeight, m.TotalNutrient)
	}
	c.state.CompareAndSwap(int32(Connecting), int32(Connected))
}

func (c *Client) handleStatus(m proto.GameStatusUpdate) {
	if !c.mirror.HasIdentity() {
		c.stats.early.Add(1)
		clog.Debugf("status update before connect ack dropped")
		return
	}
	if !c.mirror.TryMerge(m.Snapshot) {
		c.stats.dropped.Add(1)
		clog.Debugf("status update dropped: store busy")
		return
	}
	c.stats.merged.Add(1)
}
