// Package input turns directional key presses into the speed intent sent to
// the server.
package input

import (
	"sync"
	"time"

	"agarclient/game"
	"agarclient/internal/clog"

	"golang.org/x/time/rate"
)

// Key is a directional input.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// SDL scancodes for the arrow keys.
const (
	scancodeRight = 79
	scancodeLeft  = 80
	scancodeDown  = 81
	scancodeUp    = 82
)

// FromScancode maps an SDL keyboard scancode to a Key.
func FromScancode(code int) Key {
	switch code {
	case scancodeRight:
		return KeyRight
	case scancodeLeft:
		return KeyLeft
	case scancodeDown:
		return KeyDown
	case scancodeUp:
		return KeyUp
	}
	return KeyNone
}

// Sender is the network side of the controller.
type Sender interface {
	Ready() bool
	ChangeSpeed(game.SpeedIntent) error
}

// Config tunes the send rate limit. Zero fields take defaults.
type Config struct {
	// Rate is the sustained number of commands per second. Default 30.
	Rate float64
	// Burst is how many commands may be sent back to back. Default 10.
	Burst int
}

const (
	defaultRate  = 30
	defaultBurst = 10
)

// Controller owns the speed intent. Intent is kept in integer tenths so
// repeated steps land exactly on the bounds.
type Controller struct {
	sender  Sender
	limiter *rate.Limiter

	mu      sync.Mutex
	x, y    int
	pending *time.Timer
	closed  bool
}

// New returns a controller with a zero intent.
func New(s Sender, cfg Config) *Controller {
	if cfg.Rate <= 0 {
		cfg.Rate = defaultRate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	return &Controller{
		sender:  s,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
	}
}

// Intent returns the current intent.
func (c *Controller) Intent() game.SpeedIntent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intent()
}

func (c *Controller) intent() game.SpeedIntent {
	return game.SpeedIntent{
		X: float64(c.x) / game.IntentSteps,
		Y: float64(c.y) / game.IntentSteps,
	}
}

// HandleKey applies one key press. It returns false when the press was
// ignored: an unknown key, or the session is not connected yet.
func (c *Controller) HandleKey(k Key) bool {
	if k == KeyNone || !c.sender.Ready() {
		return false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	switch k {
	case KeyUp:
		c.y = min(game.IntentSteps, c.y+1)
	case KeyDown:
		c.y = max(-game.IntentSteps, c.y-1)
	case KeyLeft:
		c.x = max(-game.IntentSteps, c.x-1)
	case KeyRight:
		c.x = min(game.IntentSteps, c.x+1)
	}
	intent := c.intent()

	r := c.limiter.Reserve()
	delay := r.Delay()
	if delay > 0 {
		if c.pending == nil {
			c.pending = time.AfterFunc(delay, c.flush)
		} else {
			r.Cancel()
		}
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()

	c.send(intent)
	return true
}

// flush sends the intent as it is now, after a rate-limited press.
func (c *Controller) flush() {
	c.mu.Lock()
	c.pending = nil
	if c.closed {
		c.mu.Unlock()
		return
	}
	intent := c.intent()
	c.mu.Unlock()
	c.send(intent)
}

func (c *Controller) send(intent game.SpeedIntent) {
	if err := c.sender.ChangeSpeed(intent); err != nil {
		clog.Errorf("change speed: %v", err)
	}
}

// Reset zeroes the intent without sending it.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.x, c.y = 0, 0
}

// Close cancels a pending send. Later key presses are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}
