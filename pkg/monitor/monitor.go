// Package monitor polls the arm's reported joint positions.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gwillem/roarm/pkg/robot"
)

// DefaultHz is the default polling rate.
const DefaultHz = 2

// Querier sends a payload and returns the arm's raw response.
type Querier interface {
	Query(ctx context.Context, address string, p robot.Payload) (string, error)
}

// State is one polled position.
type State struct {
	Feedback  robot.Feedback
	Raw       string
	Timestamp time.Time
	Error     error
}

// Config holds configuration for the controller.
type Config struct {
	Address string
	Querier Querier
	Hz      float64
}

// Controller polls the arm at a fixed rate.
type Controller struct {
	address  string
	querier  Querier
	interval time.Duration

	mu      sync.RWMutex
	running bool
	last    State
	hasLast bool
	stateCh chan State
	logCh   chan string
}

// NewController creates a polling controller.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Querier == nil {
		return nil, errors.New("monitor needs a querier")
	}
	if cfg.Address == "" {
		return nil, errors.New("monitor needs an address")
	}
	if cfg.Hz <= 0 {
		cfg.Hz = DefaultHz
	}

	return &Controller{
		address:  cfg.Address,
		querier:  cfg.Querier,
		interval: time.Duration(float64(time.Second) / cfg.Hz),
		stateCh:  make(chan State, 1),
		logCh:    make(chan string, 10),
	}, nil
}

// States returns a channel that receives state updates.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Interval returns the polling interval.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// Last returns the most recent successful reading.
func (c *Controller) Last() (State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last, c.hasLast
}

func (c *Controller) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case c.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Poll queries the arm once.
func (c *Controller) Poll(ctx context.Context) State {
	raw, err := c.querier.Query(ctx, c.address, robot.FeedbackPayload())
	if err != nil {
		return State{Error: fmt.Errorf("query feedback: %w", err), Timestamp: time.Now()}
	}

	fb, err := robot.ParseFeedback(raw)
	if err != nil {
		return State{Raw: raw, Error: err, Timestamp: time.Now()}
	}
	return State{Feedback: fb, Raw: raw, Timestamp: time.Now()}
}

// Start polls until ctx is cancelled.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	c.log("Polling %s every %s", c.address, c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.step(ctx)
	for {
		select {
		case <-ctx.Done():
			c.log("Polling stopped")
			return ctx.Err()
		case <-ticker.C:
			c.step(ctx)
		}
	}
}

func (c *Controller) step(ctx context.Context) {
	s := c.Poll(ctx)
	if s.Error != nil {
		if ctx.Err() != nil {
			return
		}
		c.log("Read error: %v", s.Error)
	} else {
		c.mu.Lock()
		c.last = s
		c.hasLast = true
		c.mu.Unlock()
	}
	c.sendState(s)
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}
