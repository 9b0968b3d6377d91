package sequence

import (
	"context"
	"time"

	"github.com/gwillem/roarm/pkg/robot"
)

// Step is one named unit of a run.
type Step interface {
	Name() string
	Execute(ctx context.Context, address string, s Sender) Outcome
}

// Sender delivers one payload to the arm and classifies the result as
// Success or Failure, then waits postDelay. A non-positive timeout means
// the sender's default.
type Sender interface {
	Send(ctx context.Context, address string, p robot.Payload, timeout, postDelay time.Duration) Outcome
}

// Move is one command of a FixedStep followed by its settling delay.
type Move struct {
	Payload robot.Payload
	Delay   time.Duration
}

// FixedStep sends a fixed list of commands in order.
type FixedStep struct {
	Title   string
	Moves   []Move
	Timeout time.Duration
}

// NewFixedStep creates a FixedStep from moves.
func NewFixedStep(title string, moves ...Move) *FixedStep {
	return &FixedStep{Title: title, Moves: moves}
}

// Name returns the step title.
func (s *FixedStep) Name() string { return s.Title }

// Execute sends each move and stops at the first failure; moves after it
// are never sent.
func (s *FixedStep) Execute(ctx context.Context, address string, sender Sender) Outcome {
	for _, m := range s.Moves {
		out := sender.Send(ctx, address, m.Payload, s.Timeout, m.Delay)
		if out.Kind != Success {
			return out
		}
	}
	return Succeeded()
}
