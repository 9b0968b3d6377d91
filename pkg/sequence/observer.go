package sequence

import (
	"time"

	"github.com/gwillem/roarm/pkg/robot"
)

// CommandReport describes one command handled by the Dispatcher.
type CommandReport struct {
	Address  string
	Payload  robot.Payload
	Response string
	Err      error
	TimedOut bool
	Delay    time.Duration
	Outcome  Outcome
}

// Observer receives progress events from a run. Positions are zero-based.
type Observer interface {
	RunStarted(address string, total int)
	StepStarted(pos, total int, step Step)
	CommandFinished(r CommandReport)
	StepFinished(pos, total int, step Step, out Outcome)
	StepInjected(pos, total int, step Step)
	RunFinished(r Result)
}

// NopObserver ignores all events. Embed it to implement only some methods.
type NopObserver struct{}

func (NopObserver) RunStarted(string, int) {}
func (NopObserver) StepStarted(int, int, Step) {}
func (NopObserver) CommandFinished(CommandReport) {}
func (NopObserver) StepFinished(int, int, Step, Outcome) {}
func (NopObserver) StepInjected(int, int, Step) {}
func (NopObserver) RunFinished(Result) {}
