package sequence

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gwillem/roarm/pkg/robot"
)

// recordingSender records every payload and fails the ones listed in fail.
type recordingSender struct {
	sent   []robot.Payload
	delays []time.Duration
	fail   map[robot.Payload]bool
}

func (s *recordingSender) Send(_ context.Context, _ string, p robot.Payload, _, postDelay time.Duration) Outcome {
	s.sent = append(s.sent, p)
	s.delays = append(s.delays, postDelay)
	if s.fail[p] {
		return Failed()
	}
	return Succeeded()
}

func (s *recordingSender) sentStrings() []string {
	out := make([]string, len(s.sent))
	for i, p := range s.sent {
		out[i] = string(p)
	}
	return out
}

// scriptedPrompter answers from a fixed script and reports io.EOF after it.
type scriptedPrompter struct {
	answers   []string
	questions []string
	choices   [][]Choice
}

func (p *scriptedPrompter) Ask(_ context.Context, question string, choices []Choice) (string, error) {
	p.questions = append(p.questions, question)
	p.choices = append(p.choices, choices)
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

// fakeStep returns scripted outcomes, then Success.
type fakeStep struct {
	name     string
	outcomes []Outcome
	calls    int
	onRun    func()
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Execute(context.Context, string, Sender) Outcome {
	s.calls++
	if s.onRun != nil {
		s.onRun()
	}
	if len(s.outcomes) == 0 {
		return Succeeded()
	}
	out := s.outcomes[0]
	s.outcomes = s.outcomes[1:]
	return out
}

// eventObserver records events as short strings.
type eventObserver struct {
	NopObserver
	events   []string
	commands []CommandReport
	result   *Result
	onInject func(step Step)
}

func (o *eventObserver) StepStarted(pos, total int, step Step) {
	o.events = append(o.events, fmt.Sprintf("start %d/%d %s", pos, total, step.Name()))
}

func (o *eventObserver) StepFinished(pos, _ int, step Step, out Outcome) {
	o.events = append(o.events, fmt.Sprintf("finish %d %s %s", pos, step.Name(), out))
}

func (o *eventObserver) StepInjected(pos, total int, step Step) {
	o.events = append(o.events, fmt.Sprintf("inject %d/%d %s", pos, total, step.Name()))
	if o.onInject != nil {
		o.onInject(step)
	}
}

func (o *eventObserver) CommandFinished(r CommandReport) {
	o.commands = append(o.commands, r)
}

func (o *eventObserver) RunFinished(r Result) {
	o.result = &r
}

func fixed(name string, payloads ...string) *FixedStep {
	moves := make([]Move, len(payloads))
	for i, p := range payloads {
		moves[i] = Move{Payload: robot.RawPayload(p)}
	}
	return NewFixedStep(name, moves...)
}

func names(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Name()
	}
	return out
}
