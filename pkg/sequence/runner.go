package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/gwillem/roarm/pkg/logging"
)

var (
	// ErrStepFailed wraps the name of the step that ended a run as Failed.
	ErrStepFailed = errors.New("step failed")

	// ErrUnknownBranch is returned when a selected key has no branch.
	ErrUnknownBranch = errors.New("unknown branch")
)

// Sequence is the ordered list of steps of one run plus the cursor of the
// step about to execute. It only grows while running.
type Sequence struct {
	steps  []Step
	cursor int
}

// NewSequence creates a Sequence over steps.
func NewSequence(steps ...Step) *Sequence {
	return &Sequence{steps: append([]Step(nil), steps...)}
}

// Len returns the number of steps.
func (s *Sequence) Len() int { return len(s.steps) }

// Cursor returns the index of the next step to execute.
func (s *Sequence) Cursor() int { return s.cursor }

// Steps returns a copy of the steps in order.
func (s *Sequence) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// Append adds a step at the end.
func (s *Sequence) Append(step Step) {
	s.steps = append(s.steps, step)
}

// insertAfter places step at i+1, shifting later steps right.
func (s *Sequence) insertAfter(i int, step Step) {
	s.steps = append(s.steps, nil)
	copy(s.steps[i+2:], s.steps[i+1:])
	s.steps[i+1] = step
}

// State is how a run ended.
type State int

const (
	Completed State = iota
	Failed
	Aborted
)

func (s State) String() string {
	switch s {
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result describes the end of a run.
type Result struct {
	State    State
	Index    int    // position of the step that ended the run, Len() when completed
	Step     string // name of that step, empty when completed
	Executed int    // number of step executions
	Err      error  // set for Failed runs
}

// RunnerConfig holds the collaborators of a Runner.
type RunnerConfig struct {
	Address  string
	Sender   Sender
	Registry *Registry
	Branches map[string]string // selection key -> registry name
	Observer Observer
	Logger   *logging.Logger
}

// Runner executes a Sequence step by step.
type Runner struct {
	address  string
	sender   Sender
	registry *Registry
	branches map[string]string
	observer Observer
	logger   *logging.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Registry == nil {
		cfg.Registry = NewRegistry(nil)
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger()
	}

	branches := make(map[string]string, len(cfg.Branches))
	for k, v := range cfg.Branches {
		branches[k] = v
	}

	return &Runner{
		address:  cfg.Address,
		sender:   cfg.Sender,
		registry: cfg.Registry,
		branches: branches,
		observer: cfg.Observer,
		logger:   cfg.Logger,
	}
}

// Run executes seq until it completes, a step fails or aborts, or ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context, seq *Sequence) Result {
	r.logger.Info("run started", "address", r.address, "steps", seq.Len())
	r.observer.RunStarted(r.address, seq.Len())

	res := r.run(ctx, seq)

	args := []any{"state", res.State.String(), "executed", res.Executed}
	if res.Step != "" {
		args = append(args, "step", res.Step, "index", res.Index)
	}
	if res.Err != nil {
		args = append(args, "error", res.Err.Error())
	}
	r.logger.Info("run finished", args...)
	r.observer.RunFinished(res)
	return res
}

func (r *Runner) run(ctx context.Context, seq *Sequence) Result {
	executed := 0
	for seq.cursor < seq.Len() {
		i := seq.cursor
		step := seq.steps[i]

		if ctx.Err() != nil {
			return Result{State: Aborted, Index: i, Step: step.Name(), Executed: executed}
		}

		r.logger.Debug("step started", "step", step.Name(), "index", i)
		r.observer.StepStarted(i, seq.Len(), step)

		out := step.Execute(ctx, r.address, r.sender)
		executed++
		if ctx.Err() != nil {
			// An interrupt during any blocking point ends the run.
			out = Aborted()
		}

		r.logger.Debug("step finished", "step", step.Name(), "index", i, "outcome", out.String())
		r.observer.StepFinished(i, seq.Len(), step, out)

		switch out.Kind {
		case Success:
			seq.cursor = i + 1
		case Failure:
			return Result{
				State:    Failed,
				Index:    i,
				Step:     step.Name(),
				Executed: executed,
				Err:      fmt.Errorf("%w: %s", ErrStepFailed, step.Name()),
			}
		case Abort:
			return Result{State: Aborted, Index: i, Step: step.Name(), Executed: executed}
		case Repeat:
			seq.cursor = rewind(i)
		case SelectKey:
			next, err := r.resolve(out.Key)
			if err != nil {
				return Result{State: Failed, Index: i, Step: step.Name(), Executed: executed, Err: err}
			}
			seq.insertAfter(i, next)
			r.logger.Info("step injected", "step", next.Name(), "index", i+1, "key", out.Key)
			r.observer.StepInjected(i+1, seq.Len(), next)
			seq.cursor = i + 1
		default:
			return Result{
				State:    Failed,
				Index:    i,
				Step:     step.Name(),
				Executed: executed,
				Err:      fmt.Errorf("step %s returned %s", step.Name(), out),
			}
		}
	}
	return Result{State: Completed, Index: seq.Len(), Executed: executed}
}

// rewind moves the cursor back two places and applies the normal advance,
// so the step before i runs next. It never goes before the first step: a
// Repeat at cursor 0 runs step 0 again.
func rewind(i int) int {
	return max(i-2+1, 0)
}

func (r *Runner) resolve(key string) (Step, error) {
	name, ok := r.branches[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBranch, key)
	}
	step, err := r.registry.New(name)
	if err != nil {
		return nil, fmt.Errorf("branch %q: %w", key, err)
	}
	return step, nil
}
