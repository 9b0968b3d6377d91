package sequence

import (
	"context"
	"sort"
	"strings"
)

// Operator tokens, matched case-insensitively.
const (
	SkipToken   = "s"
	RepeatToken = "r"
	AbortToken  = "a"
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// WaitStep pauses the run until the operator answers. It sends nothing to
// the arm.
type WaitStep struct {
	Title  string
	Prompt Prompter
}

// NewWaitStep creates a WaitStep reading answers from p.
func NewWaitStep(title string, p Prompter) *WaitStep {
	return &WaitStep{Title: title, Prompt: p}
}

// Name returns the step title.
func (s *WaitStep) Name() string { return s.Title }

// Execute maps the answer: RepeatToken repeats the previous step, end of
// input aborts, anything else continues.
func (s *WaitStep) Execute(ctx context.Context, _ string, _ Sender) Outcome {
	answer, err := s.Prompt.Ask(ctx, "⏸  Press ENTER to continue...", []Choice{
		{Key: SkipToken, Label: "Skip to next step"},
		{Key: RepeatToken, Label: "Repeat previous step"},
	})
	if err != nil {
		return Aborted()
	}

	switch normalize(answer) {
	case RepeatToken:
		return Repeated()
	default:
		// SkipToken and plain ENTER both continue.
		return Succeeded()
	}
}

// SelectStep asks the operator to pick one of its choices. A picked key is
// returned as a SelectKey outcome for the runner to resolve.
type SelectStep struct {
	Title   string
	Choices []Choice
	Prompt  Prompter
}

// NewSelectStep creates a SelectStep over choices, sorted by key.
func NewSelectStep(title string, choices []Choice, p Prompter) *SelectStep {
	sorted := make([]Choice, len(choices))
	copy(sorted, choices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	return &SelectStep{Title: title, Choices: sorted, Prompt: p}
}

// Name returns the step title.
func (s *SelectStep) Name() string { return s.Title }

// Execute maps the answer to Success (skip), Abort, SelectKey or, for an
// unrecognised answer, Failure.
func (s *SelectStep) Execute(ctx context.Context, _ string, _ Sender) Outcome {
	options := make([]Choice, 0, len(s.Choices)+2)
	options = append(options, s.Choices...)
	options = append(options,
		Choice{Key: SkipToken, Label: "Skip"},
		Choice{Key: AbortToken, Label: "Abort"},
	)

	answer, err := s.Prompt.Ask(ctx, "Select next step:", options)
	if err != nil {
		return Aborted()
	}

	answer = normalize(answer)
	switch answer {
	case SkipToken:
		return Succeeded()
	case AbortToken:
		return Aborted()
	}
	for _, ch := range s.Choices {
		if normalize(ch.Key) == answer {
			return Selected(ch.Key)
		}
	}
	return Failed()
}

// Label returns the label for key.
func (s *SelectStep) Label(key string) (string, bool) {
	for _, ch := range s.Choices {
		if ch.Key == key {
			return ch.Label, true
		}
	}
	return "", false
}
