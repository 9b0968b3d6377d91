package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/roarm/pkg/sequence"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	stepStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const ruleWidth = 60

// consoleObserver prints run progress for the operator.
type consoleObserver struct {
	out io.Writer
}

func newConsoleObserver(out io.Writer) *consoleObserver {
	return &consoleObserver{out: out}
}

func (o *consoleObserver) printf(format string, args ...any) {
	fmt.Fprintf(o.out, format, args...)
}

func (o *consoleObserver) rule() {
	o.printf("%s\n", dimStyle.Render(strings.Repeat("━", ruleWidth)))
}

func (o *consoleObserver) RunStarted(address string, total int) {
	o.rule()
	o.printf("%s\n", headerStyle.Render("RoArm sequence"))
	o.printf("Target: %s\n", address)
	o.printf("Steps:  %d\n", total)
	o.rule()
}

func (o *consoleObserver) StepStarted(pos, total int, step sequence.Step) {
	o.printf("\n%s %s\n", dimStyle.Render(fmt.Sprintf("[%d/%d]", pos+1, total)),
		stepStyle.Render("Starting: "+step.Name()))
}

func (o *consoleObserver) CommandFinished(r sequence.CommandReport) {
	switch {
	case r.Err != nil && !r.TimedOut:
		o.printf("    %s\n", errorStyle.Render("✗ Transport error: "+r.Err.Error()))
		return
	case r.TimedOut:
		o.printf("    %s\n", warnStyle.Render("⚠ No response in time, command may still run"))
	default:
		o.printf("    %s %s\n", successStyle.Render("✓"), dimStyle.Render(strings.TrimSpace(r.Response)))
	}
	if r.Delay > 0 {
		o.printf("    %s\n", dimStyle.Render(fmt.Sprintf("⏱ Waiting %s", r.Delay)))
	}
}

func (o *consoleObserver) StepFinished(pos, total int, step sequence.Step, out sequence.Outcome) {
	label := dimStyle.Render(fmt.Sprintf("[%d/%d]", pos+1, total))
	switch out.Kind {
	case sequence.Success:
		o.printf("%s %s\n", label, successStyle.Render("✓ COMPLETED: "+step.Name()))
	case sequence.Repeat:
		o.printf("%s %s\n", label, warnStyle.Render("↶ REPEATING previous step"))
	case sequence.SelectKey:
		o.printf("%s %s\n", label, stepStyle.Render("→ SELECTED: "+out.Key))
	case sequence.Abort:
		o.printf("%s %s\n", label, warnStyle.Render("⊘ ABORTED: "+step.Name()))
	case sequence.Failure:
		o.printf("%s %s\n", label, errorStyle.Render("✗ FAILED: "+step.Name()))
	}
}

func (o *consoleObserver) StepInjected(pos, total int, step sequence.Step) {
	o.printf("%s %s\n", dimStyle.Render(fmt.Sprintf("[%d/%d]", pos+1, total)),
		stepStyle.Render("→ INJECTING: "+step.Name()))
}

func (o *consoleObserver) RunFinished(r sequence.Result) {
	o.printf("\n")
	o.rule()
	switch r.State {
	case sequence.Completed:
		o.printf("%s\n", successStyle.Render(fmt.Sprintf("✓ Sequence completed (%d steps executed)", r.Executed)))
	case sequence.Aborted:
		o.printf("%s\n", warnStyle.Render(fmt.Sprintf("⊘ Sequence aborted at step %d", r.Index+1)))
	case sequence.Failed:
		o.printf("%s\n", errorStyle.Render(fmt.Sprintf("✗ Sequence failed at step %d (%s)", r.Index+1, r.Step)))
	}
	o.rule()
}
