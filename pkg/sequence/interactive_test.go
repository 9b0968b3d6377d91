package sequence

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestWaitStep_Execute(t *testing.T) {
	tests := []struct {
		answers []string
		want    Outcome
	}{
		{[]string{""}, Succeeded()},
		{[]string{"go on"}, Succeeded()},
		{[]string{"s"}, Succeeded()},
		{[]string{" S "}, Succeeded()},
		{[]string{"r"}, Repeated()},
		{[]string{"R"}, Repeated()},
		{nil, Aborted()}, // end of input
	}

	for _, tt := range tests {
		p := &scriptedPrompter{answers: tt.answers}
		sender := &recordingSender{}
		got := NewWaitStep("Wait", p).Execute(context.Background(), "arm", sender)
		if got != tt.want {
			t.Errorf("answers %q: Execute() = %s, want %s", tt.answers, got, tt.want)
		}
		if len(sender.sent) != 0 {
			t.Errorf("answers %q: WaitStep sent %d commands", tt.answers, len(sender.sent))
		}
	}
}

func TestSelectStep_Execute(t *testing.T) {
	choices := []Choice{
		{Key: "2", Label: "Front Dropoff"},
		{Key: "1", Label: "Middle Dropoff"},
		{Key: "x", Label: "Extra"},
	}

	tests := []struct {
		answers []string
		want    Outcome
	}{
		{[]string{"1"}, Selected("1")},
		{[]string{" 2 "}, Selected("2")},
		{[]string{"X"}, Selected("x")},
		{[]string{"s"}, Succeeded()},
		{[]string{"A"}, Aborted()},
		{[]string{"9"}, Failed()},
		{[]string{""}, Failed()},
		{nil, Aborted()},
	}

	for _, tt := range tests {
		p := &scriptedPrompter{answers: tt.answers}
		got := NewSelectStep("Select", choices, p).Execute(context.Background(), "arm", &recordingSender{})
		if got != tt.want {
			t.Errorf("answers %q: Execute() = %s, want %s", tt.answers, got, tt.want)
		}
	}
}

func TestSelectStep_PresentsChoices(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"s"}}
	step := NewSelectStep("Select", []Choice{{Key: "2", Label: "B"}, {Key: "1", Label: "A"}}, p)

	step.Execute(context.Background(), "arm", &recordingSender{})

	if len(p.choices) != 1 {
		t.Fatalf("asked %d times, want 1", len(p.choices))
	}
	var keys []string
	for _, ch := range p.choices[0] {
		keys = append(keys, ch.Key)
	}
	if strings.Join(keys, ",") != "1,2,s,a" {
		t.Errorf("choice keys = %v, want [1 2 s a]", keys)
	}

	if label, ok := step.Label("2"); !ok || label != "B" {
		t.Errorf("Label(2) = %q, %v", label, ok)
	}
}

func TestConsole_Ask(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("r\n1\n"), &out)
	ctx := context.Background()

	got, err := c.Ask(ctx, "Continue?", []Choice{{Key: "r", Label: "Repeat"}})
	if err != nil || got != "r" {
		t.Fatalf("Ask() = %q, %v, want \"r\"", got, err)
	}
	if !strings.Contains(out.String(), "[r] Repeat") {
		t.Errorf("prompt output = %q", out.String())
	}

	got, err = c.Ask(ctx, "Pick", nil)
	if err != nil || got != "1" {
		t.Fatalf("Ask() = %q, %v, want \"1\"", got, err)
	}

	if _, err := c.Ask(ctx, "More?", nil); !errors.Is(err, io.EOF) {
		t.Errorf("Ask() at end of input = %v, want io.EOF", err)
	}
	if _, err := c.Ask(ctx, "Still?", nil); !errors.Is(err, io.EOF) {
		t.Errorf("Ask() after end of input = %v, want io.EOF", err)
	}
}

func TestConsole_AskCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	c := NewConsole(r, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.Ask(ctx, "Waiting", nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Ask() = %v, want context.DeadlineExceeded", err)
	}

	// A cancelled wait maps to Abort in the interactive steps.
	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	if out := NewWaitStep("Wait", c).Execute(ctx2, "arm", nil); out.Kind != Abort {
		t.Errorf("WaitStep on cancelled context = %s, want abort", out)
	}
}
