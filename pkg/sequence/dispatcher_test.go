package sequence

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gwillem/roarm/pkg/robot"
)

// fakeTransport returns err for every request and records the deadlines.
type fakeTransport struct {
	resp      string
	err       error
	calls     int
	deadlines []time.Duration
	closed    bool
}

func (f *fakeTransport) Do(ctx context.Context, _ string, _ robot.Payload) (string, error) {
	f.calls++
	if dl, ok := ctx.Deadline(); ok {
		f.deadlines = append(f.deadlines, time.Until(dl))
	}
	return f.resp, f.err
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func newTestDispatcher(tr robot.Transport, obs Observer) (*Dispatcher, *[]time.Duration) {
	var slept []time.Duration
	d := NewDispatcher(tr, 50*time.Millisecond, WithDispatchObserver(obs))
	d.sleep = func(ctx context.Context, dur time.Duration) error {
		slept = append(slept, dur)
		return ctx.Err()
	}
	return d, &slept
}

func TestDispatcher_Classification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     OutcomeKind
		timedOut bool
		slept    int
	}{
		{"ok", nil, Success, false, 1},
		{"serial timeout", robot.ErrTimeout, Success, true, 1},
		{"deadline", context.DeadlineExceeded, Success, true, 1},
		{"refused", errors.New("connection refused"), Failure, false, 0},
	}

	for _, tt := range tests {
		obs := &eventObserver{}
		tr := &fakeTransport{resp: "{}", err: tt.err}
		d, slept := newTestDispatcher(tr, obs)

		out := d.Send(context.Background(), "arm", "cmd", 0, time.Second)

		if out.Kind != tt.want {
			t.Errorf("%s: Send() = %s, want %s", tt.name, out, tt.want)
		}
		if len(*slept) != tt.slept {
			t.Errorf("%s: slept %d times, want %d", tt.name, len(*slept), tt.slept)
		}
		if len(obs.commands) != 1 {
			t.Fatalf("%s: reported %d commands, want 1", tt.name, len(obs.commands))
		}
		if obs.commands[0].TimedOut != tt.timedOut {
			t.Errorf("%s: TimedOut = %v, want %v", tt.name, obs.commands[0].TimedOut, tt.timedOut)
		}
	}
}

func TestDispatcher_NoDelayWhenZero(t *testing.T) {
	d, slept := newTestDispatcher(&fakeTransport{}, NopObserver{})

	if out := d.Send(context.Background(), "arm", "cmd", 0, 0); out.Kind != Success {
		t.Errorf("Send() = %s, want success", out)
	}
	if len(*slept) != 0 {
		t.Errorf("slept %v, want no wait", *slept)
	}
}

func TestDispatcher_Timeouts(t *testing.T) {
	tr := &fakeTransport{}
	d, _ := newTestDispatcher(tr, NopObserver{})

	d.Send(context.Background(), "arm", "cmd", 0, 0)
	d.Send(context.Background(), "arm", "cmd", 5*time.Second, 0)

	if len(tr.deadlines) != 2 {
		t.Fatalf("got %d deadlines, want 2", len(tr.deadlines))
	}
	if tr.deadlines[0] > 50*time.Millisecond {
		t.Errorf("default deadline = %v, want <= 50ms", tr.deadlines[0])
	}
	if tr.deadlines[1] <= time.Second {
		t.Errorf("explicit deadline = %v, want about 5s", tr.deadlines[1])
	}
}

func TestDispatcher_CancelledIsNotBenign(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, _ := newTestDispatcher(&fakeTransport{err: context.Canceled}, NopObserver{})
	if out := d.Send(ctx, "arm", "cmd", 0, 0); out.Kind != Failure {
		t.Errorf("Send() on cancelled context = %s, want failure", out)
	}
}

func TestDispatcher_InterruptedDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(&fakeTransport{}, 0)
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	out := d.Send(ctx, "arm", "cmd", 0, 10*time.Second)
	if out.Kind != Failure {
		t.Errorf("Send() = %s, want failure", out)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("settling delay was not interrupted")
	}
}

func TestDispatcher_HTTPBenignTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	d := NewDispatcher(robot.NewHTTPTransport(), 20*time.Millisecond)
	defer d.Close()

	if out := d.Send(context.Background(), srv.URL, robot.FeedbackPayload(), 0, 0); out.Kind != Success {
		t.Errorf("Send() on slow arm = %s, want success", out)
	}
}

func TestDispatcher_QueryAndClose(t *testing.T) {
	tr := &fakeTransport{resp: `{"b":1}`}
	d := NewDispatcher(tr, 0)

	body, err := d.Query(context.Background(), "arm", robot.FeedbackPayload())
	if err != nil || body != `{"b":1}` {
		t.Errorf("Query() = %q, %v", body, err)
	}

	if err := d.Close(); err != nil || !tr.closed {
		t.Errorf("Close() = %v, closed = %v", err, tr.closed)
	}
}
