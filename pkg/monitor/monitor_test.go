package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gwillem/roarm/pkg/robot"
)

const sample = `{"T":1051,"x":235,"y":0,"z":234,"tit":0.1,"b":1.5,"s":-0.1,"e":2.4,"t":0.9,"r":-0.07,"g":2.66}`

type fakeQuerier struct {
	mu    sync.Mutex
	resp  string
	err   error
	calls int
	last  robot.Payload
}

func (f *fakeQuerier) Query(_ context.Context, _ string, p robot.Payload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = p
	return f.resp, f.err
}

func TestNewController(t *testing.T) {
	if _, err := NewController(Config{Address: "arm"}); err == nil {
		t.Error("NewController without querier should fail")
	}
	if _, err := NewController(Config{Querier: &fakeQuerier{}}); err == nil {
		t.Error("NewController without address should fail")
	}

	c, err := NewController(Config{Address: "arm", Querier: &fakeQuerier{}})
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}
	if c.Interval() != 500*time.Millisecond {
		t.Errorf("Interval() = %v, want 500ms", c.Interval())
	}
}

func TestController_Poll(t *testing.T) {
	q := &fakeQuerier{resp: sample}
	c, _ := NewController(Config{Address: "arm", Querier: q})

	s := c.Poll(context.Background())
	if s.Error != nil {
		t.Fatalf("Poll() error: %v", s.Error)
	}
	if s.Feedback.Pose.Base != 1.5 || s.Feedback.Cartesian.X != 235 {
		t.Errorf("unexpected feedback: %+v", s.Feedback)
	}
	if q.last != robot.FeedbackPayload() {
		t.Errorf("queried with %s, want T:105", q.last)
	}

	q.resp = "garbage"
	if s := c.Poll(context.Background()); s.Error == nil || s.Raw != "garbage" {
		t.Errorf("Poll(garbage) = %+v, want parse error", s)
	}

	q.err = errors.New("refused")
	if s := c.Poll(context.Background()); s.Error == nil {
		t.Error("Poll() should report query errors")
	}
}

func TestController_Start(t *testing.T) {
	q := &fakeQuerier{resp: sample}
	c, _ := NewController(Config{Address: "arm", Querier: q, Hz: 100})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case s := <-c.States():
		if s.Error != nil {
			t.Errorf("state error: %v", s.Error)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no state received")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}

	last, ok := c.Last()
	if !ok || last.Feedback.Pose.Hand != 2.66 {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
}
