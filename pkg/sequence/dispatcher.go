package sequence

import (
	"context"
	"time"

	"github.com/gwillem/roarm/pkg/logging"
	"github.com/gwillem/roarm/pkg/robot"
)

// Dispatcher sends commands over one persistent Transport and classifies
// the results. A request that outlives its timeout counts as Success since
// the command may already have reached the arm.
type Dispatcher struct {
	transport robot.Transport
	timeout   time.Duration
	observer  Observer
	logger    *logging.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchObserver reports every command to o.
func WithDispatchObserver(o Observer) DispatcherOption {
	return func(d *Dispatcher) { d.observer = o }
}

// WithDispatchLogger sets the structured logger.
func WithDispatchLogger(l *logging.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a Dispatcher over t. timeout is the default request
// timeout; a non-positive value means robot.DefaultTimeout.
func NewDispatcher(t robot.Transport, timeout time.Duration, opts ...DispatcherOption) *Dispatcher {
	if timeout <= 0 {
		timeout = robot.DefaultTimeout
	}
	d := &Dispatcher{
		transport: t,
		timeout:   timeout,
		observer:  NopObserver{},
		logger:    logging.NopLogger(),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send issues one request and, unless it failed, waits postDelay before
// returning. The result is always Success or Failure.
func (d *Dispatcher) Send(ctx context.Context, address string, p robot.Payload, timeout, postDelay time.Duration) Outcome {
	if timeout <= 0 {
		timeout = d.timeout
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	resp, err := d.transport.Do(reqCtx, address, p)
	cancel()

	report := CommandReport{
		Address:  address,
		Payload:  p,
		Response: resp,
		Delay:    postDelay,
		Outcome:  Succeeded(),
	}

	switch {
	case err == nil:
		d.logger.Debug("command sent", "payload", p.String(), "response", resp)
	case ctx.Err() == nil && robot.IsTimeout(err):
		report.TimedOut = true
		d.logger.Warn("command timed out, assuming delivered", "payload", p.String(), "timeout", timeout.String())
	default:
		report.Err = err
		report.Outcome = Failed()
		d.logger.Error("command failed", "payload", p.String(), "error", err.Error())
		d.observer.CommandFinished(report)
		return report.Outcome
	}
	d.observer.CommandFinished(report)

	if postDelay > 0 {
		if err := d.sleep(ctx, postDelay); err != nil {
			d.logger.Warn("settling delay interrupted", "error", err.Error())
			return Failed()
		}
	}
	return Succeeded()
}

// Query issues one request with the default timeout and returns the raw
// response.
func (d *Dispatcher) Query(ctx context.Context, address string, p robot.Payload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.transport.Do(ctx, address, p)
}

// Close releases the transport.
func (d *Dispatcher) Close() error {
	return d.transport.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
