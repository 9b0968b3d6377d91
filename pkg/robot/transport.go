package robot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Transport names accepted in the configuration.
const (
	TransportHTTP   = "http"
	TransportSerial = "serial"
)

// DefaultBaudRate is the USB serial rate of the arm's controller.
const DefaultBaudRate = 115200

// maxResponseSize caps how much of a response body is kept.
const maxResponseSize = 64 << 10

// ErrTimeout is returned when the arm does not answer before the deadline.
var ErrTimeout = errors.New("response timeout")

// Transport delivers one command payload to the arm and returns the raw
// response text.
type Transport interface {
	Do(ctx context.Context, address string, p Payload) (string, error)
	Close() error
}

// NewTransport creates the transport named by kind.
func NewTransport(kind string, baud int) (Transport, error) {
	switch kind {
	case "", TransportHTTP:
		return NewHTTPTransport(), nil
	case TransportSerial:
		return NewSerialTransport(baud), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}

// IsTimeout reports whether err means the request ran out of time.
func IsTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// HTTPTransport sends commands as GET /js?json=... requests over a single
// keep-alive client.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTP transport with its own connection pool.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// CommandURL builds the request URL for a payload. The address may be a
// bare host[:port] or carry its own scheme.
func CommandURL(address string, p Payload) (string, error) {
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("parse address: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("address %q has no host", address)
	}
	u.Path = "/js"
	u.RawQuery = url.Values{"json": {string(p)}}.Encode()
	return u.String(), nil
}

// Do issues one request and returns the response body.
func (t *HTTPTransport) Do(ctx context.Context, address string, p Payload) (string, error) {
	target, err := CommandURL(address, p)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(body), nil
}

// Close releases idle connections.
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// SerialTransport writes commands as JSON lines to a USB serial port and
// reads back one line. The port is opened on first use and kept open.
type SerialTransport struct {
	baud int

	mu   sync.Mutex
	name string
	port serial.Port
}

// NewSerialTransport creates a serial transport at the given baud rate.
func NewSerialTransport(baud int) *SerialTransport {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &SerialTransport{baud: baud}
}

// Do writes the payload to the port named by address and returns the first
// line the arm sends back.
func (t *SerialTransport) Do(ctx context.Context, address string, p Payload) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	port, err := t.open(address)
	if err != nil {
		return "", err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(time.Second)
	}

	if err := port.ResetInputBuffer(); err != nil {
		return "", fmt.Errorf("reset input: %w", err)
	}
	if _, err := port.Write([]byte(string(p) + "\n")); err != nil {
		return "", fmt.Errorf("write command: %w", err)
	}

	var line bytes.Buffer
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", ErrTimeout
		}
		if err := port.SetReadTimeout(remaining); err != nil {
			return "", fmt.Errorf("set read timeout: %w", err)
		}

		n, err := port.Read(buf)
		if err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}
		if n == 0 {
			// Read timed out.
			return "", ErrTimeout
		}
		chunk := buf[:n]
		if i := bytes.IndexByte(chunk, '\n'); i >= 0 {
			line.Write(chunk[:i])
			return strings.TrimSpace(line.String()), nil
		}
		line.Write(chunk)
		if line.Len() > maxResponseSize {
			return strings.TrimSpace(line.String()), nil
		}
	}
}

func (t *SerialTransport) open(name string) (serial.Port, error) {
	if t.port != nil && t.name == name {
		return t.port, nil
	}
	if t.port != nil {
		t.port.Close()
		t.port = nil
	}

	port, err := serial.Open(name, &serial.Mode{BaudRate: t.baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	t.name = name
	t.port = port
	return port, nil
}

// Close closes the serial port if it is open.
func (t *SerialTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}

// ListSerialPorts returns the serial ports present on this machine, skipping
// Bluetooth ports.
func ListSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}

	var usable []string
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		usable = append(usable, port)
	}
	return usable, nil
}
