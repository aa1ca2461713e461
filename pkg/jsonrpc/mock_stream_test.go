package jsonrpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/jsonrpc"
)

// Ensure MockStream implements the Stream interface
var _ jsonrpc.Stream = (*MockStream)(nil)

type scriptedRead struct {
	typ  jsonrpc.FrameType
	data []byte
	err  error
}

// MockStream is a scripted jsonrpc.Stream. Reads return the scripted frames
// in order. Reading past the script fails the test, unless the stream was
// created with blocking set, in which case reads wait for Push or ctx.
type MockStream struct {
	t        *testing.T
	blocking bool

	mu      sync.Mutex
	script  []scriptedRead
	next    int
	wake    chan struct{}
	written [][]byte
	writeFn func([]byte) error
	closed  bool
}

func NewMockStream(t *testing.T, frames ...[]byte) *MockStream {
	m := &MockStream{t: t, wake: make(chan struct{})}
	m.Push(frames...)
	return m
}

func NewBlockingMockStream(t *testing.T, frames ...[]byte) *MockStream {
	m := NewMockStream(t, frames...)
	m.blocking = true
	return m
}

// Push appends text frames to the script.
func (m *MockStream) Push(frames ...[]byte) {
	for _, f := range frames {
		m.pushRead(scriptedRead{typ: jsonrpc.TextFrame, data: f})
	}
}

// PushBinary appends a binary frame to the script.
func (m *MockStream) PushBinary(data []byte) {
	m.pushRead(scriptedRead{typ: jsonrpc.BinaryFrame, data: data})
}

// PushEOF ends the stream at this point of the script.
func (m *MockStream) PushEOF() {
	m.pushRead(scriptedRead{err: fmt.Errorf("%w: %w", jsonrpc.ErrConnectionClosed, io.EOF)})
}

func (m *MockStream) pushRead(r scriptedRead) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.script = append(m.script, r)
	close(m.wake)
	m.wake = make(chan struct{})
}

// Reads returns the number of frames handed out so far.
func (m *MockStream) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.next
}

// Written returns the frames written so far.
func (m *MockStream) Written() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([][]byte(nil), m.written...)
}

func (m *MockStream) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}

func (m *MockStream) WriteFrame(ctx context.Context, frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return jsonrpc.ErrConnectionClosed
	}
	if m.writeFn != nil {
		if err := m.writeFn(frame); err != nil {
			return err
		}
	}
	m.written = append(m.written, frame)
	return nil
}

func (m *MockStream) ReadFrame(ctx context.Context) (jsonrpc.FrameType, []byte, error) {
	for {
		m.mu.Lock()
		if m.next < len(m.script) {
			r := m.script[m.next]
			m.next++
			m.mu.Unlock()
			return r.typ, r.data, r.err
		}
		if m.closed {
			m.mu.Unlock()
			return 0, nil, jsonrpc.ErrConnectionClosed
		}
		if !m.blocking {
			n := len(m.script)
			m.mu.Unlock()
			m.t.Errorf("stream read beyond its script of %d frames", n)
			return 0, nil, errors.New("script exhausted")
		}
		wake := m.wake
		m.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		}
	}
}

func (m *MockStream) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.wake)
		m.wake = make(chan struct{})
	}
	return nil
}

// recordingObserver keeps every event as a short string.
type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *recordingObserver) record(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.events = append(o.events, fmt.Sprintf(format, args...))
}

func (o *recordingObserver) Events() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]string(nil), o.events...)
}

func (o *recordingObserver) CallSent(method string) { o.record("sent %s", method) }
func (o *recordingObserver) CallFinished(method string, state jsonrpc.CallState, _ error) {
	o.record("finished %s %s", method, state)
}
func (o *recordingObserver) FrameBuffered(method string, unsolicited bool, depth int) {
	o.record("buffered %s unsolicited=%t depth=%d", method, unsolicited, depth)
}
func (o *recordingObserver) FrameDiscarded(method string, reason string, depth int) {
	o.record("discarded %s %s depth=%d", method, reason, depth)
}
func (o *recordingObserver) ConnectionClosed(error) { o.record("closed") }

// sequenceIDs returns an id generator yielding ids in order, then fresh uuids.
func sequenceIDs(ids ...jsonrpc.ID) func() jsonrpc.ID {
	var mu sync.Mutex
	return func() jsonrpc.ID {
		mu.Lock()
		defer mu.Unlock()

		if len(ids) == 0 {
			return jsonrpc.NewID()
		}
		id := ids[0]
		ids = ids[1:]
		return id
	}
}

// fakeClock is a settable clock for buffer ages.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func resultFrame(t *testing.T, method string, id jsonrpc.ID, result any) []byte {
	t.Helper()

	frame, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"result":  result,
		"id":      id,
	})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return frame
}

func errorFrame(t *testing.T, method string, id jsonrpc.ID, code int, message string) []byte {
	t.Helper()

	frame, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"error":   map[string]any{"code": code, "message": message},
		"id":      id,
	})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return frame
}
