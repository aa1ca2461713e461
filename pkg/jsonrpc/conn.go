package jsonrpc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/log"
)

// CallState is the lifecycle state of one logical call.
type CallState int

const (
	CallIdle CallState = iota
	CallSent
	CallClaimed // answered from the pending buffer
	CallMatched // answered by a frame read while awaiting
	CallCompleted
	CallFailed
)

func (s CallState) String() string {
	switch s {
	case CallIdle:
		return "idle"
	case CallSent:
		return "sent"
	case CallClaimed:
		return "claimed"
	case CallMatched:
		return "matched"
	case CallCompleted:
		return "completed"
	case CallFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ConnConfig tunes a Conn. Zero durations and sizes take the defaults; a
// negative PendingTTL or MaxPending disables that bound.
type ConnConfig struct {
	// PendingTTL is how long a frame nobody waits for stays in the pending
	// buffer. Frames answering an outstanding call never expire.
	PendingTTL time.Duration

	// MaxPending is the pending buffer capacity. When full, the oldest frame
	// nobody waits for is evicted; if every buffered frame answers an
	// outstanding call, the oldest goes and its call fails with ErrFrameEvicted.
	MaxPending int

	// NewID generates correlation identifiers; defaults to NewID
	NewID func() ID

	// Observer receives lifecycle events; defaults to NopObserver
	Observer Observer

	// Now is the clock used for buffer ages; defaults to time.Now
	Now func() time.Time
}

// DefaultConnConfig holds the bounds applied to zero ConnConfig fields.
var DefaultConnConfig = ConnConfig{
	PendingTTL: 5 * time.Minute,
	MaxPending: 1024,
}

const (
	maxIDAttempts = 8

	// maxCallHistory bounds how many finished calls CallState still reports.
	maxCallHistory = 256
)

type pendingFrame struct {
	identity Identity
	frame    []byte
	at       time.Time
}

type callRecord struct {
	method string
	state  CallState
	err    error // set when the response was lost before the call was awaited
}

// Conn correlates responses arriving on a shared Stream with the calls that
// issued them.
//
// Any number of goroutines may Send and Await concurrently. Writes are
// serialized, and reading is guarded by an exclusive lease: one awaiter at a
// time drains the stream, buffering frames that belong to other calls. An
// awaiter whose response is slow therefore holds up the others until its
// frame arrives or its context ends.
//
// A closed stream, a non-text frame or a frame whose identity cannot be read
// closes the Conn. Every outstanding and future call then fails with an
// error wrapping ErrConnectionClosed and the cause.
type Conn struct {
	stream Stream
	cfg    ConnConfig
	obs    Observer
	lg     log.Logger

	writeMu sync.Mutex

	lease   chan struct{}
	pending []pendingFrame // owned by the lease holder
	depth   atomic.Int64

	mu        sync.Mutex // protects closeErr, calls, abandoned and history
	closeErr  error
	calls     map[ID]*callRecord
	abandoned map[Identity]time.Time
	history   map[ID]CallState
	finished  []ID
}

// NewConn starts correlating calls over stream. The logger is taken from ctx.
func NewConn(ctx context.Context, stream Stream, cfg ConnConfig) *Conn {
	if cfg.PendingTTL == 0 {
		cfg.PendingTTL = DefaultConnConfig.PendingTTL
	}
	if cfg.MaxPending == 0 {
		cfg.MaxPending = DefaultConnConfig.MaxPending
	}
	if cfg.NewID == nil {
		cfg.NewID = NewID
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Conn{
		stream:    stream,
		cfg:       cfg,
		obs:       cfg.Observer,
		lg:        log.FromContext(ctx).WithName("conn"),
		lease:     make(chan struct{}, 1),
		calls:     make(map[ID]*callRecord),
		abandoned: make(map[Identity]time.Time),
		history:   make(map[ID]CallState),
	}
}

// Dial connects to a websocket endpoint and returns a Conn over it.
func Dial(ctx context.Context, url string, wsCfg WebsocketConfig, cfg ConnConfig) (*Conn, error) {
	stream, err := DialWebsocket(ctx, url, wsCfg)
	if err != nil {
		return nil, err
	}
	return NewConn(ctx, stream, cfg), nil
}

// Err returns the reason the connection was closed, or nil while it is open.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closeErr
}

// Close closes the connection and its stream.
func (c *Conn) Close() error {
	return c.fail(fmt.Errorf("%w: closed by client", ErrConnectionClosed))
}

// CallState returns the state of a call. A finished call keeps reporting its
// terminal state until maxCallHistory later calls have finished; an id that
// was never sent, or was forgotten, is CallIdle.
func (c *Conn) CallState(id ID) CallState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, ok := c.calls[id]; ok {
		return rec.state
	}
	if state, ok := c.history[id]; ok {
		return state
	}
	return CallIdle
}

// Outstanding returns the number of calls sent but not yet awaited.
func (c *Conn) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.calls)
}

// Buffered returns the number of frames waiting in the pending buffer.
func (c *Conn) Buffered() int {
	return int(c.depth.Load())
}

// Send issues a call and returns its freshly allocated identifier. Nothing is
// written once the connection is closed.
func (c *Conn) Send(ctx context.Context, method string, params any) (ID, error) {
	id, err := c.reserve(method)
	if err != nil {
		return "", err
	}

	frame, err := Encode(method, params, id)
	if err != nil {
		c.forget(id)
		return "", err
	}

	c.writeMu.Lock()
	err = c.stream.WriteFrame(ctx, frame)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		err = fmt.Errorf("%w: %w", ErrSendingRequest, err)
		c.fail(err)
		return "", err
	}

	c.lg.Debug("request sent", "method", method, "id", id)
	c.obs.CallSent(method)
	return id, nil
}

func (c *Conn) reserve(method string) (ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closeErr != nil {
		return "", c.closeErr
	}
	for range maxIDAttempts {
		id := c.cfg.NewID()
		if _, taken := c.calls[id]; taken {
			continue
		}
		c.calls[id] = &callRecord{method: method, state: CallSent}
		return id, nil
	}
	return "", ErrIDCollision
}

func (c *Conn) forget(id ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.calls, id)
}

// Await returns the raw response frame for (method, id). A frame already in
// the pending buffer is returned without reading the stream. If ctx ends
// first, the call is abandoned and its response is dropped when it arrives.
func (c *Conn) Await(ctx context.Context, method string, id ID) ([]byte, error) {
	identity := Identity{Method: method, ID: id}

	select {
	case c.lease <- struct{}{}:
	case <-ctx.Done():
		c.abandon(identity, ctx.Err())
		return nil, ctx.Err()
	}
	defer func() { <-c.lease }()

	c.mu.Lock()
	closeErr := c.closeErr
	delete(c.abandoned, identity)
	var lost error
	if rec, ok := c.calls[identity.ID]; ok && rec.method == identity.Method {
		lost = rec.err
	}
	c.mu.Unlock()
	if closeErr != nil {
		c.finish(identity, CallFailed, closeErr)
		return nil, closeErr
	}
	if lost != nil {
		c.finish(identity, CallFailed, lost)
		return nil, lost
	}

	if frame, ok := c.claim(identity); ok {
		c.finish(identity, CallClaimed, nil)
		return frame, nil
	}

	for {
		frameType, frame, err := c.stream.ReadFrame(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				c.abandon(identity, ctxErr)
				return nil, ctxErr
			}
			return nil, c.failCall(identity, err)
		}
		if frameType != TextFrame {
			return nil, c.failCall(identity, fmt.Errorf("%w: %s", ErrUnexpectedFrame, frameType))
		}

		got, err := IdentityOf(frame)
		if err != nil {
			return nil, c.failCall(identity, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err))
		}
		if got == identity {
			c.finish(identity, CallMatched, nil)
			return frame, nil
		}
		c.stash(got, frame)
	}
}

// claim removes and returns the first buffered frame for identity.
func (c *Conn) claim(identity Identity) ([]byte, bool) {
	c.evict()

	i := slices.IndexFunc(c.pending, func(p pendingFrame) bool {
		return p.identity == identity
	})
	if i < 0 {
		return nil, false
	}
	frame := c.pending[i].frame
	c.pending = slices.Delete(c.pending, i, i+1)
	c.depth.Store(int64(len(c.pending)))
	return frame, true
}

// stash buffers a frame read on behalf of another call.
func (c *Conn) stash(identity Identity, frame []byte) {
	c.mu.Lock()
	_, abandoned := c.abandoned[identity]
	if abandoned {
		delete(c.abandoned, identity)
	}
	solicited := c.liveCall(identity) != nil
	c.mu.Unlock()

	if abandoned {
		c.lg.Debug("dropping response to abandoned call", "method", identity.Method, "id", identity.ID)
		c.obs.FrameDiscarded(identity.Method, "abandoned", len(c.pending))
		return
	}

	if c.cfg.MaxPending > 0 && len(c.pending) >= c.cfg.MaxPending {
		c.makeRoom()
	}

	c.pending = append(c.pending, pendingFrame{identity: identity, frame: frame, at: c.cfg.Now()})
	c.depth.Store(int64(len(c.pending)))
	if !solicited {
		c.lg.Debug("unsolicited frame buffered", "method", identity.Method, "id", identity.ID)
	}
	c.obs.FrameBuffered(identity.Method, !solicited, len(c.pending))
}

// makeRoom evicts one frame from the full pending buffer: the oldest frame
// nobody waits for, or else the oldest frame overall. A call whose response
// is evicted fails with ErrFrameEvicted when it is awaited.
func (c *Conn) makeRoom() {
	c.mu.Lock()
	victim := slices.IndexFunc(c.pending, func(p pendingFrame) bool {
		return c.liveCall(p.identity) == nil
	})
	lostCall := victim < 0
	if lostCall {
		victim = 0
		identity := c.pending[0].identity
		if rec := c.liveCall(identity); rec != nil {
			rec.state = CallFailed
			rec.err = fmt.Errorf("%w: %s (capacity %d)", ErrFrameEvicted, identity, c.cfg.MaxPending)
		}
	}
	c.mu.Unlock()

	evicted := c.pending[victim]
	c.pending = slices.Delete(c.pending, victim, victim+1)
	if lostCall {
		c.lg.Error("pending buffer full of awaited responses, failing oldest call",
			"method", evicted.identity.Method, "id", evicted.identity.ID, "capacity", c.cfg.MaxPending)
	} else {
		c.lg.Warn("pending buffer full, evicting oldest unawaited frame",
			"method", evicted.identity.Method, "id", evicted.identity.ID, "capacity", c.cfg.MaxPending)
	}
	c.obs.FrameDiscarded(evicted.identity.Method, "overflow", len(c.pending))
}

// liveCall returns the outstanding call that identity answers, or nil.
// Callers hold c.mu.
func (c *Conn) liveCall(identity Identity) *callRecord {
	rec, ok := c.calls[identity.ID]
	if !ok || rec.method != identity.Method || rec.err != nil {
		return nil
	}
	return rec
}

// evict drops buffered frames that were abandoned, and frames nobody waits
// for that outlived PendingTTL. It also forgets abandonment marks older than
// PendingTTL.
func (c *Conn) evict() {
	now := c.cfg.Now()
	expired := func(at time.Time) bool {
		return c.cfg.PendingTTL > 0 && now.Sub(at) > c.cfg.PendingTTL
	}

	type discard struct {
		identity Identity
		reason   string
	}
	var discarded []discard

	c.mu.Lock()
	c.pending = slices.DeleteFunc(c.pending, func(p pendingFrame) bool {
		if _, ok := c.abandoned[p.identity]; ok {
			delete(c.abandoned, p.identity)
			discarded = append(discarded, discard{p.identity, "abandoned"})
			return true
		}
		if expired(p.at) && c.liveCall(p.identity) == nil {
			discarded = append(discarded, discard{p.identity, "expired"})
			return true
		}
		return false
	})
	for identity, at := range c.abandoned {
		if expired(at) {
			delete(c.abandoned, identity)
		}
	}
	c.mu.Unlock()

	c.depth.Store(int64(len(c.pending)))
	for _, d := range discarded {
		c.lg.Debug("evicted buffered frame", "method", d.identity.Method, "id", d.identity.ID, "reason", d.reason)
		c.obs.FrameDiscarded(d.identity.Method, d.reason, len(c.pending))
	}
}

func (c *Conn) abandon(identity Identity, err error) {
	c.mu.Lock()
	if c.closeErr == nil {
		c.abandoned[identity] = c.cfg.Now()
	}
	c.mu.Unlock()

	c.lg.Debug("call abandoned", "method", identity.Method, "id", identity.ID, "error", err)
	c.finish(identity, CallFailed, err)
}

func (c *Conn) finish(identity Identity, state CallState, err error) {
	c.mu.Lock()
	if rec, ok := c.calls[identity.ID]; ok && rec.method == identity.Method {
		delete(c.calls, identity.ID)
		c.remember(identity.ID, state)
	}
	c.mu.Unlock()

	c.obs.CallFinished(identity.Method, state, err)
}

// settle moves an answered call to CallCompleted, or to CallFailed when its
// payload could not be decoded.
func (c *Conn) settle(id ID, decodeErr error) {
	state := CallCompleted
	if decodeErr != nil {
		state = CallFailed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.history[id]; ok {
		c.history[id] = state
	}
}

// remember keeps the state of a finished call. Callers hold c.mu.
func (c *Conn) remember(id ID, state CallState) {
	if _, ok := c.history[id]; !ok {
		c.finished = append(c.finished, id)
		if len(c.finished) > maxCallHistory {
			delete(c.history, c.finished[0])
			c.finished = slices.Delete(c.finished, 0, 1)
		}
	}
	c.history[id] = state
}

// failCall closes the connection because of cause and fails the current call.
func (c *Conn) failCall(identity Identity, cause error) error {
	c.fail(cause)
	err := c.Err()
	c.finish(identity, CallFailed, err)
	return err
}

// fail moves the connection to Closed. Only the first cause is kept.
func (c *Conn) fail(cause error) error {
	if !errors.Is(cause, ErrConnectionClosed) {
		cause = fmt.Errorf("%w: %w", ErrConnectionClosed, cause)
	}

	c.mu.Lock()
	if c.closeErr != nil {
		c.mu.Unlock()
		return nil
	}
	c.closeErr = cause
	outstanding := len(c.calls)
	c.mu.Unlock()

	c.lg.Info("connection closed", "reason", cause, "outstanding", outstanding)
	c.obs.ConnectionClosed(cause)
	return c.stream.Close()
}
