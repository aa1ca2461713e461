package jsonrpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/log"
)

// WebsocketConfig contains configuration options for a websocket stream.
type WebsocketConfig struct {
	// HandshakeTimeout is the duration to wait for the websocket handshake to complete
	HandshakeTimeout time.Duration

	// PingInterval is how often a ping control frame is sent; zero disables pings
	PingInterval time.Duration

	// WriteTimeout bounds a single write when the caller's context has no deadline
	WriteTimeout time.Duration

	// ReadLimit is the maximum size in bytes of an inbound message; zero means no limit
	ReadLimit int64

	// InboundQueueSize is the number of frames the read pump may hold ahead of ReadFrame
	InboundQueueSize int
}

// DefaultWebsocketConfig provides defaults suited to an Ogmios server.
// Ledger state answers such as the full UTxO set can be large, so reads are
// not limited.
var DefaultWebsocketConfig = WebsocketConfig{
	HandshakeTimeout: 5 * time.Second,
	PingInterval:     30 * time.Second,
	WriteTimeout:     10 * time.Second,
	InboundQueueSize: 16,
}

type inboundFrame struct {
	typ  FrameType
	data []byte
}

// WebsocketStream implements Stream over a gorilla websocket connection.
// A single pump goroutine drains the socket into a channel so that ReadFrame
// can honor context cancellation without dropping the frame being read.
type WebsocketStream struct {
	cfg  WebsocketConfig
	conn *websocket.Conn
	lg   log.Logger

	frames  chan inboundFrame
	readErr error // set by the pump before frames is closed

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error

	writeMu sync.Mutex // serializes websocket writes, including pings
}

// Ensure WebsocketStream implements the Stream interface
var _ Stream = (*WebsocketStream)(nil)

// DialWebsocket establishes a websocket connection to url and starts its
// read pump and, if configured, its ping loop. The stream lives until Close
// is called or the peer goes away; ctx only bounds the handshake.
func DialWebsocket(ctx context.Context, url string, cfg WebsocketConfig) (*WebsocketStream, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout:  cfg.HandshakeTimeout,
		EnableCompression: true,
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDialingWebsocket, err)
	}

	lg := log.FromContext(ctx).WithName("ws-stream").WithKV("url", url)
	lg.Debug("websocket connected")
	return NewWebsocketStream(conn, cfg, lg), nil
}

// NewWebsocketStream wraps an established connection.
func NewWebsocketStream(conn *websocket.Conn, cfg WebsocketConfig, lg log.Logger) *WebsocketStream {
	if lg == nil {
		lg = log.NewNoopLogger()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWebsocketConfig.WriteTimeout
	}
	if cfg.ReadLimit > 0 {
		conn.SetReadLimit(cfg.ReadLimit)
	}

	s := &WebsocketStream{
		cfg:    cfg,
		conn:   conn,
		lg:     lg,
		frames: make(chan inboundFrame, max(cfg.InboundQueueSize, 0)),
		done:   make(chan struct{}),
	}
	conn.SetPongHandler(func(string) error {
		s.lg.Debug("pong received")
		return nil
	})

	go s.pump()
	if cfg.PingInterval > 0 {
		go s.pingPeriodically()
	}
	return s
}

// pump reads messages until the connection fails or the stream is closed.
func (s *WebsocketStream) pump() {
	defer close(s.frames)

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			s.readErr = err
			select {
			case <-s.done:
				s.lg.Debug("websocket read pump exiting after close")
			default:
				s.lg.Warn("websocket read error", "error", err)
			}
			return
		}

		frame := inboundFrame{typ: BinaryFrame, data: data}
		if messageType == websocket.TextMessage {
			frame.typ = TextFrame
		}

		select {
		case s.frames <- frame:
		case <-s.done:
			return
		}
	}
}

// pingPeriodically keeps the connection alive with ping control frames
func (s *WebsocketStream) pingPeriodically() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout))
			s.writeMu.Unlock()
			if err != nil {
				s.lg.Error("error sending ping", "error", err)
				s.Close()
				return
			}
		}
	}
}

func (s *WebsocketStream) WriteFrame(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-s.done:
		return ErrConnectionClosed
	default:
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.cfg.WriteTimeout)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %w", ErrSendingRequest, err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("%w: %w", ErrSendingRequest, err)
	}
	return nil
}

func (s *WebsocketStream) ReadFrame(ctx context.Context) (FrameType, []byte, error) {
	select {
	case frame, ok := <-s.frames:
		if !ok {
			if s.readErr != nil {
				return 0, nil, fmt.Errorf("%w: %w", ErrConnectionClosed, s.readErr)
			}
			return 0, nil, ErrConnectionClosed
		}
		return frame.typ, frame.data, nil
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

// Close sends a close frame and tears the connection down. It is safe to call
// more than once.
func (s *WebsocketStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)

		s.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		s.writeMu.Unlock()

		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
