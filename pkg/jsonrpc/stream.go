package jsonrpc

import (
	"context"
)

// FrameType is the type of a message read off a Stream.
type FrameType int

const (
	TextFrame FrameType = iota + 1
	BinaryFrame
)

func (t FrameType) String() string {
	switch t {
	case TextFrame:
		return "text"
	case BinaryFrame:
		return "binary"
	default:
		return "unknown"
	}
}

// Stream is a bidirectional message stream carrying one JSON-RPC frame per
// message. The write half and the read half are independent; the write half
// must be safe for concurrent use.
type Stream interface {
	// WriteFrame sends one text frame.
	WriteFrame(ctx context.Context, frame []byte) error

	// ReadFrame blocks until the next frame arrives or ctx is done. When the
	// stream has ended it returns an error wrapping ErrConnectionClosed.
	// A ctx error leaves the stream usable; no frame is lost.
	ReadFrame(ctx context.Context) (FrameType, []byte, error)

	// Close releases the stream. Blocked reads return.
	Close() error
}
