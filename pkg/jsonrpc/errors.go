package jsonrpc

import (
	"fmt"
)

var (
	// ErrDecode reports a payload that is not a well-formed JSON-RPC envelope
	// or error object, or a result that does not fit the requested type.
	ErrDecode = fmt.Errorf("malformed json-rpc payload")

	// Connection errors. ErrMalformedEnvelope and ErrUnexpectedFrame are fatal:
	// they close the connection and wrap into ErrConnectionClosed for every
	// call that observes the closure.
	ErrConnectionClosed  = fmt.Errorf("connection closed")
	ErrMalformedEnvelope = fmt.Errorf("cannot identify response frame")
	ErrUnexpectedFrame   = fmt.Errorf("unexpected frame type")
	ErrDialingWebsocket  = fmt.Errorf("error dialing websocket server")

	// Request errors.
	ErrMarshalingRequest = fmt.Errorf("error marshaling request")
	ErrSendingRequest    = fmt.Errorf("error sending request")
	ErrIDCollision       = fmt.Errorf("could not allocate a unique correlation id")

	// ErrFrameEvicted fails a call whose response was pushed out of a full
	// pending buffer before the call was awaited. The connection stays open.
	ErrFrameEvicted = fmt.Errorf("response evicted from pending buffer")
	ErrHTTPStatus        = fmt.Errorf("unexpected http status")
)

// FieldErrorKind tells why a structured error variant could not be decoded.
type FieldErrorKind int

const (
	MissingField FieldErrorKind = iota + 1
	TypeMismatch
)

func (k FieldErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing field"
	case TypeMismatch:
		return "type mismatch"
	default:
		return "field error"
	}
}

// FieldError names the sub-field of an error object's data that failed to
// decode. Field is the canonical (underscore separated) name; "data" refers
// to the data member itself.
type FieldError struct {
	Variant string
	Field   string
	Kind    FieldErrorKind
	Err     error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %q: %v", e.Variant, e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s %q", e.Variant, e.Kind, e.Field)
}

// Unwrap makes every FieldError match ErrDecode.
func (e *FieldError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDecode, e.Err}
	}
	return []error{ErrDecode}
}
