package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Version is the protocol version stamped on every request.
const Version = "2.0"

// Request is the wire shape of an outgoing call.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      ID     `json:"id,omitempty"`
}

// Identity is the (method, id) pair a response is matched on.
type Identity struct {
	Method string
	ID     ID
}

func (i Identity) String() string {
	if i.ID == "" {
		return i.Method
	}
	return i.Method + "#" + string(i.ID)
}

// ErrorObject is the generic shape of the error member of a response.
type ErrorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Response is a decoded response envelope. Exactly one of Result and Error is
// set: Result holds the raw result, Error the raw error object.
type Response struct {
	JSONRPC string
	Method  string
	ID      ID
	Result  json.RawMessage
	Error   json.RawMessage
}

// IsError reports whether the response carries an error object.
func (r Response) IsError() bool {
	return r.Result == nil
}

// Identity returns the identity the response is matched on.
func (r Response) Identity() Identity {
	return Identity{Method: r.Method, ID: r.ID}
}

// Encode builds a request frame. A nil params or an empty id is omitted.
func Encode(method string, params any, id ID) ([]byte, error) {
	frame, err := json.Marshal(Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
		ID:      id,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshalingRequest, err)
	}
	return frame, nil
}

// IdentityOf extracts the identity of a response frame without decoding its
// result or error.
func IdentityOf(frame []byte) (Identity, error) {
	var prefix struct {
		Method json.RawMessage `json:"method"`
		ID     json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(frame, &prefix); err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return identityFrom(prefix.Method, prefix.ID)
}

func identityFrom(rawMethod, rawID json.RawMessage) (Identity, error) {
	if isAbsent(rawMethod) {
		return Identity{}, fmt.Errorf("%w: missing method", ErrDecode)
	}
	var identity Identity
	if err := json.Unmarshal(rawMethod, &identity.Method); err != nil {
		return Identity{}, fmt.Errorf("%w: method must be a string", ErrDecode)
	}
	if isAbsent(rawID) {
		return identity, nil
	}
	var id string
	if err := json.Unmarshal(rawID, &id); err != nil {
		return Identity{}, fmt.Errorf("%w: id must be a string", ErrDecode)
	}
	identity.ID = ID(id)
	return identity, nil
}

// DecodeResponse splits a response frame into its success or error form. A
// frame with a result member is a success, whatever the result holds.
// Otherwise a frame with an error member is an error. Anything else fails.
func DecodeResponse(frame []byte) (Response, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(frame, &members); err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if members == nil {
		return Response{}, fmt.Errorf("%w: response is not an object", ErrDecode)
	}

	identity, err := identityFrom(members["method"], members["id"])
	if err != nil {
		return Response{}, err
	}
	res := Response{
		JSONRPC: Version,
		Method:  identity.Method,
		ID:      identity.ID,
	}
	if raw, ok := members["jsonrpc"]; ok {
		if err := json.Unmarshal(raw, &res.JSONRPC); err != nil {
			return Response{}, fmt.Errorf("%w: jsonrpc must be a string", ErrDecode)
		}
	}

	if result, ok := members["result"]; ok {
		res.Result = result
		return res, nil
	}
	if errObj, ok := members["error"]; ok {
		res.Error = errObj
		return res, nil
	}
	return Response{}, fmt.Errorf("%w: response has neither result nor error", ErrDecode)
}

// Decode decodes a response frame into either a typed result or an error
// variant resolved through tax. A nil taxonomy resolves every error to the
// fallback variant.
func Decode[T any](frame []byte, tax *Taxonomy) (T, *ErrorVariant, error) {
	var zero T
	res, err := DecodeResponse(frame)
	if err != nil {
		return zero, nil, err
	}
	return DecodeResult[T](res, tax)
}

// DecodeResult is Decode for an already split response.
func DecodeResult[T any](res Response, tax *Taxonomy) (T, *ErrorVariant, error) {
	var zero T
	if res.IsError() {
		variant, err := tax.Resolve(res.Error)
		if err != nil {
			return zero, nil, err
		}
		return zero, variant, nil
	}

	var out T
	if err := json.Unmarshal(res.Result, &out); err != nil {
		return zero, nil, fmt.Errorf("%w: %s result: %w", ErrDecode, res.Method, err)
	}
	return out, nil, nil
}

var jsonNull = []byte("null")

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}
