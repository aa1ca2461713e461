package jsonrpc

import (
	"github.com/google/uuid"
)

// ID is an opaque correlation identifier. The empty ID means "no identifier"
// and is omitted from the wire.
type ID string

// NewID returns a random UUIDv4 identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string {
	return string(id)
}
