package jsonrpc

import (
	"context"
)

// Call sends method with params over c, awaits the matching response and
// decodes it. A domain error comes back as the variant, with a nil error.
//
// Example:
//
//	tip, rpcErr, err := jsonrpc.Call[Tip](ctx, conn, "queryLedgerState/tip", nil, ledgerErrors)
//	if err != nil {
//	    return err // transport or decode failure
//	}
//	if rpcErr != nil {
//	    return rpcErr // the node answered with an error
//	}
func Call[T any](ctx context.Context, c *Conn, method string, params any, tax *Taxonomy) (T, *ErrorVariant, error) {
	id, err := c.Send(ctx, method, params)
	if err != nil {
		var zero T
		return zero, nil, err
	}
	return AwaitResult[T](ctx, c, method, id, tax)
}

// AwaitResult awaits a call previously issued with Send and decodes it. A
// decode failure is local to this call; the connection stays open.
func AwaitResult[T any](ctx context.Context, c *Conn, method string, id ID, tax *Taxonomy) (T, *ErrorVariant, error) {
	frame, err := c.Await(ctx, method, id)
	if err != nil {
		var zero T
		return zero, nil, err
	}

	out, variant, err := Decode[T](frame, tax)
	c.settle(id, err)
	if err != nil {
		c.lg.Warn("cannot decode response", "method", method, "id", id, "error", err)
	}
	return out, variant, err
}
