// Package jsonrpc implements the JSON-RPC 2.0 client core used to talk to an
// Ogmios server: the envelope codec, the error taxonomy registry, and the
// correlation engine that multiplexes many calls onto one websocket.
//
// # Envelopes
//
// Requests are built with Encode. Responses are split with DecodeResponse,
// which tells a success from an error by which member is present: a frame
// with a "result" member is a success, otherwise a frame with an "error"
// member is an error. IdentityOf reads only the method and id of a frame.
//
// # Error taxonomies
//
// Each domain declares the error codes it can answer with:
//
//	var LedgerErrors = jsonrpc.NewTaxonomy("ledger-state",
//	    jsonrpc.Structured(2001, "EraMismatch",
//	        jsonrpc.FieldOf[string]("query_era"),
//	        jsonrpc.FieldOf[string]("ledger_era"),
//	    ),
//	    jsonrpc.Unit(2002, "UnavailableInCurrentEra"),
//	    jsonrpc.Single[string](2003, "AcquiredExpired"),
//	)
//
// Resolve turns a raw error object into an *ErrorVariant. Codes that are not
// declared resolve to the fallback variant, which keeps the code, message
// and raw data, so a newer server never breaks decoding.
//
// # Correlation
//
// A Conn sends requests with fresh identifiers and hands each response to
// the call that issued it, whatever order responses arrive in:
//
//	conn, err := jsonrpc.Dial(ctx, "ws://localhost:1337", jsonrpc.DefaultWebsocketConfig, jsonrpc.ConnConfig{})
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	tip, rpcErr, err := jsonrpc.Call[Tip](ctx, conn, "queryLedgerState/tip", nil, LedgerErrors)
//
// Send and Await split a call for pipelining. Frames read on behalf of one
// awaiter that belong to another call are kept in a pending buffer, bounded
// by ConnConfig.PendingTTL and ConnConfig.MaxPending.
//
// HTTPClient is the one-shot alternative: one POST per call, no correlation.
package jsonrpc
