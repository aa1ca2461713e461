// Package ogmios provides typed access to the Ogmios JSON-RPC interface of a
// Cardano node: ledger state queries, transaction evaluation and submission,
// and mempool monitoring.
//
// A Client runs over a websocket connection or over one-shot HTTP requests:
//
//	client, err := ogmios.Dial(ctx, "ws://localhost:1337", jsonrpc.DefaultWebsocketConfig, jsonrpc.DefaultConnConfig)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	tip, rpcErr, err := client.Tip(ctx)
//
// Every method reports failures in two ways. The error return carries
// transport and decode failures. The *jsonrpc.ErrorVariant return carries the
// error the node answered with, decoded through the method's taxonomy
// (LedgerStateErrors, EvaluationErrors, SubmitErrors, MempoolErrors).
package ogmios
