package ogmios

import (
	"context"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/jsonrpc"
)

// Method names.
const (
	MethodEvaluateTransaction    = "evaluateTransaction"
	MethodSubmitTransaction      = "submitTransaction"
	MethodProtocolParameters     = "queryLedgerState/protocolParameters"
	MethodTip                    = "queryLedgerState/tip"
	MethodUtxo                   = "queryLedgerState/utxo"
	MethodRewardAccountSummaries = "queryLedgerState/rewardAccountSummaries"
	MethodAcquireMempool         = "acquireMempool"
	MethodNextTransaction        = "nextTransaction"
)

// Client issues typed Ogmios calls over either a duplex connection or
// one-shot HTTP requests. Every method returns the decoded result, or the
// error variant the node answered with, or a transport/decode error.
type Client struct {
	conn *jsonrpc.Conn
	hc   *jsonrpc.HTTPClient
}

// NewClient wraps an established duplex connection. Closing the client
// closes the connection.
func NewClient(conn *jsonrpc.Conn) *Client {
	return &Client{conn: conn}
}

// NewHTTPClient wraps a one-shot HTTP transport. Mempool methods are not
// available over HTTP.
func NewHTTPClient(hc *jsonrpc.HTTPClient) *Client {
	return &Client{hc: hc}
}

// Dial opens a websocket connection to url and wraps it.
func Dial(ctx context.Context, url string, wsCfg jsonrpc.WebsocketConfig, cfg jsonrpc.ConnConfig) (*Client, error) {
	conn, err := jsonrpc.Dial(ctx, url, wsCfg, cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// Conn returns the duplex connection, nil for an HTTP client.
func (c *Client) Conn() *jsonrpc.Conn {
	return c.conn
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func call[T any](ctx context.Context, c *Client, method string, params any, tax *jsonrpc.Taxonomy) (T, *jsonrpc.ErrorVariant, error) {
	if params != nil {
		if err := validateParams(params); err != nil {
			var zero T
			return zero, nil, err
		}
	}
	if c.conn != nil {
		return jsonrpc.Call[T](ctx, c.conn, method, params, tax)
	}
	return jsonrpc.CallHTTP[T](ctx, c.hc, method, params, tax)
}

func (c *Client) Tip(ctx context.Context) (Tip, *jsonrpc.ErrorVariant, error) {
	return call[Tip](ctx, c, MethodTip, nil, LedgerStateErrors)
}

func (c *Client) ProtocolParameters(ctx context.Context) (ProtocolParams, *jsonrpc.ErrorVariant, error) {
	return call[ProtocolParams](ctx, c, MethodProtocolParameters, nil, LedgerStateErrors)
}

func (c *Client) Utxo(ctx context.Context, query UtxoQuery) ([]Utxo, *jsonrpc.ErrorVariant, error) {
	return call[[]Utxo](ctx, c, MethodUtxo, &query, LedgerStateErrors)
}

func (c *Client) RewardAccountSummaries(ctx context.Context, params RewardAccountSummariesParams) (RewardAccountSummaries, *jsonrpc.ErrorVariant, error) {
	return call[RewardAccountSummaries](ctx, c, MethodRewardAccountSummaries, &params, LedgerStateErrors)
}

// Evaluate runs the scripts of a transaction and returns the budget of each
// validator.
func (c *Client) Evaluate(ctx context.Context, tx TxCbor, additional ...Utxo) ([]Evaluation, *jsonrpc.ErrorVariant, error) {
	params := EvaluateParams{Transaction: tx, AdditionalUtxo: additional}
	return call[[]Evaluation](ctx, c, MethodEvaluateTransaction, &params, EvaluationErrors)
}

func (c *Client) Submit(ctx context.Context, tx TxCbor) (SubmitResult, *jsonrpc.ErrorVariant, error) {
	return call[SubmitResult](ctx, c, MethodSubmitTransaction, &SubmitParams{Transaction: tx}, SubmitErrors)
}

// AcquireMempool takes a snapshot of the node's mempool.
func (c *Client) AcquireMempool(ctx context.Context) (AcquireMempoolResult, *jsonrpc.ErrorVariant, error) {
	if c.conn == nil {
		return AcquireMempoolResult{}, nil, ErrDuplexOnly
	}
	return call[AcquireMempoolResult](ctx, c, MethodAcquireMempool, nil, MempoolErrors)
}

// NextTransaction returns the next transaction of the acquired snapshot.
// A nil Transaction means the snapshot is exhausted.
func (c *Client) NextTransaction(ctx context.Context) (NextTransactionResult, *jsonrpc.ErrorVariant, error) {
	if c.conn == nil {
		return NextTransactionResult{}, nil, ErrDuplexOnly
	}
	return call[NextTransactionResult](ctx, c, MethodNextTransaction, &nextTransactionAll, MempoolErrors)
}
