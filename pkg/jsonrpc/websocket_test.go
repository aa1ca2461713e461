package jsonrpc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/jsonrpc"
)

// createOgmiosServer starts a websocket server that collects batch requests
// and answers them in reverse order, echoing params as the result.
func createOgmiosServer(t *testing.T, batch int) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			var reqs []jsonrpc.Request
			for len(reqs) < batch {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var req struct {
					jsonrpc.Request
					Params json.RawMessage `json:"params"`
				}
				if err := json.Unmarshal(msg, &req); err != nil {
					t.Errorf("unmarshal request: %v", err)
					return
				}
				req.Request.Params = req.Params
				reqs = append(reqs, req.Request)
			}

			for i := len(reqs) - 1; i >= 0; i-- {
				req := reqs[i]
				if req.Method == "binary" {
					_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0xde, 0xad})
					continue
				}
				if req.Method == "hangup" {
					return
				}
				res, _ := json.Marshal(map[string]any{
					"jsonrpc": "2.0",
					"method":  req.Method,
					"result":  req.Params,
					"id":      req.ID,
				})
				if err := conn.WriteMessage(websocket.TextMessage, res); err != nil {
					return
				}
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebsocket_Call(t *testing.T) {
	t.Parallel()

	server := createOgmiosServer(t, 1)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := jsonrpc.Dial(ctx, wsURL(server), jsonrpc.DefaultWebsocketConfig, jsonrpc.ConnConfig{})
	require.NoError(t, err)
	defer conn.Close()

	res, rpcErr, err := jsonrpc.Call[map[string]string](ctx, conn, "echo", map[string]string{"key": "value"}, nil)
	require.NoError(t, err)
	require.Nil(t, rpcErr)
	assert.Equal(t, map[string]string{"key": "value"}, res)
}

func TestWebsocket_PipelinedCallsAnsweredInReverse(t *testing.T) {
	t.Parallel()

	server := createOgmiosServer(t, 3)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := jsonrpc.Dial(ctx, wsURL(server), jsonrpc.DefaultWebsocketConfig, jsonrpc.ConnConfig{})
	require.NoError(t, err)
	defer conn.Close()

	ids := make([]jsonrpc.ID, 3)
	for i := range ids {
		ids[i], err = conn.Send(ctx, "echo", i)
		require.NoError(t, err)
	}

	for i, id := range ids {
		res, _, err := jsonrpc.AwaitResult[int](ctx, conn, "echo", id, nil)
		require.NoError(t, err)
		assert.Equal(t, i, res)
	}
	assert.Equal(t, 0, conn.Buffered())
}

func TestWebsocket_BinaryFrameClosesConnection(t *testing.T) {
	t.Parallel()

	server := createOgmiosServer(t, 1)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := jsonrpc.Dial(ctx, wsURL(server), jsonrpc.DefaultWebsocketConfig, jsonrpc.ConnConfig{})
	require.NoError(t, err)

	_, _, err = jsonrpc.Call[int](ctx, conn, "binary", nil, nil)
	require.ErrorIs(t, err, jsonrpc.ErrUnexpectedFrame)

	_, _, err = jsonrpc.Call[int](ctx, conn, "echo", 1, nil)
	require.ErrorIs(t, err, jsonrpc.ErrConnectionClosed)
}

func TestWebsocket_ServerHangup(t *testing.T) {
	t.Parallel()

	server := createOgmiosServer(t, 1)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := jsonrpc.Dial(ctx, wsURL(server), jsonrpc.DefaultWebsocketConfig, jsonrpc.ConnConfig{})
	require.NoError(t, err)

	_, _, err = jsonrpc.Call[int](ctx, conn, "hangup", nil, nil)
	require.ErrorIs(t, err, jsonrpc.ErrConnectionClosed)
	assert.ErrorIs(t, conn.Err(), jsonrpc.ErrConnectionClosed)
}

func TestWebsocket_ReadHonorsContext(t *testing.T) {
	t.Parallel()

	server := createOgmiosServer(t, 2)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := jsonrpc.Dial(ctx, wsURL(server), jsonrpc.DefaultWebsocketConfig, jsonrpc.ConnConfig{})
	require.NoError(t, err)
	defer conn.Close()

	// the server waits for a second request before answering
	first, err := conn.Send(ctx, "echo", "first")
	require.NoError(t, err)

	shortCtx, shortCancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer shortCancel()
	_, err = conn.Await(shortCtx, "echo", first)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, conn.Err())

	second, err := conn.Send(ctx, "echo", "second")
	require.NoError(t, err)
	res, _, err := jsonrpc.AwaitResult[string](ctx, conn, "echo", second, nil)
	require.NoError(t, err)
	assert.Equal(t, "second", res)
}

func TestDialWebsocket_Failure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := jsonrpc.DialWebsocket(ctx, "ws://invalid-url-that-does-not-exist:12345", jsonrpc.DefaultWebsocketConfig)
	require.ErrorIs(t, err, jsonrpc.ErrDialingWebsocket)
	assert.Contains(t, err.Error(), "error dialing websocket server")
}
