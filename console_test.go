package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/jsonrpc"
	"github.com/Liqwid-Labs/ogmios-client-go/pkg/ogmios"
)

func createWebsocketServer(t *testing.T, handle rpcHandler) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req rpcRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				t.Errorf("unmarshal request: %v", err)
				return
			}
			member, res := handle(req)
			if err := conn.WriteMessage(websocket.TextMessage, rpcEnvelope(req, member, res)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func setupTestConsole(t *testing.T, handle rpcHandler) (*Console, *bytes.Buffer) {
	t.Helper()

	server := createWebsocketServer(t, handle)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	metrics := NewMetricsWithRegistry(prometheus.NewRegistry())
	client, err := ogmios.Dial(ctx, url, jsonrpc.DefaultWebsocketConfig, jsonrpc.ConnConfig{Observer: metrics})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	var out bytes.Buffer
	return NewConsole(context.Background(), client, metrics, &out, 5*time.Second), &out
}

func document(text string) prompt.Document {
	buf := prompt.NewBuffer()
	buf.InsertText(text, false, true)
	return *buf.Document()
}

func suggestionTexts(suggestions []prompt.Suggest) []string {
	texts := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		texts = append(texts, s.Text)
	}
	return texts
}

func TestConsole_Complete(t *testing.T) {
	t.Parallel()

	console := NewConsole(context.Background(), nil, nil, &bytes.Buffer{}, time.Second)

	all := suggestionTexts(console.Complete(document("")))
	assert.Contains(t, all, "tip")
	assert.Contains(t, all, "submit")
	assert.Contains(t, all, "mempool")
	assert.Contains(t, all, "exit")
	assert.Len(t, all, len(commands)+len(consoleCommands))

	assert.Equal(t, []string{"utxo"}, suggestionTexts(console.Complete(document("ut"))))
	assert.Equal(t, []string{"--address", "--ref"}, suggestionTexts(console.Complete(document("utxo --"))))
	assert.Equal(t, []string{"--script"}, suggestionTexts(console.Complete(document("rewards --key abc --s"))))
	assert.Empty(t, console.Complete(document("utxo --address ")))
	assert.Empty(t, console.Complete(document("stats ")))
}

func TestConsole_ExecuteCommands(t *testing.T) {
	t.Parallel()

	console, out := setupTestConsole(t, func(req rpcRequest) (string, string) {
		switch req.Method {
		case ogmios.MethodTip:
			return "result", `{"slot":99,"id":"` + testTxA + `"}`
		case ogmios.MethodSubmitTransaction:
			return "error", `{"code":3998,"message":"unrecognized certificate type"}`
		}
		return "error", `{"code":-32601,"message":"method not found"}`
	})

	console.Execute("tip")
	assert.Contains(t, out.String(), "slot 99")
	out.Reset()

	console.Execute("submit --cbor 84a300")
	assert.Contains(t, out.String(), "[3998] unrecognized certificate type")
	assert.Contains(t, out.String(), "Error: ")
	out.Reset()

	console.Execute("frobnicate now")
	assert.Equal(t, "Unknown command: frobnicate\n", out.String())
	out.Reset()

	console.Execute("   ")
	assert.Empty(t, out.String())

	console.Execute("stats")
	assert.Contains(t, out.String(), "connection:  open")
	assert.Contains(t, out.String(), "outstanding: 0")
	out.Reset()

	console.Execute("help")
	assert.Contains(t, out.String(), "utxo (--address")
	assert.Contains(t, out.String(), "walk a fresh mempool snapshot")
}

func TestConsole_Mempool(t *testing.T) {
	t.Parallel()

	remaining := []string{
		`{"transaction":{"id":"` + testTxA + `"}}`,
		`{"transaction":{"id":"` + testTxB + `"}}`,
		`{"transaction":null}`,
	}
	console, out := setupTestConsole(t, func(req rpcRequest) (string, string) {
		switch req.Method {
		case ogmios.MethodAcquireMempool:
			return "result", `{"acquired":"mempool","slot":512}`
		case ogmios.MethodNextTransaction:
			assert.JSONEq(t, `{"fields":"all"}`, string(req.Params))
			next := remaining[0]
			remaining = remaining[1:]
			return "result", next
		}
		return "error", `{"code":-32601,"message":"method not found"}`
	})

	console.Execute("mempool")
	assert.Contains(t, out.String(), testTxA)
	assert.Contains(t, out.String(), testTxB)
	assert.Contains(t, out.String(), "2 transactions at slot 512")
	assert.Equal(t, 1.0, testutil.ToFloat64(console.metrics.MempoolSnapshots))
}

func TestConsole_Exit(t *testing.T) {
	t.Parallel()

	console := NewConsole(context.Background(), nil, nil, &bytes.Buffer{}, time.Second)
	console.Execute("exit")
	console.Execute("exit")

	select {
	case <-console.Wait():
	default:
		t.Fatal("console did not exit")
	}
}
