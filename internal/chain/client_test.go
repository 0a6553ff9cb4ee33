package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

const (
	zeroHash  = "0x0000000000000000000000000000000000000000000000000000000000000000"
	zeroAddr  = "0x0000000000000000000000000000000000000000"
	testTx    = "0x1111111111111111111111111111111111111111111111111111111111111111"
	testBlock = "0x2222222222222222222222222222222222222222222222222222222222222222"
)

var zeroBloom = "0x" + strings.Repeat("0", 512)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

func newRPCServer(t *testing.T, headerCalls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode rpc request: %v", err)
			return
		}

		var result interface{}
		switch req.Method {
		case "eth_getTransactionReceipt":
			result = map[string]interface{}{
				"transactionHash":   testTx,
				"transactionIndex":  "0x0",
				"blockHash":         testBlock,
				"blockNumber":       "0x10",
				"status":            "0x1",
				"gasUsed":           "0x5208",
				"cumulativeGasUsed": "0x5208",
				"logsBloom":         zeroBloom,
				"logs":              []interface{}{},
				"contractAddress":   nil,
				"type":              "0x0",
			}
		case "eth_getBlockByNumber":
			atomic.AddInt32(headerCalls, 1)
			result = map[string]interface{}{
				"parentHash":       zeroHash,
				"sha3Uncles":       zeroHash,
				"miner":            zeroAddr,
				"stateRoot":        zeroHash,
				"transactionsRoot": zeroHash,
				"receiptsRoot":     zeroHash,
				"logsBloom":        zeroBloom,
				"difficulty":       "0x0",
				"number":           "0x10",
				"gasLimit":         "0x1c9c380",
				"gasUsed":          "0x5208",
				"timestamp":        "0x6553f100",
				"extraData":        "0x",
				"mixHash":          zeroHash,
				"nonce":            "0x0000000000000000",
				"hash":             testBlock,
			}
		default:
			t.Errorf("unexpected method %s", req.Method)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
}

func TestClientReceipt(t *testing.T) {
	var headerCalls int32
	server := newRPCServer(t, &headerCalls)
	defer server.Close()

	ctx := context.Background()
	client, err := NewClient(ctx, server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	hash, err := ParseTxHash(testTx)
	if err != nil {
		t.Fatalf("parse hash: %v", err)
	}

	for i := 0; i < 2; i++ {
		summary, err := client.Receipt(ctx, hash)
		if err != nil {
			t.Fatalf("receipt: %v", err)
		}
		if summary.Status != 1 || summary.BlockNumber != 16 || summary.GasUsed != 21000 {
			t.Fatalf("unexpected summary: %+v", summary)
		}
		if summary.Timestamp != 0x6553f100 {
			t.Fatalf("unexpected timestamp: %d", summary.Timestamp)
		}
	}

	if got := atomic.LoadInt32(&headerCalls); got != 1 {
		t.Fatalf("expected cached block timestamp, got %d header calls", got)
	}
}
