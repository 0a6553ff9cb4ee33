package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"decodedTx/internal/model"
)

func TestBuildBatch(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	decodedAt := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)

	records := []model.ViewRecord{
		{
			RunID:      "run-1",
			Network:    "eth-mainnet",
			TxHash:     "0x1",
			Phase:      "populated",
			EventCount: 2,
			View:       json.RawMessage(`{"events":[]}`),
			Receipt:    &model.ReceiptSummary{Status: 1, BlockNumber: 42},
			DecodedAt:  decodedAt.Format(time.RFC3339Nano),
		},
		{
			RunID:     "run-1",
			Network:   "eth-mainnet",
			TxHash:    "0x2",
			Phase:     "unloaded",
			View:      json.RawMessage(`{}`),
			DecodedAt: "not a time",
		},
	}

	batch := buildBatch(records, now)
	if batch.Len() != 2 {
		t.Fatalf("expected 2 queued queries, got %d", batch.Len())
	}

	first := batch.QueuedQueries[0]
	if first.SQL != upsertView {
		t.Fatalf("unexpected sql: %s", first.SQL)
	}
	if len(first.Arguments) != 9 {
		t.Fatalf("expected 9 arguments, got %d", len(first.Arguments))
	}
	if first.Arguments[0] != "eth-mainnet" || first.Arguments[1] != "0x1" || first.Arguments[3] != "populated" || first.Arguments[4] != 2 {
		t.Fatalf("unexpected key arguments: %v", first.Arguments[:5])
	}
	if string(first.Arguments[5].([]byte)) != `{"events":[]}` {
		t.Fatalf("unexpected view argument: %v", first.Arguments[5])
	}
	if st := first.Arguments[6].(*int64); st == nil || *st != 1 {
		t.Fatalf("unexpected receipt status: %v", first.Arguments[6])
	}
	if bn := first.Arguments[7].(*int64); bn == nil || *bn != 42 {
		t.Fatalf("unexpected block number: %v", first.Arguments[7])
	}
	if !first.Arguments[8].(time.Time).Equal(decodedAt) {
		t.Fatalf("unexpected decoded_at: %v", first.Arguments[8])
	}

	second := batch.QueuedQueries[1]
	if st := second.Arguments[6].(*int64); st != nil {
		t.Fatalf("nil receipt must queue a NULL status, got %v", *st)
	}
	if bn := second.Arguments[7].(*int64); bn != nil {
		t.Fatalf("nil receipt must queue a NULL block number, got %v", *bn)
	}
	if !second.Arguments[8].(time.Time).Equal(now) {
		t.Fatalf("unparsable decoded_at should fall back to now, got %v", second.Arguments[8])
	}
}

func TestUpsertViewGuards(t *testing.T) {
	for _, want := range []string{
		"ON CONFLICT (network, tx_hash)",
		"COALESCE(EXCLUDED.receipt_status, decoded_transactions.receipt_status)",
		"COALESCE(EXCLUDED.block_number, decoded_transactions.block_number)",
		"WHERE decoded_transactions.phase = 'unloaded' OR EXCLUDED.phase <> 'unloaded'",
	} {
		if !strings.Contains(upsertView, want) {
			t.Fatalf("upsert is missing %q", want)
		}
	}
}

func TestNewStoreRequiresDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
