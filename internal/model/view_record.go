package model

import "encoding/json"

// ViewRecord is the persisted form of one decoded transaction view.
type ViewRecord struct {
	RunID      string          `json:"run_id"`
	Network    string          `json:"network"`
	TxHash     string          `json:"tx_hash"`
	Phase      string          `json:"phase"`
	EventCount int             `json:"event_count"`
	View       json.RawMessage `json:"view"`
	Receipt    *ReceiptSummary `json:"receipt,omitempty"`
	DecodedAt  string          `json:"decoded_at"`
}
