package model

// ChainDisplayInfo carries the display metadata of a known chain.
type ChainDisplayInfo struct {
	Name       string     `yaml:"name" json:"name"`
	Label      string     `yaml:"label" json:"label,omitempty"`
	ColorTheme ColorTheme `yaml:"color_theme" json:"color_theme"`
}

// ColorTheme is the accent color of a chain.
type ColorTheme struct {
	Hex string `yaml:"hex" json:"hex"`
}

// ReceiptSummary holds optional on-chain facts about a decoded transaction.
type ReceiptSummary struct {
	Status      uint64 `json:"status"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
	Timestamp   uint64 `json:"timestamp"`
}
