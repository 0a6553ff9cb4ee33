package model

// TxRequest identifies a transaction to decode.
type TxRequest struct {
	Network string `json:"network"`
	TxHash  string `json:"tx_hash"`
}

// Key returns a stable identity for the request pair.
func (r TxRequest) Key() string {
	return r.Network + ":" + r.TxHash
}
