package model

// Image resolution keys used by the decoding service for NFT previews.
const (
	ImageKey256     = "256"
	ImageKey512     = "512"
	ImageKey1024    = "1024"
	ImageKeyDefault = "default"
)

// DecodedEvent is one semantic action extracted from a transaction.
type DecodedEvent struct {
	Name     string        `json:"name"`
	Protocol *Protocol     `json:"protocol,omitempty"`
	Action   string        `json:"action"`
	Category string        `json:"category"`
	Tokens   []TokenAmount `json:"tokens,omitempty"`
	Details  []DetailField `json:"details,omitempty"`
	NFTs     []NftTransfer `json:"nfts,omitempty"`
}

// Protocol identifies the protocol an event belongs to.
type Protocol struct {
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// TokenAmount is a token movement within an event.
type TokenAmount struct {
	Heading      string `json:"heading,omitempty"`
	Pretty       string `json:"pretty"`
	TickerSymbol string `json:"ticker_symbol"`
	TickerLogo   string `json:"ticker_logo"`
	PrettyQuote  string `json:"pretty_quote,omitempty"`
}

// DetailField is a free-form key/value fact about an event.
type DetailField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// NftTransfer is an NFT moved by an event.
type NftTransfer struct {
	CollectionAddress string            `json:"collection_address"`
	CollectionName    string            `json:"collection_name,omitempty"`
	TokenIdentifier   string            `json:"token_identifier"`
	Heading           string            `json:"heading,omitempty"`
	Images            map[string]string `json:"images"`
}

// DecodeResult is the ordered list of decoded events for one transaction.
type DecodeResult []DecodedEvent
