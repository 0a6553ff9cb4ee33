package present

import (
	"strconv"
	"strings"

	"decodedTx/internal/model"
)

const (
	DefaultTokenHeading   = "Token Amount"
	MissingCollectionName = "<NO COLLECTION NAME>"
)

// View is the render-ready model of a loaded decode result.
type View struct {
	Network string                  `json:"network"`
	TxHash  string                  `json:"tx_hash"`
	Chain   *model.ChainDisplayInfo `json:"chain,omitempty"`
	Receipt *model.ReceiptSummary   `json:"receipt,omitempty"`
	Events  []EventView             `json:"events"`
}

// EventView is one decoded event split into its display groups.
// A nil group is not rendered.
type EventView struct {
	Key      string        `json:"key"`
	Protocol string        `json:"protocol,omitempty"`
	Action   string        `json:"action"`
	Category string        `json:"category"`
	Tokens   []TokenEntry  `json:"tokens,omitempty"`
	Details  []DetailEntry `json:"details,omitempty"`
	NFTs     []NFTEntry    `json:"nfts,omitempty"`
}

type TokenEntry struct {
	Key          string `json:"key"`
	Heading      string `json:"heading"`
	Pretty       string `json:"pretty"`
	TickerSymbol string `json:"ticker_symbol"`
	TickerLogo   string `json:"ticker_logo,omitempty"`
	PrettyQuote  string `json:"pretty_quote,omitempty"`
	ChainColor   string `json:"chain_color,omitempty"`
}

// Amount is the displayed "<pretty> <ticker>" pair.
func (t TokenEntry) Amount() string {
	return strings.TrimSpace(t.Pretty + " " + t.TickerSymbol)
}

type DetailEntry struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value string `json:"value"`
}

type NFTEntry struct {
	Key               string      `json:"key"`
	Heading           string      `json:"heading,omitempty"`
	CollectionName    string      `json:"collection_name"`
	CollectionAddress string      `json:"collection_address"`
	TokenIdentifier   string      `json:"token_identifier"`
	Image             ImageSource `json:"image"`
}

func (e EventView) HasTokens() bool  { return len(e.Tokens) > 0 }
func (e EventView) HasDetails() bool { return len(e.Details) > 0 }
func (e EventView) HasNFTs() bool    { return len(e.NFTs) > 0 }

// BuildView projects every event of result, keeping the result's order.
func BuildView(network, txHash string, result model.DecodeResult, chain *model.ChainDisplayInfo) View {
	view := View{
		Network: network,
		TxHash:  txHash,
		Chain:   chain,
		Events:  make([]EventView, 0, len(result)),
	}
	for _, ev := range result {
		view.Events = append(view.Events, Project(ev, chain))
	}
	return view
}

// Project maps one event to its token, detail and NFT groups. It has no side effects.
func Project(ev model.DecodedEvent, chain *model.ChainDisplayInfo) EventView {
	out := EventView{
		Key:      ev.Name,
		Action:   ev.Action,
		Category: ev.Category,
	}
	if ev.Protocol != nil {
		out.Protocol = ev.Protocol.Name
	}

	var chainColor string
	if chain != nil {
		chainColor = chain.ColorTheme.Hex
	}

	if len(ev.Tokens) > 0 {
		out.Tokens = make([]TokenEntry, len(ev.Tokens))
		for i, token := range ev.Tokens {
			out.Tokens[i] = projectToken(i, token, chainColor)
		}
	}

	if len(ev.Details) > 0 {
		out.Details = make([]DetailEntry, len(ev.Details))
		for i, detail := range ev.Details {
			out.Details[i] = DetailEntry{
				Key:   detail.Title + strconv.Itoa(i),
				Title: detail.Title,
				Value: detail.Value,
			}
		}
	}

	if len(ev.NFTs) > 0 {
		out.NFTs = make([]NFTEntry, len(ev.NFTs))
		for i, nft := range ev.NFTs {
			out.NFTs[i] = projectNFT(nft)
		}
	}

	return out
}

func projectToken(index int, token model.TokenAmount, chainColor string) TokenEntry {
	key := token.TickerSymbol
	if key == "" {
		key = strconv.Itoa(index)
	}
	heading := token.Heading
	if heading == "" {
		heading = DefaultTokenHeading
	}

	return TokenEntry{
		Key:          key,
		Heading:      heading,
		Pretty:       token.Pretty,
		TickerSymbol: token.TickerSymbol,
		TickerLogo:   token.TickerLogo,
		PrettyQuote:  token.PrettyQuote,
		ChainColor:   chainColor,
	}
}

func projectNFT(nft model.NftTransfer) NFTEntry {
	name := nft.CollectionName
	if name == "" {
		name = MissingCollectionName
	}

	return NFTEntry{
		Key:               nft.CollectionAddress + nft.TokenIdentifier,
		Heading:           nft.Heading,
		CollectionName:    name,
		CollectionAddress: nft.CollectionAddress,
		TokenIdentifier:   nft.TokenIdentifier,
		Image:             ImageSource{URL: ResolveImageURL(nft.Images)},
	}
}
