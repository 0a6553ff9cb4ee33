package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"decodedTx/internal/present"
)

const (
	viewHeading = "Decoded Transaction"
	emptyEvents = "No decoded Events."
)

func renderJSON(w io.Writer, view present.View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("encode view: %w", err)
	}
	return nil
}

func renderText(w io.Writer, view present.View) error {
	var b strings.Builder

	b.WriteString(viewHeading + "\n")
	network := view.Network
	if view.Chain != nil && view.Chain.Label != "" {
		network = fmt.Sprintf("%s (%s)", view.Network, view.Chain.Label)
	}
	fmt.Fprintf(&b, "Network: %s\n", network)
	fmt.Fprintf(&b, "Tx: %s\n", view.TxHash)
	if r := view.Receipt; r != nil {
		fmt.Fprintf(&b, "Receipt: status=%d block=%d gas_used=%d timestamp=%d\n", r.Status, r.BlockNumber, r.GasUsed, r.Timestamp)
	}
	b.WriteString("\n")

	if len(view.Events) == 0 {
		b.WriteString(emptyEvents + "\n")
	}

	for i, ev := range view.Events {
		if i > 0 {
			b.WriteString("\n")
		}
		writeEvent(&b, ev)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeEvent(b *strings.Builder, ev present.EventView) {
	title := ev.Protocol
	if title == "" {
		title = ev.Key
	}
	fmt.Fprintf(b, "%s [%s] [%s]\n", title, ev.Action, ev.Category)

	if ev.HasTokens() {
		b.WriteString("  Tokens\n")
		for _, token := range ev.Tokens {
			fmt.Fprintf(b, "    %s: %s", token.Heading, token.Amount())
			if token.PrettyQuote != "" {
				fmt.Fprintf(b, " (%s)", token.PrettyQuote)
			}
			b.WriteString("\n")
		}
	}

	if ev.HasDetails() {
		b.WriteString("  Details\n")
		for _, detail := range ev.Details {
			fmt.Fprintf(b, "    %s: %s\n", detail.Title, detail.Value)
		}
	}

	if ev.HasNFTs() {
		b.WriteString("  NFTs\n")
		for _, nft := range ev.NFTs {
			if nft.Heading != "" {
				fmt.Fprintf(b, "    %s\n", nft.Heading)
			}
			fmt.Fprintf(b, "    %s #%s (%s)\n", nft.CollectionName, nft.TokenIdentifier, nft.CollectionAddress)
			if nft.Image.URL != "" {
				fmt.Fprintf(b, "      image: %s\n", nft.Image.URL)
			}
		}
	}
}
