package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"decodedTx/internal/chain"
	"decodedTx/internal/model"
	"decodedTx/internal/present"
)

func TestRenderTextSwap(t *testing.T) {
	info, _ := chain.DefaultRegistry().Lookup("eth-mainnet")
	result := model.DecodeResult{{
		Name:     "swap1",
		Protocol: &model.Protocol{Name: "Uniswap"},
		Action:   "Swap",
		Category: "DEX",
		Tokens:   []model.TokenAmount{{Pretty: "10", TickerSymbol: "ETH"}},
	}}
	view := present.BuildView("eth-mainnet", "0xabc", result, &info)

	var buf bytes.Buffer
	if err := renderText(&buf, view); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Decoded Transaction", "Uniswap [Swap] [DEX]", "  Tokens", "Token Amount: 10 ETH"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"Details", "NFTs", "No decoded Events."} {
		if strings.Contains(out, unwanted) {
			t.Fatalf("output should not contain %q:\n%s", unwanted, out)
		}
	}
}

func TestRenderTextEmpty(t *testing.T) {
	view := present.BuildView("eth-mainnet", "0xabc", model.DecodeResult{}, nil)

	var buf bytes.Buffer
	if err := renderText(&buf, view); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No decoded Events.") {
		t.Fatalf("expected empty message:\n%s", buf.String())
	}
}

func TestRenderTextNFTAndDetails(t *testing.T) {
	result := model.DecodeResult{{
		Name:     "mint",
		Action:   "Mint",
		Category: "NFT",
		Details:  []model.DetailField{{Title: "Minter", Value: "0xdef"}},
		NFTs: []model.NftTransfer{{
			CollectionAddress: "0xc0",
			TokenIdentifier:   "7",
			Images:            map[string]string{"512": "https://img/512.png"},
		}},
	}}
	view := present.BuildView("eth-mainnet", "0xabc", result, nil)

	var buf bytes.Buffer
	if err := renderText(&buf, view); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"mint [Mint] [NFT]", "Minter: 0xdef", "<NO COLLECTION NAME> #7 (0xc0)", "image: https://img/512.png"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Tokens") {
		t.Fatalf("tokens section should be absent:\n%s", out)
	}
}

func TestRenderJSON(t *testing.T) {
	view := present.BuildView("eth-mainnet", "0xabc", model.DecodeResult{{Name: "a"}}, nil)

	var buf bytes.Buffer
	if err := renderJSON(&buf, view); err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded present.View
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.TxHash != "0xabc" || len(decoded.Events) != 1 || decoded.Events[0].Key != "a" {
		t.Fatalf("unexpected view: %+v", decoded)
	}
}

func TestRenderChains(t *testing.T) {
	var buf bytes.Buffer
	if err := renderChains(&buf, chain.DefaultRegistry().All()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "eth-mainnet") {
		t.Fatalf("missing eth-mainnet:\n%s", buf.String())
	}
}
