package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"decodedTx/internal/chain"
	"decodedTx/internal/model"
)

func runChains(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("chains-file")
	output, _ := cmd.Flags().GetString("output")

	registry, err := chain.LoadRegistry(path)
	if err != nil {
		return err
	}

	switch output {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(registry.All())
	case "text":
		return renderChains(cmd.OutOrStdout(), registry.All())
	default:
		return fmt.Errorf("unsupported output: %s", output)
	}
}

func renderChains(w io.Writer, chains []model.ChainDisplayInfo) error {
	for _, info := range chains {
		label := info.Label
		if label == "" {
			label = "-"
		}
		if _, err := fmt.Fprintf(w, "%-24s %-28s %s\n", info.Name, label, info.ColorTheme.Hex); err != nil {
			return err
		}
	}
	return nil
}
