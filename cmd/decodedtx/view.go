package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"decodedTx/internal/chain"
	"decodedTx/internal/config"
	"decodedTx/internal/decode"
	"decodedTx/internal/imgprobe"
	"decodedTx/internal/model"
	"decodedTx/internal/present"
)

func runView(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Network == "" {
		return fmt.Errorf("network is required")
	}
	if cfg.TxHash == "" {
		return fmt.Errorf("tx hash is required")
	}
	if cfg.Output != "text" && cfg.Output != "json" {
		return fmt.Errorf("unsupported output: %s", cfg.Output)
	}

	chains, err := chain.LoadRegistry(cfg.ChainsFile)
	if err != nil {
		return err
	}
	if cfg.StrictNetwork {
		if _, ok := chains.Lookup(cfg.Network); !ok {
			return fmt.Errorf("unknown network: %s", cfg.Network)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	decoder, closeDecoder := newDecoder(cfg.ServiceConfig, nil, logger, decode.NewMetrics(nil))
	defer closeDecoder()

	logger.Debug("view start",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("network", cfg.Network),
		zap.String("tx_hash", cfg.TxHash),
		zap.Bool("cache", cfg.RedisAddr != ""),
	)

	builder := present.NewBuilder(ctx, decoder,
		present.WithChains(chains),
		present.WithLogger(logger),
		present.WithOnChange(func(req model.TxRequest, state present.LoadState) {
			logger.Debug("view state",
				zap.String("network", req.Network),
				zap.String("tx_hash", req.TxHash),
				zap.Stringer("phase", state.Phase()),
			)
		}),
	)
	builder.Load(cfg.Network, cfg.TxHash)
	if _, err := builder.Wait(ctx); err != nil {
		return fmt.Errorf("wait decode: %w", err)
	}

	view, _ := builder.View()

	if cfg.RPCURL != "" {
		receipt, err := fetchReceipt(ctx, cfg.RPCURL, cfg.TxHash)
		if err != nil {
			logger.Warn("receipt unavailable", zap.Error(err))
		}
		view.Receipt = receipt
	}

	if cfg.CheckImages {
		view = present.CheckImages(ctx, view, imgprobe.NewProber(cfg.ImageTimeout, logger))
	}

	if cfg.Output == "json" {
		return renderJSON(cmd.OutOrStdout(), view)
	}
	return renderText(cmd.OutOrStdout(), view)
}

func fetchReceipt(ctx context.Context, rpcURL, txHash string) (*model.ReceiptSummary, error) {
	hash, err := chain.ParseTxHash(txHash)
	if err != nil {
		return nil, err
	}

	client, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	return client.Receipt(ctx, hash)
}
