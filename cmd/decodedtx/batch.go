package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"decodedTx/internal/batch"
	"decodedTx/internal/chain"
	"decodedTx/internal/config"
	"decodedTx/internal/decode"
	"decodedTx/internal/storage"
	"decodedTx/internal/storage/postgres"
)

func runBatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBatch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" && cfg.PGDSN == "" {
		return fmt.Errorf("an output path or postgres dsn is required")
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	requests, err := batch.ParseRequests(inputFile)
	inputFile.Close()
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	chains, err := chain.LoadRegistry(cfg.ChainsFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := decode.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		server := startMetricsServer(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown", zap.Error(err))
			}
		}()
	}

	decoder, closeDecoder := newDecoder(cfg.ServiceConfig, decode.NewMemoryCache(), logger, metrics)
	defer closeDecoder()

	var sinks storage.Multi
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		sinks = append(sinks, store)
	}

	var receipts batch.ReceiptFetcher
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
		receipts = chainClient
	}

	runID := uuid.NewString()
	runner := batch.NewRunner(batch.RunConfig{
		Input:             cfg.In,
		RunID:             runID,
		BatchSize:         cfg.BatchSize,
		Concurrency:       cfg.Concurrency,
		StrictNetwork:     cfg.StrictNetwork,
		WaitTimeout:       cfg.WaitTimeout,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
		ShowProgress:      cfg.Progress,
	}, decoder, chains, receipts, sinks, logger)

	logger.Info("batch start",
		zap.String("run_id", runID),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("in", cfg.In),
		zap.Int("requests", len(requests)),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.Bool("redis", cfg.RedisAddr != ""),
		zap.Bool("receipts", receipts != nil),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	if err := runner.Run(ctx, requests); err != nil {
		return err
	}

	logger.Info("batch done", zap.String("run_id", runID))
	return nil
}

func startMetricsServer(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return server
}
