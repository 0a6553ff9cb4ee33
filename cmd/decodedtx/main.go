package main

import (
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"decodedTx/internal/config"
	"decodedTx/internal/decode"
	"decodedTx/internal/present"
)

func main() {
	root := &cobra.Command{
		Use:          "decodedtx",
		Short:        "Decoded transaction viewer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Decode one transaction and print its events",
		RunE:  runView,
	}

	addServiceFlags(viewCmd)
	viewCmd.Flags().String("network", "", "network name (e.g. eth-mainnet)")
	viewCmd.Flags().String("tx-hash", "", "transaction hash")
	viewCmd.Flags().Bool("check-images", false, "probe NFT images and substitute the fallback on failure")
	viewCmd.Flags().Duration("image-timeout", 5*time.Second, "timeout per NFT image probe")
	viewCmd.Flags().String("output", "text", "output format (text, json)")

	root.AddCommand(viewCmd)

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Decode a JSONL list of transactions into stored views",
		RunE:  runBatch,
	}

	addServiceFlags(batchCmd)
	batchCmd.Flags().String("in", "", "input JSONL of {network, tx_hash} lines")
	batchCmd.Flags().String("out", "./data/views.jsonl", "output views JSONL path (empty disables)")
	batchCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	batchCmd.Flags().Uint64("batch-size", 100, "requests per batch")
	batchCmd.Flags().Int("concurrency", 8, "decodes in flight per batch")
	batchCmd.Flags().Duration("wait-timeout", 0, "record a request as unloaded after waiting this long, 0 waits forever")
	batchCmd.Flags().String("checkpoint", "./data/batch_checkpoint.json", "checkpoint file path")
	batchCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	batchCmd.Flags().Int("max-retries", 5, "maximum receipt retry attempts")
	batchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	batchCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address (e.g. :9102)")
	batchCmd.Flags().Bool("progress", false, "show a progress bar")

	root.AddCommand(batchCmd)

	chainsCmd := &cobra.Command{
		Use:   "chains",
		Short: "List the chain registry",
		RunE:  runChains,
	}

	chainsCmd.Flags().String("chains-file", "", "YAML chain table merged over the built-in registry")
	chainsCmd.Flags().String("output", "text", "output format (text, json)")

	root.AddCommand(chainsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addServiceFlags(cmd *cobra.Command) {
	cmd.Flags().String("endpoint", decode.DefaultEndpoint, "decoding service endpoint")
	cmd.Flags().String("api-key", "", "decoding service API key")
	cmd.Flags().String("api-key-header", decode.DefaultAPIKeyHeader, "header carrying the API key")
	cmd.Flags().String("chains-file", "", "YAML chain table merged over the built-in registry")
	cmd.Flags().Bool("strict-network", false, "reject networks missing from the chain registry")
	cmd.Flags().String("rpc", "", "EVM RPC URL for receipt enrichment")
	cmd.Flags().String("redis-addr", "", "cache decode results in Redis at this address")
	cmd.Flags().Duration("cache-ttl", 10*time.Minute, "decode cache TTL")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// newDecoder wires the decode client behind a Redis cache when redis-addr is set,
// or behind memCache when it is non-nil. The returned func releases the cache.
func newDecoder(cfg config.ServiceConfig, memCache decode.Cache, logger *zap.Logger, metrics *decode.Metrics) (present.Decoder, func()) {
	client := decode.NewClient(decode.ClientConfig{
		Endpoint:     cfg.Endpoint,
		APIKey:       cfg.APIKey,
		APIKeyHeader: cfg.APIKeyHeader,
	}, logger, metrics)

	if cfg.RedisAddr != "" {
		adapter := decode.NewRedisAdapter(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		closeFn := func() {
			if err := adapter.Close(); err != nil {
				logger.Warn("close redis", zap.Error(err))
			}
		}
		return decode.NewCachedDecoder(client, adapter, cfg.CacheTTL, logger, metrics), closeFn
	}
	if memCache != nil {
		return decode.NewCachedDecoder(client, memCache, cfg.CacheTTL, logger, metrics), func() {}
	}
	return client, func() {}
}
