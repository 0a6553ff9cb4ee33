package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "DECODER"

// ServiceConfig holds settings shared by every command that talks to the decoding service.
type ServiceConfig struct {
	Endpoint      string
	APIKey        string
	APIKeyHeader  string
	ChainsFile    string
	StrictNetwork bool
	RPCURL        string
	RedisAddr     string
	CacheTTL      time.Duration
	LogLevel      string
}

// Config holds configuration for the view command.
type Config struct {
	ServiceConfig
	Network      string
	TxHash       string
	CheckImages  bool
	ImageTimeout time.Duration
	Output       string
}

// BatchConfig holds configuration for the batch command.
type BatchConfig struct {
	ServiceConfig
	In                string
	Out               string
	PGDSN             string
	BatchSize         uint64
	Concurrency       int
	WaitTimeout       time.Duration
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	MetricsAddr       string
	Progress          bool
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("check-images", false)
		v.SetDefault("image-timeout", 5*time.Second)
		v.SetDefault("output", "text")
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ServiceConfig: loadService(v),
		Network:       strings.TrimSpace(v.GetString("network")),
		TxHash:        strings.TrimSpace(v.GetString("tx-hash")),
		CheckImages:   v.GetBool("check-images"),
		ImageTimeout:  v.GetDuration("image-timeout"),
		Output:        strings.ToLower(v.GetString("output")),
	}

	return cfg, nil
}

// LoadBatch merges .env, config file, environment variables, and flags into BatchConfig.
func LoadBatch(cfgFile string, flags *pflag.FlagSet) (BatchConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("out", "./data/views.jsonl")
		v.SetDefault("batch-size", uint64(100))
		v.SetDefault("concurrency", 8)
		v.SetDefault("wait-timeout", time.Duration(0))
		v.SetDefault("checkpoint", "./data/batch_checkpoint.json")
		v.SetDefault("checkpoint-enabled", true)
		v.SetDefault("max-retries", 5)
		v.SetDefault("retry-backoff", 500*time.Millisecond)
		v.SetDefault("progress", false)
	})
	if err != nil {
		return BatchConfig{}, err
	}

	cfg := BatchConfig{
		ServiceConfig:     loadService(v),
		In:                v.GetString("in"),
		Out:               v.GetString("out"),
		PGDSN:             v.GetString("pg-dsn"),
		BatchSize:         v.GetUint64("batch-size"),
		Concurrency:       v.GetInt("concurrency"),
		WaitTimeout:       v.GetDuration("wait-timeout"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		MetricsAddr:       v.GetString("metrics-addr"),
		Progress:          v.GetBool("progress"),
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults func(*viper.Viper)) (*viper.Viper, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("endpoint", "http://localhost:8080/api/v1/tx/decode")
	v.SetDefault("api-key-header", "x-covalent-api-key")
	v.SetDefault("strict-network", false)
	v.SetDefault("cache-ttl", 10*time.Minute)
	v.SetDefault("log-level", "info")
	if defaults != nil {
		defaults(v)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func loadService(v *viper.Viper) ServiceConfig {
	return ServiceConfig{
		Endpoint:      v.GetString("endpoint"),
		APIKey:        v.GetString("api-key"),
		APIKeyHeader:  v.GetString("api-key-header"),
		ChainsFile:    v.GetString("chains-file"),
		StrictNetwork: v.GetBool("strict-network"),
		RPCURL:        v.GetString("rpc"),
		RedisAddr:     v.GetString("redis-addr"),
		CacheTTL:      v.GetDuration("cache-ttl"),
		LogLevel:      v.GetString("log-level"),
	}
}
