package decode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"decodedTx/internal/model"
)

const (
	DefaultEndpoint     = "http://localhost:8080/api/v1/tx/decode"
	DefaultAPIKeyHeader = "x-covalent-api-key"

	maxErrorBody = 256
)

// Fetcher retrieves decoded events and reports why a retrieval failed.
type Fetcher interface {
	Fetch(ctx context.Context, network, txHash string) (model.DecodeResult, error)
}

// ClientConfig holds the decoding service settings.
type ClientConfig struct {
	Endpoint     string
	APIKey       string
	APIKeyHeader string
}

// Client calls the transaction decoding service.
type Client struct {
	cfg     ClientConfig
	http    *resty.Client
	logger  *zap.Logger
	metrics *Metrics
}

type decodeRequest struct {
	Network string `json:"network"`
	TxHash  string `json:"tx_hash"`
}

type decodeResponse struct {
	Events json.RawMessage `json:"events"`
}

// NewClient builds a Client. A single attempt is made per call: no retries and no timeout.
func NewClient(cfg ClientConfig, logger *zap.Logger, metrics *Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = DefaultAPIKeyHeader
	}

	return &Client{
		cfg:     cfg,
		http:    resty.New().SetRetryCount(0),
		logger:  logger,
		metrics: metrics,
	}
}

// Fetch performs the decode request and returns the events or a classified error.
func (c *Client) Fetch(ctx context.Context, network, txHash string) (model.DecodeResult, error) {
	result, err := c.fetch(ctx, network, txHash)
	c.metrics.observeErr(err)
	return result, err
}

// Decode performs the decode request. Every failure is logged and returned as an empty result.
func (c *Client) Decode(ctx context.Context, network, txHash string) model.DecodeResult {
	result, err := c.Fetch(ctx, network, txHash)
	return normalize(c.logger, network, txHash, result, err)
}

func (c *Client) fetch(ctx context.Context, network, txHash string) (model.DecodeResult, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(decodeRequest{Network: network, TxHash: txHash})
	if c.cfg.APIKey != "" {
		req.SetHeader(c.cfg.APIKeyHeader, c.cfg.APIKey)
	}

	resp, err := req.Post(c.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if !resp.IsSuccess() {
		body := resp.String()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrStatus, resp.StatusCode(), body)
	}

	return parseEvents(resp.Body())
}

func parseEvents(body []byte) (model.DecodeResult, error) {
	var payload decodeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	raw := bytes.TrimSpace(payload.Events)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: missing events field", ErrMalformed)
	}

	var events model.DecodeResult
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("%w: events: %w", ErrMalformed, err)
	}
	if events == nil {
		events = model.DecodeResult{}
	}
	return events, nil
}

func normalize(logger *zap.Logger, network, txHash string, result model.DecodeResult, err error) model.DecodeResult {
	if err != nil {
		logger.Warn("decode failed, serving empty result",
			zap.String("network", network),
			zap.String("tx_hash", txHash),
			zap.Error(err),
		)
		return model.DecodeResult{}
	}
	if result == nil {
		return model.DecodeResult{}
	}
	return result
}
