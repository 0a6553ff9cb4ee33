// Package imgprobe checks whether NFT preview images can be loaded.
package imgprobe

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Prober issues HEAD requests for image URLs, falling back to a ranged GET when HEAD is refused.
type Prober struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewProber(timeout time.Duration, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{
		http:   resty.New().SetTimeout(timeout).SetRetryCount(0),
		logger: logger,
	}
}

// Reachable reports whether url answers with a 2xx image response.
func (p *Prober) Reachable(ctx context.Context, url string) bool {
	if url == "" {
		return false
	}

	resp, err := p.http.R().SetContext(ctx).Head(url)
	if err == nil && resp.StatusCode() == http.StatusMethodNotAllowed {
		resp, err = p.http.R().SetContext(ctx).SetHeader("Range", "bytes=0-0").Get(url)
	}
	if err != nil {
		p.logger.Debug("image probe failed", zap.String("url", url), zap.Error(err))
		return false
	}
	if !resp.IsSuccess() {
		p.logger.Debug("image probe status", zap.String("url", url), zap.Int("status", resp.StatusCode()))
		return false
	}

	contentType := resp.Header().Get("Content-Type")
	return contentType == "" || strings.HasPrefix(contentType, "image/")
}
