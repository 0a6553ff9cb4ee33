package imgprobe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProberReachable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	})
	mux.HandleFunc("/no-head.svg", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusPartialContent)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := NewProber(time.Second, nil)
	ctx := context.Background()

	assert.True(t, p.Reachable(ctx, server.URL+"/ok.png"))
	assert.True(t, p.Reachable(ctx, server.URL+"/no-head.svg"))
	assert.False(t, p.Reachable(ctx, server.URL+"/missing.png"))
	assert.False(t, p.Reachable(ctx, server.URL+"/page"))
	assert.False(t, p.Reachable(ctx, ""))
}
