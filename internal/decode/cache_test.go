package decode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decodedTx/internal/model"
)

type stubFetcher struct {
	calls  int
	result model.DecodeResult
	err    error
}

func (s *stubFetcher) Fetch(_ context.Context, _, _ string) (model.DecodeResult, error) {
	s.calls++
	return s.result, s.err
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.SetString(ctx, "k", "v", time.Minute))
	val, err := cache.GetString(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	require.NoError(t, cache.SetString(ctx, "short", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, err = cache.GetString(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = cache.GetString(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.SetString(ctx, "forever", "v", 0))
	val, err = cache.GetString(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestRedisAdapter(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisAdapter(db)
	ctx := context.Background()

	mock.ExpectSet("key1", "value1", time.Minute).SetVal("OK")
	assert.NoError(t, adapter.SetString(ctx, "key1", "value1", time.Minute))

	mock.ExpectGet("key1").SetVal("value1")
	val, err := adapter.GetString(ctx, "key1")
	assert.NoError(t, err)
	assert.Equal(t, "value1", val)

	mock.ExpectGet("missing").SetErr(redis.Nil)
	_, err = adapter.GetString(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	mock.ExpectGet("broken").SetErr(errors.New("connection reset"))
	_, err = adapter.GetString(ctx, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedDecoderServesHits(t *testing.T) {
	inner := &stubFetcher{result: model.DecodeResult{{Name: "swap1"}}}
	metrics := NewMetrics(nil)
	decoder := NewCachedDecoder(inner, NewMemoryCache(), time.Minute, nil, metrics)
	ctx := context.Background()

	first := decoder.Decode(ctx, "eth-mainnet", "0xabc")
	second := decoder.Decode(ctx, "eth-mainnet", "0xabc")

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "swap1", second[0].Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests().WithLabelValues(OutcomeCacheHit)))
}

func TestCachedDecoderDoesNotCacheFailures(t *testing.T) {
	inner := &stubFetcher{err: ErrStatus}
	cache := NewMemoryCache()
	decoder := NewCachedDecoder(inner, cache, time.Minute, nil, nil)
	ctx := context.Background()

	assert.Empty(t, decoder.Decode(ctx, "eth-mainnet", "0xabc"))
	assert.Empty(t, decoder.Decode(ctx, "eth-mainnet", "0xabc"))
	assert.Equal(t, 2, inner.calls)

	_, err := cache.GetString(ctx, CacheKey("eth-mainnet", "0xabc"))
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCachedDecoderWritesThroughRedis(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := &stubFetcher{result: model.DecodeResult{}}
	decoder := NewCachedDecoder(inner, NewRedisAdapter(db), time.Hour, nil, nil)

	key := CacheKey("eth-mainnet", "0xabc")
	mock.ExpectGet(key).SetErr(redis.Nil)
	mock.ExpectSet(key, "[]", time.Hour).SetVal("OK")

	result, err := decoder.Fetch(context.Background(), "eth-mainnet", "0xabc")
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
