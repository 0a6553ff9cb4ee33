package present

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"decodedTx/internal/chain"
	"decodedTx/internal/model"
)

// ErrNoRequest is returned by Wait before the first Load.
var ErrNoRequest = errors.New("present: no request loaded")

// Decoder yields the decoded events of a transaction. It never fails: failures arrive as empty results.
type Decoder interface {
	Decode(ctx context.Context, network, txHash string) model.DecodeResult
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the builder logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithChains sets the registry used to theme views.
func WithChains(chains chain.Registry) Option {
	return func(b *Builder) {
		b.chains = chains
	}
}

// WithOnChange registers a hook called after committed state transitions. Calls are delivered one at a
// time and only for the current request; a notification superseded by a newer Load is dropped. The hook
// must not call Load.
func WithOnChange(fn func(model.TxRequest, LoadState)) Option {
	return func(b *Builder) {
		b.onChange = fn
	}
}

// cycle is the lifetime of one (network, tx_hash) request.
type cycle struct {
	token uint64
	req   model.TxRequest
	state LoadState
	done  chan struct{}

	// guarded by Builder.hookMu
	notifiedUnloaded bool
	notifiedLoaded   bool
}

// Builder owns the load lifecycle of one decoded transaction at a time.
// Only the result of the most recent request is ever committed.
type Builder struct {
	ctx      context.Context
	decoder  Decoder
	chains   chain.Registry
	logger   *zap.Logger
	onChange func(model.TxRequest, LoadState)

	mu    sync.Mutex
	token uint64
	cur   *cycle

	hookMu sync.Mutex
}

// NewBuilder creates a Builder. ctx bounds every decode the builder starts.
func NewBuilder(ctx context.Context, decoder Decoder, opts ...Option) *Builder {
	b := &Builder{
		ctx:     ctx,
		decoder: decoder,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load switches the builder to (network, txHash) and starts its decode without blocking.
// Loading the pair that is already current does nothing.
func (b *Builder) Load(network, txHash string) {
	req := model.TxRequest{Network: network, TxHash: txHash}

	b.mu.Lock()
	if b.cur != nil && b.cur.req == req {
		b.mu.Unlock()
		return
	}

	b.token++
	next := &cycle{
		token: b.token,
		req:   req,
		state: Unloaded(),
		done:  make(chan struct{}),
	}
	prev := b.cur
	b.cur = next
	if prev != nil && !prev.state.IsLoaded() {
		// wake waiters of the superseded cycle so they move on to the new one
		close(prev.done)
	}
	b.mu.Unlock()

	b.logger.Debug("decode start",
		zap.String("network", network),
		zap.String("tx_hash", txHash),
		zap.Uint64("token", next.token),
	)
	b.notify(next.token)

	go b.run(next.token, req)
}

func (b *Builder) run(token uint64, req model.TxRequest) {
	result := b.decoder.Decode(b.ctx, req.Network, req.TxHash)
	state := Loaded(result)

	b.mu.Lock()
	if b.cur == nil || b.cur.token != token {
		b.mu.Unlock()
		b.logger.Debug("discard stale decode result",
			zap.String("network", req.Network),
			zap.String("tx_hash", req.TxHash),
			zap.Uint64("token", token),
		)
		return
	}
	b.cur.state = state
	close(b.cur.done)
	b.mu.Unlock()

	b.logger.Debug("decode loaded",
		zap.String("network", req.Network),
		zap.String("tx_hash", req.TxHash),
		zap.Int("events", len(result)),
	)
	b.notify(token)
}

// notify delivers the state of cycle token to the change hook if that cycle is still current.
// The state is read at delivery, so a cycle reports Unloaded then Loaded at most once each, in order.
func (b *Builder) notify(token uint64) {
	if b.onChange == nil {
		return
	}

	b.hookMu.Lock()
	defer b.hookMu.Unlock()

	b.mu.Lock()
	c := b.cur
	if c == nil || c.token != token {
		b.mu.Unlock()
		b.logger.Debug("drop stale change notification", zap.Uint64("token", token))
		return
	}
	state := c.state
	b.mu.Unlock()

	if state.IsLoaded() {
		if c.notifiedLoaded {
			return
		}
		c.notifiedLoaded = true
	} else {
		if c.notifiedUnloaded {
			return
		}
		c.notifiedUnloaded = true
	}

	b.onChange(c.req, state)
}

// Request returns the current pair and whether one has been loaded.
func (b *Builder) Request() (model.TxRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cur == nil {
		return model.TxRequest{}, false
	}
	return b.cur.req, true
}

// State returns the current load state.
func (b *Builder) State() LoadState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cur == nil {
		return Unloaded()
	}
	return b.cur.state
}

// Wait blocks until the current request is loaded. If the request is superseded while waiting,
// Wait follows the newer one.
func (b *Builder) Wait(ctx context.Context) (LoadState, error) {
	for {
		b.mu.Lock()
		c := b.cur
		b.mu.Unlock()
		if c == nil {
			return Unloaded(), ErrNoRequest
		}

		select {
		case <-ctx.Done():
			return b.State(), ctx.Err()
		case <-c.done:
		}

		b.mu.Lock()
		if b.cur == c {
			state := c.state
			b.mu.Unlock()
			return state, nil
		}
		b.mu.Unlock()
	}
}

// View returns the projected view of the current request once it is loaded.
func (b *Builder) View() (View, bool) {
	b.mu.Lock()
	c := b.cur
	var state LoadState
	if c != nil {
		state = c.state
	}
	b.mu.Unlock()

	result, ok := state.Result()
	if !ok {
		return View{}, false
	}
	return BuildView(c.req.Network, c.req.TxHash, result, b.chainInfo(c.req.Network)), true
}

func (b *Builder) chainInfo(network string) *model.ChainDisplayInfo {
	if b.chains == nil {
		return nil
	}
	info, ok := b.chains.Lookup(network)
	if !ok {
		return nil
	}
	return &info
}
