package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"decodedTx/internal/chain"
	"decodedTx/internal/model"
	"decodedTx/internal/present"
	"decodedTx/internal/storage"
)

// RunConfig holds runtime settings for a batch run.
type RunConfig struct {
	Input             string
	RunID             string
	BatchSize         uint64
	Concurrency       int
	StrictNetwork     bool
	WaitTimeout       time.Duration
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	ShowProgress      bool
}

// ReceiptFetcher loads receipt summaries for decoded transactions.
type ReceiptFetcher interface {
	Receipt(ctx context.Context, txHash common.Hash) (*model.ReceiptSummary, error)
}

// Runner decodes a list of requests and writes their views to storage.
type Runner struct {
	cfg        RunConfig
	decoder    present.Decoder
	chains     chain.Registry
	receipts   ReceiptFetcher
	storage    storage.Storage
	logger     *zap.Logger
	seen       map[string]struct{}
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies. receipts may be nil.
func NewRunner(cfg RunConfig, decoder present.Decoder, chains chain.Registry, receipts ReceiptFetcher, storageSink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Runner{
		cfg:        cfg,
		decoder:    decoder,
		chains:     chains,
		receipts:   receipts,
		storage:    storageSink,
		logger:     logger,
		seen:       make(map[string]struct{}),
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run processes requests in index order, resuming after the last checkpointed index.
func (r *Runner) Run(ctx context.Context, requests []model.TxRequest) error {
	if r.decoder == nil {
		return fmt.Errorf("decoder is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if len(requests) == 0 {
		r.logger.Info("nothing to decode")
		return nil
	}

	from := uint64(0)
	to := uint64(len(requests) - 1)

	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load()
		if err != nil {
			return err
		}
		if ok {
			if start, resumable := cp.ResumeFrom(r.cfg.Input); resumable {
				from = start
				r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessedIndex), zap.Uint64("from", from))
			} else {
				r.logger.Info("checkpoint belongs to another input, starting over", zap.String("checkpoint_input", cp.Input))
			}
		}
	}

	// pairs before the checkpoint are already stored
	for _, req := range requests[:min(from, uint64(len(requests)))] {
		r.seen[req.Key()] = struct{}{}
	}

	if from > to {
		r.logger.Info("nothing to decode", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	bar, err := r.newProgressBar(int64(to - from + 1))
	if err != nil {
		return err
	}

	var (
		held      bool
		heldIndex uint64
	)
	for _, indexRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("decode batch", zap.Uint64("from", indexRange.From), zap.Uint64("to", indexRange.To), zap.Uint64("size", indexRange.Len()))

		records, firstUnloaded, err := r.processRange(ctx, requests[indexRange.From:indexRange.To+1], bar)
		if err != nil {
			return fmt.Errorf("decode batch: %w", err)
		}
		if firstUnloaded >= 0 && !held {
			held = true
			heldIndex = indexRange.From + uint64(firstUnloaded)
			r.logger.Warn("checkpoint held before unloaded request", zap.Uint64("index", heldIndex))
		}

		if err := r.storage.PutViews(ctx, records); err != nil {
			return fmt.Errorf("store views: %w", err)
		}

		if r.checkpoint != nil && !(held && heldIndex == 0) {
			last := indexRange.To
			if held {
				last = heldIndex - 1
			}
			cp := Checkpoint{Input: r.cfg.Input, LastProcessedIndex: last, RunID: r.cfg.RunID}
			if err := r.checkpoint.Save(cp); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete", zap.Int("views", len(records)), zap.Uint64("from", indexRange.From), zap.Uint64("to", indexRange.To))
	}

	if bar != nil {
		if err := bar.Finish(); err != nil {
			return fmt.Errorf("finish progress bar: %w", err)
		}
	}

	return nil
}

func (r *Runner) newProgressBar(total int64) (*progressbar.ProgressBar, error) {
	if !r.cfg.ShowProgress {
		return nil, nil
	}
	bar := progressbar.NewOptions64(
		total,
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription("Decoding transactions..."),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	if err := bar.RenderBlank(); err != nil {
		return nil, fmt.Errorf("render progress bar: %w", err)
	}
	return bar, nil
}

// processRange decodes one chunk. It returns the records in input order and the offset of the first
// request still unloaded after its wait, or -1.
func (r *Runner) processRange(ctx context.Context, requests []model.TxRequest, bar *progressbar.ProgressBar) ([]model.ViewRecord, int, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.cfg.Concurrency)

	slots := make([]*model.ViewRecord, len(requests))
	for i, req := range requests {
		if r.skip(req) {
			r.advance(bar)
			continue
		}

		eg.Go(func() error {
			record, err := r.processOne(egCtx, req)
			if err != nil {
				return err
			}
			slots[i] = &record
			r.advance(bar)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, -1, err
	}

	firstUnloaded := -1
	records := make([]model.ViewRecord, 0, len(requests))
	for i, record := range slots {
		if record == nil {
			continue
		}
		if record.Phase == present.PhaseUnloaded.String() && firstUnloaded < 0 {
			firstUnloaded = i
		}
		records = append(records, *record)
	}
	return records, firstUnloaded, nil
}

func (r *Runner) processOne(ctx context.Context, req model.TxRequest) (model.ViewRecord, error) {
	builder := present.NewBuilder(ctx, r.decoder, present.WithChains(r.chains), present.WithLogger(r.logger))
	builder.Load(req.Network, req.TxHash)

	waitCtx := ctx
	if r.cfg.WaitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, r.cfg.WaitTimeout)
		defer cancel()
	}

	state, err := builder.Wait(waitCtx)
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		r.logger.Warn("decode still pending, recording unloaded view",
			zap.String("network", req.Network),
			zap.String("tx_hash", req.TxHash),
			zap.Duration("wait_timeout", r.cfg.WaitTimeout),
		)
	default:
		return model.ViewRecord{}, fmt.Errorf("wait %s: %w", req.Key(), err)
	}

	view, _ := builder.View()
	if state.IsLoaded() {
		view.Receipt = r.receipt(ctx, req)
	}

	return buildViewRecord(r.cfg.RunID, req, state, view, time.Now())
}

// receipt is best effort: enrichment failures are logged and leave the view without a receipt.
func (r *Runner) receipt(ctx context.Context, req model.TxRequest) *model.ReceiptSummary {
	if r.receipts == nil {
		return nil
	}
	hash, err := chain.ParseTxHash(req.TxHash)
	if err != nil {
		r.logger.Debug("skip receipt for non-hex tx hash", zap.String("tx_hash", req.TxHash), zap.Error(err))
		return nil
	}

	var summary *model.ReceiptSummary
	err = withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context, attempt int) error {
		var err error
		summary, err = r.receipts.Receipt(ctx, hash)
		if err != nil {
			r.logger.Warn("receipt fetch failed", zap.Error(err), zap.String("tx_hash", req.TxHash), zap.Int("attempt", attempt))
		}
		return err
	})
	if err != nil {
		return nil
	}
	return summary
}

// skip reports requests already seen in this run and, in strict mode, requests for unknown networks.
func (r *Runner) skip(req model.TxRequest) bool {
	if _, ok := r.seen[req.Key()]; ok {
		r.logger.Debug("skip duplicate request", zap.String("network", req.Network), zap.String("tx_hash", req.TxHash))
		return true
	}
	r.seen[req.Key()] = struct{}{}

	if r.cfg.StrictNetwork {
		if r.chains == nil {
			return false
		}
		if _, ok := r.chains.Lookup(req.Network); !ok {
			r.logger.Warn("skip request for unknown network", zap.String("network", req.Network), zap.String("tx_hash", req.TxHash))
			return true
		}
	}
	return false
}

func (r *Runner) advance(bar *progressbar.ProgressBar) {
	if bar == nil {
		return
	}
	if err := bar.Add(1); err != nil {
		r.logger.Warn("update progress bar failed", zap.Error(err))
	}
}
