package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"decodedTx/internal/model"
)

// Store provides Postgres persistence for decoded transaction views.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const upsertView = `
	INSERT INTO decoded_transactions (
		network, tx_hash, run_id, phase, event_count, view, receipt_status, block_number,
		decoded_at, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
	ON CONFLICT (network, tx_hash)
	DO UPDATE SET
		run_id = EXCLUDED.run_id,
		phase = EXCLUDED.phase,
		event_count = EXCLUDED.event_count,
		view = EXCLUDED.view,
		receipt_status = COALESCE(EXCLUDED.receipt_status, decoded_transactions.receipt_status),
		block_number = COALESCE(EXCLUDED.block_number, decoded_transactions.block_number),
		decoded_at = EXCLUDED.decoded_at,
		updated_at = now()
	WHERE decoded_transactions.phase = 'unloaded' OR EXCLUDED.phase <> 'unloaded'
`

// PutViews inserts or updates one row per (network, tx_hash). An unloaded view never replaces a
// loaded row.
func (s *Store) PutViews(ctx context.Context, records []model.ViewRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := buildBatch(records, time.Now().UTC())
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert view: %w", err)
		}
	}
	return nil
}

// buildBatch queues one upsert per record. now stands in for unparsable decode times.
func buildBatch(records []model.ViewRecord, now time.Time) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, r := range records {
		decodedAt, err := time.Parse(time.RFC3339Nano, r.DecodedAt)
		if err != nil {
			decodedAt = now
		}

		var status, blockNumber *int64
		if r.Receipt != nil {
			st := int64(r.Receipt.Status)
			bn := int64(r.Receipt.BlockNumber)
			status, blockNumber = &st, &bn
		}

		batch.Queue(upsertView,
			r.Network,
			r.TxHash,
			r.RunID,
			r.Phase,
			r.EventCount,
			[]byte(r.View),
			status,
			blockNumber,
			decodedAt,
		)
	}
	return batch
}
