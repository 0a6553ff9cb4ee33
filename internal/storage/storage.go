package storage

import (
	"context"

	"decodedTx/internal/model"
)

// Storage defines a sink for decoded transaction views.
type Storage interface {
	PutViews(ctx context.Context, records []model.ViewRecord) error
}

// Multi fans a batch out to several sinks in order.
type Multi []Storage

func (m Multi) PutViews(ctx context.Context, records []model.ViewRecord) error {
	for _, s := range m {
		if err := s.PutViews(ctx, records); err != nil {
			return err
		}
	}
	return nil
}
