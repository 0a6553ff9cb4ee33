package batch

import (
	"encoding/json"
	"fmt"
	"time"

	"decodedTx/internal/model"
	"decodedTx/internal/present"
)

func buildViewRecord(runID string, req model.TxRequest, state present.LoadState, view present.View, decodedAt time.Time) (model.ViewRecord, error) {
	if !state.IsLoaded() {
		view = present.View{Network: req.Network, TxHash: req.TxHash, Events: []present.EventView{}}
	}

	data, err := json.Marshal(view)
	if err != nil {
		return model.ViewRecord{}, fmt.Errorf("marshal view: %w", err)
	}

	return model.ViewRecord{
		RunID:      runID,
		Network:    req.Network,
		TxHash:     req.TxHash,
		Phase:      state.Phase().String(),
		EventCount: len(view.Events),
		View:       data,
		Receipt:    view.Receipt,
		DecodedAt:  decodedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}
