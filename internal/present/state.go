package present

import "decodedTx/internal/model"

// Phase is the display phase derived from a LoadState.
type Phase int

const (
	PhaseUnloaded Phase = iota
	PhaseEmpty
	PhasePopulated
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhasePopulated:
		return "populated"
	default:
		return "unloaded"
	}
}

// LoadState is either Unloaded or Loaded with a (possibly empty) decode result.
// The zero value is Unloaded.
type LoadState struct {
	loaded bool
	result model.DecodeResult
}

// Unloaded returns the state before a result has arrived.
func Unloaded() LoadState {
	return LoadState{}
}

// Loaded wraps a decode result. The result is copied so the state cannot be mutated through it.
func Loaded(result model.DecodeResult) LoadState {
	copied := make(model.DecodeResult, len(result))
	copy(copied, result)
	return LoadState{loaded: true, result: copied}
}

func (s LoadState) IsLoaded() bool {
	return s.loaded
}

// Result returns the decode result and whether the state is loaded.
func (s LoadState) Result() (model.DecodeResult, bool) {
	if !s.loaded {
		return nil, false
	}
	return s.result, true
}

func (s LoadState) Phase() Phase {
	switch {
	case !s.loaded:
		return PhaseUnloaded
	case len(s.result) == 0:
		return PhaseEmpty
	default:
		return PhasePopulated
	}
}
