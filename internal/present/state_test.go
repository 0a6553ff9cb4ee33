package present

import (
	"testing"

	"decodedTx/internal/model"
)

func TestLoadStatePhases(t *testing.T) {
	var zero LoadState
	if zero.IsLoaded() || zero.Phase() != PhaseUnloaded {
		t.Fatalf("zero value must be unloaded")
	}
	if _, ok := Unloaded().Result(); ok {
		t.Fatalf("unloaded must not expose a result")
	}

	empty := Loaded(nil)
	result, ok := empty.Result()
	if !ok || result == nil || len(result) != 0 {
		t.Fatalf("loaded(nil) must be an empty loaded result")
	}
	if empty.Phase() != PhaseEmpty || empty.Phase().String() != "empty" {
		t.Fatalf("phase mismatch: %s", empty.Phase())
	}

	populated := Loaded(model.DecodeResult{{Name: "swap1"}})
	if populated.Phase() != PhasePopulated || populated.Phase().String() != "populated" {
		t.Fatalf("phase mismatch: %s", populated.Phase())
	}
}

func TestLoadedCopiesResult(t *testing.T) {
	src := model.DecodeResult{{Name: "swap1"}}
	state := Loaded(src)
	src[0].Name = "mutated"

	result, _ := state.Result()
	if result[0].Name != "swap1" {
		t.Fatalf("state shares memory with its input")
	}
}
