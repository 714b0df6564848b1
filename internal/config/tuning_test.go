package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/touchbridge/internal/bridge"
	"github.com/banshee-data/touchbridge/internal/fsutil"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTuningConfig_Partial(t *testing.T) {
	path := writeConfig(t, `{"smoothing_factor": 0.5, "enable_momentum": false}`)

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig: %v", err)
	}

	opts := cfg.Options()
	if opts.SmoothingFactor != 0.5 {
		t.Errorf("SmoothingFactor = %v, want 0.5", opts.SmoothingFactor)
	}
	if opts.EnableMomentum {
		t.Error("EnableMomentum should be false")
	}
	// Omitted fields keep their defaults.
	if opts.MaxTouchHistory != 10 {
		t.Errorf("MaxTouchHistory = %d, want default 10", opts.MaxTouchHistory)
	}
	if opts.MinPredictionConfidence != 0.7 {
		t.Errorf("MinPredictionConfidence = %v, want default 0.7", opts.MinPredictionConfidence)
	}
}

func TestLoadTuningConfig_Errors(t *testing.T) {
	t.Run("wrong extension", func(t *testing.T) {
		if _, err := LoadTuningConfig("tuning.yaml"); err == nil {
			t.Error("expected error for non-json extension")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadTuningConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeConfig(t, `{"smoothing_factor": `)
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})
}

func TestTuningConfig_Validate(t *testing.T) {
	bad := []string{
		`{"min_prediction_confidence": 1.5}`,
		`{"min_prediction_confidence": -0.1}`,
		`{"smoothing_factor": 0}`,
		`{"smoothing_factor": 1.5}`,
		`{"momentum_friction": 1.0}`,
		`{"momentum_friction": 0}`,
		`{"max_touch_history": 0}`,
		`{"prediction_lookahead_ms": -1}`,
		`{"debounce_interval_ms": -1}`,
	}
	for _, contents := range bad {
		path := writeConfig(t, contents)
		if _, err := LoadTuningConfig(path); err == nil {
			t.Errorf("expected validation error for %s", contents)
		}
	}
}

func TestEmptyTuningConfig_DefaultsMatchBridge(t *testing.T) {
	opts := EmptyTuningConfig().Options()
	if opts != bridge.DefaultOptions() {
		t.Errorf("empty config options = %+v, want bridge defaults", opts)
	}
}

func TestLoadTuningConfigFS_MemoryFilesystem(t *testing.T) {
	memfs := fsutil.NewMemoryFileSystem()
	if err := memfs.WriteFile("etc/tuning.json", []byte(`{"max_touch_history": 5}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadTuningConfigFS(memfs, "etc/tuning.json")
	if err != nil {
		t.Fatalf("LoadTuningConfigFS: %v", err)
	}
	if got := cfg.Options().MaxTouchHistory; got != 5 {
		t.Errorf("MaxTouchHistory = %d, want 5", got)
	}

	if _, err := LoadTuningConfigFS(memfs, "etc/absent.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOverlay_PreservesBase(t *testing.T) {
	base := bridge.DefaultOptions()
	base.SmoothingFactor = 0.9
	base.EnableHaptics = true

	friction := 0.8
	got := (&TuningConfig{MomentumFriction: &friction}).Overlay(base)

	if got.MomentumFriction != 0.8 {
		t.Errorf("MomentumFriction = %v, want 0.8", got.MomentumFriction)
	}
	if got.SmoothingFactor != 0.9 {
		t.Errorf("SmoothingFactor = %v, want base 0.9", got.SmoothingFactor)
	}
	if !got.EnableHaptics {
		t.Error("EnableHaptics should keep base value true")
	}
}

func TestFromOptions_RoundTrip(t *testing.T) {
	opts := bridge.DefaultOptions()
	opts.SmoothingFactor = 0.42
	opts.EnableHaptics = true

	got := FromOptions(opts).Options()
	if got != opts {
		t.Errorf("round trip = %+v, want %+v", got, opts)
	}
}
