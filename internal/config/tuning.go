package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/touchbridge/internal/bridge"
	"github.com/banshee-data/touchbridge/internal/fsutil"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the bridge tuning parameters as loaded from
// JSON. The schema matches the /api/config endpoint so the same JSON can
// be used for both startup configuration and runtime updates. Fields
// omitted from the JSON retain their defaults, so partial configs are
// safe.
type TuningConfig struct {
	TargetLatencyMs         *float64 `json:"target_latency_ms,omitempty"`
	EnablePrediction        *bool    `json:"enable_prediction,omitempty"`
	PredictionLookaheadMs   *float64 `json:"prediction_lookahead_ms,omitempty"`
	MinPredictionConfidence *float64 `json:"min_prediction_confidence,omitempty"`
	EnableMomentum          *bool    `json:"enable_momentum,omitempty"`
	MomentumFriction        *float64 `json:"momentum_friction,omitempty"`
	MaxTouchHistory         *int     `json:"max_touch_history,omitempty"`
	SmoothingFactor         *float64 `json:"smoothing_factor,omitempty"`
	EnableHaptics           *bool    `json:"enable_haptics,omitempty"`
	DebounceUpdates         *bool    `json:"debounce_updates,omitempty"`
	DebounceIntervalMs      *float64 `json:"debounce_interval_ms,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file on the OS
// filesystem. The file must have a .json extension and stay under the
// max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	return LoadTuningConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadTuningConfigFS is LoadTuningConfig against an arbitrary
// filesystem.
func LoadTuningConfigFS(fsys fsutil.FileSystem, path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.MinPredictionConfidence != nil {
		if *c.MinPredictionConfidence < 0 || *c.MinPredictionConfidence > 1 {
			return fmt.Errorf("min_prediction_confidence must be between 0 and 1, got %f", *c.MinPredictionConfidence)
		}
	}
	if c.SmoothingFactor != nil {
		if *c.SmoothingFactor <= 0 || *c.SmoothingFactor > 1 {
			return fmt.Errorf("smoothing_factor must be in (0, 1], got %f", *c.SmoothingFactor)
		}
	}
	if c.MomentumFriction != nil {
		if *c.MomentumFriction <= 0 || *c.MomentumFriction >= 1 {
			return fmt.Errorf("momentum_friction must be in (0, 1), got %f", *c.MomentumFriction)
		}
	}
	if c.MaxTouchHistory != nil {
		if *c.MaxTouchHistory < 1 {
			return fmt.Errorf("max_touch_history must be positive, got %d", *c.MaxTouchHistory)
		}
	}
	if c.PredictionLookaheadMs != nil {
		if *c.PredictionLookaheadMs < 0 {
			return fmt.Errorf("prediction_lookahead_ms must be non-negative, got %f", *c.PredictionLookaheadMs)
		}
	}
	if c.DebounceIntervalMs != nil {
		if *c.DebounceIntervalMs < 0 {
			return fmt.Errorf("debounce_interval_ms must be non-negative, got %f", *c.DebounceIntervalMs)
		}
	}
	return nil
}

// Options materializes the config into bridge options, applying defaults
// for any unset fields.
func (c *TuningConfig) Options() bridge.Options {
	return c.Overlay(bridge.DefaultOptions())
}

// Overlay applies the set fields of the config over base and returns the
// result. Unset fields keep their base values, so partial runtime
// updates leave the rest of the tuning untouched.
func (c *TuningConfig) Overlay(opts bridge.Options) bridge.Options {
	if c.TargetLatencyMs != nil {
		opts.TargetLatencyMs = *c.TargetLatencyMs
	}
	if c.EnablePrediction != nil {
		opts.EnablePrediction = *c.EnablePrediction
	}
	if c.PredictionLookaheadMs != nil {
		opts.PredictionLookaheadMs = *c.PredictionLookaheadMs
	}
	if c.MinPredictionConfidence != nil {
		opts.MinPredictionConfidence = *c.MinPredictionConfidence
	}
	if c.EnableMomentum != nil {
		opts.EnableMomentum = *c.EnableMomentum
	}
	if c.MomentumFriction != nil {
		opts.MomentumFriction = *c.MomentumFriction
	}
	if c.MaxTouchHistory != nil {
		opts.MaxTouchHistory = *c.MaxTouchHistory
	}
	if c.SmoothingFactor != nil {
		opts.SmoothingFactor = *c.SmoothingFactor
	}
	if c.EnableHaptics != nil {
		opts.EnableHaptics = *c.EnableHaptics
	}
	if c.DebounceUpdates != nil {
		opts.DebounceUpdates = *c.DebounceUpdates
	}
	if c.DebounceIntervalMs != nil {
		opts.DebounceIntervalMs = *c.DebounceIntervalMs
	}
	return opts
}

// FromOptions builds a fully specified TuningConfig from bridge options,
// for serving the effective configuration over the API.
func FromOptions(opts bridge.Options) *TuningConfig {
	return &TuningConfig{
		TargetLatencyMs:         &opts.TargetLatencyMs,
		EnablePrediction:        &opts.EnablePrediction,
		PredictionLookaheadMs:   &opts.PredictionLookaheadMs,
		MinPredictionConfidence: &opts.MinPredictionConfidence,
		EnableMomentum:          &opts.EnableMomentum,
		MomentumFriction:        &opts.MomentumFriction,
		MaxTouchHistory:         &opts.MaxTouchHistory,
		SmoothingFactor:         &opts.SmoothingFactor,
		EnableHaptics:           &opts.EnableHaptics,
		DebounceUpdates:         &opts.DebounceUpdates,
		DebounceIntervalMs:      &opts.DebounceIntervalMs,
	}
}
