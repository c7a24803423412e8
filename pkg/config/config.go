// Package config centralizes the tunables shared by the pqtrain,
// pqencode, pqbuild and pqsearch commands.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// PQConfig describes the shape of the product quantizer.
type PQConfig struct {
	M  int
	Ks int
}

// TrainConfig mirrors internal/quantization.TrainConfig, kept here so the
// CLI layer doesn't need to import the internal package for flag wiring.
type TrainConfig struct {
	NumIterations      int
	ConvergenceEpsilon float32
	NumRestarts        int
	RandomSeed         int64
	Verbose            bool
}

// TableConfig controls how the hash-table layer is partitioned. T of -1
// means auto-select via pqtable.OptimalT.
type TableConfig struct {
	T int
}

// HashConfig tunes the sparse hash table's posting-list growth policy.
// Must be applied (via pqhash.SetGrowthPolicy) before any table is built.
type HashConfig struct {
	ResizeFactor float64
	ResizeAdd    float64
}

// IOConfig names the on-disk locations the CLI commands read from and
// write to.
type IOConfig struct {
	DataDir string
}

// Config aggregates every sub-config used across the pipeline.
type Config struct {
	PQ    PQConfig
	Train TrainConfig
	Table TableConfig
	Hash  HashConfig
	IO    IOConfig
}

// Default returns the configuration used when no flags or environment
// variables override it.
func Default() *Config {
	return &Config{
		PQ: PQConfig{
			M:  4,
			Ks: 256,
		},
		Train: TrainConfig{
			NumIterations:      1000,
			ConvergenceEpsilon: 1,
			NumRestarts:        3,
			RandomSeed:         1,
			Verbose:            false,
		},
		Table: TableConfig{
			T: -1,
		},
		Hash: HashConfig{
			ResizeFactor: 1.1,
			ResizeAdd:    2,
		},
		IO: IOConfig{
			DataDir: "./data",
		},
	}
}

// LoadFromEnv overlays PQTABLE_* environment variables onto a Default
// configuration.
func LoadFromEnv() (*Config, error) {
	cfg := Default()

	if v := os.Getenv("PQTABLE_M"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: PQTABLE_M: %w", err)
		}
		cfg.PQ.M = n
	}
	if v := os.Getenv("PQTABLE_KS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: PQTABLE_KS: %w", err)
		}
		cfg.PQ.Ks = n
	}
	if v := os.Getenv("PQTABLE_T"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: PQTABLE_T: %w", err)
		}
		cfg.Table.T = n
	}
	if v := os.Getenv("PQTABLE_DATA_DIR"); v != "" {
		cfg.IO.DataDir = v
	}
	if v := os.Getenv("PQTABLE_RESIZE_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config: PQTABLE_RESIZE_FACTOR: %w", err)
		}
		cfg.Hash.ResizeFactor = f
	}
	if v := os.Getenv("PQTABLE_RESIZE_ADD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config: PQTABLE_RESIZE_ADD: %w", err)
		}
		cfg.Hash.ResizeAdd = f
	}
	if v := os.Getenv("PQTABLE_RANDOM_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: PQTABLE_RANDOM_SEED: %w", err)
		}
		cfg.Train.RandomSeed = n
	}
	if v := os.Getenv("PQTABLE_NUM_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: PQTABLE_NUM_ITERATIONS: %w", err)
		}
		cfg.Train.NumIterations = n
	}

	return cfg, nil
}

// Validate checks the shape invariants that are knowable before any
// training data arrives.
func (c *Config) Validate() error {
	if c.PQ.Ks <= 1 {
		return fmt.Errorf("config: Ks must be > 1, got %d", c.PQ.Ks)
	}
	switch c.PQ.M {
	case 1, 2, 4, 8, 16:
	default:
		return fmt.Errorf("config: M must be one of 1, 2, 4, 8, 16, got %d", c.PQ.M)
	}
	if c.Table.T != -1 {
		switch c.Table.T {
		case 1, 2, 4, 8:
		default:
			return fmt.Errorf("config: T must be -1 (auto), 1, 2, 4 or 8, got %d", c.Table.T)
		}
		if c.Table.T > 1 && c.PQ.M%c.Table.T != 0 {
			return fmt.Errorf("config: M=%d is not divisible by T=%d", c.PQ.M, c.Table.T)
		}
	}
	if c.Train.NumIterations <= 0 {
		return fmt.Errorf("config: NumIterations must be > 0, got %d", c.Train.NumIterations)
	}
	if c.Train.NumRestarts <= 0 {
		return fmt.Errorf("config: NumRestarts must be > 0, got %d", c.Train.NumRestarts)
	}
	if c.Hash.ResizeFactor < 1 {
		return fmt.Errorf("config: ResizeFactor must be >= 1, got %f", c.Hash.ResizeFactor)
	}
	if c.Hash.ResizeAdd < 0 {
		return fmt.Errorf("config: ResizeAdd must be >= 0, got %f", c.Hash.ResizeAdd)
	}
	if c.IO.DataDir == "" {
		return fmt.Errorf("config: DataDir must not be empty")
	}
	return nil
}
