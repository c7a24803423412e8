package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() should validate, got: %v", err)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PQTABLE_M", "8")
	t.Setenv("PQTABLE_KS", "16")
	t.Setenv("PQTABLE_T", "2")
	t.Setenv("PQTABLE_DATA_DIR", "/tmp/pqtable-data")
	t.Setenv("PQTABLE_RESIZE_FACTOR", "2.0")
	t.Setenv("PQTABLE_RESIZE_ADD", "8")
	t.Setenv("PQTABLE_RANDOM_SEED", "42")
	t.Setenv("PQTABLE_NUM_ITERATIONS", "50")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.PQ.M != 8 || cfg.PQ.Ks != 16 {
		t.Fatalf("PQ config not overridden: %+v", cfg.PQ)
	}
	if cfg.Table.T != 2 {
		t.Fatalf("Table.T not overridden: %d", cfg.Table.T)
	}
	if cfg.IO.DataDir != "/tmp/pqtable-data" {
		t.Fatalf("DataDir not overridden: %s", cfg.IO.DataDir)
	}
	if cfg.Hash.ResizeFactor != 2.0 || cfg.Hash.ResizeAdd != 8 {
		t.Fatalf("Hash config not overridden: %+v", cfg.Hash)
	}
	if cfg.Train.RandomSeed != 42 || cfg.Train.NumIterations != 50 {
		t.Fatalf("Train config not overridden: %+v", cfg.Train)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("overridden config should validate, got: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.PQ.Ks = 1 },
		func(c *Config) { c.PQ.M = 3 },
		func(c *Config) { c.Table.T = 3 },
		func(c *Config) { c.Table.T = 2; c.PQ.M = 1 },
		func(c *Config) { c.Train.NumIterations = 0 },
		func(c *Config) { c.Train.NumRestarts = 0 },
		func(c *Config) { c.Hash.ResizeFactor = 0.5 },
		func(c *Config) { c.Hash.ResizeAdd = -1 },
		func(c *Config) { c.IO.DataDir = "" },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error, got nil", i)
		}
	}
}
