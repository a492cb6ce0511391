package strategyconfig

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"
)

const validYAML = `
meta:
  strategy_id: test_strategy
  version: "0.1.0"
  timezone: America/New_York
factors:
  - name: f1
    weight: 0.5
  - name: f2
    weight: -0.5
winsorize:
  min_percentile: 0.2
  max_percentile: 0.8
portfolio:
  total_positions: 4
risk:
  neutralize: false
`

func TestLoadBundledStrategies(t *testing.T) {
	tests := []struct {
		path      string
		id        string
		positions int
		factors   int
		lo, hi    float64
	}{
		{"../../config/strategy/long_short_value.yaml", "long_short_value", 1000, 6, 0.20, 0.80},
		{"../../config/strategy/long_short_size.yaml", "long_short_size", 300, 6, 0.10, 0.90},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if _, err := os.Stat(tt.path); os.IsNotExist(err) {
				t.Skip("config file not found")
			}

			cfg, yamlData, err := Load(tt.path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			if cfg.Meta.StrategyID != tt.id {
				t.Errorf("expected strategy_id=%s, got %s", tt.id, cfg.Meta.StrategyID)
			}
			if cfg.Portfolio.TotalPositions != tt.positions {
				t.Errorf("expected total_positions=%d, got %d", tt.positions, cfg.Portfolio.TotalPositions)
			}
			if len(cfg.Factors) != tt.factors {
				t.Errorf("expected %d factors, got %d", tt.factors, len(cfg.Factors))
			}
			if cfg.Winsorize.MinPercentile != tt.lo || cfg.Winsorize.MaxPercentile != tt.hi {
				t.Errorf("winsorize = %+v", cfg.Winsorize)
			}

			// ±2/T
			if want := 2.0 / float64(tt.positions); math.Abs(cfg.PositionBound()-want) > 1e-15 {
				t.Errorf("PositionBound() = %v, want %v", cfg.PositionBound(), want)
			}

			t.Logf("yaml size: %d bytes", len(yamlData))
		})
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// portfolio 기본값
	if cfg.Portfolio.MaxGrossExposure != 1.0 {
		t.Errorf("MaxGrossExposure default = %v, want 1.0", cfg.Portfolio.MaxGrossExposure)
	}
	if !cfg.Portfolio.DollarNeutral {
		t.Error("DollarNeutral should default to true")
	}
	if cfg.PositionBound() != 0.5 {
		t.Errorf("PositionBound() = %v, want 0.5", cfg.PositionBound())
	}

	// schedule 기본값
	if cfg.RebalanceSchedule() != DefaultRebalanceSchedule {
		t.Errorf("RebalanceSchedule() = %q", cfg.RebalanceSchedule())
	}
	if cfg.RecordSchedule() != DefaultRecordSchedule {
		t.Errorf("RecordSchedule() = %q", cfg.RecordSchedule())
	}

	loc, err := cfg.Location()
	if err != nil || loc.String() != "America/New_York" {
		t.Errorf("Location() = %v, %v", loc, err)
	}

	names := cfg.FactorNames()
	weights := cfg.Weights()
	if names[1] != "f2" || weights[1] != -0.5 {
		t.Errorf("FactorNames/Weights = %v / %v", names, weights)
	}
}

func TestParseUnknownField(t *testing.T) {
	data := strings.Replace(validYAML, "neutralize: false", "neutralize: false\n  sector_cap: 0.1", 1)

	if _, err := Parse([]byte(data)); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"bad timezone", func(c *Config) { c.Meta.Timezone = "Mars/Olympus" }, "meta.timezone"},
		{"bad rebalance cron", func(c *Config) { c.Meta.Schedule.Rebalance = "every monday" }, "meta.schedule.rebalance"},
		{"no factors", func(c *Config) { c.Factors = nil }, "factors"},
		{"empty factor name", func(c *Config) { c.Factors[0].Name = "" }, "factors[0].name"},
		{"duplicate factor", func(c *Config) { c.Factors[1].Name = "f1" }, "factors[1].name"},
		{"nan weight", func(c *Config) { c.Factors[0].Weight = math.NaN() }, "factors[0].weight"},
		{"inverted percentiles", func(c *Config) { c.Winsorize.MinPercentile = 0.9 }, "winsorize"},
		{"percentile above one", func(c *Config) { c.Winsorize.MaxPercentile = 1.1 }, "winsorize"},
		{"odd positions", func(c *Config) { c.Portfolio.TotalPositions = 5 }, "portfolio.total_positions"},
		{"zero positions", func(c *Config) { c.Portfolio.TotalPositions = 0 }, "portfolio.total_positions"},
		{"gross above one", func(c *Config) { c.Portfolio.MaxGrossExposure = 1.5 }, "portfolio.max_gross_exposure"},
		{"bound above gross", func(c *Config) { c.Portfolio.PositionBoundMultiplier = 10 }, "portfolio.position_bound_multiplier"},
		{"negative model version", func(c *Config) { c.Risk.ModelVersion = -1 }, "risk.model_version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(validYAML))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			tt.mutate(cfg)

			err = Validate(cfg)
			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q (%s)", ve.Field, tt.field, ve.Message)
			}
		})
	}
}

func TestValidateNegativeWeightAllowed(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cfg.Factors[0].Weight = -3

	if err := Validate(cfg); err != nil {
		t.Errorf("negative weights must be accepted: %v", err)
	}
}

func TestWarn(t *testing.T) {
	cfg, _ := Parse([]byte(validYAML))
	if w := Warn(cfg); len(w) != 0 {
		t.Errorf("expected no warnings, got %+v", w)
	}

	cfg.Factors[0].Weight = 0
	cfg.Winsorize = Winsorize{MinPercentile: 0, MaxPercentile: 1}
	cfg.Portfolio.DollarNeutral = false

	codes := map[string]bool{}
	for _, w := range Warn(cfg) {
		codes[w.Code] = true
	}
	for _, code := range []string{"ZERO_WEIGHT", "NO_WINSORIZE", "NOT_DOLLAR_NEUTRAL"} {
		if !codes[code] {
			t.Errorf("missing warning %s", code)
		}
	}
}

func TestHash(t *testing.T) {
	cfg, _ := Parse([]byte(validYAML))

	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}

	// 동일 설정 → 동일 해시
	hash2, _ := Hash(cfg)
	if hash != hash2 {
		t.Error("hash not deterministic")
	}

	cfg.Factors[0].Weight = 0.6
	hash3, _ := Hash(cfg)
	if hash == hash3 {
		t.Error("hash should change with weights")
	}
}
