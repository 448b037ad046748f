package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/attribution-engine/engine"
)

func TestValidateConfig(t *testing.T) {
	if err := engine.ValidateConfig(engine.DefaultConfig()); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	cfg := engine.DefaultConfig()
	cfg.DailyThresholdHours = h(-1)
	if !errors.Is(engine.ValidateConfig(cfg), engine.ErrNegativeThreshold) {
		t.Fatal("expected ErrNegativeThreshold")
	}

	cfg = engine.DefaultConfig()
	cfg.OvertimeMultiplier = h(0.5)
	if !errors.Is(engine.ValidateConfig(cfg), engine.ErrInvalidMultiplier) {
		t.Fatal("expected ErrInvalidMultiplier")
	}

	cfg = engine.DefaultConfig()
	cfg.OvertimeBasis = "hourly"
	if !errors.Is(engine.ValidateConfig(cfg), engine.ErrUnknownBasis) {
		t.Fatal("expected ErrUnknownBasis")
	}
}

func TestValidateRange(t *testing.T) {
	ok := engine.DateRange{Start: dk(2025, time.January, 1), End: dk(2025, time.January, 31)}
	if err := engine.ValidateRange(ok); err != nil {
		t.Fatal(err)
	}

	inverted := engine.DateRange{Start: ok.End, End: ok.Start}
	if !errors.Is(engine.ValidateRange(inverted), engine.ErrInvalidRange) {
		t.Fatal("expected ErrInvalidRange")
	}
}
