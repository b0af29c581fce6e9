package impel_test

import (
	"testing"

	"github.com/impel-physics/impel"
)

func TestCombineRules(t *testing.T) {
	cases := []struct {
		rule impel.CombineRule
		a, b float64
		want float64
	}{
		{impel.CombineMin, 0.2, 0.8, 0.2},
		{impel.CombineMax, 0.2, 0.8, 0.8},
		{impel.CombineAverage, 0.2, 0.8, 0.5},
		{impel.CombineMultiply, 0.25, 1, 0.5},
	}
	for _, c := range cases {
		if got := c.rule.Combine(c.a, c.b); got != c.want {
			t.Errorf("%v.Combine(%v, %v) = %v, want %v", c.rule, c.a, c.b, got, c.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := impel.DefaultConfig()
	if cfg.VelocityIterations != 8 || cfg.PositionIterations != 3 {
		t.Errorf("iterations = %d/%d, want 8/3", cfg.VelocityIterations, cfg.PositionIterations)
	}
	if cfg.Baumgarte <= 0 || cfg.Baumgarte > 1 {
		t.Errorf("baumgarte = %v", cfg.Baumgarte)
	}
	if cfg.LinearSlop <= 0 {
		t.Errorf("slop = %v", cfg.LinearSlop)
	}
	if cfg.RestitutionRule != impel.CombineMin || cfg.FrictionRule != impel.CombineMultiply {
		t.Error("unexpected default combine rules")
	}
}
