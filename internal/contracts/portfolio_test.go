package contracts

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func sampleSelection() *RankedSelection {
	return &RankedSelection{
		StrategyID: "long_short_value",
		Date:       time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Longs: []ScoredSecurity{
			{Security: "A", Score: 2.0, Side: SideLong, Rank: 1},
			{Security: "B", Score: 1.0, Side: SideLong, Rank: 2},
		},
		Shorts: []ScoredSecurity{
			{Security: "D", Score: -2.0, Side: SideShort, Rank: 1},
			{Security: "C", Score: -1.0, Side: SideShort, Rank: 2},
		},
		Universe: 4,
		Eligible: 4,
	}
}

func TestRankedSelection_Alpha(t *testing.T) {
	sel := sampleSelection()

	alpha := sel.Alpha()
	want := map[string]float64{"A": 2.0, "B": 1.0, "C": -1.0, "D": -2.0}
	if len(alpha) != len(want) {
		t.Fatalf("Alpha() len = %d, want %d", len(alpha), len(want))
	}
	for k, v := range want {
		if alpha[k] != v {
			t.Errorf("Alpha()[%s] = %v, want %v", k, alpha[k], v)
		}
	}

	if sel.Count() != 4 || sel.IsEmpty() {
		t.Errorf("Count() = %d, IsEmpty() = %v", sel.Count(), sel.IsEmpty())
	}

	secs := sel.Securities()
	if secs[0] != "A" || secs[3] != "C" {
		t.Errorf("Securities() = %v, want longs first", secs)
	}
}

func TestRankedSelection_SideOf(t *testing.T) {
	sel := sampleSelection()

	if side, ok := sel.SideOf("B"); !ok || side != SideLong {
		t.Errorf("SideOf(B) = (%v, %v)", side, ok)
	}
	if side, ok := sel.SideOf("D"); !ok || side != SideShort {
		t.Errorf("SideOf(D) = (%v, %v)", side, ok)
	}
	if _, ok := sel.SideOf("Z"); ok {
		t.Error("SideOf(Z) should not be found")
	}
}

func TestRankedSelection_JSON(t *testing.T) {
	sel := sampleSelection()

	data, err := json.Marshal(sel)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded RankedSelection
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded.StrategyID != sel.StrategyID || len(decoded.Longs) != 2 || decoded.Shorts[0].Side != SideShort {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

func TestConstraintSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cs      ConstraintSet
		wantErr bool
	}{
		{
			name:    "valid",
			cs:      ConstraintSet{MaxGrossExposure: 1.0, DollarNeutral: true, PositionBounds: PositionBounds{Min: -0.002, Max: 0.002}},
			wantErr: false,
		},
		{
			name:    "gross above one",
			cs:      ConstraintSet{MaxGrossExposure: 1.5, PositionBounds: PositionBounds{Min: -0.1, Max: 0.1}},
			wantErr: true,
		},
		{
			name:    "zero gross",
			cs:      ConstraintSet{MaxGrossExposure: 0, PositionBounds: PositionBounds{Min: -0.1, Max: 0.1}},
			wantErr: true,
		},
		{
			name:    "long only bounds",
			cs:      ConstraintSet{MaxGrossExposure: 1.0, PositionBounds: PositionBounds{Min: 0, Max: 0.1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cs.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTargetWeights_Exposure(t *testing.T) {
	w := &TargetWeights{
		Weights: map[string]float64{"A": 0.25, "B": 0.25, "C": -0.25, "D": -0.25, "E": 0},
	}

	if w.Count() != 4 {
		t.Errorf("Count() = %d, want 4", w.Count())
	}
	if math.Abs(w.GrossExposure()-1.0) > 1e-12 {
		t.Errorf("GrossExposure() = %v, want 1.0", w.GrossExposure())
	}
	if math.Abs(w.NetExposure()) > 1e-12 {
		t.Errorf("NetExposure() = %v, want 0", w.NetExposure())
	}
}

func TestRoutingReport_HasRejections(t *testing.T) {
	if (&RoutingReport{Submitted: 4}).HasRejections() {
		t.Error("no rejections expected")
	}
	if !(&RoutingReport{Submitted: 3, Rejected: 1}).HasRejections() {
		t.Error("rejection expected")
	}
}
