package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/lsequity/internal/contracts"
)

func fullTable(date time.Time) (*contracts.Universe, *contracts.FactorTable) {
	u := &contracts.Universe{Date: date, Securities: []string{"A", "B", "C", "D"}}
	table := &contracts.FactorTable{Date: date, Factors: []string{"f1", "f2"}}
	for i, sec := range u.Securities {
		table.Records = append(table.Records, contracts.FactorRecord{
			Security: sec,
			Values: map[string]*float64{
				"f1": contracts.Float(float64(i)),
				"f2": contracts.Float(float64(i * 2)),
			},
		})
	}
	return u, table
}

func TestQualityGate_Check_FullCoverage(t *testing.T) {
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	u, table := fullTable(date)

	snapshot := NewQualityGate(DefaultConfig()).Check(u, table, []string{"f1", "f2"})

	require.NotNil(t, snapshot)
	assert.Equal(t, date, snapshot.Date)
	assert.Equal(t, 4, snapshot.UniverseSize)
	assert.Equal(t, 4, snapshot.Matched)
	assert.Equal(t, 4, snapshot.Scorable)
	assert.Equal(t, 1.0, snapshot.Coverage["f1"])
	assert.InDelta(t, 1.0, snapshot.QualityScore, 1e-12)
	assert.True(t, snapshot.Passed)
	assert.Empty(t, snapshot.Warnings)
}

func TestQualityGate_Check_PartialCoverage(t *testing.T) {
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	u, table := fullTable(date)
	u.Securities = append(u.Securities, "E") // 팩터 테이블에 없음
	table.Records[0].Values["f2"] = nil
	table.Records[1].Values = map[string]*float64{}

	snapshot := NewQualityGate(DefaultConfig()).Check(u, table, []string{"f1", "f2", "f3"})

	assert.Equal(t, 5, snapshot.UniverseSize)
	assert.Equal(t, 4, snapshot.Matched)
	assert.Equal(t, 3, snapshot.Scorable)
	assert.InDelta(t, 0.6, snapshot.Coverage["f1"], 1e-12)
	assert.InDelta(t, 0.4, snapshot.Coverage["f2"], 1e-12)
	assert.Equal(t, []string{"f3"}, snapshot.MissingFactors)
	assert.False(t, snapshot.Passed)
	assert.NotEmpty(t, snapshot.Warnings)
	assert.Less(t, snapshot.QualityScore, 1.0)
}

func TestQualityGate_Check_Empty(t *testing.T) {
	snapshot := NewQualityGate(DefaultConfig()).Check(nil, nil, []string{"f1"})

	assert.Equal(t, 0, snapshot.UniverseSize)
	assert.Equal(t, 0.0, snapshot.QualityScore)
	assert.False(t, snapshot.Passed)
}
