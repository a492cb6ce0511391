package s0_data

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func TestReadFactorTable(t *testing.T) {
	input := `security,book_to_price,earnings_yield
# 주석은 무시
AAA, 0.5, 1.25
BBB,,NaN
CCC,null,-0.75
DDD,NA,None
`
	table, err := ReadFactorTable(strings.NewReader(input), testDate)
	require.NoError(t, err)

	assert.Equal(t, testDate, table.Date)
	assert.Equal(t, []string{"book_to_price", "earnings_yield"}, table.Factors)
	require.Equal(t, 4, table.Len())

	idx := table.Index()

	v, ok := idx["AAA"].Value("book_to_price")
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)

	_, ok = idx["BBB"].Value("book_to_price")
	assert.False(t, ok, "empty cell is undefined")
	_, ok = idx["BBB"].Value("earnings_yield")
	assert.False(t, ok, "NaN is undefined")

	v, ok = idx["CCC"].Value("earnings_yield")
	assert.True(t, ok)
	assert.Equal(t, -0.75, v)

	assert.Equal(t, 0, idx["DDD"].DefinedCount(table.Factors))
}

func TestReadFactorTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty file", "", "missing header"},
		{"wrong first column", "ticker,f1\nA,1\n", "first column"},
		{"duplicate security", "security,f1\nA,1\nA,2\n", "duplicate security A"},
		{"empty security", "security,f1\n,1\n", "empty security"},
		{"invalid number", "security,f1\nA,abc\n", `invalid number "abc"`},
		{"ragged row", "security,f1,f2\nA,1\n", "parse csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFactorTable(strings.NewReader(tt.input), testDate)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadRiskLoadings(t *testing.T) {
	input := "security,market,size\nAAA,1.1,0.2\nBBB,0.9,-0.4\n"

	loadings, err := ReadRiskLoadings(strings.NewReader(input), testDate, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, loadings.Version)
	assert.Equal(t, []string{"market", "size"}, loadings.Factors)
	assert.Equal(t, []float64{0.9, -0.4}, loadings.Exposures["BBB"])

	_, err = ReadRiskLoadings(strings.NewReader("security,market\nAAA,\n"), testDate, 1)
	assert.Error(t, err, "missing exposure is rejected")
}

func TestReadUniverse(t *testing.T) {
	input := "# 유니버스\nAAA\n\n BBB \nAAA\nCCC\n"

	securities, err := ReadUniverse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, securities)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSource(t *testing.T) {
	dir := t.TempDir()
	factors := writeFile(t, dir, "factors.csv", "security,f1,f2\nAAA,1,2\nBBB,3,\n")
	universe := writeFile(t, dir, "universe.txt", "AAA\nBBB\nZZZ\n")
	ctx := context.Background()

	t.Run("universe from factor file", func(t *testing.T) {
		src := NewCSVSource(factors, "")
		u, err := src.Universe(ctx, testDate)
		require.NoError(t, err)
		assert.Equal(t, []string{"AAA", "BBB"}, u.Securities)
		assert.Equal(t, testDate, u.Date)
	})

	t.Run("universe file", func(t *testing.T) {
		src := NewCSVSource(factors, universe)
		u, err := src.Universe(ctx, testDate)
		require.NoError(t, err)
		assert.Equal(t, []string{"AAA", "BBB", "ZZZ"}, u.Securities)
	})

	t.Run("factor table keeps requested factors", func(t *testing.T) {
		src := NewCSVSource(factors, "")
		table, err := src.FactorTable(ctx, testDate, []string{"f2", "f3"})
		require.NoError(t, err)
		assert.Equal(t, []string{"f2", "f3"}, table.Factors)

		idx := table.Index()
		_, ok := idx["AAA"].Value("f3")
		assert.False(t, ok)
		v, ok := idx["AAA"].Value("f2")
		assert.True(t, ok)
		assert.Equal(t, 2.0, v)
	})

	t.Run("missing file", func(t *testing.T) {
		src := NewCSVSource(filepath.Join(dir, "nope.csv"), "")
		_, err := src.FactorTable(ctx, testDate, []string{"f1"})
		assert.Error(t, err)
	})
}

func TestCSVRiskModel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "risk.csv", "security,market\nAAA,1.0\nBBB,0.5\nCCC,1.5\n")

	model := NewCSVRiskModel(path, 2)
	loadings, err := model.Loadings(context.Background(), testDate, []string{"AAA", "CCC", "DDD"})
	require.NoError(t, err)

	assert.Len(t, loadings.Exposures, 2)
	assert.Equal(t, []float64{1.5}, loadings.Exposures["CCC"])
	assert.NotContains(t, loadings.Exposures, "BBB")
	assert.Equal(t, 2, loadings.Version)
}

func TestBuildLoadings(t *testing.T) {
	raw := map[string]map[string]float64{
		"AAA": {"size": 0.3, "market": 1.2},
		"BBB": {"market": 0.8},
	}
	factorSet := map[string]struct{}{"size": {}, "market": {}}

	loadings := buildLoadings(testDate, 4, raw, factorSet)

	assert.Equal(t, []string{"market", "size"}, loadings.Factors)
	assert.Equal(t, []float64{1.2, 0.3}, loadings.Exposures["AAA"])
	assert.Equal(t, []float64{0.8, 0}, loadings.Exposures["BBB"], "missing cell is zero exposure")
	assert.Equal(t, 4, loadings.Version)
}
