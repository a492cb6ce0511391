package s0_data

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/pkg/config"
	"github.com/wonny/lsequity/pkg/database"
)

// Integration test: requires DATABASE_URL
func TestFactorRepository_RoundTrip(t *testing.T) {
	if testing.Short() || os.Getenv("DATABASE_URL") == "" {
		t.Skip("Skipping integration test (DATABASE_URL not set)")
	}

	cfg := &config.Config{Database: config.DatabaseConfig{URL: os.Getenv("DATABASE_URL"), MaxConns: 2, MinConns: 1}}
	db, err := database.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.EnsureSchema(ctx))

	// 과거 날짜로 저장해 운영 데이터와 겹치지 않게 함
	date := time.Date(1999, 1, 4, 0, 0, 0, 0, time.UTC)
	universe := &contracts.Universe{Date: date, Securities: []string{"IT_A", "IT_B"}}
	table := &contracts.FactorTable{
		Date:    date,
		Factors: []string{"f1"},
		Records: []contracts.FactorRecord{
			{Security: "IT_A", Values: map[string]*float64{"f1": contracts.Float(1.5)}},
			{Security: "IT_B", Values: map[string]*float64{"f1": nil}},
		},
	}

	repo := NewFactorRepository(db.Pool)
	require.NoError(t, repo.SaveFactorTable(ctx, universe, table))

	gotUniverse, err := repo.Universe(ctx, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"IT_A", "IT_B"}, gotUniverse.Securities)

	gotTable, err := repo.FactorTable(ctx, date, []string{"f1"})
	require.NoError(t, err)
	idx := gotTable.Index()
	v, ok := idx["IT_A"].Value("f1")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)
	_, ok = idx["IT_B"].Value("f1")
	assert.False(t, ok, "NULL stays undefined")

	_, err = repo.Universe(ctx, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, IsNoData(err))
}
