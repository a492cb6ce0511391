package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/lsequity/internal/s0_data"
	"github.com/wonny/lsequity/internal/s0_data/quality"
	"github.com/wonny/lsequity/internal/selection"
	"github.com/wonny/lsequity/pkg/logger"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "CSV 팩터 테이블 랭킹 (S2 단독 실행)",
	Long: `CSV 팩터 테이블에 전략의 랭킹을 적용하고 롱/숏 선별을 출력합니다.

DB, Redis, 외부 협력자 없이 동작합니다.

CSV 형식:
  security,value_score,market_cap,...
  AAPL,1.2,,...        (빈 칸 / NaN / null = 값 없음)

Example:
  go run ./cmd/quant rank --strategy config/strategy/long_short_value.yaml --input factors.csv
  go run ./cmd/quant rank --input factors.csv --universe universe.csv --limit 20
  go run ./cmd/quant rank --input factors.csv --json`,
	RunE: runRank,
}

var (
	rankInput    string
	rankUniverse string
	rankDate     string
	rankLimit    int
	rankJSON     bool
)

const defaultStrategyPath = "config/strategy/long_short_value.yaml"

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringVar(&rankInput, "input", "", "팩터 CSV 파일 (필수)")
	rankCmd.Flags().StringVar(&rankUniverse, "universe", "", "유니버스 파일 (security 1열, 생략 시 CSV 전체)")
	rankCmd.Flags().StringVar(&rankDate, "date", "", "기준일 (YYYY-MM-DD, 기본: 오늘)")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 10, "측면별 출력 종목 수 (0 = 전체)")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "선별 결과를 JSON으로 출력")
	_ = rankCmd.MarkFlagRequired("input")
}

func runRank(cmd *cobra.Command, args []string) error {
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(os.Stderr, level)

	path := strategyPath
	if path == "" {
		path = defaultStrategyPath
	}

	strategy, err := loadStrategy(path, log)
	if err != nil {
		return err
	}

	date, err := parseDate(rankDate)
	if err != nil {
		return err
	}

	ranker, err := selection.NewRanker(selection.ConfigFromStrategy(strategy), log)
	if err != nil {
		return fmt.Errorf("create ranker: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	source := s0_data.NewCSVSource(rankInput, rankUniverse)
	universe, err := source.Universe(ctx, date)
	if err != nil {
		return err
	}
	table, err := source.FactorTable(ctx, date, strategy.FactorNames())
	if err != nil {
		return err
	}

	snap := quality.NewQualityGate(quality.DefaultConfig()).Check(universe, table, strategy.FactorNames())

	sel, err := ranker.Rank(ctx, universe, table)
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}

	if rankJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sel)
	}

	PrintRunHeader(RunMetadata{
		Title:      "Factor Ranking",
		StrategyID: strategy.Meta.StrategyID,
		Date:       date,
	})

	if !snap.Passed {
		for _, w := range snap.Warnings {
			PrintWarning(w)
		}
	}

	PrintFactorDiagnostics(sel.Factors)
	PrintSelection(sel, rankLimit)

	return nil
}

// parseDate parses YYYY-MM-DD, defaulting to today (UTC midnight)
func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return date, nil
}
