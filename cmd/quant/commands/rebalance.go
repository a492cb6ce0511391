package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/lsequity/internal/brain"
	"github.com/wonny/lsequity/internal/scheduler/jobs"
)

// rebalanceCmd represents the rebalance command
var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "리밸런스 1회 실행 (S0 → S4)",
	Long: `설정된 협력자로 리밸런스 사이클을 1회 실행합니다.

S0: 팩터 데이터 + 품질 점검
S1: 리스크 로딩 (risk.neutralize=true일 때)
S2: 랭킹 (윈저라이즈 → z-score → 가중 합산 → 롱/숏 선별)
S3: 포트폴리오 최적화
S4: 주문 라우팅 (--dry-run이면 생략)

Example:
  go run ./cmd/quant rebalance --dry-run
  go run ./cmd/quant rebalance --strategy config/strategy/long_short_size.yaml --date 2026-10-19`,
	RunE: runRebalance,
}

var (
	rebalanceDryRun bool
	rebalanceDate   string
)

func init() {
	rootCmd.AddCommand(rebalanceCmd)

	rebalanceCmd.Flags().BoolVar(&rebalanceDryRun, "dry-run", false, "최적화까지만 실행하고 라우팅 생략")
	rebalanceCmd.Flags().StringVar(&rebalanceDate, "date", "", "기준일 (YYYY-MM-DD, 기본: 전략 시간대의 오늘)")
}

func runRebalance(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	date := jobs.TradingDate(time.Now(), a.location)
	if rebalanceDate != "" {
		if date, err = parseDate(rebalanceDate); err != nil {
			return err
		}
	}

	runID := brain.GenerateRunID()

	PrintRunHeader(RunMetadata{
		Title:      "Rebalance",
		StrategyID: a.strategy.Meta.StrategyID,
		RunID:      runID,
		Date:       date,
		DryRun:     rebalanceDryRun,
	})

	result, err := a.orchestrator.Run(ctx, brain.RunConfig{
		Date:   date,
		RunID:  runID,
		DryRun: rebalanceDryRun,
	})
	if result != nil {
		if result.Selection != nil {
			PrintSelection(result.Selection, 10)
		}
		PrintRunResult(result)
	}
	if err != nil {
		return fmt.Errorf("rebalance: %w", err)
	}

	return nil
}
