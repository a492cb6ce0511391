package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/lsequity/internal/strategyconfig"
)

// strategyCmd represents the strategy command
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "전략 YAML 관리",
	Long: `전략 설정 파일을 검증하거나 해시를 계산합니다.

Subcommands:
  validate - 스키마/제약 검증 + 권장 사항 경고
  hash     - canonical JSON 기준 SHA256 (실행 재현성 추적용)

Example:
  go run ./cmd/quant strategy validate config/strategy/long_short_value.yaml
  go run ./cmd/quant strategy hash config/strategy/long_short_size.yaml`,
}

var (
	strategyValidateCmd = &cobra.Command{
		Use:   "validate [file]",
		Short: "전략 파일 검증",
		Args:  cobra.ExactArgs(1),
		RunE:  validateStrategy,
	}

	strategyHashCmd = &cobra.Command{
		Use:   "hash [file]",
		Short: "전략 해시 출력",
		Args:  cobra.ExactArgs(1),
		RunE:  hashStrategy,
	}
)

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyValidateCmd)
	strategyCmd.AddCommand(strategyHashCmd)
}

func validateStrategy(cmd *cobra.Command, args []string) error {
	cfg, _, err := strategyconfig.Load(args[0])
	if err != nil {
		var verr strategyconfig.ValidationError
		if errors.As(err, &verr) {
			PrintError(fmt.Sprintf("%s: %s", verr.Field, verr.Message))
		}
		return err
	}

	PrintSuccess(fmt.Sprintf("%s (v%s) is valid", cfg.Meta.StrategyID, cfg.Meta.Version))
	PrintKeyValue("Factors", fmt.Sprintf("%d", len(cfg.Factors)), 16)
	PrintKeyValue("Winsorize", fmt.Sprintf("[%.2f, %.2f]", cfg.Winsorize.MinPercentile, cfg.Winsorize.MaxPercentile), 16)
	PrintKeyValue("Total positions", fmt.Sprintf("%d", cfg.Portfolio.TotalPositions), 16)
	PrintKeyValue("Position bound", fmt.Sprintf("±%.6f", cfg.PositionBound()), 16)
	PrintKeyValue("Rebalance", cfg.RebalanceSchedule(), 16)
	PrintKeyValue("Record", cfg.RecordSchedule(), 16)

	for _, w := range strategyconfig.Warn(cfg) {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}

	return nil
}

func hashStrategy(cmd *cobra.Command, args []string) error {
	cfg, _, err := strategyconfig.Load(args[0])
	if err != nil {
		return err
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return fmt.Errorf("hash strategy: %w", err)
	}

	fmt.Println(hash)
	return nil
}
