package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile   string
	strategyPath string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "lsequity - 롱/숏 주식 팩터 랭킹 시스템",
	Long: `lsequity Unified CLI

팩터 점수 기반 롱/숏 주식 포트폴리오 리밸런싱.
S0 팩터 데이터 → S1 리스크 로딩 → S2 랭킹 → S3 최적화 → S4 라우팅 → S5 기록

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant rank --strategy config/strategy/long_short_value.yaml --input factors.csv
  go run ./cmd/quant rebalance --dry-run
  go run ./cmd/quant scheduler start
  go run ./cmd/quant api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&strategyPath, "strategy", "", "strategy YAML (default: STRATEGY_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
