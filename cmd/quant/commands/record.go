package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// recordCmd represents the record command
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "보유 종목 수 기록 (S5)",
	Long: `주문 라우터에서 보유 종목 수를 조회해 저장하고 게이지로 게시합니다.

Example:
  go run ./cmd/quant record`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.recorder.Record(ctx)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}

	PrintSuccess(fmt.Sprintf("Number of positions: %d (%s, %s)",
		snap.Count, snap.StrategyID, snap.Date.Format(time.RFC3339)))
	return nil
}
