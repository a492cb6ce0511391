package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/lsequity/internal/api"
	"github.com/wonny/lsequity/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 최신 롱/숏 선별 조회 (Redis → Postgres)
- 요청 본문의 팩터 테이블을 전략 설정으로 랭킹

Endpoints:
  GET  /health                                   - Health check
  GET  /metrics                                  - Prometheus
  GET  /api/selection/latest?strategy=<id>       - 최신 선별 조회
  POST /api/rank                                 - 팩터 레코드 랭킹

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== lsequity API Server ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Wire dependencies
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port":     a.cfg.Port,
		"env":      a.cfg.Env,
		"strategy": a.strategy.Meta.StrategyID,
	}).Info("Initializing API server")

	// 2. Create handlers
	h := api.Handlers{
		Selection: handlers.NewSelectionHandler(a.selectionStore, a.strategy.Meta.StrategyID, a.log),
		Ranking:   handlers.NewRankingHandler(a.ranker, a.strategy.FactorNames(), a.log),
	}
	if a.cfg.MetricsEnabled {
		h.Metrics = a.metrics.Handler()
	}

	// 3. Serve until signal
	server := api.New(a.cfg, a.log, api.NewRouter(h, a.log))
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("api server: %w", err)
	}

	fmt.Println("Server stopped")
	return nil
}
