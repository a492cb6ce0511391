package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/lsequity/internal/api"
	"github.com/wonny/lsequity/internal/api/handlers"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

이 명령어는:
- 스케줄러 데몬 시작
- 등록된 작업 조회
- 작업 실행 이력 조회

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록 + 다음 실행 시각
  run     - 특정 작업 즉시 실행 (완료까지 대기)
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler list
  go run ./cmd/quant scheduler run rebalance_long_short_value`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 전략의 작업을 스케줄합니다.

등록되는 작업 (전략 시간대 기준, 기본 America/New_York):
- rebalance_<strategy>: 매주 월요일 10:00 (S0 → S4)
- record_<strategy>: 평일 16:00 (S5 보유 종목 수 기록)

이전 실행이 끝나지 않았으면 다음 실행은 건너뜁니다.
METRICS_ENABLED=true이면 METRICS_PORT에서 /metrics를 노출합니다.

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showStatus,
	}
)

var schedulerDryRun bool

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)

	schedulerCmd.PersistentFlags().BoolVar(&schedulerDryRun, "dry-run", false, "리밸런스 작업에서 라우팅 생략")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== lsequity Scheduler ===")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies
	a, err := newApp(ctx)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	sched, err := a.newScheduler(schedulerDryRun)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Metrics endpoint
	metricsErr := make(chan error, 1)
	if a.cfg.MetricsEnabled {
		metricsCfg := *a.cfg
		metricsCfg.Port = a.cfg.MetricsPort

		router := api.NewRouter(api.Handlers{
			Selection: handlers.NewSelectionHandler(a.selectionStore, a.strategy.Meta.StrategyID, a.log),
			Metrics:   a.metrics.Handler(),
		}, a.log)

		go func() {
			metricsErr <- api.New(&metricsCfg, a.log, router).Run(ctx)
		}()
	}

	// Start scheduler
	sched.Start()

	fmt.Println("✅ Scheduler started successfully")
	fmt.Println()
	fmt.Println("Registered jobs:")
	printJobs(a, sched.GetAllJobs(), sched.NextRun)
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	select {
	case <-ctx.Done():
	case err := <-metricsErr:
		if err != nil {
			a.log.WithError(err).Error("Metrics server stopped")
		}
		<-ctx.Done()
	}

	fmt.Println()
	fmt.Println("Shutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	sched, err := a.newScheduler(schedulerDryRun)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	printJobs(a, sched.GetAllJobs(), sched.NextRun)

	return nil
}

func printJobs(a *app, names []string, nextRun func(string) (time.Time, error)) {
	for _, jobName := range names {
		next, err := nextRun(jobName)
		if err != nil {
			fmt.Printf("  - %s (next: unknown: %v)\n", jobName, err)
			continue
		}
		fmt.Printf("  - %s (next: %s)\n", jobName, next.In(a.location).Format("2006-01-02 15:04:05 MST"))
	}
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	sched, err := a.newScheduler(schedulerDryRun)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", jobName)

	if err := sched.RunJobSync(ctx, jobName); err != nil {
		PrintError(fmt.Sprintf("Job %s failed", jobName))
		return fmt.Errorf("run job: %w", err)
	}

	history, err := sched.GetJobHistory(jobName)
	if err == nil {
		if latest := history.GetLatestResults(1); len(latest) == 1 {
			fmt.Printf("Attempts: %d, Duration: %s\n", latest[0].Attempts, latest[0].Duration)
		}
	}

	PrintSuccess(fmt.Sprintf("Job %s completed", jobName))
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	sched, err := a.newScheduler(schedulerDryRun)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.GetJobStats()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]

		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}

		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}

		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}
