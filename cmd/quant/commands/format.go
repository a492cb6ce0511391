package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wonny/lsequity/internal/brain"
	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/internal/metrics"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// RunMetadata holds the header fields of one command run
type RunMetadata struct {
	Title      string
	StrategyID string
	RunID      string // Optional
	Date       time.Time
	DryRun     bool
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(meta RunMetadata) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", meta.Title)
	PrintSeparator()
	fmt.Printf("  Strategy  : %s\n", meta.StrategyID)
	fmt.Printf("  Date      : %s\n", meta.Date.Format("2006-01-02"))

	// Optional run id
	if meta.RunID != "" {
		fmt.Printf("  Run ID    : %s\n", meta.RunID)
	}
	if meta.DryRun {
		fmt.Println("  Mode      : dry-run (라우팅 생략)")
	}

	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	for i, col := range columns {
		fmt.Printf("%-*s", widths[i], col)
		if i < len(columns)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	for i := 0; i < totalWidth; i++ {
		fmt.Print("─")
	}
	fmt.Println()
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintFactorDiagnostics prints the normalization summary of each factor
func PrintFactorDiagnostics(factors []contracts.FactorDiagnostics) {
	widths := []int{28, 8, 8, 10, 10, 8, 6}
	PrintTableHeader([]string{"Factor", "Weight", "Cover", "Lower", "Upper", "Clipped", "Used"}, widths)

	for _, f := range factors {
		used := "yes"
		if f.Degenerate {
			used = "no"
		}
		PrintTableRow([]string{
			f.Name,
			strconv.FormatFloat(f.Weight, 'f', 2, 64),
			strconv.Itoa(f.Coverage),
			strconv.FormatFloat(f.Lower, 'g', 6, 64),
			strconv.FormatFloat(f.Upper, 'g', 6, 64),
			strconv.Itoa(f.Clipped),
			used,
		}, widths)
	}
	fmt.Println()
}

// PrintSelection prints up to limit longs and shorts (limit <= 0: all)
func PrintSelection(sel *contracts.RankedSelection, limit int) {
	fmt.Printf("Universe: %d, Eligible: %d, Longs: %d, Shorts: %d\n\n",
		sel.Universe, sel.Eligible, len(sel.Longs), len(sel.Shorts))

	printSide("📈 LONG", sel.Longs, limit)
	printSide("📉 SHORT", sel.Shorts, limit)
}

func printSide(title string, side []contracts.ScoredSecurity, limit int) {
	fmt.Println(title)

	widths := []int{6, 14, 12}
	PrintTableHeader([]string{"Rank", "Security", "Score"}, widths)

	for i, s := range side {
		if limit > 0 && i >= limit {
			fmt.Printf("   ... %d more\n", len(side)-limit)
			break
		}
		PrintTableRow([]string{
			strconv.Itoa(s.Rank),
			s.Security,
			strconv.FormatFloat(s.Score, 'f', 4, 64),
		}, widths)
	}
	fmt.Println()
}

// PrintRunResult prints the outcome of one rebalance cycle
func PrintRunResult(result *brain.RunResult) {
	PrintSeparator()
	PrintKeyValue("Status", result.Status, 10)
	PrintKeyValue("Stages", fmt.Sprintf("%v", result.CompletedStages), 10)
	PrintKeyValue("Duration", result.Duration.String(), 10)

	if result.Quality != nil {
		PrintKeyValue("Quality", fmt.Sprintf("%.2f (passed=%v)", result.Quality.QualityScore, result.Quality.Passed), 10)
	}
	if result.Weights != nil {
		PrintKeyValue("Targets", strconv.Itoa(result.Weights.Count()), 10)
	}
	if result.Report != nil {
		PrintKeyValue("Routed", fmt.Sprintf("%d submitted, %d rejected", result.Report.Submitted, result.Report.Rejected), 10)
	}
	PrintSeparator()

	switch {
	case result.Error != nil:
		PrintError(result.Error.Error())
	case result.Status == metrics.StatusEmpty:
		PrintWarning("No eligible securities: optimizer was not called")
	default:
		PrintSuccess(fmt.Sprintf("Rebalance %s completed in %.2fs", result.RunID, result.Duration.Seconds()))
	}
}
