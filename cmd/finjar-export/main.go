package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"finjar/internal/backend"
	"finjar/internal/cache"
	"finjar/internal/config"
	"finjar/internal/core"
	"finjar/internal/services"
	"finjar/internal/settings"
	gsheet "finjar/internal/sheets/google"
)

// finjar-export generates a one-off savings report and writes it to a CSV
// file or to the configured Google Sheets spreadsheet.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		periodFlag = flag.String("period", "all", "report period: all, month, quarter, year")
		jarFlag    = flag.String("jar", "all", "jar ID to filter by, or 'all'")
		outFlag    = flag.String("out", "", "CSV output path (default: finjar-report-<date>.csv)")
		targetFlag = flag.String("target", "csv", "export target: csv or sheets")
	)
	flag.Parse()

	period, err := core.ParsePeriod(*periodFlag)
	if err != nil {
		logger.Error("Invalid period", "period", *periodFlag)
		os.Exit(2)
	}
	if *targetFlag != "csv" && *targetFlag != "sheets" {
		logger.Error("Invalid target", "target", *targetFlag)
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := settings.NewStore(cfg.SettingsDBPath)
	if err != nil {
		logger.Error("Failed to initialize settings store", "error", err, "path", cfg.SettingsDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var tokens backend.TokenSource = store
	if cfg.BackendToken != "" {
		tokens = backend.StaticToken(cfg.BackendToken)
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, tokens)
	reportCache := cache.NewLRUCache[*core.ReportData](1, cfg.ReportCacheTTL)
	svc := services.NewReportService(client, reportCache)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := svc.Report(ctx, period, *jarFlag)
	if err != nil {
		logger.Error("Failed to generate report", "error", err)
		os.Exit(1)
	}
	if report == nil {
		logger.Error("No jars found, nothing to export")
		os.Exit(1)
	}

	switch *targetFlag {
	case "sheets":
		if err := exportToSheets(ctx, cfg, report); err != nil {
			logger.Error("Sheets export failed", "error", err)
			os.Exit(1)
		}
	default:
		path, err := exportToCSV(report, *outFlag)
		if err != nil {
			logger.Error("CSV export failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(path)
	}

	logger.Info("Export complete",
		"period", period,
		"jar", *jarFlag,
		"jars", report.Summary.JarCount,
		"total_saved", report.Summary.TotalSaved)
}

func exportToCSV(report *core.ReportData, path string) (string, error) {
	if path == "" {
		path = core.ReportFilename(report.GeneratedAt)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := core.WriteJarPerformanceCSV(f, report.JarPerformance); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func exportToSheets(ctx context.Context, cfg *config.Config, report *core.ReportData) error {
	if !cfg.SheetsExportEnabled() {
		return fmt.Errorf("sheets export requires GOOGLE_SPREADSHEET_ID")
	}

	writer, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		return fmt.Errorf("sheets client: %w", err)
	}
	return writer.WriteReport(ctx, report)
}
