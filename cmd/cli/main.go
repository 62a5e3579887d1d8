package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tabscope/adapters/excel"
	"tabscope/adapters/postgres"
	"tabscope/domain/analysis"
	"tabscope/domain/core"
	"tabscope/internal/analyzer"
	"tabscope/internal/config"
	"tabscope/internal/report"
	"tabscope/ports"
)

func main() {
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "tabscope",
		Short:         "Statistical analysis of tabular datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, core.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var format string
	var output string
	var useStore bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Run the full analysis on a csv or xlsx file",
		Long: `Run schema inference, column statistics, missingness, outlier
detection, correlation and distribution testing on a tabular file.

Example: tabscope analyze sales.csv --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], format, output, useStore)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write output to file instead of stdout")
	cmd.Flags().BoolVar(&useStore, "store", false, "Persist the result to the configured database")

	return cmd
}

func newReportCmd() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "report <fingerprint>",
		Short: "Render a stored result by fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args[0], format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: json, markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write output to file instead of stdout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, path, format, output string, useStore bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var store ports.ResultStore
	if useStore {
		if err := cfg.RequireDatabase(); err != nil {
			return err
		}
		db, err := postgres.Connect(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		store = postgres.NewResultStore(db)
	}

	reader := excel.NewDataReader()
	ds, err := reader.Read(cmd.Context(), path)
	if err != nil {
		return err
	}

	orchestrator := analyzer.NewOrchestrator(store)
	result, err := orchestrator.Analyze(cmd.Context(), ds, cfg.Engine)
	if err != nil {
		return err
	}

	return emit(result, format, output)
}

func runReport(cmd *cobra.Command, fingerprint, format, output string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	db, err := postgres.Connect(cmd.Context(), cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	store := postgres.NewResultStore(db)
	result, err := store.Find(cmd.Context(), core.Fingerprint(fingerprint))
	if err != nil {
		return err
	}

	return emit(result, format, output)
}

func emit(result *analysis.AnalysisResult, format, output string) error {
	var payload []byte
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		payload = append(data, '\n')
	case "markdown":
		payload = []byte(report.NewGenerator().Markdown(result))
	case "html":
		payload = report.NewGenerator().HTML(result)
	default:
		return core.NewConfigError("format", fmt.Sprintf("unsupported output format %q", format))
	}

	if output == "" {
		_, err := os.Stdout.Write(payload)
		return err
	}
	return os.WriteFile(output, payload, 0o644)
}
