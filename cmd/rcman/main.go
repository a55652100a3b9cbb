// Package main provides the rcman CLI: one-shot local analysis of a risk
// control matrix document without a database or server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rcman/internal/config"
	"rcman/internal/enrich"
	_ "rcman/internal/enrich/gemini"
	_ "rcman/internal/enrich/openai"
	"rcman/internal/export"
	"rcman/internal/ingest"
)

var (
	outputPath string
	csvPath    string
	xlsxPath   string
	doEnrich   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rcman",
		Short: "Analyze risk control matrix documents",
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Extract control objectives, risks, and gaps from a document",
		Long: `analyze runs the heuristic extraction pipeline on an RCM document
(xlsx, csv, pdf, or docx) and prints the analysis as JSON. Optional flags
write CSV and XLSX reports and enable LLM enrichment (requires provider
configuration via RCMAN_ environment variables).`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path for the JSON analysis (default: stdout)")
	analyzeCmd.Flags().StringVar(&csvPath, "csv", "", "Also write a CSV of control objectives to this path")
	analyzeCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write a styled workbook report to this path")
	analyzeCmd.Flags().BoolVar(&doEnrich, "enrich", false, "Run LLM enrichment on the extracted analysis")
	rootCmd.AddCommand(analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pipeline := ingest.NewPipeline(&cfg.Extract)
	res, err := pipeline.Analyze(inputPath, data)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	analysis := res.Analysis
	analysis.CreatedAt = time.Now().UTC()

	if doEnrich {
		if err := enrichResult(cmd.Context(), cfg, res); err != nil {
			fmt.Fprintf(os.Stderr, "enrichment failed, keeping heuristic analysis: %v\n", err)
		}
	}

	jsonData, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing analysis: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}
	} else {
		fmt.Println(string(jsonData))
	}

	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", csvPath, err)
		}
		defer f.Close()
		if _, err := f.Write(export.BOM); err != nil {
			return fmt.Errorf("writing %s: %w", csvPath, err)
		}
		w := export.NewCSVWriter(f)
		if err := w.WriteHeader(); err != nil {
			return fmt.Errorf("writing %s: %w", csvPath, err)
		}
		if err := w.WriteObjectives(analysis.Objectives); err != nil {
			return fmt.Errorf("writing %s: %w", csvPath, err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("writing %s: %w", csvPath, err)
		}
	}
	if xlsxPath != "" {
		f, err := os.Create(xlsxPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", xlsxPath, err)
		}
		defer f.Close()
		if err := export.WriteWorkbook(analysis, f); err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
	}
	return nil
}

func enrichResult(ctx context.Context, cfg *config.Config, res *ingest.Result) error {
	pc := cfg.Enrich.PrimaryConfig()
	if pc == nil {
		return fmt.Errorf("no enrichment provider configured")
	}
	enricher, err := enrich.NewEnricher(pc)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return enrich.NewService(enricher, cfg.Enrich.MaxChars).EnrichAnalysis(ctx, res)
}
