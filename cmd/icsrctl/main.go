// icsrctl is the command-line companion to the sentinel server: analyze a
// single report, mask one in place, or sweep whole directories and ZIP
// archives.
package main

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pharmwatch/icsr-sentinel/internal/config"
	"github.com/pharmwatch/icsr-sentinel/internal/logger"
	"github.com/pharmwatch/icsr-sentinel/internal/masking"
	"github.com/pharmwatch/icsr-sentinel/internal/pipeline"
	"github.com/pharmwatch/icsr-sentinel/internal/privacy"
	"github.com/pharmwatch/icsr-sentinel/internal/report"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	flagConfig  string
	flagOutput  string
	flagReport  string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:     "icsrctl",
		Short:   "Compliance analysis for adverse event reports",
		Version: version,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to configuration file")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")

	analyzeCmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze one report and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}

	maskCmd := &cobra.Command{
		Use:   "mask <file>",
		Short: "Mask every detected PII field in a report",
		Args:  cobra.ExactArgs(1),
		RunE:  runMask,
	}
	maskCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default: <file>.masked.xml)")

	batchCmd := &cobra.Command{
		Use:   "batch <dir-or-zip>...",
		Short: "Analyze every report in directories and ZIP archives",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().StringVar(&flagReport, "report", "", "write per-document results to a Parquet file")

	root.AddCommand(analyzeCmd, maskCmd, batchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newAnalyzer builds an analyzer from configuration. CLI logging goes to
// stderr as console lines so stdout stays machine-readable.
func newAnalyzer() (*pipeline.Analyzer, *logger.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := "warn"
	if flagVerbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "console"})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var classifier *privacy.Classifier
	if cfg.Enhance.Enabled {
		enhancer := privacy.NewRemoteClassifier(cfg.Enhance, log.WithComponent("privacy"))
		classifier = privacy.NewWithEnhancer(log.WithComponent("privacy"), enhancer)
	} else {
		classifier = privacy.New(log.WithComponent("privacy"))
	}

	return pipeline.New(cfg.Analysis, log, classifier), log, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	analyzer, log, err := newAnalyzer()
	if err != nil {
		return err
	}
	defer log.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	analysis, err := analyzer.Analyze(cmd.Context(), filepath.Base(args[0]), data)
	if err != nil && analysis == nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(analysis); encErr != nil {
		return encErr
	}
	// A structurally invalid document still prints its validation detail,
	// but the command exits nonzero.
	return err
}

func runMask(cmd *cobra.Command, args []string) error {
	analyzer, log, err := newAnalyzer()
	if err != nil {
		return err
	}
	defer log.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	analysis, err := analyzer.Analyze(cmd.Context(), filepath.Base(args[0]), data)
	if err != nil {
		return err
	}

	selections := masking.SelectionsFromDetections(analysis.Detections)
	out, masked, err := masking.ApplyToBytes(data, selections)
	if err != nil {
		return fmt.Errorf("failed to mask %s: %w", args[0], err)
	}

	output := flagOutput
	if output == "" {
		output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".masked.xml"
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Printf("Masked %d fields, wrote %s\n", masked, output)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	analyzer, log, err := newAnalyzer()
	if err != nil {
		return err
	}
	defer log.Sync()

	var docs []pipeline.Document
	for _, arg := range args {
		collected, err := collect(arg)
		if err != nil {
			return err
		}
		docs = append(docs, collected...)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no report documents found")
	}

	outcomes := analyzer.AnalyzeBatch(cmd.Context(), docs)
	summary := pipeline.Summarize(outcomes)

	fmt.Printf("Analyzed %d documents: %d ok, %d failed, avg score %.3f\n",
		summary.Total, summary.Succeeded, summary.Failed, summary.AvgScore)
	for level, count := range summary.LevelCounts {
		fmt.Printf("  %-12s %d\n", level, count)
	}
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Printf("  FAILED %s: %v\n", o.Name, o.Err)
		}
	}

	if flagReport != "" {
		writer := report.NewWriter(log)
		if err := writer.WriteFile(flagReport, outcomes); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", flagReport)
	}

	return nil
}

// collect gathers report documents from a file, directory or ZIP archive.
// Non-report files are skipped by the content sniff.
func collect(path string) ([]pipeline.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.IsDir() {
		return collectDir(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return collectZip(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !pipeline.LooksLikeReport(data) {
		return nil, nil
	}
	return []pipeline.Document{{Name: filepath.Base(path), Data: data}}, nil
}

func collectDir(dir string) ([]pipeline.Document, error) {
	var docs []pipeline.Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".xml") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if pipeline.LooksLikeReport(data) {
			docs = append(docs, pipeline.Document{Name: filepath.Base(path), Data: data})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func collectZip(path string) ([]pipeline.Document, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer archive.Close()

	var docs []pipeline.Document
	for _, f := range archive.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", f.Name, err)
		}
		if pipeline.LooksLikeReport(data) {
			docs = append(docs, pipeline.Document{Name: filepath.Base(f.Name), Data: data})
		}
	}
	return docs, nil
}
