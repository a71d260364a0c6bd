// Package report exports batch analysis outcomes to Parquet for downstream
// analytics.
package report

import (
	"fmt"
	"os"

	"github.com/pharmwatch/icsr-sentinel/internal/logger"
	"github.com/pharmwatch/icsr-sentinel/internal/pipeline"
	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"
)

// Record is one exported row per analyzed document. Failed documents carry
// the error text and zero scores.
type Record struct {
	Document          string  `parquet:"document" json:"document"`
	Format            string  `parquet:"format" json:"format"`
	Valid             bool    `parquet:"valid" json:"valid"`
	OverallScore      float64 `parquet:"overall_score" json:"overall_score"`
	Level             string  `parquet:"level" json:"level"`
	MaskingScore      float64 `parquet:"masking_score" json:"masking_score"`
	MinimizationScore float64 `parquet:"minimization_score" json:"minimization_score"`
	StructureScore    float64 `parquet:"structure_score" json:"structure_score"`
	PersonalDataCount int     `parquet:"personal_data_count" json:"personal_data_count"`
	DetectionCount    int     `parquet:"detection_count" json:"detection_count"`
	IssueCount        int     `parquet:"issue_count" json:"issue_count"`
	Error             string  `parquet:"error" json:"error,omitempty"`
}

// FromOutcome flattens one batch outcome into an export row.
func FromOutcome(o pipeline.Outcome) Record {
	rec := Record{Document: o.Name}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	if o.Analysis == nil {
		return rec
	}

	rec.Format = string(o.Analysis.Format)
	if o.Analysis.Validation != nil {
		rec.Valid = o.Analysis.Validation.Valid
	}
	rec.DetectionCount = len(o.Analysis.Detections)
	if c := o.Analysis.Compliance; c != nil {
		rec.OverallScore = c.OverallScore
		rec.Level = string(c.Level)
		rec.MaskingScore = c.MaskingScore
		rec.MinimizationScore = c.MinimizationScore
		rec.StructureScore = c.StructureScore
		rec.PersonalDataCount = c.PersonalDataCount
		rec.IssueCount = len(c.Issues)
	}
	return rec
}

// Writer exports analysis records to a Parquet file.
type Writer struct {
	logger *logger.Logger
}

// NewWriter creates a Parquet report writer.
func NewWriter(log *logger.Logger) *Writer {
	return &Writer{logger: log.WithComponent("report")}
}

// WriteFile writes every outcome to a Parquet file at the given path.
func (w *Writer) WriteFile(path string, outcomes []pipeline.Outcome) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	pw := parquet.NewWriter(file)
	for _, o := range outcomes {
		if err := pw.Write(FromOutcome(o)); err != nil {
			return fmt.Errorf("failed to write report record: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to finalize report: %w", err)
	}

	w.logger.Info("report written",
		zap.String("path", path),
		zap.Int("records", len(outcomes)),
	)

	return nil
}
