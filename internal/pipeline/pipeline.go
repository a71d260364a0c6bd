// Package pipeline orchestrates the full document run: parse, validate,
// extract, classify, score. Each invocation builds its own tree; the analyzer
// itself holds no per-document state and is safe for concurrent use.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pharmwatch/icsr-sentinel/internal/compliance"
	"github.com/pharmwatch/icsr-sentinel/internal/config"
	"github.com/pharmwatch/icsr-sentinel/internal/e2b"
	"github.com/pharmwatch/icsr-sentinel/internal/extract"
	"github.com/pharmwatch/icsr-sentinel/internal/logger"
	"github.com/pharmwatch/icsr-sentinel/internal/privacy"
	"github.com/pharmwatch/icsr-sentinel/internal/xmltree"
	"go.uber.org/zap"
)

// ErrInvalidStructure marks documents that parsed but failed structural
// validation. The returned Analysis still carries the validation detail.
var ErrInvalidStructure = errors.New("document failed structure validation")

// ErrTooLarge marks documents over the configured size limit.
var ErrTooLarge = errors.New("document exceeds size limit")

// Analysis is the complete outcome for one document.
type Analysis struct {
	Name       string                `json:"name"`
	Format     e2b.Format            `json:"format"`
	Validation *e2b.ValidationResult `json:"validation"`
	Summary    *extract.Summary      `json:"summary,omitempty"`
	Detections []privacy.Detection   `json:"detections,omitempty"`
	PIIStats   privacy.Stats         `json:"piiStats"`
	Compliance *compliance.Result    `json:"compliance,omitempty"`
}

// Analyzer runs the analysis pipeline.
type Analyzer struct {
	cfg        config.AnalysisConfig
	logger     *logger.Logger
	classifier *privacy.Classifier
	scorer     *compliance.Scorer
}

// New creates an analyzer using the given classifier.
func New(cfg config.AnalysisConfig, log *logger.Logger, classifier *privacy.Classifier) *Analyzer {
	return &Analyzer{
		cfg:        cfg,
		logger:     log.WithComponent("pipeline"),
		classifier: classifier,
		scorer:     compliance.New(log),
	}
}

// Analyze runs the full pipeline over one raw document. Structural failure is
// terminal: the Analysis carries the validation detail and no score.
func (a *Analyzer) Analyze(ctx context.Context, name string, data []byte) (*Analysis, error) {
	if a.cfg.MaxDocumentSize > 0 && int64(len(data)) > a.cfg.MaxDocumentSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := xmltree.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	analysis := &Analysis{
		Name:   name,
		Format: e2b.DetectFormat(doc),
	}

	analysis.Validation = e2b.Validate(doc)
	if !analysis.Validation.Valid {
		a.logger.Warn("document failed validation",
			zap.String("document", name),
			zap.Strings("errors", analysis.Validation.Errors),
		)
		return analysis, ErrInvalidStructure
	}

	fields := extract.AllFields(doc)
	personal := extract.PersonalDataFields(doc, e2b.MappingFor(analysis.Format))
	analysis.Summary = extract.StructuralSummary(doc)

	analysis.Detections = a.classifier.DetectFields(ctx, fields)
	analysis.PIIStats = privacy.Summarize(analysis.Detections)

	analysis.Compliance = a.scorer.Score(compliance.Input{
		Format:     analysis.Format,
		Fields:     fields,
		Personal:   personal,
		Summary:    analysis.Summary,
		Detections: analysis.Detections,
	})

	a.logger.Info("document analyzed",
		zap.String("document", name),
		zap.String("format", string(analysis.Format)),
		zap.Int("detections", len(analysis.Detections)),
		zap.Float64("score", analysis.Compliance.OverallScore),
		zap.String("level", string(analysis.Compliance.Level)),
	)

	return analysis, nil
}

// Document is one batch input.
type Document struct {
	Name string
	Data []byte
}

// Outcome is one batch result. Exactly one of Analysis and Err is meaningful;
// a failed validation carries both.
type Outcome struct {
	Name     string
	Analysis *Analysis
	Err      error
}

// AnalyzeBatch runs the pipeline over each document on a bounded worker pool.
// One malformed document never affects its siblings. Outcomes arrive in
// completion order, not input order.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, docs []Document) []Outcome {
	workers := a.cfg.BatchWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(docs) {
		workers = len(docs)
	}

	jobs := make(chan Document)
	results := make(chan Outcome, len(docs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				analysis, err := a.Analyze(ctx, doc.Name, doc.Data)
				results <- Outcome{Name: doc.Name, Analysis: analysis, Err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, doc := range docs {
			select {
			case jobs <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	outcomes := make([]Outcome, 0, len(docs))
	for o := range results {
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Total       int                      `json:"total"`
	Succeeded   int                      `json:"succeeded"`
	Failed      int                      `json:"failed"`
	AvgScore    float64                  `json:"avgScore"`
	LevelCounts map[compliance.Level]int `json:"levelCounts"`
}

// Summarize aggregates batch outcomes. The average covers scored documents
// only.
func Summarize(outcomes []Outcome) BatchSummary {
	s := BatchSummary{
		Total:       len(outcomes),
		LevelCounts: map[compliance.Level]int{},
	}

	var scoreSum float64
	for _, o := range outcomes {
		if o.Err != nil || o.Analysis == nil || o.Analysis.Compliance == nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		scoreSum += o.Analysis.Compliance.OverallScore
		s.LevelCounts[o.Analysis.Compliance.Level]++
	}
	if s.Succeeded > 0 {
		s.AvgScore = scoreSum / float64(s.Succeeded)
	}
	return s
}

// Tokens that place a document in the adverse event report vocabulary.
var reportTokens = [][]byte{
	[]byte("ichicsr"),
	[]byte("safetyreport"),
	[]byte("messageheader"),
}

// LooksLikeReport is a cheap sniff for batch traversal: valid UTF-8, starts
// with an XML angle bracket and mentions the report vocabulary. It never
// replaces validation.
func LooksLikeReport(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return false
	}
	lower := bytes.ToLower(trimmed)
	for _, tok := range reportTokens {
		if bytes.Contains(lower, tok) {
			return true
		}
	}
	return false
}
