// Package privacy classifies extracted fields into PII categories. The
// deterministic rule ladder is the system of record; a remote enhancement
// can be injected behind the same interface but is never required for
// correctness.
package privacy

import (
	"context"
	"sort"
	"strings"

	"github.com/pharmwatch/icsr-sentinel/internal/extract"
	"github.com/pharmwatch/icsr-sentinel/internal/logger"
	"go.uber.org/zap"
)

// Confidence ladder. Exact element-name matches always rank above pure
// content-pattern or keyword matches.
const (
	confidenceExactMatch   = 0.95
	confidenceExactNoMatch = 0.70
	confidencePatternOnly  = 0.60
	confidenceKeywordOnly  = 0.40
)

// FieldClassifier classifies a single tag/text pair. The second return is
// false when the field is not PII.
type FieldClassifier interface {
	ClassifyField(ctx context.Context, tag, text string) (Detection, bool)
}

// Classifier runs PII detection over extracted field records.
type Classifier struct {
	logger   *logger.Logger
	enhancer FieldClassifier
}

// New creates a classifier using the deterministic rule ladder only.
func New(log *logger.Logger) *Classifier {
	return &Classifier{logger: log}
}

// NewWithEnhancer creates a classifier that delegates per-field
// classification to the given enhancer. The enhancer must itself fall back
// to the deterministic ladder on failure.
func NewWithEnhancer(log *logger.Logger, enhancer FieldClassifier) *Classifier {
	return &Classifier{logger: log, enhancer: enhancer}
}

// DetectFields classifies every field record and returns the detected PII,
// sorted by priority rank then confidence, both descending. Fields that are
// not PII are omitted entirely.
func (c *Classifier) DetectFields(ctx context.Context, fields []extract.FieldRecord) []Detection {
	var detections []Detection

	for _, f := range fields {
		if f.Text == "" {
			continue
		}

		var d Detection
		var ok bool
		if c.enhancer != nil {
			d, ok = c.enhancer.ClassifyField(ctx, f.Tag, f.Text)
		} else {
			d, ok = Deterministic(f.Tag, f.Text)
		}
		if !ok {
			continue
		}

		d.Tag = strings.ToLower(f.Tag)
		d.Text = f.Text
		d.Address = f.Address
		d.HasMaskApplied = f.Masked
		d.SelectedForMasking = !f.Masked
		detections = append(detections, d)
	}

	sort.SliceStable(detections, func(i, j int) bool {
		if detections[i].Priority.Rank() != detections[j].Priority.Rank() {
			return detections[i].Priority.Rank() > detections[j].Priority.Rank()
		}
		return detections[i].Confidence > detections[j].Confidence
	})

	c.logger.Debug("PII detection completed",
		zap.Int("fields", len(fields)),
		zap.Int("detections", len(detections)),
	)

	return detections
}

// Deterministic runs the rule ladder for one field: exact element mapping,
// then content-pattern fallback, then the generic keyword heuristic. Returns
// false when the field is not PII.
func Deterministic(tag, text string) (Detection, bool) {
	tagLower := strings.ToLower(tag)

	// Step 1: exact element-name mapping.
	if cat, ok := elementCategories[tagLower]; ok {
		if rule, ok := ruleFor(cat); ok {
			confidence := confidenceExactNoMatch
			if rule.Pattern.MatchString(text) {
				confidence = confidenceExactMatch
			}
			return Detection{
				Category:    cat,
				Description: rule.Description,
				Priority:    rule.Priority,
				Confidence:  confidence,
				Code:        rule.Codes[0],
				Method:      MethodDeterministic,
			}, true
		}
	}

	// Step 2: content-pattern fallback, first match wins. Priority is
	// forced to medium: the element is unknown, so the category's own
	// priority does not apply.
	for _, rule := range categoryRules {
		if rule.Pattern.MatchString(text) {
			return Detection{
				Category:    rule.Category,
				Description: "Potential " + rule.Description + " (content pattern match)",
				Priority:    PriorityMedium,
				Confidence:  confidencePatternOnly,
				Code:        CodePatternDetected,
				Method:      MethodDeterministic,
			}, true
		}
	}

	// Step 3: generic keyword heuristic on the element name.
	for _, kw := range genericKeywords {
		if strings.Contains(tagLower, kw) {
			return Detection{
				Category:    CategoryGeneric,
				Description: "Generic personal data",
				Priority:    PriorityLow,
				Confidence:  confidenceKeywordOnly,
				Code:        CodeGeneric,
				Method:      MethodDeterministic,
			}, true
		}
	}

	return Detection{}, false
}

// Summarize aggregates a detection run for report rendering.
func Summarize(detections []Detection) Stats {
	s := Stats{Total: len(detections)}
	if len(detections) == 0 {
		return s
	}

	var confidenceSum float64
	for _, d := range detections {
		switch d.Priority {
		case PriorityHigh:
			s.HighPriority++
		case PriorityMedium:
			s.MediumPriority++
		case PriorityLow:
			s.LowPriority++
		}
		if d.HasMaskApplied {
			s.AlreadyMasked++
		}
		if d.SelectedForMasking {
			s.SelectedForMasking++
		}
		confidenceSum += d.Confidence
	}
	s.AvgConfidence = confidenceSum / float64(len(detections))
	return s
}
