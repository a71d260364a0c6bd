// Package compliance scores an analyzed document against the data-protection
// rules of GVP Module VI Addendum II: weighted masking of regulated fields,
// data minimization over optional elements, and structural completeness.
package compliance

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pharmwatch/icsr-sentinel/internal/e2b"
	"github.com/pharmwatch/icsr-sentinel/internal/extract"
	"github.com/pharmwatch/icsr-sentinel/internal/logger"
	"github.com/pharmwatch/icsr-sentinel/internal/privacy"
	"go.uber.org/zap"
)

// Sub-score weights. Masking carries the most because it is the direct
// regulatory obligation.
const (
	weightMasking      = 0.4
	weightMinimization = 0.3
	weightStructure    = 0.3
)

// structureChecks is the number of mandatory structure checks the structure
// sub-score is normalized over.
const structureChecks = 5

// Input carries everything the scorer consumes for one document.
type Input struct {
	Format     e2b.Format
	Fields     []extract.FieldRecord
	Personal   []extract.PersonalField
	Summary    *extract.Summary
	Detections []privacy.Detection
}

// Scorer computes compliance results. Stateless; safe for concurrent use.
type Scorer struct {
	logger *logger.Logger
}

// New creates a scorer.
func New(log *logger.Logger) *Scorer {
	return &Scorer{logger: log.WithComponent("compliance")}
}

// Score computes the full compliance result for one document.
func (s *Scorer) Score(in Input) *Result {
	r := &Result{
		PersonalFields:      in.Personal,
		PersonalDataCount:   len(in.Personal),
		Timestamp:           time.Now(),
		RegulationReference: RegulationReference,
	}

	s.scoreMasking(in, r)
	unmaskedOptional := s.scoreMinimization(in, r)
	s.scoreStructure(in, r)

	r.OverallScore = round3(r.MaskingScore*weightMasking +
		r.MinimizationScore*weightMinimization +
		r.StructureScore*weightStructure)
	r.Level = LevelFor(r.OverallScore)

	r.Recommendations = recommendations(in.Detections, len(r.MissingMask), unmaskedOptional, len(r.Issues))

	s.logger.Debug("compliance scored",
		zap.Float64("overall", r.OverallScore),
		zap.String("level", string(r.Level)),
		zap.Float64("masking", r.MaskingScore),
		zap.Float64("minimization", r.MinimizationScore),
		zap.Float64("structure", r.StructureScore),
	)

	return r
}

// scoreMasking validates MSK application over the regulated fields. A
// mandatory field carrying data without a mask is a violation; a mask on an
// optional field is recorded but never scored.
func (s *Scorer) scoreMasking(in Input, r *Result) {
	requiring := 0
	for _, f := range in.Personal {
		if f.HasMask {
			r.MaskAppliedCount++
		}

		if f.RequireMask {
			requiring++
			switch {
			case f.HasValue && !f.HasMask:
				r.MissingMask = append(r.MissingMask, MaskedField{Code: f.Code, Name: f.Name, Weight: f.Weight})
			case f.HasMask:
				r.CorrectlyMasked = append(r.CorrectlyMasked, MaskedField{Code: f.Code, Name: f.Name, Weight: f.Weight})
			}
			continue
		}

		if f.HasMask {
			r.UnnecessaryMask = append(r.UnnecessaryMask, FieldRef{Code: f.Code, Name: f.Name})
		}
	}

	if requiring == 0 {
		// Nothing mandates masking, trivially compliant.
		r.MaskingScore = 1.0
		return
	}

	totalWeight, correctWeight := 0, 0
	for _, f := range r.MissingMask {
		totalWeight += f.Weight
	}
	for _, f := range r.CorrectlyMasked {
		totalWeight += f.Weight
		correctWeight += f.Weight
	}
	if totalWeight > 0 {
		r.MaskingScore = float64(correctWeight) / float64(totalWeight)
	}

	for _, f := range r.MissingMask {
		r.Issues = append(r.Issues, fmt.Sprintf("Personal data element '%s' requires MSK null flavor", f.Name))
	}
}

// scoreMinimization penalizes unmasked data in the fixed optional-tag list
// relative to the document's total data-bearing elements. Returns the
// unmasked-optional count for the recommendation lines.
func (s *Scorer) scoreMinimization(in Input, r *Result) int {
	unmaskedOptional := 0
	for _, f := range in.Fields {
		if !e2b.OptionalTags[strings.ToLower(f.Tag)] {
			continue
		}
		if f.Attrs[e2b.MaskAttr] == "" {
			unmaskedOptional++
			r.Issues = append(r.Issues, fmt.Sprintf("Optional element '%s' contains personal data without MSK", f.Tag))
		}
	}

	if len(in.Fields) == 0 {
		r.MinimizationScore = 1.0
		return unmaskedOptional
	}
	r.MinimizationScore = math.Max(0, 1-float64(unmaskedOptional)/float64(len(in.Fields)))
	return unmaskedOptional
}

// scoreStructure checks the mandatory structural elements. Patient sex is
// advisory: it is reported but does not reduce the score.
func (s *Scorer) scoreStructure(in Input, r *Result) {
	sum := in.Summary
	if sum == nil {
		sum = &extract.Summary{}
	}

	failed := 0
	miss := func(name string, counted bool) {
		r.MissingElements = append(r.MissingElements, name)
		r.Issues = append(r.Issues, "Required element missing: "+name)
		if counted {
			failed++
		}
	}

	if sum.Header.MessageType == "" {
		miss("Message Type", true)
	}
	if sum.Header.FormatVersion == "" {
		miss("Message Format Version", true)
	}
	if sum.Report.ReportID == "" {
		miss("Safety Report ID", true)
	}
	if sum.Patient.Sex == "" {
		miss("Patient Sex", false)
	}
	if len(sum.Reactions) == 0 {
		miss("Reaction Information", true)
	}

	r.StructureScore = math.Max(0, float64(structureChecks-failed)/float64(structureChecks))
}

// recommendations renders the actionable guidance list: urgency lines from
// the detections, the regulated-field and minimization counts, then
// per-category review lines in first-seen detection order.
func recommendations(detections []privacy.Detection, missingMask, unmaskedOptional, issueCount int) []string {
	var recs []string

	highUnmasked, mediumUnmasked := 0, 0
	categoryOrder := []privacy.Category{}
	categoryUnmasked := map[privacy.Category]int{}
	for _, d := range detections {
		if !d.HasMaskApplied {
			switch d.Priority {
			case privacy.PriorityHigh:
				highUnmasked++
			case privacy.PriorityMedium:
				mediumUnmasked++
			}
			if _, seen := categoryUnmasked[d.Category]; !seen {
				categoryOrder = append(categoryOrder, d.Category)
			}
			categoryUnmasked[d.Category]++
		}
	}

	if highUnmasked > 0 {
		recs = append(recs, fmt.Sprintf("CRITICAL: Mask %d high-priority PII fields immediately", highUnmasked))
	}
	if mediumUnmasked > 0 {
		recs = append(recs, fmt.Sprintf("IMPORTANT: Consider masking %d medium-priority fields", mediumUnmasked))
	}
	if missingMask > 0 {
		recs = append(recs, fmt.Sprintf("Apply MSK null flavor to %d personal data elements", missingMask))
	}
	if unmaskedOptional > 0 {
		recs = append(recs, fmt.Sprintf("Review %d optional elements for data minimization", unmaskedOptional))
	}
	for _, cat := range categoryOrder {
		recs = append(recs, fmt.Sprintf("Review %d %s fields",
			categoryUnmasked[cat], strings.ReplaceAll(string(cat), "_", " ")))
	}
	if issueCount > 5 {
		recs = append(recs, "Consider comprehensive review of E2B R3 file before submission")
	}
	if len(recs) == 0 {
		recs = append(recs, "File meets EDPS compliance requirements")
	}

	return recs
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
