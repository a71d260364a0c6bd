package compliance

import (
	"time"

	"github.com/pharmwatch/icsr-sentinel/internal/extract"
)

// RegulationReference names the regulation every result is scored against.
const RegulationReference = "GVP Module VI Addendum II"

// Level buckets an overall score for reporting.
type Level string

const (
	LevelExcellent  Level = "Excellent"
	LevelGood       Level = "Good"
	LevelAcceptable Level = "Acceptable"
	LevelPoor       Level = "Poor"
	LevelCritical   Level = "Critical"
)

// Level thresholds, boundary inclusive.
const (
	thresholdExcellent  = 0.90
	thresholdGood       = 0.80
	thresholdAcceptable = 0.70
	thresholdPoor       = 0.50
)

// LevelFor buckets a score into its compliance level.
func LevelFor(score float64) Level {
	switch {
	case score >= thresholdExcellent:
		return LevelExcellent
	case score >= thresholdGood:
		return LevelGood
	case score >= thresholdAcceptable:
		return LevelAcceptable
	case score >= thresholdPoor:
		return LevelPoor
	default:
		return LevelCritical
	}
}

// MaskedField identifies a regulated field in the masking bookkeeping lists.
type MaskedField struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// FieldRef identifies a field without scoring weight, used for the
// informational unnecessary-mask list.
type FieldRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Result is one compliance assessment. It is immutable after construction.
type Result struct {
	OverallScore      float64 `json:"overallScore"`
	Level             Level   `json:"level"`
	MaskingScore      float64 `json:"maskingScore"`
	MinimizationScore float64 `json:"minimizationScore"`
	StructureScore    float64 `json:"structureScore"`

	PersonalDataCount int `json:"personalDataCount"`
	MaskAppliedCount  int `json:"maskAppliedCount"`

	PersonalFields  []extract.PersonalField `json:"personalFields"`
	CorrectlyMasked []MaskedField           `json:"correctlyMasked"`
	MissingMask     []MaskedField           `json:"missingMask"`
	UnnecessaryMask []FieldRef              `json:"unnecessaryMask"`
	MissingElements []string                `json:"missingElements"`

	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`

	Timestamp           time.Time `json:"timestamp"`
	RegulationReference string    `json:"regulationReference"`
}
