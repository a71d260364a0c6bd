package compliance

import (
	"strings"
	"testing"

	"github.com/pharmwatch/icsr-sentinel/internal/e2b"
	"github.com/pharmwatch/icsr-sentinel/internal/extract"
	"github.com/pharmwatch/icsr-sentinel/internal/logger"
	"github.com/pharmwatch/icsr-sentinel/internal/privacy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{1.0, LevelExcellent},
		{0.90, LevelExcellent},
		{0.899, LevelGood},
		{0.80, LevelGood},
		{0.799, LevelAcceptable},
		{0.70, LevelAcceptable},
		{0.699, LevelPoor},
		{0.50, LevelPoor},
		{0.499, LevelCritical},
		{0.0, LevelCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.score), "score %v", tt.score)
	}
}

// completeSummary passes every structure check.
func completeSummary() *extract.Summary {
	return &extract.Summary{
		Header:    extract.MessageHeader{MessageType: "ichicsr", FormatVersion: "R3"},
		Report:    extract.SafetyReport{ReportID: "PW-1"},
		Patient:   extract.PatientData{Sex: "1"},
		Reactions: []extract.Reaction{{PrimarySourceReaction: "Headache"}},
	}
}

func TestScoreFullyCompliant(t *testing.T) {
	s := New(logger.Nop())

	r := s.Score(Input{
		Format: e2b.FormatE2B,
		Fields: []extract.FieldRecord{
			{Tag: "safetyreportid", Text: "PW-1"},
			{Tag: "primarysourcereaction", Text: "Headache"},
		},
		Personal: []extract.PersonalField{
			{Code: "A.2.1.1", Name: "Patient Initial", HasMask: true, RequireMask: true, Weight: 10},
			{Code: "A.3.1.2", Name: "Reporter Given Name", HasMask: true, RequireMask: true, Weight: 8},
		},
		Summary: completeSummary(),
	})

	assert.Equal(t, 1.0, r.OverallScore)
	assert.Equal(t, LevelExcellent, r.Level)
	assert.Equal(t, 1.0, r.MaskingScore)
	assert.Equal(t, 1.0, r.MinimizationScore)
	assert.Equal(t, 1.0, r.StructureScore)
	assert.Equal(t, 2, r.MaskAppliedCount)
	assert.Len(t, r.CorrectlyMasked, 2)
	assert.Empty(t, r.Issues)
	assert.Equal(t, []string{"File meets EDPS compliance requirements"}, r.Recommendations)
	assert.Equal(t, RegulationReference, r.RegulationReference)
}

func TestScoreMasking(t *testing.T) {
	s := New(logger.Nop())

	t.Run("PartialMasking", func(t *testing.T) {
		r := s.Score(Input{
			Personal: []extract.PersonalField{
				{Code: "A.2.1.1", Name: "Patient Initial", HasValue: true, RequireMask: true, Weight: 10},
				{Code: "A.3.1.2", Name: "Reporter Given Name", HasMask: true, RequireMask: true, Weight: 8},
			},
			Summary: completeSummary(),
		})

		// 8 of 18 weight units correctly masked.
		assert.InDelta(t, 8.0/18.0, r.MaskingScore, 1e-9)
		require.Len(t, r.MissingMask, 1)
		assert.Equal(t, "A.2.1.1", r.MissingMask[0].Code)
		assert.Contains(t, r.Issues, "Personal data element 'Patient Initial' requires MSK null flavor")
		assert.Contains(t, r.Recommendations, "Apply MSK null flavor to 1 personal data elements")
	})

	t.Run("NoMandatoryFields", func(t *testing.T) {
		r := s.Score(Input{
			Personal: []extract.PersonalField{
				{Code: "A.3.1.8", Name: "Reporter Country", HasValue: true, Weight: 2},
			},
			Summary: completeSummary(),
		})
		assert.Equal(t, 1.0, r.MaskingScore)
	})

	t.Run("UnnecessaryMaskInformationalOnly", func(t *testing.T) {
		r := s.Score(Input{
			Personal: []extract.PersonalField{
				{Code: "A.3.1.8", Name: "Reporter Country", HasMask: true, Weight: 2},
			},
			Summary: completeSummary(),
		})
		require.Len(t, r.UnnecessaryMask, 1)
		assert.Equal(t, 1.0, r.MaskingScore)
		assert.Empty(t, r.Issues)
	})

	t.Run("EmptyRequiredFieldNeitherListed", func(t *testing.T) {
		// A mandatory field that is structurally present but carries
		// neither value nor mask is not a violation.
		r := s.Score(Input{
			Personal: []extract.PersonalField{
				{Code: "A.2.1.1", Name: "Patient Initial", RequireMask: true, Weight: 10},
			},
			Summary: completeSummary(),
		})
		assert.Empty(t, r.MissingMask)
		assert.Empty(t, r.CorrectlyMasked)
		assert.Equal(t, 0.0, r.MaskingScore)
	})
}

func TestScoreMinimization(t *testing.T) {
	s := New(logger.Nop())

	r := s.Score(Input{
		Fields: []extract.FieldRecord{
			{Tag: "safetyreportid", Text: "PW-1"},
			{Tag: "patientinitial", Text: "JS"},
			{Tag: "reportercity", Text: "Springfield"},
			{Tag: "reporterstate", Text: "Wessex", Attrs: map[string]string{e2b.MaskAttr: "MSK"}},
		},
		Summary: completeSummary(),
	})

	// 2 unmasked optional elements out of 4 data-bearing ones.
	assert.InDelta(t, 0.5, r.MinimizationScore, 1e-9)
	assert.Contains(t, r.Issues, "Optional element 'patientinitial' contains personal data without MSK")
	assert.Contains(t, r.Issues, "Optional element 'reportercity' contains personal data without MSK")
	assert.Contains(t, r.Recommendations, "Review 2 optional elements for data minimization")
}

func TestScoreStructure(t *testing.T) {
	s := New(logger.Nop())

	t.Run("MissingReaction", func(t *testing.T) {
		sum := completeSummary()
		sum.Reactions = nil
		r := s.Score(Input{Summary: sum})

		assert.InDelta(t, 0.8, r.StructureScore, 1e-9)
		assert.Contains(t, r.MissingElements, "Reaction Information")
		assert.Contains(t, r.Issues, "Required element missing: Reaction Information")
	})

	t.Run("PatientSexAdvisoryOnly", func(t *testing.T) {
		sum := completeSummary()
		sum.Patient.Sex = ""
		r := s.Score(Input{Summary: sum})

		assert.Contains(t, r.MissingElements, "Patient Sex")
		assert.Contains(t, r.Issues, "Required element missing: Patient Sex")
		assert.Equal(t, 1.0, r.StructureScore)
	})

	t.Run("EverythingMissing", func(t *testing.T) {
		r := s.Score(Input{Summary: &extract.Summary{}})
		assert.InDelta(t, 0.2, r.StructureScore, 1e-9)
		assert.Len(t, r.MissingElements, 5)
	})
}

func TestScoreWeightingAndRounding(t *testing.T) {
	s := New(logger.Nop())

	// masking 0 (unmasked mandatory), minimization 2/3, structure 1.
	r := s.Score(Input{
		Fields: []extract.FieldRecord{
			{Tag: "safetyreportid", Text: "PW-1"},
			{Tag: "primarysourcereaction", Text: "Headache"},
			{Tag: "patientinitial", Text: "JS"},
		},
		Personal: []extract.PersonalField{
			{Code: "A.2.1.1", Name: "Patient Initial", HasValue: true, RequireMask: true, Weight: 10},
		},
		Summary: completeSummary(),
	})

	// 0*0.4 + (2/3)*0.3 + 1*0.3 = 0.5, rounded to 3 decimals.
	assert.Equal(t, 0.5, r.OverallScore)
	assert.Equal(t, LevelPoor, r.Level)
}

func TestRecommendationsUrgencyLines(t *testing.T) {
	s := New(logger.Nop())

	r := s.Score(Input{
		Summary: completeSummary(),
		Detections: []privacy.Detection{
			{Category: privacy.CategoryPatientInitials, Priority: privacy.PriorityHigh},
			{Category: privacy.CategoryPersonName, Priority: privacy.PriorityHigh},
			{Category: privacy.CategoryPhoneNumber, Priority: privacy.PriorityMedium},
			{Category: privacy.CategoryCityName, Priority: privacy.PriorityLow, HasMaskApplied: true},
		},
	})

	assert.Contains(t, r.Recommendations, "CRITICAL: Mask 2 high-priority PII fields immediately")
	assert.Contains(t, r.Recommendations, "IMPORTANT: Consider masking 1 medium-priority fields")
	assert.Contains(t, r.Recommendations, "Review 1 patient initials fields")
	assert.Contains(t, r.Recommendations, "Review 1 person name fields")
	assert.Contains(t, r.Recommendations, "Review 1 phone number fields")

	// The masked low-priority detection produces no review line.
	for _, rec := range r.Recommendations {
		assert.False(t, strings.Contains(rec, "city name"), "masked field must not demand review: %s", rec)
	}
}

func TestComprehensiveReviewLine(t *testing.T) {
	s := New(logger.Nop())

	fields := make([]extract.FieldRecord, 0, 8)
	for _, tag := range []string{"patientinitial", "reportercity", "reporterstate", "reporterpostcode", "reportertelephone", "reporterfax"} {
		fields = append(fields, extract.FieldRecord{Tag: tag, Text: "x"})
	}

	r := s.Score(Input{Fields: fields, Summary: completeSummary()})
	require.Greater(t, len(r.Issues), 5)
	assert.Contains(t, r.Recommendations, "Consider comprehensive review of E2B R3 file before submission")
}
