package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/pharmwatch/icsr-sentinel/internal/config"
	"github.com/pharmwatch/icsr-sentinel/internal/e2b"
	"github.com/pharmwatch/icsr-sentinel/internal/logger"
	"github.com/pharmwatch/icsr-sentinel/internal/privacy"
)

const validReport = `<ichicsrmessage>
  <ichicsrmessageheader>
    <messagetype>ichicsr</messagetype>
    <messageformatversion>R3</messageformatversion>
  </ichicsrmessageheader>
  <safetyreport>
    <safetyreportid>PW-2026-0001</safetyreportid>
    <patient>
      <patientinitial>JS</patientinitial>
      <patientsex>1</patientsex>
    </patient>
    <reaction>
      <primarysourcereaction>Headache</primarysourcereaction>
    </reaction>
  </safetyreport>
</ichicsrmessage>`

const invalidReport = `<ichicsrmessage>
  <safetyreport>
    <safetyreportid>PW-2026-0002</safetyreportid>
  </safetyreport>
</ichicsrmessage>`

func newTestAnalyzer() *Analyzer {
	cfg := config.AnalysisConfig{MaxDocumentSize: 1 << 20, BatchWorkers: 2}
	return New(cfg, logger.Nop(), privacy.New(logger.Nop()))
}

func TestAnalyze(t *testing.T) {
	a := newTestAnalyzer()

	analysis, err := a.Analyze(context.Background(), "valid.xml", []byte(validReport))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if analysis.Format != e2b.FormatE2B {
		t.Errorf("Unexpected format: %s", analysis.Format)
	}
	if analysis.Validation == nil || !analysis.Validation.Valid {
		t.Fatalf("Expected valid document: %+v", analysis.Validation)
	}
	if analysis.Compliance == nil {
		t.Fatal("Missing compliance result")
	}
	if analysis.Summary == nil || analysis.Summary.Report.ReportID != "PW-2026-0001" {
		t.Errorf("Unexpected summary: %+v", analysis.Summary)
	}

	// The unmasked patient initial must be detected and selected.
	found := false
	for _, d := range analysis.Detections {
		if d.Tag == "patientinitial" && d.SelectedForMasking {
			found = true
		}
	}
	if !found {
		t.Error("Patient initial not detected for masking")
	}
	if analysis.PIIStats.Total != len(analysis.Detections) {
		t.Errorf("Stats disagree with detections: %+v", analysis.PIIStats)
	}
}

func TestAnalyzeInvalidStructure(t *testing.T) {
	a := newTestAnalyzer()

	analysis, err := a.Analyze(context.Background(), "invalid.xml", []byte(invalidReport))
	if !errors.Is(err, ErrInvalidStructure) {
		t.Fatalf("Expected ErrInvalidStructure, got %v", err)
	}
	if analysis == nil || analysis.Validation == nil {
		t.Fatal("Failed validation must still report detail")
	}
	if analysis.Validation.Valid {
		t.Error("Validation unexpectedly passed")
	}
	if analysis.Compliance != nil {
		t.Error("Invalid document must not be scored")
	}
}

func TestAnalyzeMalformed(t *testing.T) {
	a := newTestAnalyzer()
	if _, err := a.Analyze(context.Background(), "broken.xml", []byte(`<broken`)); err == nil {
		t.Error("Expected parse error")
	}
}

func TestAnalyzeTooLarge(t *testing.T) {
	cfg := config.AnalysisConfig{MaxDocumentSize: 16, BatchWorkers: 1}
	a := New(cfg, logger.Nop(), privacy.New(logger.Nop()))

	if _, err := a.Analyze(context.Background(), "big.xml", []byte(validReport)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	a := newTestAnalyzer()

	docs := []Document{
		{Name: "one.xml", Data: []byte(validReport)},
		{Name: "two.xml", Data: []byte(validReport)},
		{Name: "broken.xml", Data: []byte(`<broken`)},
	}

	outcomes := a.AnalyzeBatch(context.Background(), docs)
	if len(outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(outcomes))
	}

	ok, failed := 0, 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			if o.Name != "broken.xml" {
				t.Errorf("Unexpected failure for %s: %v", o.Name, o.Err)
			}
			continue
		}
		ok++
	}
	if ok != 2 || failed != 1 {
		t.Errorf("ok = %d, failed = %d", ok, failed)
	}

	summary := Summarize(outcomes)
	if summary.Total != 3 || summary.Succeeded != 2 || summary.Failed != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if summary.AvgScore <= 0 {
		t.Errorf("Average score not computed: %+v", summary)
	}
}

func TestLooksLikeReport(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"ValidReport", []byte(validReport), true},
		{"LeadingWhitespace", []byte("\n  " + validReport), true},
		{"UnrelatedXML", []byte(`<html><body/></html>`), false},
		{"NotXML", []byte(`safetyreport without markup`), false},
		{"NonUTF8", []byte{'<', 0xff, 0xfe}, false},
		{"Empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeReport(tt.data); got != tt.want {
				t.Errorf("LooksLikeReport = %v, want %v", got, tt.want)
			}
		})
	}
}
