package privacy

import (
	"context"
	"testing"

	"github.com/pharmwatch/icsr-sentinel/internal/extract"
	"github.com/pharmwatch/icsr-sentinel/internal/logger"
)

func TestDeterministic(t *testing.T) {
	tests := []struct {
		name           string
		tag            string
		text           string
		wantDetected   bool
		wantCategory   Category
		wantPriority   Priority
		wantConfidence float64
		wantCode       string
	}{
		{
			name: "ExactTagPatternMatch", tag: "patientinitial", text: "JS",
			wantDetected: true, wantCategory: CategoryPatientInitials,
			wantPriority: PriorityHigh, wantConfidence: 0.95, wantCode: "A.2.1.1",
		},
		{
			name: "ExactTagPatternMismatch", tag: "patientinitial", text: "john smith",
			wantDetected: true, wantCategory: CategoryPatientInitials,
			wantPriority: PriorityHigh, wantConfidence: 0.70, wantCode: "A.2.1.1",
		},
		{
			name: "ExactTagCaseInsensitive", tag: "PatientInitial", text: "JS",
			wantDetected: true, wantCategory: CategoryPatientInitials,
			wantPriority: PriorityHigh, wantConfidence: 0.95, wantCode: "A.2.1.1",
		},
		{
			name: "UnknownTagEmailPattern", tag: "somefield", text: "jane.doe@example.org",
			wantDetected: true, wantCategory: CategoryEmailAddress,
			wantPriority: PriorityMedium, wantConfidence: 0.60, wantCode: CodePatternDetected,
		},
		{
			name: "UnknownTagDatePattern", tag: "somefield", text: "12/03/1984",
			wantDetected: true, wantCategory: CategoryDateOfBirth,
			wantPriority: PriorityMedium, wantConfidence: 0.60, wantCode: CodePatternDetected,
		},
		{
			name: "KeywordHeuristic", tag: "patientidentifier", text: "@@@!!!###$$$",
			wantDetected: true, wantCategory: CategoryGeneric,
			wantPriority: PriorityLow, wantConfidence: 0.40, wantCode: CodeGeneric,
		},
		{
			name: "NotPII", tag: "reactionoutcome", text: "@@@!!!###$$$",
			wantDetected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Deterministic(tt.tag, tt.text)
			if ok != tt.wantDetected {
				t.Fatalf("detected = %v, want %v", ok, tt.wantDetected)
			}
			if !ok {
				return
			}
			if d.Category != tt.wantCategory {
				t.Errorf("category = %s, want %s", d.Category, tt.wantCategory)
			}
			if d.Priority != tt.wantPriority {
				t.Errorf("priority = %s, want %s", d.Priority, tt.wantPriority)
			}
			if d.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %f, want %f", d.Confidence, tt.wantConfidence)
			}
			if d.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", d.Code, tt.wantCode)
			}
			if d.Method != MethodDeterministic {
				t.Errorf("method = %s, want %s", d.Method, MethodDeterministic)
			}
		})
	}
}

func TestDetectFieldsSorting(t *testing.T) {
	c := New(logger.Nop())

	fields := []extract.FieldRecord{
		{Tag: "reportercity", Text: "Springfield", Address: "//a"},       // low, 0.95
		{Tag: "patientinitial", Text: "JS", Address: "//b"},              // high, 0.95
		{Tag: "reportertelephone", Text: "not a number", Address: "//c"}, // medium, 0.70
		{Tag: "reporterfax", Text: "+31 20 1234567", Address: "//d"},     // medium, 0.95
		{Tag: "reactionoutcome", Text: "@@@", Address: "//e"},            // not PII
	}

	detections := c.DetectFields(context.Background(), fields)
	if len(detections) != 4 {
		t.Fatalf("Expected 4 detections, got %d", len(detections))
	}

	// Priority rank descending, then confidence descending.
	wantTags := []string{"patientinitial", "reporterfax", "reportertelephone", "reportercity"}
	for i, want := range wantTags {
		if detections[i].Tag != want {
			t.Errorf("position %d: got %s, want %s", i, detections[i].Tag, want)
		}
	}

	for _, d := range detections {
		if d.HasMaskApplied {
			t.Errorf("Unmasked field reported as masked: %+v", d)
		}
		if !d.SelectedForMasking {
			t.Errorf("Unmasked field not selected for masking: %+v", d)
		}
	}
}

func TestDetectFieldsMaskedField(t *testing.T) {
	c := New(logger.Nop())

	detections := c.DetectFields(context.Background(), []extract.FieldRecord{
		{Tag: "patientinitial", Text: "JS", Masked: true},
	})
	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(detections))
	}
	if !detections[0].HasMaskApplied || detections[0].SelectedForMasking {
		t.Errorf("Masked field must not be selected for masking: %+v", detections[0])
	}
}

func TestSummarize(t *testing.T) {
	detections := []Detection{
		{Priority: PriorityHigh, Confidence: 0.95, SelectedForMasking: true},
		{Priority: PriorityHigh, Confidence: 0.70, HasMaskApplied: true},
		{Priority: PriorityMedium, Confidence: 0.60, SelectedForMasking: true},
		{Priority: PriorityLow, Confidence: 0.40, SelectedForMasking: true},
	}

	s := Summarize(detections)
	if s.Total != 4 || s.HighPriority != 2 || s.MediumPriority != 1 || s.LowPriority != 1 {
		t.Errorf("Unexpected priority counts: %+v", s)
	}
	if s.AlreadyMasked != 1 || s.SelectedForMasking != 3 {
		t.Errorf("Unexpected masking counts: %+v", s)
	}
	want := (0.95 + 0.70 + 0.60 + 0.40) / 4
	if s.AvgConfidence != want {
		t.Errorf("AvgConfidence = %f, want %f", s.AvgConfidence, want)
	}

	if s := Summarize(nil); s.Total != 0 || s.AvgConfidence != 0 {
		t.Errorf("Empty run must produce zero stats: %+v", s)
	}
}
