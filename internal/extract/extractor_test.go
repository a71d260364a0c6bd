package extract

import (
	"testing"

	"github.com/pharmwatch/icsr-sentinel/internal/e2b"
	"github.com/pharmwatch/icsr-sentinel/internal/xmltree"
)

const sampleReport = `<ichicsrmessage>
  <ichicsrmessageheader>
    <messagetype>ichicsr</messagetype>
    <messageformatversion>R3</messageformatversion>
    <messagesenderidentifier>PHARMWATCH</messagesenderidentifier>
  </ichicsrmessageheader>
  <safetyreport>
    <safetyreportid>PW-2026-0001</safetyreportid>
    <patient>
      <patientinitial>JS</patientinitial>
      <patientsex>1</patientsex>
    </patient>
    <reaction>
      <primarysourcereaction>Headache</primarysourcereaction>
      <reactionoutcome>6</reactionoutcome>
    </reaction>
    <reaction>
      <primarysourcereaction>Nausea</primarysourcereaction>
    </reaction>
    <primarysource>
      <reportergivename>John</reportergivename>
      <reporterfamilyname nullFlavor="MSK"/>
    </primarysource>
  </safetyreport>
</ichicsrmessage>`

func mustParse(t *testing.T, input string) *xmltree.Document {
	t.Helper()
	doc, err := xmltree.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func TestAllFields(t *testing.T) {
	fields := AllFields(mustParse(t, sampleReport))

	// 10 text-bearing leaves; the masked reporterfamilyname has no text and
	// must not appear.
	if len(fields) != 10 {
		t.Fatalf("Expected 10 fields, got %d", len(fields))
	}

	if fields[0].Tag != "messagetype" || fields[0].Text != "ichicsr" {
		t.Errorf("Unexpected first field: %+v", fields[0])
	}

	for _, f := range fields {
		if f.Tag == "reporterfamilyname" {
			t.Error("Textless masked element must not be extracted")
		}
		if f.Text == "" || f.Address == "" {
			t.Errorf("Incomplete field record: %+v", f)
		}
	}
}

func TestStructuralSummary(t *testing.T) {
	s := StructuralSummary(mustParse(t, sampleReport))

	if s.Header.MessageType != "ichicsr" || s.Header.FormatVersion != "R3" {
		t.Errorf("Unexpected header: %+v", s.Header)
	}
	if s.Header.SenderID != "PHARMWATCH" {
		t.Errorf("Unexpected sender: %q", s.Header.SenderID)
	}
	if s.Report.ReportID != "PW-2026-0001" {
		t.Errorf("Unexpected report ID: %q", s.Report.ReportID)
	}
	if s.Patient.Initial != "JS" || s.Patient.Sex != "1" {
		t.Errorf("Unexpected patient: %+v", s.Patient)
	}
	if len(s.Reactions) != 2 {
		t.Fatalf("Expected 2 reactions, got %d", len(s.Reactions))
	}
	if s.Reactions[0].PrimarySourceReaction != "Headache" || s.Reactions[0].Outcome != "6" {
		t.Errorf("Unexpected first reaction: %+v", s.Reactions[0])
	}
	if s.Reactions[1].PrimarySourceReaction != "Nausea" {
		t.Errorf("Unexpected second reaction: %+v", s.Reactions[1])
	}
}

func TestStructuralSummaryEmptyDocument(t *testing.T) {
	s := StructuralSummary(mustParse(t, `<report/>`))
	if s.Header.MessageType != "" || s.Report.ReportID != "" || len(s.Reactions) != 0 {
		t.Errorf("Empty document must produce a zero-valued summary: %+v", s)
	}
}

func TestPersonalDataFields(t *testing.T) {
	fields := PersonalDataFields(mustParse(t, sampleReport), e2b.MappingFor(e2b.FormatE2B))

	byCode := map[string]PersonalField{}
	for _, f := range fields {
		byCode[f.Code] = f
	}

	initial, ok := byCode["A.2.1.1"]
	if !ok {
		t.Fatal("Patient initial not located")
	}
	if !initial.HasValue || initial.HasMask || !initial.RequireMask || initial.Weight != 10 {
		t.Errorf("Unexpected patient initial field: %+v", initial)
	}

	given, ok := byCode["A.3.1.2"]
	if !ok {
		t.Fatal("Reporter given name not located")
	}
	if !given.HasValue || given.HasMask {
		t.Errorf("Unexpected reporter given name field: %+v", given)
	}

	family, ok := byCode["A.3.1.3"]
	if !ok {
		t.Fatal("Reporter family name not located")
	}
	if family.HasValue || !family.HasMask {
		t.Errorf("Masked family name must have mask and no value: %+v", family)
	}

	// Fields absent from the document produce no records at all.
	if _, ok := byCode["A.3.1.11"]; ok {
		t.Error("Absent reporter email must not be reported")
	}
}

func TestPersonalDataFieldsBareTagFallback(t *testing.T) {
	// No patient anchor anywhere: the lookup falls back to a bare last-tag
	// search and still finds the initial.
	doc := mustParse(t, `<report><details><patientinitial>AB</patientinitial></details></report>`)
	fields := PersonalDataFields(doc, e2b.MappingFor(e2b.FormatE2B))

	found := false
	for _, f := range fields {
		if f.Code == "A.2.1.1" && f.HasValue {
			found = true
		}
	}
	if !found {
		t.Error("Bare last-tag fallback did not locate the patient initial")
	}
}
