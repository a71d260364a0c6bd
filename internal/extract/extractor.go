// Package extract walks a validated document tree and produces the
// projections the classifier and scorer consume: every text-bearing leaf,
// the curated structural summary, and the located personal-data fields.
package extract

import (
	"github.com/pharmwatch/icsr-sentinel/internal/e2b"
	"github.com/pharmwatch/icsr-sentinel/internal/xmltree"
)

// AllFields returns one record per element whose trimmed text is non-empty,
// in document order. Elements that only contain child elements are skipped.
func AllFields(doc *xmltree.Document) []FieldRecord {
	var fields []FieldRecord
	doc.Walk(func(n *xmltree.Node) bool {
		if n.HasText() {
			fields = append(fields, FieldRecord{
				Tag:     n.Tag,
				Text:    n.TrimmedText(),
				Address: doc.Address(n),
				Attrs:   n.AttrMap(),
				Masked:  e2b.IsMasked(n),
			})
		}
		return true
	})
	return fields
}

// StructuralSummary extracts the curated header, report, patient and
// reaction projections. Every field is optional; absent anchors produce
// zero-valued sections.
func StructuralSummary(doc *xmltree.Document) *Summary {
	s := &Summary{}

	if h := doc.FindFirst("ichicsrmessageheader"); h != nil {
		s.Header = MessageHeader{
			MessageType:   childText(h, "messagetype"),
			FormatVersion: childText(h, "messageformatversion"),
			FormatRelease: childText(h, "messageformatrelease"),
			MessageNumber: childText(h, "messagenumb"),
			SenderID:      childText(h, "messagesenderidentifier"),
			ReceiverID:    childText(h, "messagereceiveridentifier"),
			MessageDate:   childText(h, "messagedateformat"),
		}
	}

	if r := doc.FindFirst("safetyreport"); r != nil {
		s.Report = SafetyReport{
			Version:              childText(r, "safetyreportversion"),
			ReportID:             childText(r, "safetyreportid"),
			PrimarySourceCountry: childText(r, "primarysourcecountry"),
			OccurCountry:         childText(r, "occurcountry"),
			TransmissionDate:     childText(r, "transmissiondateformat"),
			ReceiptDate:          childText(r, "receiptdateformat"),
		}
	}

	if p := doc.FindFirst("patient"); p != nil {
		s.Patient = PatientData{
			Initial:   childText(p, "patientinitial"),
			BirthDate: childText(p, "patientbirthdateformat"),
			Age:       childText(p, "patientagenumb"),
			AgeUnit:   childText(p, "patientageunit"),
			Sex:       childText(p, "patientsex"),
			Weight:    childText(p, "patientweight"),
			Height:    childText(p, "patientheight"),
		}
	}

	for _, r := range doc.FindAll("reaction") {
		s.Reactions = append(s.Reactions, Reaction{
			PrimarySourceReaction: childText(r, "primarysourcereaction"),
			MeddraVersion:         childText(r, "reactionmeddraversionllt"),
			MeddraPT:              childText(r, "reactionmeddrapt"),
			MeddraLLT:             childText(r, "reactionmeddrallt"),
			Outcome:               childText(r, "reactionoutcome"),
			StartDate:             childText(r, "reactionstartdateformat"),
			EndDate:               childText(r, "reactionenddateformat"),
		})
	}

	return s
}

// PersonalDataFields locates every occurrence of the mapping table's
// regulated fields. The anchored path is tried first; when the anchor tag is
// structurally absent the lookup falls back to a bare last-tag search. This
// coarse fallback mirrors the established matching behavior and is known to
// over-report on unusual trees.
func PersonalDataFields(doc *xmltree.Document, mappings []e2b.PersonalDataMapping) []PersonalField {
	var fields []PersonalField
	for _, m := range mappings {
		for _, n := range findByPath(doc, m.Path) {
			fields = append(fields, PersonalField{
				Code:        m.Code,
				Name:        m.Name,
				Tag:         n.Tag,
				Address:     doc.Address(n),
				HasValue:    n.HasText(),
				HasMask:     e2b.IsMasked(n),
				RequireMask: m.RequireMask,
				Weight:      m.Weight,
			})
		}
	}
	return fields
}

// findByPath resolves an anchored tag path: every document node matching the
// anchor tag, then direct children along the remaining components.
func findByPath(doc *xmltree.Document, path []string) []*xmltree.Node {
	if len(path) == 0 {
		return nil
	}

	anchors := doc.FindAll(path[0])
	if len(anchors) == 0 {
		// Anchor missing entirely: bare last-tag fallback.
		return doc.FindAll(path[len(path)-1])
	}

	nodes := anchors
	for _, tag := range path[1:] {
		var next []*xmltree.Node
		for _, n := range nodes {
			for _, c := range n.Children {
				if c.Tag == tag {
					next = append(next, c)
				}
			}
		}
		nodes = next
	}
	return nodes
}

// childText returns the trimmed text of the first direct child with the
// given tag, or the empty string.
func childText(n *xmltree.Node, tag string) string {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c.TrimmedText()
		}
	}
	return ""
}
