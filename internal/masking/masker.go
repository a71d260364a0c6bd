// Package masking applies MSK null flavors to selected document fields. The
// transform only ever sets the mask attribute and clears text; it never
// removes, reorders or renames nodes, so a masked document keeps its shape.
package masking

import (
	"strings"

	"github.com/pharmwatch/icsr-sentinel/internal/e2b"
	"github.com/pharmwatch/icsr-sentinel/internal/privacy"
	"github.com/pharmwatch/icsr-sentinel/internal/xmltree"
)

// Selection names one field to mask by tag and current text. Matching is
// coarse: every node with an equal tag and equal trimmed text is masked,
// duplicates included.
type Selection struct {
	Tag   string `json:"tag"`
	Text  string `json:"text"`
	Apply bool   `json:"apply"`
}

// SelectionsFromDetections converts a detection run into mask selections,
// honoring each detection's SelectedForMasking flag.
func SelectionsFromDetections(detections []privacy.Detection) []Selection {
	sels := make([]Selection, 0, len(detections))
	for _, d := range detections {
		sels = append(sels, Selection{Tag: d.Tag, Text: d.Text, Apply: d.SelectedForMasking})
	}
	return sels
}

// Apply masks every node matching an applied selection and returns the number
// of nodes masked. Selections whose text no longer appears in the document
// are skipped silently. Applying the same selections twice is a no-op the
// second time: masking clears the text, so nothing matches again.
func Apply(doc *xmltree.Document, selections []Selection) int {
	masked := 0
	for _, sel := range selections {
		if !sel.Apply {
			continue
		}
		tag := strings.ToLower(sel.Tag)
		doc.Walk(func(n *xmltree.Node) bool {
			if strings.ToLower(n.Tag) == tag && n.TrimmedText() == sel.Text {
				n.SetAttr(e2b.MaskAttr, e2b.MaskSentinel)
				n.ClearText()
				masked++
			}
			return true
		})
	}
	return masked
}

// ApplyToBytes parses a raw document, masks it and serializes the result. On
// parse failure the error is returned; on serialization failure the original
// input is returned unchanged so callers never receive a half-written
// document.
func ApplyToBytes(data []byte, selections []Selection) ([]byte, int, error) {
	doc, err := xmltree.Parse(data)
	if err != nil {
		return nil, 0, err
	}

	masked := Apply(doc, selections)

	out, err := doc.Serialize()
	if err != nil {
		return data, 0, err
	}
	return out, masked, nil
}
