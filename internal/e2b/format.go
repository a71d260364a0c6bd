// Package e2b holds the format-specific knowledge for pharmacovigilance
// adverse event reports: format detection for the two sibling schemas,
// structural validation, and the static personal-data mapping tables.
package e2b

import (
	"strings"

	"github.com/pharmwatch/icsr-sentinel/internal/xmltree"
)

// Format identifies which of the two sibling report schemas a document uses.
type Format string

const (
	// FormatE2B is the modern E2B R3 message format.
	FormatE2B Format = "e2b"
	// FormatICSR is the legacy ICH ICSR v2.1 message format.
	FormatICSR Format = "icsr"
)

// Reserved masking vocabulary shared between the classifier-read and
// masker-write paths. Substituting different constants would break
// interoperability with receivers expecting the standard sentinel.
const (
	// MaskAttr is the attribute carrying the null flavor of an element.
	MaskAttr = "nullFlavor"
	// MaskSentinel marks a field as redacted-with-reason rather than
	// genuinely absent.
	MaskSentinel = "MSK"
)

const (
	legacyRootTag     = "ichicsr"
	versionTag        = "messageformatversion"
	legacyVersionMark = "2.1"
	modernVersion     = "R3"
)

// DetectFormat classifies a document as modern or legacy. A legacy root tag
// wins outright; otherwise a message format version containing the legacy
// marker decides. Evaluated once per document, no backtracking.
func DetectFormat(doc *xmltree.Document) Format {
	if doc.Root().Tag == legacyRootTag {
		return FormatICSR
	}
	if v := doc.FindFirst(versionTag); v != nil && strings.Contains(v.TrimmedText(), legacyVersionMark) {
		return FormatICSR
	}
	return FormatE2B
}

// IsMasked reports whether a node carries the reserved mask sentinel.
func IsMasked(n *xmltree.Node) bool {
	v, ok := n.Attr(MaskAttr)
	return ok && v == MaskSentinel
}
