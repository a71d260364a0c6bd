package e2b

import (
	"fmt"
	"strings"

	"github.com/pharmwatch/icsr-sentinel/internal/xmltree"
)

// ValidationResult reports the outcome of structural validation. Errors fail
// validation and stop the pipeline; warnings are advisory only.
type ValidationResult struct {
	Valid         bool     `json:"valid"`
	Format        Format   `json:"format"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	RequiredFound int      `json:"requiredFound"`
	RequiredTotal int      `json:"requiredTotal"`
}

// Mandatory descendant tags per format. The legacy format does not require a
// reaction element.
var (
	requiredE2B  = []string{"ichicsrmessageheader", "safetyreport", "patient", "reaction"}
	requiredICSR = []string{"ichicsrmessageheader", "safetyreport", "patient"}
)

// Validate checks the mandatory structural elements for the document's
// detected format. Downstream extraction and scoring must only proceed when
// the result is Valid.
func Validate(doc *xmltree.Document) *ValidationResult {
	format := DetectFormat(doc)
	if format == FormatICSR {
		return validateICSR(doc)
	}
	return validateE2B(doc)
}

func validateE2B(doc *xmltree.Document) *ValidationResult {
	r := &ValidationResult{
		Format:        FormatE2B,
		Errors:        []string{},
		Warnings:      []string{},
		RequiredTotal: len(requiredE2B),
	}

	var missing []string
	for _, tag := range requiredE2B {
		if doc.FindFirst(tag) == nil {
			missing = append(missing, tag)
		}
	}
	if len(missing) > 0 {
		r.Errors = append(r.Errors, "Missing required elements: "+strings.Join(missing, ", "))
	}
	r.RequiredFound = len(requiredE2B) - len(missing)

	if doc.Root().Tag != "ichicsrmessageheader" && doc.FindFirst("ichicsrmessageheader") == nil {
		r.Errors = append(r.Errors, "Missing ICH ICSR message header")
	}

	reports := doc.FindAll("safetyreport")
	if len(reports) == 0 {
		r.Errors = append(r.Errors, "No safety reports found")
	} else if len(reports) > 1 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Multiple safety reports found: %d", len(reports)))
	}

	if !hasNamespaceHint(doc) {
		r.Warnings = append(r.Warnings, "ICH namespace not found - may indicate non-standard format")
	}

	if v := doc.FindFirst(versionTag); v != nil && v.TrimmedText() != modernVersion {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Message format version is not %s: %s", modernVersion, v.TrimmedText()))
	}

	r.Valid = len(r.Errors) == 0
	return r
}

func validateICSR(doc *xmltree.Document) *ValidationResult {
	r := &ValidationResult{
		Format:        FormatICSR,
		Errors:        []string{},
		Warnings:      []string{},
		RequiredTotal: len(requiredICSR),
	}

	if doc.Root().Tag != legacyRootTag {
		r.Errors = append(r.Errors, fmt.Sprintf("Root element should be '%s' for ICH ICSR v2.1 format", legacyRootTag))
	}

	var missing []string
	for _, tag := range requiredICSR {
		if doc.FindFirst(tag) == nil {
			missing = append(missing, tag)
		}
	}
	if len(missing) > 0 {
		r.Errors = append(r.Errors, "Missing required elements: "+strings.Join(missing, ", "))
	}
	r.RequiredFound = len(requiredICSR) - len(missing)

	if v := doc.FindFirst(versionTag); v == nil {
		r.Warnings = append(r.Warnings, "Message format version not found")
	} else if v.TrimmedText() != legacyVersionMark {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Expected version %s, found: %s", legacyVersionMark, v.TrimmedText()))
	}

	reports := doc.FindAll("safetyreport")
	if len(reports) == 0 {
		r.Errors = append(r.Errors, "No safety reports found")
	} else if len(reports) > 1 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Multiple safety reports found: %d", len(reports)))
	}

	r.Valid = len(r.Errors) == 0
	return r
}

// hasNamespaceHint looks for any tag carrying the "ich" marker. Reports
// exported by standard tooling always carry it somewhere in the vocabulary.
func hasNamespaceHint(doc *xmltree.Document) bool {
	found := false
	doc.Walk(func(n *xmltree.Node) bool {
		if strings.Contains(strings.ToLower(n.Tag), "ich") {
			found = true
			return false
		}
		return true
	})
	return found
}
