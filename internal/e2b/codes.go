package e2b

// elementCodeNames maps E2B R3 element codes to their regulatory display
// names, used by report rendering layers.
var elementCodeNames = map[string]string{
	"A.1.0.1":  "Sender Safety Report Unique Identifier",
	"A.1.1":    "Date of Creation",
	"A.1.2":    "Type of Report",
	"A.1.3":    "Date of Most Recent Information",
	"A.1.4":    "Additional Document Available",
	"A.1.5.1":  "Fulfil Expedited Reporting Criteria",
	"A.1.5.2":  "Fulfil Expedited Reporting Criteria",
	"A.1.6":    "Other Case Identifiers in Previous Transmissions",
	"A.1.7":    "Linked Report",
	"A.1.8.1":  "Report Classification for Submission",
	"A.1.8.2":  "Report Classification for Submission",
	"A.1.9":    "Geographic Location(s) for Regulatory Purpose",
	"A.1.10.1": "Worldwide Unique Case Identification Number",
	"A.1.10.2": "First Sender of this Case",
	"A.1.11.1": "Report Nullification/Amendment",
	"A.1.11.2": "Reason for Nullification/Amendment",
	"A.1.12":   "Case Safety Report Version",
	"A.1.13":   "Other Case Identifiers",
	"A.2.1.1":  "Patient (name or initials)",
	"A.2.1.1a": "Patient Identifier",
	"A.2.1.1b": "GP Medical Record Number",
	"A.2.1.1c": "Specialist Record Number",
	"A.2.1.1d": "Hospital Record Number",
	"A.2.1.1e": "Investigation Number",
	"A.2.1.2":  "Date of Birth",
	"A.2.1.3":  "Age Information",
	"A.2.1.4":  "Patient Sex",
	"A.2.2":    "Medical History",
	"A.2.3":    "Concurrent Conditions",
	"A.3.1.1":  "Reporter Country",
	"A.3.1.2":  "Reporter Name",
	"A.3.1.3":  "Reporter Address",
	"A.3.1.4":  "Reporter Telephone",
	"A.3.1.5":  "Reporter Fax",
	"A.3.1.6":  "Reporter Email",
	"A.3.2.1":  "Reporter Qualification",
	"A.3.2.2":  "Primary Reporter",
	"A.3.2.3":  "Literature Reference",
	"A.3.3":    "Study Identification",
}

// CodeDescription returns the regulatory display name for an element code.
func CodeDescription(code string) (string, bool) {
	name, ok := elementCodeNames[code]
	return name, ok
}
