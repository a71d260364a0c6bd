package privacy

// Category is a closed enumeration of PII categories.
type Category string

const (
	CategoryPatientInitials Category = "patient_initials"
	CategoryEmailAddress    Category = "email_address"
	CategoryPhoneNumber     Category = "phone_number"
	CategoryPostalCode      Category = "postal_code"
	CategoryDateOfBirth     Category = "date_of_birth"
	CategoryPersonName      Category = "person_name"
	CategoryAddress         Category = "address"
	CategoryCityName        Category = "city_name"
	CategoryGeneric         Category = "generic_personal_data"
)

// Priority ranks how urgently a detected field should be masked.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the numeric ordering of a priority for sorting.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Sentinel field codes for detections that did not resolve to a regulated
// element code.
const (
	CodePatternDetected = "pattern-detected"
	CodeGeneric         = "generic"
)

// Detection methods, carried on every detection so degraded enhanced
// classification stays observable without ever being an error.
const (
	MethodDeterministic = "deterministic"
	MethodEnhanced      = "enhanced"
)

// Detection is the classification outcome for one field. Recomputed per run,
// never persisted.
type Detection struct {
	Tag                string   `json:"tag"`
	Text               string   `json:"text"`
	Address            string   `json:"address"`
	Category           Category `json:"category"`
	Description        string   `json:"description"`
	Priority           Priority `json:"priority"`
	Confidence         float64  `json:"confidence"`
	Code               string   `json:"code"`
	Method             string   `json:"method"`
	HasMaskApplied     bool     `json:"hasMaskApplied"`
	SelectedForMasking bool     `json:"selectedForMasking"`
}

// Stats summarizes a detection run for report rendering.
type Stats struct {
	Total              int     `json:"total"`
	HighPriority       int     `json:"highPriority"`
	MediumPriority     int     `json:"mediumPriority"`
	LowPriority        int     `json:"lowPriority"`
	AlreadyMasked      int     `json:"alreadyMasked"`
	SelectedForMasking int     `json:"selectedForMasking"`
	AvgConfidence      float64 `json:"avgConfidence"`
}
