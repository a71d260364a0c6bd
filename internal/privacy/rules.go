package privacy

import "regexp"

// CategoryRule couples a PII category with its content pattern, declared
// priority and the regulated element codes it usually appears under.
// Declaration order is significant: content-pattern fallback tests rules in
// this order and the first match wins.
type CategoryRule struct {
	Category    Category
	Pattern     *regexp.Regexp
	Description string
	Priority    Priority
	Codes       []string
}

var categoryRules = []CategoryRule{
	{
		Category:    CategoryPatientInitials,
		Pattern:     regexp.MustCompile(`^[A-Z]{1,3}$`),
		Description: "Patient initials (1-3 uppercase letters)",
		Priority:    PriorityHigh,
		Codes:       []string{"A.2.1.1"},
	},
	{
		Category:    CategoryEmailAddress,
		Pattern:     regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`),
		Description: "Email address",
		Priority:    PriorityHigh,
		Codes:       []string{"A.3.1.6", "A.3.1.11"},
	},
	{
		Category:    CategoryPhoneNumber,
		Pattern:     regexp.MustCompile(`^\+?[\d\s\-()]{7,15}$`),
		Description: "Phone/fax number",
		Priority:    PriorityMedium,
		Codes:       []string{"A.3.1.4", "A.3.1.5", "A.3.1.9", "A.3.1.10"},
	},
	{
		Category:    CategoryPostalCode,
		Pattern:     regexp.MustCompile(`^[\w\s\-]{3,10}$`),
		Description: "Postal/ZIP code",
		Priority:    PriorityMedium,
		Codes:       []string{"A.3.1.7"},
	},
	{
		Category:    CategoryDateOfBirth,
		Pattern:     regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4}|\d{2}-\d{2}-\d{4})$`),
		Description: "Date of birth",
		Priority:    PriorityHigh,
		Codes:       []string{"A.2.1.2", "A.2.1.4"},
	},
	{
		Category:    CategoryPersonName,
		Pattern:     regexp.MustCompile(`^[A-Z][a-z]+(\s[A-Z][a-z]+)*$`),
		Description: "Person name (First/Last name)",
		Priority:    PriorityHigh,
		Codes:       []string{"A.3.1.2", "A.3.1.3"},
	},
	{
		Category:    CategoryAddress,
		Pattern:     regexp.MustCompile(`\d+.*([Ss]treet|[Aa]venue|[Rr]oad|[Bb]oulevard|[Ll]ane|[Dd]rive)`),
		Description: "Street address",
		Priority:    PriorityMedium,
		Codes:       []string{"A.3.1.4"},
	},
	{
		Category:    CategoryCityName,
		Pattern:     regexp.MustCompile(`^[A-Z][a-zA-Z\s\-]{2,}$`),
		Description: "City name",
		Priority:    PriorityLow,
		Codes:       []string{"A.3.1.5"},
	},
}

// ruleFor returns the declared rule for a category.
func ruleFor(c Category) (CategoryRule, bool) {
	for _, r := range categoryRules {
		if r.Category == c {
			return r, true
		}
	}
	return CategoryRule{}, false
}

// elementCategories maps lower-cased element names to their PII category.
// Covers both the modern and legacy tag vocabularies.
var elementCategories = map[string]Category{
	// Patient block
	"patientinitial":         CategoryPatientInitials,
	"patientbirthdateformat": CategoryDateOfBirth,
	"patientbirthdate":       CategoryDateOfBirth,

	// Reporter block
	"reportergivename":     CategoryPersonName,
	"reporterfamilyname":   CategoryPersonName,
	"reportermiddlename":   CategoryPersonName,
	"reporteraddress":      CategoryAddress,
	"reporterstreet":       CategoryAddress,
	"reportercity":         CategoryCityName,
	"reporterstate":        CategoryCityName,
	"reporterpostcode":     CategoryPostalCode,
	"reportertelephone":    CategoryPhoneNumber,
	"reporterfax":          CategoryPhoneNumber,
	"reporteremailaddress": CategoryEmailAddress,

	// Sender block (legacy format)
	"sendergivename":      CategoryPersonName,
	"senderfamilyname":    CategoryPersonName,
	"sendermiddlename":    CategoryPersonName,
	"senderstreetaddress": CategoryAddress,
	"sendercity":          CategoryCityName,
	"senderstate":         CategoryCityName,
	"senderpostcode":      CategoryPostalCode,
	"sendertel":           CategoryPhoneNumber,
	"senderfax":           CategoryPhoneNumber,
	"senderemailaddress":  CategoryEmailAddress,

	// Receiver block (legacy format)
	"receivergivename":      CategoryPersonName,
	"receiverfamilyname":    CategoryPersonName,
	"receivermiddlename":    CategoryPersonName,
	"receiverstreetaddress": CategoryAddress,
	"receivercity":          CategoryCityName,
	"receiverstate":         CategoryCityName,
	"receiverpostcode":      CategoryPostalCode,
	"receivertel":           CategoryPhoneNumber,
	"receiverfax":           CategoryPhoneNumber,
	"receiveremailaddress":  CategoryEmailAddress,
}

// genericKeywords flag element names that likely carry personal data even
// when no pattern matches the content.
var genericKeywords = []string{
	"name", "address", "phone", "email", "birth", "initial",
	"contact", "identifier", "patient", "reporter",
}
