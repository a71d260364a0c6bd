package e2b

// PersonalDataMapping ties a regulated field code to the anchored tag path
// where the field lives, whether the data-minimization policy mandates
// masking it, and its weight in compliance scoring. The tables are fixed at
// build time; mutating them at runtime is not supported.
type PersonalDataMapping struct {
	Code        string
	Name        string
	Path        []string // anchor ancestor tag ... leaf tag
	RequireMask bool
	Weight      int // 1-10, contribution to the masking sub-score
}

// personalDataE2B covers the modern E2B R3 format, per GVP Module VI
// Addendum II.
var personalDataE2B = []PersonalDataMapping{
	{Code: "A.2.1.1", Name: "Patient Initial", Path: []string{"patient", "patientinitial"}, RequireMask: true, Weight: 10},
	{Code: "A.2.1.4", Name: "Patient Birth Date", Path: []string{"patient", "patientbirthdateformat"}, RequireMask: true, Weight: 10},
	{Code: "A.3.1.2", Name: "Reporter Given Name", Path: []string{"primarysource", "reportergivename"}, RequireMask: true, Weight: 8},
	{Code: "A.3.1.3", Name: "Reporter Family Name", Path: []string{"primarysource", "reporterfamilyname"}, RequireMask: true, Weight: 8},
	{Code: "A.3.1.4", Name: "Reporter Address", Path: []string{"primarysource", "reporteraddress"}, RequireMask: true, Weight: 6},
	{Code: "A.3.1.5", Name: "Reporter City", Path: []string{"primarysource", "reportercity"}, RequireMask: true, Weight: 5},
	{Code: "A.3.1.6", Name: "Reporter State", Path: []string{"primarysource", "reporterstate"}, RequireMask: true, Weight: 4},
	{Code: "A.3.1.7", Name: "Reporter Postcode", Path: []string{"primarysource", "reporterpostcode"}, RequireMask: true, Weight: 4},
	{Code: "A.3.1.8", Name: "Reporter Country", Path: []string{"primarysource", "reportercountrycode"}, RequireMask: false, Weight: 2},
	{Code: "A.3.1.9", Name: "Reporter Telephone", Path: []string{"primarysource", "reportertelephone"}, RequireMask: true, Weight: 6},
	{Code: "A.3.1.10", Name: "Reporter Fax", Path: []string{"primarysource", "reporterfax"}, RequireMask: true, Weight: 4},
	{Code: "A.3.1.11", Name: "Reporter Email", Path: []string{"primarysource", "reporteremailaddress"}, RequireMask: true, Weight: 8},
}

// personalDataICSR covers the legacy ICH ICSR v2.1 format, including the
// sender and receiver contact blocks that the modern table does not carry.
var personalDataICSR = []PersonalDataMapping{
	{Code: "patient_initials", Name: "Patient Initials", Path: []string{"patient", "patientinitial"}, RequireMask: true, Weight: 10},
	{Code: "patient_birthdate", Name: "Patient Birth Date", Path: []string{"patient", "patientbirthdate"}, RequireMask: true, Weight: 10},
	{Code: "patient_records", Name: "GP Medical Record Number", Path: []string{"patient", "patientgpmedicalrecordnumb"}, RequireMask: true, Weight: 9},
	{Code: "reporter_name", Name: "Reporter Given Name", Path: []string{"primarysource", "reportergivename"}, RequireMask: true, Weight: 8},
	{Code: "reporter_family", Name: "Reporter Family Name", Path: []string{"primarysource", "reporterfamilyname"}, RequireMask: true, Weight: 8},
	{Code: "reporter_middle", Name: "Reporter Middle Name", Path: []string{"primarysource", "reportermiddlename"}, RequireMask: true, Weight: 7},
	{Code: "reporter_address", Name: "Reporter Street", Path: []string{"primarysource", "reporterstreet"}, RequireMask: true, Weight: 6},
	{Code: "reporter_city", Name: "Reporter City", Path: []string{"primarysource", "reportercity"}, RequireMask: true, Weight: 5},
	{Code: "reporter_state", Name: "Reporter State", Path: []string{"primarysource", "reporterstate"}, RequireMask: true, Weight: 4},
	{Code: "reporter_postcode", Name: "Reporter Postcode", Path: []string{"primarysource", "reporterpostcode"}, RequireMask: true, Weight: 4},
	{Code: "sender_name", Name: "Sender Given Name", Path: []string{"sender", "sendergivename"}, RequireMask: true, Weight: 7},
	{Code: "sender_family", Name: "Sender Family Name", Path: []string{"sender", "senderfamilyname"}, RequireMask: true, Weight: 7},
	{Code: "sender_middle", Name: "Sender Middle Name", Path: []string{"sender", "sendermiddlename"}, RequireMask: true, Weight: 6},
	{Code: "sender_address", Name: "Sender Street Address", Path: []string{"sender", "senderstreetaddress"}, RequireMask: true, Weight: 5},
	{Code: "sender_city", Name: "Sender City", Path: []string{"sender", "sendercity"}, RequireMask: false, Weight: 3},
	{Code: "sender_state", Name: "Sender State", Path: []string{"sender", "senderstate"}, RequireMask: false, Weight: 3},
	{Code: "sender_postcode", Name: "Sender Postcode", Path: []string{"sender", "senderpostcode"}, RequireMask: false, Weight: 3},
	{Code: "sender_tel", Name: "Sender Telephone", Path: []string{"sender", "sendertel"}, RequireMask: true, Weight: 5},
	{Code: "sender_fax", Name: "Sender Fax", Path: []string{"sender", "senderfax"}, RequireMask: true, Weight: 4},
	{Code: "sender_email", Name: "Sender Email", Path: []string{"sender", "senderemailaddress"}, RequireMask: true, Weight: 7},
	{Code: "receiver_name", Name: "Receiver Given Name", Path: []string{"receiver", "receivergivename"}, RequireMask: true, Weight: 7},
	{Code: "receiver_family", Name: "Receiver Family Name", Path: []string{"receiver", "receiverfamilyname"}, RequireMask: true, Weight: 7},
	{Code: "receiver_middle", Name: "Receiver Middle Name", Path: []string{"receiver", "receivermiddlename"}, RequireMask: true, Weight: 6},
	{Code: "receiver_address", Name: "Receiver Street Address", Path: []string{"receiver", "receiverstreetaddress"}, RequireMask: true, Weight: 5},
	{Code: "receiver_city", Name: "Receiver City", Path: []string{"receiver", "receivercity"}, RequireMask: false, Weight: 3},
	{Code: "receiver_state", Name: "Receiver State", Path: []string{"receiver", "receiverstate"}, RequireMask: false, Weight: 3},
	{Code: "receiver_postcode", Name: "Receiver Postcode", Path: []string{"receiver", "receiverpostcode"}, RequireMask: false, Weight: 3},
	{Code: "receiver_tel", Name: "Receiver Telephone", Path: []string{"receiver", "receivertel"}, RequireMask: true, Weight: 5},
	{Code: "receiver_fax", Name: "Receiver Fax", Path: []string{"receiver", "receiverfax"}, RequireMask: true, Weight: 4},
	{Code: "receiver_email", Name: "Receiver Email", Path: []string{"receiver", "receiveremailaddress"}, RequireMask: true, Weight: 7},
}

// MappingFor returns the personal-data mapping table for a format. The
// returned slice is shared and must be treated as read-only.
func MappingFor(f Format) []PersonalDataMapping {
	if f == FormatICSR {
		return personalDataICSR
	}
	return personalDataE2B
}

// OptionalTags lists lower-cased tags that the data-minimization policy
// treats as optional: carrying unmasked data in them lowers the
// minimization sub-score.
var OptionalTags = map[string]bool{
	"reporteraddress":        true,
	"reportercity":           true,
	"reporterstate":          true,
	"reporterpostcode":       true,
	"reportertelephone":      true,
	"reporterfax":            true,
	"reporteremailaddress":   true,
	"patientinitial":         true,
	"patientbirthdateformat": true,
}
