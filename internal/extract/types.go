package extract

// FieldRecord is an immutable snapshot of one text-bearing leaf element.
// Masking never mutates records; it operates on the document tree, and a
// fresh extraction pass reflects the change.
type FieldRecord struct {
	Tag     string            `json:"tag"`
	Text    string            `json:"text"`
	Address string            `json:"address"`
	Attrs   map[string]string `json:"attributes,omitempty"`
	Masked  bool              `json:"masked"`
}

// PersonalField is one occurrence of a regulated personal-data field located
// through the mapping tables. Multiple occurrences of the same code are all
// reported.
type PersonalField struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Tag         string `json:"tag"`
	Address     string `json:"address"`
	HasValue    bool   `json:"hasValue"`
	HasMask     bool   `json:"hasMask"`
	RequireMask bool   `json:"requireMask"`
	Weight      int    `json:"weight"`
}

// MessageHeader is the curated projection of the message header block.
// Absent fields stay empty; absence is never an error.
type MessageHeader struct {
	MessageType   string `json:"messageType,omitempty"`
	FormatVersion string `json:"formatVersion,omitempty"`
	FormatRelease string `json:"formatRelease,omitempty"`
	MessageNumber string `json:"messageNumber,omitempty"`
	SenderID      string `json:"senderId,omitempty"`
	ReceiverID    string `json:"receiverId,omitempty"`
	MessageDate   string `json:"messageDate,omitempty"`
}

// SafetyReport is the curated projection of the safety report block.
type SafetyReport struct {
	Version              string `json:"version,omitempty"`
	ReportID             string `json:"reportId,omitempty"`
	PrimarySourceCountry string `json:"primarySourceCountry,omitempty"`
	OccurCountry         string `json:"occurCountry,omitempty"`
	TransmissionDate     string `json:"transmissionDate,omitempty"`
	ReceiptDate          string `json:"receiptDate,omitempty"`
}

// PatientData is the curated projection of the patient block.
type PatientData struct {
	Initial   string `json:"initial,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Age       string `json:"age,omitempty"`
	AgeUnit   string `json:"ageUnit,omitempty"`
	Sex       string `json:"sex,omitempty"`
	Weight    string `json:"weight,omitempty"`
	Height    string `json:"height,omitempty"`
}

// Reaction is the curated projection of one reaction block.
type Reaction struct {
	PrimarySourceReaction string `json:"primarySourceReaction,omitempty"`
	MeddraVersion         string `json:"meddraVersion,omitempty"`
	MeddraPT              string `json:"meddraPt,omitempty"`
	MeddraLLT             string `json:"meddraLlt,omitempty"`
	Outcome               string `json:"outcome,omitempty"`
	StartDate             string `json:"startDate,omitempty"`
	EndDate               string `json:"endDate,omitempty"`
}

// Summary is the structural projection used by the compliance scorer.
type Summary struct {
	Header    MessageHeader `json:"header"`
	Report    SafetyReport  `json:"safetyReport"`
	Patient   PatientData   `json:"patientData"`
	Reactions []Reaction    `json:"reactions"`
}
