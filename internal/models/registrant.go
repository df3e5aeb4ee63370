package models

// RegistrantStatus is the approval state stored for a key.
type RegistrantStatus string

const (
	// StatusEmpty marks a provisioned key that has not been used yet.
	StatusEmpty RegistrantStatus = ""
	// StatusPending marks a key whose approval call failed and needs manual follow-up.
	StatusPending RegistrantStatus = "PENDING"
	// StatusRegistered marks a key that has been approved. Terminal.
	StatusRegistered RegistrantStatus = "REGISTERED"
)

// PendingDataMarker is the literal data value operators put in a row to hold a key back.
const PendingDataMarker = "PENDING"

// RegistrantRecord is one provisioned key row in the record store.
type RegistrantRecord struct {
	Row            int              `json:"row"`
	Key            string           `json:"key"`
	Name           string           `json:"name"`
	Status         RegistrantStatus `json:"status"`
	Data           string           `json:"data"`
	ExternalID     string           `json:"external_id"`
	ExpectedTimeID string           `json:"expected_time_id"`
}

// RecordUpdate is a partial write of the mutable record fields. Nil fields are left untouched.
type RecordUpdate struct {
	Status     *RegistrantStatus
	ExternalID *string
	Data       *string
}

// ApprovalUpdate builds the update written after an approval attempt.
func ApprovalUpdate(status RegistrantStatus, externalID, data string) RecordUpdate {
	return RecordUpdate{Status: &status, ExternalID: &externalID, Data: &data}
}

// IsEmpty reports whether the update touches no field.
func (u RecordUpdate) IsEmpty() bool {
	return u.Status == nil && u.ExternalID == nil && u.Data == nil
}
