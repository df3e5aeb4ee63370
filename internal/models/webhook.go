package models

import (
	"bytes"
	"encoding/json"
)

// EventRegistrationCreated is the only webhook event the approver acts on.
const EventRegistrationCreated = "meeting.registration_created"

// WebhookEnvelope is the outer webhook body. Payload is decoded once the event type is known.
type WebhookEnvelope struct {
	Event   string          `json:"event"`
	EventTS int64           `json:"event_ts,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// RegistrationPayload is the payload of a meeting.registration_created event.
type RegistrationPayload struct {
	AccountID string             `json:"account_id"`
	Object    RegistrationObject `json:"object" validate:"required"`
}

// RegistrationObject carries the meeting and the registrant.
type RegistrationObject struct {
	ID         json.Number `json:"id" validate:"required"`
	UUID       string      `json:"uuid,omitempty"`
	Topic      string      `json:"topic,omitempty"`
	Registrant *Registrant `json:"registrant" validate:"required"`
}

// MeetingID returns the meeting id as a string.
func (o RegistrationObject) MeetingID() string {
	return o.ID.String()
}

// CustomQuestion is one free-text answer given at registration.
type CustomQuestion struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Registrant is the person registering. The raw JSON is kept so the stored
// snapshot carries every field the platform sent.
type Registrant struct {
	ID              string           `json:"id" validate:"required"`
	Email           string           `json:"email" validate:"required"`
	FirstName       string           `json:"first_name" validate:"required"`
	LastName        *string          `json:"last_name" validate:"required"`
	CustomQuestions []CustomQuestion `json:"custom_questions" validate:"required"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the registrant and keeps the original bytes.
func (r *Registrant) UnmarshalJSON(b []byte) error {
	type plain Registrant
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = Registrant(p)
	r.raw = append(json.RawMessage(nil), b...)
	return nil
}

// Answers returns the custom-question answers in order.
func (r *Registrant) Answers() []string {
	answers := make([]string, 0, len(r.CustomQuestions))
	for _, q := range r.CustomQuestions {
		answers = append(answers, q.Value)
	}
	return answers
}

// FullName joins first and last name.
func (r *Registrant) FullName() string {
	if r.LastName == nil || *r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + *r.LastName
}

// Snapshot serializes the registrant for the record's data column.
func (r *Registrant) Snapshot() (string, error) {
	if len(r.raw) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, r.raw); err == nil {
			return buf.String(), nil
		}
	}
	type plain Registrant
	b, err := json.Marshal(plain(*r))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
