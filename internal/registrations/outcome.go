package registrations

// Kind classifies how a webhook event ended. Every kind is terminal for the
// event and only shows up in logs and metrics; the webhook caller always gets
// a success ack.
type Kind string

const (
	KindRegistered           Kind = "registered"
	KindMalformedWebhook     Kind = "malformed_webhook"
	KindUnrecognizedEvent    Kind = "unrecognized_event"
	KindUnknownMeeting       Kind = "unknown_meeting"
	KindKeyExtractionFailure Kind = "key_extraction_failure"
	KindKeyNotFound          Kind = "key_not_found"
	KindAlreadyRegistered    Kind = "already_registered"
	KindAlreadyPending       Kind = "already_pending"
	KindRecordInUse          Kind = "record_in_use"
	KindMeetingMismatch      Kind = "meeting_mismatch"
	KindApprovalAPIFailure   Kind = "approval_api_failure"
	KindStoreFailure         Kind = "store_failure"
)

// Kinds lists every outcome kind.
var Kinds = []Kind{
	KindRegistered,
	KindMalformedWebhook,
	KindUnrecognizedEvent,
	KindUnknownMeeting,
	KindKeyExtractionFailure,
	KindKeyNotFound,
	KindAlreadyRegistered,
	KindAlreadyPending,
	KindRecordInUse,
	KindMeetingMismatch,
	KindApprovalAPIFailure,
	KindStoreFailure,
}

// Outcome is the result of processing one webhook event.
type Outcome struct {
	Kind      Kind
	MeetingID string
	Key       string
	Row       int
	Err       error
}

// Mutated reports whether the event wrote to the record store.
func (o Outcome) Mutated() bool {
	return o.Kind == KindRegistered || o.Kind == KindApprovalAPIFailure
}
