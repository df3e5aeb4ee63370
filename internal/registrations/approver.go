package registrations

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aura-webinar/keygate/config"
	"github.com/aura-webinar/keygate/internal/models"
	"github.com/aura-webinar/keygate/internal/store"
	"github.com/aura-webinar/keygate/internal/zoom"
	"github.com/aura-webinar/keygate/pkg/logctx"
)

//go:generate mockgen -destination=mock_store_test.go -package=registrations github.com/aura-webinar/keygate/internal/store Store
//go:generate mockgen -source=approver.go -destination=mock_approver_test.go -package=registrations

// RegistrantApprover calls the platform to approve a registrant.
type RegistrantApprover interface {
	ApproveRegistrant(ctx context.Context, meetingID, registrantID, email string) zoom.ApprovalResult
}

// Approver drives the per-key state machine: EMPTY moves to REGISTERED when
// the platform accepts the approval and to PENDING when it does not.
// REGISTERED is terminal.
type Approver struct {
	store    store.Store
	client   RegistrantApprover
	meetings config.Meetings
	logger   *zap.Logger
}

// NewApprover creates an approver.
func NewApprover(st store.Store, client RegistrantApprover, meetings config.Meetings, logger *zap.Logger) *Approver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Approver{store: st, client: client, meetings: meetings, logger: logger}
}

// Process resolves key and approves the registrant when the record allows it.
func (a *Approver) Process(ctx context.Context, meetingID string, registrant *models.Registrant, key string) Outcome {
	logger := logctx.From(ctx, a.logger).With(zap.String("meeting_id", meetingID), zap.String("key", key))
	out := Outcome{MeetingID: meetingID, Key: key}

	timeID, ok := a.meetings.TimeID(meetingID)
	if !ok {
		logger.Info("meeting is not configured, aborting")
		out.Kind = KindUnknownMeeting
		return out
	}

	row, err := a.store.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Info("key not found in record store, aborting")
			out.Kind = KindKeyNotFound
			return out
		}
		logger.Error("key lookup failed", zap.Error(err))
		out.Kind, out.Err = KindStoreFailure, err
		return out
	}
	out.Row = row

	rec, err := a.store.Read(ctx, row)
	if err != nil {
		logger.Error("read record failed", zap.Int("row", row), zap.Error(err))
		out.Kind, out.Err = KindStoreFailure, err
		return out
	}
	logger = logger.With(zap.Int("row", row), zap.String("name", rec.Name))

	switch {
	case rec.Status == models.StatusRegistered:
		logger.Info("key is already registered, aborting", zap.String("external_id", rec.ExternalID))
		out.Kind = KindAlreadyRegistered
		return out
	case rec.Status == models.StatusPending || rec.Data == models.PendingDataMarker:
		logger.Info("key has a pending registration, aborting", zap.String("data", rec.Data))
		out.Kind = KindAlreadyPending
		return out
	case rec.Data != "":
		logger.Warn("key has registrant data but no status, aborting", zap.String("data", rec.Data))
		out.Kind = KindRecordInUse
		return out
	}

	if !config.SameTimeSlot(timeID, rec.ExpectedTimeID) {
		logger.Info("key is not valid for this meeting's time slot, aborting",
			zap.String("expected_time_id", rec.ExpectedTimeID),
			zap.String("meeting_time_id", timeID),
		)
		out.Kind = KindMeetingMismatch
		return out
	}

	logger.Info("key is unused and in the correct meeting, approving registration")
	res := a.client.ApproveRegistrant(ctx, meetingID, registrant.ID, registrant.Email)

	status := models.StatusPending
	out.Kind = KindApprovalAPIFailure
	if res.Approved {
		status = models.StatusRegistered
		out.Kind = KindRegistered
		logger.Info("registrant approved",
			zap.String("registrant_id", registrant.ID),
			zap.String("registrant_name", registrant.FullName()),
			zap.String("email", registrant.Email),
		)
	} else {
		out.Err = res.Err
		logger.Warn("approval call did not succeed, leaving key pending",
			zap.String("registrant_id", registrant.ID),
			zap.Int("status_code", res.StatusCode),
			zap.String("body", res.Body),
			zap.Error(res.Err),
		)
	}

	data, err := registrant.Snapshot()
	if err != nil {
		logger.Error("serialize registrant failed", zap.Error(err))
		out.Kind, out.Err = KindStoreFailure, err
		return out
	}
	if err := a.store.Write(ctx, row, models.ApprovalUpdate(status, registrant.ID, data)); err != nil {
		logger.Error("record update failed", zap.String("status", string(status)), zap.Error(err))
		out.Kind, out.Err = KindStoreFailure, err
		return out
	}
	logger.Info("record updated", zap.String("status", string(status)))
	return out
}
