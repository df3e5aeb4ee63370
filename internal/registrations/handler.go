package registrations

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aura-webinar/keygate/config"
	"github.com/aura-webinar/keygate/internal/models"
	"github.com/aura-webinar/keygate/pkg/logctx"
	"github.com/aura-webinar/keygate/pkg/response"
)

// WebhookHandler receives registration webhooks and routes them to the approver.
type WebhookHandler struct {
	approver *Approver
	meetings config.Meetings
	validate *validator.Validate
	metrics  *Metrics
	logger   *zap.Logger
}

// NewWebhookHandler creates a webhook handler. metrics may be nil.
func NewWebhookHandler(approver *Approver, meetings config.Meetings, metrics *Metrics, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		approver: approver,
		meetings: meetings,
		validate: validator.New(),
		metrics:  metrics,
		logger:   logger,
	}
}

// RegistrationEvents handles POST on the webhook path. The caller only needs
// delivery confirmation, so every outcome is acknowledged with 200.
func (h *WebhookHandler) RegistrationEvents(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logctx.From(ctx, h.logger)

	body, err := c.GetRawData()
	if err != nil {
		logger.Warn("read webhook body failed", zap.Error(err))
		h.finish(ctx, Outcome{Kind: KindMalformedWebhook, Err: err})
		response.Ack(c)
		return
	}
	logger.Info("received webhook", zap.String("path", c.Request.URL.Path), zap.ByteString("body", body))

	h.finish(ctx, h.Handle(ctx, body))
	response.Ack(c)
}

// Handle classifies a webhook body and runs the approval pipeline for new registrations.
func (h *WebhookHandler) Handle(ctx context.Context, body []byte) Outcome {
	logger := logctx.From(ctx, h.logger)

	var env models.WebhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		logger.Info("webhook body is not valid JSON, aborting", zap.Error(err))
		return Outcome{Kind: KindMalformedWebhook, Err: err}
	}
	if env.Event == "" {
		logger.Info("received request without event type, aborting")
		return Outcome{Kind: KindMalformedWebhook}
	}
	if env.Event != models.EventRegistrationCreated {
		logger.Info("ignoring event", zap.String("event", env.Event))
		return Outcome{Kind: KindUnrecognizedEvent}
	}

	var payload models.RegistrationPayload
	if len(env.Payload) == 0 {
		logger.Info("registration event without payload, aborting")
		return Outcome{Kind: KindMalformedWebhook}
	}
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		logger.Info("registration payload does not decode, aborting", zap.Error(err))
		return Outcome{Kind: KindMalformedWebhook, Err: err}
	}
	if err := h.validate.Struct(payload); err != nil {
		logger.Info("registration payload is missing required fields, aborting", zap.Error(err))
		return Outcome{Kind: KindMalformedWebhook, Err: err}
	}

	meetingID := payload.Object.MeetingID()
	registrant := payload.Object.Registrant
	if _, ok := h.meetings.TimeID(meetingID); !ok {
		logger.Info("meeting id did not match",
			zap.String("meeting_id", meetingID),
			zap.Strings("configured", h.meetings.IDs()),
		)
		return Outcome{Kind: KindUnknownMeeting, MeetingID: meetingID}
	}
	logger.Info("meeting id matched", zap.String("meeting_id", meetingID))

	key, candidates, err := ExtractKey(registrant.Answers())
	if err != nil {
		switch {
		case errors.Is(err, ErrAmbiguousKey):
			logger.Info("more than one answer looks like a key", zap.Strings("candidates", candidates))
		default:
			logger.Info("none of the answers looks like a key")
		}
		return Outcome{Kind: KindKeyExtractionFailure, MeetingID: meetingID, Err: err}
	}
	logger.Info("found candidate key, starting approval", zap.String("key", key))

	return h.approver.Process(ctx, meetingID, registrant, key)
}

func (h *WebhookHandler) finish(ctx context.Context, out Outcome) {
	h.metrics.Observe(out.Kind)
	fields := []zap.Field{zap.String("outcome", string(out.Kind))}
	if out.MeetingID != "" {
		fields = append(fields, zap.String("meeting_id", out.MeetingID))
	}
	if out.Key != "" {
		fields = append(fields, zap.String("key", out.Key))
	}
	if out.Err != nil {
		fields = append(fields, zap.Error(out.Err))
	}
	logctx.From(ctx, h.logger).Info("registration event processed", fields...)
}
