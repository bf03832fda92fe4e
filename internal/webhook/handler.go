package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/apperrors"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/observer"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/tenant"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/validator"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/utils"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// MessagePipeline processes one validated messages.upsert event.
type MessagePipeline interface {
	ProcessMessageUpsert(ctx context.Context, event *model.WebhookEvent, rawPayload []byte) error
}

// WebhookResponse is the envelope for every webhook reply.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler receives provider webhook deliveries.
type Handler struct {
	pipeline MessagePipeline
}

// NewHandler creates a webhook handler over the given pipeline.
func NewHandler(pipeline MessagePipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

// WithRequestID assigns each request a request ID, propagated through the
// context for log correlation and echoed in the response header.
func (h *Handler) WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := tenant.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HandleMessagesUpsert processes one webhook delivery. Event types other
// than messages.upsert are acknowledged and ignored so the provider never
// retries them.
func (h *Handler) HandleMessagesUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	rawPayload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Warn("Failed to read webhook body", zap.Error(err))
		utils.WriteJSONResponse(w, http.StatusBadRequest, WebhookResponse{Success: false, Error: "unreadable request body"})
		return
	}

	var event model.WebhookEvent
	if err := json.Unmarshal(rawPayload, &event); err != nil {
		log.Warn("Malformed webhook payload", zap.Error(err))
		utils.WriteJSONResponse(w, http.StatusBadRequest, WebhookResponse{Success: false, Error: "malformed JSON payload"})
		return
	}

	observer.IncWebhookEventReceived(event.Event, "")

	if event.Event != model.EventMessagesUpsert {
		log.Debug("Ignoring webhook event", zap.String("event_type", event.Event))
		observer.IncWebhookEventIgnored(event.Event, "")
		utils.WriteJSONResponse(w, http.StatusOK, WebhookResponse{Success: true, Message: "event ignored"})
		return
	}

	if err := validator.Validate(event); err != nil {
		log.Warn("Webhook payload failed validation", zap.Error(err))
		utils.WriteJSONResponse(w, http.StatusBadRequest, WebhookResponse{Success: false, Error: err.Error()})
		return
	}

	if err := h.pipeline.ProcessMessageUpsert(ctx, &event, rawPayload); err != nil {
		// Only the instance lookup maps to 404; a row that went missing
		// mid-pipeline is an internal failure like any other.
		if errors.Is(err, apperrors.ErrUnknownInstance) {
			log.Warn("Webhook for unknown instance",
				zap.String("instance", event.Instance),
				zap.Error(err))
			utils.WriteJSONResponse(w, http.StatusNotFound, WebhookResponse{Success: false, Error: "unknown instance"})
			return
		}
		log.Error("Webhook processing failed", zap.Error(err))
		utils.WriteJSONResponse(w, http.StatusInternalServerError, WebhookResponse{Success: false, Error: "event processing failed"})
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, WebhookResponse{Success: true, Message: "event processed"})
}
