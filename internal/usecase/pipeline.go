package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/ai"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/apperrors"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/observer"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/tenant"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
)

// ProcessMessageUpsert runs the full pipeline for one messages.upsert event:
// instance lookup, contact resolution, conversation reactivation, transcript
// persistence and, when eligible, AI reply delivery. Only ingestion failures
// return an error; everything after the transcript write is isolated so a
// misbehaving model or gateway never fails the webhook.
func (s *PipelineService) ProcessMessageUpsert(ctx context.Context, event *model.WebhookEvent, rawPayload []byte) error {
	instance, err := s.instanceRepo.FindByExternalKey(ctx, event.Instance)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return fmt.Errorf("%w: no instance for external key %q: %w", apperrors.ErrUnknownInstance, event.Instance, err)
		}
		return fmt.Errorf("instance lookup failed: %w", err)
	}

	ctx = tenant.WithOrganizationID(ctx, instance.OrganizationID)
	log := logger.FromContext(ctx)

	contact, err := s.ResolveContact(ctx, instance, event.RemotePhone(), event.Data.PushName)
	if err != nil {
		observer.IncWebhookEventFailed(event.Event, instance.OrganizationID)
		return fmt.Errorf("contact resolution failed: %w", err)
	}

	direction := event.Direction()
	if direction == model.DirectionInbound {
		if err := s.ReactivateOnInbound(ctx, contact); err != nil {
			observer.IncWebhookEventFailed(event.Event, instance.OrganizationID)
			return err
		}
	}

	message, err := s.PersistInbound(ctx, contact, event, rawPayload)
	if err != nil {
		observer.IncWebhookEventFailed(event.Event, instance.OrganizationID)
		return err
	}
	observer.IncWebhookEventProcessed(event.Event, instance.OrganizationID)

	if !ShouldRespond(contact, direction) {
		log.Debug("Skipping AI response",
			zap.String("contact_id", contact.ID),
			zap.String("direction", direction),
			zap.Bool("ai_enabled", contact.AIEnabled))
		return nil
	}

	// Everything below is best-effort. Ingestion already succeeded.
	s.respond(ctx, instance, contact, message)
	return nil
}

// respond generates and delivers the AI reply for a persisted inbound
// message. Failures are logged and dropped.
func (s *PipelineService) respond(ctx context.Context, instance *model.Instance, contact *model.Contact, inbound *model.Message) {
	log := logger.FromContext(ctx).With(zap.String("contact_id", contact.ID))

	history, err := s.messageRepo.FindRecentByContactID(ctx, contact.ID, s.responder.HistoryLimit(), inbound.MessageID)
	if err != nil {
		log.Warn("Failed to load conversation history, generating without context", zap.Error(err))
		history = nil
	}
	reverseMessages(history)

	var lead *model.Lead
	if contact.LeadID != nil {
		lead, err = s.leadRepo.FindByID(ctx, *contact.LeadID)
		if err != nil {
			log.Warn("Failed to load linked lead, generating without lead context",
				zap.String("lead_id", *contact.LeadID),
				zap.Error(err))
			lead = nil
		}
	}

	directive := s.responder.Generate(ctx, inbound.Body, history, lead)

	switch d := directive.(type) {
	case ai.Reply:
		s.deliver(ctx, instance, contact, d.Text)
	case ai.Terminate:
		if d.FinalText != "" {
			s.deliver(ctx, instance, contact, d.FinalText)
		}
		if err := s.Terminate(ctx, contact, d.Reason); err != nil {
			log.Error("Failed to terminate conversation", zap.Error(err))
		}
	default:
		log.Error("Unexpected directive type", zap.Any("directive", directive))
	}
}

// deliver sends text through the gateway and records it in the transcript.
// Gateway failures drop the message (at-most-once delivery).
func (s *PipelineService) deliver(ctx context.Context, instance *model.Instance, contact *model.Contact, text string) {
	log := logger.FromContext(ctx).With(zap.String("contact_id", contact.ID))

	providerMessageID, err := s.sender.SendText(ctx, instance.ExternalKey, contact.Phone, text)
	if err != nil {
		log.Error("Gateway send failed, dropping reply", zap.Error(err))
		return
	}

	if _, err := s.PersistOutbound(ctx, contact, text, providerMessageID); err != nil {
		log.Error("Failed to persist delivered reply", zap.Error(err))
	}
}

func reverseMessages(messages []model.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
