package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/utils"
)

// PersistInbound stores the webhook message as a transcript entry and
// refreshes the contact's last-event metadata and activity timestamp.
// Persistence failures are fatal to the request.
func (s *PipelineService) PersistInbound(ctx context.Context, contact *model.Contact, event *model.WebhookEvent, rawPayload []byte) (*model.Message, error) {
	sentAt := utils.Now()
	if event.Data.MessageTimestamp > 0 {
		sentAt = utils.UnixToTime(event.Data.MessageTimestamp)
	}

	message := model.Message{
		MessageID:      uuid.NewString(),
		ContactID:      contact.ID,
		OrganizationID: contact.OrganizationID,
		InstanceID:     contact.InstanceID,
		Body:           event.Data.Body(),
		Direction:      event.Direction(),
		SentAt:         sentAt,
		Status:         model.MapProviderStatus(event.Data.Status),
		RawPayload:     datatypes.JSON(rawPayload),
	}

	if err := s.messageRepo.Save(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to persist %s message for contact %s: %w", message.Direction, contact.ID, err)
	}
	contact.LastMetadata = datatypes.JSON(rawPayload)
	if err := s.contactRepo.Touch(ctx, contact.ID, contact.LastMetadata, utils.Now()); err != nil {
		return nil, fmt.Errorf("failed to refresh contact %s activity: %w", contact.ID, err)
	}
	return &message, nil
}

// PersistOutbound stores an AI-generated reply in the transcript. The
// provider message ID from the gateway acknowledgment is kept when present.
func (s *PipelineService) PersistOutbound(ctx context.Context, contact *model.Contact, body, providerMessageID string) (*model.Message, error) {
	messageID := providerMessageID
	if messageID == "" {
		messageID = uuid.NewString()
	}

	message := model.Message{
		MessageID:      messageID,
		ContactID:      contact.ID,
		OrganizationID: contact.OrganizationID,
		InstanceID:     contact.InstanceID,
		Body:           body,
		Direction:      model.DirectionOutbound,
		SentAt:         utils.Now(),
		Status:         model.StatusSent,
		AIGenerated:    true,
	}

	if err := s.messageRepo.Save(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to persist outbound message for contact %s: %w", contact.ID, err)
	}
	return &message, nil
}

// ShouldRespond is the AI eligibility gate: only inbound messages on
// AI-enabled contacts produce a generated reply.
func ShouldRespond(contact *model.Contact, direction string) bool {
	return direction == model.DirectionInbound && contact.AIEnabled
}
