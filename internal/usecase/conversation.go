package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/utils"
)

// ReactivateOnInbound moves a paused or completed contact back to active
// before the inbound message is persisted, so the new message always lands
// in an active conversation. Active contacts pass through untouched.
func (s *PipelineService) ReactivateOnInbound(ctx context.Context, contact *model.Contact) error {
	if contact.ConversationStatus == model.ConversationActive && !contact.Archived {
		return nil
	}

	previous := contact.ConversationStatus
	contact.ConversationStatus = model.ConversationActive
	contact.Archived = false
	if err := s.contactRepo.Update(ctx, *contact); err != nil {
		return fmt.Errorf("failed to reactivate contact %s: %w", contact.ID, err)
	}
	logger.FromContext(ctx).Info("Conversation reactivated on inbound message",
		zap.String("contact_id", contact.ID),
		zap.String("previous_status", previous))
	return nil
}

// Terminate marks the conversation completed and archives exactly one
// history row recording who ended it and why.
func (s *PipelineService) Terminate(ctx context.Context, contact *model.Contact, reason string) error {
	contact.ConversationStatus = model.ConversationCompleted
	if err := s.contactRepo.Update(ctx, *contact); err != nil {
		return fmt.Errorf("failed to mark conversation completed for contact %s: %w", contact.ID, err)
	}

	record := model.ConversationHistory{
		ContactID:      contact.ID,
		OrganizationID: contact.OrganizationID,
		EndedAt:        utils.Now(),
		EndedBy:        model.EndedByAI,
		EndReason:      reason,
	}
	if err := s.historyRepo.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to archive conversation for contact %s: %w", contact.ID, err)
	}

	logger.FromContext(ctx).Info("Conversation terminated",
		zap.String("contact_id", contact.ID),
		zap.String("reason", reason))
	return nil
}
