package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/apperrors"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/observer"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/tenant"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/utils"
)

// SaveConversationHistory writes the archival row for a terminated
// conversation. Insert-only; one row per termination.
func (r *PostgresRepo) SaveConversationHistory(ctx context.Context, record model.ConversationHistory) error {
	organizationID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID from context: %w", apperrors.ErrUnauthorized, err)
	}
	if organizationID != record.OrganizationID {
		return fmt.Errorf("%w: record OrganizationID %s does not match context organization %s", apperrors.ErrBadRequest, record.OrganizationID, organizationID)
	}

	operation := func() error {
		if createErr := r.db.WithContext(ctx).Create(&record).Error; createErr != nil {
			return checkConstraintViolation(createErr)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveConversationHistory", operation)
	observer.ObserveDbOperationDuration("save", "conversation_history", organizationID, time.Since(startTime), commitErr)
	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save conversation history after retries",
			zap.String("contact_id", record.ContactID),
			zap.String("end_reason", record.EndReason),
			zap.Error(commitErr))
		return commitErr
	}
	return nil
}
