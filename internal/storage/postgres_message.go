package storage

import (
	"context"
	"errors"
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

// SaveMessage appends a transcript entry. Messages are never updated or
// deleted by this pipeline.
func (r *PostgresRepo) SaveMessage(ctx context.Context, message model.Message) error {
	organizationID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID from context: %w", apperrors.ErrUnauthorized, err)
	}
	if organizationID != message.OrganizationID {
		return fmt.Errorf("%w: message OrganizationID %s does not match context organization %s", apperrors.ErrBadRequest, message.OrganizationID, organizationID)
	}

	operation := func() error {
		if createErr := r.db.WithContext(ctx).Create(&message).Error; createErr != nil {
			return checkConstraintViolation(createErr)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveMessage", operation)
	observer.ObserveDbOperationDuration("save", "message", organizationID, time.Since(startTime), commitErr)
	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save message after retries",
			zap.String("contact_id", message.ContactID),
			zap.String("direction", message.Direction),
			zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// FindRecentMessagesByContactID returns the most recent transcript entries
// for a contact ordered by sent_at descending. excludeMessageID skips the
// entry just persisted so the current turn is not duplicated in context.
func (r *PostgresRepo) FindRecentMessagesByContactID(ctx context.Context, contactID string, limit int, excludeMessageID string) ([]model.Message, error) {
	organizationID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID from context: %w", apperrors.ErrUnauthorized, err)
	}

	var messages []model.Message
	operation := func() error {
		query := r.db.WithContext(ctx).
			Where("contact_id = ? AND organization_id = ?", contactID, organizationID)
		if excludeMessageID != "" {
			query = query.Where("message_id <> ?", excludeMessageID)
		}
		result := query.
			Order("sent_at DESC").
			Limit(limit).
			Find(&messages)
		if result.Error != nil {
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindRecentMessagesByContactID", operation)
	observer.ObserveDbOperationDuration("find_recent", "message", organizationID, time.Since(startTime), findErr)

	if findErr != nil {
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return []model.Message{}, nil
		}
		logger.FromContext(ctx).Error("Failed to find recent messages after retries",
			zap.String("contact_id", contactID),
			zap.Error(findErr))
		return nil, findErr
	}
	if messages == nil {
		return []model.Message{}, nil
	}
	return messages, nil
}
