package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/apperrors"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/observer"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/tenant"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/utils"
)

// FindLeadByAnyPhone finds a lead whose phone matches any of the given
// representations within the organization. Exact matches only.
func (r *PostgresRepo) FindLeadByAnyPhone(ctx context.Context, phones []string) (*model.Lead, error) {
	organizationID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID from context: %w", apperrors.ErrUnauthorized, err)
	}
	if len(phones) == 0 {
		return nil, apperrors.ErrNotFound
	}

	var lead model.Lead
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("organization_id = ? AND phone IN ?", organizationID, phones).
			First(&lead)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no lead for phones: %w", apperrors.ErrNotFound, result.Error)
			}
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindLeadByAnyPhone", operation)
	observer.ObserveDbOperationDuration("find_by_any_phone", "lead", organizationID, time.Since(startTime), findErr)

	if findErr != nil {
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		logger.FromContext(ctx).Error("Failed to find lead by phone after retries",
			zap.Strings("phones", phones),
			zap.String("organization_id", organizationID),
			zap.Error(findErr))
		return nil, findErr
	}
	return &lead, nil
}

// FindLeadByID fetches a lead by primary key within the organization.
func (r *PostgresRepo) FindLeadByID(ctx context.Context, id string) (*model.Lead, error) {
	organizationID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID from context: %w", apperrors.ErrUnauthorized, err)
	}

	var lead model.Lead
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("id = ? AND organization_id = ?", id, organizationID).
			First(&lead)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: lead %s: %w", apperrors.ErrNotFound, id, result.Error)
			}
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindLeadByID", operation)
	observer.ObserveDbOperationDuration("find_by_id", "lead", organizationID, time.Since(startTime), findErr)

	if findErr != nil {
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		logger.FromContext(ctx).Error("Failed to find lead by ID after retries",
			zap.String("lead_id", id),
			zap.String("organization_id", organizationID),
			zap.Error(findErr))
		return nil, findErr
	}
	return &lead, nil
}
