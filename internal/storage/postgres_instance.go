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
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/utils"
)

// FindInstanceByExternalKey resolves a provisioned instance from the key the
// chat platform sends with every webhook event. Not organization-scoped:
// the instance row is what establishes the organization.
func (r *PostgresRepo) FindInstanceByExternalKey(ctx context.Context, externalKey string) (*model.Instance, error) {
	var instance model.Instance
	operation := func() error {
		result := r.db.WithContext(ctx).Where("external_key = ?", externalKey).First(&instance)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: instance key %s: %w", apperrors.ErrNotFound, externalKey, result.Error)
			}
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindInstanceByExternalKey", operation)
	observer.ObserveDbOperationDuration("find_by_external_key", "instance", "", time.Since(startTime), findErr)

	if findErr != nil {
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return nil, findErr
		}
		logger.FromContext(ctx).Error("Failed to find instance by external key after retries",
			zap.String("external_key", externalKey),
			zap.Error(findErr))
		return nil, findErr
	}
	return &instance, nil
}
