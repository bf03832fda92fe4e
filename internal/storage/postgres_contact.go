package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/apperrors"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/observer"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/tenant"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/utils"
)

// CreateContact inserts a new contact row. A unique-violation on
// (organization_id, phone) surfaces as apperrors.ErrDuplicate so the
// resolver can re-resolve instead of failing the request.
func (r *PostgresRepo) CreateContact(ctx context.Context, contact *model.Contact) error {
	organizationID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID from context: %w", apperrors.ErrUnauthorized, err)
	}
	if organizationID != contact.OrganizationID {
		return fmt.Errorf("%w: contact OrganizationID %s does not match context organization %s", apperrors.ErrBadRequest, contact.OrganizationID, organizationID)
	}

	operation := func() error {
		if createErr := r.db.WithContext(ctx).Create(contact).Error; createErr != nil {
			return checkConstraintViolation(createErr)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "CreateContact", operation)
	observer.ObserveDbOperationDuration("create", "contact", organizationID, time.Since(startTime), commitErr)
	if commitErr != nil {
		if errors.Is(commitErr, apperrors.ErrDuplicate) {
			// Concurrent first-contact race; caller re-resolves.
			logger.FromContext(ctx).Warn("Contact creation hit unique constraint",
				zap.String("phone", contact.Phone),
				zap.Error(commitErr))
			return commitErr
		}
		logger.FromContext(ctx).Error("Failed to create contact after retries", zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// UpdateContact updates the inbound-refresh columns of an existing contact.
func (r *PostgresRepo) UpdateContact(ctx context.Context, contact model.Contact) error {
	organizationID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID from context: %w", apperrors.ErrUnauthorized, err)
	}
	if organizationID != contact.OrganizationID {
		return fmt.Errorf("%w: contact OrganizationID %s does not match context organization %s", apperrors.ErrBadRequest, contact.OrganizationID, organizationID)
	}
	contact.UpdatedAt = utils.Now()

	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.Contact{}).
			Where("id = ? AND organization_id = ?", contact.ID, organizationID).
			Select(model.ContactUpdateColumns()).
			Updates(contact)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: contact %s not found for update", apperrors.ErrNotFound, contact.ID)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "UpdateContact", operation)
	observer.ObserveDbOperationDuration("update", "contact", organizationID, time.Since(startTime), commitErr)
	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to update contact after retries",
			zap.String("contact_id", contact.ID),
			zap.Error(commitErr))
		return commitErr
	}
	return nil
}

// FindContactByPhone finds a contact by exact phone match within the
// organization. The resolver calls this once per stored representation.
func (r *PostgresRepo) FindContactByPhone(ctx context.Context, phone string) (*model.Contact, error) {
	organizationID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get organization ID from context: %w", apperrors.ErrUnauthorized, err)
	}

	var contact model.Contact
	operation := func() error {
		result := r.db.WithContext(ctx).Where("phone = ? AND organization_id = ?", phone, organizationID).First(&contact)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: phone %s: %w", apperrors.ErrNotFound, phone, result.Error)
			}
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindContactByPhone", operation)
	observer.ObserveDbOperationDuration("find_by_phone", "contact", organizationID, time.Since(startTime), findErr)

	if findErr != nil {
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		logger.FromContext(ctx).Error("Failed to find contact by phone after retries",
			zap.String("phone", phone),
			zap.String("organization_id", organizationID),
			zap.Error(findErr))
		return nil, findErr
	}
	return &contact, nil
}

// TouchContact refreshes a contact's last-event metadata and updated_at
// after message persistence.
func (r *PostgresRepo) TouchContact(ctx context.Context, contactID string, metadata datatypes.JSON, at time.Time) error {
	organizationID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get organization ID from context: %w", apperrors.ErrUnauthorized, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.Contact{}).
			Where("id = ? AND organization_id = ?", contactID, organizationID).
			UpdateColumns(map[string]interface{}{
				"last_metadata": metadata,
				"updated_at":    at,
			})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "TouchContact", operation)
	observer.ObserveDbOperationDuration("touch", "contact", organizationID, time.Since(startTime), commitErr)
	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to touch contact after retries",
			zap.String("contact_id", contactID),
			zap.Error(commitErr))
		return commitErr
	}
	return nil
}
