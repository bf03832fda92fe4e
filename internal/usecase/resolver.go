package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/apperrors"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
)

// ResolveContact finds or creates the contact for a raw remote identifier.
// Lookup tries the prefixed representation first, then the local one, so
// rows written by older imports under either format resolve to the same
// contact. Resolved contacts get their display name refreshed from the event.
// When neither exists, a lead match on either representation links the new
// contact before it is created.
func (s *PipelineService) ResolveContact(ctx context.Context, instance *model.Instance, rawRemoteID, pushName string) (*model.Contact, error) {
	withPrefix := s.normalizer.Prefixed(rawRemoteID)
	local := s.normalizer.Normalize(rawRemoteID)
	if withPrefix == "" {
		return nil, fmt.Errorf("%w: remote identifier %q has no digits", apperrors.ErrValidation, rawRemoteID)
	}

	contact, err := s.lookupContact(ctx, withPrefix, local)
	if err != nil && !apperrors.IsNotFoundError(err) {
		return nil, err
	}
	if contact != nil {
		if err := s.refreshDisplayName(ctx, contact, pushName); err != nil {
			return nil, err
		}
		return contact, nil
	}

	contact = &model.Contact{
		ID:                 uuid.NewString(),
		OrganizationID:     instance.OrganizationID,
		InstanceID:         instance.ID,
		Phone:              withPrefix,
		PushName:           pushName,
		AIEnabled:          true,
		ConversationStatus: model.ConversationActive,
	}

	lead, err := s.leadRepo.FindByAnyPhone(ctx, []string{withPrefix, local})
	if err != nil {
		if !apperrors.IsNotFoundError(err) {
			return nil, fmt.Errorf("lead lookup failed: %w", err)
		}
	} else {
		contact.LeadID = &lead.ID
		if contact.PushName == "" {
			contact.PushName = lead.Name
		}
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		if apperrors.IsDuplicateError(err) {
			// Lost a first-contact race; the winning row must exist now.
			logger.FromContext(ctx).Info("Contact already created concurrently, re-resolving",
				zap.String("phone", withPrefix))
			winner, lookupErr := s.lookupContact(ctx, withPrefix, local)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if refreshErr := s.refreshDisplayName(ctx, winner, pushName); refreshErr != nil {
				return nil, refreshErr
			}
			return winner, nil
		}
		return nil, fmt.Errorf("contact creation failed: %w", err)
	}
	return contact, nil
}

// refreshDisplayName applies the event's push name to an already resolved
// contact. Empty push names never overwrite a stored one.
func (s *PipelineService) refreshDisplayName(ctx context.Context, contact *model.Contact, pushName string) error {
	if pushName == "" || pushName == contact.PushName {
		return nil
	}
	contact.PushName = pushName
	if err := s.contactRepo.Update(ctx, *contact); err != nil {
		return fmt.Errorf("failed to refresh display name for contact %s: %w", contact.ID, err)
	}
	return nil
}

// lookupContact tries the two stored phone representations in precedence
// order. The prefixed row wins when both exist.
func (s *PipelineService) lookupContact(ctx context.Context, withPrefix, local string) (*model.Contact, error) {
	contact, err := s.contactRepo.FindByPhone(ctx, withPrefix)
	if err == nil {
		return contact, nil
	}
	if !apperrors.IsNotFoundError(err) {
		return nil, fmt.Errorf("contact lookup failed: %w", err)
	}

	if local != "" && local != withPrefix {
		contact, err = s.contactRepo.FindByPhone(ctx, local)
		if err == nil {
			return contact, nil
		}
		if !apperrors.IsNotFoundError(err) {
			return nil, fmt.Errorf("contact lookup failed: %w", err)
		}
	}
	return nil, apperrors.ErrNotFound
}
