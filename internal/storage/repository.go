package storage

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
)

// InstanceRepo defines instance lookup operations. Instances are provisioned
// out of band; this pipeline only reads them.
type InstanceRepo interface {
	FindByExternalKey(ctx context.Context, externalKey string) (*model.Instance, error)
}

// ContactRepo defines contact storage operations. All lookups are scoped to
// the organization carried in the context.
type ContactRepo interface {
	Create(ctx context.Context, contact *model.Contact) error
	Update(ctx context.Context, contact model.Contact) error
	FindByPhone(ctx context.Context, phone string) (*model.Contact, error)
	Touch(ctx context.Context, contactID string, metadata datatypes.JSON, at time.Time) error
	Close(ctx context.Context) error
}

// LeadRepo defines read-only lead lookups.
type LeadRepo interface {
	FindByAnyPhone(ctx context.Context, phones []string) (*model.Lead, error)
	FindByID(ctx context.Context, id string) (*model.Lead, error)
}

// MessageRepo defines message storage operations. Messages are append-only.
type MessageRepo interface {
	Save(ctx context.Context, message model.Message) error
	FindRecentByContactID(ctx context.Context, contactID string, limit int, excludeMessageID string) ([]model.Message, error)
}

// ConversationHistoryRepo defines insert-only archival writes.
type ConversationHistoryRepo interface {
	Save(ctx context.Context, record model.ConversationHistory) error
}
