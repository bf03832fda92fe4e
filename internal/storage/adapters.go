package storage

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
)

// InstanceRepoAdapter adapts the PostgresRepo to the InstanceRepo interface
type InstanceRepoAdapter struct {
	postgres *PostgresRepo
}

// NewInstanceRepoAdapter creates a new instance repository adapter
func NewInstanceRepoAdapter(postgres *PostgresRepo) InstanceRepo {
	return &InstanceRepoAdapter{postgres: postgres}
}

func (a *InstanceRepoAdapter) FindByExternalKey(ctx context.Context, externalKey string) (*model.Instance, error) {
	return a.postgres.FindInstanceByExternalKey(ctx, externalKey)
}

// ContactRepoAdapter adapts the PostgresRepo to the ContactRepo interface
type ContactRepoAdapter struct {
	postgres *PostgresRepo
}

// NewContactRepoAdapter creates a new contact repository adapter
func NewContactRepoAdapter(postgres *PostgresRepo) ContactRepo {
	return &ContactRepoAdapter{postgres: postgres}
}

func (a *ContactRepoAdapter) Create(ctx context.Context, contact *model.Contact) error {
	return a.postgres.CreateContact(ctx, contact)
}

func (a *ContactRepoAdapter) Update(ctx context.Context, contact model.Contact) error {
	return a.postgres.UpdateContact(ctx, contact)
}

func (a *ContactRepoAdapter) FindByPhone(ctx context.Context, phone string) (*model.Contact, error) {
	return a.postgres.FindContactByPhone(ctx, phone)
}

func (a *ContactRepoAdapter) Touch(ctx context.Context, contactID string, metadata datatypes.JSON, at time.Time) error {
	return a.postgres.TouchContact(ctx, contactID, metadata, at)
}

func (a *ContactRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// LeadRepoAdapter adapts the PostgresRepo to the LeadRepo interface
type LeadRepoAdapter struct {
	postgres *PostgresRepo
}

// NewLeadRepoAdapter creates a new lead repository adapter
func NewLeadRepoAdapter(postgres *PostgresRepo) LeadRepo {
	return &LeadRepoAdapter{postgres: postgres}
}

func (a *LeadRepoAdapter) FindByAnyPhone(ctx context.Context, phones []string) (*model.Lead, error) {
	return a.postgres.FindLeadByAnyPhone(ctx, phones)
}

func (a *LeadRepoAdapter) FindByID(ctx context.Context, id string) (*model.Lead, error) {
	return a.postgres.FindLeadByID(ctx, id)
}

// MessageRepoAdapter adapts the PostgresRepo to the MessageRepo interface
type MessageRepoAdapter struct {
	postgres *PostgresRepo
}

// NewMessageRepoAdapter creates a new message repository adapter
func NewMessageRepoAdapter(postgres *PostgresRepo) MessageRepo {
	return &MessageRepoAdapter{postgres: postgres}
}

func (a *MessageRepoAdapter) Save(ctx context.Context, message model.Message) error {
	return a.postgres.SaveMessage(ctx, message)
}

func (a *MessageRepoAdapter) FindRecentByContactID(ctx context.Context, contactID string, limit int, excludeMessageID string) ([]model.Message, error) {
	return a.postgres.FindRecentMessagesByContactID(ctx, contactID, limit, excludeMessageID)
}

// ConversationHistoryRepoAdapter adapts the PostgresRepo to the
// ConversationHistoryRepo interface
type ConversationHistoryRepoAdapter struct {
	postgres *PostgresRepo
}

// NewConversationHistoryRepoAdapter creates a new conversation history repository adapter
func NewConversationHistoryRepoAdapter(postgres *PostgresRepo) ConversationHistoryRepo {
	return &ConversationHistoryRepoAdapter{postgres: postgres}
}

func (a *ConversationHistoryRepoAdapter) Save(ctx context.Context, record model.ConversationHistory) error {
	return a.postgres.SaveConversationHistory(ctx, record)
}
