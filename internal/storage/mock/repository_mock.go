// Package mock provides mock implementations of the storage repositories
// for use in tests.
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
)

// InstanceRepoMock mocks storage.InstanceRepo.
type InstanceRepoMock struct {
	mock.Mock
}

func (m *InstanceRepoMock) FindByExternalKey(ctx context.Context, externalKey string) (*model.Instance, error) {
	args := m.Called(ctx, externalKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Instance), args.Error(1)
}

// ContactRepoMock mocks storage.ContactRepo.
type ContactRepoMock struct {
	mock.Mock
}

func (m *ContactRepoMock) Create(ctx context.Context, contact *model.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *ContactRepoMock) Update(ctx context.Context, contact model.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *ContactRepoMock) FindByPhone(ctx context.Context, phone string) (*model.Contact, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *ContactRepoMock) Touch(ctx context.Context, contactID string, metadata datatypes.JSON, at time.Time) error {
	args := m.Called(ctx, contactID, metadata, at)
	return args.Error(0)
}

func (m *ContactRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// LeadRepoMock mocks storage.LeadRepo.
type LeadRepoMock struct {
	mock.Mock
}

func (m *LeadRepoMock) FindByAnyPhone(ctx context.Context, phones []string) (*model.Lead, error) {
	args := m.Called(ctx, phones)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *LeadRepoMock) FindByID(ctx context.Context, id string) (*model.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

// MessageRepoMock mocks storage.MessageRepo.
type MessageRepoMock struct {
	mock.Mock
}

func (m *MessageRepoMock) Save(ctx context.Context, message model.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MessageRepoMock) FindRecentByContactID(ctx context.Context, contactID string, limit int, excludeMessageID string) ([]model.Message, error) {
	args := m.Called(ctx, contactID, limit, excludeMessageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}

// ConversationHistoryRepoMock mocks storage.ConversationHistoryRepo.
type ConversationHistoryRepoMock struct {
	mock.Mock
}

func (m *ConversationHistoryRepoMock) Save(ctx context.Context, record model.ConversationHistory) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
