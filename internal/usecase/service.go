// Package usecase wires the inbound-message pipeline: identity resolution,
// conversation state, transcript persistence and AI reply delivery.
package usecase

import (
	"context"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/ai"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/phone"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/storage"
)

// ReplyGenerator produces the directive for one inbound message. It never
// returns an error; degraded output is still a usable directive.
type ReplyGenerator interface {
	Generate(ctx context.Context, userMessage string, history []model.Message, lead *model.Lead) ai.Directive
	HistoryLimit() int
}

// MessageSender delivers an outbound text through the messaging gateway.
type MessageSender interface {
	SendText(ctx context.Context, instanceName, phone, text string) (string, error)
}

// PipelineService processes webhook message events end to end.
type PipelineService struct {
	instanceRepo storage.InstanceRepo
	contactRepo  storage.ContactRepo
	leadRepo     storage.LeadRepo
	messageRepo  storage.MessageRepo
	historyRepo  storage.ConversationHistoryRepo
	normalizer   phone.Normalizer
	responder    ReplyGenerator
	sender       MessageSender
}

// NewPipelineService creates a new pipeline service.
func NewPipelineService(
	instanceRepo storage.InstanceRepo,
	contactRepo storage.ContactRepo,
	leadRepo storage.LeadRepo,
	messageRepo storage.MessageRepo,
	historyRepo storage.ConversationHistoryRepo,
	normalizer phone.Normalizer,
	responder ReplyGenerator,
	sender MessageSender,
) *PipelineService {
	return &PipelineService{
		instanceRepo: instanceRepo,
		contactRepo:  contactRepo,
		leadRepo:     leadRepo,
		messageRepo:  messageRepo,
		historyRepo:  historyRepo,
		normalizer:   normalizer,
		responder:    responder,
		sender:       sender,
	}
}
