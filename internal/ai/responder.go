package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/config"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
)

// CompletionClient abstracts the completion transport so the responder can
// be tested against a fake.
type CompletionClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (*completionChoice, error)
}

// Responder turns an inbound message plus conversation context into a
// Directive. Generate never returns an error: any failure degrades to a
// canned reply so message ingestion is never coupled to model availability.
type Responder struct {
	client       CompletionClient
	historyLimit int
	greetingPool []string
	signoffPool  []string
}

// NewResponder builds a responder over the given completion client.
func NewResponder(client CompletionClient, cfg config.AIConfig) *Responder {
	greetings := cfg.GreetingPool
	if len(greetings) == 0 {
		greetings = config.DefaultGreetingPool
	}
	signoffs := cfg.SignoffPool
	if len(signoffs) == 0 {
		signoffs = config.DefaultSignoffPool
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &Responder{
		client:       client,
		historyLimit: historyLimit,
		greetingPool: greetings,
		signoffPool:  signoffs,
	}
}

// HistoryLimit reports how many prior turns Generate folds into the prompt.
// Callers use it to size the transcript fetch.
func (r *Responder) HistoryLimit() int {
	return r.historyLimit
}

// Generate produces the directive for one inbound message. history must be
// ordered oldest first. lead may be nil when the contact is not linked.
func (r *Responder) Generate(ctx context.Context, userMessage string, history []model.Message, lead *model.Lead) Directive {
	directive, err := r.complete(ctx, userMessage, history, lead)
	if err != nil {
		logger.FromContext(ctx).Warn("Reply generation failed, falling back to greeting pool", zap.Error(err))
		return Reply{Text: pick(r.greetingPool)}
	}
	return directive
}

func (r *Responder) complete(ctx context.Context, userMessage string, history []model.Message, lead *model.Lead) (Directive, error) {
	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: RoleSystem, Content: r.systemPrompt(lead)})

	if len(history) > r.historyLimit {
		history = history[len(history)-r.historyLimit:]
	}
	for _, m := range history {
		role := RoleUser
		if m.Direction == model.DirectionOutbound {
			role = RoleAssistant
		}
		if strings.TrimSpace(m.Body) == "" {
			continue
		}
		messages = append(messages, ChatMessage{Role: role, Content: m.Body})
	}
	messages = append(messages, ChatMessage{Role: RoleUser, Content: userMessage})

	choice, err := r.client.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	// The first end_conversation call wins; any other tool call is ignored.
	for _, call := range choice.Message.ToolCalls {
		if call.Function.Name != endConversationToolName {
			continue
		}
		var args endConversationArgs
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			logger.FromContext(ctx).Warn("Ignoring end_conversation call with malformed arguments",
				zap.String("arguments", call.Function.Arguments),
				zap.Error(err))
			break
		}
		// The final message is passed through as given; when the model omits
		// it the farewell send is skipped entirely.
		return Terminate{FinalText: strings.TrimSpace(args.FinalMessage), Reason: args.Reason}, nil
	}

	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return Reply{Text: pick(r.signoffPool)}, nil
	}
	return Reply{Text: text}, nil
}

func (r *Responder) systemPrompt(lead *model.Lead) string {
	var b strings.Builder
	b.WriteString("Você é um atendente virtual de uma instituição de ensino conversando com um possível aluno pelo WhatsApp. ")
	b.WriteString("Responda sempre em português brasileiro, de forma cordial, objetiva e em tom de conversa. ")
	b.WriteString("Mantenha cada resposta em torno de 200 caracteres, nunca muito mais que isso. ")
	b.WriteString("Não invente valores, datas ou condições que você não conhece; nesse caso diga que a equipe comercial confirmará os detalhes.\n\n")

	if lead != nil {
		b.WriteString("Dados do lead:\n")
		if lead.Name != "" {
			fmt.Fprintf(&b, "- Nome: %s\n", lead.Name)
		}
		if lead.CourseOfInterest != "" {
			fmt.Fprintf(&b, "- Curso de interesse: %s\n", lead.CourseOfInterest)
		}
		if lead.Email != "" {
			fmt.Fprintf(&b, "- Email: %s\n", lead.Email)
		}
		b.WriteString("\n")
	}

	b.WriteString("Quando todas as dúvidas do contato estiverem respondidas, quando ele se despedir, ")
	b.WriteString("demonstrar claramente desinteresse ou pedir para encerrar o atendimento, ")
	b.WriteString("chame a ferramenta end_conversation com uma mensagem final de despedida em vez de continuar a conversa.")
	return b.String()
}

func pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rand.IntN(len(pool))]
}
