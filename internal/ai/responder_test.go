package ai

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/config"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/model"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type fakeCompletionClient struct {
	choice   *completionChoice
	err      error
	captured []ChatMessage
}

func (f *fakeCompletionClient) Complete(_ context.Context, messages []ChatMessage) (*completionChoice, error) {
	f.captured = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.choice, nil
}

func textChoice(content string) *completionChoice {
	choice := &completionChoice{FinishReason: "stop"}
	choice.Message.Role = RoleAssistant
	choice.Message.Content = content
	return choice
}

func toolChoice(arguments string) *completionChoice {
	choice := &completionChoice{FinishReason: "tool_calls"}
	choice.Message.Role = RoleAssistant
	call := toolCall{ID: "call-1", Type: "function"}
	call.Function.Name = endConversationToolName
	call.Function.Arguments = arguments
	choice.Message.ToolCalls = []toolCall{call}
	return choice
}

func newTestResponder(client CompletionClient) *Responder {
	return NewResponder(client, config.AIConfig{
		HistoryLimit: 3,
		GreetingPool: []string{"greeting fallback"},
		SignoffPool:  []string{"signoff fallback"},
	})
}

func TestResponder_Generate_Reply(t *testing.T) {
	client := &fakeCompletionClient{choice: textChoice("Claro! O curso começa em março.")}
	responder := newTestResponder(client)

	directive := responder.Generate(context.Background(), "quando começa o curso?", nil, nil)

	reply, ok := directive.(Reply)
	require.True(t, ok)
	assert.Equal(t, "Claro! O curso começa em março.", reply.Text)

	require.GreaterOrEqual(t, len(client.captured), 2)
	assert.Equal(t, RoleSystem, client.captured[0].Role)
	assert.Equal(t, RoleUser, client.captured[len(client.captured)-1].Role)
	assert.Equal(t, "quando começa o curso?", client.captured[len(client.captured)-1].Content)
}

func TestResponder_Generate_Terminate(t *testing.T) {
	client := &fakeCompletionClient{choice: toolChoice(`{"reason":"resolved","final_message":"Foi um prazer ajudar. Até logo!"}`)}
	responder := newTestResponder(client)

	directive := responder.Generate(context.Background(), "era só isso, obrigado", nil, nil)

	terminate, ok := directive.(Terminate)
	require.True(t, ok)
	assert.Equal(t, "resolved", terminate.Reason)
	assert.Equal(t, "Foi um prazer ajudar. Até logo!", terminate.FinalText)
}

func TestResponder_Generate_TerminateWithoutFinalMessage(t *testing.T) {
	client := &fakeCompletionClient{choice: toolChoice(`{"reason":"user said goodbye"}`)}
	responder := newTestResponder(client)

	directive := responder.Generate(context.Background(), "tchau", nil, nil)

	// No substituted farewell: the directive carries the final message as
	// given so the delivery side can skip the send.
	terminate, ok := directive.(Terminate)
	require.True(t, ok)
	assert.Equal(t, "user said goodbye", terminate.Reason)
	assert.Empty(t, terminate.FinalText)
}

func TestResponder_Generate_MalformedToolArgumentsFallsBackToContent(t *testing.T) {
	choice := toolChoice(`{not json`)
	choice.Message.Content = "Tudo certo então!"
	client := &fakeCompletionClient{choice: choice}
	responder := newTestResponder(client)

	directive := responder.Generate(context.Background(), "tchau", nil, nil)

	reply, ok := directive.(Reply)
	require.True(t, ok)
	assert.Equal(t, "Tudo certo então!", reply.Text)
}

func TestResponder_Generate_EmptyContentUsesSignoffPool(t *testing.T) {
	client := &fakeCompletionClient{choice: textChoice("   ")}
	responder := newTestResponder(client)

	directive := responder.Generate(context.Background(), "ok", nil, nil)

	reply, ok := directive.(Reply)
	require.True(t, ok)
	assert.Equal(t, "signoff fallback", reply.Text)
}

func TestResponder_Generate_ClientErrorUsesGreetingPool(t *testing.T) {
	client := &fakeCompletionClient{err: errors.New("connection refused")}
	responder := newTestResponder(client)

	directive := responder.Generate(context.Background(), "oi", nil, nil)

	reply, ok := directive.(Reply)
	require.True(t, ok)
	assert.Equal(t, "greeting fallback", reply.Text)
}

func TestResponder_Generate_HistoryRolesAndLimit(t *testing.T) {
	client := &fakeCompletionClient{choice: textChoice("ok")}
	responder := newTestResponder(client)
	now := time.Now()

	history := []model.Message{
		{Body: "turn 1", Direction: model.DirectionInbound, SentAt: now.Add(-5 * time.Minute)},
		{Body: "turn 2", Direction: model.DirectionOutbound, SentAt: now.Add(-4 * time.Minute)},
		{Body: "turn 3", Direction: model.DirectionInbound, SentAt: now.Add(-3 * time.Minute)},
		{Body: "turn 4", Direction: model.DirectionOutbound, SentAt: now.Add(-2 * time.Minute)},
	}

	responder.Generate(context.Background(), "current", history, nil)

	// system + 3 most recent turns + current user message
	require.Len(t, client.captured, 5)
	assert.Equal(t, "turn 2", client.captured[1].Content)
	assert.Equal(t, RoleAssistant, client.captured[1].Role)
	assert.Equal(t, "turn 3", client.captured[2].Content)
	assert.Equal(t, RoleUser, client.captured[2].Role)
	assert.Equal(t, "turn 4", client.captured[3].Content)
	assert.Equal(t, "current", client.captured[4].Content)
}

func TestResponder_SystemPrompt_LeadInterpolation(t *testing.T) {
	responder := newTestResponder(&fakeCompletionClient{})

	withLead := responder.systemPrompt(&model.Lead{
		Name:             "Ana Souza",
		CourseOfInterest: "Engenharia de Software",
		Email:            "ana@example.com",
	})
	assert.Contains(t, withLead, "Ana Souza")
	assert.Contains(t, withLead, "Engenharia de Software")
	assert.Contains(t, withLead, "ana@example.com")
	assert.Contains(t, withLead, "end_conversation")

	withoutLead := responder.systemPrompt(nil)
	assert.NotContains(t, withoutLead, "Dados do lead")
	assert.Contains(t, withoutLead, "end_conversation")
	// Termination criteria cover farewell, resolution, disinterest and an
	// explicit stop request.
	assert.Contains(t, withoutLead, "se despedir")
	assert.Contains(t, withoutLead, "desinteresse")
	assert.Contains(t, withoutLead, "pedir para encerrar")
	assert.Contains(t, withoutLead, "dúvidas do contato estiverem respondidas")
}
