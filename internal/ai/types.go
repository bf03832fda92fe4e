// Package ai generates outbound replies for inbound contact messages using
// an OpenAI-compatible chat completion endpoint.
package ai

import "encoding/json"

// Chat roles on the completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn in the completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Directive is the orchestrator's decision for one inbound message. It is
// either a Reply or a Terminate; calling code switches on the concrete type
// and treats any other value as a bug.
type Directive interface {
	isDirective()
}

// Reply instructs the pipeline to send Text and keep the conversation open.
type Reply struct {
	Text string
}

func (Reply) isDirective() {}

// Terminate instructs the pipeline to send FinalText as a farewell and mark
// the conversation completed. An empty FinalText skips the farewell send;
// Reason is the model's stated justification.
type Terminate struct {
	FinalText string
	Reason    string
}

func (Terminate) isDirective() {}

// --- completion wire types ---

type toolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type tool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type completionRequest struct {
	Model            string        `json:"model"`
	Temperature      float32       `json:"temperature"`
	FrequencyPenalty float32       `json:"frequency_penalty"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	Messages         []ChatMessage `json:"messages"`
	Tools            []tool        `json:"tools,omitempty"`
	ToolChoice       string        `json:"tool_choice,omitempty"`
}

type completionChoice struct {
	Message struct {
		Role      string     `json:"role"`
		Content   string     `json:"content"`
		ToolCalls []toolCall `json:"tool_calls"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type completionResponse struct {
	Choices []completionChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// endConversationArgs is the parsed argument payload of the
// end_conversation tool call.
type endConversationArgs struct {
	Reason       string `json:"reason"`
	FinalMessage string `json:"final_message"`
}
