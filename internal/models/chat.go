package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ChatRole is the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// MaxChatMessageLength is the longest question accepted, in characters.
const MaxChatMessageLength = 1000

// ChatMessage is one turn of the conversation history.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ChatRequest is the body of a chat relay call.
type ChatRequest struct {
	ConversationID  string           `json:"conversationId,omitempty"`
	Message         string           `json:"message" validate:"required,min=1,max=1000"`
	Messages        []ChatMessage    `json:"messages,omitempty"`
	DiagnosisID     string           `json:"diagnosisId,omitempty"`
	DiagnosisResult *DiagnosisResult `json:"diagnosisResult,omitempty" validate:"-"`
}

// ChatChunk is one streamed piece of the assistant's answer.
type ChatChunk struct {
	Content string `json:"content"`
}

// ValidateChatRequest trims the message and checks its length.
func ValidateChatRequest(r *ChatRequest) error {
	r.Message = strings.TrimSpace(r.Message)

	if err := validate.Struct(r); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			switch validationErrors[0].Tag() {
			case "required", "min":
				return fmt.Errorf("%w: 질문을 입력해주세요", ErrInvalidChatRequest)
			case "max":
				return fmt.Errorf("%w: 질문은 %d자를 초과할 수 없습니다", ErrInvalidChatRequest, MaxChatMessageLength)
			}
		}
		return fmt.Errorf("%w: %v", ErrInvalidChatRequest, err)
	}
	return nil
}
