package chat

import (
	"BankingChatbot/pkg/intent"
	"BankingChatbot/pkg/nlp"
)

type ProcessMessageRequest struct {
	Message      string `json:"message" validate:"required,min=1,max=500"`
	SessionID    string `json:"session_id,omitempty"`
	LanguageCode string `json:"language_code,omitempty" validate:"omitempty,bcp47_language_tag"`
}

type ConfirmRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Approve   bool   `json:"approve"`
}

type ChatResponse struct {
	Text                string                    `json:"text"`
	SessionID           string                    `json:"session_id"`
	Intent              string                    `json:"intent"`
	Confidence          float64                   `json:"confidence"`
	Action              string                    `json:"action"`
	AuthRequired        bool                      `json:"auth_required,omitempty"`
	PendingConfirmation bool                      `json:"pending_confirmation,omitempty"`
	Endpoint            string                    `json:"endpoint,omitempty"`
	Parameters          map[string]nlp.ParamValue `json:"parameters,omitempty"`
}

type TurnResponse struct {
	ID         string  `json:"id"`
	SessionID  string  `json:"session_id"`
	Message    string  `json:"message"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Action     string  `json:"action"`
	Response   string  `json:"response"`
	CreatedAt  string  `json:"created_at"`
}

type HistoryResponse struct {
	Turns []TurnResponse `json:"turns"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type IntentTableResponse struct {
	Intents []intent.OperationDescriptor `json:"intents"`
}

type NLPTestRequest struct {
	Text         string `json:"text" validate:"required,min=1,max=500"`
	SessionID    string `json:"session_id,omitempty"`
	LanguageCode string `json:"language_code,omitempty" validate:"omitempty,bcp47_language_tag"`
}

type NLPTestResponse struct {
	Input           string                    `json:"input"`
	Intent          string                    `json:"intent"`
	Confidence      float64                   `json:"confidence"`
	Parameters      map[string]nlp.ParamValue `json:"parameters"`
	FulfillmentText string                    `json:"fulfillment_text"`
}
