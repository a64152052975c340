package entity

import (
	"BankingChatbot/pkg/nlp"
	"time"
)

// ConversationSession is owned by the calling application and passed
// into the NLU client on every turn. The gateway only keeps it alive in
// the session store until the idle timeout expires.
type ConversationSession struct {
	SessionID           string                    `json:"session_id"`
	UserID              string                    `json:"user_id"`
	LanguageCode        string                    `json:"language_code"`
	Authenticated       bool                      `json:"authenticated"`
	PendingConfirmation bool                      `json:"pending_confirmation"`
	PendingIntent       string                    `json:"pending_intent,omitempty"`
	PendingEndpoint     string                    `json:"pending_endpoint,omitempty"`
	PendingParams       map[string]nlp.ParamValue `json:"pending_params,omitempty"`
	CreatedAt           time.Time                 `json:"created_at"`
	LastActivity        time.Time                 `json:"last_activity"`
}

// ChatTurn is one processed utterance, persisted for history and
// intent-visibility logging.
type ChatTurn struct {
	ID         string    `json:"id" db:"id"`
	SessionID  string    `json:"session_id" db:"session_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Message    string    `json:"message" db:"message"`
	Intent     string    `json:"intent" db:"intent"`
	Confidence float64   `json:"confidence" db:"confidence"`
	Action     string    `json:"action" db:"action"`
	Response   string    `json:"response" db:"response"`
	Endpoint   string    `json:"endpoint" db:"endpoint"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
