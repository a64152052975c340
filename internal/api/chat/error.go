package chat

import "BankingChatbot/pkg/response"

var (
	ErrEmptyMessage        = response.NewError(400, "message must not be empty")
	ErrSessionNotFound     = response.NewError(404, "session not found")
	ErrSessionNotOwned     = response.NewError(403, "session does not belong to user")
	ErrNoPendingOperation  = response.NewError(409, "no pending operation to confirm")
	ErrProviderUnavailable = response.NewError(503, "assistant is temporarily unavailable")
	ErrProviderRejected    = response.NewError(502, "assistant could not process the request")
	ErrBankingAPIFailed    = response.NewError(502, "banking service request failed")
)
