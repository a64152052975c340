package chatService

import (
	"BankingChatbot/internal/api/chat"
	"BankingChatbot/internal/entity"
	contextPkg "BankingChatbot/pkg/context"
	redisPkg "BankingChatbot/pkg/redis"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	cancelledText = "Okay, I've cancelled that request. Is there anything else I can help with?"
)

// ProcessConfirmation resolves a pending CONFIRM decision: approval
// executes the stored operation against the banking API, decline just
// clears the pending state.
func (s *chatService) ProcessConfirmation(
	ctx context.Context,
	caller Caller,
	req chat.ConfirmRequest,
) (*chat.ChatResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	session, err := s.sessionStore.GetSession(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, redisPkg.ErrSessionNotFound) {
			return nil, chat.ErrSessionNotFound
		}
		return nil, err
	}

	if caller.UserID != "" && session.UserID != caller.UserID {
		return nil, chat.ErrSessionNotOwned
	}

	if !session.PendingConfirmation || session.PendingEndpoint == "" {
		return nil, chat.ErrNoPendingOperation
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": session.SessionID,
		"intent":     session.PendingIntent,
		"approved":   req.Approve,
	}).Info("Handling confirmation")

	response := &chat.ChatResponse{
		SessionID:  session.SessionID,
		Intent:     session.PendingIntent,
		Confidence: 1.0,
	}

	if !req.Approve {
		response.Action = "cancelled"
		response.Text = cancelledText
		s.clearPendingAndSave(ctx, session)
		s.persistTurn(ctx, session, "confirmation declined", response)
		return response, nil
	}

	operation, _ := s.table.Lookup(session.PendingIntent)
	if operation.RequiresAuth && !caller.Authenticated {
		response.Action = "confirm"
		response.AuthRequired = true
		response.Text = authRequiredText
		return response, nil
	}

	session.Authenticated = caller.Authenticated

	payload := payloadFromParams(session.PendingParams)
	payload["userId"] = session.UserID

	apiResult, err := s.bankingAPI.Invoke(ctx, session.PendingEndpoint, caller.BearerToken, payload)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": session.SessionID,
			"endpoint":   session.PendingEndpoint,
			"error":      err.Error(),
		}).Error("Banking API call failed during confirmation")
		return nil, chat.ErrBankingAPIFailed
	}

	response.Action = "executed"
	response.Endpoint = session.PendingEndpoint
	response.Text = s.formatter.Format(session.PendingIntent, session.PendingParams, apiResult, "")

	s.clearPendingAndSave(ctx, session)
	s.persistTurn(ctx, session, "confirmation approved", response)

	return response, nil
}

func (s *chatService) clearPendingAndSave(ctx context.Context, session entity.ConversationSession) {
	session.PendingConfirmation = false
	session.PendingIntent = ""
	session.PendingEndpoint = ""
	session.PendingParams = nil
	session.LastActivity = time.Now()

	if err := s.sessionStore.SetSession(ctx, session, s.config.SessionTimeout); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": session.SessionID,
			"error":      err.Error(),
		}).Warn("Failed to update session")
	}
}
