package chatService

import (
	"BankingChatbot/internal/api/chat"
	"BankingChatbot/internal/entity"
	contextPkg "BankingChatbot/pkg/context"
	"BankingChatbot/pkg/dialogflow"
	"BankingChatbot/pkg/intent"
	"BankingChatbot/pkg/nlp"
	redisPkg "BankingChatbot/pkg/redis"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	clarifyText      = "I'm not quite sure what you need. Could you rephrase that?"
	authRequiredText = "You need to sign in before I can help with that. Please log in and try again."
)

func (s *chatService) ProcessMessage(
	ctx context.Context,
	caller Caller,
	req chat.ProcessMessageRequest,
) (*chat.ChatResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if req.Message == "" {
		return nil, chat.ErrEmptyMessage
	}

	session, err := s.getOrCreateSession(ctx, caller, req.SessionID, req.LanguageCode)
	if err != nil {
		return nil, err
	}

	detectCtx, cancel := context.WithTimeout(ctx, s.config.DetectTimeout)
	defer cancel()

	result, err := s.nluClient.DetectIntent(detectCtx, session, req.Message)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": session.SessionID,
			"error":      err.Error(),
		}).Error("Intent detection failed")
		return nil, mapProviderError(err)
	}

	decision := s.router.Route(result, session)

	s.log.WithFields(logrus.Fields{
		"request_id":    requestID,
		"session_id":    session.SessionID,
		"intent":        result.Intent,
		"confidence":    result.Confidence,
		"action":        decision.Action.String(),
		"auth_required": decision.AuthRequired,
	}).Info("Turn routed")

	response := &chat.ChatResponse{
		SessionID:  session.SessionID,
		Intent:     result.Intent,
		Confidence: result.Confidence,
		Action:     decision.Action.String(),
		Endpoint:   decision.Operation.APIEndpoint,
		Parameters: decision.Params,
	}

	switch {
	case decision.AuthRequired:
		response.AuthRequired = true
		response.Text = authRequiredText

	case decision.Action == intent.ActionClarify:
		response.Text = clarifyText

	case decision.Action == intent.ActionAutoExecute:
		text, err := s.executeOperation(ctx, caller, session, decision, result.FulfillmentText)
		if err != nil {
			return nil, err
		}
		response.Text = text

	case decision.Action == intent.ActionConfirm:
		response.Text = s.formatter.Format(result.Intent, decision.Params, nil, result.FulfillmentText)
		if decision.Operation.APIEndpoint != "" {
			session.PendingConfirmation = true
			session.PendingIntent = result.Intent
			session.PendingEndpoint = decision.Operation.APIEndpoint
			session.PendingParams = decision.Params
			response.PendingConfirmation = true
		}
	}

	if !response.PendingConfirmation {
		session.PendingConfirmation = false
		session.PendingIntent = ""
		session.PendingEndpoint = ""
		session.PendingParams = nil
	}

	session.LastActivity = time.Now()
	if err := s.sessionStore.SetSession(ctx, session, s.config.SessionTimeout); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": session.SessionID,
			"error":      err.Error(),
		}).Warn("Failed to update session")
	}

	s.persistTurn(ctx, session, req.Message, response)

	return response, nil
}

// executeOperation runs an approved decision. Read-only intents without
// an endpoint are answered directly from the template or fulfillment
// text; everything else goes through the banking API.
func (s *chatService) executeOperation(
	ctx context.Context,
	caller Caller,
	session entity.ConversationSession,
	decision intent.RoutingDecision,
	fulfillmentText string,
) (string, error) {
	if decision.Operation.APIEndpoint == "" {
		return s.formatter.Format(decision.Operation.Intent, decision.Params, nil, fulfillmentText), nil
	}

	payload := payloadFromParams(decision.Params)
	payload["userId"] = session.UserID

	apiResult, err := s.bankingAPI.Invoke(ctx, decision.Operation.APIEndpoint, caller.BearerToken, payload)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": session.SessionID,
			"endpoint":   decision.Operation.APIEndpoint,
			"error":      err.Error(),
		}).Error("Banking API call failed")
		return "", chat.ErrBankingAPIFailed
	}

	return s.formatter.Format(decision.Operation.Intent, decision.Params, apiResult, fulfillmentText), nil
}

func (s *chatService) getOrCreateSession(
	ctx context.Context,
	caller Caller,
	sessionID string,
	languageCode string,
) (entity.ConversationSession, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if sessionID != "" {
		session, err := s.sessionStore.GetSession(ctx, sessionID)
		switch {
		case err == nil:
			if caller.UserID != "" && session.UserID != caller.UserID {
				return entity.ConversationSession{}, chat.ErrSessionNotOwned
			}
			session.Authenticated = caller.Authenticated
			if languageCode != "" {
				session.LanguageCode = languageCode
			}
			return session, nil
		case errors.Is(err, redisPkg.ErrSessionNotFound):
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": sessionID,
			}).Debug("Session expired or unknown, creating a new one")
		default:
			return entity.ConversationSession{}, err
		}
	}

	newID, err := s.utils.NewSessionID(caller.UserID)
	if err != nil {
		return entity.ConversationSession{}, err
	}

	userID := caller.UserID
	if userID == "" {
		userID = fmt.Sprintf("anonymous-%s", newID)
	}

	if languageCode == "" {
		languageCode = s.config.DefaultLanguage
	}

	now := time.Now()
	return entity.ConversationSession{
		SessionID:     newID,
		UserID:        userID,
		LanguageCode:  languageCode,
		Authenticated: caller.Authenticated,
		CreatedAt:     now,
		LastActivity:  now,
	}, nil
}

func (s *chatService) persistTurn(
	ctx context.Context,
	session entity.ConversationSession,
	message string,
	response *chat.ChatResponse,
) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.chatRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to create repository client, turn not recorded")
		return
	}

	turnID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to generate turn ID, turn not recorded")
		return
	}

	turn := entity.ChatTurn{
		ID:         turnID,
		SessionID:  session.SessionID,
		UserID:     session.UserID,
		Message:    message,
		Intent:     response.Intent,
		Confidence: response.Confidence,
		Action:     response.Action,
		Response:   response.Text,
		Endpoint:   response.Endpoint,
		CreatedAt:  time.Now(),
	}

	if err := repo.Turns.CreateTurn(ctx, turn); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to save chat turn")
	}
}

// payloadFromParams flattens normalized parameters into the request
// body for the downstream banking API. Money amounts travel as decimal
// strings so precision survives the wire.
func payloadFromParams(params map[string]nlp.ParamValue) map[string]interface{} {
	payload := make(map[string]interface{}, len(params)+1)
	for name, value := range params {
		switch value.Kind {
		case nlp.ParamString:
			payload[name] = value.Str
		case nlp.ParamNumber:
			payload[name] = value.Number
		case nlp.ParamMoney:
			payload[name] = map[string]interface{}{
				"amount":   value.Money.Amount.String(),
				"currency": value.Money.Currency,
			}
		}
	}
	return payload
}

func mapProviderError(err error) error {
	switch {
	case errors.Is(err, dialogflow.ErrEmptyText):
		return chat.ErrEmptyMessage
	case errors.Is(err, dialogflow.ErrProviderUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return chat.ErrProviderUnavailable
	case errors.Is(err, dialogflow.ErrProviderError),
		errors.Is(err, dialogflow.ErrMalformedResponse):
		return chat.ErrProviderRejected
	default:
		return err
	}
}
