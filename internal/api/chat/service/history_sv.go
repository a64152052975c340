package chatService

import (
	"BankingChatbot/internal/api/chat"
	"BankingChatbot/internal/entity"
	contextPkg "BankingChatbot/pkg/context"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

func (s *chatService) GetHistory(ctx context.Context, userID string, page, limit int) (*chat.HistoryResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	repo, err := s.chatRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	offset := (page - 1) * limit
	turns, err := repo.Turns.GetTurnsByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := repo.Turns.CountTurnsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := &chat.HistoryResponse{
		Turns: make([]chat.TurnResponse, 0, len(turns)),
		Total: total,
		Page:  page,
		Limit: limit,
	}

	for _, turn := range turns {
		response.Turns = append(response.Turns, chat.TurnResponse{
			ID:         turn.ID,
			SessionID:  turn.SessionID,
			Message:    turn.Message,
			Intent:     turn.Intent,
			Confidence: turn.Confidence,
			Action:     turn.Action,
			Response:   turn.Response,
			CreatedAt:  turn.CreatedAt.Format(time.RFC3339),
		})
	}

	return response, nil
}

func (s *chatService) GetIntentTable(ctx context.Context) (*chat.IntentTableResponse, error) {
	return &chat.IntentTableResponse{Intents: s.table.Descriptors()}, nil
}

// TestNLP runs intent detection without routing or execution, for
// checking agent behavior directly.
func (s *chatService) TestNLP(ctx context.Context, req chat.NLPTestRequest) (*chat.NLPTestResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		id, err := s.utils.NewSessionID("")
		if err != nil {
			return nil, err
		}
		sessionID = id
	}

	languageCode := req.LanguageCode
	if languageCode == "" {
		languageCode = s.config.DefaultLanguage
	}

	session := entity.ConversationSession{
		SessionID:    sessionID,
		LanguageCode: languageCode,
	}

	detectCtx, cancel := context.WithTimeout(ctx, s.config.DetectTimeout)
	defer cancel()

	result, err := s.nluClient.DetectIntent(detectCtx, session, req.Text)
	if err != nil {
		return nil, mapProviderError(err)
	}

	return &chat.NLPTestResponse{
		Input:           req.Text,
		Intent:          result.Intent,
		Confidence:      result.Confidence,
		Parameters:      result.Parameters,
		FulfillmentText: result.FulfillmentText,
	}, nil
}
