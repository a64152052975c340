package chatRepository

import (
	"BankingChatbot/internal/entity"
	contextPkg "BankingChatbot/pkg/context"
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *turnRepository) CreateTurn(ctx context.Context, turn entity.ChatTurn) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":         turn.ID,
		"session_id": turn.SessionID,
		"user_id":    turn.UserID,
		"message":    turn.Message,
		"intent":     turn.Intent,
		"confidence": turn.Confidence,
		"action":     turn.Action,
		"response":   turn.Response,
		"endpoint":   turn.Endpoint,
		"created_at": turn.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateChatTurn, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateTurn")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating chat turn")
		return err
	}

	return nil
}

func (r *turnRepository) GetTurnsByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.ChatTurn, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
		"offset":  offset,
	}

	query, args, err := sqlx.Named(queryGetChatTurnsByUserID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTurnsByUserID named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	var turns []entity.ChatTurn
	if err := r.q.SelectContext(ctx, &turns, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when fetching chat turns")
		return nil, err
	}

	return turns, nil
}

func (r *turnRepository) CountTurnsByUserID(ctx context.Context, userID string) (int, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"user_id": userID,
	}

	query, args, err := sqlx.Named(queryCountChatTurnsByUserID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountTurnsByUserID named query preparation err")
		return 0, err
	}
	query = r.q.Rebind(query)

	var total int
	if err := r.q.QueryRowxContext(ctx, query, args...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when counting chat turns")
		return 0, err
	}

	return total, nil
}
