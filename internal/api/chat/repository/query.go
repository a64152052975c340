package chatRepository

const (
	queryCreateChatTurn = `
		INSERT INTO chat_turns (
			id, session_id, user_id, message, intent,
			confidence, action, response, endpoint, created_at
		) VALUES (
			:id, :session_id, :user_id, :message, :intent,
			:confidence, :action, :response, :endpoint, :created_at
		)
	`

	queryGetChatTurnsByUserID = `
		SELECT
			id, session_id, user_id, message, intent,
			confidence, action, response, endpoint, created_at
		FROM chat_turns
		WHERE user_id = :user_id
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountChatTurnsByUserID = `
		SELECT COUNT(*)
		FROM chat_turns
		WHERE user_id = :user_id
	`
)
