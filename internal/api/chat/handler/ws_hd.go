package chatHandler

import (
	"BankingChatbot/internal/api/chat"
	chatService "BankingChatbot/internal/api/chat/service"
	"BankingChatbot/internal/entity"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func (h *ChatHandler) UpgradeWebsocket(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ChatWebsocket serves the web chat UI. Each text frame carries a
// ProcessMessageRequest and gets a ChatResponse frame back; the session
// survives across frames through the session store.
func (h *ChatHandler) ChatWebsocket(conn *websocket.Conn) {
	h.log.Info("Chat WebSocket client connected")
	defer h.log.Info("Chat WebSocket client disconnected")

	caller := chatService.Caller{}
	if userData, ok := conn.Locals("user").(entity.UserLoginData); ok {
		caller.UserID = userData.ID
		caller.Authenticated = true
	}

	conn.SetPingHandler(func(data string) error {
		if err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	maxReadTimeout := 120 * time.Second

	for {
		if err := conn.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		var req chat.ProcessMessageRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Errorf("Chat WebSocket error: %v", err)
			} else {
				h.log.Info("Chat WebSocket connection closed")
			}
			break
		}

		if err := h.validator.Struct(req); err != nil {
			if writeErr := conn.WriteJSON(map[string]string{"error": "Validation failed: " + err.Error()}); writeErr != nil {
				h.log.Errorf("Error sending error response: %v", writeErr)
				break
			}
			continue
		}

		c, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		res, err := h.chatService.ProcessMessage(c, caller, req)
		cancel()

		if err != nil {
			h.log.Errorf("Error processing chat message: %v", err)
			if writeErr := conn.WriteJSON(map[string]string{"error": err.Error()}); writeErr != nil {
				h.log.Errorf("Error sending error response: %v", writeErr)
				break
			}
			continue
		}

		if err := conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := conn.WriteJSON(res); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}

		if err := conn.SetWriteDeadline(time.Time{}); err != nil {
			h.log.Errorf("Error resetting write deadline: %v", err)
			break
		}
	}
}
