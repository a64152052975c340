package chatHandler

import (
	chatService "BankingChatbot/internal/api/chat/service"
	"BankingChatbot/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type ChatHandler struct {
	log         *logrus.Logger
	validator   *validator.Validate
	middleware  middleware.Middleware
	chatService chatService.IChatService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	cs chatService.IChatService,
) *ChatHandler {
	return &ChatHandler{
		log:         log,
		validator:   validate,
		middleware:  middleware,
		chatService: cs,
	}
}

func (h *ChatHandler) Start(srv fiber.Router) {
	chat := srv.Group("/chat")

	// Conversation endpoints accept anonymous callers; routing decides
	// per intent whether authentication is required.
	chat.Post("/message", h.middleware.NewRateLimiter, h.middleware.NewOptionalTokenMiddleware, h.ProcessMessage)
	chat.Post("/confirm", h.middleware.NewRateLimiter, h.middleware.NewOptionalTokenMiddleware, h.ProcessConfirmation)

	chat.Get("/history", h.middleware.NewTokenMiddleware, h.GetHistory)

	// Debug and admin surface
	chat.Get("/intents", h.GetIntentTable)
	chat.Post("/nlp/test", h.TestNLP)

	// Websocket channel for the web chat UI
	chat.Use("/ws", h.middleware.NewOptionalTokenMiddleware, h.UpgradeWebsocket)
	chat.Get("/ws", websocket.New(h.ChatWebsocket))
}
