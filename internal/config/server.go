package config

import (
	"BankingChatbot/database/postgres"
	chatHandler "BankingChatbot/internal/api/chat/handler"
	chatRepository "BankingChatbot/internal/api/chat/repository"
	chatService "BankingChatbot/internal/api/chat/service"
	"BankingChatbot/internal/middleware"
	"BankingChatbot/pkg/bankingapi"
	"BankingChatbot/pkg/dialogflow"
	"BankingChatbot/pkg/formatter"
	"BankingChatbot/pkg/intent"
	"BankingChatbot/pkg/redis"
	"BankingChatbot/pkg/utils"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"os"
)

type ServerOption func(*Server) error

type Server struct {
	engine           *fiber.App
	db               *sqlx.DB
	log              *logrus.Logger
	middleware       middleware.Middleware
	validator        *validator.Validate
	utils            utils.IUtils
	handlers         []handler
	redisServer      redis.IRedis
	dialogflowClient dialogflow.IDialogflow
	bankingAPIClient bankingapi.IBankingAPI
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithDialogflowClient() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before the Dialogflow client")
		}
		client, err := dialogflow.NewDialogflowClient(s.log)
		if err != nil {
			s.log.Errorf("Failed to create Dialogflow client: %v", err)
			return fmt.Errorf("failed to create Dialogflow client: %w", err)
		}
		s.dialogflowClient = client
		return nil
	}
}

func WithBankingAPIClient() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before the banking API client")
		}
		client, err := bankingapi.New(s.log)
		if err != nil {
			s.log.Errorf("Failed to create banking API client: %v", err)
			return fmt.Errorf("failed to create banking API client: %w", err)
		}
		s.bankingAPIClient = client
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Chat Domain
	chatRepo := chatRepository.New(s.db, s.log)
	intentTable := intent.DefaultTable()
	intentRouter := intent.NewRouter(s.log, intentTable, chatService.LoadRouterConfig())
	chatServices := chatService.NewChatService(
		s.log,
		chatRepo,
		s.redisServer,
		s.dialogflowClient,
		s.bankingAPIClient,
		intentRouter,
		intentTable,
		formatter.New(),
		s.utils,
		chatService.LoadChatConfig(),
	)
	chatHandlers := chatHandler.New(s.log, s.validator, s.middleware, chatServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, chatHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		if s.dialogflowClient != nil {
			if closeErr := s.dialogflowClient.Close(); closeErr != nil {
				s.log.Errorf("Failed to close Dialogflow client: %v", closeErr)
			}
		}
		return err
	}

	return nil
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
