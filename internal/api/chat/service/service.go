package chatService

import (
	"BankingChatbot/internal/api/chat"
	chatRepository "BankingChatbot/internal/api/chat/repository"
	"BankingChatbot/pkg/bankingapi"
	"BankingChatbot/pkg/dialogflow"
	"BankingChatbot/pkg/formatter"
	"BankingChatbot/pkg/intent"
	redisPkg "BankingChatbot/pkg/redis"
	"BankingChatbot/pkg/utils"
	"context"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

type IChatService interface {
	ProcessMessage(ctx context.Context, caller Caller, req chat.ProcessMessageRequest) (*chat.ChatResponse, error)
	ProcessConfirmation(ctx context.Context, caller Caller, req chat.ConfirmRequest) (*chat.ChatResponse, error)
	GetHistory(ctx context.Context, userID string, page, limit int) (*chat.HistoryResponse, error)
	GetIntentTable(ctx context.Context) (*chat.IntentTableResponse, error)
	TestNLP(ctx context.Context, req chat.NLPTestRequest) (*chat.NLPTestResponse, error)
}

// Caller identifies who is speaking on this turn. Anonymous callers are
// allowed; routing decides per intent whether authentication is needed.
type Caller struct {
	UserID        string
	Authenticated bool
	BearerToken   string
}

type ChatConfig struct {
	DetectTimeout   time.Duration
	SessionTimeout  time.Duration
	DefaultLanguage string
}

func LoadChatConfig() ChatConfig {
	config := ChatConfig{
		DetectTimeout:   5 * time.Second,
		SessionTimeout:  30 * time.Minute,
		DefaultLanguage: "en",
	}

	if v := os.Getenv("SESSION_TIMEOUT_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			config.SessionTimeout = time.Duration(seconds) * time.Second
		}
	}
	if v := os.Getenv("DIALOGFLOW_LANGUAGE_CODE"); v != "" {
		config.DefaultLanguage = v
	}

	return config
}

// LoadRouterConfig reads the confidence thresholds and the two safety
// switches. Auto-execution stays off unless explicitly enabled.
func LoadRouterConfig() intent.RouterConfig {
	config := intent.DefaultRouterConfig()

	if v := os.Getenv("CONFIDENCE_THRESHOLD_HIGH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Policy.High = f
		}
	}
	if v := os.Getenv("CONFIDENCE_THRESHOLD_MEDIUM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Policy.Medium = f
		}
	}
	if v := os.Getenv("AUTO_EXECUTE_HIGH_CONFIDENCE_INTENTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.AutoExecuteHighConfidence = b
		}
	}
	if v := os.Getenv("REQUIRE_CONFIRMATION_FOR_SENSITIVE_OPERATIONS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.RequireConfirmationForSensitive = b
		}
	}

	return config
}

type chatService struct {
	log          *logrus.Logger
	chatRepo     chatRepository.Repository
	sessionStore redisPkg.IRedis
	nluClient    dialogflow.IDialogflow
	bankingAPI   bankingapi.IBankingAPI
	router       *intent.Router
	table        *intent.Table
	formatter    formatter.IFormatter
	utils        utils.IUtils
	config       ChatConfig
}

func NewChatService(
	log *logrus.Logger,
	chatRepo chatRepository.Repository,
	sessionStore redisPkg.IRedis,
	nluClient dialogflow.IDialogflow,
	bankingAPI bankingapi.IBankingAPI,
	router *intent.Router,
	table *intent.Table,
	responseFormatter formatter.IFormatter,
	utils utils.IUtils,
	config ChatConfig,
) IChatService {
	return &chatService{
		log:          log,
		chatRepo:     chatRepo,
		sessionStore: sessionStore,
		nluClient:    nluClient,
		bankingAPI:   bankingAPI,
		router:       router,
		table:        table,
		formatter:    responseFormatter,
		utils:        utils,
		config:       config,
	}
}
