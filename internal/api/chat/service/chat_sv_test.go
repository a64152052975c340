package chatService

import (
	"context"
	"io"
	"testing"
	"time"

	"BankingChatbot/internal/api/chat"
	chatRepository "BankingChatbot/internal/api/chat/repository"
	"BankingChatbot/internal/entity"
	"BankingChatbot/pkg/dialogflow"
	"BankingChatbot/pkg/formatter"
	"BankingChatbot/pkg/intent"
	"BankingChatbot/pkg/nlp"
	redisPkg "BankingChatbot/pkg/redis"
	"BankingChatbot/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Fakes
// ==========================

type fakeNLU struct {
	result      *nlp.RecognitionResult
	err         error
	lastText    string
	lastSession entity.ConversationSession
}

func (f *fakeNLU) DetectIntent(_ context.Context, session entity.ConversationSession, text string) (*nlp.RecognitionResult, error) {
	f.lastSession = session
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeNLU) Close() error { return nil }

type fakeSessionStore struct {
	sessions map[string]entity.ConversationSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]entity.ConversationSession)}
}

func (f *fakeSessionStore) SetSession(_ context.Context, session entity.ConversationSession, _ time.Duration) error {
	f.sessions[session.SessionID] = session
	return nil
}

func (f *fakeSessionStore) GetSession(_ context.Context, sessionID string) (entity.ConversationSession, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return entity.ConversationSession{}, redisPkg.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

type fakeBankingAPI struct {
	result       map[string]interface{}
	err          error
	calls        int
	lastEndpoint string
	lastToken    string
	lastPayload  map[string]interface{}
}

func (f *fakeBankingAPI) Invoke(_ context.Context, endpoint string, bearerToken string, payload map[string]interface{}) (map[string]interface{}, error) {
	f.calls++
	f.lastEndpoint = endpoint
	f.lastToken = bearerToken
	f.lastPayload = payload
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeTurnStore struct {
	turns []entity.ChatTurn
}

func (f *fakeTurnStore) CreateTurn(_ context.Context, turn entity.ChatTurn) error {
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeTurnStore) GetTurnsByUserID(_ context.Context, userID string, limit, offset int) ([]entity.ChatTurn, error) {
	var out []entity.ChatTurn
	for _, turn := range f.turns {
		if turn.UserID == userID {
			out = append(out, turn)
		}
	}
	return out, nil
}

func (f *fakeTurnStore) CountTurnsByUserID(_ context.Context, userID string) (int, error) {
	count := 0
	for _, turn := range f.turns {
		if turn.UserID == userID {
			count++
		}
	}
	return count, nil
}

type fakeRepository struct {
	turns *fakeTurnStore
}

func (f *fakeRepository) NewClient(_ bool) (chatRepository.Client, error) {
	return chatRepository.Client{
		Turns:    f.turns,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

// ==========================
// Test Environment
// ==========================

type testEnv struct {
	svc     IChatService
	nlu     *fakeNLU
	store   *fakeSessionStore
	banking *fakeBankingAPI
	turns   *fakeTurnStore
}

func newTestEnv(routerConfig intent.RouterConfig) *testEnv {
	log := logrus.New()
	log.SetOutput(io.Discard)

	env := &testEnv{
		nlu:     &fakeNLU{},
		store:   newFakeSessionStore(),
		banking: &fakeBankingAPI{},
		turns:   &fakeTurnStore{},
	}

	table := intent.DefaultTable()
	env.svc = NewChatService(
		log,
		&fakeRepository{turns: env.turns},
		env.store,
		env.nlu,
		env.banking,
		intent.NewRouter(log, table, routerConfig),
		table,
		formatter.New(),
		utils.New(),
		ChatConfig{
			DetectTimeout:   time.Second,
			SessionTimeout:  30 * time.Minute,
			DefaultLanguage: "en",
		},
	)

	return env
}

func autoExecConfig() intent.RouterConfig {
	config := intent.DefaultRouterConfig()
	config.AutoExecuteHighConfidence = true
	return config
}

func recognized(intentName string, confidence float64, fulfillment string) *nlp.RecognitionResult {
	return &nlp.RecognitionResult{
		Intent:          intentName,
		Confidence:      confidence,
		Parameters:      map[string]nlp.ParamValue{},
		FulfillmentText: fulfillment,
	}
}

func authedCaller() Caller {
	return Caller{UserID: "user-1", Authenticated: true, BearerToken: "token-abc"}
}

// ==========================
// ProcessMessage
// ==========================

func TestProcessMessage_GreetingRepliesWithoutBankingCall(t *testing.T) {
	env := newTestEnv(autoExecConfig())
	env.nlu.result = recognized("general.greeting", 0.95, "Hello! How can I help you today?")

	res, err := env.svc.ProcessMessage(context.Background(), Caller{}, chat.ProcessMessageRequest{
		Message: "hi there",
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help you today?", res.Text)
	assert.Equal(t, "auto_execute", res.Action)
	assert.False(t, res.AuthRequired)
	assert.Zero(t, env.banking.calls)
	assert.NotEmpty(t, res.SessionID)
}

func TestProcessMessage_BalanceAutoExecutesForAuthenticatedCaller(t *testing.T) {
	env := newTestEnv(autoExecConfig())
	env.nlu.result = recognized("account.balance", 0.9, "")
	env.banking.result = map[string]interface{}{"balance": 1234.5}

	res, err := env.svc.ProcessMessage(context.Background(), authedCaller(), chat.ProcessMessageRequest{
		Message: "what's my balance",
	})

	require.NoError(t, err)
	assert.Equal(t, "Your account balance is $1234.50", res.Text)
	assert.Equal(t, "auto_execute", res.Action)
	assert.Equal(t, 1, env.banking.calls)
	assert.Equal(t, "/api/accounts/balance", env.banking.lastEndpoint)
	assert.Equal(t, "token-abc", env.banking.lastToken)
	assert.Equal(t, "user-1", env.banking.lastPayload["userId"])

	// Turn is recorded for history.
	require.Len(t, env.turns.turns, 1)
	assert.Equal(t, "account.balance", env.turns.turns[0].Intent)
}

func TestProcessMessage_TransferAsksForConfirmation(t *testing.T) {
	env := newTestEnv(autoExecConfig())
	result := recognized("payment.transfer", 0.95, "")
	result.Parameters["amount-of-money"] = nlp.MoneyParam(decimal.NewFromInt(150), "USD")
	result.Parameters["recipient"] = nlp.StringParam("John")
	env.nlu.result = result

	res, err := env.svc.ProcessMessage(context.Background(), authedCaller(), chat.ProcessMessageRequest{
		Message: "send John $150",
	})

	require.NoError(t, err)
	assert.Equal(t, "confirm", res.Action)
	assert.True(t, res.PendingConfirmation)
	assert.Equal(t, "I'll help you transfer $150.00 to John. Please confirm this transaction.", res.Text)
	assert.Zero(t, env.banking.calls, "sensitive operations must not run before confirmation")

	// The pending operation survives in the session store.
	session, ok := env.store.sessions[res.SessionID]
	require.True(t, ok)
	assert.True(t, session.PendingConfirmation)
	assert.Equal(t, "payment.transfer", session.PendingIntent)
	assert.Equal(t, "/api/balance-transfers", session.PendingEndpoint)
}

func TestProcessMessage_AnonymousCallerGetsAuthPrompt(t *testing.T) {
	env := newTestEnv(autoExecConfig())
	env.nlu.result = recognized("account.balance", 0.9, "")

	res, err := env.svc.ProcessMessage(context.Background(), Caller{}, chat.ProcessMessageRequest{
		Message: "what's my balance",
	})

	require.NoError(t, err)
	assert.True(t, res.AuthRequired)
	assert.Equal(t, authRequiredText, res.Text)
	assert.Zero(t, env.banking.calls)
}

func TestProcessMessage_LowConfidenceAsksToRephrase(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())
	env.nlu.result = recognized("account.balance", 0.3, "")

	res, err := env.svc.ProcessMessage(context.Background(), authedCaller(), chat.ProcessMessageRequest{
		Message: "umm the thing",
	})

	require.NoError(t, err)
	assert.Equal(t, "clarify", res.Action)
	assert.Equal(t, clarifyText, res.Text)
	assert.False(t, res.AuthRequired)
}

func TestProcessMessage_ProviderFailuresAreMapped(t *testing.T) {
	tests := []struct {
		name        string
		providerErr error
		expected    error
	}{
		{name: "unavailable", providerErr: dialogflow.ErrProviderUnavailable, expected: chat.ErrProviderUnavailable},
		{name: "timeout", providerErr: context.DeadlineExceeded, expected: chat.ErrProviderUnavailable},
		{name: "rejection", providerErr: dialogflow.ErrProviderError, expected: chat.ErrProviderRejected},
		{name: "malformed", providerErr: dialogflow.ErrMalformedResponse, expected: chat.ErrProviderRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(intent.DefaultRouterConfig())
			env.nlu.err = tt.providerErr

			_, err := env.svc.ProcessMessage(context.Background(), authedCaller(), chat.ProcessMessageRequest{
				Message: "hello",
			})

			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestProcessMessage_ReusesExistingSession(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())
	env.store.sessions["banking-session-x"] = entity.ConversationSession{
		SessionID: "banking-session-x",
		UserID:    "user-1",
	}
	env.nlu.result = recognized("general.help", 0.9, "Here's what I can do.")

	res, err := env.svc.ProcessMessage(context.Background(), authedCaller(), chat.ProcessMessageRequest{
		Message:   "help",
		SessionID: "banking-session-x",
	})

	require.NoError(t, err)
	assert.Equal(t, "banking-session-x", res.SessionID)
	assert.Equal(t, "banking-session-x", env.nlu.lastSession.SessionID)
}

func TestProcessMessage_RejectsForeignSession(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())
	env.store.sessions["banking-session-x"] = entity.ConversationSession{
		SessionID: "banking-session-x",
		UserID:    "someone-else",
	}

	_, err := env.svc.ProcessMessage(context.Background(), authedCaller(), chat.ProcessMessageRequest{
		Message:   "help",
		SessionID: "banking-session-x",
	})

	assert.ErrorIs(t, err, chat.ErrSessionNotOwned)
}

func TestProcessMessage_ExpiredSessionGetsReplaced(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())
	env.nlu.result = recognized("general.help", 0.9, "Here's what I can do.")

	res, err := env.svc.ProcessMessage(context.Background(), authedCaller(), chat.ProcessMessageRequest{
		Message:   "help",
		SessionID: "banking-session-gone",
	})

	require.NoError(t, err)
	assert.NotEqual(t, "banking-session-gone", res.SessionID)
	assert.NotEmpty(t, res.SessionID)
}

// ==========================
// ProcessConfirmation
// ==========================

func pendingTransferSession() entity.ConversationSession {
	return entity.ConversationSession{
		SessionID:           "banking-session-x",
		UserID:              "user-1",
		Authenticated:       true,
		PendingConfirmation: true,
		PendingIntent:       "payment.transfer",
		PendingEndpoint:     "/api/balance-transfers",
		PendingParams: map[string]nlp.ParamValue{
			"amount-of-money": nlp.MoneyParam(decimal.NewFromInt(150), "USD"),
			"recipient":       nlp.StringParam("John"),
		},
	}
}

func TestProcessConfirmation_ApproveExecutesPendingOperation(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())
	env.store.sessions["banking-session-x"] = pendingTransferSession()
	env.banking.result = map[string]interface{}{"transactionId": "tx-42"}

	res, err := env.svc.ProcessConfirmation(context.Background(), authedCaller(), chat.ConfirmRequest{
		SessionID: "banking-session-x",
		Approve:   true,
	})

	require.NoError(t, err)
	assert.Equal(t, "executed", res.Action)
	assert.Equal(t, "Successfully transferred $150.00 to John. Transaction ID: tx-42", res.Text)
	assert.Equal(t, 1, env.banking.calls)
	assert.Equal(t, "/api/balance-transfers", env.banking.lastEndpoint)

	// Money travels as a decimal string.
	money, ok := env.banking.lastPayload["amount-of-money"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "150", money["amount"])
	assert.Equal(t, "USD", money["currency"])

	// Pending state is cleared.
	session := env.store.sessions["banking-session-x"]
	assert.False(t, session.PendingConfirmation)
	assert.Empty(t, session.PendingIntent)
}

func TestProcessConfirmation_DeclineCancelsWithoutExecuting(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())
	env.store.sessions["banking-session-x"] = pendingTransferSession()

	res, err := env.svc.ProcessConfirmation(context.Background(), authedCaller(), chat.ConfirmRequest{
		SessionID: "banking-session-x",
		Approve:   false,
	})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", res.Action)
	assert.Equal(t, cancelledText, res.Text)
	assert.Zero(t, env.banking.calls)

	session := env.store.sessions["banking-session-x"]
	assert.False(t, session.PendingConfirmation)
}

func TestProcessConfirmation_MissingSession(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())

	_, err := env.svc.ProcessConfirmation(context.Background(), authedCaller(), chat.ConfirmRequest{
		SessionID: "banking-session-gone",
		Approve:   true,
	})

	assert.ErrorIs(t, err, chat.ErrSessionNotFound)
}

func TestProcessConfirmation_NothingPending(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())
	env.store.sessions["banking-session-x"] = entity.ConversationSession{
		SessionID: "banking-session-x",
		UserID:    "user-1",
	}

	_, err := env.svc.ProcessConfirmation(context.Background(), authedCaller(), chat.ConfirmRequest{
		SessionID: "banking-session-x",
		Approve:   true,
	})

	assert.ErrorIs(t, err, chat.ErrNoPendingOperation)
}

func TestProcessConfirmation_AnonymousApprovalNeedsAuth(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())
	session := pendingTransferSession()
	session.UserID = "anonymous-abc"
	env.store.sessions["banking-session-x"] = session

	res, err := env.svc.ProcessConfirmation(context.Background(), Caller{}, chat.ConfirmRequest{
		SessionID: "banking-session-x",
		Approve:   true,
	})

	require.NoError(t, err)
	assert.True(t, res.AuthRequired)
	assert.Zero(t, env.banking.calls)
}

func TestProcessConfirmation_BankingFailureSurfaces(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())
	env.store.sessions["banking-session-x"] = pendingTransferSession()
	env.banking.err = context.DeadlineExceeded

	_, err := env.svc.ProcessConfirmation(context.Background(), authedCaller(), chat.ConfirmRequest{
		SessionID: "banking-session-x",
		Approve:   true,
	})

	assert.ErrorIs(t, err, chat.ErrBankingAPIFailed)
}

// ==========================
// History and NLP Debug
// ==========================

func TestGetHistory(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())
	env.turns.turns = []entity.ChatTurn{
		{ID: "01A", UserID: "user-1", Intent: "account.balance", CreatedAt: time.Now()},
		{ID: "01B", UserID: "user-1", Intent: "payment.transfer", CreatedAt: time.Now()},
		{ID: "01C", UserID: "someone-else", Intent: "general.help", CreatedAt: time.Now()},
	}

	res, err := env.svc.GetHistory(context.Background(), "user-1", 0, 0)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Turns, 2)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.Limit)
}

func TestGetIntentTable(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())

	res, err := env.svc.GetIntentTable(context.Background())

	require.NoError(t, err)
	assert.Len(t, res.Intents, 12)
}

func TestTestNLP(t *testing.T) {
	env := newTestEnv(intent.DefaultRouterConfig())
	result := recognized("payment.transfer", 0.87, "Sure.")
	result.Parameters["recipient"] = nlp.StringParam("John")
	env.nlu.result = result

	res, err := env.svc.TestNLP(context.Background(), chat.NLPTestRequest{
		Text: "send John $150",
	})

	require.NoError(t, err)
	assert.Equal(t, "send John $150", res.Input)
	assert.Equal(t, "payment.transfer", res.Intent)
	assert.Equal(t, 0.87, res.Confidence)
	assert.Equal(t, "Sure.", res.FulfillmentText)
	require.Contains(t, res.Parameters, "recipient")
	assert.Zero(t, env.banking.calls, "debug detection must not execute anything")
}
