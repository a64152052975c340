package intent

import (
	"io"
	"testing"

	"BankingChatbot/internal/entity"
	"BankingChatbot/pkg/nlp"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func recognition(intentName string, confidence float64) *nlp.RecognitionResult {
	return &nlp.RecognitionResult{
		Intent:     intentName,
		Confidence: confidence,
		Parameters: map[string]nlp.ParamValue{},
	}
}

func authedSession() entity.ConversationSession {
	return entity.ConversationSession{
		SessionID:     "banking-session-test",
		UserID:        "user-1",
		Authenticated: true,
	}
}

func anonymousSession() entity.ConversationSession {
	return entity.ConversationSession{
		SessionID: "banking-session-test",
	}
}

func TestTable_Lookup(t *testing.T) {
	table := DefaultTable()

	t.Run("known intent returns its descriptor", func(t *testing.T) {
		op, known := table.Lookup("account.balance")
		require.True(t, known)
		assert.Equal(t, "/api/accounts/balance", op.APIEndpoint)
		assert.Equal(t, "read:balance", op.Permission)
		assert.True(t, op.RequiresAuth)
	})

	t.Run("unknown intent falls back to auth required default", func(t *testing.T) {
		op, known := table.Lookup("foo.bar")
		require.False(t, known)
		assert.Equal(t, "foo.bar", op.Intent)
		assert.True(t, op.RequiresAuth)
		assert.Empty(t, op.APIEndpoint)
		assert.Empty(t, op.Permission)
	})

	t.Run("greeting needs no auth", func(t *testing.T) {
		op, known := table.Lookup("general.greeting")
		require.True(t, known)
		assert.False(t, op.RequiresAuth)
	})
}

func TestIsSensitivePermission(t *testing.T) {
	assert.True(t, IsSensitivePermission("write:transfer"))
	assert.True(t, IsSensitivePermission("write:card"))
	assert.True(t, IsSensitivePermission("write:fraud"))
	assert.False(t, IsSensitivePermission("read:balance"))
	assert.False(t, IsSensitivePermission(""))
}

func TestRouter_Route_SensitiveNeverAutoExecutes(t *testing.T) {
	config := DefaultRouterConfig()
	config.AutoExecuteHighConfidence = true
	router := NewRouter(testLogger(), DefaultTable(), config)

	// Maximum confidence on a financial mutation still asks first.
	decision := router.Route(recognition("payment.transfer", 0.99), authedSession())

	assert.Equal(t, ActionConfirm, decision.Action)
	assert.True(t, decision.KnownIntent)
	assert.False(t, decision.AuthRequired)
}

func TestRouter_Route_UnknownIntentNeverAutoExecutes(t *testing.T) {
	config := DefaultRouterConfig()
	config.AutoExecuteHighConfidence = true
	router := NewRouter(testLogger(), DefaultTable(), config)

	decision := router.Route(recognition("foo.bar", 0.95), authedSession())

	assert.Equal(t, ActionConfirm, decision.Action)
	assert.False(t, decision.KnownIntent)
	assert.True(t, decision.Operation.RequiresAuth)
}

func TestRouter_Route_KillSwitchDowngradesEverything(t *testing.T) {
	// Default config keeps auto-execution off.
	router := NewRouter(testLogger(), DefaultTable(), DefaultRouterConfig())

	decision := router.Route(recognition("account.balance", 0.99), authedSession())

	assert.Equal(t, ActionConfirm, decision.Action)
}

func TestRouter_Route_ReadOperationAutoExecutesWhenEnabled(t *testing.T) {
	config := DefaultRouterConfig()
	config.AutoExecuteHighConfidence = true
	router := NewRouter(testLogger(), DefaultTable(), config)

	decision := router.Route(recognition("account.balance", 0.9), authedSession())

	assert.Equal(t, ActionAutoExecute, decision.Action)
	assert.False(t, decision.AuthRequired)
}

func TestRouter_Route_AuthRequiredForAnonymousCaller(t *testing.T) {
	router := NewRouter(testLogger(), DefaultTable(), DefaultRouterConfig())

	decision := router.Route(recognition("account.balance", 0.9), anonymousSession())

	assert.True(t, decision.AuthRequired)
	assert.Equal(t, ActionConfirm, decision.Action)
}

func TestRouter_Route_NoAuthGateOnClarify(t *testing.T) {
	router := NewRouter(testLogger(), DefaultTable(), DefaultRouterConfig())

	// Below the medium threshold the caller is asked to rephrase, so no
	// point demanding a login first.
	decision := router.Route(recognition("account.balance", 0.3), anonymousSession())

	assert.Equal(t, ActionClarify, decision.Action)
	assert.False(t, decision.AuthRequired)
}

func TestRouter_Route_GreetingSkipsAuth(t *testing.T) {
	router := NewRouter(testLogger(), DefaultTable(), DefaultRouterConfig())

	decision := router.Route(recognition("general.greeting", 0.9), anonymousSession())

	assert.False(t, decision.AuthRequired)
}

func TestRouter_Route_SensitiveConfirmationToggle(t *testing.T) {
	config := DefaultRouterConfig()
	config.AutoExecuteHighConfidence = true
	config.RequireConfirmationForSensitive = false
	router := NewRouter(testLogger(), DefaultTable(), config)

	decision := router.Route(recognition("payment.transfer", 0.95), authedSession())

	assert.Equal(t, ActionAutoExecute, decision.Action)
}

func TestRouter_Route_CarriesParameters(t *testing.T) {
	router := NewRouter(testLogger(), DefaultTable(), DefaultRouterConfig())

	result := recognition("payment.transfer", 0.85)
	result.Parameters["recipient"] = nlp.StringParam("John")

	decision := router.Route(result, authedSession())

	require.Contains(t, decision.Params, "recipient")
	assert.Equal(t, "John", decision.Params["recipient"].Str)
}
