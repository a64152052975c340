package intent

import (
	"BankingChatbot/internal/entity"
	"BankingChatbot/pkg/nlp"

	"github.com/sirupsen/logrus"
)

// RoutingDecision is the per-turn outcome: which operation the intent
// maps to, what the caller should do next, and whether authentication
// must happen first. AuthRequired is a routing outcome, not a failure.
type RoutingDecision struct {
	Operation    OperationDescriptor       `json:"operation"`
	Action       Action                    `json:"action"`
	AuthRequired bool                      `json:"auth_required"`
	KnownIntent  bool                      `json:"known_intent"`
	Params       map[string]nlp.ParamValue `json:"params"`
}

type RouterConfig struct {
	Policy                          ConfidencePolicy
	AutoExecuteHighConfidence       bool
	RequireConfirmationForSensitive bool
}

func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Policy:                          DefaultConfidencePolicy(),
		AutoExecuteHighConfidence:       false,
		RequireConfirmationForSensitive: true,
	}
}

// Router resolves one recognition result to a decision. It holds only
// read-only state, so one instance is safe across concurrent turns.
type Router struct {
	table  *Table
	config RouterConfig
	log    *logrus.Logger
}

func NewRouter(log *logrus.Logger, table *Table, config RouterConfig) *Router {
	return &Router{
		table:  table,
		config: config,
		log:    log,
	}
}

// Route is purely a function of the current turn's inputs; it never
// remembers prior turns.
func (r *Router) Route(result *nlp.RecognitionResult, session entity.ConversationSession) RoutingDecision {
	operation, known := r.table.Lookup(result.Intent)
	if !known {
		r.log.WithFields(logrus.Fields{
			"session_id": session.SessionID,
			"intent":     result.Intent,
			"confidence": result.Confidence,
		}).Warn("Unknown intent resolved to default descriptor")
	}

	action := r.config.Policy.Classify(result.Confidence)

	if action == ActionAutoExecute {
		switch {
		case !r.config.AutoExecuteHighConfidence:
			// Global kill-switch: every execution needs confirmation.
			action = ActionConfirm
		case !known:
			// An intent without a descriptor has nothing safe to execute.
			action = ActionConfirm
		case r.config.RequireConfirmationForSensitive &&
			operation.RequiresAuth && IsSensitivePermission(operation.Permission):
			// State-changing operations always ask first.
			action = ActionConfirm
		}
	}

	decision := RoutingDecision{
		Operation:   operation,
		Action:      action,
		KnownIntent: known,
		Params:      result.Parameters,
	}

	if action != ActionClarify && operation.RequiresAuth && !session.Authenticated {
		decision.AuthRequired = true
	}

	return decision
}
