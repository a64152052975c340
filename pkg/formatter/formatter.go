package formatter

import (
	"fmt"

	"BankingChatbot/pkg/nlp"

	"github.com/shopspring/decimal"
)

const genericAcknowledgment = "I can help you with that. Let me process your request."

// APIResult is the decoded JSON body returned by a downstream banking
// API call, when one was made for this turn.
type APIResult map[string]interface{}

type IFormatter interface {
	Format(intentName string, params map[string]nlp.ParamValue, apiResult APIResult, fulfillmentText string) string
}

type formatter struct{}

func New() IFormatter {
	return &formatter{}
}

// Format dispatches by intent name to a per-intent template. Each
// template has a result-present branch and a forward-looking
// acknowledgment for when the operation has not run yet. Intents
// without a template fall back to the provider's fulfillment text.
func (f *formatter) Format(
	intentName string,
	params map[string]nlp.ParamValue,
	apiResult APIResult,
	fulfillmentText string,
) string {
	switch intentName {
	case "account.balance":
		if balance, ok := apiResult.numberField("balance"); ok {
			return fmt.Sprintf("Your account balance is %s", formatAmount(balance))
		}
		return "I can help you check your account balance. Please wait while I retrieve this information."

	case "account.statement":
		if statementID, ok := apiResult.stringField("statementId"); ok {
			return fmt.Sprintf("Your statement is ready. Reference number: %s.", statementID)
		}
		return "I'll generate your account statement. Please wait a moment."

	case "transaction.history":
		if count, ok := apiResult.numberField("count"); ok {
			return fmt.Sprintf("I found %s recent transactions on your account.", count.StringFixed(0))
		}
		return "I'll retrieve your recent transactions."

	case "payment.transfer":
		amount := amountText(params)
		recipient := stringParamOr(params, "recipient", "the recipient")
		if transactionID, ok := apiResult.stringField("transactionId"); ok {
			return fmt.Sprintf("Successfully transferred %s to %s. Transaction ID: %s", amount, recipient, transactionID)
		}
		return fmt.Sprintf("I'll help you transfer %s to %s. Please confirm this transaction.", amount, recipient)

	case "payment.bill":
		billType := stringParamOr(params, "bill-type", "bill")
		if ok := apiResult.successFlag(); ok {
			return fmt.Sprintf("Your %s payment of %s went through successfully.", billType, amountText(params))
		}
		return fmt.Sprintf("I'll pay your %s for you. Please confirm the payment of %s.", billType, amountText(params))

	case "card.status":
		if status, ok := apiResult.stringField("status"); ok {
			return fmt.Sprintf("Your %s is currently %s.", stringParamOr(params, "card-type", "card"), status)
		}
		return "I'll look up your card status right away."

	case "card.block":
		cardType := stringParamOr(params, "card-type", "card")
		if apiResult.successFlag() {
			return fmt.Sprintf("Your %s has been successfully blocked for security. A replacement card will be sent to you.", cardType)
		}
		return fmt.Sprintf("I'll block your %s immediately for security. This action is irreversible.", cardType)

	case "dispute.create":
		if disputeID, ok := apiResult.stringField("disputeId"); ok {
			return fmt.Sprintf("Dispute filed successfully. Reference number: %s. We'll investigate and contact you within 5-7 business days.", disputeID)
		}
		return "I'll help you file a dispute for this transaction. Please provide details about the disputed charge."

	case "fraud.report":
		if reportID, ok := apiResult.stringField("reportId"); ok {
			return fmt.Sprintf("Fraud report filed. Reference: %s. Your account has been flagged for monitoring. Please change your passwords immediately.", reportID)
		}
		return "I understand you need to report fraud. This is serious - I'll immediately flag your account and start the investigation process."
	}

	if fulfillmentText != "" {
		return fulfillmentText
	}
	return genericAcknowledgment
}

// amountText prefers the provider's composite money parameter and falls
// back to a plain numeric amount.
func amountText(params map[string]nlp.ParamValue) string {
	if v, ok := params["amount-of-money"]; ok && v.Kind == nlp.ParamMoney {
		return FormatMoney(v.Money)
	}
	if v, ok := params["amount"]; ok {
		switch v.Kind {
		case nlp.ParamMoney:
			return FormatMoney(v.Money)
		case nlp.ParamNumber:
			return formatAmount(decimal.NewFromFloat(v.Number))
		}
	}
	return "the requested amount"
}

func stringParamOr(params map[string]nlp.ParamValue, name, fallback string) string {
	if v, ok := params[name]; ok && v.Kind == nlp.ParamString && v.Str != "" {
		return v.Str
	}
	return fallback
}

func (r APIResult) numberField(name string) (decimal.Decimal, bool) {
	if r == nil {
		return decimal.Decimal{}, false
	}
	switch v := r[name].(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}

func (r APIResult) stringField(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	s, ok := r[name].(string)
	return s, ok && s != ""
}

func (r APIResult) successFlag() bool {
	if r == nil {
		return false
	}
	success, ok := r["success"].(bool)
	return ok && success
}
