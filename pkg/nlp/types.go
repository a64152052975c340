package nlp

import (
	"github.com/shopspring/decimal"
)

// RecognitionResult is the structured outcome of one detect-intent call.
// It is immutable and scoped to a single conversational turn.
type RecognitionResult struct {
	Intent          string                `json:"intent"`
	Confidence      float64               `json:"confidence"`
	Parameters      map[string]ParamValue `json:"parameters"`
	FulfillmentText string                `json:"fulfillment_text"`
}

type ParamKind uint8

const (
	ParamUnknown ParamKind = 0
	ParamString  ParamKind = 1
	ParamNumber  ParamKind = 2
	ParamMoney   ParamKind = 3
)

var paramKindMap = map[ParamKind]string{
	ParamUnknown: "unknown",
	ParamString:  "string",
	ParamNumber:  "number",
	ParamMoney:   "money",
}

func (k ParamKind) String() string {
	return paramKindMap[k]
}

// Money keeps the amount as a decimal so currency values survive
// normalization without binary rounding error.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type ParamValue struct {
	Kind   ParamKind `json:"kind"`
	Str    string    `json:"str,omitempty"`
	Number float64   `json:"number,omitempty"`
	Money  Money     `json:"money,omitempty"`
}

func StringParam(s string) ParamValue {
	return ParamValue{Kind: ParamString, Str: s}
}

func NumberParam(n float64) ParamValue {
	return ParamValue{Kind: ParamNumber, Number: n}
}

func MoneyParam(amount decimal.Decimal, currency string) ParamValue {
	if currency == "" {
		currency = DefaultCurrency
	}
	return ParamValue{Kind: ParamMoney, Money: Money{Amount: amount, Currency: currency}}
}
