package nlp

import (
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"
)

const DefaultCurrency = "USD"

// NormalizeParameters flattens the provider's struct payload into typed
// parameter values. Scalar strings and numbers map directly; a nested
// struct carrying an "amount" field is read as a money value with the
// currency defaulting to USD. Any other shape is dropped rather than
// surfaced, so unexpected provider fields never break a turn. An empty
// or nil struct yields an empty map.
func NormalizeParameters(raw *structpb.Struct) map[string]ParamValue {
	params := make(map[string]ParamValue)
	if raw == nil {
		return params
	}

	for name, field := range raw.GetFields() {
		switch v := field.GetKind().(type) {
		case *structpb.Value_StringValue:
			params[name] = StringParam(v.StringValue)

		case *structpb.Value_NumberValue:
			params[name] = NumberParam(v.NumberValue)

		case *structpb.Value_StructValue:
			money, ok := normalizeMoney(v.StructValue)
			if !ok {
				continue
			}
			params[name] = money
		}
	}

	return params
}

func normalizeMoney(s *structpb.Struct) (ParamValue, bool) {
	fields := s.GetFields()

	amountField, ok := fields["amount"]
	if !ok {
		return ParamValue{}, false
	}

	amountValue, ok := amountField.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return ParamValue{}, false
	}

	currency := DefaultCurrency
	if currencyField, ok := fields["currency"]; ok {
		if c, ok := currencyField.GetKind().(*structpb.Value_StringValue); ok && c.StringValue != "" {
			currency = c.StringValue
		}
	}

	return MoneyParam(decimal.NewFromFloat(amountValue.NumberValue), currency), true
}
