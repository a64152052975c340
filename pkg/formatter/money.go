package formatter

import (
	"fmt"

	"BankingChatbot/pkg/nlp"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// FormatMoney renders an amount with two decimal places. Known currency
// codes get their symbol; anything else keeps the ISO code as a prefix
// instead of guessing.
func FormatMoney(m nlp.Money) string {
	fixed := m.Amount.StringFixed(2)

	if symbol, ok := currencySymbols[m.Currency]; ok {
		return symbol + fixed
	}
	return fmt.Sprintf("%s %s", m.Currency, fixed)
}

func formatAmount(amount decimal.Decimal) string {
	return FormatMoney(nlp.Money{Amount: amount, Currency: nlp.DefaultCurrency})
}
