package usecase

import (
	"fmt"
	"strings"

	"kofi-alerts/internal/alert"
	"kofi-alerts/pkg/discord"
)

func buildField(name string, value string, inline bool) discord.EmbedField {
	if strings.TrimSpace(value) == "" {
		value = "N/A"
	}
	return discord.EmbedField{
		Name:   name,
		Value:  discord.Truncate(value, discord.MaxFieldValueLen),
		Inline: inline,
	}
}

func formatFloat(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

// formatAmount renders the activity amount, keeping upstream text when it is not numeric.
func formatAmount(b alert.ActivityBase) string {
	amount := b.Amount
	if d, err := b.AmountDecimal(); err == nil {
		amount = d.StringFixed(2)
	}
	return strings.TrimSpace(amount + " " + b.Currency)
}
