package alert

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	imageRegex        = regexp.MustCompile(`<div class='sa-img'>(.*?)</div>`)
	labelRegex        = regexp.MustCompile(`<div class='sa-label'>(.*?)</div>`)
	labelContentRegex = regexp.MustCompile(`Got (.+?) from (.+)!`)
	amountRegex       = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

// IsConfigReset reports whether payload carries the config-reset sentinel for userKey.
func IsConfigReset(payload, userKey string) bool {
	return strings.Contains(payload, configResetPrefix+userKey)
}

// ExtractImage returns the contents of the sa-img block, or nil when absent or empty.
func ExtractImage(payload string) *string {
	m := imageRegex.FindStringSubmatch(payload)
	if m == nil || m[1] == "" {
		return nil
	}
	img := m[1]
	return &img
}

// ExtractLabel returns the contents of the sa-label block.
func ExtractLabel(payload string) (string, bool) {
	m := labelRegex.FindStringSubmatch(payload)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseLabel reads "Got <amount> from <name>!" out of a label.
// Missing or unparseable parts fall back to 0.00 and DefaultUsername.
func ParseLabel(label string) (decimal.Decimal, string) {
	m := labelContentRegex.FindStringSubmatch(label)
	if m == nil {
		return decimal.Zero, DefaultUsername
	}
	return parseAmount(m[1]), m[2]
}

// parseAmount takes the first unsigned number in text, e.g. "$5.00" or "1,250.50 EUR".
// Entities such as "&#163;" are unescaped first.
func parseAmount(text string) decimal.Decimal {
	num := amountRegex.FindString(html.UnescapeString(text))
	if num == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(num, ",", ""))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// DecodeLegacy decodes a newStreamAlert message. It never fails.
func DecodeLegacy(payload string, tts *string, userKey string) Alert {
	if IsConfigReset(payload, userKey) {
		return ConfigAlert{}
	}

	donation := DonationAlert{
		Raw:      payload,
		Image:    ExtractImage(payload),
		Username: DefaultUsername,
		Amount:   decimal.Zero,
	}
	if tts != nil {
		s := *tts
		donation.TTS = &s
	}
	if label, ok := ExtractLabel(payload); ok {
		donation.Amount, donation.Username = ParseLabel(label)
	}
	return donation
}

// DecodeGoal decodes an updateGoalOverlay message.
func DecodeGoal(payload, userKey string) (Alert, error) {
	if IsConfigReset(payload, userKey) {
		return ConfigAlert{}, nil
	}

	var goal Goal
	if err := json.Unmarshal([]byte(payload), &goal); err != nil {
		return nil, newDecodeError(MethodUpdateGoalOverlay, err)
	}
	if IsConfigReset(goal.Title, userKey) {
		return ConfigAlert{}, nil
	}
	return GoalAlert{Goal: goal}, nil
}

// DecodeActivity decodes an updateAlertActivity message.
func DecodeActivity(payload string) (Alert, error) {
	activity, err := UnmarshalActivity([]byte(payload))
	if err != nil {
		return nil, newDecodeError(MethodUpdateAlertActivity, err)
	}
	return ActivityAlert{Activity: activity}, nil
}
