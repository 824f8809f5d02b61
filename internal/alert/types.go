package alert

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Type is the discriminant of an Alert.
type Type string

const (
	TypeConfig   Type = "config"
	TypeDonation Type = "donation"
	TypeGoal     Type = "goal"
	TypeActivity Type = "activity"
)

// Alert is one decoded upstream message. The set of implementations is closed:
// ConfigAlert, DonationAlert, GoalAlert and ActivityAlert.
type Alert interface {
	Type() Type
	isAlert()
}

// ConfigAlert signals that the creator changed their alert configuration.
type ConfigAlert struct{}

// DonationAlert is decoded from the legacy HTML alert message.
type DonationAlert struct {
	// Raw is the original HTML payload.
	Raw      string          `json:"raw"`
	Image    *string         `json:"image,omitempty"`
	TTS      *string         `json:"tts,omitempty"`
	Username string          `json:"username"`
	Amount   decimal.Decimal `json:"amount"`
}

// GoalAlert carries a goal overlay update.
type GoalAlert struct {
	Goal Goal `json:"goal"`
}

// ActivityAlert carries one supporter activity.
type ActivityAlert struct {
	Activity Activity `json:"activity"`
}

func (ConfigAlert) Type() Type   { return TypeConfig }
func (DonationAlert) Type() Type { return TypeDonation }
func (GoalAlert) Type() Type     { return TypeGoal }
func (ActivityAlert) Type() Type { return TypeActivity }

func (ConfigAlert) isAlert()   {}
func (DonationAlert) isAlert() {}
func (GoalAlert) isAlert()     {}
func (ActivityAlert) isAlert() {}

func (a ConfigAlert) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Type `json:"type"`
	}{TypeConfig})
}

func (a DonationAlert) MarshalJSON() ([]byte, error) {
	type plain DonationAlert
	return json.Marshal(struct {
		Type Type `json:"type"`
		plain
	}{TypeDonation, plain(a)})
}

func (a GoalAlert) MarshalJSON() ([]byte, error) {
	type plain GoalAlert
	return json.Marshal(struct {
		Type Type `json:"type"`
		plain
	}{TypeGoal, plain(a)})
}

func (a ActivityAlert) MarshalJSON() ([]byte, error) {
	type plain ActivityAlert
	return json.Marshal(struct {
		Type Type `json:"type"`
		plain
	}{TypeActivity, plain(a)})
}
