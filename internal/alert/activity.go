package alert

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType discriminates Activity variants.
type TransactionType string

const (
	TransactionShopItem   TransactionType = "Shop item"
	TransactionCommission TransactionType = "Commission"
	TransactionMembership TransactionType = "Membership"
	TransactionDonation   TransactionType = "Donation"
)

// ActivityBase holds the fields shared by every activity. JSON names follow upstream.
type ActivityBase struct {
	AlertTimestamp  int64           `json:"AlertTimestamp"`
	IsTestActivity  bool            `json:"IsTestActivity"`
	TransactionID   string          `json:"TransactionId"`
	Timestamp       int64           `json:"Timestamp"`
	UserName        string          `json:"UserName"`
	Amount          string          `json:"Amount"`
	Currency        string          `json:"Currency"`
	TwitchUsername  *string         `json:"TwitchUsername,omitempty"`
	Message         *string         `json:"Message,omitempty"`
	IsMessagePublic bool            `json:"IsMessagePublic"`
	TransactionType TransactionType `json:"TransactionType"`
}

// AmountDecimal parses Amount, which upstream sends as a string.
func (b ActivityBase) AmountDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(b.Amount))
}

// Activity is one supporter action. Implementations: ShopActivity, CommissionActivity,
// MembershipActivity and DonationActivity.
type Activity interface {
	Kind() TransactionType
	Base() ActivityBase
	isActivity()
}

type ShopActivity struct {
	ActivityBase
	ShopItemName string `json:"ShopItemName"`
}

type CommissionActivity struct {
	ActivityBase
	ShopItemName string `json:"ShopItemName"`
}

type MembershipActivity struct {
	ActivityBase
	MembershipTierName string `json:"MembershipTierName"`
}

// DonationActivity always carries a message, shadowing the optional one on ActivityBase.
type DonationActivity struct {
	ActivityBase
	Message string `json:"Message"`
}

func (ShopActivity) Kind() TransactionType       { return TransactionShopItem }
func (CommissionActivity) Kind() TransactionType { return TransactionCommission }
func (MembershipActivity) Kind() TransactionType { return TransactionMembership }
func (DonationActivity) Kind() TransactionType   { return TransactionDonation }

func (a ShopActivity) Base() ActivityBase       { return a.ActivityBase }
func (a CommissionActivity) Base() ActivityBase { return a.ActivityBase }
func (a MembershipActivity) Base() ActivityBase { return a.ActivityBase }

func (a DonationActivity) Base() ActivityBase {
	b := a.ActivityBase
	msg := a.Message
	b.Message = &msg
	return b
}

func (ShopActivity) isActivity()       {}
func (CommissionActivity) isActivity() {}
func (MembershipActivity) isActivity() {}
func (DonationActivity) isActivity()   {}

// UnmarshalActivity decodes an upstream activity payload into its concrete variant.
func UnmarshalActivity(data []byte) (Activity, error) {
	var probe struct {
		TransactionType *TransactionType `json:"TransactionType"`
		Message         *string          `json:"Message"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.TransactionType == nil {
		return nil, fmt.Errorf("%w: TransactionType", ErrMissingField)
	}

	switch *probe.TransactionType {
	case TransactionShopItem:
		var a ShopActivity
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return a, nil
	case TransactionCommission:
		var a CommissionActivity
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return a, nil
	case TransactionMembership:
		var a MembershipActivity
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return a, nil
	case TransactionDonation:
		if probe.Message == nil {
			return nil, fmt.Errorf("%w: Message", ErrMissingField)
		}
		var a DonationActivity
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransactionType, *probe.TransactionType)
	}
}

// EncodeActivity serializes an activity back into the upstream shape.
func EncodeActivity(a Activity) ([]byte, error) {
	return json.Marshal(a)
}
