package sms

import (
	"regexp"
	"time"

	"github.com/masudbs-23/hisab-app/internal/core"
)

// atmFee is the flat charge City Bank applies to ATM withdrawals. The SMS
// format carries no fee field of its own.
var atmFee = core.Money{Cents: 1500}

var cityBankBalance = regexp.MustCompile(`(?i)balance is BDT([\d,]+\.?\d*)`)

var cityBank = &Provider{
	Name:      "City Bank",
	fragments: []string{"City", "Amex"},
	rules: []rule{
		{
			name:    "card_purchase",
			pattern: regexp.MustCompile(`(?i)BDT([\d,]+\.?\d*)\s+spent.*card ending (\d+).*Txn ID:\s*(\w+)`),
			build: func(m []string, body string, _ time.Time) (core.Draft, error) {
				amount, err := core.ParseAmount(m[1])
				if err != nil {
					return core.Draft{}, err
				}
				return core.Draft{
					Direction:     core.Expense,
					Amount:        amount,
					Description:   "Card Purchase",
					ProviderTrxID: m[3],
					Method:        "Card Payment",
					Category:      "Shopping",
					AccountSuffix: "***" + m[2],
					StatedBalance: optionalAmount(cityBankBalance, body),
				}, nil
			},
		},
		{
			// The withdrawal SMS has no transaction id; the dedup key is
			// minted from the ingestion clock.
			name:    "atm_withdrawal",
			pattern: regexp.MustCompile(`(?i)BDT([\d,]+\.?\d*)\s+withdrawn from ATM.*Account\s+(\d+)`),
			build: func(m []string, _ string, ingestedAt time.Time) (core.Draft, error) {
				amount, err := core.ParseAmount(m[1])
				if err != nil {
					return core.Draft{}, err
				}
				return core.Draft{
					Direction:     core.Expense,
					Amount:        amount,
					Description:   "ATM Withdrawal",
					ProviderTrxID: synthTrxID("ATM", ingestedAt),
					Method:        "ATM",
					Category:      "Cash Withdrawal",
					AccountSuffix: "***" + lastDigits(m[2], 4),
					Fee:           atmFee,
				}, nil
			},
		},
		{
			// No transaction id and no balance field either; the deposit
			// amount doubles as the stated balance.
			name:    "bank_deposit",
			pattern: regexp.MustCompile(`(?i)BDT([\d,]+\.?\d*)\s+deposited.*Account\s+(\d+)`),
			build: func(m []string, _ string, ingestedAt time.Time) (core.Draft, error) {
				amount, err := core.ParseAmount(m[1])
				if err != nil {
					return core.Draft{}, err
				}
				return core.Draft{
					Direction:     core.Income,
					Amount:        amount,
					Description:   "Bank Deposit",
					ProviderTrxID: synthTrxID("DEP", ingestedAt),
					Method:        "Bank Transfer",
					Category:      "Deposit",
					AccountSuffix: "***" + lastDigits(m[2], 4),
					StatedBalance: amount,
				}, nil
			},
		},
	},
}

func lastDigits(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
