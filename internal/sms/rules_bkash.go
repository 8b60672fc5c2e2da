package sms

import (
	"regexp"
	"time"

	"github.com/masudbs-23/hisab-app/internal/core"
)

var (
	bkashBalance = regexp.MustCompile(`(?i)Balance Tk\s*([\d,]+\.?\d*)`)
	bkashFee     = regexp.MustCompile(`(?i)Fee Tk\s*([\d,]+\.?\d*)`)
)

// Rule order matters: "Bill Payment of Tk ..." and "Send Money Tk ..." bodies
// also satisfy the legacy generic payment pattern, so the specific rules come
// first.
var bkash = &Provider{
	Name:      "bKash",
	fragments: []string{"bKash"},
	rules: []rule{
		{
			name:    "cash_in_from",
			pattern: regexp.MustCompile(`(?i)Cash In Tk\s*([\d,]+\.?\d*)\s+from\s+(\d+)\s+successful.*TrxID\s+(\w+)`),
			build: func(m []string, body string, _ time.Time) (core.Draft, error) {
				amount, err := core.ParseAmount(m[1])
				if err != nil {
					return core.Draft{}, err
				}
				return core.Draft{
					Direction:     core.Income,
					Amount:        amount,
					Description:   "Cash In from " + m[2],
					ProviderTrxID: m[3],
					Method:        "Cash In",
					Category:      "Cash In",
					Counterparty:  m[2],
					StatedBalance: optionalAmount(bkashBalance, body),
					Fee:           optionalAmount(bkashFee, body),
				}, nil
			},
		},
		{
			name:    "received_deposit",
			pattern: regexp.MustCompile(`(?i)received deposit of Tk\s*([\d,]+\.?\d*).*from\s+(.+?)\s*\..*TrxID\s+(\w+)`),
			build: func(m []string, body string, _ time.Time) (core.Draft, error) {
				amount, err := core.ParseAmount(m[1])
				if err != nil {
					return core.Draft{}, err
				}
				return core.Draft{
					Direction:     core.Income,
					Amount:        amount,
					Description:   "Received from " + m[2],
					ProviderTrxID: m[3],
					Method:        "Received Deposit",
					Category:      "Deposit",
					StatedBalance: optionalAmount(bkashBalance, body),
					Fee:           optionalAmount(bkashFee, body),
				}, nil
			},
		},
		{
			name:    "bill_payment",
			pattern: regexp.MustCompile(`(?i)Bill Payment of Tk\s*([\d,]+\.?\d*)\s+for\s+(.+?)\s+is successful.*TrxID\s+(\w+)`),
			build: func(m []string, body string, _ time.Time) (core.Draft, error) {
				amount, err := core.ParseAmount(m[1])
				if err != nil {
					return core.Draft{}, err
				}
				return core.Draft{
					Direction:     core.Expense,
					Amount:        amount,
					Description:   "Bill Payment for " + m[2],
					ProviderTrxID: m[3],
					Method:        "Bill Payment",
					Category:      "Bill Payment",
					StatedBalance: optionalAmount(bkashBalance, body),
					Fee:           optionalAmount(bkashFee, body),
				}, nil
			},
		},
		{
			name:    "send_money",
			pattern: regexp.MustCompile(`(?i)Send Money Tk\s*([\d,]+\.?\d*)\s+to\s+(\d+)\s+successful.*TrxID\s+(\w+)`),
			build: func(m []string, body string, _ time.Time) (core.Draft, error) {
				amount, err := core.ParseAmount(m[1])
				if err != nil {
					return core.Draft{}, err
				}
				return core.Draft{
					Direction:     core.Expense,
					Amount:        amount,
					Description:   "Send Money to " + m[2],
					ProviderTrxID: m[3],
					Method:        "Send Money",
					Category:      "Money Transfer",
					Counterparty:  m[2],
					StatedBalance: optionalAmount(bkashBalance, body),
					Fee:           optionalAmount(bkashFee, body),
				}, nil
			},
		},
		{
			// Legacy "TkNNN sent to <merchant> ... TrxID" format.
			name:    "payment",
			pattern: regexp.MustCompile(`(?i)Tk([\d,]+\.?\d*)\s+sent\s+to\s+(.+?)\s+.*TrxID\s+(\w+)`),
			build: func(m []string, body string, _ time.Time) (core.Draft, error) {
				amount, err := core.ParseAmount(m[1])
				if err != nil {
					return core.Draft{}, err
				}
				return core.Draft{
					Direction:     core.Expense,
					Amount:        amount,
					Description:   "Payment to " + m[2],
					ProviderTrxID: m[3],
					Method:        "Payment",
					Category:      "Shopping",
					StatedBalance: optionalAmount(bkashBalance, body),
					Fee:           optionalAmount(bkashFee, body),
				}, nil
			},
		},
		{
			// Legacy "TkNNN deposited ... TrxID" format, no fee field.
			name:    "cash_in",
			pattern: regexp.MustCompile(`(?i)Tk([\d,]+\.?\d*)\s+deposited.*TrxID\s+(\w+)`),
			build: func(m []string, body string, _ time.Time) (core.Draft, error) {
				amount, err := core.ParseAmount(m[1])
				if err != nil {
					return core.Draft{}, err
				}
				return core.Draft{
					Direction:     core.Income,
					Amount:        amount,
					Description:   "Cash In to bKash",
					ProviderTrxID: m[2],
					Method:        "Cash In",
					Category:      "Deposit",
					StatedBalance: optionalAmount(bkashBalance, body),
				}, nil
			},
		},
	},
}
